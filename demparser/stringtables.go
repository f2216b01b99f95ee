// This file contains the string table decoding: the engine's
// history-compressed entry stream and the three semantically meaningful
// tables (userinfo, instancebaseline, modelprecache).

package demparser

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/cskit/demparse/dem"
	"github.com/cskit/demparse/dem/demeq"
	"github.com/cskit/demparse/demparser/bitread"
	"github.com/cskit/demparse/demparser/demmsg"
)

// maxHistoryLength is the size of the rolling entry dictionary.
const maxHistoryLength = 31

// grenadeModelNames maps model path substrings to grenade kinds.
var grenadeModelNames = map[string]demeq.Weapon{
	"flashbang":         demeq.WeaponFlash,
	"fraggrenade":       demeq.WeaponHE,
	"smokegrenade":      demeq.WeaponSmoke,
	"molotov":           demeq.WeaponMolotov,
	"incendiarygrenade": demeq.WeaponIncendiary,
	"decoy":             demeq.WeaponDecoy,
}

// handleCreateStringTable processes a svc_CreateStringTable message and
// records it for later updates.
func (p *Parser) handleCreateStringTable(b []byte) {
	msg, err := demmsg.DecodeCreateStringTable(b)
	if err != nil {
		panic(err)
	}

	p.processStringTable(msg)

	p.stringTables = append(p.stringTables, msg)
}

// handleUpdateStringTable folds a svc_UpdateStringTable back into the
// originating create message and reprocesses the tables the parser cares
// about.
func (p *Parser) handleUpdateStringTable(b []byte) {
	msg, err := demmsg.DecodeUpdateStringTable(b)
	if err != nil {
		panic(err)
	}

	if int(msg.TableID) >= len(p.stringTables) {
		panic(fmt.Errorf("%w: update for unknown string table %d", demmsg.ErrMalformedMessage, msg.TableID))
	}
	create := p.stringTables[msg.TableID]

	switch create.Name {
	case stNameUserInfo, stNameInstanceBaseline, stNameModelPrecache:
		create.NumEntries = msg.NumChangedEntries
		create.StringData = msg.StringData
		p.processStringTable(create)
	}
}

// processStringTable decodes the history-compressed entry stream of one
// table and applies the semantic entries.
func (p *Parser) processStringTable(tab *demmsg.CreateStringTable) {
	if tab.Name == stNameModelPrecache {
		for len(p.modelPrecache) < int(tab.MaxEntries) {
			p.modelPrecache = append(p.modelPrecache, "")
		}
	}

	br := bitread.NewSmallBitReader(bytes.NewReader(tab.StringData))

	if br.ReadBit() {
		panic(fmt.Errorf("%w: dictionary-encoded string table %q", demmsg.ErrMalformedMessage, tab.Name))
	}

	entryBits := 0
	for n := tab.MaxEntries; n != 0; n >>= 1 {
		entryBits++
	}
	if entryBits > 0 {
		entryBits--
	}

	hist := p.histBuf[:0]
	lastEntry := -1

	for i := 0; i < int(tab.NumEntries); i++ {
		entryIndex := lastEntry + 1
		if !br.ReadBit() {
			entryIndex = int(br.ReadInt(entryBits))
		}
		lastEntry = entryIndex

		if entryIndex < 0 || entryIndex >= int(tab.MaxEntries) {
			panic(fmt.Errorf("%w: entry index %d out of range in %q", demmsg.ErrMalformedMessage, entryIndex, tab.Name))
		}

		var entry string
		if br.ReadBit() {
			if br.ReadBit() {
				// Prefix-copy from the rolling dictionary.
				idx := int(br.ReadInt(5))
				bytesToCopy := int(br.ReadInt(5))
				switch {
				case idx >= len(hist):
					// Keep the stream aligned, salvage the suffix.
					log.Printf("malformed string table entry %d of %q: history index %d", entryIndex, tab.Name, idx)
					entry = br.ReadString()
				case bytesToCopy > len(hist[idx]):
					log.Printf("malformed string table entry %d of %q: prefix length %d", entryIndex, tab.Name, bytesToCopy)
					entry = hist[idx] + br.ReadString()
				default:
					entry = hist[idx][:bytesToCopy] + br.ReadString()
				}
			} else {
				entry = br.ReadString()
			}
		}

		if len(hist) > maxHistoryLength {
			hist = hist[1:]
		}
		hist = append(hist, entry)

		var userData []byte
		if br.ReadBit() {
			if tab.UserDataFixedSize {
				userData = []byte{br.ReadBitsToByte(int(tab.UserDataSizeBits))}
			} else {
				n := int(br.ReadInt(14))
				userData = br.ReadBytes(n)
			}
		}

		if len(userData) == 0 && tab.Name != stNameModelPrecache {
			continue
		}

		switch tab.Name {
		case stNameUserInfo:
			pi, err := parsePlayerInfo(userData)
			if err != nil {
				log.Printf("skipping malformed userinfo entry %d: %v", entryIndex, err)
				continue
			}
			p.playerInfoByUserID[pi.UserID] = pi
			p.rawPlayers[entryIndex] = pi
			p.playerInfoBySteamID[pi.XUID] = pi

		case stNameInstanceBaseline:
			classID, err := strconv.Atoi(entry)
			if err != nil {
				log.Printf("skipping instance baseline with key %q: %v", entry, err)
				continue
			}
			if classID >= 0 && classID < len(p.serverClasses) {
				p.serverClasses[classID].InstanceBaseline = userData
			} else {
				p.pendingBaselines[classID] = userData
			}

		case stNameModelPrecache:
			p.modelPrecache[entryIndex] = entry
		}
	}

	p.histBuf = hist[:0]

	if tab.Name == stNameModelPrecache {
		for i, name := range p.modelPrecache {
			for sub, weapon := range grenadeModelNames {
				if strings.Contains(name, sub) {
					p.grenadeModelIndices[i] = weapon
				}
			}
		}
	}
}

// parsePlayerInfo decodes the packed player record of a userinfo entry.
// A record too short for the fixed layout is reported as an error.
func parsePlayerInfo(b []byte) (pi *dem.PlayerInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			pi, err = nil, fmt.Errorf("player info record: %v", r)
		}
	}()

	br := bitread.NewSmallBitReader(bytes.NewReader(b))

	pi = &dem.PlayerInfo{
		Version: binary.BigEndian.Uint64(br.ReadBytes(8)),
		XUID:    binary.BigEndian.Uint64(br.ReadBytes(8)),
		Name:    br.ReadCString(dem.PlayerNameMaxLength),
		UserID:  binary.BigEndian.Uint32(br.ReadBytes(4)),
		GUID:    br.ReadCString(dem.GUIDLength),
	}

	br.Skip(24) // reserved
	friends := br.ReadBytes(4)
	pi.FriendsID = uint32(friends[0])<<16 | uint32(friends[1])<<8 | uint32(friends[2])

	pi.FriendsName = br.ReadCString(dem.PlayerNameMaxLength)
	pi.IsFakePlayer = br.ReadSingleByte() != 0
	pi.IsHLTV = br.ReadSingleByte() != 0
	for i := range pi.CustomFiles {
		pi.CustomFiles[i] = uint32(br.ReadInt(32))
	}
	pi.FilesDownloaded = br.ReadSingleByte()
	pi.EntityID = -1

	return pi, nil
}
