// This file contains the game event decoding: the descriptor list and the
// per-event materialization of the parallel key array into typed values.

package demparser

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cskit/demparse/dem"
	"github.com/cskit/demparse/demparser/demmsg"
)

// handleGameEventList stashes the event id -> descriptor mapping.
func (p *Parser) handleGameEventList(b []byte) {
	msg, err := demmsg.DecodeGameEventList(b)
	if err != nil {
		panic(err)
	}

	for _, d := range msg.Descriptors {
		keyNames := make([]string, len(d.Keys))
		for i, k := range d.Keys {
			keyNames[i] = k.Name
		}
		p.gameEventList[int(d.EventID)] = &dem.GameEventDescriptor{
			ID:       int(d.EventID),
			Name:     d.Name,
			KeyNames: keyNames,
		}
	}
}

// handleGameEvent materializes one game event and emits it on the topic
// equal to its name. Well-known names get typed payloads, everything else
// the raw key mapping.
func (p *Parser) handleGameEvent(b []byte) {
	msg, err := demmsg.DecodeGameEvent(b)
	if err != nil {
		panic(err)
	}

	descriptor, ok := p.gameEventList[int(msg.EventID)]
	if !ok {
		panic(fmt.Errorf("%w: game event id %d not in event list", demmsg.ErrMalformedMessage, msg.EventID))
	}

	raw := &dem.RawGameEvent{
		Name:   descriptor.Name,
		Tick:   p.ingameTick,
		Fields: make(map[string]interface{}, len(descriptor.KeyNames)),
	}
	for i, keyName := range descriptor.KeyNames {
		if i >= len(msg.Keys) {
			break
		}
		raw.Fields[keyName] = keyValue(&msg.Keys[i])
	}

	p.eventCounts[descriptor.Name]++

	switch descriptor.Name {
	case "player_death":
		p.kills++
		p.dispatcher.Emit(descriptor.Name, dem.NewPlayerDeath(raw))
	case "player_hurt":
		p.dispatcher.Emit(descriptor.Name, dem.NewPlayerHurt(raw))
	case "weapon_fire":
		p.dispatcher.Emit(descriptor.Name, dem.NewWeaponFire(raw))
	case "round_start":
		p.dispatcher.Emit(descriptor.Name, dem.NewRoundStart(raw))
	case "round_end":
		p.dispatcher.Emit(descriptor.Name, dem.NewRoundEnd(raw))
	case "round_officially_ended":
		p.roundsEnded++
		p.dispatcher.Emit(descriptor.Name, raw)
	case "player_spawn":
		p.dispatcher.Emit(descriptor.Name, dem.NewPlayerSpawn(raw))
	case "player_footstep":
		p.dispatcher.Emit(descriptor.Name, dem.NewPlayerFootstep(raw))
	case "flashbang_detonate", "hegrenade_detonate", "smokegrenade_detonate", "smokegrenade_expired":
		p.dispatcher.Emit(descriptor.Name, dem.NewGrenadeDetonate(raw))
	case "bomb_planted":
		p.dispatcher.Emit(descriptor.Name, &dem.BombPlanted{
			UserID: raw.Int("userid"),
			Site:   p.resolveBombsite(raw.Int("site")),
		})
	case "bomb_defused":
		p.dispatcher.Emit(descriptor.Name, &dem.BombDefused{
			UserID: raw.Int("userid"),
			Site:   p.resolveBombsite(raw.Int("site")),
		})
	default:
		p.dispatcher.Emit(descriptor.Name, raw)
	}
}

// resolveBombsite validates a bomb event's site index against the entity
// store. A missing site aborts the parse unless configured away.
func (p *Parser) resolveBombsite(site int) int {
	if _, ok := p.entities[site]; ok {
		return site
	}
	if p.cfg.IgnoreBombsiteIndexNotFound {
		return -1
	}
	panic(fmt.Errorf("%w: %d", ErrBombsiteNotFound, site))
}

// keyValue converts one key of the parallel array to its typed value,
// selected by the key's type tag.
func keyValue(k *demmsg.GameEventKey) interface{} {
	switch k.Type {
	case demmsg.KeyTypeString:
		return k.ValString
	case demmsg.KeyTypeFloat:
		return float64(k.ValFloat)
	case demmsg.KeyTypeLong:
		return int(k.ValLong)
	case demmsg.KeyTypeShort:
		return int(k.ValShort)
	case demmsg.KeyTypeByte:
		return int(k.ValByte)
	case demmsg.KeyTypeBool:
		return k.ValBool
	case demmsg.KeyTypeUint64:
		return k.ValUint64
	case demmsg.KeyTypeWstring:
		return decodeWString(k.ValWstring)
	}
	return nil
}

// decodeWString decodes a wide string value (UTF-16, network byte order).
// Undecodable input is returned as the raw byte string.
func decodeWString(b []byte) string {
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	s, _, err := transform.String(dec, string(b))
	if err != nil {
		return string(b)
	}
	return strings.ReplaceAll(s, "\x00", "")
}
