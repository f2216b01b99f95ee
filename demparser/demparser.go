/*

Package demparser implements parsing of CS:GO demo recordings (.dem files).

A demo is a fixed header followed by a sequence of frames; each frame is a
command tag, an ingame tick and a command-specific payload. Packet frames
carry protobuf-framed sub-messages (server info, string tables, game
events, entity diffs); a one-shot data-table frame declares the
network-serialized class schema the entity diffs are decoded against.

Decoded state is published through an emitter: every game event name is a
topic, plus the parser-synthesized "frame_done", "player_left_buyzone",
"grenade_projectile_throw" and "grenade_projectile_destroyed" topics.

Information sources:

Valve's demofile format notes:

https://developer.valvesoftware.com/wiki/DEM_(file_format)

The demoinfo reference implementation:

https://github.com/ValveSoftware/csgo-demoinfo

*/
package demparser

import (
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"runtime"
	"sort"

	"github.com/icza/gox/gox"
	"github.com/klauspost/compress/gzip"

	"github.com/cskit/demparse/dem"
	"github.com/cskit/demparse/dem/demcore"
	"github.com/cskit/demparse/dem/demeq"
	"github.com/cskit/demparse/demparser/bitread"
	"github.com/cskit/demparse/demparser/demmsg"
	"github.com/cskit/demparse/emitter"
)

const (
	// Version is a Semver2 compatible version of the parser.
	Version = "v1.2.0"
)

var (
	// ErrNotDemoFile indicates the given file (or reader) is not a valid
	// demo file.
	ErrNotDemoFile = errors.New("not a demo file")

	// ErrParsing indicates that an unexpected error occurred, which may be
	// due to a corrupt / invalid demo file, or some implementation error.
	ErrParsing = errors.New("parsing")

	// ErrSchemaMismatch indicates an entity diff referenced a property
	// slot outside the flattened schema, or a declaration used an unknown
	// raw type.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrBombsiteNotFound indicates a bomb event referenced a bombsite
	// index with no live entity; see Config.IgnoreBombsiteIndexNotFound.
	ErrBombsiteNotFound = errors.New("bombsite index not found")
)

// Topics of the parser-synthesized events.
const (
	TopicFrameDone                  = "frame_done"
	TopicPlayerLeftBuyZone          = "player_left_buyzone"
	TopicGrenadeProjectileThrow     = "grenade_projectile_throw"
	TopicGrenadeProjectileDestroyed = "grenade_projectile_destroyed"
)

// commandInfoBits is the size of the per-packet command info blob
// (view origins / angles) which the parser skips.
const commandInfoBits = (152 + 4 + 4) << 3

// String table names the parser interprets.
const (
	stNameInstanceBaseline = "instancebaseline"
	stNameModelPrecache    = "modelprecache"
	stNameUserInfo         = "userinfo"
)

// Config holds parser configuration.
type Config struct {
	// BufferSize overrides the main stream's working buffer size in
	// bytes; 0 selects the large default.
	BufferSize int

	// IgnoreBombsiteIndexNotFound makes bomb events with an unresolvable
	// bombsite index carry site -1 instead of aborting the parse.
	IgnoreBombsiteIndexNotFound bool

	// BestEffort makes the parser skip malformed recognized sub-messages
	// instead of aborting on the first decode error.
	BestEffort bool

	_ struct{} // To prevent unkeyed literals
}

// ParseFile parses a demo file and returns the decoded summary.
// Gzip- and bzip2-compressed demos are decompressed transparently.
func ParseFile(name string) (*dem.Demo, error) {
	return ParseFileConfig(name, Config{})
}

// ParseFileConfig parses a demo file based on the given parser
// configuration.
func ParseFileConfig(name string, cfg Config) (d *dem.Demo, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, err := uncompressed(f)
	if err != nil {
		return nil, err
	}

	p, err := NewParserConfig(src, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.ParseToEnd(); err != nil {
		return nil, err
	}
	return p.Demo(), nil
}

// Parse parses a demo from the given byte slice.
func Parse(data []byte) (*dem.Demo, error) {
	return ParseConfig(data, Config{})
}

// ParseConfig parses a demo from the given byte slice based on the given
// parser configuration.
func ParseConfig(data []byte, cfg Config) (*dem.Demo, error) {
	p, err := NewParserConfig(bytes.NewReader(data), cfg)
	if err != nil {
		return nil, err
	}
	if err := p.ParseToEnd(); err != nil {
		return nil, err
	}
	return p.Demo(), nil
}

// uncompressed sniffs the magic of f and returns a seekable view of the
// uncompressed demo data. Compressed sources are decompressed into memory.
func uncompressed(f *os.File) (io.ReadSeeker, error) {
	var magic [3]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, ErrNotDemoFile
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch {
	case magic[0] == 0x1f && magic[1] == 0x8b:
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	case magic[0] == 'B' && magic[1] == 'Z' && magic[2] == 'h':
		data, err := io.ReadAll(bzip2.NewReader(f))
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
	return f, nil
}

// Parser decodes one demo stream. It owns the bit reader and all decoding
// state; a Parser must not be shared between goroutines.
type Parser struct {
	cfg        Config
	bitreader  *bitread.BitReader
	dispatcher *emitter.Emitter

	header     *dem.Header
	ingameTick int

	// Schema
	sendTables          []*dem.SendTable
	sendTablesByName    map[string]*dem.SendTable
	serverClasses       []*dem.ServerClass
	serverClassesByName map[string]*dem.ServerClass // keyed by send-table name
	serverClassBits     int

	// Baselines received before their server class was declared
	pendingBaselines map[int][]byte

	// String tables in creation order; updates are folded back in
	stringTables []*demmsg.CreateStringTable

	// Entity store
	entities map[int]*dem.Entity

	// Model precache and the grenade models found in it
	modelPrecache       []string
	grenadeModelIndices map[int]demeq.Weapon

	// Player records and live players
	playerInfoByUserID  map[uint32]*dem.PlayerInfo
	playerInfoBySteamID map[uint64]*dem.PlayerInfo
	rawPlayers          map[int]*dem.PlayerInfo // by userinfo entry index
	playersByEntityID   map[int]*dem.Player
	playersByUserID     map[uint32]*dem.Player
	playersBySteamID    map[uint64]*dem.Player

	// Grenades
	grenadeProjectiles map[int]*dem.GrenadeProjectile
	thrownGrenades     map[int][]dem.Equipment

	// Weapons and teams
	equipmentMapping map[int]demeq.Weapon // server class id -> weapon
	weapons          map[int]dem.Equipment
	teamStates       map[demcore.Team]*dem.TeamState

	gameEventList map[int]*dem.GameEventDescriptor
	convars       map[string]string
	serverInfo    *demmsg.ServerInfo
	tickRate      float64

	// Scratch buffers, cleared at the start of each use
	bytesBuf    []byte
	propIndices []int
	histBuf     []string

	// Computed bookkeeping
	eventCounts map[string]int
	kills       int
	roundsEnded int
	stopped     bool
}

// NewParser returns a Parser decoding the given source. The header is
// parsed immediately.
func NewParser(src io.ReadSeeker) (*Parser, error) {
	return NewParserConfig(src, Config{})
}

// NewParserConfig returns a Parser with the given configuration.
func NewParserConfig(src io.ReadSeeker, cfg Config) (p *Parser, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, recoveredError(r)
		}
	}()

	bufSize := gox.IfInt(cfg.BufferSize > 0, cfg.BufferSize, bitread.LargeBuffer)

	p = &Parser{
		cfg:                 cfg,
		bitreader:           bitread.NewBitReader(src, make([]byte, bufSize)),
		dispatcher:          emitter.New(),
		sendTablesByName:    make(map[string]*dem.SendTable),
		serverClassesByName: make(map[string]*dem.ServerClass),
		pendingBaselines:    make(map[int][]byte),
		entities:            make(map[int]*dem.Entity),
		grenadeModelIndices: make(map[int]demeq.Weapon),
		playerInfoByUserID:  make(map[uint32]*dem.PlayerInfo),
		playerInfoBySteamID: make(map[uint64]*dem.PlayerInfo),
		rawPlayers:          make(map[int]*dem.PlayerInfo),
		playersByEntityID:   make(map[int]*dem.Player),
		playersByUserID:     make(map[uint32]*dem.Player),
		playersBySteamID:    make(map[uint64]*dem.Player),
		grenadeProjectiles:  make(map[int]*dem.GrenadeProjectile),
		thrownGrenades:      make(map[int][]dem.Equipment),
		equipmentMapping:    make(map[int]demeq.Weapon),
		weapons:             make(map[int]dem.Equipment),
		teamStates:          make(map[demcore.Team]*dem.TeamState),
		gameEventList:       make(map[int]*dem.GameEventDescriptor),
		convars:             make(map[string]string),
		bytesBuf:            make([]byte, 64*1024),
		propIndices:         make([]int, 0, 64),
		histBuf:             make([]string, 0, 32),
		eventCounts:         make(map[string]int),
		ingameTick:          -1,
	}

	p.header = p.parseHeader()
	return p, nil
}

// Header returns the parsed demo header.
func (p *Parser) Header() *dem.Header {
	return p.header
}

// IngameTick returns the current ingame tick.
func (p *Parser) IngameTick() int {
	return p.ingameTick
}

// TickRate returns the server tick rate, 0 before server info was seen.
func (p *Parser) TickRate() float64 {
	return p.tickRate
}

// ConVars returns the server config merged so far.
func (p *Parser) ConVars() map[string]string {
	return p.convars
}

// Entities returns the live entity store. Callers must treat it as
// read-only.
func (p *Parser) Entities() map[int]*dem.Entity {
	return p.entities
}

// Players returns the live players by entity id. Callers must treat it as
// read-only.
func (p *Parser) Players() map[int]*dem.Player {
	return p.playersByEntityID
}

// GrenadeProjectiles returns the in-flight grenade projectiles by entity
// id. Callers must treat it as read-only.
func (p *Parser) GrenadeProjectiles() map[int]*dem.GrenadeProjectile {
	return p.grenadeProjectiles
}

// TeamState returns the state of the given team, or nil if its entity has
// not been seen.
func (p *Parser) TeamState(team demcore.Team) *dem.TeamState {
	return p.teamStates[team]
}

// On subscribes the handler to an event topic and returns the
// subscription id.
func (p *Parser) On(topic string, h emitter.Handler) string {
	return p.dispatcher.On(topic, h)
}

// OnLimited subscribes the handler to at most limit deliveries.
func (p *Parser) OnLimited(topic string, limit int, h emitter.Handler) string {
	return p.dispatcher.OnLimited(topic, limit, h)
}

// Off removes a subscription.
func (p *Parser) Off(topic, id string) bool {
	return p.dispatcher.Off(topic, id)
}

// Demo returns the decoded summary of everything parsed so far.
func (p *Parser) Demo() *dem.Demo {
	d := &dem.Demo{
		Header:   p.header,
		MapName:  p.header.Map,
		TickRate: p.tickRate,
		ConVars:  p.convars,
		Computed: &dem.Computed{
			LastTick:     p.ingameTick,
			EventCounts:  p.eventCounts,
			Kills:        p.kills,
			RoundsPlayed: p.roundsEnded,
		},
	}
	if p.serverInfo != nil && p.serverInfo.MapName != "" {
		d.MapName = p.serverInfo.MapName
	}
	for _, pi := range p.rawPlayers {
		d.Players = append(d.Players, pi)
	}
	sort.Slice(d.Players, func(i, j int) bool {
		return d.Players[i].UserID < d.Players[j].UserID
	})
	return d
}

// recoveredError maps a recovered panic value to the error returned from
// the parsing boundary. Decode taxonomy errors pass through; anything else
// becomes ErrParsing.
func recoveredError(r interface{}) error {
	if err, ok := r.(error); ok && isDecodeError(err) {
		log.Printf("Parsing error: %v", err)
		return err
	}
	log.Printf("Parsing error: %v", r)
	buf := make([]byte, 2000)
	n := runtime.Stack(buf, false)
	log.Printf("Stack: %s", buf[:n])
	return ErrParsing
}

func isDecodeError(err error) bool {
	return errors.Is(err, bitread.ErrTruncatedStream) ||
		errors.Is(err, bitread.ErrChunkOverrun) ||
		errors.Is(err, demmsg.ErrMalformedMessage) ||
		errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrBombsiteNotFound) ||
		errors.Is(err, ErrNotDemoFile)
}

// parseHeader decodes the fixed 1072-byte preamble.
func (p *Parser) parseHeader() *dem.Header {
	const maxOSPath = 260

	br := p.bitreader
	h := &dem.Header{
		DemoType: br.ReadCString(8),
		Version:  int32(br.ReadSignedInt(32)),
		Protocol: int32(br.ReadSignedInt(32)),
		Server:   br.ReadCString(maxOSPath),
		Nick:     br.ReadCString(maxOSPath),
		Map:      br.ReadCString(maxOSPath),
		Game:     br.ReadCString(maxOSPath),
		Duration: br.ReadFloat(),
	}
	h.Ticks = int32(br.ReadSignedInt(32))
	h.Frames = int32(br.ReadSignedInt(32))
	h.SignonLength = int32(br.ReadSignedInt(32))

	if h.DemoType != "HL2DEMO" {
		panic(fmt.Errorf("%w: magic %q", ErrNotDemoFile, h.DemoType))
	}
	return h
}

// ParseToEnd decodes frames until the stop command or an error.
// The untrusted input is decoded behind a recover boundary; decode
// taxonomy errors are returned as-is, anything unexpected as ErrParsing.
func (p *Parser) ParseToEnd() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	for !p.stopped {
		p.parseFrame()
	}
	return nil
}

// ParseNextFrame decodes a single frame. more is false once the stop
// command has been consumed. Decoding may be stopped at any frame
// boundary.
func (p *Parser) ParseNextFrame() (more bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			more, err = false, recoveredError(r)
		}
	}()

	if p.stopped {
		return false, nil
	}
	p.parseFrame()
	return !p.stopped, nil
}

// parseFrame decodes one frame: command tag, tick, slot byte and the
// command payload, followed by the per-tick post-step.
func (p *Parser) parseFrame() {
	br := p.bitreader

	command := demmsg.PacketCommand(br.ReadSingleByte())
	tick := int(br.ReadSignedInt(32))
	br.Skip(8) // player slot

	p.ingameTick = tick

	switch command {
	case demmsg.CommandSignon, demmsg.CommandPacket:
		br.Skip(commandInfoBits)
		p.parsePacketChunk()

	case demmsg.CommandSync:
		// no payload

	case demmsg.CommandConsole, demmsg.CommandString:
		size := int(br.ReadSignedInt(32))
		br.Skip(size << 3)

	case demmsg.CommandUser, demmsg.CommandCustom:
		br.Skip(32) // sequence / callback index
		size := int(br.ReadSignedInt(32))
		br.Skip(size << 3)

	case demmsg.CommandDataTable:
		p.parseDataTables()

	case demmsg.CommandStop:
		p.stopped = true
		return

	default:
		panic(fmt.Errorf("%w: unknown frame command %d", ErrParsing, command))
	}

	p.frameDone(tick)
}

// parsePacketChunk decodes the sized run of sub-messages of a signon /
// packet frame.
func (p *Parser) parsePacketChunk() {
	br := p.bitreader

	size := int(br.ReadSignedInt(32))
	br.BeginChunk(size << 3)

	for !br.ChunkFinished() {
		kind := demmsg.MessageKind(br.ReadVarInt32())
		msgSize := int(br.ReadVarInt32())

		br.BeginChunk(msgSize << 3)
		if kind.Skippable() {
			br.EndChunk()
			continue
		}

		p.ensureScratch(msgSize)
		br.ReadBytesInto(p.bytesBuf, msgSize)
		p.handleMessage(kind, p.bytesBuf[:msgSize])

		br.EndChunk()
	}

	br.EndChunk()
}

// handleMessage dispatches one sub-message payload. Unknown kinds are
// skipped silently; malformed recognized kinds are fatal unless
// Config.BestEffort is set.
func (p *Parser) handleMessage(kind demmsg.MessageKind, b []byte) {
	if p.cfg.BestEffort {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok && errors.Is(err, demmsg.ErrMalformedMessage) {
					log.Printf("skipping malformed sub-message %d: %v", kind, err)
					return
				}
				panic(r)
			}
		}()
	}

	switch kind {
	case demmsg.KindSetConVar:
		p.handleSetConVars(b)
	case demmsg.KindServerInfo:
		p.handleServerInfo(b)
	case demmsg.KindCreateStringTable:
		p.handleCreateStringTable(b)
	case demmsg.KindUpdateStringTable:
		p.handleUpdateStringTable(b)
	case demmsg.KindGameEvent:
		p.handleGameEvent(b)
	case demmsg.KindPacketEntities:
		p.handlePacketEntities(b)
	case demmsg.KindGameEventList:
		p.handleGameEventList(b)
	}
}

// handleSetConVars merges (name, value) pairs into the server config.
func (p *Parser) handleSetConVars(b []byte) {
	msg, err := demmsg.DecodeSetConVar(b)
	if err != nil {
		panic(err)
	}
	for _, cv := range msg.ConVars {
		p.convars[cv.Name] = cv.Value
	}
}

// handleServerInfo records the server info and derives the tick rate.
func (p *Parser) handleServerInfo(b []byte) {
	msg, err := demmsg.DecodeServerInfo(b)
	if err != nil {
		panic(err)
	}
	p.tickRate = gox.IfFloat64(msg.TickInterval == 0,
		128, math.Round(1/float64(msg.TickInterval)))
	p.serverInfo = msg
}

// frameDone runs the per-tick post-step and emits frame_done, the last
// event of the tick.
func (p *Parser) frameDone(tick int) {
	for entityID := range p.playersByEntityID {
		entity, ok := p.entities[entityID]
		if !ok {
			continue
		}

		entity.PositionHistory[tick] = entity.Position()

		if team := entity.PropertyValue("m_iTeamNum"); team.Kind == dem.KindInt {
			entity.Team = demcore.Team(team.IntVal)
		}

		if entity.IsBlind() {
			entity.FlashFrameAgg++
		}
	}

	for _, proj := range p.grenadeProjectiles {
		entity, ok := p.entities[proj.EntityID]
		if !ok {
			continue
		}
		current := entity.Position()
		if len(proj.Trajectory) == 0 {
			if current != (demcore.Vector{}) {
				proj.Trajectory = append(proj.Trajectory, current)
				entity.LastPosition = current
			}
		} else if proj.Trajectory[len(proj.Trajectory)-1] != current {
			proj.Trajectory = append(proj.Trajectory, current)
			entity.LastPosition = current
		}
	}

	p.dispatcher.Emit(TopicFrameDone, tick)
}

// ensureScratch grows the shared byte buffer to hold n bytes.
func (p *Parser) ensureScratch(n int) {
	if n > len(p.bytesBuf) {
		p.bytesBuf = make([]byte, n+n/2)
	}
}
