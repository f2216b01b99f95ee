// This file contains the player types: the packed userinfo record and the
// live player bound to an entity.

package dem

import (
	"github.com/cskit/demparse/dem/demcore"
)

// Lengths of the fixed string fields of a userinfo record.
const (
	PlayerNameMaxLength = 128
	GUIDLength          = 33
)

// PlayerInfo is the packed player record carried in the userinfo string
// table.
type PlayerInfo struct {
	// Version of the record
	Version uint64

	// XUID is the 64-bit steam id.
	XUID uint64

	// Name of the player
	Name string

	// UserID is the server-local user id.
	UserID uint32

	// GUID of the player, "BOT" for bots
	GUID string

	// FriendsID is the friends account id, stored as 3 big-endian bytes in
	// the userinfo record.
	FriendsID uint32

	// FriendsName of the player
	FriendsName string

	// IsFakePlayer marks bots.
	IsFakePlayer bool

	// IsHLTV marks the broadcast spectator slot.
	IsHLTV bool

	// CustomFiles are the CRCs of the player's custom files (logo etc.).
	CustomFiles [4]uint32

	// FilesDownloaded counts how often the files have been downloaded.
	FilesDownloaded byte

	// EntityID of the player's entity once it entered the PVS; -1 before.
	EntityID int
}

// Player is a live participant bound to a player entity.
type Player struct {
	// SteamID of the player (0 for bots without one)
	SteamID uint64

	// UserID is the server-local user id.
	UserID uint32

	// Name of the player
	Name string

	// EntityID of the player's entity
	EntityID int

	// IsBot marks fake players.
	IsBot bool

	// IsConnected tells if the player is currently connected.
	IsConnected bool

	// IsUnknown marks players constructed without a userinfo record.
	IsUnknown bool

	// Team tag of the player
	Team demcore.Team

	// LastAlivePosition is the last recorded position while alive.
	LastAlivePosition demcore.Vector

	// FlashDuration is the duration of the last flash that hit the player.
	FlashDuration float64

	// FlashTick is the tick the player last got flashed on.
	FlashTick int

	// Inventory maps weapon entity ids to equipment.
	Inventory map[int]Equipment
}
