package demparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cskit/demparse/dem"
	"github.com/cskit/demparse/demparser/demmsg"
)

func gameEventParser() *Parser {
	p := testParser()
	p.gameEventList = make(map[int]*dem.GameEventDescriptor)
	return p
}

func descriptorPayload(id int, name string, keys ...string) []byte {
	var descriptor []byte
	descriptor = appendVarintField(descriptor, 1, uint64(id))
	descriptor = appendBytesField(descriptor, 2, []byte(name))
	for _, k := range keys {
		var key []byte
		key = appendVarintField(key, 1, demmsg.KeyTypeShort)
		key = appendBytesField(key, 2, []byte(k))
		descriptor = appendBytesField(descriptor, 3, key)
	}
	return appendBytesField(nil, 1, descriptor)
}

func shortKey(v int) []byte {
	var key []byte
	key = appendVarintField(key, 1, demmsg.KeyTypeShort)
	key = appendVarintField(key, 5, uint64(v))
	return key
}

func stringKey(v string) []byte {
	var key []byte
	key = appendVarintField(key, 1, demmsg.KeyTypeString)
	key = appendBytesField(key, 2, []byte(v))
	return key
}

func boolKey(v bool) []byte {
	var key []byte
	key = appendVarintField(key, 1, demmsg.KeyTypeBool)
	var b uint64
	if v {
		b = 1
	}
	key = appendVarintField(key, 7, b)
	return key
}

func eventPayload(id int, keys ...[]byte) []byte {
	var b []byte
	b = appendVarintField(b, 2, uint64(id))
	for _, k := range keys {
		b = appendBytesField(b, 3, k)
	}
	return b
}

func TestHandleGameEventTyped(t *testing.T) {
	p := gameEventParser()
	p.handleGameEventList(descriptorPayload(23, "player_death", "userid", "attacker", "weapon", "headshot"))

	var death *dem.PlayerDeath
	p.dispatcher.On("player_death", func(payload interface{}) {
		death = payload.(*dem.PlayerDeath)
	})

	p.handleGameEvent(eventPayload(23,
		shortKey(7), shortKey(8), stringKey("ak47"), boolKey(true)))

	require.NotNil(t, death)
	assert.Equal(t, 7, death.UserID)
	assert.Equal(t, 8, death.Attacker)
	assert.Equal(t, "ak47", death.Weapon)
	assert.True(t, death.Headshot)
	assert.Equal(t, 1, p.kills)
	assert.Equal(t, 1, p.eventCounts["player_death"])
}

func TestHandleGameEventRawFallback(t *testing.T) {
	p := gameEventParser()
	p.handleGameEventList(descriptorPayload(40, "door_open", "userid"))

	var raw *dem.RawGameEvent
	p.dispatcher.On("door_open", func(payload interface{}) {
		raw = payload.(*dem.RawGameEvent)
	})

	p.ingameTick = 555
	p.handleGameEvent(eventPayload(40, shortKey(3)))

	require.NotNil(t, raw)
	assert.Equal(t, "door_open", raw.Name)
	assert.Equal(t, 555, raw.Tick)
	assert.Equal(t, 3, raw.Int("userid"))
}

func TestHandleGameEventUnknownID(t *testing.T) {
	p := gameEventParser()

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
	}()
	p.handleGameEvent(eventPayload(99, shortKey(1)))
}

func TestBombPlantedSiteResolution(t *testing.T) {
	p := gameEventParser()
	p.handleGameEventList(descriptorPayload(50, "bomb_planted", "userid", "site"))

	sc := intClass("CBaseTrigger", "DT_BaseTrigger", 1)
	p.entities[360] = newTestEntity(sc, 360)

	var planted *dem.BombPlanted
	p.dispatcher.On("bomb_planted", func(payload interface{}) {
		planted = payload.(*dem.BombPlanted)
	})

	p.handleGameEvent(eventPayload(50, shortKey(4), shortKey(360)))

	require.NotNil(t, planted)
	assert.Equal(t, 4, planted.UserID)
	assert.Equal(t, 360, planted.Site)
}

func TestBombPlantedSiteNotFoundAborts(t *testing.T) {
	p := gameEventParser()
	p.handleGameEventList(descriptorPayload(50, "bomb_planted", "userid", "site"))

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
	}()
	p.handleGameEvent(eventPayload(50, shortKey(4), shortKey(360)))
}

func TestBombPlantedSiteNotFoundIgnored(t *testing.T) {
	p := gameEventParser()
	p.cfg.IgnoreBombsiteIndexNotFound = true
	p.handleGameEventList(descriptorPayload(50, "bomb_planted", "userid", "site"))

	var planted *dem.BombPlanted
	p.dispatcher.On("bomb_planted", func(payload interface{}) {
		planted = payload.(*dem.BombPlanted)
	})

	p.handleGameEvent(eventPayload(50, shortKey(4), shortKey(360)))

	require.NotNil(t, planted)
	assert.Equal(t, -1, planted.Site)
}

func TestKeyValueTypes(t *testing.T) {
	cases := []struct {
		key      demmsg.GameEventKey
		expected interface{}
	}{
		{demmsg.GameEventKey{Type: demmsg.KeyTypeString, ValString: "x"}, "x"},
		{demmsg.GameEventKey{Type: demmsg.KeyTypeFloat, ValFloat: 1.5}, float64(1.5)},
		{demmsg.GameEventKey{Type: demmsg.KeyTypeLong, ValLong: 70000}, 70000},
		{demmsg.GameEventKey{Type: demmsg.KeyTypeShort, ValShort: 7}, 7},
		{demmsg.GameEventKey{Type: demmsg.KeyTypeByte, ValByte: 255}, 255},
		{demmsg.GameEventKey{Type: demmsg.KeyTypeBool, ValBool: true}, true},
		{demmsg.GameEventKey{Type: demmsg.KeyTypeUint64, ValUint64: 1 << 40}, uint64(1) << 40},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, keyValue(&c.key))
	}
}

func TestDecodeWString(t *testing.T) {
	// "hi" in UTF-16 big endian
	got := decodeWString([]byte{0, 'h', 0, 'i'})
	assert.Equal(t, "hi", got)
}
