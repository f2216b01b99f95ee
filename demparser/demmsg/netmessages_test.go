package demmsg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestDecodeServerInfo(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 13850)
	b = protowire.AppendTag(b, 12, protowire.VarintType)
	b = protowire.AppendVarint(b, 273)
	b = protowire.AppendTag(b, 14, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, math.Float32bits(1.0/128))
	b = protowire.AppendTag(b, 16, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("de_nuke"))
	// unknown field must be skipped
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{1, 2, 3})

	m, err := DecodeServerInfo(b)
	require.NoError(t, err)
	assert.Equal(t, int32(13850), m.Protocol)
	assert.Equal(t, int32(273), m.MaxClasses)
	assert.Equal(t, float32(1.0/128), m.TickInterval)
	assert.Equal(t, "de_nuke", m.MapName)
}

func TestDecodeServerInfoMalformed(t *testing.T) {
	// A varint field with a truncated value
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = append(b, 0x80)

	_, err := DecodeServerInfo(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestDecodeSetConVar(t *testing.T) {
	var cvar1, cvar2, cvars, b []byte

	cvar1 = protowire.AppendTag(cvar1, 1, protowire.BytesType)
	cvar1 = protowire.AppendBytes(cvar1, []byte("mp_freezetime"))
	cvar1 = protowire.AppendTag(cvar1, 2, protowire.BytesType)
	cvar1 = protowire.AppendBytes(cvar1, []byte("15"))

	cvar2 = protowire.AppendTag(cvar2, 1, protowire.BytesType)
	cvar2 = protowire.AppendBytes(cvar2, []byte("mp_maxrounds"))
	cvar2 = protowire.AppendTag(cvar2, 2, protowire.BytesType)
	cvar2 = protowire.AppendBytes(cvar2, []byte("30"))

	cvars = protowire.AppendTag(cvars, 1, protowire.BytesType)
	cvars = protowire.AppendBytes(cvars, cvar1)
	cvars = protowire.AppendTag(cvars, 1, protowire.BytesType)
	cvars = protowire.AppendBytes(cvars, cvar2)

	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, cvars)

	m, err := DecodeSetConVar(b)
	require.NoError(t, err)
	require.Len(t, m.ConVars, 2)
	assert.Equal(t, ConVar{Name: "mp_freezetime", Value: "15"}, m.ConVars[0])
	assert.Equal(t, ConVar{Name: "mp_maxrounds", Value: "30"}, m.ConVars[1])
}

func TestDecodeCreateStringTable(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("userinfo"))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 256)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, 3)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	b = protowire.AppendTag(b, 6, protowire.VarintType)
	b = protowire.AppendVarint(b, 12)
	b = protowire.AppendTag(b, 8, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0xaa, 0xbb})

	m, err := DecodeCreateStringTable(b)
	require.NoError(t, err)
	assert.Equal(t, "userinfo", m.Name)
	assert.Equal(t, int32(256), m.MaxEntries)
	assert.Equal(t, int32(3), m.NumEntries)
	assert.True(t, m.UserDataFixedSize)
	assert.Equal(t, int32(12), m.UserDataSizeBits)
	assert.Equal(t, []byte{0xaa, 0xbb}, m.StringData)
}

func TestDecodeUpdateStringTable(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 4)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{1})

	m, err := DecodeUpdateStringTable(b)
	require.NoError(t, err)
	assert.Equal(t, int32(4), m.TableID)
	assert.Equal(t, int32(7), m.NumChangedEntries)
	assert.Equal(t, []byte{1}, m.StringData)
}

func TestDecodeGameEvent(t *testing.T) {
	var key1, key2, b []byte

	key1 = protowire.AppendTag(key1, 1, protowire.VarintType)
	key1 = protowire.AppendVarint(key1, KeyTypeShort)
	key1 = protowire.AppendTag(key1, 5, protowire.VarintType)
	key1 = protowire.AppendVarint(key1, 7)

	key2 = protowire.AppendTag(key2, 1, protowire.VarintType)
	key2 = protowire.AppendVarint(key2, KeyTypeString)
	key2 = protowire.AppendTag(key2, 2, protowire.BytesType)
	key2 = protowire.AppendBytes(key2, []byte("ak47"))

	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 23)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, key1)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, key2)

	m, err := DecodeGameEvent(b)
	require.NoError(t, err)
	assert.Equal(t, int32(23), m.EventID)
	require.Len(t, m.Keys, 2)
	assert.Equal(t, int32(KeyTypeShort), m.Keys[0].Type)
	assert.Equal(t, int32(7), m.Keys[0].ValShort)
	assert.Equal(t, "ak47", m.Keys[1].ValString)
}

func TestDecodeGameEventList(t *testing.T) {
	var key, descriptor, b []byte

	key = protowire.AppendTag(key, 1, protowire.VarintType)
	key = protowire.AppendVarint(key, KeyTypeShort)
	key = protowire.AppendTag(key, 2, protowire.BytesType)
	key = protowire.AppendBytes(key, []byte("userid"))

	descriptor = protowire.AppendTag(descriptor, 1, protowire.VarintType)
	descriptor = protowire.AppendVarint(descriptor, 23)
	descriptor = protowire.AppendTag(descriptor, 2, protowire.BytesType)
	descriptor = protowire.AppendBytes(descriptor, []byte("player_death"))
	descriptor = protowire.AppendTag(descriptor, 3, protowire.BytesType)
	descriptor = protowire.AppendBytes(descriptor, key)

	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, descriptor)

	m, err := DecodeGameEventList(b)
	require.NoError(t, err)
	require.Len(t, m.Descriptors, 1)
	d := m.Descriptors[0]
	assert.Equal(t, int32(23), d.EventID)
	assert.Equal(t, "player_death", d.Name)
	require.Len(t, d.Keys, 1)
	assert.Equal(t, "userid", d.Keys[0].Name)
}

func TestDecodePacketEntities(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 2048)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 5)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	b = protowire.AppendTag(b, 7, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0xff, 0x00, 0x11})

	m, err := DecodePacketEntities(b)
	require.NoError(t, err)
	assert.Equal(t, int32(2048), m.MaxEntries)
	assert.Equal(t, int32(5), m.UpdatedEntries)
	assert.True(t, m.IsDelta)
	assert.Equal(t, []byte{0xff, 0x00, 0x11}, m.EntityData)
}

func TestDecodeSendTable(t *testing.T) {
	var prop1, prop2, b []byte

	prop1 = protowire.AppendTag(prop1, 1, protowire.VarintType)
	prop1 = protowire.AppendVarint(prop1, 0) // int
	prop1 = protowire.AppendTag(prop1, 2, protowire.BytesType)
	prop1 = protowire.AppendBytes(prop1, []byte("m_iHealth"))
	prop1 = protowire.AppendTag(prop1, 3, protowire.VarintType)
	prop1 = protowire.AppendVarint(prop1, 1) // unsigned
	prop1 = protowire.AppendTag(prop1, 4, protowire.VarintType)
	prop1 = protowire.AppendVarint(prop1, 64)
	prop1 = protowire.AppendTag(prop1, 9, protowire.VarintType)
	prop1 = protowire.AppendVarint(prop1, 10)

	prop2 = protowire.AppendTag(prop2, 1, protowire.VarintType)
	prop2 = protowire.AppendVarint(prop2, 1) // float
	prop2 = protowire.AppendTag(prop2, 2, protowire.BytesType)
	prop2 = protowire.AppendBytes(prop2, []byte("m_flSimulationTime"))
	prop2 = protowire.AppendTag(prop2, 7, protowire.Fixed32Type)
	prop2 = protowire.AppendFixed32(prop2, math.Float32bits(-10))
	prop2 = protowire.AppendTag(prop2, 8, protowire.Fixed32Type)
	prop2 = protowire.AppendFixed32(prop2, math.Float32bits(10))

	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("DT_BasePlayer"))
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendBytes(b, prop1)
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendBytes(b, prop2)

	m, err := DecodeSendTable(b)
	require.NoError(t, err)
	assert.False(t, m.IsEnd)
	assert.Equal(t, "DT_BasePlayer", m.NetTableName)
	require.Len(t, m.Props, 2)
	assert.Equal(t, "m_iHealth", m.Props[0].VarName)
	assert.Equal(t, int32(10), m.Props[0].NumBits)
	assert.Equal(t, int32(64), m.Props[0].Priority)
	assert.Equal(t, float32(-10), m.Props[1].LowValue)
	assert.Equal(t, float32(10), m.Props[1].HighValue)
}

func TestDecodeSendTableEnd(t *testing.T) {
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)

	m, err := DecodeSendTable(b)
	require.NoError(t, err)
	assert.True(t, m.IsEnd)
}

func TestSkippableKinds(t *testing.T) {
	skippable := []MessageKind{KindTick, KindSignonState, KindClassInfo, KindVoiceInit,
		KindVoiceData, KindSounds, KindSetView, KindTempEntities, KindPrefetch, KindPlayerAvatarData}
	for _, k := range skippable {
		if !k.Skippable() {
			t.Errorf("Expected %d to be skippable", k)
		}
	}

	handled := []MessageKind{KindSetConVar, KindServerInfo, KindCreateStringTable,
		KindUpdateStringTable, KindGameEvent, KindPacketEntities, KindGameEventList}
	for _, k := range handled {
		if k.Skippable() {
			t.Errorf("Expected %d not to be skippable", k)
		}
	}
}
