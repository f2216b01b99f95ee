// This file contains the net message types the parser consumes and their
// wire decoders.

package demmsg

// ServerInfo is the svc_ServerInfo message.
type ServerInfo struct {
	Protocol                  int32
	ServerCount               int32
	IsDedicated               bool
	IsOfficialValveServer     bool
	IsHLTV                    bool
	IsReplay                  bool
	IsRedirectingToProxyRelay bool
	COS                       int32
	MapCRC                    uint32
	ClientCRC                 uint32
	StringTableCRC            uint32
	MaxClients                int32
	MaxClasses                int32
	PlayerSlot                int32
	TickInterval              float32
	GameDir                   string
	MapName                   string
	MapGroupName              string
	SkyName                   string
	HostName                  string
	PublicIP                  uint32
	UGCMapID                  uint64
}

// DecodeServerInfo decodes a svc_ServerInfo payload.
func DecodeServerInfo(b []byte) (*ServerInfo, error) {
	m := new(ServerInfo)
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Protocol = w.readInt32()
		case 2:
			m.ServerCount = w.readInt32()
		case 3:
			m.IsDedicated = w.readBool()
		case 4:
			m.IsOfficialValveServer = w.readBool()
		case 5:
			m.IsHLTV = w.readBool()
		case 6:
			m.IsReplay = w.readBool()
		case 21:
			m.IsRedirectingToProxyRelay = w.readBool()
		case 7:
			m.COS = w.readInt32()
		case 8:
			m.MapCRC = w.readFixed32()
		case 9:
			m.ClientCRC = w.readFixed32()
		case 10:
			m.StringTableCRC = w.readFixed32()
		case 11:
			m.MaxClients = w.readInt32()
		case 12:
			m.MaxClasses = w.readInt32()
		case 13:
			m.PlayerSlot = w.readInt32()
		case 14:
			m.TickInterval = w.readFloat()
		case 15:
			m.GameDir = w.readString()
		case 16:
			m.MapName = w.readString()
		case 17:
			m.MapGroupName = w.readString()
		case 18:
			m.SkyName = w.readString()
		case 19:
			m.HostName = w.readString()
		case 20:
			m.PublicIP = uint32(w.readVarint())
		case 22:
			m.UGCMapID = w.readVarint()
		default:
			w.skipField(num, typ)
		}
	}
	return m, w.err
}

// ConVar is a single (name, value) console variable.
type ConVar struct {
	Name           string
	Value          string
	DictionaryName uint32
}

// SetConVar is the net_SetConVar message.
type SetConVar struct {
	ConVars []ConVar
}

// DecodeSetConVar decodes a net_SetConVar payload.
func DecodeSetConVar(b []byte) (*SetConVar, error) {
	m := new(SetConVar)
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		if num == 1 {
			cvars := &wireReader{buf: w.readBytes()}
			for {
				cnum, ctyp, cok := cvars.next()
				if !cok {
					break
				}
				if cnum == 1 {
					m.ConVars = append(m.ConVars, decodeConVar(cvars.readBytes()))
				} else {
					cvars.skipField(cnum, ctyp)
				}
			}
			if cvars.err != nil {
				return nil, cvars.err
			}
		} else {
			w.skipField(num, typ)
		}
	}
	return m, w.err
}

func decodeConVar(b []byte) ConVar {
	var cv ConVar
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			cv.Name = w.readString()
		case 2:
			cv.Value = w.readString()
		case 3:
			cv.DictionaryName = uint32(w.readVarint())
		default:
			w.skipField(num, typ)
		}
	}
	return cv
}

// CreateStringTable is the svc_CreateStringTable message. UpdateStringTable
// payloads are folded back into the originating CreateStringTable before
// reprocessing, so this is the one string table shape the parser handles.
type CreateStringTable struct {
	Name              string
	MaxEntries        int32
	NumEntries        int32
	UserDataFixedSize bool
	UserDataSize      int32
	UserDataSizeBits  int32
	Flags             int32
	StringData        []byte
}

// DecodeCreateStringTable decodes a svc_CreateStringTable payload.
func DecodeCreateStringTable(b []byte) (*CreateStringTable, error) {
	m := new(CreateStringTable)
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Name = w.readString()
		case 2:
			m.MaxEntries = w.readInt32()
		case 3:
			m.NumEntries = w.readInt32()
		case 4:
			m.UserDataFixedSize = w.readBool()
		case 5:
			m.UserDataSize = w.readInt32()
		case 6:
			m.UserDataSizeBits = w.readInt32()
		case 7:
			m.Flags = w.readInt32()
		case 8:
			m.StringData = w.readBytes()
		default:
			w.skipField(num, typ)
		}
	}
	return m, w.err
}

// UpdateStringTable is the svc_UpdateStringTable message.
type UpdateStringTable struct {
	TableID           int32
	NumChangedEntries int32
	StringData        []byte
}

// DecodeUpdateStringTable decodes a svc_UpdateStringTable payload.
func DecodeUpdateStringTable(b []byte) (*UpdateStringTable, error) {
	m := new(UpdateStringTable)
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.TableID = w.readInt32()
		case 2:
			m.NumChangedEntries = w.readInt32()
		case 3:
			m.StringData = w.readBytes()
		default:
			w.skipField(num, typ)
		}
	}
	return m, w.err
}

// GameEventKey is one value of a game event's parallel key array; Type
// selects which Val field is meaningful.
type GameEventKey struct {
	Type       int32
	ValString  string
	ValFloat   float32
	ValLong    int32
	ValShort   int32
	ValByte    int32
	ValBool    bool
	ValUint64  uint64
	ValWstring []byte
}

// Game event key type tags.
const (
	KeyTypeString  = 1
	KeyTypeFloat   = 2
	KeyTypeLong    = 3
	KeyTypeShort   = 4
	KeyTypeByte    = 5
	KeyTypeBool    = 6
	KeyTypeUint64  = 7
	KeyTypeWstring = 8
)

// GameEvent is the svc_GameEvent message.
type GameEvent struct {
	EventName   string
	EventID     int32
	Keys        []GameEventKey
	Passthrough int32
}

// DecodeGameEvent decodes a svc_GameEvent payload.
func DecodeGameEvent(b []byte) (*GameEvent, error) {
	m := new(GameEvent)
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.EventName = w.readString()
		case 2:
			m.EventID = w.readInt32()
		case 3:
			k, err := decodeGameEventKey(w.readBytes())
			if err != nil {
				return nil, err
			}
			m.Keys = append(m.Keys, k)
		case 4:
			m.Passthrough = w.readInt32()
		default:
			w.skipField(num, typ)
		}
	}
	return m, w.err
}

func decodeGameEventKey(b []byte) (GameEventKey, error) {
	var k GameEventKey
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			k.Type = w.readInt32()
		case 2:
			k.ValString = w.readString()
		case 3:
			k.ValFloat = w.readFloat()
		case 4:
			k.ValLong = w.readInt32()
		case 5:
			k.ValShort = w.readInt32()
		case 6:
			k.ValByte = w.readInt32()
		case 7:
			k.ValBool = w.readBool()
		case 8:
			k.ValUint64 = w.readVarint()
		case 9:
			k.ValWstring = w.readBytes()
		default:
			w.skipField(num, typ)
		}
	}
	return k, w.err
}

// GameEventDescriptorKey is one key declaration of a game event descriptor.
type GameEventDescriptorKey struct {
	Type int32
	Name string
}

// GameEventDescriptor declares one game event: its id, name and key names.
type GameEventDescriptor struct {
	EventID int32
	Name    string
	Keys    []GameEventDescriptorKey
}

// GameEventList is the svc_GameEventList message.
type GameEventList struct {
	Descriptors []GameEventDescriptor
}

// DecodeGameEventList decodes a svc_GameEventList payload.
func DecodeGameEventList(b []byte) (*GameEventList, error) {
	m := new(GameEventList)
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		if num == 1 {
			d, err := decodeGameEventDescriptor(w.readBytes())
			if err != nil {
				return nil, err
			}
			m.Descriptors = append(m.Descriptors, d)
		} else {
			w.skipField(num, typ)
		}
	}
	return m, w.err
}

func decodeGameEventDescriptor(b []byte) (GameEventDescriptor, error) {
	var d GameEventDescriptor
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			d.EventID = w.readInt32()
		case 2:
			d.Name = w.readString()
		case 3:
			keys := &wireReader{buf: w.readBytes()}
			var k GameEventDescriptorKey
			for {
				knum, ktyp, kok := keys.next()
				if !kok {
					break
				}
				switch knum {
				case 1:
					k.Type = keys.readInt32()
				case 2:
					k.Name = keys.readString()
				default:
					keys.skipField(knum, ktyp)
				}
			}
			if keys.err != nil {
				return d, keys.err
			}
			d.Keys = append(d.Keys, k)
		default:
			w.skipField(num, typ)
		}
	}
	return d, w.err
}

// PacketEntities is the svc_PacketEntities message; EntityData carries the
// bit-packed entity diff stream.
type PacketEntities struct {
	MaxEntries     int32
	UpdatedEntries int32
	IsDelta        bool
	UpdateBaseline bool
	Baseline       int32
	DeltaFrom      int32
	EntityData     []byte
}

// DecodePacketEntities decodes a svc_PacketEntities payload.
func DecodePacketEntities(b []byte) (*PacketEntities, error) {
	m := new(PacketEntities)
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.MaxEntries = w.readInt32()
		case 2:
			m.UpdatedEntries = w.readInt32()
		case 3:
			m.IsDelta = w.readBool()
		case 4:
			m.UpdateBaseline = w.readBool()
		case 5:
			m.Baseline = w.readInt32()
		case 6:
			m.DeltaFrom = w.readInt32()
		case 7:
			m.EntityData = w.readBytes()
		default:
			w.skipField(num, typ)
		}
	}
	return m, w.err
}

// SendProp is one property declaration of a send table.
type SendProp struct {
	Type        int32
	VarName     string
	Flags       int32
	Priority    int32
	DtName      string
	NumElements int32
	LowValue    float32
	HighValue   float32
	NumBits     int32
}

// SendTable is the svc_SendTable message: a named, ordered list of
// network-serialized property declarations.
type SendTable struct {
	IsEnd        bool
	NetTableName string
	NeedsDecoder bool
	Props        []SendProp
}

// DecodeSendTable decodes a svc_SendTable payload.
func DecodeSendTable(b []byte) (*SendTable, error) {
	m := new(SendTable)
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.IsEnd = w.readBool()
		case 2:
			m.NetTableName = w.readString()
		case 3:
			m.NeedsDecoder = w.readBool()
		case 4:
			p, err := decodeSendProp(w.readBytes())
			if err != nil {
				return nil, err
			}
			m.Props = append(m.Props, p)
		default:
			w.skipField(num, typ)
		}
	}
	return m, w.err
}

func decodeSendProp(b []byte) (SendProp, error) {
	var p SendProp
	w := &wireReader{buf: b}
	for {
		num, typ, ok := w.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			p.Type = w.readInt32()
		case 2:
			p.VarName = w.readString()
		case 3:
			p.Flags = w.readInt32()
		case 4:
			p.Priority = w.readInt32()
		case 5:
			p.DtName = w.readString()
		case 6:
			p.NumElements = w.readInt32()
		case 7:
			p.LowValue = w.readFloat()
		case 8:
			p.HighValue = w.readFloat()
		case 9:
			p.NumBits = w.readInt32()
		default:
			w.skipField(num, typ)
		}
	}
	return p, w.err
}
