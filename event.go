package dynet

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies the shape of an Event, mirroring the emitted event kinds
// of §6.
type Kind int32

const (
	KindConnected Kind = iota
	KindDisconnected
	KindConfigured
	KindNewPreset
	KindNewChannel
	KindPreset
	KindChannel
	KindReqPreset
	// KindUnhandled carries the raw packet for an opcode outside the
	// enumerated set, or an enumerated opcode with no defined event (§1,
	// §4.C), surfaced for observability. REQUEST_CHANNEL_LEVEL is the one
	// exception: DecodeEvent produces no event for it at all.
	KindUnhandled
)

func (k Kind) String() string {
	switch k {
	case KindConnected:
		return "CONNECTED"
	case KindDisconnected:
		return "DISCONNECTED"
	case KindConfigured:
		return "CONFIGURED"
	case KindNewPreset:
		return "NEWPRESET"
	case KindNewChannel:
		return "NEWCHANNEL"
	case KindPreset:
		return "PRESET"
	case KindChannel:
		return "CHANNEL"
	case KindReqPreset:
		return "REQPRESET"
	case KindUnhandled:
		return "UNHANDLED"
	}
	return fmt.Sprintf("UnknownKind(%d)", int32(k))
}

// ChannelState is the on/off state carried by a PRESET event for a light
// area, and ChannelAction distinguishes a channel-level report from a
// commanded change.
type ChannelState int

const (
	StateOff ChannelState = iota
	StateOn
)

func (s ChannelState) String() string {
	if s == StateOn {
		return "ON"
	}
	return "OFF"
}

// Direction distinguishes a cover area's OPEN/CLOSE preset semantics.
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
)

func (d Direction) String() string {
	if d == DirectionOut {
		return "OUT"
	}
	return "IN"
}

// ChannelAction distinguishes an observed level report from a commanded
// change for a CHANNEL event (§4.C).
type ChannelAction int

const (
	ActionReport ChannelAction = iota
	ActionCommand
)

// AllChannels is the sentinel channel id meaning "every channel in the
// area": wire byte 255 decodes to channel 256, which never fits a real
// channel id.
const AllChannels = 256

// Event is the immutable, typed result of decoding one inbound packet, or a
// synthetic lifecycle event (CONNECTED, DISCONNECTED, CONFIGURED) emitted
// by the orchestrator. The zero value of any field not relevant to Kind is
// simply unused.
type Event struct {
	ID   string
	Kind Kind

	Area    int
	Preset  int
	Channel int

	Fade         float64
	TargetLevel  float64
	ActualLevel  float64
	Join         byte
	State        ChannelState
	Direction    Direction
	Action       ChannelAction
	NewlyCreated bool

	// Raw is the original 8-byte packet this event was decoded from, kept
	// for diagnostic relay. It is the zero value for synthetic events.
	Raw [PacketLen]byte
}

// newEvent stamps a fresh diagnostic ID onto an event under construction.
func newEvent(kind Kind) Event {
	return Event{ID: uuid.New().String(), Kind: kind}
}

// NewEvent stamps a fresh diagnostic ID onto an event of the given kind.
// Exported for the model and orchestrator packages, which construct
// synthetic events (NEWPRESET, CONNECTED, ...) outside the wire decoder.
func NewEvent(kind Kind) Event {
	return newEvent(kind)
}
