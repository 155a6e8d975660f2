package dynet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEventStampsUniqueIDs(t *testing.T) {
	a := NewEvent(KindConnected)
	b := NewEvent(KindConnected)
	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "PRESET", KindPreset.String())
	assert.Equal(t, "CHANNEL", KindChannel.String())
	assert.Contains(t, Kind(99).String(), "UnknownKind")
}

func TestChannelStateString(t *testing.T) {
	assert.Equal(t, "ON", StateOn.String())
	assert.Equal(t, "OFF", StateOff.String())
}
