package dynet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelectPresetRangeError(t *testing.T) {
	_, err := BuildSelectPreset(1, 0, 0)
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)

	_, err = BuildSelectPreset(1, 65, 0)
	require.ErrorAs(t, err, &rangeErr)
}

func TestBuildSelectPresetEncodesChecksumCleanly(t *testing.T) {
	pkt, err := BuildSelectPreset(2, 1, 1.0)
	require.NoError(t, err)
	wire := pkt.Encode()
	decoded, err := DecodePacket(wire[:])
	require.NoError(t, err)
	assert.Equal(t, pkt.Command, decoded.Command)
}

func TestBuildAreaAllOffClampsFade(t *testing.T) {
	pkt := BuildAreaAllOff(3, 100)
	assert.Equal(t, byte(255), pkt.Data2)
	assert.Equal(t, byte(OpTurnAllAreasOff), pkt.Command)
}

// TestSetChannelLevelRoundTripsThroughDecode exercises the same
// channel<->wire folding the decoder uses, for the channel ids worked
// through by hand in §4.D/§9 (1, 5, 8, 9).
func TestSetChannelLevelRoundTripsThroughDecode(t *testing.T) {
	for _, channel := range []int{1, 5, 8, 9} {
		pkt, err := BuildSetChannelLevel(2, channel, 1.0, 0)
		require.NoError(t, err)

		ev, ok := DecodeEvent(pkt)
		require.True(t, ok)
		assert.Equal(t, channel, ev.Channel, "channel %d", channel)
		assert.Equal(t, ActionCommand, ev.Action)
	}
}

func TestBuildSetChannelLevelRangeError(t *testing.T) {
	_, err := BuildSetChannelLevel(2, 0, 1.0, 0)
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)

	_, err = BuildSetChannelLevel(2, 256, 1.0, 0)
	require.ErrorAs(t, err, &rangeErr)
}

func TestBuildRequestChannelLevelProducesNoEvent(t *testing.T) {
	pkt, err := BuildRequestChannelLevel(2, 10)
	require.NoError(t, err)
	_, ok := DecodeEvent(pkt)
	assert.False(t, ok)
}

func TestBuildStopChannelFade(t *testing.T) {
	pkt, err := BuildStopChannelFade(2, 5)
	require.NoError(t, err)
	assert.Equal(t, byte(OpStopFading), pkt.Command)
	assert.Equal(t, byte(4), pkt.Data0)
}
