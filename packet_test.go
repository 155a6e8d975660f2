package dynet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := Packet{Sync: SyncLogical, Area: 2, Data0: 0, Command: 0x63, Data1: 0, Data2: 0, Join: 0xFF}
	wire := p.Encode()

	got, err := DecodePacket(wire[:])
	require.NoError(t, err)
	assert.Equal(t, p.Sync, got.Sync)
	assert.Equal(t, p.Area, got.Area)
	assert.Equal(t, p.Command, got.Command)
	assert.Equal(t, wire[7], got.Checksum)
}

// TestChecksumWorkedExample checks the checksum formula against the S3
// worked example in spec.md (1C 02 00 63 00 00 FF -> checksum 0x80), which
// is internally consistent with the two's-complement definition in §3.
func TestChecksumWorkedExample(t *testing.T) {
	prefix := [7]byte{0x1C, 0x02, 0x00, 0x63, 0x00, 0x00, 0xFF}
	assert.Equal(t, byte(0x80), checksum(prefix))
}

func TestDecodePacketTooShort(t *testing.T) {
	_, err := DecodePacket([]byte{0x1C, 0x02, 0x00})
	var tooShort *PacketTooShortError
	require.ErrorAs(t, err, &tooShort)
	assert.Equal(t, 3, tooShort.Got)
}

func TestDecodePacketTooLong(t *testing.T) {
	buf := make([]byte, 9)
	_, err := DecodePacket(buf)
	var tooLong *PacketTooLongError
	require.ErrorAs(t, err, &tooLong)
}

func TestDecodePacketChecksumMismatch(t *testing.T) {
	buf := []byte{0x1C, 0x02, 0x00, 0x63, 0x00, 0x00, 0xFF, 0x00}
	_, err := DecodePacket(buf)
	var mismatch *ChecksumMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, byte(0x80), mismatch.Want)
}

func TestIsSyncByte(t *testing.T) {
	assert.True(t, IsSyncByte(SyncLogical))
	assert.True(t, IsSyncByte(SyncDevice))
	assert.True(t, IsSyncByte(SyncDebug))
	assert.False(t, IsSyncByte(0x00))
}
