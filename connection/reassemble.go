package connection

import "github.com/dynetlink/dynet"

type frameKind int

const (
	frameEvent frameKind = iota
	frameDebug
)

// frame is one unit recovered from the inbound byte buffer by reassemble.
type frame struct {
	kind  frameKind
	pkt   dynet.Packet
	debug string
}

// reassemble implements the inbound reassembly algorithm of §4.E: inspect
// the byte at the head of buf; on a logical sync byte, attempt to decode
// the next 8 bytes, emitting a frame and advancing 8 on success or
// advancing 1 to resync on checksum failure; on a debug sync byte, emit
// the ASCII message from bytes 1..6 and advance 8 unconditionally; on a
// device sync byte, advance 8 without emitting anything; on anything else,
// advance 1 and retry. It stops once fewer than 8 bytes remain, returning
// the frames recovered, how many leading bytes of buf were consumed, and
// how many single-byte resync steps were taken.
func reassemble(buf []byte) ([]frame, int, int) {
	var frames []frame
	resyncs := 0
	i := 0
	for len(buf)-i >= dynet.PacketLen {
		switch buf[i] {
		case dynet.SyncLogical:
			pkt, err := dynet.DecodePacket(buf[i : i+dynet.PacketLen])
			if err != nil {
				i++
				resyncs++
				continue
			}
			frames = append(frames, frame{kind: frameEvent, pkt: pkt})
			i += dynet.PacketLen

		case dynet.SyncDebug:
			frames = append(frames, frame{kind: frameDebug, debug: asciiOf(buf[i+1 : i+7])})
			i += dynet.PacketLen

		case dynet.SyncDevice:
			i += dynet.PacketLen

		default:
			i++
			resyncs++
		}
	}
	return frames, i, resyncs
}

func asciiOf(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			out[i] = '.'
			continue
		}
		out[i] = c
	}
	return string(out)
}
