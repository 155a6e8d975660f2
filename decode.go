package dynet

// DecodeEvent turns a decoded logical packet into a typed Event, following
// the opcode-family table of §4.C. Opcodes with no decoding of their own
// produce a KindUnhandled event. REQUEST_CHANNEL_LEVEL produces no event:
// the returned bool is false and the Event is the zero value, so callers
// should check the bool before using the Event.
func DecodeEvent(pkt Packet) (Event, bool) {
	op := Opcode(pkt.Command)

	switch {
	case isPresetOpcode(op):
		return decodePresetCommand(pkt, op), true

	case op == OpReportPreset:
		ev := newEvent(KindPreset)
		ev.Area = int(pkt.Area)
		ev.Preset = int(pkt.Data0) + 1
		ev.State = StateOn
		ev.Join = pkt.Join
		ev.Raw = pkt.Encode()
		return ev, true

	case op == OpRequestPreset:
		ev := newEvent(KindReqPreset)
		ev.Area = int(pkt.Area)
		ev.Join = pkt.Join
		ev.Raw = pkt.Encode()
		return ev, true

	case op == OpLinearPreset:
		ev := newEvent(KindPreset)
		ev.Area = int(pkt.Area)
		ev.Preset = int(pkt.Data0) + 1
		ev.Fade = float64(int(pkt.Data1)+int(pkt.Data2)*256) * 0.02
		ev.State = StateOn
		ev.Join = pkt.Join
		ev.Raw = pkt.Encode()
		return ev, true

	case op == OpReportChannelLevel:
		ev := newEvent(KindChannel)
		ev.Area = int(pkt.Area)
		ev.Channel = int(pkt.Data0) + 1
		ev.TargetLevel = float64(pkt.Data1)
		ev.ActualLevel = float64(pkt.Data2)
		ev.Action = ActionReport
		ev.Join = pkt.Join
		ev.Raw = pkt.Encode()
		return ev, true

	case isSetChannelWithFadeOpcode(op):
		k := int(op) - int(OpSetChannel1ToLevelWithFade) + 1
		ev := newEvent(KindChannel)
		ev.Area = int(pkt.Area)
		ev.Channel = ((int(pkt.Data1)+1)%256)*4 + k
		ev.TargetLevel = float64(pkt.Data0)
		ev.Action = ActionCommand
		ev.Join = pkt.Join
		ev.Raw = pkt.Encode()
		return ev, true

	case op == OpStopFading:
		ev := newEvent(KindChannel)
		ev.Area = int(pkt.Area)
		ev.Channel = stopFadingChannel(pkt.Data0)
		ev.Action = ActionCommand
		ev.Join = pkt.Join
		ev.Raw = pkt.Encode()
		return ev, true

	case op == OpFadeChannelAreaToPreset:
		channel := int(pkt.Data0) + 1
		if pkt.Data0 == 255 {
			channel = AllChannels
		}
		fade := float64(pkt.Data2) * 0.02
		if channel == AllChannels {
			ev := newEvent(KindPreset)
			ev.Area = int(pkt.Area)
			ev.Preset = int(pkt.Data1) + 1
			ev.Fade = fade
			ev.State = StateOn
			ev.Join = pkt.Join
			ev.Raw = pkt.Encode()
			return ev, true
		}
		ev := newEvent(KindChannel)
		ev.Area = int(pkt.Area)
		ev.Channel = channel
		ev.Preset = int(pkt.Data1) + 1
		ev.Fade = fade
		ev.Action = ActionCommand
		ev.Join = pkt.Join
		ev.Raw = pkt.Encode()
		return ev, true

	case op == OpRequestChannelLevel:
		// Outbound query only; no inbound event is produced.
		return Event{}, false

	default:
		ev := newEvent(KindUnhandled)
		ev.Area = int(pkt.Area)
		ev.Join = pkt.Join
		ev.Raw = pkt.Encode()
		return ev, true
	}
}

func isPresetOpcode(op Opcode) bool {
	switch op {
	case OpPreset1, OpPreset2, OpPreset3, OpPreset4,
		OpPreset5, OpPreset6, OpPreset7, OpPreset8:
		return true
	}
	return false
}

func isSetChannelWithFadeOpcode(op Opcode) bool {
	return op >= OpSetChannel1ToLevelWithFade && op <= OpSetChannel4ToLevelWithFade
}

// decodePresetCommand implements the PRESET_1..4 / PRESET_5..8 family:
// raw_opcode_index is the command itself for commands 0..3, or command-6
// for the 10..13 bank (so both land in 0..7); preset then folds in data2 as
// the bank selector.
func decodePresetCommand(pkt Packet, op Opcode) Event {
	command := int(op)
	rawIndex := command
	if command > 3 {
		rawIndex = command - 6
	}
	ev := newEvent(KindPreset)
	ev.Area = int(pkt.Area)
	ev.Preset = rawIndex + int(pkt.Data2)*8 + 1
	ev.Fade = float64(int(pkt.Data0)+int(pkt.Data1)*256) * 0.02
	ev.State = StateOn
	ev.Join = pkt.Join
	ev.Raw = pkt.Encode()
	return ev
}

// stopFadingChannel maps STOP_FADING's data0 to a channel id, folding the
// area-wide-stop sentinel (wire value 255) to the AllChannels constant.
func stopFadingChannel(data0 byte) int {
	if data0 == 255 {
		return AllChannels
	}
	return int(data0) + 1
}
