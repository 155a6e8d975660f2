package dynet

import "strconv"

// Opcode is a DyNet command byte. The set is closed: every value the panel
// can legally send is named here, but unnamed/reserved values still decode
// — they surface as an Unhandled event rather than being rejected.
type Opcode byte

const (
	OpPreset1 Opcode = 0
	OpPreset2 Opcode = 1
	OpPreset3 Opcode = 2
	OpPreset4 Opcode = 3

	OpRecallOff              Opcode = 4
	OpDecreaseLevel          Opcode = 5
	OpIncreaseLevel          Opcode = 6
	OpProgramOutCurrentPreset Opcode = 8

	OpPreset5 Opcode = 10
	OpPreset6 Opcode = 11
	OpPreset7 Opcode = 12
	OpPreset8 Opcode = 13

	OpReportChannelLevel  Opcode = 96
	OpRequestChannelLevel Opcode = 97
	OpReportPreset        Opcode = 98
	OpRequestPreset       Opcode = 99

	OpLinearPreset            Opcode = 101
	OpTurnAllAreasOff         Opcode = 104
	OpFadeChannelAreaToPreset Opcode = 107
	OpStopFading              Opcode = 118

	OpSetChannel1ToLevelWithFade Opcode = 128
	OpSetChannel2ToLevelWithFade Opcode = 129
	OpSetChannel3ToLevelWithFade Opcode = 130
	OpSetChannel4ToLevelWithFade Opcode = 131
)

// opcodeNames holds the closed enumeration of symbolic names, including the
// control-panel, occupancy, and area-link ranges that are accepted and
// named but never interpreted beyond naming (§6).
var opcodeNames = map[Opcode]string{
	OpPreset1:                 "PRESET_1",
	OpPreset2:                 "PRESET_2",
	OpPreset3:                 "PRESET_3",
	OpPreset4:                 "PRESET_4",
	OpRecallOff:               "RECALL_OFF",
	OpDecreaseLevel:           "DECREASE_LEVEL",
	OpIncreaseLevel:           "INCREASE_LEVEL",
	OpProgramOutCurrentPreset: "PROGRAM_OUT_CURRENT_PRESET",
	OpPreset5:                 "PRESET_5",
	OpPreset6:                 "PRESET_6",
	OpPreset7:                 "PRESET_7",
	OpPreset8:                 "PRESET_8",
	OpReportChannelLevel:      "REPORT_CHANNEL_LEVEL",
	OpRequestChannelLevel:     "REQUEST_CHANNEL_LEVEL",
	OpReportPreset:            "REPORT_PRESET",
	OpRequestPreset:           "REQUEST_PRESET",
	OpLinearPreset:            "LINEAR_PRESET",
	OpTurnAllAreasOff:         "TURN_ALL_AREAS_OFF",
	OpFadeChannelAreaToPreset: "FADE_CHANNEL_AREA_TO_PRESET",
	OpStopFading:              "STOP_FADING",

	OpSetChannel1ToLevelWithFade: "SET_CHANNEL_1_TO_LEVEL_WITH_FADE",
	OpSetChannel2ToLevelWithFade: "SET_CHANNEL_2_TO_LEVEL_WITH_FADE",
	OpSetChannel3ToLevelWithFade: "SET_CHANNEL_3_TO_LEVEL_WITH_FADE",
	OpSetChannel4ToLevelWithFade: "SET_CHANNEL_4_TO_LEVEL_WITH_FADE",
}

func init() {
	// Control-panel, occupancy, and area-link commands (§6): accepted and
	// named by number, never interpreted further.
	for n := 20; n <= 49; n++ {
		opcodeNames[Opcode(n)] = unnamedOpcode(n)
	}
	for n := 60; n <= 73; n++ {
		opcodeNames[Opcode(n)] = unnamedOpcode(n)
	}
	for n := 112; n <= 125; n++ {
		opcodeNames[Opcode(n)] = unnamedOpcode(n)
	}
}

func unnamedOpcode(n int) string {
	return "OPCODE_" + strconv.Itoa(n)
}

// HasOpcode reports whether n names a recognised opcode number.
func HasOpcode(n byte) bool {
	_, ok := opcodeNames[Opcode(n)]
	return ok
}

// OpcodeName returns the symbolic name for an opcode number, if any.
func OpcodeName(n byte) (string, bool) {
	name, ok := opcodeNames[Opcode(n)]
	return name, ok
}
