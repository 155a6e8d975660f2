package dynet

// ActiveMode controls whether the connection manager actively polls the
// panel for state, polls once at startup, or never polls (§4.E, §6).
type ActiveMode int

const (
	ActiveOff ActiveMode = iota
	ActiveInit
	ActiveOn
)

// AreaType distinguishes a light area (ON/OFF presets) from a cover area
// (OPEN/CLOSED presets), per the data model in §3.
type AreaType int

const (
	AreaLight AreaType = iota
	AreaCover
)

// PresetConfig is the declarative shape of one configured preset, keyed by
// preset id in a parent AreaConfig or in the top-level default preset map.
type PresetConfig struct {
	Name string
	Fade float64
}

// ChannelConfig is the declarative shape of one configured channel within
// an area.
type ChannelConfig struct {
	Name string
	Fade float64
}

// AreaConfig is the declarative shape of one area. Loading populates this
// from whatever external format (YAML, env, flags) the caller chooses —
// that loader is not part of this module (§1 Non-goals).
type AreaConfig struct {
	Name  string
	Fade  float64
	Type  AreaType
	// NoDefault suppresses a loader's implicit bank-0 preset when the area
	// has no presets configured. It has no effect inside the core itself;
	// it only documents what an external loader should do with an area
	// that sets it (see SPEC_FULL.md, "nodefault area flag").
	NoDefault bool
	// OnPreset (light areas) or OpenPreset (cover areas) is the preset id
	// whose activation carries StateOn in preset_on's event (§4.G); every
	// other preset carries StateOff. OffPreset and ClosePreset are carried
	// in the shape but not consulted by the model, and no preset sets an
	// event's Direction. Zero means "none configured".
	OnPreset    int
	OffPreset   int
	OpenPreset  int
	ClosePreset int

	Presets  map[int]PresetConfig
	Channels map[int]ChannelConfig
}

// Config is the full declarative shape named in §6. Only its shape is
// part of the core's contract; populating it from a file, environment, or
// flags is the external collaborator's job.
type Config struct {
	Host string
	Port int

	LogLevel     string
	LogFormatter string

	DefaultFade float64

	Areas   map[int]AreaConfig
	Presets map[int]PresetConfig

	Autodiscover bool
	PollTimer    float64
	Active       ActiveMode
}

// Validate checks the two fields the core itself requires before it can
// attempt a connection (§7 ConfigError). Everything else is permissive.
func (c Config) Validate() error {
	if c.Host == "" {
		return &ConfigError{Reason: "host is required"}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &ConfigError{Reason: "port must be in 1..65535"}
	}
	return nil
}

// DefaultPort is the well-known DyNet gateway port (§6).
const DefaultPort = 12345
