// Package model implements the device model of §3/§4.G: areas, their
// presets and channels, the "at most one active preset per area"
// invariant, and the command/event handling that closes the loop between
// inbound updates and outbound state queries.
//
// The mutex-guarded struct-with-maps shape follows the corpus's
// detect.Detector: a small stateful type protecting its bookkeeping with
// one mutex rather than routing everything through a dedicated goroutine.
package model

import (
	"sync"
	"time"

	"github.com/dynetlink/dynet"
	"github.com/dynetlink/dynet/retry"
)

// Transport is the subset of the connection manager the model needs: a way
// to hand a built packet to the paced outbound queue, guarded by a
// should-run predicate the retry engine supplies.
type Transport interface {
	Enqueue(pkt dynet.Packet, shouldRun func() bool)
}

// Preset is a scene within an area.
type Preset struct {
	ID     int
	Name   string
	Fade   float64
	Active bool
}

// Channel is a single dimmable output within an area. Level is always in
// [0.0, 1.0]; the wire encoding is handled by the codec.
type Channel struct {
	ID      int
	Name    string
	Fade    float64
	Level   float64
	counter retry.Counter
}

// Area is a logical lighting (or cover) zone. All access goes through
// Model, which holds the lock covering every Area's maps.
type Area struct {
	ID          int
	Name        string
	DefaultFade float64
	Type        dynet.AreaType
	OnPreset    int
	OffPreset   int
	OpenPreset  int
	ClosePreset int

	Presets  map[int]*Preset
	Channels map[int]*Channel

	ActivePreset *Preset

	presetCounter retry.Counter
}

// Model owns every Area and implements the closed loop of §4.G.
type Model struct {
	mu        sync.Mutex
	cfg       dynet.Config
	areas     map[int]*Area
	engine    *retry.Engine
	transport Transport
}

// New builds a Model from configuration, pre-populating areas/presets/
// channels that were declared up front (construction-time, not
// autodiscovered).
func New(cfg dynet.Config, engine *retry.Engine, transport Transport) *Model {
	m := &Model{
		cfg:       cfg,
		areas:     make(map[int]*Area),
		engine:    engine,
		transport: transport,
	}
	for id, ac := range cfg.Areas {
		m.newAreaLocked(id, ac)
	}
	return m
}

func (m *Model) newAreaLocked(id int, ac dynet.AreaConfig) *Area {
	fade := ac.Fade
	if fade == 0 {
		fade = m.cfg.DefaultFade
	}
	a := &Area{
		ID:          id,
		Name:        ac.Name,
		DefaultFade: fade,
		Type:        ac.Type,
		OnPreset:    ac.OnPreset,
		OffPreset:   ac.OffPreset,
		OpenPreset:  ac.OpenPreset,
		ClosePreset: ac.ClosePreset,
		Presets:     make(map[int]*Preset),
		Channels:    make(map[int]*Channel),
	}
	for pid, pc := range ac.Presets {
		a.Presets[pid] = &Preset{ID: pid, Name: pc.Name, Fade: pc.Fade}
	}
	for cid, cc := range ac.Channels {
		a.Channels[cid] = &Channel{ID: cid, Name: cc.Name, Fade: cc.Fade}
	}
	m.areas[id] = a
	return a
}

// Area returns the area by id, if it exists.
func (m *Model) Area(id int) (*Area, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.areas[id]
	return a, ok
}

// getOrCreateArea returns the area, creating it (emitting nothing of its
// own — area creation has no NEWAREA event in §6) when autodiscover allows
// it. The bool return is false when the area is unknown and autodiscover
// is false.
func (m *Model) getOrCreateArea(id int, autodiscover bool) (*Area, bool) {
	if a, ok := m.areas[id]; ok {
		return a, true
	}
	if !autodiscover {
		return nil, false
	}
	a := m.newAreaLocked(id, dynet.AreaConfig{Fade: m.cfg.DefaultFade})
	if m.cfg.Active == dynet.ActiveOn {
		m.requestPresetLocked(a, retry.StartupRetryDelay, false)
	} else if m.cfg.Active == dynet.ActiveInit {
		m.requestPresetLocked(a, retry.NoRetry, true)
	}
	return a, true
}

// PresetOn implements §4.G preset_on. It takes no sendWire/sendNotify
// parameters: wire transmission is the outbound builder/connection's job,
// and "notify" only matters to an external UI layer outside this module's
// scope. userInitiated, when the config is active=on, schedules a
// non-immediate re-query of every known channel level in the area.
func (m *Model) PresetOn(areaID, presetID int, autodiscover bool, userInitiated bool) []dynet.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.getOrCreateArea(areaID, autodiscover)
	if !ok {
		return nil
	}

	p, existed := a.Presets[presetID]
	if !existed {
		if !autodiscover {
			return nil
		}
		p = &Preset{ID: presetID}
		a.Presets[presetID] = p
	}

	var events []dynet.Event
	if !existed {
		events = append(events, newPresetEvent(dynet.KindNewPreset, a.ID, p.ID))
	}

	for _, sib := range a.Presets {
		if sib.ID != presetID && sib.Active {
			sib.Active = false
			events = append(events, offEvent(a.ID, sib.ID))
		}
	}

	p.Active = true
	a.ActivePreset = p

	state := dynet.StateOff
	switch a.Type {
	case dynet.AreaLight:
		if presetID == a.OnPreset {
			state = dynet.StateOn
		}
	case dynet.AreaCover:
		if presetID == a.OpenPreset {
			state = dynet.StateOn
		}
	}
	events = append(events, onEvent(a.ID, p.ID, state))

	if userInitiated && m.cfg.Active == dynet.ActiveOn {
		m.requestAllChannelLevelsLocked(a, retry.InitialRetryDelay, false)
	}

	return events
}

// PresetOff implements §4.G preset_off: unknown presets are a no-op, never
// auto-created (the "preset/channel auto-creation race" fix of §9).
func (m *Model) PresetOff(areaID, presetID int) []dynet.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.areas[areaID]
	if !ok {
		return nil
	}
	p, ok := a.Presets[presetID]
	if !ok || !p.Active {
		return nil
	}
	p.Active = false
	if a.ActivePreset == p {
		a.ActivePreset = nil
	}
	return []dynet.Event{offEvent(a.ID, p.ID)}
}

// SetChannelLevel implements §4.G set_channel_level: update the channel's
// retry counter (cancelling any pending level query for it) and set the
// level, auto-creating the channel iff autodiscover.
func (m *Model) SetChannelLevel(areaID, channelID int, level float64, autodiscover bool) []dynet.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.getOrCreateArea(areaID, autodiscover)
	if !ok {
		return nil
	}

	ch, existed := a.Channels[channelID]
	if !existed {
		if !autodiscover {
			return nil
		}
		ch = &Channel{ID: channelID}
		a.Channels[channelID] = ch
		if m.cfg.Active == dynet.ActiveOn {
			m.requestChannelLevelLocked(a, ch, retry.StartupRetryDelay, false)
		} else if m.cfg.Active == dynet.ActiveInit {
			m.requestChannelLevelLocked(a, ch, retry.NoRetry, true)
		}
	}

	ch.counter.Update()
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	ch.Level = level

	var events []dynet.Event
	if !existed {
		events = append(events, newChannelEvent(a.ID, ch.ID))
	}
	return events
}

// RequestPreset routes to the retry engine (§4.G request_preset).
func (m *Model) RequestPreset(areaID int, delay time.Duration, immediate bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.areas[areaID]
	if !ok {
		return
	}
	m.requestPresetLocked(a, delay, immediate)
}

func (m *Model) requestPresetLocked(a *Area, delay time.Duration, immediate bool) {
	c := &a.presetCounter
	m.engine.Schedule(c, delay, immediate, func() {
		sampled := c.Value()
		pkt := dynet.BuildRequestPreset(byte(a.ID))
		m.transport.Enqueue(pkt, func() bool { return c.Value() == sampled })
	})
}

// RequestChannelLevel routes to the retry engine (§4.G
// request_channel_level).
func (m *Model) RequestChannelLevel(areaID, channelID int, delay time.Duration, immediate bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.areas[areaID]
	if !ok {
		return
	}
	ch, ok := a.Channels[channelID]
	if !ok {
		return
	}
	m.requestChannelLevelLocked(a, ch, delay, immediate)
}

func (m *Model) requestChannelLevelLocked(a *Area, ch *Channel, delay time.Duration, immediate bool) {
	c := &ch.counter
	m.engine.Schedule(c, delay, immediate, func() {
		sampled := c.Value()
		pkt, err := dynet.BuildRequestChannelLevel(byte(a.ID), ch.ID)
		if err != nil {
			return
		}
		m.transport.Enqueue(pkt, func() bool { return c.Value() == sampled })
	})
}

// RequestAllChannelLevels implements §4.G request_all_channel_levels.
func (m *Model) RequestAllChannelLevels(areaID int, delay time.Duration, immediate bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.areas[areaID]
	if !ok {
		return
	}
	m.requestAllChannelLevelsLocked(a, delay, immediate)
}

func (m *Model) requestAllChannelLevelsLocked(a *Area, delay time.Duration, immediate bool) {
	for _, ch := range a.Channels {
		m.requestChannelLevelLocked(a, ch, delay, immediate)
	}
}

// HandlePresetReport implements the PRESET half of §4.G's command-event
// handling: call PresetOn the way a wire report would (no wire echo, no
// external notify), and cancel the area's pending preset query.
func (m *Model) HandlePresetReport(areaID, presetID int, autodiscover bool) []dynet.Event {
	events := m.PresetOn(areaID, presetID, autodiscover, false)

	m.mu.Lock()
	if a, ok := m.areas[areaID]; ok {
		a.presetCounter.Update()
	}
	m.mu.Unlock()
	return events
}

// HandleChannelReport implements the CHANNEL/report half of §4.G: compute
// the level from the actual byte when actively polling (else from the
// target byte), store it, and if actual != target re-poll after
// pollTimer seconds because a fade is still in progress.
func (m *Model) HandleChannelReport(areaID, channelID int, target, actual float64, pollTimer time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.areas[areaID]
	if !ok {
		return
	}
	ch, ok := a.Channels[channelID]
	if !ok {
		return
	}

	ch.counter.Update()

	source := actual
	if m.cfg.Active != dynet.ActiveOn {
		source = target
	}
	ch.Level = channelWireToLevel(source)

	if actual != target {
		m.requestChannelLevelLocked(a, ch, pollTimer, false)
	}
}

// HandleChannelCommand implements the CHANNEL/cmd half of §4.G: a fade
// command was observed on the wire, possibly naming a preset (the level
// it implies is external configuration this module doesn't hold) and
// possibly targeting every channel in the area; either way, the actual
// resulting level is confirmed by a follow-up channel-level query rather
// than trusted from the command itself.
func (m *Model) HandleChannelCommand(areaID, channelID int, delay time.Duration) {
	m.mu.Lock()
	_, ok := m.areas[areaID]
	m.mu.Unlock()
	if !ok {
		return
	}

	if channelID == dynet.AllChannels {
		m.RequestAllChannelLevels(areaID, delay, false)
		return
	}
	m.RequestChannelLevel(areaID, channelID, delay, false)
}

// channelWireToLevel converts a raw wire byte (0..255, as carried in an
// Event's TargetLevel/ActualLevel) to the [0.0,1.0] level stored on a
// Channel: wire = round(255 - 254*level), inverted.
func channelWireToLevel(wire float64) float64 {
	level := (255 - wire) / 254
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	return level
}

func newPresetEvent(kind dynet.Kind, areaID, presetID int) dynet.Event {
	ev := dynet.NewEvent(kind)
	ev.Area, ev.Preset, ev.NewlyCreated = areaID, presetID, true
	return ev
}

func newChannelEvent(areaID, channelID int) dynet.Event {
	ev := dynet.NewEvent(dynet.KindNewChannel)
	ev.Area, ev.Channel, ev.NewlyCreated = areaID, channelID, true
	return ev
}

func offEvent(areaID, presetID int) dynet.Event {
	ev := dynet.NewEvent(dynet.KindPreset)
	ev.Area, ev.Preset, ev.State = areaID, presetID, dynet.StateOff
	return ev
}

func onEvent(areaID, presetID int, state dynet.ChannelState) dynet.Event {
	ev := dynet.NewEvent(dynet.KindPreset)
	ev.Area, ev.Preset, ev.State = areaID, presetID, state
	return ev
}
