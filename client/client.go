// Package client implements the orchestrator of §4.I: it owns one
// Connection, one Model, and one Broadcaster, and wires them together so
// that every inbound packet updates the model before the corresponding
// event (and any events the model derives from it) is broadcast, per the
// ordering guarantee of §5.
//
// This lives outside the root dynet package because dynet is imported by
// connection, model, and broadcast; an orchestrator that wires all three
// cannot also live in the package they import without a cycle.
package client

import (
	"context"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dynetlink/dynet"
	"github.com/dynetlink/dynet/broadcast"
	"github.com/dynetlink/dynet/connection"
	"github.com/dynetlink/dynet/internal/dlog"
	"github.com/dynetlink/dynet/metrics"
	"github.com/dynetlink/dynet/model"
	"github.com/dynetlink/dynet/retry"
)

// Client is the module's public entry point: construct one from a Config,
// call Connect, and Monitor for events.
type Client struct {
	cfg     dynet.Config
	conn    *connection.Connection
	model   *model.Model
	bc      *broadcast.Broadcaster
	engine  *retry.Engine
	metrics *metrics.Registry
	logger  *log.Logger
	cancel  context.CancelFunc
}

// New validates cfg and wires a Client. promReg is optional; pass nil to
// run without Prometheus instrumentation.
func New(cfg dynet.Config, promReg prometheus.Registerer) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := dlog.New(os.Stderr, cfg.LogLevel, cfg.LogFormatter)

	var reg *metrics.Registry
	if promReg != nil {
		reg = metrics.New(promReg)
	}

	engine := &retry.Engine{}
	if reg != nil {
		engine.OnRetry = func() { reg.RetriesFired.Inc() }
	}

	bc := broadcast.New(nil)
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn := connection.New(addr, cfg.Active, logger, reg)

	c := &Client{
		cfg:     cfg,
		conn:    conn,
		bc:      bc,
		engine:  engine,
		metrics: reg,
		logger:  logger,
	}
	c.model = model.New(cfg, engine, conn)

	conn.OnEvent(c.handleInbound)
	conn.OnConnected(c.handleConnected)
	conn.OnDisconnected(c.handleDisconnected)

	return c, nil
}

// Connect starts the connect/reconnect loop in the background. It returns
// immediately; connection progress is reported through CONNECTED and
// DISCONNECTED events. Calling Close cancels the loop.
func (c *Client) Connect(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go func() {
		if err := c.conn.Run(ctx); err != nil && c.logger != nil {
			c.logger.Debug("connection loop stopped", "err", err)
		}
	}()
}

// Close stops the connection loop started by Connect.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Monitor registers fn to receive events of the given kinds (or every
// event, via broadcast.Wildcard).
func (c *Client) Monitor(fn func(dynet.Event), kinds ...dynet.Kind) *broadcast.Handle {
	return c.bc.Register(fn, kinds...)
}

// State reports the underlying TCP connection's lifecycle state.
func (c *Client) State() connection.State {
	return c.conn.State()
}

func (c *Client) handleConnected() {
	c.bc.Publish(dynet.NewEvent(dynet.KindConnected))
	c.bc.Publish(dynet.NewEvent(dynet.KindConfigured))
}

func (c *Client) handleDisconnected() {
	c.bc.Publish(dynet.NewEvent(dynet.KindDisconnected))
}

// handleInbound is the single point where the ordering guarantee of §5 is
// enforced: the model is updated (and any events it derives are computed)
// before anything is published.
func (c *Client) handleInbound(ev dynet.Event) {
	var derived []dynet.Event
	switch ev.Kind {
	case dynet.KindPreset:
		derived = c.model.HandlePresetReport(ev.Area, ev.Preset, c.cfg.Autodiscover)
	case dynet.KindChannel:
		if ev.Action == dynet.ActionReport {
			c.model.HandleChannelReport(ev.Area, ev.Channel, ev.TargetLevel, ev.ActualLevel, c.pollTimer())
		} else {
			c.model.HandleChannelCommand(ev.Area, ev.Channel, retry.InitialRetryDelay)
		}
	}

	c.bc.Publish(ev)
	for _, d := range derived {
		c.bc.Publish(d)
	}
}

func (c *Client) pollTimer() time.Duration {
	if c.cfg.PollTimer <= 0 {
		return retry.InitialRetryDelay
	}
	return time.Duration(c.cfg.PollTimer * float64(time.Second))
}

// PresetOn sends SELECT_PRESET for preset in area and updates the model to
// match (§4.D, §4.G).
func (c *Client) PresetOn(areaID, presetID int, fadeSeconds float64) error {
	pkt, err := dynet.BuildSelectPreset(byte(areaID), presetID, fadeSeconds)
	if err != nil {
		return err
	}
	c.conn.Enqueue(pkt, nil)
	for _, ev := range c.model.PresetOn(areaID, presetID, c.cfg.Autodiscover, true) {
		c.bc.Publish(ev)
	}
	return nil
}

// AreaAllOff sends the area-wide all-off command.
func (c *Client) AreaAllOff(areaID int, fadeSeconds float64) {
	pkt := dynet.BuildAreaAllOff(byte(areaID), fadeSeconds)
	c.conn.Enqueue(pkt, nil)
}

// SetChannelLevel sends SET_CHANNEL_*_TO_LEVEL_WITH_FADE for channel in
// area and updates the model to match (§4.D, §4.G).
func (c *Client) SetChannelLevel(areaID, channelID int, level, fadeSeconds float64) error {
	pkt, err := dynet.BuildSetChannelLevel(byte(areaID), channelID, level, fadeSeconds)
	if err != nil {
		return err
	}
	c.conn.Enqueue(pkt, nil)
	for _, ev := range c.model.SetChannelLevel(areaID, channelID, level, c.cfg.Autodiscover) {
		c.bc.Publish(ev)
	}
	return nil
}

// StopChannelFade sends STOP_FADING for channel in area.
func (c *Client) StopChannelFade(areaID, channelID int) error {
	pkt, err := dynet.BuildStopChannelFade(byte(areaID), channelID)
	if err != nil {
		return err
	}
	c.conn.Enqueue(pkt, nil)
	return nil
}

// RequestPreset queries area's active preset once, with no retry; the
// answer (or its absence) surfaces as a PRESET event or a silently
// abandoned query, per the request engine's contract (§4.F).
func (c *Client) RequestPreset(areaID int) {
	c.model.RequestPreset(areaID, retry.NoRetry, true)
}

// RequestChannelLevel queries channel's current level once, with no retry.
func (c *Client) RequestChannelLevel(areaID, channelID int) {
	c.model.RequestChannelLevel(areaID, channelID, retry.NoRetry, true)
}
