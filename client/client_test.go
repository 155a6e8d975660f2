package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynetlink/dynet"
	"github.com/dynetlink/dynet/broadcast"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(dynet.Config{}, nil)
	require.Error(t, err)
}

func TestNewBuildsAConnectedClientGraph(t *testing.T) {
	c, err := New(dynet.Config{Host: "127.0.0.1", Port: 12345, Autodiscover: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, c.model)
	require.NotNil(t, c.conn)
}

func TestHandleInboundUpdatesModelBeforeBroadcast(t *testing.T) {
	c, err := New(dynet.Config{Host: "127.0.0.1", Port: 12345, Autodiscover: true}, nil)
	require.NoError(t, err)

	var seen []dynet.Event
	c.Monitor(func(ev dynet.Event) { seen = append(seen, ev) }, broadcast.Wildcard)

	ev := dynet.NewEvent(dynet.KindPreset)
	ev.Area, ev.Preset, ev.State = 1, 3, dynet.StateOn
	c.handleInbound(ev)

	area, ok := c.model.Area(1)
	require.True(t, ok)
	assert.True(t, area.Presets[3].Active, "model must already reflect the report by the time listeners are notified")

	assert.NotEmpty(t, seen)
	assert.Equal(t, dynet.KindPreset, seen[0].Kind)
}

func TestConnectedEventsFireConnectedThenConfigured(t *testing.T) {
	c, err := New(dynet.Config{Host: "127.0.0.1", Port: 12345}, nil)
	require.NoError(t, err)

	var kinds []dynet.Kind
	c.Monitor(func(ev dynet.Event) { kinds = append(kinds, ev.Kind) }, broadcast.Wildcard)

	c.handleConnected()
	require.Len(t, kinds, 2)
	assert.Equal(t, dynet.KindConnected, kinds[0])
	assert.Equal(t, dynet.KindConfigured, kinds[1])
}
