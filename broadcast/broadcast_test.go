package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynetlink/dynet"
)

func TestPublishDeliversOnlyMatchingKind(t *testing.T) {
	b := New(nil)
	var gotPreset, gotChannel []dynet.Event

	b.Register(func(ev dynet.Event) { gotPreset = append(gotPreset, ev) }, dynet.KindPreset)
	b.Register(func(ev dynet.Event) { gotChannel = append(gotChannel, ev) }, dynet.KindChannel)

	b.Publish(dynet.Event{Kind: dynet.KindPreset})
	b.Publish(dynet.Event{Kind: dynet.KindChannel})

	assert.Len(t, gotPreset, 1)
	assert.Len(t, gotChannel, 1)
}

func TestWildcardReceivesEverything(t *testing.T) {
	b := New(nil)
	var got []dynet.Event
	b.Register(func(ev dynet.Event) { got = append(got, ev) }, Wildcard)

	b.Publish(dynet.Event{Kind: dynet.KindPreset})
	b.Publish(dynet.Event{Kind: dynet.KindConnected})

	assert.Len(t, got, 2)
}

func TestCloseStopsDelivery(t *testing.T) {
	b := New(nil)
	var count int
	h := b.Register(func(dynet.Event) { count++ }, dynet.KindPreset)

	b.Publish(dynet.Event{Kind: dynet.KindPreset})
	h.Close()
	b.Publish(dynet.Event{Kind: dynet.KindPreset})

	assert.Equal(t, 1, count)
}

func TestMonitorUnmonitorAdjustsKinds(t *testing.T) {
	b := New(nil)
	var count int
	h := b.Register(func(dynet.Event) { count++ }, dynet.KindPreset)

	h.Monitor(dynet.KindChannel)
	assert.ElementsMatch(t, []dynet.Kind{dynet.KindPreset, dynet.KindChannel}, h.Kinds())

	h.Unmonitor(dynet.KindPreset)
	b.Publish(dynet.Event{Kind: dynet.KindPreset})
	assert.Equal(t, 0, count)

	b.Publish(dynet.Event{Kind: dynet.KindChannel})
	assert.Equal(t, 1, count)
}

func TestPublishDeliveredInRegistrationOrder(t *testing.T) {
	b := New(nil)
	var order []int
	b.Register(func(dynet.Event) { order = append(order, 1) }, Wildcard)
	b.Register(func(dynet.Event) { order = append(order, 2) }, Wildcard)
	b.Register(func(dynet.Event) { order = append(order, 3) }, Wildcard)

	b.Publish(dynet.Event{Kind: dynet.KindConnected})
	assert.Equal(t, []int{1, 2, 3}, order)
}
