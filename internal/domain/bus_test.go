package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversInPublishOrder(t *testing.T) {
	bus := NewBus(16, nil)
	sub := bus.Subscribe("t1")

	for i := 0; i < 10; i++ {
		bus.Publish(NewUserAdded(i, fmt.Sprintf("user-%d", i)))
	}

	for i := 0; i < 10; i++ {
		ev := <-sub.Events()
		require.Equal(t, EventUserAdded, ev.Kind)
		payload, ok := ev.Data.(MemberPayload)
		require.True(t, ok)
		assert.Equal(t, i, payload.ID)
	}
}

func TestBusNoReplayForLateSubscribers(t *testing.T) {
	bus := NewBus(16, nil)

	bus.Publish(NewUserAdded(0, "alice"))

	sub := bus.Subscribe("t1")
	bus.Publish(NewUserAdded(1, "bob"))

	ev := <-sub.Events()
	payload := ev.Data.(MemberPayload)
	assert.Equal(t, 1, payload.ID, "a new subscriber must only see events published after it attached")
}

func TestBusFanOut(t *testing.T) {
	bus := NewBus(16, nil)
	a := bus.Subscribe("ta")
	b := bus.Subscribe("tb")

	bus.Publish(NewUserRenamed(0, "alicia"))

	for _, sub := range []*Subscription{a, b} {
		ev := <-sub.Events()
		assert.Equal(t, EventUserRenamed, ev.Kind)
	}
}

func TestBusDropsSlowSubscriber(t *testing.T) {
	dropped := 0
	bus := NewBus(2, func() { dropped++ })

	slow := bus.Subscribe("slow")
	fast := bus.Subscribe("fast")

	// Fill the slow subscriber's queue, keeping the fast one drained.
	bus.Publish(NewUserAdded(0, "a"))
	bus.Publish(NewUserAdded(1, "b"))
	<-fast.Events()
	<-fast.Events()

	bus.Publish(NewUserAdded(2, "c"))
	<-fast.Events()

	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, bus.subscriberCount())

	// The dropped subscriber drains its queue, then observes end-of-stream.
	<-slow.Events()
	<-slow.Events()
	_, ok := <-slow.Events()
	assert.False(t, ok)
}

func TestBusCloseWithDeliversTerminalEvent(t *testing.T) {
	bus := NewBus(16, nil)
	sub := bus.Subscribe("t1")

	bus.CloseWith(NewComplete("done"))

	ev, ok := <-sub.Events()
	require.True(t, ok)
	assert.Equal(t, EventComplete, ev.Kind)
	assert.Equal(t, CompletePayload{MessageType: EventComplete, CompletionInfo: "done"}, ev.Data)

	_, ok = <-sub.Events()
	assert.False(t, ok, "channel must close right after the terminal event")
}

func TestBusPublishAfterClose(t *testing.T) {
	bus := NewBus(16, nil)
	bus.CloseWith(NewComplete("done"))

	// Must not panic on the closed bus.
	bus.Publish(NewUserAdded(0, "alice"))
	bus.CloseWith(NewComplete("again"))
	bus.Close()
}

func TestBusSubscribeAfterClose(t *testing.T) {
	bus := NewBus(16, nil)
	bus.Close()

	sub := bus.Subscribe("t1")
	_, ok := <-sub.Events()
	assert.False(t, ok, "subscribing to a closed bus yields an immediately closed channel")
}

func TestBusUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus(16, nil)
	sub := bus.Subscribe("t1")

	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)
	bus.Unsubscribe(nil)

	assert.Equal(t, 0, bus.subscriberCount())
}

func TestBusReplaceOnlyTargetsMatchingToken(t *testing.T) {
	bus := NewBus(16, nil)
	old := bus.Subscribe("shared")
	other := bus.Subscribe("other")

	bus.Replace("shared")

	ev, ok := <-old.Events()
	require.True(t, ok)
	assert.Equal(t, EventDisconnected, ev.Kind)
	_, ok = <-old.Events()
	assert.False(t, ok)

	// The unrelated subscriber is untouched.
	bus.Publish(NewUserAdded(1, "bob"))
	ev = <-other.Events()
	assert.Equal(t, EventUserAdded, ev.Kind)
}

func TestBusReplaceWithoutExistingStream(t *testing.T) {
	bus := NewBus(16, nil)

	// No-op when the token has no registered stream.
	bus.Replace("nobody")
	assert.Equal(t, 0, bus.subscriberCount())
}
