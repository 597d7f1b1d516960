package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeIsDeferredUntilUpdate(t *testing.T) {
	var delivered []Handle
	m := NewManager(func(h Handle, evt Type, payload Payload) error {
		delivered = append(delivered, h)
		return nil
	}, nil)

	m.Subscribe("bot-a", ShipSpawned)
	m.FireEvent(ShipSpawned, nil, nil)
	assert.Empty(t, delivered, "subscriber must not be active before Update")

	m.Update()
	m.FireEvent(ShipSpawned, nil, nil)
	assert.Equal(t, []Handle{"bot-a"}, delivered)
}

func TestUnsubscribeIsDeferredUntilUpdate(t *testing.T) {
	var count int
	m := NewManager(func(h Handle, evt Type, payload Payload) error {
		count++
		return nil
	}, nil)

	m.Subscribe("bot-a", ShipSpawned)
	m.Update()

	m.Unsubscribe("bot-a", ShipSpawned)
	m.FireEvent(ShipSpawned, nil, nil)
	assert.Equal(t, 1, count, "still active until Update runs")

	m.Update()
	m.FireEvent(ShipSpawned, nil, nil)
	assert.Equal(t, 1, count, "removed after Update")
}

func TestFireEventSkipsSender(t *testing.T) {
	var delivered []Handle
	m := NewManager(func(h Handle, evt Type, payload Payload) error {
		delivered = append(delivered, h)
		return nil
	}, nil)

	m.Subscribe("bot-a", MsgReceived)
	m.Subscribe("bot-b", MsgReceived)
	m.Update()

	m.FireEvent(MsgReceived, "bot-a", "hello")
	assert.Equal(t, []Handle{"bot-b"}, delivered)
}

func TestFireEventDeliversInSubscriptionOrder(t *testing.T) {
	var delivered []Handle
	m := NewManager(func(h Handle, evt Type, payload Payload) error {
		delivered = append(delivered, h)
		return nil
	}, nil)

	m.Subscribe("bot-c", PlayerLeft)
	m.Subscribe("bot-a", PlayerLeft)
	m.Subscribe("bot-b", PlayerLeft)
	m.Update()

	m.FireEvent(PlayerLeft, nil, nil)
	assert.Equal(t, []Handle{"bot-c", "bot-a", "bot-b"}, delivered)
}

func TestFireEventReportsDispatchErrorsWithoutAbortingDelivery(t *testing.T) {
	var delivered []Handle
	var errored []Handle

	m := NewManager(func(h Handle, evt Type, payload Payload) error {
		delivered = append(delivered, h)
		if h == "bot-a" {
			return errors.New("script panic")
		}
		return nil
	}, func(h Handle, evt Type, err error) {
		errored = append(errored, h)
	})

	m.Subscribe("bot-a", ShipKilled)
	m.Subscribe("bot-b", ShipKilled)
	m.Update()

	m.FireEvent(ShipKilled, nil, nil)
	assert.Equal(t, []Handle{"bot-a", "bot-b"}, delivered, "bot-b still gets delivery after bot-a errors")
	assert.Equal(t, []Handle{"bot-a"}, errored)
}

func TestUnsubscribeImmediateAppliesSynchronously(t *testing.T) {
	var count int
	m := NewManager(func(h Handle, evt Type, payload Payload) error {
		count++
		return nil
	}, nil)

	m.Subscribe("bot-a", PlayerJoined)
	m.Update()

	m.UnsubscribeImmediate("bot-a", PlayerJoined)
	m.FireEvent(PlayerJoined, nil, nil)
	assert.Equal(t, 0, count)
}

func TestUnsubscribeImmediateAllCoversEveryType(t *testing.T) {
	var count int
	m := NewManager(func(h Handle, evt Type, payload Payload) error {
		count++
		return nil
	}, nil)

	m.Subscribe("bot-a", ShipSpawned)
	m.Subscribe("bot-a", PlayerLeft)
	m.Update()

	m.UnsubscribeImmediateAll("bot-a")

	m.FireEvent(ShipSpawned, nil, nil)
	m.FireEvent(PlayerLeft, nil, nil)
	assert.Equal(t, 0, count)
}

func TestResubscribingActiveOrPendingHandleIsNoop(t *testing.T) {
	m := NewManager(func(h Handle, evt Type, payload Payload) error { return nil }, nil)

	m.Subscribe("bot-a", ShipSpawned)
	m.Subscribe("bot-a", ShipSpawned) // pending, re-subscribe no-ops
	m.Update()

	st := m.stateFor(ShipSpawned)
	assert.Len(t, st.active, 1)

	m.Subscribe("bot-a", ShipSpawned) // already active, no-ops
	assert.False(t, m.anyPending)
}
