package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgekernel/internal/core/ecs/value"
)

func Test_EventManager_PublishDispatchesInPriorityOrder(t *testing.T) {
	// Arrange
	em := NewEventManager()
	r := NewRegistry()
	var order []string
	em.Subscribe("damage", Priority(10), func(reg *Registry, payload any) (bool, error) {
		order = append(order, "second")
		return false, nil
	})
	em.Subscribe("damage", Priority(1), func(reg *Registry, payload any) (bool, error) {
		order = append(order, "first")
		return false, nil
	})

	// Act
	err := em.Publish(r, "damage", 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func Test_EventManager_HandlerStopsRemainingChain(t *testing.T) {
	// Arrange
	em := NewEventManager()
	r := NewRegistry()
	called := 0
	em.Subscribe("evt", Priority(1), func(reg *Registry, payload any) (bool, error) {
		called++
		return true, nil
	})
	em.Subscribe("evt", Priority(2), func(reg *Registry, payload any) (bool, error) {
		called++
		return false, nil
	})

	// Act
	err := em.Publish(r, "evt", nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, called)
}

func Test_EventManager_UnsubscribeRemovesHandler(t *testing.T) {
	// Arrange
	em := NewEventManager()
	r := NewRegistry()
	called := false
	token := em.Subscribe("evt", ErrPriority, func(reg *Registry, payload any) (bool, error) {
		called = true
		return false, nil
	})

	// Act
	em.Unsubscribe("evt", token)
	err := em.Publish(r, "evt", nil)

	// Assert
	require.NoError(t, err)
	assert.False(t, called)
}

type damageEvent struct {
	Amount int `mapstructure:"amount"`
}

func Test_EventManager_PublishValueDecodesRegisteredPayloadType(t *testing.T) {
	// Arrange
	em := NewEventManager()
	r := NewRegistry()
	RegisterPayloadType[damageEvent](em, "damage")
	var got *damageEvent
	em.Subscribe("damage", ErrPriority, func(reg *Registry, payload any) (bool, error) {
		got = payload.(*damageEvent)
		return false, nil
	})

	// Act
	err := em.PublishValue(r, "damage", value.Object(map[string]value.Value{
		"amount": value.Int(12),
	}))

	// Assert
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 12, got.Amount)
}

func Test_EventManager_EnqueueThenDrainDispatches(t *testing.T) {
	// Arrange
	em := NewEventManager()
	r := NewRegistry()
	received := 0
	em.Subscribe("tick-event", ErrPriority, func(reg *Registry, payload any) (bool, error) {
		received = payload.(int)
		return false, nil
	})

	// Act
	em.Enqueue("tick-event", 7)
	err := em.Drain(r)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 7, received)
}

func Test_EventManager_RecursionLimit(t *testing.T) {
	// Arrange
	em := NewEventManager()
	em.maxDepth = 2
	r := NewRegistry()
	em.Subscribe("loop", ErrPriority, func(reg *Registry, payload any) (bool, error) {
		return false, em.Publish(reg, "loop", nil)
	})

	// Act
	err := em.Publish(r, "loop", nil)

	// Assert
	assert.Error(t, err)
	var ecsErr *ECSError
	assert.ErrorAs(t, err, &ecsErr)
	assert.Equal(t, ErrHookRecursionLimit, ecsErr.Code)
}
