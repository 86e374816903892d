package ecs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Driver_Tick_RunsBindingsSystemsThenAdvancesClock(t *testing.T) {
	// Arrange
	r := NewRegistry()
	em := NewEventManager()
	d := NewDriver(r, em)
	var ran bool
	d.Registry.AddSystem("mark", 0, func(reg *Registry, now Now) error {
		ran = true
		return nil
	}, nil)

	// Act
	now, err := d.Tick()

	// Assert
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, Tick(1), now.Tick)
}

func Test_Driver_Tick_InvokesOnTickWithElapsedDuration(t *testing.T) {
	// Arrange
	r := NewRegistry()
	em := NewEventManager()
	d := NewDriver(r, em)
	var gotNow Now
	var called bool
	d.OnTick = func(now Now, elapsed time.Duration) {
		called = true
		gotNow = now
	}

	// Act
	now, err := d.Tick()

	// Assert
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, now, gotNow)
}

func Test_Driver_Run_StopsOnShutdownEventCode(t *testing.T) {
	// Arrange
	r := NewRegistry()
	em := NewEventManager()
	InstallShutdownHandler(r, em)
	d := NewDriver(r, em)
	em.Enqueue(ShutdownEventName, ShutdownPayload{Code: 7})

	// Act
	code, err := d.Run(func(Now) bool { return false })

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func Test_Driver_Run_StopsWhenStopFuncReturnsTrue(t *testing.T) {
	// Arrange
	r := NewRegistry()
	em := NewEventManager()
	d := NewDriver(r, em)

	// Act
	ticks := 0
	code, err := d.Run(func(Now) bool {
		ticks++
		return ticks >= 3
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 3, ticks)
}
