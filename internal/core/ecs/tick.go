package ecs

import (
	"time"

	"github.com/rs/zerolog"
)

// Driver runs the fixed per-tick ordering from spec.md §5: bindings,
// then systems, then deletions, then the clock advances last so Now()
// is stable for everything that ran earlier in the same tick. Before
// bindings run, it drains the background event queue so cross-thread
// publications join the tick at a single well-defined point.
type Driver struct {
	Registry *Registry
	Events   *EventManager
	Log      zerolog.Logger

	// OnTick, if set, is called after each successful tick with the
	// clock snapshot it produced and the tick's wall-clock duration.
	// cmd/sim wires this to a metrics.Collector so tick timing and
	// entity/event counters are reported without this package
	// depending on Prometheus directly.
	OnTick func(Now, time.Duration)
}

// NewDriver wires r and em together with a no-op logger; callers
// typically replace Log with one configured by cmd/sim's zerolog setup.
func NewDriver(r *Registry, em *EventManager) *Driver {
	return &Driver{Registry: r, Events: em, Log: zerolog.Nop()}
}

// Tick runs one full tick and returns the clock snapshot it produced.
func (d *Driver) Tick() (Now, error) {
	start := time.Now()
	if err := d.Events.Drain(d.Registry); err != nil {
		d.Log.Error().Err(err).Msg("event drain failed")
		return Now{}, err
	}
	if err := d.Registry.Bindings.Apply(d.Registry); err != nil {
		d.Log.Error().Err(err).Msg("binding apply failed")
		return Now{}, err
	}
	now := d.Registry.Clock.Now()
	if err := d.Registry.RunSystems(now); err != nil {
		d.Log.Error().Err(err).Msg("system run failed")
		return Now{}, err
	}
	if err := d.Registry.FlushDestroys(); err != nil {
		d.Log.Error().Err(err).Msg("destroy flush failed")
		return Now{}, err
	}
	result := d.Registry.Clock.Advance()
	if d.OnTick != nil {
		d.OnTick(result, time.Since(start))
	}
	return result, nil
}

// Run calls Tick in a loop until stop returns true, a ShutdownEvent has
// been requested, or Tick errors. It returns the exit code carried by
// the ShutdownEvent (0 if the loop ended via stop or an error).
func (d *Driver) Run(stop func(Now) bool) (int, error) {
	for {
		now, err := d.Tick()
		if err != nil {
			return 0, err
		}
		if requested, code := d.Registry.ShutdownRequested(); requested {
			return code, nil
		}
		if stop(now) {
			return 0, nil
		}
	}
}

// ShutdownEventName is the well-known event name a plugin or system
// publishes to end the tick loop; its payload's "code" field becomes
// the process exit code.
const ShutdownEventName = "ShutdownEvent"

// ShutdownPayload is the typed payload ShutdownEventName carries.
type ShutdownPayload struct {
	Code int `json:"code" hook:"code"`
}

// InstallShutdownHandler subscribes a handler on em that calls
// r.RequestShutdown with the dispatched ShutdownEvent's code, wiring
// the well-known event name to the driver's exit path.
func InstallShutdownHandler(r *Registry, em *EventManager) {
	em.Subscribe(ShutdownEventName, ErrPriority, func(reg *Registry, payload any) (bool, error) {
		switch p := payload.(type) {
		case ShutdownPayload:
			reg.RequestShutdown(p.Code)
		case *ShutdownPayload:
			reg.RequestShutdown(p.Code)
		default:
			reg.RequestShutdown(0)
		}
		return true, nil
	})
}
