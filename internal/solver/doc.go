// Package solver advances per-entity gravity state one tick at a time.
//
// The package ties the field queries to the orientation blend:
//
//   - [State]: one entity's solved gravity record
//   - [Config]: per-entity thresholds and rates
//   - [Solver]: runs the tick against a [Sampler] and zone set
//   - [Hooks]: edge-triggered transition callbacks
//
// # Tick Order
//
// Each [Solver.Step] samples the field at the entity position, applies the
// zone overrides, runs the weightlessness state machine, refreshes the
// orientation target and blends the smoothed up toward it, then fires
// hooks: dominant change first, zero-g transitions second. Hooks run
// synchronously and see the fully updated state.
//
// # Thread Safety
//
// A State has exactly one writer, the solver tick that owns it. Everything
// else reads through the accessors between ticks. For a concurrent pass
// over many entities, give each its own State and sample a per-tick
// [field.Views] snapshot instead of the live registry.
package solver
