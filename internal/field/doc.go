// Package field implements superposed inverse-square gravity fields over a
// mutable set of sources.
//
// The package defines the core field types and the accumulation queries:
//
//   - [Source]: a spherical gravity source (surface strength and radius)
//   - [Registry]: the live source set, keyed by [SourceID] handles
//   - [Sample]: net field plus dominant source at a point
//   - [Zone]: a stable-zone override that damps the net field
//
// Field strength follows surface-referenced inverse-square falloff:
// strength * radius^2 / distance^2, with the distance clamped to the surface
// radius so the magnitude never exceeds the surface value and never
// diverges. Sources beyond their max range contribute nothing.
//
// # Queries
//
// [Registry.Sample] is the per-tick hot path and allocates nothing.
// [Registry.Contributions] builds the full per-source breakdown with
// influence fractions and is meant for inspection tools, not the tick loop.
//
// # Thread Safety
//
// A Registry is NOT thread-safe. The owning loop serializes mutation with
// sampling. For a concurrent read pass, copy the set once per tick with
// [Registry.Snapshot] and sample the copy via [SampleViews].
package field
