// Package viz provides the terminal visualization for field scenes.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live top-down view of a running scene with a stats panel
//   - [Canvas]: Braille-based pixel canvas the map is drawn on
//
// The view is a consumer of the solver's public surface: it reads smoothed
// up vectors, zero-g flags and the transition log, and never touches solver
// internals.
//
// # Key Bindings
//
//	Space - Pause/Resume the scene
//	R     - Rebuild the scene from its configuration
//	Tab   - Focus the next entity in the stats panel
//	Q     - Quit
package viz
