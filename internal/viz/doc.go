// Package viz renders simulation results in the terminal.
//
//   - [RenderXY] and [RenderResult]: braille line plots in any [Mode]
//   - [RenderProfile]: concentration against distance via asciigraph
//   - [Player]: a Bubble Tea model that replays a result as it would be
//     recorded, optionally over a measured trace
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first sample
//	M     - Cycle plot modes (i-E, i-t, E-t, E-i)
//	T     - Cycle color themes
//	E     - Jump to the end
//	Q     - Quit
package viz
