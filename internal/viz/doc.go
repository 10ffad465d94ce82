// Package viz renders simulation output in the terminal.
//
//   - [RenderTable]: bordered tables for inspect and list output
//   - [PlotSpecies]: line plot of species trajectories
//   - [Canvas]: Braille pixel canvas, used for phase-plane orbits
//   - [Tuner]: Bubble Tea program for editing values and re-simulating
//
// # Tuner Key Bindings
//
//	j/k   - Select value
//	h/l   - Decrease/increase by 10%
//	Enter - Type a new value
//	P     - Toggle trajectory/phase view
//	R     - Reset all values
//	Q     - Quit
package viz
