// Package viz renders finished runs in the terminal.
//
//   - [Scrubber]: Bubble Tea model stepping a cursor through a trajectory
//     with a Braille plot of one signal and a readout of the full state
//   - [RenderSummary]: lipgloss panel with the run summary, metrics and
//     warnings
//
// # Key Bindings
//
//	←/→        step one sample
//	pgup/pgdn  jump a twentieth of the run
//	home/end   first/last sample
//	tab        next signal
//	q          quit
package viz
