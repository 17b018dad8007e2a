// Package analysis provides the Lyapunov stability diagnostic for a
// completed trajectory.
//
//   - [Candidate] and [CandidateRate]: V and Vdot of the tracking errors
//   - [Diagnose]: recomputes eZ, eV, u, V and Vdot at every sample
//   - [Summarize]: time-weighted statistics of the diagnostic signals
//   - [ErrorPortrait]: the (eZ, eV) phase plane as ASCII art
//
// # Recompute, don't cache
//
// Diagnose re-derives every signal from the sampled states using the same
// pure evaluation the vector field uses. Nothing observed during
// integration is reused, so the diagnostic resolution follows the
// returned grid and not the solver's internal stages:
//
//	diag := analysis.Diagnose(traj, sys, metrics...)
//	fmt.Println(diag.VDot[len(diag.VDot)-1])
package analysis
