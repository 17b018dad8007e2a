// Package control provides the altitude control law and its gain
// adaptation.
//
//   - [PID]: saturating PID law evaluated from instantaneous errors and
//     the current (time-varying) gains
//   - [Adaptation]: Lyapunov-descent gain update, kDot = damping*Vdot*k
//
// Both are pure: they hold only constants and may be evaluated any number
// of times per integration step.
//
// # Usage
//
//	law := control.NewPID(100, 0, 78.48) // target, uMin, uMax
//	sig := law.Compute(z, v, eI, control.Gains{KP: 2, KI: 0.1, KD: 6})
//	rates := control.Adaptation{Damping: 1e-6}.Rates(vDot, gains)
package control
