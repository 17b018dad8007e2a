// Package physics provides the plant model for the altitude channel.
//
// [PointMass] is a single mass under gravity pushed by one vertical
// thrust input. It knows nothing about control: the caller hands it the
// already-saturated command.
//
//	plant := physics.NewPointMass(2.0, 9.81)
//	zDot, vDot := plant.Derive(v, u)
//
// GetParams reports the constants for run logs.
package physics
