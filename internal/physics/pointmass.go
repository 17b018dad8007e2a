package physics

const (
	DefaultMass    = 2.0
	DefaultGravity = 9.81

	// DefaultThrustGs is the actuator ceiling in multiples of the hover
	// thrust m*g.
	DefaultThrustGs = 4.0
)

type PointMass struct {
	Mass    float64
	Gravity float64
}

func NewPointMass(mass, gravity float64) *PointMass {
	return &PointMass{Mass: mass, Gravity: gravity}
}

// Derive returns (zDot, vDot) for vertical velocity v under command u.
func (p *PointMass) Derive(v, u float64) (float64, float64) {
	return v, u/p.Mass - p.Gravity
}

// HoverThrust is the command that exactly cancels gravity.
func (p *PointMass) HoverThrust() float64 {
	return p.Mass * p.Gravity
}

// ThrustLimit returns the command producing gs multiples of hover thrust.
func (p *PointMass) ThrustLimit(gs float64) float64 {
	return gs * p.Gravity * p.Mass
}

func (p *PointMass) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"gravity": p.Gravity,
	}
}
