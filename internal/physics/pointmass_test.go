package physics

import (
	"math"
	"testing"
)

func TestPointMassHover(t *testing.T) {
	p := NewPointMass(DefaultMass, DefaultGravity)

	zDot, vDot := p.Derive(1.5, p.HoverThrust())

	if zDot != 1.5 {
		t.Errorf("expected zDot 1.5, got %f", zDot)
	}
	if math.Abs(vDot) > 1e-12 {
		t.Errorf("vertical acceleration should be ~0 at hover thrust, got %g", vDot)
	}
}

func TestPointMassFreefall(t *testing.T) {
	p := NewPointMass(DefaultMass, DefaultGravity)

	_, vDot := p.Derive(0, 0)

	if vDot != -DefaultGravity {
		t.Errorf("expected vDot=%f, got %f", -DefaultGravity, vDot)
	}
}

func TestPointMassThrustLimit(t *testing.T) {
	p := NewPointMass(2.0, 9.81)

	uMax := p.ThrustLimit(DefaultThrustGs)
	if math.Abs(uMax-4*9.81*2) > 1e-12 {
		t.Errorf("expected uMax %f, got %f", 4*9.81*2, uMax)
	}

	_, vDot := p.Derive(0, uMax)
	if math.Abs(vDot-3*9.81) > 1e-12 {
		t.Errorf("expected net 3g at full thrust, got %f", vDot)
	}
}

func TestPointMassParams(t *testing.T) {
	p := NewPointMass(3, 9.81)
	params := p.GetParams()
	if params["mass"] != 3 || params["gravity"] != 9.81 {
		t.Errorf("unexpected params %v", params)
	}
}
