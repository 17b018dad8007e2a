package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/altihold/internal/config"
	"github.com/san-kum/altihold/internal/dynamo"
	"github.com/san-kum/altihold/internal/sim"
)

var _ = Describe("reference climb", Ordered, func() {
	var (
		cfg    *config.Config
		result *sim.Result
	)

	BeforeAll(func() {
		cfg = config.GetPreset("reference")
		var err error
		result, err = sim.New(cfg, nil).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
	})

	It("covers the whole horizon on a strictly increasing grid", func() {
		times := result.Trajectory.Times
		Expect(times[0]).To(Equal(0.0))
		Expect(times[len(times)-1]).To(Equal(100.0))
		for i := 1; i < len(times); i++ {
			Expect(times[i]).To(BeNumerically(">", times[i-1]))
		}
	})

	It("keeps every sample finite with six components", func() {
		for _, x := range result.Trajectory.States {
			Expect(x).To(HaveLen(dynamo.StateDim))
			Expect(x.IsValid()).To(BeTrue())
		}
	})

	It("settles near the target", func() {
		_, x := result.Trajectory.Final()
		Expect(math.Abs(100 - x[dynamo.IdxZ])).To(BeNumerically("<", 5))
		Expect(math.Abs(result.Summary.FinalEZ)).To(BeNumerically("<", 5))
	})

	It("never commands thrust outside [0, 4·g·2]", func() {
		for _, u := range result.Diagnostics.U {
			Expect(u).To(BeNumerically(">=", 0))
			Expect(u).To(BeNumerically("<=", 4*9.81*2+1e-9))
		}
	})

	It("climbs to the target with a bounded overshoot", func() {
		z := result.Trajectory.Column(dynamo.IdxZ)
		Expect(result.Diagnostics.U[0]).To(BeNumerically("~", 4*9.81*2, 1e-9))

		peak := z[0]
		for _, zi := range z {
			peak = math.Max(peak, zi)
		}
		Expect(peak).To(BeNumerically(">=", 100), "the integral term carries the climb past the target")
		Expect(peak).To(BeNumerically("<", 105))
	})

	It("recomputes the diagnostic exactly as the vector field sees it", func() {
		loop := sim.BuildLoop(cfg)
		d := result.Diagnostics
		Expect(d.Len()).To(Equal(result.Trajectory.Len()))

		for i, x := range result.Trajectory.States {
			sig := loop.Evaluate(x)
			Expect(d.EZ[i]).To(Equal(sig.EZ))
			Expect(d.EV[i]).To(Equal(sig.EV))
			Expect(d.U[i]).To(Equal(sig.U))
			Expect(d.V[i]).To(Equal(sig.V))
			Expect(d.VDot[i]).To(Equal(sig.VDot))
		}
	})

	It("drifts the gains only slightly under slow adaptation", func() {
		_, x := result.Trajectory.Final()
		Expect(x[dynamo.IdxKP]).To(BeNumerically("~", 2.0, 0.2))
		Expect(x[dynamo.IdxKI]).To(BeNumerically("~", 0.1, 0.01))
		Expect(x[dynamo.IdxKD]).To(BeNumerically("~", 6.0, 0.6))
	})

	It("reports the standard metrics", func() {
		Expect(result.Metrics).To(HaveKey("saturation_fraction"))
		Expect(result.Metrics).To(HaveKey("settling_time"))
		Expect(result.Metrics["saturation_fraction"]).To(BeNumerically(">", 0))
	})
})

var _ = Describe("adaptation regimes", func() {
	It("leaves the gains untouched when adaptation is off", func() {
		cfg := config.GetPreset("frozen-gains")
		result, err := sim.New(cfg, nil).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for _, x := range result.Trajectory.States {
			Expect(x[dynamo.IdxKP]).To(Equal(2.0))
			Expect(x[dynamo.IdxKI]).To(Equal(0.1))
			Expect(x[dynamo.IdxKD]).To(Equal(6.0))
		}
	})

	It("reports divergence instead of a trajectory for damping 1.0", func() {
		cfg := config.GetPreset("divergent")
		result, err := sim.New(cfg, nil).Run(context.Background())

		Expect(err).To(MatchError(dynamo.ErrDivergence))
		Expect(result).To(BeNil())

		var div *dynamo.DivergenceError
		Expect(errors.As(err, &div)).To(BeTrue())
		Expect(div.Time).To(BeNumerically("<", cfg.Horizon.End))
	})

	It("treats a zero gain as absorbing", func() {
		cfg := config.DefaultConfig()
		cfg.InitState.KI = 0
		cfg.Horizon.End = 20

		result, err := sim.New(cfg, nil).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		for _, x := range result.Trajectory.States {
			Expect(x[dynamo.IdxKI]).To(Equal(0.0))
		}
	})
})

var _ = Describe("configuration errors", func() {
	DescribeTable("are rejected before integration",
		func(mutate func(*config.Config)) {
			cfg := config.DefaultConfig()
			mutate(cfg)

			result, err := sim.New(cfg, nil).Run(context.Background())
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			Expect(result).To(BeNil())
		},
		Entry("non-positive mass", func(c *config.Config) { c.Plant.Mass = 0 }),
		Entry("u_max below u_min", func(c *config.Config) { c.Controller.UMin, c.Controller.UMax = 10, 1 }),
		Entry("non-positive horizon", func(c *config.Config) { c.Horizon.End = -1 }),
	)
})
