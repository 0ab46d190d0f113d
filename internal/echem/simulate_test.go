package echem_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/echemsim/internal/echem"
)

func stepParams() echem.Params {
	p := echem.DefaultParams()
	p.Technique = echem.Step
	return p
}

var _ = Describe("Simulate", func() {
	Context("cyclic voltammetry with a bare electron transfer", func() {
		var res *echem.Result

		BeforeEach(func() {
			var err error
			res, err = echem.Simulate(echem.DefaultParams())
			Expect(err).NotTo(HaveOccurred())
		})

		It("samples every series T+1 times", func() {
			Expect(res.Potential).To(HaveLen(1001))
			Expect(res.Current).To(HaveLen(1001))
			Expect(res.Time).To(HaveLen(1001))
			Expect(res.Oxidized).To(HaveLen(1001))
		})

		It("gives one distance point per grid column", func() {
			Expect(res.Distance).To(HaveLen(101))
			Expect(res.Oxidized[0]).To(HaveLen(len(res.Distance)))
			Expect(res.Distance[0]).To(Equal(0.0))
			Expect(res.Distance[100]).To(BeNumerically("~", res.Grid.Length, 1e-12))
		})

		It("discretizes to the reference diffusion number", func() {
			Expect(res.Grid.TotalTime).To(BeNumerically("~", 24, 1e-12))
			Expect(res.Grid.Lambda[echem.Oxidized]).To(BeNumerically("~", 10000.0/36000.0, 1e-9))
		})

		It("turns around at the switching potential", func() {
			Expect(res.Potential[0]).To(Equal(0.5))
			Expect(res.Potential[500]).To(BeNumerically("~", -0.7, 1e-9))
			Expect(res.Potential[1000]).To(BeNumerically("~", 0.5, 1e-9))
			Expect(floats.MinIdx(res.Potential)).To(Equal(500))
			for i := 0; i < 1000; i++ {
				if i < 500 {
					Expect(res.Potential[i+1]).To(BeNumerically("<", res.Potential[i]), "sample %d", i)
				} else {
					Expect(res.Potential[i+1]).To(BeNumerically(">", res.Potential[i]), "sample %d", i)
				}
			}
		})

		It("starts from zero current and reduces on the forward scan", func() {
			Expect(res.Current[0]).To(Equal(0.0))
			for i := 1; i <= 500; i++ {
				Expect(res.Current[i]).To(BeNumerically("<=", 1e-9), "sample %d", i)
			}
		})

		It("has a cathodic peak of the expected magnitude and an anodic return peak", func() {
			minI, maxI := 0.0, 0.0
			for i, c := range res.Current {
				if i <= 500 && c < minI {
					minI = c
				}
				if i > 500 && c > maxI {
					maxI = c
				}
			}
			Expect(-minI).To(BeNumerically(">=", 0.5e-6))
			Expect(-minI).To(BeNumerically("<=", 2e-6))
			Expect(maxI).To(BeNumerically(">", 0))
		})

		It("keeps the chemical species at zero", func() {
			for _, row := range res.Chemical {
				for _, c := range row {
					Expect(c).To(Equal(0.0))
				}
			}
		})

		It("conserves the total concentration at every grid point", func() {
			c := res.Params.Concentration
			for i := range res.Oxidized {
				for j := range res.Oxidized[i] {
					Expect(res.Oxidized[i][j]+res.Reduced[i][j]).To(BeNumerically("~", c, c*1e-9))
				}
			}
		})

		It("carries no warnings", func() {
			Expect(res.Warnings).To(BeEmpty())
		})
	})

	It("is deterministic", func() {
		p := echem.DefaultParams()
		p.Mechanism = echem.EC
		p.ChemForward = 0.3
		p.ChemReverse = 0.1
		a, err := echem.Simulate(p)
		Expect(err).NotTo(HaveOccurred())
		b, err := echem.Simulate(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Current).To(Equal(b.Current))
		Expect(a.Chemical).To(Equal(b.Chemical))
	})

	DescribeTable("mass balance with coupled chemistry",
		func(m echem.Mechanism, kcf, kcr float64, withChem bool) {
			p := echem.DefaultParams()
			p.Mechanism = m
			p.ChemForward = kcf
			p.ChemReverse = kcr
			res, err := echem.Simulate(p)
			Expect(err).NotTo(HaveOccurred())

			c := p.Concentration
			for i := range res.Oxidized {
				for j := range res.Oxidized[i] {
					total := res.Oxidized[i][j] + res.Reduced[i][j]
					if withChem {
						total += res.Chemical[i][j]
					}
					Expect(total).To(BeNumerically("~", c, c*1e-9))
				}
			}
		},
		Entry("EC", echem.EC, 0.5, 0.1, true),
		Entry("CE", echem.CE, 0.2, 0.4, true),
		Entry("ECat without back reaction", echem.ECat, 0.5, 0.0, false),
	)

	It("splits the CE bulk at equilibrium", func() {
		p := echem.DefaultParams()
		p.Mechanism = echem.CE
		p.ChemForward = 1
		p.ChemReverse = 3
		res, err := echem.Simulate(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Chemical[0][50]).To(BeNumerically("~", p.Concentration*0.75, 1e-20))
		Expect(res.Oxidized[0][50]).To(BeNumerically("~", p.Concentration*0.25, 1e-20))
	})

	It("treats CE without a reverse rate like a bare electron transfer", func() {
		p := echem.DefaultParams()
		ref, err := echem.Simulate(p)
		Expect(err).NotTo(HaveOccurred())

		p.Mechanism = echem.CE
		p.ChemForward = 1
		res, err := echem.Simulate(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Current).To(Equal(ref.Current))
	})

	It("runs ECE with the bare coupling and says so", func() {
		p := echem.DefaultParams()
		ref, err := echem.Simulate(p)
		Expect(err).NotTo(HaveOccurred())

		p.Mechanism = echem.ECE
		p.ChemForward = 1
		res, err := echem.Simulate(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Current).To(Equal(ref.Current))
		Expect(res.Warnings).To(ContainElement(ContainSubstring("ECE")))
	})

	It("reports ignored cell parameters", func() {
		p := echem.DefaultParams()
		p.DoubleLayerCapacitance = 1e-6
		p.UncompensatedResistance = 10
		res, err := echem.Simulate(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Warnings).To(HaveLen(2))
	})

	Context("chronoamperometry", func() {
		var res *echem.Result

		BeforeEach(func() {
			var err error
			res, err = echem.Simulate(stepParams())
			Expect(err).NotTo(HaveOccurred())
		})

		It("drops the first sample of every series and grid", func() {
			Expect(res.Len()).To(Equal(1000))
			Expect(res.Potential).To(HaveLen(1000))
			Expect(res.Time).To(HaveLen(1000))
			Expect(res.Reduced).To(HaveLen(1000))
			Expect(res.Time[0]).To(BeNumerically("~", res.Grid.TimeStep, 1e-12))
		})

		It("holds the step potential until the step time", func() {
			Expect(res.Potential[0]).To(Equal(0.8))
			Expect(res.Potential[98]).To(Equal(0.8))
			Expect(res.Potential[99]).To(Equal(-0.5))
			Expect(res.Potential[999]).To(Equal(-0.5))
		})

		It("decays like the Cottrell current", func() {
			p := res.Params
			for k := 400; k < res.Len(); k += 100 {
				elapsed := res.Time[k] - p.StepTime
				want := -p.Electrons * echem.Faraday * p.Area * p.Concentration *
					math.Sqrt(p.Diffusion/(math.Pi*elapsed))
				Expect(res.Current[k]).To(BeNumerically("<", 0))
				Expect(math.Abs(res.Current[k]-want) / math.Abs(want)).To(BeNumerically("<", 0.2), "t=%g", res.Time[k])
			}
		})
	})

	Context("invalid input", func() {
		It("rejects a zero scan rate", func() {
			p := echem.DefaultParams()
			p.ScanRate = 0
			_, err := echem.Simulate(p)
			Expect(errors.Is(err, echem.ErrConfiguration)).To(BeTrue())
		})

		It("rejects a sweep that starts below the switching potential", func() {
			p := echem.DefaultParams()
			p.StartPotential, p.SwitchPotential = -0.7, 0.5
			_, err := echem.Simulate(p)
			var cfgErr *echem.ConfigError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Field).To(Equal("total time"))
		})

		It("rejects a non-finite concentration", func() {
			p := echem.DefaultParams()
			p.Concentration = math.NaN()
			_, err := echem.Simulate(p)
			Expect(err).To(MatchError(echem.ErrConfiguration))
		})

		It("rejects rate constants that overflow", func() {
			p := echem.DefaultParams()
			p.Electrons = 100
			_, err := echem.Simulate(p)
			var cfgErr *echem.ConfigError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Field).To(Equal("potential"))
		})

		It("fails fast when the reduced species diffuses too fast for the grid", func() {
			p := echem.DefaultParams()
			p.DiffusionReduced = 2e-5
			_, err := echem.Simulate(p)
			Expect(errors.Is(err, echem.ErrUnstable)).To(BeTrue())
			var stab *echem.StabilityError
			Expect(errors.As(err, &stab)).To(BeTrue())
			Expect(stab.Species).To(Equal(echem.Reduced))
			Expect(stab.Lambda).To(BeNumerically(">", echem.StabilityLimit))
		})

		It("fails fast on a coarse time grid", func() {
			p := echem.DefaultParams()
			p.TimeSteps = 100
			_, err := echem.Simulate(p)
			Expect(err).To(MatchError(echem.ErrUnstable))
		})
	})
})
