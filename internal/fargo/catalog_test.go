package fargo

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/diskview/internal/parfile"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var _ = Describe("Catalog", func() {
	var (
		cat     *Catalog
		updates int
	)

	newCatalog := func(opts ...Option) *Catalog {
		opts = append([]Option{WithLogger(testLogger())}, opts...)
		c := New(opts...)
		c.AddObserver(ObserverFunc(func(*Catalog) { updates++ }))
		return c
	}

	BeforeEach(func() {
		updates = 0
		cat = newCatalog()
	})

	Context("before a run is loaded", func() {
		It("has no current timestep", func() {
			_, ok := cat.CurrentTimestep()
			Expect(ok).To(BeFalse())
			_, ok = cat.Config()
			Expect(ok).To(BeFalse())
		})

		It("refuses timestep loads", func() {
			Expect(cat.LoadTimestep(0)).To(MatchError(ErrNoRun))
			Expect(cat.Reload()).To(MatchError(ErrNoRun))
		})

		It("reports empty accessors", func() {
			Expect(cat.Quantity()).To(BeEmpty())
			Expect(cat.Radii()).To(BeEmpty())
			Expect(cat.NumPlanets()).To(Equal(0))
			Expect(cat.MinValue()).To(Equal(math.MaxFloat64))
			Expect(cat.MaxValue()).To(Equal(-math.MaxFloat64))
		})

		It("records a quantity switch without loading", func() {
			Expect(cat.SetQuantity(Temperature)).To(Succeed())
			Expect(cat.ActiveQuantity()).To(Equal(Temperature))
			Expect(updates).To(Equal(0))
		})
	})

	Context("with a twam run", func() {
		var fx *runFixture

		BeforeEach(func() {
			fx = &runFixture{NRad: 4, NAz: 6, Steps: 3, Planets: 2, Particles: 3}
			fx.write(GinkgoT())
		})

		It("loads the run and timestep 0", func() {
			cfg, err := cat.LoadFromFile(fx.Par)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.NRadial).To(Equal(4))
			Expect(cfg.NAzimuthal).To(Equal(6))
			Expect(cfg.RMin).To(Equal(0.4))
			Expect(cfg.RMax).To(Equal(2.5))
			Expect(cfg.Dialect).To(Equal(TWAM))
			Expect(cfg.IntegrateParticles).To(BeTrue())
			Expect(cfg.NumberOfParticles).To(Equal(3))
			Expect(cfg.StarRadius).To(Equal(DefaultBodyRadius))

			Expect(cat.Quantity()).To(HaveLen(5 * 6))
			Expect(cat.Radii()).To(HaveLen(5))
			Expect(cat.Radii()[0]).To(Equal(0.4))

			t, ok := cat.CurrentTimestep()
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(0))
			Expect(updates).To(Equal(1))
		})

		It("derives the last timestep from the density files", func() {
			_, err := cat.LoadFromFile(fx.Par)
			Expect(err).NotTo(HaveOccurred())
			Expect(cat.LastTimestep()).To(Equal(3))
		})

		It("interpolates a constant field to the same constant", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			for _, v := range cat.Quantity() {
				Expect(v).To(BeNumerically("~", 1.0, 1e-15))
			}
			Expect(cat.MinValue()).To(BeNumerically("~", 1.0, 1e-15))
			Expect(cat.MaxValue()).To(BeNumerically("~", 1.0, 1e-15))
		})

		It("places the star at the origin", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(cat.NumPlanets()).To(Equal(3))
			Expect(cat.PlanetPosition(0)).To(Equal([3]float64{}))
			Expect(cat.PlanetVelocity(0)).To(Equal([3]float64{}))
			Expect(cat.PlanetMass(0)).To(Equal(1.0))
			Expect(cat.PlanetRadius(0)).To(Equal(DefaultBodyRadius))
		})

		It("loads later timesteps", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(cat.LoadTimestep(2)).To(Succeed())

			Expect(cat.PlanetPosition(1)).To(Equal([3]float64{3, 4, 0}))
			Expect(cat.PlanetVelocity(1)).To(Equal([3]float64{1, 2, 0}))
			Expect(cat.PlanetPosition(2)).To(Equal([3]float64{4, 4, 0}))
			Expect(cat.PlanetMass(2)).To(Equal(0.001))

			Expect(cat.HasParticles()).To(BeTrue())
			Expect(cat.NumParticles()).To(Equal(3))
			Expect(cat.ParticlePosition(2)).To(Equal([2]float64{2, 2}))
			Expect(cat.ParticleVelocity(2)).To(Equal([2]float64{-2, 1}))
			Expect(cat.ParticleMass(0)).To(BeNumerically("~", 0.01, 1e-15))

			Expect(cat.Quantity()[0]).To(BeNumerically("~", 3.0, 1e-15))
			Expect(updates).To(Equal(2))
		})

		It("rejects a timestep beyond the trajectory", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			err := cat.LoadTimestep(4)
			Expect(err).To(MatchError(ErrTimestepNotFound))

			var le *LoadError
			Expect(errors.As(err, &le)).To(BeTrue())
			Expect(le.Timestep).To(Equal(4))
		})

		It("rejects negative timesteps", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(cat.LoadTimestep(-1)).To(MatchError(ErrTimestepNotFound))
		})

		It("keeps the published snapshot when a load fails", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(cat.LoadTimestep(1)).To(Succeed())
			before := cat.Snapshot()

			Expect(os.Remove(filepath.Join(fx.Out, Density.FileName(2)))).To(Succeed())
			err := cat.LoadTimestep(2)
			Expect(err).To(MatchError(fs.ErrNotExist))

			Expect(cat.Snapshot()).To(BeIdenticalTo(before))
			t, _ := cat.CurrentTimestep()
			Expect(t).To(Equal(1))
			Expect(cat.PlanetPosition(1)).To(Equal([3]float64{2, 2, 0}))
			Expect(cat.Quantity()[0]).To(BeNumerically("~", 2.0, 1e-15))
			Expect(updates).To(Equal(2))
		})

		It("fails on a missing particle file without publishing", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(os.Remove(filepath.Join(fx.Out, ParticleFileName(1)))).To(Succeed())

			Expect(cat.LoadTimestep(1)).To(MatchError(fs.ErrNotExist))
			t, _ := cat.CurrentTimestep()
			Expect(t).To(Equal(0))
		})

		It("switches quantity by reloading the current timestep", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(cat.LoadTimestep(1)).To(Succeed())

			Expect(cat.SetQuantity(RadialVelocity)).To(Succeed())
			Expect(cat.ActiveQuantity()).To(Equal(RadialVelocity))
			Expect(cat.Quantity()).To(HaveLen(5 * 6))
			for _, v := range cat.Quantity() {
				Expect(v).To(Equal(20.0))
			}

			Expect(cat.SetQuantity(Temperature)).To(Succeed())
			Expect(cat.MaxValue()).To(BeNumerically("~", 200.0, 1e-12))
			Expect(updates).To(Equal(4))
		})

		It("keeps the previous quantity when the switch fails", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(os.Remove(filepath.Join(fx.Out, Temperature.FileName(0)))).To(Succeed())

			Expect(cat.SetQuantity(Temperature)).To(MatchError(fs.ErrNotExist))
			Expect(cat.ActiveQuantity()).To(Equal(Density))
			Expect(cat.Quantity()[0]).To(BeNumerically("~", 1.0, 1e-15))
		})

		It("reloads the current timestep from disk", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			writeFloats(GinkgoT(), filepath.Join(fx.Out, Density.FileName(0)),
				fx.withGhost(constant(4*6, 7)))

			Expect(cat.Reload()).To(Succeed())
			Expect(cat.MinValue()).To(BeNumerically("~", 7.0, 1e-15))
		})

		It("keeps the previous run when a new run fails to load", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			first, _ := cat.Config()

			other := &runFixture{NRad: 2, NAz: 3, Steps: 1, Planets: 1}
			other.write(GinkgoT())
			Expect(os.Remove(filepath.Join(other.Out, Density.FileName(0)))).To(Succeed())

			_, err := cat.LoadFromFile(other.Par)
			Expect(err).To(HaveOccurred())

			cfg, ok := cat.Config()
			Expect(ok).To(BeTrue())
			Expect(cfg).To(Equal(first))
			Expect(cat.Quantity()).To(HaveLen(5 * 6))
		})
	})

	Context("with a long trajectory", func() {
		It("finds every recorded timestep and nothing past the end", func() {
			fx := &runFixture{NRad: 1, NAz: 2, Steps: 100, Planets: 1}
			fx.write(GinkgoT())

			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(cat.LoadTimestep(50)).To(Succeed())
			Expect(cat.PlanetPosition(1)).To(Equal([3]float64{51, 100, 0}))
			Expect(cat.PlanetVelocity(1)).To(Equal([3]float64{25, 2, 0}))

			Expect(cat.LoadTimestep(101)).To(MatchError(ErrTimestepNotFound))
		})
	})

	Context("with an original run", func() {
		var fx *runFixture

		BeforeEach(func() {
			cat = newCatalog(WithDialect(Original))
			fx = &runFixture{Dialect: Original, NRad: 3, NAz: 4, Steps: 2, Planets: 1, Ntot: 2}
			fx.write(GinkgoT())
		})

		It("keeps the ghost ring and reads 0-based planet files", func() {
			cfg, err := cat.LoadFromFile(fx.Par)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.NRadial).To(Equal(3))
			Expect(cat.Radii()).To(Equal([]float64{0.4, 0.5, 0.6, 0.7}))
			Expect(cat.LastTimestep()).To(Equal(2))

			Expect(cat.LoadTimestep(2)).To(Succeed())
			Expect(cat.PlanetPosition(1)).To(Equal([3]float64{3, 4, 0}))
		})

		It("leaves the last velocity ring empty", func() {
			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(cat.SetQuantity(AzimuthalVelocity)).To(Succeed())

			field := cat.Quantity()
			Expect(field).To(HaveLen(4 * 4))
			Expect(field[:3*4]).To(HaveEach(10.0))
			Expect(field[3*4:]).To(HaveEach(0.0))
		})

		It("takes the last timestep from Ntot", func() {
			fx := &runFixture{Dialect: Original, NRad: 3, NAz: 4, Steps: 0, Ntot: 40}
			fx.write(GinkgoT())

			Expect(cat.LoadFromFile(fx.Par)).Error().NotTo(HaveOccurred())
			Expect(cat.LastTimestep()).To(Equal(40))
			Expect(cat.NumPlanets()).To(Equal(1))
		})
	})

	Context("resolving paths", func() {
		It("falls back to the parent of the config directory", func() {
			fx := &runFixture{NRad: 2, NAz: 3, Steps: 0, Planets: 1, ParSubdir: true}
			fx.write(GinkgoT())

			cfg, err := cat.LoadFromFile(fx.Par)
			Expect(err).NotTo(HaveOccurred())

			want, err := filepath.EvalSymlinks(fx.Out)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.OutputDir).To(Equal(want))
		})

		It("reports a missing output directory", func() {
			fx := &runFixture{NRad: 2, NAz: 3}
			fx.write(GinkgoT())
			Expect(os.RemoveAll(fx.Out)).To(Succeed())

			_, err := cat.LoadFromFile(fx.Par)
			Expect(err).To(MatchError(ErrOutputDirNotFound))
		})

		It("reports a missing planet configuration", func() {
			fx := &runFixture{NRad: 2, NAz: 3, Planets: 1}
			fx.write(GinkgoT())
			Expect(os.Remove(filepath.Join(fx.Root, "planets.cfg"))).To(Succeed())

			_, err := cat.LoadFromFile(fx.Par)
			Expect(err).To(MatchError(fs.ErrNotExist))
		})
	})

	Context("with a broken parameter file", func() {
		It("reports the missing key", func() {
			fx := &runFixture{NRad: 2, NAz: 3}
			fx.write(GinkgoT())
			writeText(GinkgoT(), fx.Par, "Rmin 0.4\nRmax 2.5\nNtot 5\nNrad 4\nOutputDir out\n")

			_, err := cat.LoadFromFile(fx.Par)
			Expect(err).To(MatchError(parfile.ErrMissingKey))
			Expect(err.Error()).To(ContainSubstring("Nsec"))
		})

		It("reports a malformed value", func() {
			fx := &runFixture{NRad: 2, NAz: 3}
			fx.write(GinkgoT())
			writeText(GinkgoT(), fx.Par, "Rmin 0.4\nRmax far\nNtot 5\nNrad 4\nNsec 3\nOutputDir out\n")

			_, err := cat.LoadFromFile(fx.Par)
			Expect(err).To(MatchError(parfile.ErrMalformedValue))
		})

		It("rejects a grid without rings", func() {
			fx := &runFixture{NRad: 2, NAz: 3}
			fx.write(GinkgoT())
			writeText(GinkgoT(), fx.Par, "Rmin 0.4\nRmax 2.5\nNtot 5\nNrad 1\nNsec 3\nOutputDir out\n")

			_, err := cat.LoadFromFile(fx.Par)
			Expect(err).To(MatchError(ErrBadGrid))
		})

		DescribeTable("rejects grids that leave no rings",
			func(d Dialect, nrad int) {
				fx := &runFixture{Dialect: d, NRad: 1, NAz: 4, Steps: 1}
				fx.write(GinkgoT())
				writeText(GinkgoT(), fx.Par, fmt.Sprintf("Rmin 0.4\nRmax 2.5\nNtot 5\nNrad %d\nNsec 4\nOutputDir out\n", nrad))

				c := newCatalog(WithDialect(d))
				var err error
				Expect(func() { _, err = c.LoadFromFile(fx.Par) }).NotTo(Panic())
				Expect(err).To(MatchError(ErrBadGrid))
				_, ok := c.Config()
				Expect(ok).To(BeFalse())
				Expect(updates).To(Equal(0))
			},
			Entry("twam with only the two ghost rings", TWAM, 2),
			Entry("twam with no rings", TWAM, 0),
			Entry("original with no rings", Original, 0),
		)
	})
})
