package fargo

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/diskview/internal/parfile"
)

// RunConfig is the static description of one simulation run, fixed when the
// run's parameter file is loaded.
type RunConfig struct {
	ConfigPath   string
	OutputDir    string
	PlanetConfig string // empty when the run has no extra planets

	NRadial    int
	NAzimuthal int
	RMin       float64
	RMax       float64

	// Ntot is the raw value from the parameter file. LastTimestep is the
	// highest timestep the viewer offers, derived according to the dialect.
	Ntot         int
	LastTimestep int

	ReadGhostCells bool
	Dialect        Dialect

	StarRadius         float64
	IntegrateParticles bool
	NumberOfParticles  int
}

// Snapshot is the state of a run at one timestep. It is replaced as a whole
// and never modified after it has been published.
type Snapshot struct {
	Timestep  int
	Quantity  Quantity
	Planets   []Planet
	Particles []Particle
	Field     []float64
}

// Observer is notified after a new snapshot has been published.
type Observer interface {
	OnDataUpdated(c *Catalog)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(c *Catalog)

func (f ObserverFunc) OnDataUpdated(c *Catalog) { f(c) }

type run struct {
	cfg   RunConfig
	radii []float64
	specs []PlanetSpec
	shape gridShape
}

// Catalog owns the loaded run and its current snapshot. Slices returned by
// accessors are views into the published snapshot and must not be modified.
// A Catalog is not safe for concurrent use.
type Catalog struct {
	dialect   Dialect
	quantity  Quantity
	log       *slog.Logger
	observers []Observer

	run  *run
	snap *Snapshot
}

// Option configures a Catalog.
type Option func(*Catalog)

func WithDialect(d Dialect) Option {
	return func(c *Catalog) { c.dialect = d }
}

func WithQuantity(q Quantity) Option {
	return func(c *Catalog) { c.quantity = q }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty catalog. The default dialect is TWAM and the default
// quantity is Density.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		dialect:  TWAM,
		quantity: Density,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddObserver registers o for data-updated notifications.
func (c *Catalog) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// LoadFromFile loads the run described by the parameter file at path and its
// timestep 0. The previously loaded run stays in place unless every step
// succeeds.
func (c *Catalog) LoadFromFile(path string) (RunConfig, error) {
	r, err := c.openRun(path)
	if err != nil {
		c.log.Warn("load run failed", "path", path, "error", err)
		return RunConfig{}, err
	}

	snap, err := r.build(0, c.quantity)
	if err != nil {
		c.log.Warn("load run failed", "path", path, "error", err)
		return RunConfig{}, err
	}

	c.run = r
	c.log.Debug("run loaded",
		"config", r.cfg.ConfigPath,
		"output", r.cfg.OutputDir,
		"dialect", r.cfg.Dialect.Name,
		"nrad", r.cfg.NRadial,
		"nsec", r.cfg.NAzimuthal,
		"planets", len(r.specs),
		"last_timestep", r.cfg.LastTimestep,
	)
	c.publish(snap)
	return r.cfg, nil
}

func (c *Catalog) openRun(path string) (*run, error) {
	table, err := parfile.Parse(path)
	if err != nil {
		return nil, loadErr("parse config", path, -1, err)
	}

	var cfg RunConfig
	cfg.ConfigPath, err = filepath.Abs(path)
	if err != nil {
		return nil, loadErr("parse config", path, -1, err)
	}
	cfg.Dialect = c.dialect
	cfg.ReadGhostCells = c.dialect.ReadGhostCells

	if err := readRequired(table, &cfg); err != nil {
		return nil, loadErr("parse config", path, -1, err)
	}

	cfg.StarRadius = table.DoubleOr("StarRadius", DefaultBodyRadius)
	cfg.IntegrateParticles = table.BoolOr("IntegrateParticles", false)
	cfg.NumberOfParticles = int(table.UintOr("NumberOfParticles", 0))

	configDir := filepath.Dir(cfg.ConfigPath)
	outputName, _ := table.String("OutputDir")
	cfg.OutputDir, err = resolvePath(configDir, outputName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrOutputDirNotFound
		}
		return nil, loadErr("resolve output directory", outputName, -1, err)
	}

	var specs []PlanetSpec
	if name := table.StringOr("PLANETCONFIG", ""); name != "" {
		cfg.PlanetConfig, err = resolvePath(configDir, name)
		if err != nil {
			return nil, loadErr("resolve planet config", name, -1, err)
		}
		specs, err = ReadPlanetTable(cfg.PlanetConfig)
		if err != nil {
			return nil, loadErr("read planet config", cfg.PlanetConfig, -1, err)
		}
	}

	radiiPath := filepath.Join(cfg.OutputDir, RadiiFileName)
	radii, err := readRadii(radiiPath, cfg.NRadial+1, !cfg.ReadGhostCells)
	if err != nil {
		return nil, loadErr("read radii", radiiPath, -1, err)
	}

	if c.dialect.ProbeTimesteps {
		cfg.LastTimestep = probeTimesteps(cfg.OutputDir, cfg.Ntot)
	} else {
		cfg.LastTimestep = cfg.Ntot
	}

	c.log.Debug("run config parsed",
		"path", cfg.ConfigPath,
		"rmin", cfg.RMin,
		"rmax", cfg.RMax,
		"particles", cfg.IntegrateParticles,
	)

	return &run{
		cfg:   cfg,
		radii: radii,
		specs: specs,
		shape: gridShape{
			nRad:        cfg.NRadial,
			nAz:         cfg.NAzimuthal,
			skipGhost:   !cfg.ReadGhostCells,
			vectorRings: cfg.NRadial + c.dialect.VectorRingsExtra,
		},
	}, nil
}

func readRequired(table *parfile.Table, cfg *RunConfig) error {
	var err error
	if cfg.RMin, err = table.Double("Rmin"); err != nil {
		return err
	}
	if cfg.RMax, err = table.Double("Rmax"); err != nil {
		return err
	}
	ntot, err := table.Uint("Ntot")
	if err != nil {
		return err
	}
	cfg.Ntot = int(ntot)

	nrad, err := table.Uint("Nrad")
	if err != nil {
		return err
	}
	nsec, err := table.Uint("Nsec")
	if err != nil {
		return err
	}
	if _, err := table.String("OutputDir"); err != nil {
		return err
	}

	cfg.NRadial = int(nrad)
	if !cfg.ReadGhostCells {
		cfg.NRadial -= 2
	}
	if cfg.NRadial < 1 {
		return fmt.Errorf("%w: Nrad %d leaves no rings", ErrBadGrid, nrad)
	}
	cfg.NAzimuthal = int(nsec)
	if cfg.NAzimuthal == 0 {
		return fmt.Errorf("%w: Nsec is 0", ErrBadGrid)
	}
	return nil
}

// LoadTimestep replaces the current snapshot with timestep t. On error the
// current snapshot is left untouched.
func (c *Catalog) LoadTimestep(t int) error {
	return c.load(t, c.quantity)
}

// SetQuantity switches the active quantity and reloads the current timestep.
// If the reload fails the previous quantity stays active.
func (c *Catalog) SetQuantity(q Quantity) error {
	if !q.valid() {
		return fmt.Errorf("fargo: unknown quantity %d", int(q))
	}
	if q == c.quantity {
		return nil
	}
	if c.snap == nil {
		c.quantity = q
		return nil
	}
	return c.load(c.snap.Timestep, q)
}

// Reload reads the current timestep again.
func (c *Catalog) Reload() error {
	if c.snap == nil {
		return ErrNoRun
	}
	return c.load(c.snap.Timestep, c.quantity)
}

func (c *Catalog) load(t int, q Quantity) error {
	if c.run == nil {
		return ErrNoRun
	}
	c.log.Debug("loading timestep", "timestep", t, "quantity", q)

	snap, err := c.run.build(t, q)
	if err != nil {
		c.log.Warn("load timestep failed", "timestep", t, "error", err)
		return err
	}
	c.publish(snap)
	return nil
}

func (c *Catalog) publish(s *Snapshot) {
	c.snap = s
	c.quantity = s.Quantity
	c.log.Debug("data updated", "timestep", s.Timestep, "quantity", s.Quantity,
		"planets", len(s.Planets), "particles", len(s.Particles))
	for _, o := range c.observers {
		o.OnDataUpdated(c)
	}
}

// build reads every file of timestep t into a fresh snapshot.
func (r *run) build(t int, q Quantity) (*Snapshot, error) {
	if t < 0 {
		return nil, loadErr("load timestep", "", t, ErrTimestepNotFound)
	}

	snap := &Snapshot{
		Timestep: t,
		Quantity: q,
		Planets:  make([]Planet, 0, len(r.specs)+1),
	}

	snap.Planets = append(snap.Planets, Planet{Mass: 1, Radius: r.cfg.StarRadius})
	for i, spec := range r.specs {
		path := filepath.Join(r.cfg.OutputDir, r.cfg.Dialect.PlanetFileName(i+1))
		rec, err := readTrajectory(path, t, r.cfg.Dialect.Seek)
		if err != nil {
			return nil, loadErr("read trajectory", path, t, err)
		}
		p := spec.InitialState()
		p.Position = [3]float64{rec.X, rec.Y, 0}
		p.Velocity = [3]float64{rec.VX, rec.VY, 0}
		snap.Planets = append(snap.Planets, p)
	}

	if r.cfg.IntegrateParticles {
		path := filepath.Join(r.cfg.OutputDir, ParticleFileName(t))
		particles, err := readParticles(path)
		if err != nil {
			return nil, loadErr("read particles", path, t, err)
		}
		snap.Particles = particles
	}

	path := filepath.Join(r.cfg.OutputDir, q.FileName(t))
	snap.Field = make([]float64, r.shape.size())
	if err := r.shape.load(snap.Field, path, q.Scalar()); err != nil {
		return nil, loadErr("read grid", path, t, err)
	}
	return snap, nil
}

// Config returns the configuration of the loaded run.
func (c *Catalog) Config() (RunConfig, bool) {
	if c.run == nil {
		return RunConfig{}, false
	}
	return c.run.cfg, true
}

// Snapshot returns the published snapshot, or nil before the first load.
func (c *Catalog) Snapshot() *Snapshot { return c.snap }

// ActiveQuantity returns the quantity loaded by LoadTimestep.
func (c *Catalog) ActiveQuantity() Quantity { return c.quantity }

// Quantity returns the collocated field of the active quantity,
// (NRadial+1)*NAzimuthal values ordered by radial index.
func (c *Catalog) Quantity() []float64 {
	if c.snap == nil {
		return nil
	}
	return c.snap.Field
}

// Radii returns the NRadial+1 radii of the grid.
func (c *Catalog) Radii() []float64 {
	if c.run == nil {
		return nil
	}
	return c.run.radii
}

func (c *Catalog) NRadial() int {
	if c.run == nil {
		return 0
	}
	return c.run.cfg.NRadial
}

func (c *Catalog) NAzimuthal() int {
	if c.run == nil {
		return 0
	}
	return c.run.cfg.NAzimuthal
}

func (c *Catalog) RMin() float64 {
	if c.run == nil {
		return 0
	}
	return c.run.cfg.RMin
}

func (c *Catalog) RMax() float64 {
	if c.run == nil {
		return 0
	}
	return c.run.cfg.RMax
}

// CurrentTimestep returns the timestep of the published snapshot. ok is false
// before the first successful load.
func (c *Catalog) CurrentTimestep() (t int, ok bool) {
	if c.snap == nil {
		return 0, false
	}
	return c.snap.Timestep, true
}

func (c *Catalog) LastTimestep() int {
	if c.run == nil {
		return 0
	}
	return c.run.cfg.LastTimestep
}

func (c *Catalog) HasParticles() bool {
	return c.run != nil && c.run.cfg.IntegrateParticles
}

// NumPlanets counts the central star as planet 0.
func (c *Catalog) NumPlanets() int {
	if c.snap == nil {
		return 0
	}
	return len(c.snap.Planets)
}

func (c *Catalog) Planets() []Planet {
	if c.snap == nil {
		return nil
	}
	return c.snap.Planets
}

// Planet returns planet i. It panics if i is out of range.
func (c *Catalog) Planet(i int) Planet { return c.snap.Planets[i] }

func (c *Catalog) PlanetPosition(i int) [3]float64 { return c.Planet(i).Position }
func (c *Catalog) PlanetVelocity(i int) [3]float64 { return c.Planet(i).Velocity }
func (c *Catalog) PlanetMass(i int) float64        { return c.Planet(i).Mass }
func (c *Catalog) PlanetRadius(i int) float64      { return c.Planet(i).Radius }

func (c *Catalog) NumParticles() int {
	if c.snap == nil {
		return 0
	}
	return len(c.snap.Particles)
}

func (c *Catalog) Particles() []Particle {
	if c.snap == nil {
		return nil
	}
	return c.snap.Particles
}

// Particle returns particle i. It panics if i is out of range.
func (c *Catalog) Particle(i int) Particle { return c.snap.Particles[i] }

func (c *Catalog) ParticlePosition(i int) [2]float64 { return c.Particle(i).Position }
func (c *Catalog) ParticleVelocity(i int) [2]float64 { return c.Particle(i).Velocity }
func (c *Catalog) ParticleMass(i int) float64        { return c.Particle(i).Mass }

// MinValue returns the smallest value of the loaded field, or
// math.MaxFloat64 when nothing is loaded.
func (c *Catalog) MinValue() float64 {
	field := c.Quantity()
	if len(field) == 0 {
		return math.MaxFloat64
	}
	return floats.Min(field)
}

// MaxValue returns the largest value of the loaded field, or
// -math.MaxFloat64 when nothing is loaded.
func (c *Catalog) MaxValue() float64 {
	field := c.Quantity()
	if len(field) == 0 {
		return -math.MaxFloat64
	}
	return floats.Max(field)
}
