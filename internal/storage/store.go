package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/diskview/internal/analysis"
	"github.com/san-kum/diskview/internal/fargo"
	"github.com/san-kum/diskview/internal/orbit"
)

var ErrNothingLoaded = errors.New("storage: no snapshot loaded")

// Source is the read-only view of a loaded snapshot that Store exports.
// *fargo.Catalog implements it.
type Source interface {
	Config() (fargo.RunConfig, bool)
	CurrentTimestep() (int, bool)
	ActiveQuantity() fargo.Quantity
	Quantity() []float64
	Radii() []float64
	NAzimuthal() int
	Planets() []fargo.Planet
	Particles() []fargo.Particle
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type ExportMetadata struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	ConfigPath   string         `json:"config_path"`
	OutputDir    string         `json:"output_dir"`
	Dialect      string         `json:"dialect"`
	Timestep     int            `json:"timestep"`
	Quantity     fargo.Quantity `json:"quantity"`
	NRadial      int            `json:"nrad"`
	NAzimuthal   int            `json:"nsec"`
	RMin         float64        `json:"rmin"`
	RMax         float64        `json:"rmax"`
	NumPlanets   int            `json:"planets"`
	NumParticles int            `json:"particles"`
	Stats        analysis.Stats `json:"stats"`

	// NonFinite counts NaN and infinite cells left out of Stats.
	NonFinite int `json:"non_finite,omitempty"`
}

// Summary is written to summary.yaml for quick inspection.
type Summary struct {
	Timestep      int            `yaml:"timestep"`
	Quantity      fargo.Quantity `yaml:"quantity"`
	Min           float64        `yaml:"min"`
	Max           float64        `yaml:"max"`
	Mean          float64        `yaml:"mean"`
	DiskMass      *float64       `yaml:"disk_mass,omitempty"`
	RadialProfile []float64      `yaml:"radial_profile,flow"`
	Planets       []PlanetOrbit  `yaml:"planets,omitempty"`
}

type PlanetOrbit struct {
	Index         int     `yaml:"index"`
	Eccentricity  float64 `yaml:"eccentricity"`
	SemiMajorAxis float64 `yaml:"semi_major_axis"`
}

// ExportID names the export of one timestep and quantity of a run.
func ExportID(cfg fargo.RunConfig, t int, q fargo.Quantity) string {
	run := strings.TrimSuffix(filepath.Base(cfg.ConfigPath), filepath.Ext(cfg.ConfigPath))
	return fmt.Sprintf("%s_%s_%d", run, q, t)
}

// Save writes the current snapshot of src into its own directory and returns
// the export ID.
func (s *Store) Save(src Source) (string, error) {
	cfg, ok := src.Config()
	if !ok {
		return "", ErrNothingLoaded
	}
	t, ok := src.CurrentTimestep()
	if !ok {
		return "", ErrNothingLoaded
	}
	q := src.ActiveQuantity()
	field := src.Quantity()

	exportID := ExportID(cfg, t, q)
	exportDir := filepath.Join(s.baseDir, exportID)
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return "", err
	}

	meta := ExportMetadata{
		ID:           exportID,
		Timestamp:    time.Now(),
		ConfigPath:   cfg.ConfigPath,
		OutputDir:    cfg.OutputDir,
		Dialect:      cfg.Dialect.Name,
		Timestep:     t,
		Quantity:     q,
		NRadial:      cfg.NRadial,
		NAzimuthal:   cfg.NAzimuthal,
		RMin:         cfg.RMin,
		RMax:         cfg.RMax,
		NumPlanets:   len(src.Planets()),
		NumParticles: len(src.Particles()),
	}
	meta.Stats, meta.NonFinite = analysis.FiniteStats(field)
	if err := writeJSON(filepath.Join(exportDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := writeField(filepath.Join(exportDir, "field.csv"), field, src.Radii(), src.NAzimuthal()); err != nil {
		return "", err
	}
	if err := writePlanets(filepath.Join(exportDir, "planets.csv"), src.Planets()); err != nil {
		return "", err
	}
	if len(src.Particles()) > 0 {
		if err := writeParticles(filepath.Join(exportDir, "particles.csv"), src.Particles()); err != nil {
			return "", err
		}
	}

	summary := Summary{
		Timestep:      t,
		Quantity:      q,
		Min:           meta.Stats.Min,
		Max:           meta.Stats.Max,
		Mean:          meta.Stats.Mean,
		RadialProfile: analysis.RadialProfile(field, src.NAzimuthal()),
	}
	if q == fargo.Density {
		if mass, err := analysis.DiskMass(field, src.Radii(), src.NAzimuthal()); err == nil {
			summary.DiskMass = &mass
		}
	}
	for i, p := range src.Planets() {
		if i == 0 {
			continue
		}
		el := orbit.FromPlanet(p)
		summary.Planets = append(summary.Planets, PlanetOrbit{
			Index:         i,
			Eccentricity:  el.Eccentricity,
			SemiMajorAxis: el.SemiMajorAxis,
		})
	}
	if err := writeYAML(filepath.Join(exportDir, "summary.yaml"), summary); err != nil {
		return "", err
	}

	return exportID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, header []string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeField(path string, field, radii []float64, nAz int) error {
	header := []string{"ring", "sector", "r", "phi", "value"}
	return writeCSV(path, header, func(w *csv.Writer) error {
		for i, v := range field {
			ring, sector := i/nAz, i%nAz
			r := math.NaN()
			if ring < len(radii) {
				r = radii[ring]
			}
			phi := 2 * math.Pi * float64(sector) / float64(nAz)
			row := []string{
				strconv.Itoa(ring),
				strconv.Itoa(sector),
				formatFloat(r),
				formatFloat(phi),
				formatFloat(v),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writePlanets(path string, planets []fargo.Planet) error {
	header := []string{"index", "x", "y", "z", "vx", "vy", "vz", "mass", "radius"}
	return writeCSV(path, header, func(w *csv.Writer) error {
		for i, p := range planets {
			row := []string{strconv.Itoa(i)}
			for _, v := range p.Position {
				row = append(row, formatFloat(v))
			}
			for _, v := range p.Velocity {
				row = append(row, formatFloat(v))
			}
			row = append(row, formatFloat(p.Mass), formatFloat(p.Radius))
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeParticles(path string, particles []fargo.Particle) error {
	header := []string{"index", "x", "y", "vx", "vy", "mass"}
	return writeCSV(path, header, func(w *csv.Writer) error {
		for i, p := range particles {
			row := []string{
				strconv.Itoa(i),
				formatFloat(p.Position[0]),
				formatFloat(p.Position[1]),
				formatFloat(p.Velocity[0]),
				formatFloat(p.Velocity[1]),
				formatFloat(p.Mass),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the metadata of every export, ordered by ID. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]ExportMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ExportMetadata{}, nil
		}
		return nil, err
	}

	exports := make([]ExportMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		exports = append(exports, *meta)
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].ID < exports[j].ID })
	return exports, nil
}

func (s *Store) Load(exportID string) (*ExportMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, exportID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta ExportMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadField reads an exported field back as (NRadial+1)*NAzimuthal values.
func (s *Store) LoadField(exportID string) ([]float64, error) {
	meta, err := s.Load(exportID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, exportID, "field.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	n := (meta.NRadial + 1) * meta.NAzimuthal
	if len(records) != n+1 {
		return nil, fmt.Errorf("storage: %s: expected %d field rows, got %d", exportID, n, len(records)-1)
	}

	field := make([]float64, n)
	for i, rec := range records[1:] {
		v, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: row %d: %w", exportID, i+1, err)
		}
		field[i] = v
	}
	return field, nil
}

func (s *Store) LoadSummary(exportID string) (*Summary, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, exportID, "summary.yaml"))
	if err != nil {
		return nil, err
	}
	var sum Summary
	if err := yaml.Unmarshal(data, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}
