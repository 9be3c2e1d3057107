// Package project holds per-project configuration for reV scenario
// datasets: where the output files live, how columns are labeled and
// scaled, and which optional demand/variable tables accompany them.
// Projects are loaded from a config directory into an explicit Registry
// rather than resolved through process-global state.
package project

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/pkg/errors"
)

// FrameReader supplies the tabular reads Config needs for its derived
// properties.  Implementations are expected to cache.
type FrameReader interface {
	// SafeRead returns (nil, false) on any read failure instead of an error.
	SafeRead(ctx context.Context, path string) (*dataset.Frame, bool)
	// ReadHeader returns column names only.
	ReadHeader(ctx context.Context, path string) ([]string, error)
}

// Scale is a per-variable display bound.  A nil side means "unset"; JSON
// bound values may be numbers, the string "na", or null.
type Scale struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// UnmarshalJSON accepts numeric, "na", numeric-string, and null bounds.
func (s *Scale) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	min, err := parseBound(raw["min"])
	if err != nil {
		return err
	}
	max, err := parseBound(raw["max"])
	if err != nil {
		return err
	}
	s.Min, s.Max = min, max
	return nil
}

func parseBound(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" || strings.EqualFold(str, "na") {
			return nil, nil
		}
		if v, err := strconv.ParseFloat(str, 64); err == nil {
			return &v, nil
		}
		return nil, errors.Newf(errors.ErrCodeProjectConfigInvalid, "invalid scale bound %q", str)
	}
	return nil, errors.Newf(errors.ErrCodeProjectConfigInvalid, "invalid scale bound %s", string(raw))
}

// Config is one project's settings plus its disk-derived lookups.  Always
// handle it by pointer; derived results are cached for process lifetime.
type Config struct {
	Name                 string                 `json:"project_name"`
	Directory            string                 `json:"directory"`
	DemandFile           string                 `json:"demand_file,omitempty"`
	VarFile              string                 `json:"var_file,omitempty"`
	Units                map[string]string      `json:"units,omitempty"`
	Titles               map[string]string      `json:"titles,omitempty"`
	Scales               map[string]Scale       `json:"scales,omitempty"`
	Groups               map[string]interface{} `json:"groups,omitempty"`
	LowCostGroups        map[string]interface{} `json:"low_cost_groups,omitempty"`
	Parameters           map[string]interface{} `json:"parameters,omitempty"`
	CharacterizationCols []string               `json:"characterization_cols,omitempty"`
	CapacityDensity      *float64               `json:"capacity_density,omitempty"`
	Resolution           *int                   `json:"resolution,omitempty"`

	reader FrameReader

	capOnce sync.Once
	capCol  string
	capErr  error

	demandOnce  sync.Once
	demandFrame *dataset.Frame

	optionsOnce  sync.Once
	optionsFrame *dataset.Frame
}

// LoadConfig parses one project config file (.json, .yaml, or .yml).  The
// literal token REVIEW_DATA_DIR in configured paths is replaced with
// dataRoot, "~" is expanded, and paths are made absolute.  A nil reader
// disables the disk-derived lookups.
func LoadConfig(path, dataRoot string, reader FrameReader) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeProjectConfigInvalid,
			"failed to read project config %s", path)
	}

	// Round-trip through JSON so Scale's unmarshaler sees every format
	// viper can read.
	raw, err := json.Marshal(v.AllSettings())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeProjectConfigInvalid,
			"failed to normalize project config %s", path)
	}
	cfg := &Config{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeProjectConfigInvalid,
			"failed to parse project config %s", path)
	}

	if cfg.Name == "" {
		base := filepath.Base(path)
		cfg.Name = ConvertToTitle(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	cfg.Directory = ExpandPath(cfg.Directory, dataRoot)
	cfg.DemandFile = ExpandPath(cfg.DemandFile, dataRoot)
	cfg.VarFile = ExpandPath(cfg.VarFile, dataRoot)
	cfg.reader = reader

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandPath resolves the REVIEW_DATA_DIR placeholder and "~", then makes
// the path absolute.  Empty paths stay empty.
func ExpandPath(path, dataRoot string) string {
	if path == "" {
		return ""
	}
	if dataRoot != "" {
		path = strings.ReplaceAll(path, "REVIEW_DATA_DIR", dataRoot)
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// Validate checks the required keys.
func (c *Config) Validate() error {
	var missing []string
	if c.Directory == "" {
		missing = append(missing, "directory")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Newf(errors.ErrCodeProjectConfigInvalid,
			"project %q config missing required keys: %s", c.Name, strings.Join(missing, ", "))
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// File enumeration
// ─────────────────────────────────────────────────────────────────────────────

type scenarioFile struct {
	Scenario string
	Path     string
}

// AllFiles lists the project's raw data files.  When the variable-options
// table has a "file" column those paths win ("./" is resolved against
// Directory); otherwise the directory is walked for csv, parquet, and h5
// files, grouped in that order.
func (c *Config) AllFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts := c.Options(ctx); opts != nil && opts.Has("file") && !opts.IsNumeric("file") {
		listed, _ := opts.Strings("file")
		files := make([]string, 0, len(listed))
		for _, f := range listed {
			if strings.HasPrefix(f, "./") {
				f = filepath.Join(c.Directory, strings.TrimPrefix(f, "./"))
			}
			files = append(files, ExpandPath(f, ""))
		}
		return files, nil
	}

	var csvs, parquets, h5s []string
	err := filepath.WalkDir(c.Directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			csvs = append(csvs, path)
		case ".parquet":
			parquets = append(parquets, path)
		case ".h5":
			h5s = append(h5s, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeReadFailure,
			"failed to walk project directory %s", c.Directory)
	}

	files := make([]string, 0, len(csvs)+len(parquets)+len(h5s))
	files = append(files, csvs...)
	files = append(files, parquets...)
	files = append(files, h5s...)
	return files, nil
}

// projectFiles pairs each file with its scenario name, preserving AllFiles
// order.  Files whose stripped name still carries a .csv ending are not
// scenario outputs and are skipped.
func (c *Config) projectFiles(ctx context.Context) ([]scenarioFile, error) {
	all, err := c.AllFiles(ctx)
	if err != nil {
		return nil, err
	}
	files := make([]scenarioFile, 0, len(all))
	for _, path := range all {
		scenario := StripRevEndings(filepath.Base(path))
		if strings.HasSuffix(scenario, ".csv") {
			continue
		}
		files = append(files, scenarioFile{Scenario: scenario, Path: path})
	}
	return files, nil
}

// Files maps scenario name to file path.
func (c *Config) Files(ctx context.Context) (map[string]string, error) {
	files, err := c.projectFiles(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(files))
	for _, f := range files {
		m[f.Scenario] = f.Path
	}
	return m, nil
}

// Scenarios lists scenario names, sorted.
func (c *Config) Scenarios(ctx context.Context) ([]string, error) {
	files, err := c.Files(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// NameLookup maps file path back to scenario name.
func (c *Config) NameLookup(ctx context.Context) (map[string]string, error) {
	files, err := c.Files(ctx)
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]string, len(files))
	for scenario, path := range files {
		lookup[path] = scenario
	}
	return lookup, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Disk-derived lookups (cached for process lifetime)
// ─────────────────────────────────────────────────────────────────────────────

// CapacityColumn infers the capacity column from the first project file:
// columns containing "capacity", excluding density/turbine/system variants;
// a single candidate wins, otherwise the first one containing "_ac".
func (c *Config) CapacityColumn(ctx context.Context) (string, error) {
	c.capOnce.Do(func() {
		c.capCol, c.capErr = c.inferCapacityColumn(ctx)
	})
	return c.capCol, c.capErr
}

func (c *Config) inferCapacityColumn(ctx context.Context) (string, error) {
	if c.reader == nil {
		return "", errors.New(errors.ErrCodeInternal, "no tabular reader configured")
	}
	files, err := c.projectFiles(ctx)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", errors.Newf(errors.ErrCodeColumnNotFound,
			"project %q has no scenario files to infer a capacity column from", c.Name)
	}

	cols, err := c.reader.ReadHeader(ctx, files[0].Path)
	if err != nil {
		return "", err
	}
	skippers := []string{"density", "turbine", "system"}
	var candidates []string
	for _, col := range cols {
		if !strings.Contains(col, "capacity") {
			continue
		}
		skip := false
		for _, s := range skippers {
			if strings.Contains(col, s) {
				skip = true
				break
			}
		}
		if !skip {
			candidates = append(candidates, col)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	for _, col := range candidates {
		if strings.Contains(col, "_ac") {
			return col, nil
		}
	}
	return "", errors.Newf(errors.ErrCodeColumnNotFound,
		"could not find capacity column in %s", files[0].Path)
}

// DemandData reads the project's demand table; nil when the project has no
// demand file or it cannot be read.
func (c *Config) DemandData(ctx context.Context) *dataset.Frame {
	c.demandOnce.Do(func() {
		if c.reader == nil || c.DemandFile == "" {
			return
		}
		if frame, ok := c.reader.SafeRead(ctx, c.DemandFile); ok {
			c.demandFrame = frame
		}
	})
	return c.demandFrame
}

// Options reads the variable-options table, defaulting to
// <Directory>/variable_options.csv; nil when absent.
func (c *Config) Options(ctx context.Context) *dataset.Frame {
	c.optionsOnce.Do(func() {
		if c.reader == nil {
			return
		}
		path := c.VarFile
		if path == "" {
			path = filepath.Join(c.Directory, "variable_options.csv")
		}
		if frame, ok := c.reader.SafeRead(ctx, path); ok {
			c.optionsFrame = frame
		}
	})
	return c.optionsFrame
}

// Outputs lists previously exported artifacts under
// <Directory>/review_outputs, sorted; empty when the directory is absent.
func (c *Config) Outputs() []string {
	matches, err := filepath.Glob(filepath.Join(c.Directory, "review_outputs", "*"))
	if err != nil || len(matches) == 0 {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// ─────────────────────────────────────────────────────────────────────────────
// Per-column lookups
// ─────────────────────────────────────────────────────────────────────────────

// UnitsFor returns the effective unit label for a column; project overrides
// win over the built-in reV units.  Unknown columns yield "".
func (c *Config) UnitsFor(col string) string {
	if u, ok := c.Units[col]; ok {
		return u
	}
	return CommonRevColumnUnits[col]
}

// TitleFor returns the configured display title for a column.
func (c *Config) TitleFor(col string) (string, bool) {
	title, ok := c.Titles[col]
	return title, ok
}

// ScaleFor returns the effective display bounds for a column; built-in
// overrides win over project scales.
func (c *Config) ScaleFor(col string) (Scale, bool) {
	if s, ok := ScaleOverrides[col]; ok {
		return s, true
	}
	s, ok := c.Scales[col]
	return s, ok
}

// EffectiveUnits merges the built-in reV units with the project's.
func (c *Config) EffectiveUnits() map[string]string {
	units := make(map[string]string, len(CommonRevColumnUnits)+len(c.Units))
	for col, u := range CommonRevColumnUnits {
		units[col] = u
	}
	for col, u := range c.Units {
		units[col] = u
	}
	return units
}

// EffectiveScales merges the project scales with the built-in overrides.
func (c *Config) EffectiveScales() map[string]Scale {
	scales := make(map[string]Scale, len(c.Scales)+len(ScaleOverrides))
	for col, s := range c.Scales {
		scales[col] = s
	}
	for col, s := range ScaleOverrides {
		scales[col] = s
	}
	return scales
}
