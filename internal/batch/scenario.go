package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/impact"
)

// Scenario is one hazard/exposure pair to assess.
type Scenario struct {
	Label       string `yaml:"label"`
	Source      string `yaml:"-"` // file the scenario was read from
	Path        string `yaml:"path"`
	Hazard      string `yaml:"hazard"`
	Exposure    string `yaml:"exposure"`
	Function    string `yaml:"function"`
	Aggregation string `yaml:"aggregation"`
	Extent      string `yaml:"extent"`
}

var scenarioNamespace = uuid.MustParse("6f1d3c4e-9a0b-4e55-8f3a-2b7c1d0e9f21")

// ID is stable for a given source file and label.
func (s Scenario) ID() string {
	return uuid.NewSHA1(scenarioNamespace, []byte(s.Source+"\x00"+s.Label)).String()
}

var titleReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// Title is the label made safe for use as an output file name: spaces and
// path separators become underscores and dot-only names are prefixed.
func (s Scenario) Title() string {
	t := titleReplacer.Replace(s.Label)
	if strings.Trim(t, ".") == "" {
		t = "_" + t
	}
	return t
}

// Validate checks the keys a scenario needs before any layer is loaded.
func (s Scenario) Validate() error {
	if s.Hazard == "" || s.Exposure == "" {
		return fmt.Errorf("scenario %q: hazard and exposure are required", s.Label)
	}
	if s.Function != "" && s.Function != impact.FunctionID {
		return fmt.Errorf("scenario %q: unknown impact function %q", s.Label, s.Function)
	}
	if s.Extent != "" {
		if _, err := grid.ParseExtent(s.Extent); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Label, err)
		}
	}
	return nil
}

// HazardPath resolves the hazard layer against the scenario path.
func (s Scenario) HazardPath() string { return s.resolve(s.Hazard) }

// ExposurePath resolves the exposure layer against the scenario path.
func (s Scenario) ExposurePath() string { return s.resolve(s.Exposure) }

func (s Scenario) resolve(layer string) string {
	if isRemote(layer) || filepath.IsAbs(layer) || s.Path == "" {
		return layer
	}
	if isRemote(s.Path) {
		return strings.TrimSuffix(s.Path, "/") + "/" + strings.TrimPrefix(layer, "/")
	}
	return filepath.Join(s.Path, layer)
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ReadScenarios reads the scenarios of one file. Layer paths default to
// dataDir when the scenario names none.
func ReadScenarios(path, dataDir string) ([]Scenario, error) {
	var (
		scenarios []Scenario
		err       error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".ini":
		scenarios, err = readINI(path)
	case ".yaml", ".yml":
		scenarios, err = readYAML(path)
	default:
		return nil, fmt.Errorf("unsupported scenario file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i := range scenarios {
		scenarios[i].Source = path
		if scenarios[i].Path == "" {
			scenarios[i].Path = dataDir
		}
	}
	return scenarios, nil
}

// readINI reads sections as scenarios. Keys outside any section form a
// scenario named after the file.
func readINI(path string) ([]Scenario, error) {
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("error parsing scenario file: %w", err)
	}

	var out []Scenario
	for _, sec := range f.Sections() {
		label := sec.Name()
		if label == ini.DefaultSection {
			if len(sec.Keys()) == 0 {
				continue
			}
			label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		out = append(out, Scenario{
			Label:       label,
			Path:        sec.Key("path").String(),
			Hazard:      sec.Key("hazard").String(),
			Exposure:    sec.Key("exposure").String(),
			Function:    sec.Key("function").String(),
			Aggregation: sec.Key("aggregation").String(),
			Extent:      sec.Key("extent").String(),
		})
	}
	if len(out) == 0 {
		return nil, errors.New("no scenarios found")
	}
	return out, nil
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

func readYAML(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scenario file: %w", err)
	}

	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing scenario file: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, errors.New("no scenarios found")
	}
	for i, s := range f.Scenarios {
		if s.Label == "" {
			return nil, fmt.Errorf("scenario %d has no label", i+1)
		}
	}
	return f.Scenarios, nil
}

// ListScenarios reads every scenario file in dir, in file name order. Files
// that cannot be parsed are logged and skipped.
func ListScenarios(dir, dataDir string) ([]Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading scenario dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".ini", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []Scenario
	for _, name := range names {
		scenarios, err := ReadScenarios(filepath.Join(dir, name), dataDir)
		if err != nil {
			slog.Error("skipping scenario file", "file", name, "error", err)
			continue
		}
		out = append(out, scenarios...)
	}
	return out, nil
}
