// Package fixtures builds a small Sack/Pool from a declarative manifest,
// read through an afero.Fs so tests can supply an in-memory filesystem
// and the CLI's --fixture flag can point at a real YAML file on disk.
package fixtures

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
	"github.com/rpmgoal/rpmgoal/internal/sack"
)

// SolvableManifest is one package entry in a fixture manifest.
type SolvableManifest struct {
	Name        string   `yaml:"name"`
	EVR         string   `yaml:"evr"`
	Arch        string   `yaml:"arch"`
	Repo        string   `yaml:"repo"`
	Provides    []string `yaml:"provides"`
	Requires    []string `yaml:"requires"`
	Conflicts   []string `yaml:"conflicts"`
	Obsoletes   []string `yaml:"obsoletes"`
	Recommends  []string `yaml:"recommends"`
	Suggests    []string `yaml:"suggests"`
	Supplements []string `yaml:"supplements"`
	Enhances    []string `yaml:"enhances"`
	Files       []string `yaml:"files"`
	Description string   `yaml:"description"`
	Summary     string   `yaml:"summary"`
}

// RepoManifest describes one repo a manifest's packages may target.
type RepoManifest struct {
	Name      string `yaml:"name"`
	Installed bool   `yaml:"installed"`
	Priority  int    `yaml:"priority"`
}

// Manifest is the top-level declarative fixture shape: a set of named
// repos (at most one installed) plus the packages populating them.
type Manifest struct {
	Repos        []RepoManifest     `yaml:"repos"`
	Packages     []SolvableManifest `yaml:"packages"`
	InstallOnly  []string           `yaml:"install_only_names"`
	RunningKernel string            `yaml:"running_kernel"`
}

// ParseManifest unmarshals raw YAML bytes into a Manifest.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("fixtures: parse manifest: %w", err)
	}
	return &m, nil
}

// Load reads path from fs and parses it as a Manifest.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read manifest %q: %w", path, err)
	}
	return ParseManifest(raw)
}

// Build materializes a manifest into a Sack over a fresh Pool: one repo
// per RepoManifest entry, one solvable per SolvableManifest entry with
// its reldep strings parsed, considered bitmap recomputed, and the
// install-only/running-kernel policy applied.
func Build(fs afero.Fs, m *Manifest) (*sack.Sack, error) {
	p := pool.New()
	repoIds := make(map[string]int)
	for _, r := range m.Repos {
		repoIds[r.Name] = p.AddRepo(r.Name, r.Installed, r.Priority)
	}

	solvableIds := make(map[string]int)
	for _, spec := range m.Packages {
		repoId, ok := repoIds[spec.Repo]
		if !ok {
			return nil, fmt.Errorf("fixtures: package %q references unknown repo %q", spec.Name, spec.Repo)
		}

		provides, err := parseReldeps(spec.Provides)
		if err != nil {
			return nil, fmt.Errorf("fixtures: package %q provides: %w", spec.Name, err)
		}
		requires, err := parseReldeps(spec.Requires)
		if err != nil {
			return nil, fmt.Errorf("fixtures: package %q requires: %w", spec.Name, err)
		}
		conflicts, err := parseReldeps(spec.Conflicts)
		if err != nil {
			return nil, fmt.Errorf("fixtures: package %q conflicts: %w", spec.Name, err)
		}
		obsoletes, err := parseReldeps(spec.Obsoletes)
		if err != nil {
			return nil, fmt.Errorf("fixtures: package %q obsoletes: %w", spec.Name, err)
		}
		recommends, err := parseReldeps(spec.Recommends)
		if err != nil {
			return nil, fmt.Errorf("fixtures: package %q recommends: %w", spec.Name, err)
		}
		suggests, err := parseReldeps(spec.Suggests)
		if err != nil {
			return nil, fmt.Errorf("fixtures: package %q suggests: %w", spec.Name, err)
		}
		supplements, err := parseReldeps(spec.Supplements)
		if err != nil {
			return nil, fmt.Errorf("fixtures: package %q supplements: %w", spec.Name, err)
		}
		enhances, err := parseReldeps(spec.Enhances)
		if err != nil {
			return nil, fmt.Errorf("fixtures: package %q enhances: %w", spec.Name, err)
		}

		id := p.AddSolvable(repoId, pool.SolvableSpec{
			Name:        spec.Name,
			EVR:         nevra.ParseEVR(spec.EVR),
			Arch:        spec.Arch,
			Provides:    provides,
			Requires:    requires,
			Conflicts:   conflicts,
			Obsoletes:   obsoletes,
			Recommends:  recommends,
			Suggests:    suggests,
			Supplements: supplements,
			Enhances:    enhances,
			Files:       spec.Files,
			Description: spec.Description,
			Summary:     spec.Summary,
		})
		solvableIds[fmt.Sprintf("%s.%s@%s", spec.Name, spec.Arch, spec.Repo)] = id
	}

	s := sack.New(p, fs)
	s.RecomputeConsidered()
	if len(m.InstallOnly) > 0 {
		s.SetInstallOnlyNames(m.InstallOnly)
	}
	if m.RunningKernel != "" {
		if id, ok := solvableIds[m.RunningKernel]; ok {
			s.SetRunningKernel(id)
		}
	}
	return s, nil
}

func parseReldeps(exprs []string) ([]dependency.Reldep, error) {
	out := make([]dependency.Reldep, 0, len(exprs))
	for _, e := range exprs {
		r, err := dependency.ParseReldep(e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
