package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Profile is a named bundle of run parameters, selectable with --profile.
type Profile struct {
	Name    string  `yaml:"name"`
	Sampler string  `yaml:"sampler"`
	Entries uint64  `yaml:"entries"`
	Workers int     `yaml:"workers"`
	Seed    uint64  `yaml:"seed"`
	Bins    int     `yaml:"bins"`
	HistMin float64 `yaml:"hist_min"`
	HistMax float64 `yaml:"hist_max"`
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// profiles is the active profile table. tutorial reproduces the classic
// 10M entry, 32 worker demonstration; quick is sized for a laptop smoke
// run.
var profiles = map[string]Profile{
	"tutorial": {
		Name:    "tutorial",
		Sampler: "local",
		Entries: 10_000_000,
		Workers: 32,
		Bins:    1000,
		HistMin: -4,
		HistMax: 4,
	},
	"quick": {
		Name:    "quick",
		Sampler: "seeded",
		Entries: 100_000,
		Workers: 4,
		Bins:    100,
		HistMin: -4,
		HistMax: 4,
	},
}

// LoadProfiles reads additional profiles from a YAML file and merges them
// over the built-ins. File entries win on name collisions.
func LoadProfiles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profiles: %w", err)
	}
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse profiles %s: %w", path, err)
	}
	for _, p := range pf.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile without a name in %s", path)
		}
		profiles[p.Name] = p
	}
	return nil
}

// LookupProfile returns the named profile.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// ProfileNames returns the names of all known profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
