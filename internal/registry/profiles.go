package registry

import (
	"fmt"
	"os"
	"slices"

	"github.com/seaplan/mplan/internal/maneuver"
	"gopkg.in/yaml.v3"
)

// Profile lists the maneuvers a vehicle can execute. An empty Kinds list allows every
// registered kind; Exclude is applied afterwards.
type Profile struct {
	Vehicle     string   `yaml:"vehicle"`
	Description string   `yaml:"description"`
	Kinds       []string `yaml:"kinds"`
	Exclude     []string `yaml:"exclude"`
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// ParseProfiles reads a YAML document with a top-level profiles list.
func ParseProfiles(data []byte) ([]Profile, error) {
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vehicle profiles: %w", err)
	}
	for i, p := range f.Profiles {
		if p.Vehicle == "" {
			return nil, fmt.Errorf("parse vehicle profiles: entry %d has no vehicle", i)
		}
	}
	return f.Profiles, nil
}

// LoadProfiles reads and parses a vehicle profile file.
func LoadProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vehicle profiles: %w", err)
	}
	return ParseProfiles(data)
}

// SetProfiles replaces the installed vehicle profiles.
func (r *Registry) SetProfiles(profiles []Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setProfiles(profiles)
}

func (r *Registry) setProfiles(profiles []Profile) {
	r.profiles = make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		for _, k := range slices.Concat(p.Kinds, p.Exclude) {
			if _, ok := r.ctors[maneuver.CanonicalKind(k)]; !ok {
				r.logger.Warn("vehicle profile names unknown maneuver", "vehicle", p.Vehicle, "kind", k)
			}
		}
		r.profiles[p.Vehicle] = p
	}
}

// Vehicles returns the vehicles with a profile, sorted.
func (r *Registry) Vehicles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// View is the part of a registry a single vehicle can use.
type View struct {
	r       *Registry
	vehicle string
	profile *Profile
}

// ForVehicle returns the view for vehicle. A vehicle without a profile may use every kind.
func (r *Registry) ForVehicle(vehicle string) *View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v := &View{r: r, vehicle: vehicle}
	if p, ok := r.profiles[vehicle]; ok {
		v.profile = &p
	}
	return v
}

// Vehicle returns the vehicle identifier.
func (v *View) Vehicle() string { return v.vehicle }

// Supports reports whether kind is registered and allowed for the vehicle.
func (v *View) Supports(kind string) bool {
	kind = maneuver.CanonicalKind(kind)
	if !v.r.Has(kind) {
		return false
	}
	if v.profile == nil {
		return true
	}
	if len(v.profile.Kinds) > 0 && !containsKind(v.profile.Kinds, kind) {
		return false
	}
	return !containsKind(v.profile.Exclude, kind)
}

func containsKind(list []string, kind string) bool {
	return slices.ContainsFunc(list, func(k string) bool { return maneuver.CanonicalKind(k) == kind })
}

// Kinds returns the kinds the vehicle supports, sorted.
func (v *View) Kinds() []string {
	var kinds []string
	for _, k := range v.r.Kinds() {
		if v.Supports(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// New builds a maneuver the vehicle supports.
func (v *View) New(kind string) (maneuver.Maneuver, error) {
	if !v.Supports(kind) {
		if !v.r.Has(kind) {
			return v.r.New(kind)
		}
		return nil, fmt.Errorf("%w: %s on %s", ErrNotSupported, kind, v.vehicle)
	}
	return v.r.New(kind)
}
