// Package profiles contains named token profiles (scopes + TTL) loaded from YAML/JSON.
package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openapi-it/openapi-client-go/pkg/openapi"
	"gopkg.in/yaml.v3"
)

// DefaultTTLSeconds applies to profiles that do not set ttl_seconds.
const DefaultTTLSeconds = 3600

// MaxTTLSeconds is the longest lifetime that still fits a time.Duration.
const MaxTTLSeconds = uint64(math.MaxInt64 / int64(time.Second))

// Profile is a reusable token request.
type Profile struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Scopes      []string `json:"scopes" yaml:"scopes"`
	TTLSeconds  uint64   `json:"ttl_seconds" yaml:"ttl_seconds"`
}

// TTL returns the profile lifetime as a duration.
func (p Profile) TTL() time.Duration {
	return time.Duration(p.TTLSeconds) * time.Second
}

type fileFormat struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Registry holds the loaded profiles.
type Registry struct {
	mu       sync.RWMutex
	profiles []Profile
	idx      map[string]Profile
}

// Empty returns a registry with no profiles.
func Empty() *Registry {
	return &Registry{idx: map[string]Profile{}}
}

// LoadRegistry loads the profile registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("profiles file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	parsed, err := parseProfiles(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Profiles) == 0 {
		return nil, errors.New("profiles file contains no profiles entries")
	}

	reg := &Registry{
		profiles: make([]Profile, len(parsed.Profiles)),
		idx:      make(map[string]Profile, len(parsed.Profiles)),
	}
	for i := range parsed.Profiles {
		p := sanitizeProfile(parsed.Profiles[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate profile id %q", p.ID)
		}
		reg.profiles[i] = p
		reg.idx[p.ID] = p
	}
	return reg, nil
}

// LoadOptional is LoadRegistry that returns an empty registry when the file does not exist.
func LoadOptional(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return Empty(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	return LoadRegistry(path)
}

type unmarshalFn func([]byte, any) error

func parseProfiles(data []byte, ext string) (fileFormat, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out fileFormat
		if err := d.fn(data, &out); err != nil {
			lastErr = fmt.Errorf("decode %s profiles: %w", d.name, err)
			continue
		}
		return out, nil
	}
	if lastErr != nil {
		return fileFormat{}, lastErr
	}
	return fileFormat{}, errors.New("profiles file format not recognized (expected YAML or JSON)")
}

func sanitizeProfile(p Profile) Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.Description = strings.TrimSpace(p.Description)

	scopes := make([]string, 0, len(p.Scopes))
	for _, s := range p.Scopes {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	p.Scopes = scopes

	if p.TTLSeconds == 0 {
		p.TTLSeconds = DefaultTTLSeconds
	}
	return p
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if len(p.Scopes) == 0 {
		return fmt.Errorf("at least one scope is required for profile %q", p.ID)
	}
	for _, s := range p.Scopes {
		if _, err := openapi.ParseScope(s); err != nil {
			return fmt.Errorf("profile %q: %w", p.ID, err)
		}
	}
	if p.TTLSeconds > MaxTTLSeconds {
		return fmt.Errorf("profile %q: ttl_seconds %d exceeds %d", p.ID, p.TTLSeconds, MaxTTLSeconds)
	}
	return nil
}

// ByID returns the profile with the given id.
func (r *Registry) ByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// All returns the profiles sorted by id.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
