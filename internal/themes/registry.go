package themes

import (
	"errors"
	"fmt"

	"github.com/wonny/themescreen/internal/contracts"
)

// ErrNotFound is returned for an unknown theme id
var ErrNotFound = errors.New("theme not found")

// Registry is the read-only theme catalogue
// ⭐ SSOT: 테마 프리셋 조회는 여기서만
type Registry struct {
	ordered []contracts.Theme
	byID    map[string]contracts.Theme
}

// NewRegistry indexes a validated theme list
func NewRegistry(list []contracts.Theme) (*Registry, error) {
	if err := Validate(list); err != nil {
		return nil, err
	}

	r := &Registry{
		ordered: make([]contracts.Theme, len(list)),
		byID:    make(map[string]contracts.Theme, len(list)),
	}
	copy(r.ordered, list)
	for _, t := range list {
		r.byID[t.ID] = t
	}
	return r, nil
}

// LoadRegistry loads themes from path (built-in presets when empty)
func LoadRegistry(path string) (*Registry, error) {
	list, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(list)
}

// Get returns a theme by id
func (r *Registry) Get(id string) (contracts.Theme, error) {
	t, ok := r.byID[id]
	if !ok {
		return contracts.Theme{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return t, nil
}

// All returns every theme in catalogue order
func (r *Registry) All() []contracts.Theme {
	out := make([]contracts.Theme, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Scheduled returns themes with a cron schedule
func (r *Registry) Scheduled() []contracts.Theme {
	out := make([]contracts.Theme, 0, len(r.ordered))
	for _, t := range r.ordered {
		if t.Schedule != "" {
			out = append(out, t)
		}
	}
	return out
}
