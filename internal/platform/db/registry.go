package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUnknownOrganization = errors.New("unknown organization")

// Registry holds one connection pool per organization. Each organization has
// its own independent database.
type Registry struct {
	pools       map[string]*pgxpool.Pool
	defaultName string
}

func NewRegistry(defaultName string) *Registry {
	return &Registry{pools: map[string]*pgxpool.Pool{}, defaultName: defaultName}
}

func (r *Registry) Add(name string, pool *pgxpool.Pool) {
	r.pools[strings.ToLower(name)] = pool
}

// Resolve returns the pool for name, or the default organization when name is empty.
func (r *Registry) Resolve(name string) (string, *pgxpool.Pool, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = strings.ToLower(r.defaultName)
	}
	pool, ok := r.pools[key]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownOrganization, name)
	}
	return key, pool, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pools))
	for name := range r.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Ping(ctx context.Context) error {
	for _, name := range r.Names() {
		if err := r.pools[name].Ping(ctx); err != nil {
			return fmt.Errorf("organization %s: %w", name, err)
		}
	}
	return nil
}

func (r *Registry) Close() {
	for _, pool := range r.pools {
		pool.Close()
	}
}
