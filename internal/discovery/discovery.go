// Package discovery finds GraphQL schema fragments and turns them into
// modules.
package discovery

import (
	"context"
	"sort"

	"github.com/hanpama/modgraph"
)

// Fragment is one SDL document found by a Discovery.
type Fragment struct {
	// Path is slash separated and relative to the discovery root.
	Path    string
	Content string
}

type Discovery interface {
	ListFragments(ctx context.Context) ([]Fragment, error)
}

// Modules lists d's fragments as schema-only modules named after their path,
// in path order. Order matters when fragments extend each other's types.
func Modules(ctx context.Context, d Discovery) ([]modgraph.Module, error) {
	frags, err := d.ListFragments(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(frags, func(i, j int) bool { return frags[i].Path < frags[j].Path })
	modules := make([]modgraph.Module, len(frags))
	for i, f := range frags {
		modules[i] = modgraph.Module{Name: f.Path, Schema: f.Content}
	}
	return modules, nil
}
