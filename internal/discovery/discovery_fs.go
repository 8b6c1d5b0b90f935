package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hanpama/modgraph"
)

var schemaExtensions = map[string]bool{
	".graphql":  true,
	".graphqls": true,
	".gql":      true,
}

// FileSystemDiscovery implements Discovery for schema files under a directory
type FileSystemDiscovery struct {
	root  string
	paths []string
}

// NewFileSystemDiscovery walks rootDir for .graphql, .graphqls and .gql files
func NewFileSystemDiscovery(ctx context.Context, rootDir string) (*FileSystemDiscovery, error) {
	discovery := &FileSystemDiscovery{root: rootDir}
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !schemaExtensions[filepath.Ext(d.Name())] {
			return nil
		}
		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", path, err)
		}
		discovery.paths = append(discovery.paths, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory %q: %w", rootDir, err)
	}
	return discovery, nil
}

// ListFragments reads every discovered file
func (d *FileSystemDiscovery) ListFragments(ctx context.Context) ([]Fragment, error) {
	frags := make([]Fragment, 0, len(d.paths))
	for _, p := range d.paths {
		content, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(p)))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema fragment %q: %w", p, err)
		}
		frags = append(frags, Fragment{Path: p, Content: string(content)})
	}
	return frags, nil
}

// Load is a convenience function that discovers the fragments under rootDir
// and returns them as modules
func Load(ctx context.Context, rootDir string) ([]modgraph.Module, error) {
	d, err := NewFileSystemDiscovery(ctx, rootDir)
	if err != nil {
		return nil, err
	}
	return Modules(ctx, d)
}
