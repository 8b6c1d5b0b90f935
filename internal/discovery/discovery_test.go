package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/modgraph"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileSystemDiscovery(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "users/user.graphqls", "type User { id: ID! }")
	writeFile(t, root, "base.graphql", "type Query { ok: Boolean }")
	writeFile(t, root, "users/query.gql", "extend type Query { me: User }")
	writeFile(t, root, "README.md", "not a schema")

	modules, err := Load(context.Background(), root)
	require.NoError(t, err)

	want := []modgraph.Module{
		{Name: "base.graphql", Schema: "type Query { ok: Boolean }"},
		{Name: "users/query.gql", Schema: "extend type Query { me: User }"},
		{Name: "users/user.graphqls", Schema: "type User { id: ID! }"},
	}
	if diff := cmp.Diff(want, modules); diff != "" {
		t.Fatalf("modules mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSystemDiscoveryMissingRoot(t *testing.T) {
	_, err := NewFileSystemDiscovery(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestInMemoryDiscoveryComposes(t *testing.T) {
	d := NewInMemoryDiscovery(
		Fragment{Path: "b.graphql", Content: "extend type Query { b: String }"},
		Fragment{Path: "a.graphql", Content: "type Query { a: String }"},
	)
	modules, err := Modules(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, "a.graphql", modules[0].Name)

	exec, err := modgraph.NewExecutor(modules...)
	require.NoError(t, err)
	res, err := exec.Run(context.Background(), "{ a b }", modgraph.Options{
		RootValue: map[string]any{"a": "x", "b": "y"},
	})
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"a": "x", "b": "y"}, res.Data)
}
