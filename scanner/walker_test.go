package scanner_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/scanner"
	"github.com/c360studio/structscan/structure"

	_ "github.com/c360studio/structscan/scanner/java"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, root, "src/Alpha.java", "package app;\npublic class Alpha {}\n")
	write(t, root, "src/deep/Beta.java", "package app.deep;\npublic class Beta {}\n")
	write(t, root, "src/notes.txt", "not java")
	// Build output and hidden directories are never descended into.
	write(t, root, "target/Generated.java", "package gen;\npublic class Generated {}\n")
	write(t, root, ".git/Hidden.java", "package hidden;\npublic class Hidden {}\n")
	return root
}

func TestWalkerRoutesByExtensionAndSkipsDirs(t *testing.T) {
	root := testTree(t)
	loc := location.NewRegistry().Add("app", root)

	var names []string
	w := scanner.NewWalker()
	err := w.Scan(context.Background(), loc, func(st *structure.Descriptor) error {
		names = append(names, st.QualifiedName)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.Alpha", "app.deep.Beta"}, names)
}

func TestWalkerMissingRoot(t *testing.T) {
	loc := location.NewRegistry().Add("app", filepath.Join(t.TempDir(), "nope"))

	err := scanner.NewWalker().Scan(context.Background(), loc, func(*structure.Descriptor) error {
		return nil
	})
	assert.Error(t, err)
}

func TestWalkerRootIsFile(t *testing.T) {
	root := t.TempDir()
	write(t, root, "file.java", "public class X {}")
	loc := location.NewRegistry().Add("app", filepath.Join(root, "file.java"))

	err := scanner.NewWalker().Scan(context.Background(), loc, func(*structure.Descriptor) error {
		return nil
	})
	assert.Error(t, err)
}

func TestWalkerHandlerSkipAll(t *testing.T) {
	root := testTree(t)
	loc := location.NewRegistry().Add("app", root)

	var count int
	err := scanner.NewWalker().Scan(context.Background(), loc, func(*structure.Descriptor) error {
		count++
		return scanner.SkipAll
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWalkerContextCancellation(t *testing.T) {
	root := testTree(t)
	loc := location.NewRegistry().Add("app", root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := scanner.NewWalker().Scan(ctx, loc, func(*structure.Descriptor) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkerCustomSkipDirs(t *testing.T) {
	root := t.TempDir()
	write(t, root, "src/Alpha.java", "package app;\npublic class Alpha {}\n")
	write(t, root, "generated/Skip.java", "package gen;\npublic class Skip {}\n")
	loc := location.NewRegistry().Add("app", root)

	var names []string
	w := scanner.NewWalker(scanner.WithSkipDirs(append(scanner.DefaultSkipDirs, "generated")))
	err := w.Scan(context.Background(), loc, func(st *structure.Descriptor) error {
		names = append(names, st.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names)
}

func TestRegistryFirstRegistrationWins(t *testing.T) {
	reg := scanner.NewRegistry()
	reg.Register("first", []string{".x"}, func(*slog.Logger) scanner.FileScanner { return nil })
	reg.Register("second", []string{".x", ".y"}, func(*slog.Logger) scanner.FileScanner { return nil })

	name, ok := reg.ScannerName(".x")
	require.True(t, ok)
	assert.Equal(t, "first", name)

	name, ok = reg.ScannerName(".y")
	require.True(t, ok)
	assert.Equal(t, "second", name)

	assert.True(t, reg.HasScanner("first"))
	assert.ElementsMatch(t, []string{".x", ".y"}, reg.ListExtensions())
}
