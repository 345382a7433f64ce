package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/clipbook/pkg/clipbook/importer"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func names(records []types.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"zeta.txt":            "z",
		"HTML/bold.html":      "<b>\\1</b>",
		"HTML/Lists/item.txt": "<li>",
		"alpha.md":            "# a",
		".hidden/secret.txt":  "s",
		"HTML/.swp":           "x",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Empty", "Nested"), 0o755))

	res, err := importer.Directory(context.Background(), root, importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Empty/Nested/",
		"HTML/Lists/item",
		"HTML/bold",
		"alpha",
		"zeta",
	}, names(res.Records))
	assert.Equal(t, "<b>\\1</b>", res.Records[2].Text)
	assert.Empty(t, res.Skipped)
}

func TestDirectoryOptions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt":         "a",
		"b.md":          "b",
		"drafts/c.txt":  "c",
		".dot/d.txt":    "d",
		"big.txt":       "0123456789",
		"bin/blob.txt":  "ab\x00cd",
		"bin/latin.txt": "caf\xe9",
	})

	t.Run("extensions", func(t *testing.T) {
		res, err := importer.Directory(context.Background(), root, importer.Options{Extensions: []string{"MD"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, names(res.Records))
	})

	t.Run("exclude and keep extension", func(t *testing.T) {
		res, err := importer.Directory(context.Background(), root, importer.Options{
			Exclude:       []string{"drafts", "bin/**"},
			KeepExtension: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.md", "big.txt"}, names(res.Records))
	})

	t.Run("hidden, size and binary", func(t *testing.T) {
		res, err := importer.Directory(context.Background(), root, importer.Options{
			IncludeHidden: true,
			MaxSize:       5,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{".dot/d", "a", "b", "drafts/c"}, names(res.Records))

		require.Len(t, res.Skipped, 3)
		assert.Equal(t, "big.txt", res.Skipped[0].Path)
		assert.Contains(t, res.Skipped[0].Reason, "larger than 5 bytes")
		assert.Equal(t, importer.Skipped{Path: "bin/blob.txt", Reason: "binary content"}, res.Skipped[1])
		assert.Equal(t, "bin/latin.txt", res.Skipped[2].Path)
	})
}

func TestDirectoryErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := importer.Directory(context.Background(), file, importer.Options{})
	assert.ErrorIs(t, err, importer.ErrNotDirectory)

	_, err = importer.Directory(context.Background(), filepath.Join(root, "missing"), importer.Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = importer.Directory(context.Background(), root, importer.Options{Exclude: []string{"["}})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = importer.Directory(ctx, root, importer.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
