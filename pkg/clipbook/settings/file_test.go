package settings_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFormats(t *testing.T) {
	ctx := context.Background()

	t.Run("yaml layout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "clips.yaml")
		s, err := settings.OpenFile(path)
		require.NoError(t, err)
		require.NoError(t, s.WriteArray(ctx, settings.ClipEntriesGroup, []types.Record{
			{Name: "HTML/Bold", Text: "<b>"},
			{Name: "HTML/Empty/"},
		}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "clip_entries:")
		assert.Contains(t, string(data), "Name: HTML/Bold")
		assert.NotContains(t, string(data), "Text: \"\"")
	})

	t.Run("hand written yaml is read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "clips.yml")
		require.NoError(t, os.WriteFile(path, []byte(`clip_entries:
  - Name: Greeting
    Text: hello
  - Name: Group/
`), 0o644))

		s, err := settings.OpenFile(path)
		require.NoError(t, err)
		got, err := s.ReadArray(ctx, settings.ClipEntriesGroup)
		require.NoError(t, err)
		assert.Equal(t, []types.Record{{Name: "Greeting", Text: "hello"}, {Name: "Group/"}}, got)
	})

	t.Run("toml layout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "clips.toml")
		s, err := settings.OpenFile(path)
		require.NoError(t, err)
		require.NoError(t, s.WriteArray(ctx, settings.ClipEntriesGroup, []types.Record{{Name: "A", Text: "x"}}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "[[clip_entries]]")
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "clips.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		s, err := settings.OpenFile(path)
		require.NoError(t, err)
		_, err = s.ReadArray(ctx, settings.ClipEntriesGroup)
		assert.Error(t, err)
	})

	t.Run("empty file reads empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "clips.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		s, err := settings.OpenFile(path)
		require.NoError(t, err)
		got, err := s.ReadArray(ctx, settings.ClipEntriesGroup)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestFileWritable(t *testing.T) {
	dir := t.TempDir()

	s, err := settings.OpenFile(filepath.Join(dir, "nested", "deeper", "clips.yaml"))
	require.NoError(t, err)
	assert.True(t, s.Writable())

	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("a file"), 0o644))

	s, err = settings.OpenFile(filepath.Join(blocked, "clips.yaml"))
	require.NoError(t, err)
	assert.False(t, s.Writable())
	assert.Error(t, s.WriteArray(context.Background(), settings.ClipEntriesGroup, nil))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, settings.FormatYAML, settings.FormatFor("clips.yaml"))
	assert.Equal(t, settings.FormatYAML, settings.FormatFor("clips.ini"))
	assert.Equal(t, settings.FormatTOML, settings.FormatFor("clips.TOML"))
	assert.Equal(t, settings.FormatJSON, settings.FormatFor("clips.json"))
}

func TestBadgerMigration(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")

	b, err := settings.OpenBadger(dir)
	require.NoError(t, err)
	require.NotNil(t, b.GetSchema())
	assert.Equal(t, settings.CurrentSchemaVersion, b.GetSchema().Version)

	legacy := []types.Record{{Name: "Old/one", Text: "1"}, {Name: "Old/two", Text: "2"}}
	require.NoError(t, b.WriteLegacyGroup(settings.ClipEntriesGroup, legacy))
	assert.Nil(t, b.GetSchema())
	require.NoError(t, b.Close())

	b, err = settings.OpenBadger(dir)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	assert.Equal(t, settings.CurrentSchemaVersion, b.GetSchema().Version)
	got, err := b.ReadArray(ctx, settings.ClipEntriesGroup)
	require.NoError(t, err)
	assert.Equal(t, legacy, got)

	n, err := b.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
