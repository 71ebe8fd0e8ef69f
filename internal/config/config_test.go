package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/dictsort/internal/dict"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), p)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key_field: 2\nnumeric: true\nunique: true\nlog_level: debug\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, p.KeyField)
	require.True(t, p.Numeric)
	require.True(t, p.Unique)
	require.Equal(t, "debug", p.LogLevel)
	require.Equal(t, "text", p.LogFormat, "unset keys keep their defaults")
	require.Equal(t, dict.Options{KeyField: 2, Numeric: true, Unique: true}, p.Options())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestParse_EmptyDocumentKeepsValues(t *testing.T) {
	p := Default()
	require.NoError(t, Parse([]byte("# nothing here\n"), &p))
	require.Equal(t, Default(), p)
}

func TestParse_RejectsInvalidProfiles(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "colour: blue\n"},
		{"negative key field", "key_field: -1\n"},
		{"wrong type", "unique: sometimes\n"},
		{"bad log level", "log_level: loud\n"},
		{"not a mapping", "- a\n- b\n"},
		{"broken yaml", "key_field: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			err := Parse([]byte(tt.body), &p)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestResolvePath(t *testing.T) {
	env := map[string]string{EnvPath: "/etc/dictsort.yaml"}
	getenv := func(k string) string { return env[k] }

	require.Equal(t, "/tmp/flag.yaml", ResolvePath("/tmp/flag.yaml", getenv))
	require.Equal(t, "/etc/dictsort.yaml", ResolvePath("", getenv))

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.Equal(t, "", ResolvePath("", func(string) string { return "" }))
	require.NoError(t, os.WriteFile(DefaultPath, []byte("unique: true\n"), 0o644))
	require.Equal(t, DefaultPath, ResolvePath("", nil))
}
