package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"text/template"
	"time"

	"github.com/prettymuchbryce/treewatch/internal/notify"
	"github.com/prettymuchbryce/treewatch/internal/testutil"

	"github.com/spf13/afero"
)

// renderYAML renders a YAML template with the given data.
func renderYAML(t *testing.T, tmpl string, data any) string {
	t.Helper()
	var buf bytes.Buffer
	template.Must(template.New("yaml").Parse(tmpl)).Execute(&buf, data)
	return buf.String()
}

func TestLoadWithFs_ValidConfig(t *testing.T) {
	configPath := testutil.Path("/", "config.yaml")
	projectPath := testutil.Path("/", "home", "user", "project")

	fs := afero.NewMemMapFs()
	configYAML := renderYAML(t, `
root: {{.Root}}
ignore:
  files: ['\.swp$']
  dirs: ['glob:/**/node_modules']
backend:
  kind: poll
  poll_interval: 2s
trigger:
  command: make test
  debounce: 1s
metrics:
  listen: 127.0.0.1:9101
logging:
  level: debug
`, map[string]string{"Root": projectPath})
	afero.WriteFile(fs, configPath, []byte(configYAML), 0644)

	cfg, err := LoadWithFs(configPath, fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Root != projectPath {
		t.Errorf("expected root %q, got %q", projectPath, cfg.Root)
	}
	if len(cfg.Ignore.Files) != 1 || cfg.Ignore.Files[0] != `\.swp$` {
		t.Errorf("unexpected file ignores: %v", cfg.Ignore.Files)
	}
	if len(cfg.Ignore.Dirs) != 1 || cfg.Ignore.Dirs[0] != "glob:/**/node_modules" {
		t.Errorf("unexpected dir ignores: %v", cfg.Ignore.Dirs)
	}
	if cfg.Backend.Kind != notify.KindPoll || cfg.Backend.PollInterval != 2*time.Second {
		t.Errorf("unexpected backend: %+v", cfg.Backend)
	}
	if cfg.Trigger.Command != "make test" || cfg.Trigger.Debounce != time.Second {
		t.Errorf("unexpected trigger: %+v", cfg.Trigger)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9101" {
		t.Errorf("unexpected metrics listen: %q", cfg.Metrics.Listen)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %q", cfg.Logging.Level)
	}
}

func TestLoadWithFs_DefaultValues(t *testing.T) {
	configPath := testutil.Path("/", "config.yaml")
	tmpPath := testutil.Path("/", "tmp")

	fs := afero.NewMemMapFs()
	configYAML := renderYAML(t, `root: {{.Root}}`, map[string]string{"Root": tmpPath})
	afero.WriteFile(fs, configPath, []byte(configYAML), 0644)

	cfg, err := LoadWithFs(configPath, fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Ignore.Files) != 2 || cfg.Ignore.Files[0] != "^.gitignore" {
		t.Errorf("expected default file ignores, got %v", cfg.Ignore.Files)
	}
	if len(cfg.Ignore.Dirs) != 1 || cfg.Ignore.Dirs[0] != `/\.git$` {
		t.Errorf("expected default dir ignores, got %v", cfg.Ignore.Dirs)
	}
	if cfg.Backend.Kind != notify.KindFsnotify {
		t.Errorf("expected fsnotify backend, got %q", cfg.Backend.Kind)
	}
	if cfg.Trigger.Debounce != 300*time.Millisecond {
		t.Errorf("expected default debounce 300ms, got %v", cfg.Trigger.Debounce)
	}
	if cfg.Metrics.Listen != "" {
		t.Errorf("expected metrics disabled, got %q", cfg.Metrics.Listen)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected default logging level 'warn', got %q", cfg.Logging.Level)
	}
}

func TestLoadWithFs_EmptyIgnoreListDisablesDefaults(t *testing.T) {
	configPath := testutil.Path("/", "config.yaml")

	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, configPath, []byte("ignore:\n  files: []\n"), 0644)

	cfg, err := LoadWithFs(configPath, fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Ignore.Files) != 0 {
		t.Errorf("expected no file ignores, got %v", cfg.Ignore.Files)
	}
	if len(cfg.Ignore.Dirs) != 1 {
		t.Errorf("expected dir defaults to remain, got %v", cfg.Ignore.Dirs)
	}
}

func TestLoadWithFs_FileNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := LoadWithFs(testutil.Path("/", "nonexistent.yaml"), fs)
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadWithFs_InvalidYAML(t *testing.T) {
	configPath := testutil.Path("/", "config.yaml")

	fs := afero.NewMemMapFs()
	invalidYAML := `
ignore:
  files: [unclosed
`
	afero.WriteFile(fs, configPath, []byte(invalidYAML), 0644)

	_, err := LoadWithFs(configPath, fs)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadWithFs_EmptyConfig(t *testing.T) {
	configPath := testutil.Path("/", "config.yaml")

	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, configPath, []byte(""), 0644)

	cfg, err := LoadWithFs(configPath, fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HasRoot() {
		t.Errorf("expected no root, got %q", cfg.Root)
	}
	if cfg.Backend.PollInterval != notify.DefaultPollInterval {
		t.Errorf("expected default poll interval, got %v", cfg.Backend.PollInterval)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "backend:\n  kind: kqueue\n"},
		{"zero poll interval", "backend:\n  kind: poll\n  poll_interval: 0s\n"},
		{"negative debounce", "trigger:\n  debounce: -1s\n"},
		{"bad file regex", "ignore:\n  files: ['(']\n"},
		{"bad dir glob", "ignore:\n  dirs: ['glob:[']\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParse_ExpandsRoot(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg, err := Parse([]byte("root: ~/project\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, "project"); cfg.Root != want {
		t.Errorf("expected %q, got %q", want, cfg.Root)
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	expanded, err := EnsureDefaultConfig(path)
	if err != nil {
		t.Fatalf("EnsureDefaultConfig: %v", err)
	}
	if !IsDefaultConfig(expanded) {
		t.Error("expected freshly written config to be the default")
	}

	cfg, err := Load(expanded)
	if err != nil {
		t.Fatalf("default config does not load: %v", err)
	}
	if cfg.HasRoot() {
		t.Errorf("default config should not set a root, got %q", cfg.Root)
	}

	// An existing file is left alone.
	if err := os.WriteFile(expanded, []byte("root: /srv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureDefaultConfig(path); err != nil {
		t.Fatalf("EnsureDefaultConfig: %v", err)
	}
	if IsDefaultConfig(expanded) {
		t.Error("existing config was overwritten")
	}
}

func TestDefaultLoggingConfig(t *testing.T) {
	cfg := DefaultLoggingConfig()
	if cfg.Level != "warn" {
		t.Errorf("expected level 'warn', got %q", cfg.Level)
	}
}
