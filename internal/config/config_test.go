package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfig_Full(t *testing.T) {
	yaml := `
reserved: [self, this]
echo: true
color: never
format: json
history:
  path: /var/lib/argbind.db
  retention: 24h
  prune_every: 1m
server:
  grpc: 0.0.0.0:9000
  http: 0.0.0.0:9001
`
	cfg, err := ParseConfig([]byte(yaml), "argbind.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Reserved) != 2 || cfg.Reserved[0] != "self" {
		t.Errorf("reserved = %q, want [self this]", cfg.Reserved)
	}
	if !cfg.Echo {
		t.Error("expected echo to be true")
	}
	if cfg.Color != ColorNever {
		t.Errorf("color = %q, want never", cfg.Color)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("format = %q, want json", cfg.Format)
	}
	if cfg.History.RetentionDuration() != 24*time.Hour {
		t.Errorf("retention = %v, want 24h", cfg.History.RetentionDuration())
	}
	if cfg.History.PruneInterval() != time.Minute {
		t.Errorf("prune interval = %v, want 1m", cfg.History.PruneInterval())
	}
	if cfg.Server.GRPC != "0.0.0.0:9000" || cfg.Server.HTTP != "0.0.0.0:9001" {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"), "argbind.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Color != ColorAuto {
		t.Errorf("color = %q, want auto", cfg.Color)
	}
	if cfg.Format != FormatShell {
		t.Errorf("format = %q, want sh", cfg.Format)
	}
	if cfg.History.Path != "" {
		t.Errorf("history path = %q, want empty", cfg.History.Path)
	}
	if cfg.History.RetentionDuration() != 168*time.Hour {
		t.Errorf("retention = %v", cfg.History.RetentionDuration())
	}
	if cfg.Server.GRPC != DefaultGRPCAddr {
		t.Errorf("grpc = %q, want %q", cfg.Server.GRPC, DefaultGRPCAddr)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"color", "color: rainbow", "color"},
		{"format", "format: xml", "format"},
		{"reserved", "reserved: ['']", "reserved[0]"},
		{"retention", "history: {retention: forever}", "history.retention"},
		{"negative prune", "history: {prune_every: -1m}", "history.prune_every"},
		{"syntax", "reserved: [", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "argbind.yaml")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if !strings.Contains(err.Error(), "argbind.yaml") {
				t.Errorf("error %q does not mention the file", err)
			}
		})
	}
}

func TestLoadConfig_RelativeHistoryPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "argbind.yaml")
	if err := os.WriteFile(path, []byte("history:\n  path: hist.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(dir, "hist.db"); cfg.History.Path != want {
		t.Errorf("history path = %q, want %q", cfg.History.Path, want)
	}
}

func TestFindConfig_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "argbind.yml")
	if err := os.WriteFile(want, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("FindConfig = %q, want %q", got, want)
	}
}

func TestResolve_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("format: yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Resolve(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != FormatYAML {
		t.Errorf("format = %q, want yaml", cfg.Format)
	}

	if _, err := Resolve(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}
