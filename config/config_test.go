package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testAppConfig struct {
	Settings `yaml:",inline" mapstructure:",squash"`
	Refine   struct {
		MaxChunkSegments int `yaml:"max_chunk_segments" mapstructure:"max_chunk_segments"`
		Concurrency      int `yaml:"concurrency" mapstructure:"concurrency"`
	} `yaml:"refine" mapstructure:"refine"`
	Backend struct {
		BaseURL string `yaml:"base_url" mapstructure:"base_url"`
		Model   string `yaml:"model" mapstructure:"model"`
	} `yaml:"backend" mapstructure:"backend"`
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeTempConfig(t, `
name: transcriber
environment: production
refine:
  max_chunk_segments: 40
  concurrency: 5
backend:
  base_url: http://localhost:11434
  model: qwen2.5:1.5b
`)

	var cfg testAppConfig
	if err := LoadConfig("refinekit", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "transcriber" {
		t.Errorf("expected name 'transcriber', got %q", cfg.Name)
	}
	if cfg.Refine.MaxChunkSegments != 40 {
		t.Errorf("expected max_chunk_segments 40, got %d", cfg.Refine.MaxChunkSegments)
	}
	if cfg.Backend.Model != "qwen2.5:1.5b" {
		t.Errorf("expected model 'qwen2.5:1.5b', got %q", cfg.Backend.Model)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeTempConfig(t, `
name: transcriber
refine:
  concurrency: 3
`)

	t.Setenv("REFINE_CONCURRENCY", "8")

	var cfg testAppConfig
	if err := LoadConfig("refinekit", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Refine.Concurrency != 8 {
		t.Errorf("expected env override concurrency 8, got %d", cfg.Refine.Concurrency)
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	path := writeTempConfig(t, "refine: [not: closed")

	var cfg testAppConfig
	err := LoadConfig("refinekit", &cfg, WithConfigFile(path))
	if err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("BACKEND_MODEL=llama3.2\n"), 0o644); err != nil {
		t.Fatalf("writing temp .env: %v", err)
	}

	var cfg testAppConfig
	if err := LoadConfig("refinekit", &cfg, WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Backend.Model != "llama3.2" {
		t.Errorf("expected model from .env 'llama3.2', got %q", cfg.Backend.Model)
	}
}

// fakeFS pretends no files exist so only env vars apply.
type fakeFS struct{ envLoads int }

func (f *fakeFS) Exists(string) bool { return false }
func (f *fakeFS) LoadEnv(string) error { f.envLoads++; return nil }

func TestLoadConfigNoFiles(t *testing.T) {
	t.Setenv("NAME", "from-env")

	fs := &fakeFS{}
	var cfg testAppConfig
	if err := LoadConfig("refinekit", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("expected name from env, got %q", cfg.Name)
	}
	if fs.envLoads != 0 {
		t.Errorf("expected no .env load attempts, got %d", fs.envLoads)
	}
}

func TestResolverPrefersExplicitPaths(t *testing.T) {
	r := &Resolver{FileSystem: &fakeFS{}}
	files := r.ResolveFiles("refinekit", LoaderConfig{ConfigFile: "x.yml", EnvFile: "x.env"})
	if files.ConfigFile != "x.yml" || files.EnvFile != "x.env" {
		t.Errorf("expected explicit paths preserved, got %+v", files)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("REFINE_MAX_CHUNK_SEGMENTS")

	want := map[string]bool{
		"refine_max_chunk_segments": false,
		"refine.max.chunk.segments": false,
		"refine.max_chunk_segments": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
}

func TestGenerateEnvKeyVariantsSinglePart(t *testing.T) {
	variants := generateEnvKeyVariants("NAME")
	if len(variants) != 1 || variants[0] != "name" {
		t.Errorf("expected [name], got %v", variants)
	}
}

func TestSettingsApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := Settings{Name: "app"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := Settings{Name: "app", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Settings
		wantErr string
	}{
		{"valid", Settings{Name: "app", Environment: "production"}, ""},
		{"missing name", Settings{Environment: "production"}, "config.name is required"},
		{"bad environment", Settings{Name: "app", Environment: "qa"}, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.Logging.ApplyDefaults()
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected %q in error %q", tc.wantErr, err.Error())
			}
		})
	}
}
