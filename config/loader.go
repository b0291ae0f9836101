package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds the loader dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file path, skips the search
	EnvFile    string // explicit .env file path, skips the search
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig populates cfg for the named application. It reads the config
// file (explicit or found in standard locations), loads a .env file the
// same way, binds process environment variables over both, and unmarshals
// the merged result.
func LoadConfig(appName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: &RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	return load(appName, cfg, resolver.ResolveFiles(appName, lc), lc.FileSystem)
}

// load merges the resolved files and the environment into cfg. Precedence
// is environment over .env over config file, which viper gives us by
// binding env keys after the file is read.
func load(appName string, cfg interface{}, files ResolvedFiles, fs FileSystem) error {
	v := viper.New()

	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", files.ConfigFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnviron(v)

	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: skipping .env file %s: %v\n", files.EnvFile, err)
		} else {
			// Re-bind to pick up keys the .env file introduced.
			bindEnviron(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshaling config for %s: %w", appName, err)
	}
	return nil
}

// Resolver finds config and env files through a FileSystem.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths. Empty
// strings mean nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the config and env files for an application,
// keeping explicit paths and searching standard locations for the rest.
func (cr *Resolver) ResolveFiles(appName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = cr.firstExisting(configSearchPaths(appName))
	}
	if files.EnvFile == "" {
		files.EnvFile = cr.firstExisting(envSearchPaths(appName))
	}
	return files
}

// firstExisting returns the first path that exists, or "".
func (cr *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if cr.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configSearchPaths(appName string) []string {
	return []string{
		fmt.Sprintf("./%s.yml", appName),
		fmt.Sprintf("./%s.yaml", appName),
		fmt.Sprintf("./config/%s.yml", appName),
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
		"./config.yaml",
	}
}

func envSearchPaths(appName string) []string {
	return []string{
		fmt.Sprintf("./.env.%s", appName),
		"./.env",
		"./config/.env",
		"../.env",
	}
}

// FileSystem abstracts the file probes the loader performs so tests can
// substitute a fake.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem touches the actual filesystem.
type RealFileSystem struct{}

func (*RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (*RealFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }

// bindEnviron force-sets every process environment variable on v under all
// of its key variants. viper's AutomaticEnv alone cannot see nested keys,
// so backend.model would never pick up BACKEND_MODEL without this.
func bindEnviron(v *viper.Viper) {
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, val)
		}
	}
}

// generateEnvKeyVariants lowers an environment key and expands it into the
// nested forms a config struct may use. Examples:
//
//	REFINE_CONCURRENCY -> [refine_concurrency, refine.concurrency]
//	BACKEND_BASE_URL   -> [backend_base_url, backend.base.url, backend.base_url]
func generateEnvKeyVariants(envKey string) []string {
	key := strings.ToLower(envKey)
	parts := strings.Split(key, "_")
	if len(parts) == 1 {
		return []string{key}
	}

	seen := make(map[string]bool, len(parts)+2)
	variants := make([]string, 0, len(parts)+2)
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			variants = append(variants, k)
		}
	}

	add(key)
	add(strings.ReplaceAll(key, "_", "."))
	// Each split point yields a dotted prefix with an underscored remainder,
	// so both refine.max_chunk_segments and refine.max.chunk_segments resolve.
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
