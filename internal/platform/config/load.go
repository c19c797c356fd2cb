package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix        = "APP_"
	defaultConfigDir = "configs"

	// DefaultProfile is used when APP_PROFILE is unset.
	DefaultProfile = "local"
)

// Option configures the Load function.
type Option func(*loadOptions)

type loadOptions struct {
	configDir string
}

// WithConfigDir sets the directory where config YAML files are located.
// Defaults to "configs" relative to the working directory.
func WithConfigDir(dir string) Option {
	return func(o *loadOptions) {
		o.configDir = dir
	}
}

// ProfileFromEnv returns APP_PROFILE, or DefaultProfile when it is unset.
func ProfileFromEnv() string {
	if p := strings.TrimSpace(os.Getenv("APP_PROFILE")); p != "" {
		return p
	}
	return DefaultProfile
}

// Load builds a Config for profile from five layers, later ones winning:
//
//  1. built-in defaults
//  2. {configDir}/base.yaml
//  3. {configDir}/{profile}.yaml
//  4. DATABASE_URL, HOST and PORT
//  5. APP_ prefixed environment variables
//
// APP_ variables are matched against the keys the earlier layers produced, so
// underscores inside a key survive:
//
//	APP_SERVER_REQUEST_TIMEOUT              -> server.request_timeout
//	APP_DATABASE_URL                        -> database.url
//	APP_DATABASE_CONNECT_RETRY_MAX_ATTEMPTS -> database.connect_retry.max_attempts
//
// The result is validated; a missing database.url is an error.
func Load(profile string, opts ...Option) (*Config, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	o := &loadOptions{configDir: defaultConfigDir}
	for _, opt := range opts {
		opt(o)
	}

	basePath := filepath.Join(o.configDir, "base.yaml")
	profilePath := filepath.Join(o.configDir, profile+".yaml")

	layers := []struct {
		name string
		load func(k *koanf.Koanf) error
	}{
		{"defaults", func(k *koanf.Koanf) error {
			return k.Load(confmap.Provider(defaults(), "."), nil)
		}},
		{"base config " + basePath, func(k *koanf.Koanf) error {
			return k.Load(file.Provider(basePath), yaml.Parser())
		}},
		{"profile config " + profilePath, func(k *koanf.Koanf) error {
			return k.Load(file.Provider(profilePath), yaml.Parser())
		}},
		{"plain env vars", func(k *koanf.Koanf) error {
			return k.Load(confmap.Provider(plainEnv(os.LookupEnv), "."), nil)
		}},
		{"env vars", loadPrefixedEnv},
	}

	k := koanf.New(".")
	for _, l := range layers {
		if err := l.load(k); err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// loadPrefixedEnv overlays APP_ variables. Names that match no known key fall
// back to replacing every underscore with a dot. Empty values are ignored, as
// in plainEnv.
func loadPrefixedEnv(k *koanf.Koanf) error {
	known := envKeys(k.Keys())

	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(name, value string) (string, any) {
			value = strings.TrimSpace(value)
			if value == "" {
				return "", nil
			}
			name = strings.ToLower(strings.TrimPrefix(name, envPrefix))
			if key, ok := known[name]; ok {
				return key, value
			}
			return strings.ReplaceAll(name, "_", "."), value
		},
	}), nil)
}

// validateProfile checks that the profile name is safe and non-empty.
func validateProfile(profile string) error {
	if strings.TrimSpace(profile) == "" {
		return errors.New("profile must not be empty")
	}
	if strings.ContainsAny(profile, `/\`) {
		return fmt.Errorf("profile must not contain path separators, got %q", profile)
	}
	if strings.Contains(profile, "..") {
		return fmt.Errorf("profile must not contain path traversal, got %q", profile)
	}
	return nil
}

// plainEnv collects the set unprefixed variables as a flat koanf map.
// Empty values are ignored.
func plainEnv(lookup func(string) (string, bool)) map[string]any {
	out := make(map[string]any, len(plainEnvKeys))
	for name, key := range plainEnvKeys {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}

// envKeys maps the env spelling of each key ("server_read_timeout") to the
// key itself ("server.read_timeout").
func envKeys(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[strings.ReplaceAll(key, ".", "_")] = key
	}
	return out
}
