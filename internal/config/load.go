package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TODO_"

// Option はLoadの挙動を変更します。
type Option func(*loadOptions)

type loadOptions struct {
	configFile string
	envFiles   []string
}

// WithConfigFile はYAML設定ファイルを読み込み対象に加えます。
func WithConfigFile(path string) Option {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// WithEnvFiles は読み込む.envファイルを指定します。存在しないファイルは無視されます。
func WithEnvFiles(paths ...string) Option {
	return func(o *loadOptions) {
		o.envFiles = paths
	}
}

// Load は設定を読み込み、検証済みのConfigを返します。
//
//	TODO_SERVER_PORT        -> server.port
//	TODO_MONGO_URI          -> mongo.uri
//	TODO_STORE_DRIVER       -> store.driver
//	TODO_CORS_ALLOW_ORIGINS -> cors.allow_origins (カンマ区切り)
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(o)
	}

	for _, path := range o.envFiles {
		// 既に設定されている環境変数は上書きしない
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %s: %w", path, err)
		}
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if o.configFile != "" {
		if err := k.Load(file.Provider(o.configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", o.configFile, err)
		}
	}

	// "server_read_timeout" を "server.read.timeout" ではなく
	// "server.read_timeout" に解決するため、既知のキーから逆引きする
	envLookup := buildEnvLookup(k.Keys())

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			if koanfKey, ok := envLookup[key]; ok {
				if koanfKey == "cors.allow_origins" {
					return koanfKey, splitList(value)
				}
				return koanfKey, value
			}
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
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

func buildEnvLookup(keys []string) map[string]string {
	lookup := make(map[string]string, len(keys))
	for _, key := range keys {
		lookup[strings.ReplaceAll(key, ".", "_")] = key
	}
	return lookup
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
