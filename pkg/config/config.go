package config

import (
	"os"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultConfigFile = "/config/shelfmark.yaml"

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	JWTSecret                 string        `koanf:"jwt_secret"`
	MetadataFetchTimeout      time.Duration `koanf:"metadata_fetch_timeout"`
	MetadataRequestsPerSecond float64       `koanf:"metadata_requests_per_second"`
	OpenLibraryBaseURL        string        `koanf:"open_library_base_url"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
	ExportDirectory           string        `koanf:"export_directory"`
}

// required lists the fields that must be set by the config file or the
// environment.
var required = []string{"DatabaseFilePath", "JWTSecret"}

func defaults() *Config {
	return &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		MetadataFetchTimeout:      5 * time.Second,
		MetadataRequestsPerSecond: 5,
		OpenLibraryBaseURL:        "https://openlibrary.org",
		ServerHost:                "0.0.0.0",
		ServerPort:                3690,
		ExportDirectory:           "var/export",
	}
}

// New loads the config in order of increasing precedence: defaults, the YAML
// file pointed to by CONFIG_FILE, then environment variables (e.g.
// DATABASE_FILE_PATH overrides database_file_path).
func New() (*Config, error) {
	cfg := defaults()
	k := koanf.New(".")

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
		}
	}

	known := knownKeys()
	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(key)
		if !known[key] {
			return "", nil
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Unmarshalling on top of the defaults leaves unset keys untouched.
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config suitable for unit tests: in-memory database, no
// retries, and a fixed JWT secret.
func NewForTest() *Config {
	cfg := defaults()
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.JWTSecret = "test-jwt-secret"
	cfg.MetadataRequestsPerSecond = 1000
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

// knownKeys returns the koanf keys of every Config field so that unrelated
// environment variables are ignored.
func knownKeys() map[string]bool {
	keys := map[string]bool{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = true
		}
	}
	return keys
}

func (cfg *Config) validate() error {
	missing := []string{}
	v := reflect.ValueOf(cfg).Elem()
	for _, name := range required {
		if strings.TrimSpace(v.FieldByName(name).String()) == "" {
			key := toSnakeCase(name)
			missing = append(missing, strings.ToUpper(key)+" (env) / "+key+" (file)")
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if cfg.MetadataFetchTimeout <= 0 {
		return errors.New("metadata_fetch_timeout must be positive")
	}
	return nil
}

func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Keep acronyms like JWT together.
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
