package cli

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/toyz/metamodel/internal/errors"
	"github.com/toyz/metamodel/internal/source"
	"github.com/toyz/metamodel/internal/utils"
	"github.com/toyz/metamodel/pkg/meta"
	"github.com/toyz/metamodel/pkg/meta/inspect/adapters"
)

// DefaultConfigFile is read when present and no --config flag is given
const DefaultConfigFile = "metamodel.yaml"

// Environment variables overriding the configuration file
const (
	EnvDirectories = "METAMODEL_DIRS"
	EnvExcludes    = "METAMODEL_EXCLUDES"
	EnvFormat      = "METAMODEL_FORMAT"
	EnvServer      = "METAMODEL_SERVER"
	EnvAddr        = "METAMODEL_ADDR"
	EnvParallelism = "METAMODEL_PARALLELISM"
	EnvFailFast    = "METAMODEL_FAIL_FAST"
	EnvVerbose     = "METAMODEL_VERBOSE"
)

// Config holds the configuration for the CLI
type Config struct {
	// Directories is the list of directories to scan for //meta::object types
	Directories []string `yaml:"directories"`

	// Excludes are doublestar patterns of files to skip, relative to each directory
	Excludes []string `yaml:"excludes"`

	// Format is the output format of describe and export, yaml or json
	Format string `yaml:"format"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `yaml:"verbose"`

	Server    ServerConfig `yaml:"server"`
	Watch     WatchConfig  `yaml:"watch"`
	MetaModel meta.Config  `yaml:"metamodel"`
}

// ServerConfig configures the inspection server
type ServerConfig struct {
	Framework       string        `yaml:"framework"`
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WatchConfig configures rebuilding on source changes
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	return Config{
		Directories: []string{"./..."},
		Excludes:    append([]string(nil), source.DefaultExcludes...),
		Format:      "yaml",
		Server: ServerConfig{
			Framework:       "echo",
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Watch:     WatchConfig{Debounce: 250 * time.Millisecond},
		MetaModel: meta.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults. An empty path reads
// DefaultConfigFile when it exists.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.WrapFileSystemError("read", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WrapConfigurationError(path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides the configuration from the process environment and,
// when envFile is set, from that .env file. Process variables win.
func (c *Config) ApplyEnv(envFile string) error {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return errors.WrapFileSystemError("read", envFile, err)
		}
		fileVars = vars
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if v, ok := lookup(EnvDirectories); ok {
		c.Directories = splitList(v)
	}
	if v, ok := lookup(EnvExcludes); ok {
		c.Excludes = splitList(v)
	}
	if v, ok := lookup(EnvFormat); ok {
		c.Format = v
	}
	if v, ok := lookup(EnvServer); ok {
		c.Server.Framework = v
	}
	if v, ok := lookup(EnvAddr); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvParallelism); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.WrapConfigurationError(EnvParallelism, err)
		}
		c.MetaModel.Parallelism = n
	}
	if v, ok := lookup(EnvFailFast); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapConfigurationError(EnvFailFast, err)
		}
		c.MetaModel.Validation.FailFast = b
	}
	if v, ok := lookup(EnvVerbose); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapConfigurationError(EnvVerbose, err)
		}
		c.Verbose = b
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks the configuration
func (c Config) Validate() error {
	dirs := utils.All(
		utils.Check("directories", "at least one directory is required", func(d []string) bool { return len(d) > 0 }),
		utils.Each("directories", utils.NotEmpty("directory")),
	)
	if err := dirs(c.Directories); err != nil {
		return errors.WrapConfigurationError("directories", err)
	}
	if err := utils.Each("excludes", utils.Glob("exclude"))(c.Excludes); err != nil {
		return errors.WrapConfigurationError("excludes", err)
	}
	if err := utils.OneOf("format", "yaml", "yml", "json")(c.Format); err != nil {
		return errors.WrapConfigurationError("format", err)
	}
	server := []error{
		utils.OneOf("server.framework", adapters.Names...)(c.Server.Framework),
		utils.NotEmpty("server.addr")(c.Server.Addr),
		utils.Positive[time.Duration]("server.shutdown_timeout")(c.Server.ShutdownTimeout),
	}
	for _, err := range server {
		if err != nil {
			return errors.WrapConfigurationError("server", err)
		}
	}
	if err := utils.Positive[time.Duration]("watch.debounce")(c.Watch.Debounce); err != nil {
		return errors.WrapConfigurationError("watch", err)
	}
	if err := c.MetaModel.Validate(); err != nil {
		return errors.WrapConfigurationError("metamodel", err)
	}
	return nil
}
