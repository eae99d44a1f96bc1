package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ALEYI17/InfraSight_mpi/pkg/logutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Recording modes.
const (
	ModeHistogram = "histogram"
	ModeLog       = "log"
	ModeBoth      = "both"
)

// Collective transports.
const (
	TransportSingle = "single"
	TransportGrpc   = "grpc"
)

// Arena holds the event arena settings.
type Arena struct {
	BlockCapacity int    `yaml:"block_capacity"`
	MaxBlocks     int    `yaml:"max_blocks"`
	Backing       string `yaml:"backing"`
}

// Config is the engine configuration of one rank.
type Config struct {
	OutputDir       string        `yaml:"output_dir"`
	FilePrefix      string        `yaml:"file_prefix"`
	Mode            string        `yaml:"mode"`
	Arena           Arena         `yaml:"arena"`
	Rank            int           `yaml:"rank"`
	Size            int           `yaml:"size"`
	Root            int           `yaml:"root"`
	Transport       string        `yaml:"transport"`
	Coordinator     string        `yaml:"coordinator"`
	Timeout         time.Duration `yaml:"timeout"`
	MetricsTextfile bool          `yaml:"metrics_textfile"`
	LogLevel        string        `yaml:"log_level"`
}

// Default returns the configuration of a single-process run.
func Default() *Config {
	return &Config{
		OutputDir:  "collprof",
		FilePrefix: "collprof",
		Mode:       ModeBoth,
		Arena: Arena{
			BlockCapacity: 4096,
			Backing:       "mmap",
		},
		Rank:        0,
		Size:        1,
		Root:        0,
		Transport:   "",
		Coordinator: "127.0.0.1:29517",
		Timeout:     5 * time.Minute,
		LogLevel:    "info",
	}
}

// RecordsLog reports whether the mode keeps the full event log.
func (c *Config) RecordsLog() bool {
	return c.Mode == ModeLog || c.Mode == ModeBoth
}

// RecordsHistogram reports whether the mode keeps the size histogram.
func (c *Config) RecordsHistogram() bool {
	return c.Mode == ModeHistogram || c.Mode == ModeBoth
}

// ResolvedTransport returns the transport, choosing from the job size when
// none is set.
func (c *Config) ResolvedTransport() string {
	if c.Transport != "" {
		return c.Transport
	}
	if c.Size > 1 {
		return TransportGrpc
	}
	return TransportSingle
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeHistogram, ModeLog, ModeBoth:
	default:
		errs = append(errs, fmt.Errorf("mode %q: want histogram, log or both", c.Mode))
	}
	if c.Size < 1 {
		errs = append(errs, fmt.Errorf("size %d: must be at least 1", c.Size))
	}
	if c.Rank < 0 || c.Rank >= c.Size {
		errs = append(errs, fmt.Errorf("rank %d outside job of %d", c.Rank, c.Size))
	}
	if c.Root < 0 || c.Root >= c.Size {
		errs = append(errs, fmt.Errorf("root %d outside job of %d", c.Root, c.Size))
	}
	if c.Arena.BlockCapacity <= 0 {
		errs = append(errs, fmt.Errorf("arena.block_capacity %d: must be positive", c.Arena.BlockCapacity))
	}
	if c.Arena.MaxBlocks < 0 {
		errs = append(errs, fmt.Errorf("arena.max_blocks %d: must not be negative", c.Arena.MaxBlocks))
	}
	switch c.Arena.Backing {
	case "mmap", "heap":
	default:
		errs = append(errs, fmt.Errorf("arena.backing %q: want mmap or heap", c.Arena.Backing))
	}
	switch t := c.ResolvedTransport(); t {
	case TransportSingle:
		if c.Size > 1 {
			errs = append(errs, fmt.Errorf("transport single cannot serve %d ranks", c.Size))
		}
	case TransportGrpc:
		if c.Coordinator == "" {
			errs = append(errs, errors.New("transport grpc needs a coordinator address"))
		}
	default:
		errs = append(errs, fmt.Errorf("transport %q: want single or grpc", t))
	}
	if c.FilePrefix == "" {
		errs = append(errs, errors.New("file_prefix must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout %s: must be positive", c.Timeout))
	}
	return errors.Join(errs...)
}

// Load builds a configuration from defaults, the YAML file at path (if
// non-empty) and the environment as seen through getenv, in that order.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads the process configuration from COLLPROF_CONFIG and the
// environment. On error it logs and falls back to defaults with the rank
// layout from the environment, so a bad setting never stops the job.
func LoadConfig() *Config {
	cfg, err := Load(os.Getenv("COLLPROF_CONFIG"), os.Getenv)
	if err == nil {
		return cfg
	}
	logutil.GetLogger().Warn("invalid profiler configuration, using defaults", zap.Error(err))

	cfg = Default()
	if rank, size, ok := rankLayout(os.Getenv); ok {
		cfg.Rank, cfg.Size = rank, size
	}
	return cfg
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}

	str("COLLPROF_OUTPUT_DIR", &cfg.OutputDir)
	str("COLLPROF_FILE_PREFIX", &cfg.FilePrefix)
	str("COLLPROF_MODE", &cfg.Mode)
	str("COLLPROF_ARENA_BACKING", &cfg.Arena.Backing)
	str("COLLPROF_TRANSPORT", &cfg.Transport)
	str("COLLPROF_COORDINATOR", &cfg.Coordinator)
	str("COLLPROF_LOG_LEVEL", &cfg.LogLevel)
	num("COLLPROF_BLOCK_CAPACITY", &cfg.Arena.BlockCapacity)
	num("COLLPROF_MAX_BLOCKS", &cfg.Arena.MaxBlocks)
	num("COLLPROF_ROOT", &cfg.Root)

	if v := getenv("COLLPROF_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("COLLPROF_TIMEOUT=%q: %w", v, err))
		} else {
			cfg.Timeout = d
		}
	}
	if v := getenv("COLLPROF_METRICS_TEXTFILE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("COLLPROF_METRICS_TEXTFILE=%q: %w", v, err))
		} else {
			cfg.MetricsTextfile = b
		}
	}

	if rank, size, ok := rankLayout(getenv); ok {
		cfg.Rank, cfg.Size = rank, size
	}
	cfg.Mode = strings.ToLower(cfg.Mode)
	return errors.Join(errs...)
}

// rankVars lists the launcher variables rank and size are read from, most
// specific first.
var rankVars = [][2]string{
	{"COLLPROF_RANK", "COLLPROF_SIZE"},
	{"OMPI_COMM_WORLD_RANK", "OMPI_COMM_WORLD_SIZE"},
	{"PMI_RANK", "PMI_SIZE"},
	{"RANK", "WORLD_SIZE"},
}

func rankLayout(getenv func(string) string) (int, int, bool) {
	for _, vars := range rankVars {
		r, s := getenv(vars[0]), getenv(vars[1])
		if r == "" || s == "" {
			continue
		}
		rank, err1 := strconv.Atoi(r)
		size, err2 := strconv.Atoi(s)
		if err1 != nil || err2 != nil {
			continue
		}
		return rank, size, true
	}
	return 0, 0, false
}
