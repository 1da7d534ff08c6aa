// Package config loads the simulation configuration. Values are layered, from lowest to highest
// precedence: the embedded defaults, an optional config file, OMSIM_* environment variables and
// command line flags.
package config

import (
	_ "embed"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/byzantine-generals/omsim/consensus/om/committee"
	"github.com/byzantine-generals/omsim/consensus/om/engine"
	"github.com/byzantine-generals/omsim/consensus/om/model"
	"github.com/byzantine-generals/omsim/module/simulation"
)

const (
	envPrefix = "OMSIM"

	// All constant strings are used for CLI flag names and corresponding keys for config values.
	configFile      = "config-file"
	generals        = "generals"
	traitors        = "traitors"
	rounds          = "rounds"
	iterations      = "iterations"
	seed            = "seed"
	workers         = "workers"
	failFast        = "fail-fast"
	stopOnViolation = "stop-on-violation"
	allowUnsafe     = "allow-unsafe"
	metricsPort     = "metrics-port"
	output          = "output"
	logLevel        = "loglevel"
	timeout         = "timeout"
)

const (
	OutputTable = "table"
	OutputYAML  = "yaml"
)

//go:embed default-config.yml
var defaultConfig string

// SimulationConfig is the complete configuration of the simulator.
type SimulationConfig struct {
	// Generals is the number of participants; 0 derives 3 * Traitors + 1.
	Generals int `validate:"gte=0" mapstructure:"generals"`
	Traitors int `validate:"gte=0" mapstructure:"traitors"`
	// Rounds is the OM level; -1 runs OM(Traitors).
	Rounds          int           `validate:"gte=-1" mapstructure:"rounds"`
	Iterations      uint64        `validate:"gt=0" mapstructure:"iterations"`
	Seed            uint64        `mapstructure:"seed"`
	Workers         uint          `validate:"gt=0" mapstructure:"workers"`
	FailFast        bool          `mapstructure:"fail-fast"`
	StopOnViolation bool          `mapstructure:"stop-on-violation"`
	AllowUnsafe     bool          `mapstructure:"allow-unsafe"`
	MetricsPort     uint          `validate:"lte=65535" mapstructure:"metrics-port"`
	Output          string        `validate:"oneof=table yaml" mapstructure:"output"`
	LogLevel        zerolog.Level `mapstructure:"loglevel"`
	Timeout         time.Duration `validate:"gte=0" mapstructure:"timeout"`
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() (*SimulationConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// InitializeFlags registers a flag for every configuration value on flags, using config for the defaults.
func InitializeFlags(flags *pflag.FlagSet, config *SimulationConfig) {
	flags.String(configFile, "", "path to a yaml file overriding the default configuration")
	flags.Int(generals, config.Generals, "number of generals, 0 uses 3 * traitors + 1")
	flags.Int(traitors, config.Traitors, "number of traitors")
	flags.Int(rounds, config.Rounds, "OM level of the protocol, -1 uses the number of traitors")
	flags.Uint64(iterations, config.Iterations, "number of trials to run")
	flags.Uint64(seed, config.Seed, "seed of the batch, trial i uses a generator derived from (seed, i)")
	flags.Uint(workers, config.Workers, "number of trials run concurrently")
	flags.Bool(failFast, config.FailFast, "abort the batch on the first internal invariant violation")
	flags.Bool(stopOnViolation, config.StopOnViolation, "end the batch after the first agreement or validity violation")
	flags.Bool(allowUnsafe, config.AllowUnsafe, "allow configurations with generals <= 3 * traitors")
	flags.Uint(metricsPort, config.MetricsPort, "port of the prometheus metrics endpoint, 0 disables it")
	flags.String(output, config.Output, "report format: table or yaml")
	flags.String(logLevel, config.LogLevel.String(), "log level: panic, fatal, error, warn, info, debug or trace")
	flags.Duration(timeout, config.Timeout, "upper bound for the whole batch, 0 means no limit")
}

// Load builds the configuration from the defaults, the config file named by the config-file
// flag, the environment and the flags set on the command line, then validates it.
func Load(flags *pflag.FlagSet) (*SimulationConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	path, err := flags.GetString(configFile)
	if err != nil {
		return nil, fmt.Errorf("could not read %s flag: %w", configFile, err)
	}
	if path != "" {
		v.SetConfigFile(path)
		err = v.MergeInConfig()
		if err != nil {
			return nil, fmt.Errorf("could not merge config file %s: %w", path, err)
		}
	}

	err = v.BindPFlags(flags)
	if err != nil {
		return nil, fmt.Errorf("could not bind flags: %w", err)
	}

	config, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	err = config.Validate()
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration and fills in the derived number of generals.
//
// Expected errors during normal operations:
//   - validator.ValidationErrors if a value is out of its range
//   - model.PreconditionViolationError if the counts cannot be simulated
func (c *SimulationConfig) Validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Generals == 0 {
		c.Generals = committee.MinGenerals(c.Traitors)
	}
	if c.AllowUnsafe {
		err = committee.CheckCounts(c.Generals, c.Traitors)
	} else {
		err = committee.CheckSafety(c.Generals, c.Traitors)
	}
	if err != nil {
		return err
	}
	rounds := c.Rounds
	if rounds < 0 {
		rounds = c.Traitors
	}
	if rounds > c.Generals-1 {
		return model.NewPreconditionViolationError(c.Generals, c.Traitors,
			fmt.Sprintf("rounds %d exceed generals-1", rounds))
	}
	return nil
}

// Unsafe returns true if the configuration violates generals > 3 * traitors.
func (c *SimulationConfig) Unsafe() bool {
	return committee.CheckSafety(c.Generals, c.Traitors) != nil
}

// DriverConfig returns the part of the configuration the simulation driver consumes.
func (c *SimulationConfig) DriverConfig() simulation.Config {
	r := c.Rounds
	if r < 0 {
		r = engine.DeriveRounds
	}
	return simulation.Config{
		Generals:        c.Generals,
		Traitors:        c.Traitors,
		Rounds:          r,
		Iterations:      c.Iterations,
		Seed:            c.Seed,
		Workers:         c.Workers,
		FailFast:        c.FailFast,
		StopOnViolation: c.StopOnViolation,
		AllowUnsafe:     c.AllowUnsafe,
	}
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(defaultConfig))
	if err != nil {
		return nil, fmt.Errorf("could not read default config: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v, nil
}

func unmarshal(v *viper.Viper) (*SimulationConfig, error) {
	var config SimulationConfig
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToLogLevelHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("could not decode configuration: %w", err)
	}
	return &config, nil
}

// stringToLogLevelHookFunc decodes level names into zerolog.Level.
func stringToLogLevelHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(zerolog.Level(0)) {
			return data, nil
		}
		level, err := zerolog.ParseLevel(data.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", data, err)
		}
		return level, nil
	}
}
