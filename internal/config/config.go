package config

import (
	"flag"
	"os"

	"codeberg.org/mutker/raplsim/internal/errors"
	"github.com/spf13/viper"
)

const (
	defaultInterval  = 1
	defaultDomains   = 3
	defaultPower     = 15.0
	defaultMaxEnergy = 1 << 28
	defaultBaseDir   = "sys/class/powercap/intel-rapl"
	defaultMetricsDB = "/var/lib/raplsim/metrics.db"
)

type Config struct {
	Interval  int     // seconds between simulation ticks
	Domains   int     // number of simulated power domains
	Power     float64 // nominal per-domain power draw in watts
	MaxEnergy int64   // energy counter wraparound ceiling in microjoules
	BaseDir   string  // root of the simulated sysfs tree
	Reset     bool    // clear any pre-existing tree at startup
	Metrics   bool    // record per-tick samples to the metrics database
	MetricsDB string  `mapstructure:"database"`
	Debug     bool
	Verbose   bool
}

func Load() (*Config, error) {
	errFactory := errors.New()
	config := &Config{}

	// Define flags
	fs := flag.NewFlagSet("raplsim", flag.ContinueOnError)
	fs.IntVar(&config.Interval, "interval", defaultInterval, "Seconds between simulation ticks")
	fs.IntVar(&config.Domains, "domains", defaultDomains, "Number of simulated power domains")
	fs.Float64Var(&config.Power, "power", defaultPower, "Nominal per-domain power draw in watts")
	fs.Int64Var(&config.MaxEnergy, "maxenergy", defaultMaxEnergy, "Energy counter ceiling in microjoules")
	fs.StringVar(&config.BaseDir, "basedir", defaultBaseDir, "Root of the simulated sysfs tree")
	fs.BoolVar(&config.Reset, "reset", false, "Clear any pre-existing tree at startup")
	fs.BoolVar(&config.Metrics, "metrics", false, "Record per-tick samples to the metrics database")
	fs.StringVar(&config.MetricsDB, "database", defaultMetricsDB, "Path to the metrics database")
	fs.BoolVar(&config.Debug, "debug", false, "Enable debugging mode")
	fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose logging")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	v := viper.New()
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("domains", defaultDomains)
	v.SetDefault("power", defaultPower)
	v.SetDefault("maxenergy", defaultMaxEnergy)
	v.SetDefault("basedir", defaultBaseDir)
	v.SetDefault("reset", false)
	v.SetDefault("metrics", false)
	v.SetDefault("database", defaultMetricsDB)

	// Load configuration from file
	if path := os.Getenv("RAPLSIM_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName("raplsim.conf")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	// Override config file values with command line flags
	fs.Visit(func(f *flag.Flag) {
		v.Set(f.Name, f.Value.String())
	})
	v.Set("debug", config.Debug)
	v.Set("verbose", config.Verbose)

	// Unmarshal the configuration
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Domains <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "domain count must be positive")
	}
	if c.Power <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "nominal power must be positive")
	}
	if c.MaxEnergy <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "energy ceiling must be positive")
	}
	if c.BaseDir == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "base directory must not be empty")
	}
	if c.Metrics && c.MetricsDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "metrics database path must not be empty")
	}

	return nil
}
