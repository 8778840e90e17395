package main

import (
	"fmt"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// newApp builds the command. Every flag reads, in order, the command line,
// an FFTBENCH_* environment variable and the YAML file at cfgPath.
func newApp(cfgPath string) *cli.Command {
	src := func(env, key string) cli.ValueSourceChain {
		return cli.NewValueSourceChain(
			cli.EnvVar(env),
			yaml.YAML(key, altsrc.StringSourcer(cfgPath)),
		)
	}

	return &cli.Command{
		Name:      "fftbench",
		Usage:     "matched-filter workload over cached FFT plans",
		UsageText: "fftbench [options]",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:    "lengths",
				Aliases: []string{"n"},
				Usage:   "segment lengths to filter (each gets its own plans)",
				Sources: src("FFTBENCH_LENGTHS", "lengths"),
				Value:   []int{4096, 8192, 16384},
			},
			&cli.IntFlag{
				Name:    "template",
				Usage:   "template length in samples",
				Sources: src("FFTBENCH_TEMPLATE", "template"),
				Value:   256,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of worker goroutines (0 = 2*GOMAXPROCS)",
				Sources: src("FFTBENCH_WORKERS", "workers"),
				Value:   0,
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "benchmark duration",
				Sources: src("FFTBENCH_DURATION", "duration"),
				Value:   10 * time.Second,
			},
			&cli.DurationFlag{
				Name:    "teardown-every",
				Usage:   "simulate a device context teardown at this interval (0 = never)",
				Sources: src("FFTBENCH_TEARDOWN_EVERY", "teardown_every"),
				Value:   0,
			},
			&cli.Int64Flag{
				Name:    "seed",
				Usage:   "random seed (0 = time based)",
				Sources: src("FFTBENCH_SEED", "seed"),
				Value:   0,
			},
			&cli.StringFlag{
				Name:    "http",
				Usage:   "serve Prometheus metrics at addr (empty = disabled)",
				Sources: src("FFTBENCH_HTTP", "http"),
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:    "pprof",
				Usage:   "serve pprof at addr, e.g. :6060 (empty = disabled)",
				Sources: src("FFTBENCH_PPROF", "pprof"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log plan cache events",
				Sources: src("FFTBENCH_DEBUG", "debug"),
			},
		},
		Action: runBench,
	}
}

// benchConfig is the validated flag set.
type benchConfig struct {
	lengths       []int
	template      int
	workers       int
	duration      time.Duration
	teardownEvery time.Duration
	seed          int64
	httpAddr      string
	pprofAddr     string
	debug         bool
}

func configFrom(cmd *cli.Command) (benchConfig, error) {
	cfg := benchConfig{
		lengths:       cmd.IntSlice("lengths"),
		template:      cmd.Int("template"),
		workers:       cmd.Int("workers"),
		duration:      cmd.Duration("duration"),
		teardownEvery: cmd.Duration("teardown-every"),
		seed:          cmd.Int64("seed"),
		httpAddr:      cmd.String("http"),
		pprofAddr:     cmd.String("pprof"),
		debug:         cmd.Bool("debug"),
	}
	return cfg, cfg.validate()
}

func (c benchConfig) validate() error {
	if len(c.lengths) == 0 {
		return fmt.Errorf("at least one length is required")
	}
	for _, n := range c.lengths {
		if n < 2 {
			return fmt.Errorf("invalid length %d", n)
		}
		if c.template > n {
			return fmt.Errorf("template length %d exceeds segment length %d", c.template, n)
		}
	}
	if c.template < 1 {
		return fmt.Errorf("invalid template length %d", c.template)
	}
	if c.duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if c.teardownEvery < 0 {
		return fmt.Errorf("teardown interval must not be negative")
	}
	return nil
}
