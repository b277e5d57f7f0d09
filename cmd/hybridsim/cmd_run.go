package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/daniacca/hybridchem/internal/httpserver"
	"github.com/daniacca/hybridchem/internal/kernel"
	"github.com/daniacca/hybridchem/internal/runconfig"
)

func newRunCmd() *cobra.Command {
	var (
		configFile string
		ticks      int
		seedOver   int64
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a hybridchem coordinator for a fixed number of native steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return fmt.Errorf("--config is required")
			}

			cfg, err := loadRunConfig(configFile, seedOver)
			if err != nil {
				return err
			}

			logger := httpserver.NewLogger(logLevel)
			coord, err := runconfig.Build(cfg, logger)
			if err != nil {
				return fmt.Errorf("building coordinator: %w", err)
			}

			for coord.NumSteps() < ticks {
				fired, err := coord.Step(largeDeadline)
				if err != nil {
					return fmt.Errorf("step %d: %w", coord.NumSteps(), err)
				}
				if !fired {
					break
				}
			}

			printSummary(cfg, coord, ticks)
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to a run config JSON file (required)")
	cmd.Flags().IntVar(&ticks, "ticks", 100, "number of native steps to run")
	cmd.Flags().Int64Var(&seedOver, "seed", 0, "override the run config's seed (0 means use the file's seed)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}

const largeDeadline = 1e18

func loadRunConfig(path string, seedOverride int64) (runconfig.RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runconfig.RunConfig{}, fmt.Errorf("reading run config: %w", err)
	}
	cfg, err := runconfig.Load(data)
	if err != nil {
		return runconfig.RunConfig{}, fmt.Errorf("parsing run config: %w", err)
	}
	if seedOverride != 0 {
		cfg.Seed = seedOverride
	}
	return cfg, nil
}

// printSummary prints every engine's owned species populations, sorted by
// species name for stable output.
func printSummary(cfg runconfig.RunConfig, coord *kernel.Coordinator, ticks int) {
	fmt.Printf("Run finished (engines=%d, requested ticks=%d, native steps=%d, t=%g)\n",
		len(cfg.Engines), ticks, coord.NumSteps(), coord.T())
	fmt.Println("Species counts:")

	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, es := range cfg.Engines {
		for _, sp := range es.Owns {
			if !seen[sp] {
				seen[sp] = true
				names = append(names, sp)
			}
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if v, ok := coord.GetValue(kernel.Intern(name)); ok {
			fmt.Printf("  %s: %g\n", name, v)
		}
	}
}
