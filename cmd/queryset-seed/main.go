// queryset-seed loads the sample roster (Python, Django and JavaScript
// courses with eight students) into the configured store.
//
//	go run ./cmd/queryset-seed --config=config/local.yaml
//	go run ./cmd/queryset-seed --config=config/local.yaml --reset=false --file=roster.yaml
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/queryset-api/internal/config"
	"github.com/aanand-mishra/queryset-api/internal/seed"
	"github.com/aanand-mishra/queryset-api/internal/storage/driver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		file       string
		reset      bool
	)

	cmd := &cobra.Command{
		Use:   "queryset-seed",
		Short: "Seed the store with sample courses and students",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv("CONFIG_PATH")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store, closeStore, err := driver.Open(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			fixtures, err := seed.Default()
			if file != "" {
				var data []byte
				data, err = os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				fixtures, err = seed.Parse(data)
			}
			if err != nil {
				return err
			}

			res, err := seed.Load(store, fixtures, reset)
			if err != nil {
				return err
			}

			slog.Info("seed complete",
				slog.String("driver", cfg.StorageDriver),
				slog.Bool("reset", reset))
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d courses and %d students.\n", res.Courses, res.Students)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the configuration YAML file (default $CONFIG_PATH)")
	cmd.Flags().StringVar(&file, "file", "", "roster YAML file to load instead of the built-in one")
	cmd.Flags().BoolVar(&reset, "reset", true, "delete all existing students and courses first")
	return cmd
}
