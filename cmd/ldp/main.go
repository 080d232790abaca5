// Package main contains the CLI entry point. It uses cobra for command
// parsing, mirroring one command per verb.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ldp/internal/dbexec"
	"ldp/internal/extract"
	"ldp/internal/flavor"
	_ "ldp/internal/flavor/postgres"
	_ "ldp/internal/flavor/redshift"
	"ldp/internal/runconfig"
	"ldp/internal/stage"
)

type loadFlags struct {
	source    string
	config    string
	sourceDir string
	nossl     bool
	saveTemps bool
	unsafe    bool
	verbose   bool
	debug     bool
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "ldp",
		Short: "JSON-to-relational staging pipeline",
	}

	rootCmd.AddCommand(loadCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCmd() *cobra.Command {
	flags := &loadFlags{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Stage, infer, and publish the configured table catalog",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runLoad(flags)
		},
	}

	cmd.Flags().StringVar(&flags.source, "source", "", "tenant service base URL (external extractor option, unused by the core)")
	cmd.Flags().StringVar(&flags.config, "config", "", "path to the run configuration TOML file (required)")
	cmd.Flags().StringVar(&flags.sourceDir, "sourcedir", "", "load from an existing staging directory instead of extracting")
	cmd.Flags().BoolVar(&flags.nossl, "nossl", false, "disable TLS verification against the tenant service (external extractor option, unused by the core)")
	cmd.Flags().BoolVar(&flags.saveTemps, "savetemps", false, "keep staged page files after a successful run")
	cmd.Flags().BoolVar(&flags.unsafe, "unsafe", false, "accepted but has no effect; publish steps never ask for confirmation")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "accepted but has no effect on logging; see --debug")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "use a development logger with full stack traces")

	return cmd
}

func runLoad(flags *loadFlags) error {
	if flags.config == "" {
		return fmt.Errorf("--config is required")
	}

	log, err := newLogger(flags.debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := runconfig.Load(flags.config)
	if err != nil {
		return err
	}

	stagingDir := cfg.StagingDir
	if flags.sourceDir != "" {
		stagingDir = flags.sourceDir
	}
	if stagingDir == "" {
		return fmt.Errorf("no staging directory configured (set staging.directory or --sourcedir)")
	}

	f, err := flavor.Get(cfg.Flavor)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx := context.Background()
	db, err := dbexec.Connect(ctx, cfg.DSN, f)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	defer db.Close()

	pages := extract.NewDirReader(stagingDir)

	stager := &stage.TableStager{
		DB:                db,
		Pages:             pages,
		Log:               log,
		Roles:             cfg.Roles,
		LoadFromDirectory: cfg.LoadFromDirectory,
	}

	failures := 0
	for _, entry := range cfg.Tables {
		table := &stage.TableSpec{
			TableName:  entry.Name,
			ModuleName: entry.ModuleName,
			SourcePath: entry.SourcePath,
		}
		if err := stager.Run(ctx, table); err != nil {
			log.Error("table load failed", zap.String("table", table.TableName), zap.Error(err))
			failures++
			continue
		}
		log.Info("table published", zap.String("table", table.TableName))
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d tables failed to load", failures, len(cfg.Tables))
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
