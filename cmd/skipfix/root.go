package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/skipfix/internal/check"
	"github.com/backmassage/skipfix/internal/config"
	"github.com/backmassage/skipfix/internal/display"
	"github.com/backmassage/skipfix/internal/logging"
	"github.com/backmassage/skipfix/internal/pipeline"
)

// commandContext holds the config and flags shared by every command.
type commandContext struct {
	cfg   config.Config
	flags *config.Flags
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{cfg: config.DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "skipfix --report FILE --root DIR [--apply]",
		Short: "Convert lossy and repair broken audio files listed in a report",
		Long: "skipfix reads a report of problem audio files, finds each one under the\n" +
			"library root, and converts .m4a/.mp4 to FLAC or re-encodes FLAC files that\n" +
			"fail a decode test. Nothing changes unless --apply is given.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cc.runFix(cmd)
		},
	}
	cc.flags = config.BindFlags(rootCmd.PersistentFlags(), &cc.cfg)

	rootCmd.AddCommand(newCheckCommand(cc))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// load applies the config file and post-parse flag values, then validates.
func (cc *commandContext) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := &cc.cfg
	path, required := cc.flags.ConfigPath, cc.flags.ConfigPath != ""
	if !required {
		path = config.DefaultConfigPath()
	}
	if err := config.ApplyFile(cfg, path, required, cmd.Flags().Changed); err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}
	cc.flags.Finish(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}
	return cfg, nil
}

// newLogger opens the logger on the command's writers and prints the banner.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, &exitError{code: exitUsage, err: fmt.Errorf("open log file: %w", err)}
	}
	log.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	display.PrintBanner(cmd.OutOrStdout())
	return log, nil
}

// runFix is the root command.
//
// Flow:
//  1. Load and validate config
//  2. Require ffmpeg and ffprobe (exit 2)
//  3. Check the report exists and the root is a directory (exit 1)
//  4. Run the pipeline
func (cc *commandContext) runFix(cmd *cobra.Command) error {
	cfg, err := cc.load(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	if err := check.Require(check.RequiredTools(cfg)...); err != nil {
		log.Error("%v", err)
		return &exitError{code: exitToolMissing, err: err, logged: true}
	}

	if fi, err := os.Stat(cfg.ReportPath); err != nil || fi.IsDir() {
		log.Error("Report not found: %s", cfg.ReportPath)
		return &exitError{code: exitUsage, err: fmt.Errorf("report not found: %s", cfg.ReportPath), logged: true}
	}
	root, err := cfg.ValidateRoot()
	if err != nil {
		log.Error("Root not usable: %v", err)
		return &exitError{code: exitUsage, err: err, logged: true}
	}
	cfg.RootDir = root

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := pipeline.Run(ctx, cfg, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Interrupted")
			return err
		}
		log.Error("%v", err)
		return &exitError{code: exitUsage, err: err, logged: true}
	}
	return nil
}
