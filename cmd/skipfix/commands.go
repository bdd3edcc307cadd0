package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/backmassage/skipfix/internal/check"
)

func newCheckCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check ffmpeg, ffprobe and the FLAC encoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc.cfg.CheckOnly = true
			cfg, err := cc.load(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			if !check.RunCheck(cmd.Context(), cfg, log) {
				return &exitError{code: exitToolMissing, err: errors.New("system check failed"), logged: true}
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "skipfix %s (commit %s, %s)\n", version, commit, runtime.Version())
		},
	}
}
