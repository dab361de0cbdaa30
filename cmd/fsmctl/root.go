package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/librescoot/tickfsm/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fsmctl",
		Short:         "fsmctl works with YAML state machine definitions",
		Long:          `fsmctl validates, draws and simulates state machines described in YAML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	cmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")

	cmd.AddCommand(newValidateCmd(), newGraphCmd(), newRunCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandLogger builds the logger selected by --log-level, writing to the
// command's stderr.
func commandLogger(cmd *cobra.Command) (*slog.Logger, error) {
	s, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(s)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(cmd.ErrOrStderr(), level), nil
}
