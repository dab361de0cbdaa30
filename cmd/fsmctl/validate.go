package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/librescoot/tickfsm/fsmyaml"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a definition for consistency",
		Long:  `Parses the definition, checks its states and rules, and builds a machine from it with placeholder actions.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runValidate(args[0]); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "definition is valid")
			return nil
		},
	}
}

func runValidate(path string) error {
	doc, err := fsmyaml.Load(path)
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	actions := fsmyaml.Actions[io.Writer]{}
	for _, name := range doc.ActionNames() {
		actions[name] = func(io.Writer) {}
	}

	_, err = fsmyaml.Build(doc, actions)
	return err
}
