package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/librescoot/tickfsm/fsmyaml"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph FILE",
		Short: "Export the state diagram",
		Long:  `Outputs a Mermaid diagram (stateDiagram-v2) of the definition's states and transition rules.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := fsmyaml.Load(args[0])
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return fmt.Errorf("invalid definition: %w", err)
			}

			// Diagrams only need the structure; every hook is drawn the same.
			doc.States = withoutActions(doc.States)
			def, err := fsmyaml.Compile(doc, fsmyaml.Actions[io.Writer]{})
			if err != nil {
				return err
			}
			return def.Mermaid(cmd.OutOrStdout(), doc.Initial)
		},
	}
}

func withoutActions(states []fsmyaml.StateDoc) []fsmyaml.StateDoc {
	out := make([]fsmyaml.StateDoc, len(states))
	for i, s := range states {
		out[i] = fsmyaml.StateDoc{Name: s.Name}
	}
	return out
}
