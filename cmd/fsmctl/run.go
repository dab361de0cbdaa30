package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/librescoot/tickfsm"
	"github.com/librescoot/tickfsm/fsmyaml"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Simulate a definition",
		Long: `Starts a machine from the definition, sends the given events in order and then runs the requested number of updates.
Every action prints its own name, so the output shows which hooks ran.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, _ := cmd.Flags().GetStringSlice("events")
			updates, _ := cmd.Flags().GetInt("updates")
			initial, _ := cmd.Flags().GetString("initial")

			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}

			return runSimulation(cmd.OutOrStdout(), args[0], initial, events, updates, tickfsm.WithLogger(logger))
		},
	}

	cmd.Flags().StringSlice("events", nil, "Events to send, in order")
	cmd.Flags().Int("updates", 0, "Number of updates to run after the events")
	cmd.Flags().String("initial", "", "Initial state (default: the definition's initial)")
	return cmd
}

func runSimulation(out io.Writer, path, initial string, events []string, updates int, opts ...tickfsm.MachineOption) error {
	doc, err := fsmyaml.Load(path)
	if err != nil {
		return err
	}
	if initial == "" {
		initial = doc.Initial
	}
	if initial == "" {
		return errors.New("no initial state: set one in the definition or pass --initial")
	}

	actions := fsmyaml.Actions[io.Writer]{}
	for _, name := range doc.ActionNames() {
		actions[name] = func(w io.Writer) {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	m, err := fsmyaml.Build(doc, actions, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "start -> %s\n", initial)
	if err := m.Start(out, initial); err != nil {
		return err
	}

	for _, ev := range events {
		changed, err := m.SendEvent(ev)
		if err != nil {
			return fmt.Errorf("send %s: %w", ev, err)
		}
		s, err := m.CurrentState()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s -> %s (changed=%t)\n", ev, s, changed)
	}

	for i := 0; i < updates; i++ {
		if err := m.Update(); err != nil {
			return fmt.Errorf("update %d: %w", i+1, err)
		}
	}

	return nil
}
