package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/layouteval/environment/gridworld"
)

func newLayoutsCmd() *cobra.Command {
	var layoutDir string

	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List the available layouts and their dimensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range gridworld.Layouts() {
				l, err := gridworld.LayoutNamed(name, layoutDir)
				if err != nil {
					return err
				}
				rows, cols := l.Dims()
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %2dx%-2d  goals: %d  "+
					"observations: %d\n", name, rows, cols, l.Goals(),
					l.ObservationDim())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&layoutDir, "layout-dir", "",
		"directory of layout files overriding builtin layouts")
	return cmd
}
