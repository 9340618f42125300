package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/specialistvlad/sitegridgo/internal/app"
	"github.com/spf13/cobra"
)

func newTasksCommand(f *flags, outW io.Writer, opts []app.Option) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List every task and its prerequisites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, f, nil, io.Discard, opts)
			if err != nil {
				return err
			}
			paint := !f.noColor && color.SupportColor()
			for _, t := range a.Registry().All() {
				name := t.Name.String()
				if paint {
					name = color.FgCyan.Render(name)
				}
				line := name
				if t.Description != "" {
					line += "  " + t.Description
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				if len(t.DependsOn) > 0 {
					deps := make([]string, 0, len(t.DependsOn))
					for _, d := range t.DependsOn {
						deps = append(deps, d.String())
					}
					fmt.Fprintf(cmd.OutOrStdout(), "    depends on: %s\n", strings.Join(deps, ", "))
				}
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sitegrid %s\n", Version)
		},
	}
}
