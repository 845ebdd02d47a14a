package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBeansCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "beans",
		Short: "Print registry bindings and unresolved injections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := opts.newApplication()
			if err != nil {
				return err
			}
			ctx, err := application.Bootstrap()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tBEAN\tKIND")
			for _, key := range ctx.Container.Bindings() {
				e, _ := ctx.Container.Get(key)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", key, e.Name, e.Definition.Stereotype)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			unresolved := ctx.Unresolved()
			if len(unresolved) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\nunresolved:")
			for _, t := range unresolved {
				fmt.Fprintf(out, "  %s.%s → %s (nil)\n", t.Bean, t.Field, t.Key)
			}
			return nil
		},
	}
}
