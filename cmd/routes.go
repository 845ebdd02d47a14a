package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-mvc/framework/mapping"
)

func newRoutesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table in lookup order",
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
			fmt.Fprintf(out, "strategy: %s\n", ctx.Mapping.Strategy())
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tHANDLER\tARGS")
			for _, h := range ctx.Mapping.Handlers() {
				fmt.Fprintf(tw, "%s\t%s.%s\t%s\n", h.Path, h.Bean, h.MethodName, describeArgs(h))
			}
			return tw.Flush()
		},
	}
}

func describeArgs(h *mapping.Handler) string {
	parts := make([]string, len(h.Bindings))
	for i, b := range h.Bindings {
		switch b.Kind {
		case mapping.NamedValue:
			parts[i] = b.Name + ":" + h.ParamTypes[i].String()
		case mapping.Unbound:
			parts[i] = "-"
		default:
			parts[i] = b.Kind.String()
		}
	}
	return strings.Join(parts, ", ")
}
