// Package cmd is the go-mvc command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/app"
	"github.com/km-arc/go-mvc/framework/config"
	"github.com/km-arc/go-mvc/framework/log"
)

type rootOptions struct {
	envFiles       []string
	configLocation string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "go-mvc",
		Short:         "Front-controller web application",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	root.PersistentFlags().StringVarP(&opts.configLocation, "config", "c", "", "properties file (overrides CONTEXT_CONFIG_LOCATION)")

	root.AddCommand(
		newServeCmd(opts),
		newRoutesCmd(opts),
		newBeansCmd(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newApplication loads configuration and builds the application with a
// logger matching it.
func (o *rootOptions) newApplication() (*app.Application, *zap.Logger, error) {
	cfg := config.Load(o.envFiles...)
	if o.configLocation != "" {
		cfg.Context.ConfigLocation = o.configLocation
	}
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return app.New(cfg, app.WithLogger(logger)), logger, nil
}
