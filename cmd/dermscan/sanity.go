package main

import (
	"github.com/spf13/cobra"

	"dermscan/internal/inference"
)

func newSanityCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sanity",
		Short: "Report which runtimes are available and the candidates initialize would try",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, o)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			svc := inference.NewWithConfig(serviceConfig(cfg, log, nil))
			return printJSON(cmd.OutOrStdout(), svc.SanityCheck())
		},
	}
}
