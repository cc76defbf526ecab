package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/annox/java/codebase"
)

func newLSPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(version, func(rootDir string) (*codebase.Codebase, error) {
				cfg, err := opts.load(cmd, rootDir)
				if err != nil {
					return nil, err
				}
				cb, _, err := open(cfg)
				return cb, err
			})
			return server.RunStdio()
		},
	}
}
