package main

import (
	"github.com/spf13/cobra"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [path]",
		Short: "Serve the documentation of a Java project over MCP on stdio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repoArg(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts, repo)
			if err != nil {
				return err
			}
			eng, closeEngine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			defer closeEngine()

			// Queries work before the first generate_docs call when an
			// earlier run left its output behind.
			if err := eng.LoadPrevious(repo); err != nil {
				log.Infof("no previous output loaded: %v", err)
			}

			server.Version = version
			srv, err := server.New(eng, cfg)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}
