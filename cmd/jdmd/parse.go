package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/model"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/parser"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/renderers/markdown"
)

func newParseCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <file.java>",
		Short: "Parse one Java file and print its documentation model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := parser.ParseFile(args[0], opts.lint)
			if err != nil {
				return err
			}
			doc := model.NewDocument(filepath.ToSlash(args[0]), res.Object, res.Diagnostics)

			var out []byte
			switch format {
			case "json":
				out, err = json.MarshalIndent(doc, "", "  ")
				out = append(out, '\n')
			case "yaml":
				out, err = yaml.Marshal(doc)
			case "markdown", "md":
				out = []byte(markdown.RenderType(doc, res.Lint))
			default:
				return fmt.Errorf("unknown format %q: use json, yaml or markdown", format)
			}
			if err != nil {
				return fmt.Errorf("encoding %s: %w", args[0], err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or markdown")
	return cmd
}
