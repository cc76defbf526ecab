package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/annox/format"
	"github.com/dhamidi/annox/java/annotation"
)

func newParseCmd(opts *options) *cobra.Command {
	var outputFormat string
	var withSources bool

	cmd := &cobra.Command{
		Use:   "parse <annotation>...",
		Short: "Evaluate annotations written as text",
		Long: `Parse evaluates each argument as a single annotation, such as
'@javax.xml.bind.annotation.XmlElement(name = "x")', against the classpath.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, ".")
			if err != nil {
				return err
			}
			cb, classpath, err := open(cfg)
			if err != nil {
				return err
			}
			defer classpath.Close()
			if withSources {
				if err := cb.ScanAll(cmd.Context()); err != nil {
					return err
				}
			}

			var instances []*annotation.Instance
			for _, text := range args {
				inst, err := annotation.Parse(text, cb.Provider(), annotation.WithMaxDepth(cfg.MaxDepth))
				if err != nil {
					return err
				}
				instances = append(instances, inst)
			}

			out := cmd.OutOrStdout()
			if outputFormat == "java" {
				for _, inst := range instances {
					fmt.Fprintln(out, inst)
				}
				return nil
			}
			enc, err := format.New(outputFormat, out)
			if err != nil {
				return err
			}
			return enc.Encode([]format.Result{{Instances: instances}})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "java", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().BoolVar(&withSources, "sources", false, "also resolve types declared in the configured sources")

	return cmd
}
