package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/annox/format"
	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/annotation"
)

func newTypesCmd(opts *options) *cobra.Command {
	var outputFormat string
	var all bool

	cmd := &cobra.Command{
		Use:   "types [name...]",
		Short: "Show annotation types and enums with their elements and defaults",
		Long: `Types describes the named types. Without names it lists the annotation
types and enums declared in the sources and the platform builtins; with
--all it adds every annotation type on the classpath.`,
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
			if err := cb.ScanAll(cmd.Context()); err != nil {
				return err
			}

			provider := java.Chain{cb.Provider(), java.Builtins()}
			var infos []*java.TypeInfo
			if len(args) > 0 {
				for _, name := range args {
					info, ok := provider.Lookup(name)
					if !ok {
						return fmt.Errorf("unknown type %s", name)
					}
					infos = append(infos, info)
				}
			} else {
				infos = append(infos, describable(cb.Types())...)
				if all {
					for _, name := range classpath.Names() {
						if info, ok := classpath.Lookup(name); ok && info.IsAnnotation() {
							infos = append(infos, info)
						}
					}
				}
				infos = append(infos, describable(java.Builtins().Types())...)
			}

			b := annotation.NewBuilder(cb.Provider(), annotation.WithMaxDepth(cfg.MaxDepth))
			types := make([]format.TypeDescription, len(infos))
			for i, info := range infos {
				types[i] = format.TypeDescription{Info: info}
				if info.IsAnnotation() {
					types[i].Defaults = b.Defaults(info)
				}
			}
			return format.EncodeTypes(cmd.OutOrStdout(), outputFormat, types)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().BoolVar(&all, "all", false, "include every annotation type on the classpath")

	return cmd
}

func describable(infos []*java.TypeInfo) []*java.TypeInfo {
	var result []*java.TypeInfo
	for _, info := range infos {
		if info.IsAnnotation() || info.IsEnum() {
			result = append(result, info)
		}
	}
	return result
}
