package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/annox/format"
	"github.com/dhamidi/annox/java/annotation"
	"github.com/dhamidi/annox/java/codebase"
)

func newScanCmd(opts *options) *cobra.Command {
	var outputFormat string
	var check bool
	var watch bool
	var interval time.Duration
	var only []string

	cmd := &cobra.Command{
		Use:   "scan [path...]",
		Short: "Print the annotations of every declaration in the sources",
		Long: `Scan parses the configured sources, or the given files and directories,
and prints each declaration with its evaluated annotations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd, ".")
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if cfg.Sources, err = absPaths(args); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("format") {
				outputFormat = cfg.Format
			}

			cb, classpath, err := open(cfg)
			if err != nil {
				return err
			}
			defer classpath.Close()

			s := &scan{
				codebase: cb,
				format:   outputFormat,
				only:     only,
				out:      cmd.OutOrStdout(),
				errOut:   cmd.ErrOrStderr(),
			}
			if watch {
				return s.watch(cmd.Context(), interval)
			}
			if err := cb.ScanAll(cmd.Context()); err != nil {
				return err
			}
			problems, err := s.emit(cmd.Context())
			if err != nil {
				return err
			}
			if check && problems > 0 {
				return fmt.Errorf("%d unresolved annotation values", problems)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().BoolVar(&check, "check", false, "list unresolved values on stderr and fail when there are any")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rescan and print again whenever a source file changes")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "how often --watch looks for changes")
	cmd.Flags().StringSliceVar(&only, "only", nil, "only show annotations of these types (canonical or simple names)")

	return cmd
}

type scan struct {
	codebase *codebase.Codebase
	format   string
	only     []string
	out      io.Writer
	errOut   io.Writer

	mu sync.Mutex
}

// emit prints the current results and lists their problems on the error
// output. It returns the number of problems.
func (s *scan) emit(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.codebase.Results(ctx)
	if err != nil {
		return 0, err
	}
	results = filterResults(results, s.only)

	enc, err := format.New(s.format, s.out)
	if err != nil {
		return 0, err
	}
	if err := enc.Encode(results); err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}

	problems := codebase.Problems(results)
	for _, p := range problems {
		fmt.Fprintln(s.errOut, p)
	}
	return len(problems), nil
}

func (s *scan) watch(ctx context.Context, interval time.Duration) error {
	w := codebase.NewFileWatcher(s.codebase, interval, func(changed []string) {
		for _, path := range changed {
			fmt.Fprintln(s.errOut, "changed:", path)
		}
		if _, err := s.emit(ctx); err != nil {
			fmt.Fprintln(s.errOut, err)
		}
	})
	w.Start()
	defer w.Stop()

	if _, err := s.emit(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// filterResults keeps the instances whose type is one of names. An
// empty names keeps everything.
func filterResults(results []format.Result, names []string) []format.Result {
	if len(names) == 0 {
		return results
	}
	var filtered []format.Result
	for _, r := range results {
		var kept []*annotation.Instance
		for _, inst := range r.Instances {
			if matchesType(inst.Type, names) {
				kept = append(kept, inst)
			}
		}
		if len(kept) > 0 {
			filtered = append(filtered, format.Result{Declaration: r.Declaration, Instances: kept})
		}
	}
	return filtered
}

func matchesType(ref annotation.TypeRef, names []string) bool {
	simple := ref.Name[strings.LastIndexByte(ref.Name, '.')+1:]
	for _, name := range names {
		if name == ref.Name || name == simple {
			return true
		}
	}
	return false
}
