package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/annox/config"
	"github.com/dhamidi/annox/java"
	"github.com/dhamidi/annox/java/annotation"
	"github.com/dhamidi/annox/java/codebase"
)

// options holds the flags shared by every command. Flags that were set
// override the configuration file.
type options struct {
	configPath string
	verbosity  int
	classpath  []string
	release    string
	workers    int
	maxDepth   int
	logFile    string
}

func (o *options) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "path to "+config.FileName+" (default: the nearest one above the working directory)")
	flags.CountVarP(&o.verbosity, "verbose", "v", "log more; repeat for more detail")
	flags.StringSliceVar(&o.classpath, "classpath", nil, "directories, jars or glob patterns added to the configured classpath")
	flags.StringVar(&o.release, "release", "", "Java release used to select multi-release jar entries")
	flags.IntVar(&o.workers, "workers", 0, "files processed at once (default: one per CPU)")
	flags.IntVar(&o.maxDepth, "max-depth", annotation.DefaultMaxDepth, "maximum nesting inside one annotation")
	flags.StringVar(&o.logFile, "log-file", "", "write logs to this file instead of stderr")
}

// load reads the configuration that applies to dir, applies the flags
// set on cmd and configures logging.
func (o *options) load(cmd *cobra.Command, dir string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.Detect(dir)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("classpath") {
		entries, err := absPaths(o.classpath)
		if err != nil {
			return nil, err
		}
		cfg.Classpath = append(cfg.Classpath, entries...)
	}
	if flags.Changed("release") {
		cfg.Release = o.release
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = o.maxDepth
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	cfg.Verbosity += o.verbosity
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var logFile *string
	if cfg.LogFile != "" {
		logFile = &cfg.LogFile
	}
	commonlog.Configure(cfg.Verbosity, logFile)
	return cfg, nil
}

// open creates the classpath and the codebase described by cfg. The
// caller closes the classpath.
func open(cfg *config.Config) (*codebase.Codebase, *java.Classpath, error) {
	release, err := cfg.ReleaseVersion()
	if err != nil {
		return nil, nil, err
	}
	classpath := java.NewClasspath(cfg.ClasspathEntries(), java.WithRelease(release))
	cb := codebase.New(cfg.SourcePaths(),
		codebase.WithClasspath(classpath),
		codebase.WithWorkers(cfg.Workers),
		codebase.WithAnnotationOptions(annotation.WithMaxDepth(cfg.MaxDepth)),
	)
	return cb, classpath, nil
}

func absPaths(paths []string) ([]string, error) {
	result := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		result[i] = abs
	}
	return result, nil
}
