// Command racecheck is the CLI driver for the race analyzer: it lexes,
// parses, and analyzes one or more source files and reports potential
// data races, in the spirit of funvibe/funxy's own cmd/funxy driver
// (hand-parsed flags, exit-code-driven diagnostics reporting).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/funxy-race/internal/conflicts"
	"github.com/funvibe/funxy-race/internal/config"
	"github.com/funvibe/funxy-race/internal/format"
	"github.com/funvibe/funxy-race/internal/pipeline"
	"github.com/funvibe/funxy-race/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type options struct {
	paths      []string
	configPath string
	verbose    bool
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v":
			fmt.Println(config.Version)
			os.Exit(0)
		case "--config":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("--config requires a path argument")
			}
			opts.configPath = args[i]
		case "--verbose":
			opts.verbose = true
		default:
			opts.paths = append(opts.paths, args[i])
		}
	}
	if len(opts.paths) == 0 {
		return nil, fmt.Errorf("usage: racecheck [--config path] [--verbose] <file-or-dir>...")
	}
	return opts, nil
}

func run(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	runID := uuid.New()
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "racecheck run %s\n", runID)
	}

	var cfg *config.RaceConfig
	if opts.configPath != "" {
		cfg, err = config.LoadRaceConfig(opts.configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	} else {
		cfg = config.DefaultRaceConfig()
	}

	files, err := expandPaths(opts.paths)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	results := make([][]conflicts.RaceWarning, len(files))
	errs := make([]error, len(files))

	g, _ := errgroup.WithContext(context.Background())
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			warnings, analyzeErr := analyzeFile(f)
			results[i] = warnings
			errs[i] = analyzeErr
			return nil
		})
	}
	_ = g.Wait()

	for i, f := range files {
		if errs[i] != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", f, errs[i])
			return 1
		}
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "%s: analyzed, run %s\n", f, runID)
		}
	}

	var all []conflicts.RaceWarning
	for i, f := range files {
		for _, w := range results[i] {
			if cfg.Suppresses(utils.ExtractModuleName(f), w.Var, w.LineA) {
				continue
			}
			all = append(all, w)
		}
	}
	conflicts.SortWarnings(all)

	color := format.IsTerminal(os.Stdout)
	if len(all) == 0 {
		fmt.Print(format.FormatSummary(all, color))
		return 0
	}

	fmt.Print(format.FormatSummary(all, color))
	return 2
}

func analyzeFile(path string) ([]conflicts.RaceWarning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ctx := pipeline.Standard().Run(&pipeline.Context{Path: path, Source: string(data)})
	if ctx.Err != nil {
		return nil, ctx.Err
	}
	return ctx.Warnings, nil
}

func expandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if config.HasSourceExt(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}
