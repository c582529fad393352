package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/gobwas/glob"

	"github.com/strager/vcalc"
	"github.com/strager/vcalc/internal/config"
	"github.com/strager/vcalc/internal/watcher"
	"github.com/strager/vcalc/ir"
	"github.com/strager/vcalc/vm"
)

type commonFlags struct {
	verbose *bool
	config  *string
}

func newFlagSet(name, synopsis, description string, stderr io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := &commonFlags{
		verbose: fs.Bool("v", false, "Trace every node the compiler visits"),
		config:  fs.String("config", config.DefaultFile, "Configuration file"),
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: vcalc %s\n", synopsis)
		fmt.Fprintf(stderr, "%s\n\n", description)
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs, common
}

// load reads the configuration file and derives the compiler settings.
func (c *commonFlags) load(stderr io.Writer) (*config.Config, vcalc.Config, error) {
	cfg, err := config.LoadOptional(*c.config)
	if err != nil {
		return nil, vcalc.Config{}, fmt.Errorf("loading %s: %w", *c.config, err)
	}
	level := slog.LevelInfo
	trace := *c.verbose || cfg.Trace
	if trace {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return cfg, vcalc.Config{Logger: logger, Trace: trace}, nil
}

func compileFile(filename string, cfg vcalc.Config) (*ir.Program, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return vcalc.CompileSource(string(source), cfg)
}

func execute(prog *ir.Program, cfg *config.Config, vcfg vcalc.Config, stdout io.Writer) error {
	return vm.Run(prog, vm.Options{Out: stdout, MaxSteps: cfg.Run.MaxSteps, Logger: vcfg.Logger})
}

func runCommand(args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("run", "run [-v] [-config file] <file>", "Compile and execute a tree file", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		return 1
	}
	cfg, vcfg, err := common.load(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	prog, err := compileFile(fs.Arg(0), vcfg)
	if err != nil {
		fmt.Fprintf(stderr, "Compilation failed: %v\n", err)
		return 1
	}
	if err := execute(prog, cfg, vcfg, stdout); err != nil {
		fmt.Fprintf(stderr, "Execution failed: %v\n", err)
		return 1
	}
	return 0
}

func buildCommand(args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("build", "build [-o output] [-v] [-config file] <file>", "Compile a tree file and write its instruction listing", stderr)
	output := fs.String("o", "", "Output file path (default: <file>.ir)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		return 1
	}
	cfg, vcfg, err := common.load(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	filename := fs.Arg(0)
	outputFile := *output
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".ir"
		if cfg.Build.OutputDir != "" {
			outputFile = filepath.Join(cfg.Build.OutputDir, filepath.Base(outputFile))
		}
	}

	prog, err := compileFile(filename, vcfg)
	if err != nil {
		fmt.Fprintf(stderr, "Compilation failed: %v\n", err)
		return 1
	}
	listing := prog.String()
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(stderr, "Error creating %s: %v\n", dir, err)
			return 1
		}
	}
	if err := os.WriteFile(outputFile, []byte(listing), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error writing %s: %v\n", outputFile, err)
		return 1
	}
	fmt.Fprintf(stdout, "Generated %s (%d blocks)\n", outputFile, len(prog.Blocks))
	return 0
}

func evalCommand(args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("eval", "eval [-v] [-config file] <tree>", "Compile and execute an inline tree", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: expected exactly one tree argument\n")
		fs.Usage()
		return 1
	}
	cfg, vcfg, err := common.load(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	prog, err := vcalc.CompileSource(fs.Arg(0), vcfg)
	if err != nil {
		fmt.Fprintf(stderr, "Compilation failed: %v\n", err)
		return 1
	}
	if err := execute(prog, cfg, vcfg, stdout); err != nil {
		fmt.Fprintf(stderr, "Execution failed: %v\n", err)
		return 1
	}
	return 0
}

func checkCommand(args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("check", "check [-v] [-config file] [files or patterns]", "Type check tree files", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, vcfg, err := common.load(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = cfg.Check.Patterns
	}
	files, err := expandPatterns(".", patterns)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintf(stderr, "Error: no files match %s\n", strings.Join(patterns, " "))
		return 1
	}

	status := 0
	for _, file := range files {
		if !checkFile(file, vcfg, stdout) {
			status = 1
		}
	}
	return status
}

// checkFile type checks one file and reports the outcome on w.
func checkFile(filename string, cfg vcalc.Config, w io.Writer) bool {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", filename, err)
		return false
	}
	root, err := vcalc.ParseTree(string(source))
	if err == nil {
		_, err = vcalc.Typecheck(root, cfg)
	}
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", filename, err)
		return false
	}
	fmt.Fprintf(w, "%s: no errors found\n", filename)
	return true
}

// expandPatterns returns existing files named in patterns plus every file
// under root whose slash-separated path matches a glob pattern.
func expandPatterns(root string, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var globs []glob.Glob
	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && !info.IsDir() {
			seen[filepath.Clean(pattern)] = true
			continue
		}
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	if len(globs) > 0 {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			for _, g := range globs {
				if g.Match(filepath.ToSlash(rel)) {
					seen[path] = true
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(seen))
	for file := range seen {
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

func watchCommand(args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("watch", "watch [-v] [-config file] [paths]", "Re-check tree files whenever they change", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, vcfg, err := common.load(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	w, err := watcher.New(cfg.Watch.Debounce, cfg.Watch.Patterns, vcfg.Logger, func(changed []string) {
		for _, path := range changed {
			checkFile(path, vcfg, stdout)
		}
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Close()
	if err := w.Watch(paths); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Watching %s for %s\n", strings.Join(paths, " "), strings.Join(cfg.Watch.Patterns, " "))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	<-sigc
	return 0
}
