package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/strager/vcalc"
	"github.com/strager/vcalc/sexy"
	"github.com/strager/vcalc/vm"
)

const (
	historyFile = ".vcalc_history"
	promptMain  = "vcalc> "
	promptCont  = "  ...> "
)

var statementHeads = map[string]bool{
	"block":  true,
	"if":     true,
	"loop":   true,
	"decl":   true,
	"assign": true,
	"print":  true,
}

// session holds the statements entered so far. Every input recompiles and
// reruns the whole program; only output past what was already shown is
// written.
type session struct {
	cfg      vcalc.Config
	maxSteps int
	stmts    []string
	printed  int
}

func (s *session) source(extra string) string {
	var b strings.Builder
	b.WriteString("(block")
	for _, stmt := range s.stmts {
		b.WriteString("\n")
		b.WriteString(stmt)
	}
	if extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
	}
	b.WriteString(")")
	return b.String()
}

// eval runs one statement, or prints one expression, against the
// statements entered so far. Statements are kept only if they compile and
// run.
func (s *session) eval(input string, out io.Writer) error {
	tree, err := sexy.Parse(input)
	if err != nil {
		return err
	}
	stmt := input
	keep := statementHeads[tree.Head()]
	if !keep {
		stmt = "(print " + input + ")"
	}

	prog, err := vcalc.CompileSource(s.source(stmt), s.cfg)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	err = vm.Run(prog, vm.Options{Out: &buf, MaxSteps: s.maxSteps, Logger: s.cfg.Logger})
	if buf.Len() > s.printed {
		out.Write(buf.Bytes()[s.printed:])
	}
	if err != nil {
		return err
	}
	if keep {
		s.stmts = append(s.stmts, stmt)
		s.printed = buf.Len()
	}
	return nil
}

// listing returns the instruction listing of the statements entered so far.
func (s *session) listing() (string, error) {
	prog, err := vcalc.CompileSource(s.source(""), s.cfg)
	if err != nil {
		return "", err
	}
	return prog.String(), nil
}

func (s *session) reset() {
	s.stmts = nil
	s.printed = 0
}

// command handles a ':' command and reports whether the REPL should exit.
func (s *session) command(cmd string, out io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.reset()
		fmt.Fprintln(out, "cleared")
	case ":ir":
		listing, err := s.listing()
		if err != nil {
			fmt.Fprintln(out, err)
			break
		}
		fmt.Fprint(out, listing)
	default:
		fmt.Fprintln(out, "unknown command. Commands: :ir :reset :quit")
	}
	return false
}

// incomplete reports whether a parse error means more lines are needed.
func incomplete(err error) bool {
	msg := err.Error()
	return strings.HasSuffix(msg, "got EOF") || strings.HasSuffix(msg, "token: EOF")
}

func replCommand(args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("repl", "repl [-v] [-config file]", "Enter statements interactively", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, vcfg, err := common.load(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	s := &session{cfg: vcfg, maxSteps: cfg.Run.MaxSteps}

	fmt.Fprintln(stdout, "VCalc REPL. Enter statements or expressions; :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		input, ok := readByParseProbe(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if s.command(trimmed, stdout) {
				return 0
			}
			continue
		}
		if err := s.eval(trimmed, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(trimmed, "\n", " "))
	}
}

// readByParseProbe reads lines until they form a complete datum, a
// command, or a parse error that more input cannot fix.
func readByParseProbe(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C abandons the current input.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := sexy.Parse(src); perr != nil && incomplete(perr) && strings.TrimSpace(src) != "" {
			continue
		}
		return src, true
	}
}
