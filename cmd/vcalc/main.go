package main

import (
	"fmt"
	"io"
	"os"
)

func showUsage(w io.Writer) {
	fmt.Fprintf(w, `VCalc - type check and run vector calculator programs

Programs are parse trees written as s-expressions, for example:

    (block
      (decl v vector (range 1 5))
      (print (filter v (ident "i") (binary ">" i 2))))

Usage:
    vcalc <command> [arguments]

Commands:
    run <file>        Compile and execute a tree file
    build <file>      Compile a tree file and write its instruction listing
    eval <tree>       Compile and execute an inline tree
    check [files]     Type check tree files (glob patterns allowed)
    watch [paths]     Re-check tree files whenever they change
    repl              Enter statements interactively
    help              Show this help message

Examples:
    vcalc run examples/squares.vct
    vcalc build -o squares.ir examples/squares.vct
    vcalc eval '(block (print (range 1 3)))'
    vcalc check 'examples/**.vct'

Every command reads vcalc.toml from the working directory if present;
use -config to name another file. Use "vcalc <command> -h" for more
information about a command.
`)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		showUsage(stderr)
		return 1
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "run":
		return runCommand(args, stdout, stderr)
	case "build":
		return buildCommand(args, stdout, stderr)
	case "eval":
		return evalCommand(args, stdout, stderr)
	case "check":
		return checkCommand(args, stdout, stderr)
	case "watch":
		return watchCommand(args, stdout, stderr)
	case "repl":
		return replCommand(args, stdout, stderr)
	case "help", "-h", "--help":
		showUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		showUsage(stderr)
		return 1
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
