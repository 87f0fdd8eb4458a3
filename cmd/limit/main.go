// Command limit is the reference driver for the Limit compiler/runtime.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/netesy/limit/internal/compiler"
	"github.com/netesy/limit/internal/lexer"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/vm"
)

// Exit codes for the driver.
const (
	exitOK         = 0
	exitCompileErr = 1
	exitRuntimeErr = 2
	exitDriverErr  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: limit [-ast|-cst|-tokens|-bytecode|-debug|-strict] <file> | limit -repl")
		return exitDriverErr
	}

	debug := false
	strict := false
	var mode string
	var file string
	for _, a := range args {
		switch a {
		case "-ast", "-cst", "-tokens", "-bytecode", "-repl":
			mode = a
		case "-debug":
			debug = true
		case "-strict":
			strict = true
		default:
			file = a
		}
	}

	if mode == "-repl" {
		return runREPL()
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "limit: no input file")
		return exitDriverErr
	}

	switch mode {
	case "-ast":
		return dumpAST(file)
	case "-cst":
		return dumpCST(file)
	case "-tokens":
		return dumpTokens(file)
	case "-bytecode":
		return dumpBytecode(file)
	default:
		return execute(file, debug, strict)
	}
}

// reportAll renders every diagnostic to stderr against fset, so a
// snippet/caret can be shown alongside the message.
func reportAll(diags []source.Diagnostic, fset *source.FileSet) {
	r := source.NewRenderer(os.Stderr)
	r.RenderAll(diags, fset)
}

// execute compiles file and, if compilation succeeded, runs it. Under
// -strict, advisory diagnostics (e.g. linear-not-consumed) abort the
// compile the same as a hard error.
func execute(file string, debug, strict bool) int {
	c := compiler.New(lexer.Legacy)
	c.Sink.Strict = strict
	result, err := c.CompileFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "limit: %v\n", err)
		return exitDriverErr
	}
	reportAll(result.Diagnostics, c.Loader.Files)
	if !c.CanExecute() {
		return exitCompileErr
	}

	m := vm.NewMachine(result.LIR)
	m.Debug = debug
	entry := entryFunctionName(result)
	if entry == "" {
		fmt.Fprintln(os.Stderr, `limit: no entry function found (expected a top-level "main" function)`)
		return exitDriverErr
	}
	if _, err := m.RunFunction(entry, nil); err != nil {
		fmt.Fprintf(os.Stderr, "limit: runtime error: %v\n", err)
		return exitRuntimeErr
	}
	return exitOK
}

// entryFunctionName finds the program's "main" function by qualified
// name suffix — the entry file's module is always whichever module
// CompileFile's path argument belongs to.
func entryFunctionName(result *compiler.Result) string {
	if result.LIR == nil {
		return ""
	}
	for name := range result.LIR.Functions {
		if strings.HasSuffix(name, ".main") {
			return name
		}
	}
	return ""
}
