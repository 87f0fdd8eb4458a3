package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/netesy/limit/internal/compiler"
	"github.com/netesy/limit/internal/lexer"
	"github.com/netesy/limit/internal/vm"
)

// replPrompt and replContinue mirror the two-line prompt of most small
// interpreters: a fresh prompt for a new entry, a continuation prompt
// once a declaration has been typed and more is expected.
const (
	replPrompt   = "limit> "
	replContinue = "   ...> "
)

// runREPL is a line-oriented read-eval-print loop. Declarations (fn,
// class, interface, import, public/private, type, enum) accumulate in
// the session buffer across entries, so a function defined in one
// entry is callable from a later one. A bare expression is wrapped in
// a throwaway __repl function and run immediately, without joining the
// buffer.
func runREPL() int {
	fmt.Println("limit repl — declarations are buffered, expressions run immediately, Ctrl-D exits")
	scanner := bufio.NewScanner(os.Stdin)
	var session strings.Builder

	for {
		fmt.Print(replPrompt)
		if !scanner.Scan() {
			fmt.Println()
			return exitOK
		}
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isDecl(trimmed) {
			session.WriteString(line)
			session.WriteByte('\n')
			readContinuation(scanner, &session)
			continue
		}

		if code := replRun(session.String(), trimmed); code == exitDriverErr {
			return code
		}
	}
}

// isDecl reports whether line opens a top-level declaration, which the
// REPL buffers instead of evaluating immediately.
func isDecl(line string) bool {
	for _, kw := range []string{"fn ", "class ", "interface ", "import ", "public ", "private ", "type ", "enum "} {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

// readContinuation keeps reading lines into session until braces
// balance, so a multi-line fn/class body can be typed across entries.
func readContinuation(scanner *bufio.Scanner, session *strings.Builder) {
	depth := strings.Count(session.String(), "{") - strings.Count(session.String(), "}")
	for depth > 0 {
		fmt.Print(replContinue)
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		session.WriteString(line)
		session.WriteByte('\n')
		depth += strings.Count(line, "{") - strings.Count(line, "}")
	}
}

// replRun compiles buffered ∥ expr (wrapped as a throwaway __repl function) as one
// temporary module and, on a clean compile, runs it.
func replRun(buffered, expr string) int {
	src := buffered + "\nfn __repl(): void {\n" + expr + ";\n}\n"

	tmp, err := os.CreateTemp("", "limit-repl-*.lm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "limit: %v\n", err)
		return exitDriverErr
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()
	if _, err := tmp.WriteString(src); err != nil {
		fmt.Fprintf(os.Stderr, "limit: %v\n", err)
		return exitDriverErr
	}

	c := compiler.New(lexer.Legacy)
	result, err := c.CompileFile(tmp.Name())
	if err != nil {
		fmt.Fprintf(os.Stderr, "limit: %v\n", err)
		return exitDriverErr
	}
	reportAll(result.Diagnostics, c.Loader.Files)
	if !c.CanExecute() {
		return exitOK
	}

	m := vm.NewMachine(result.LIR)
	entry := replEntryName(result)
	if entry == "" {
		return exitOK
	}
	if _, err := m.RunFunction(entry, nil); err != nil {
		fmt.Fprintf(os.Stderr, "limit: runtime error: %v\n", err)
	}
	return exitOK
}

// replEntryName finds the synthetic entry compiled by replRun.
func replEntryName(result *compiler.Result) string {
	if result.LIR == nil {
		return ""
	}
	for name := range result.LIR.Functions {
		if strings.HasSuffix(name, ".__repl") {
			return name
		}
	}
	return ""
}
