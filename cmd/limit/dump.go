package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/davecgh/go-spew/spew"

	"github.com/netesy/limit/internal/compiler"
	"github.com/netesy/limit/internal/cst"
	"github.com/netesy/limit/internal/lexer"
	"github.com/netesy/limit/internal/lir"
	"github.com/netesy/limit/internal/parser"
	"github.com/netesy/limit/internal/source"
	"github.com/netesy/limit/internal/trivia"
)

// ruleNames gives cst.RuleKind a readable label; RuleKind has no
// String method of its own, so -cst falls back to this table and the
// bare int for anything added after it.
var ruleNames = map[cst.RuleKind]string{
	cst.RuleProgram:           "Program",
	cst.RuleVarDecl:           "VarDecl",
	cst.RuleFnDecl:            "FnDecl",
	cst.RuleClassDecl:         "ClassDecl",
	cst.RuleTypeAlias:         "TypeAlias",
	cst.RuleEnumDecl:          "EnumDecl",
	cst.RuleImport:            "Import",
	cst.RuleBlock:             "Block",
	cst.RuleIf:                "If",
	cst.RuleWhile:             "While",
	cst.RuleFor:               "For",
	cst.RuleIter:              "Iter",
	cst.RuleMatch:             "Match",
	cst.RuleMatchArm:          "MatchArm",
	cst.RuleReturn:            "Return",
	cst.RuleBreak:             "Break",
	cst.RuleContinue:          "Continue",
	cst.RuleLoop:              "Loop",
	cst.RuleParallel:          "Parallel",
	cst.RuleExprStmt:          "ExprStmt",
	cst.RuleType:              "Type",
	cst.RuleBinaryExpr:        "BinaryExpr",
	cst.RuleUnaryExpr:         "UnaryExpr",
	cst.RuleCallExpr:          "CallExpr",
	cst.RuleIndexExpr:         "IndexExpr",
	cst.RuleMemberExpr:        "MemberExpr",
	cst.RulePropagateExpr:     "PropagateExpr",
	cst.RuleRecoverExpr:       "RecoverExpr",
	cst.RuleStringInterp:      "StringInterp",
	cst.RuleListLit:           "ListLit",
	cst.RuleDictLit:           "DictLit",
	cst.RuleRangeExpr:         "RangeExpr",
	cst.RulePrimary:           "Primary",
	cst.RuleErrorNode:         "ErrorNode",
	cst.RuleParam:             "Param",
	cst.RuleArgList:           "ArgList",
	cst.RuleStructLit:         "StructLit",
	cst.RuleAssign:            "Assign",
	cst.RuleTaskExpr:          "TaskExpr",
	cst.RuleAwaitExpr:         "AwaitExpr",
	cst.RuleInterfaceDecl:     "InterfaceDecl",
	cst.RuleConcurrencyBlock:  "ConcurrencyBlock",
	cst.RuleGenericType:       "GenericType",
	cst.RuleUnionType:         "UnionType",
	cst.RuleOptionalErrorType: "OptionalErrorType",
	cst.RuleListType:          "ListType",
	cst.RuleDictType:          "DictType",
	cst.RuleFuncType:          "FuncType",
	cst.RuleNameType:          "NameType",
	cst.RuleTupleType:         "TupleType",
	cst.RuleRangeType:         "RangeType",
	cst.RuleOkExpr:            "OkExpr",
	cst.RuleErrExpr:           "ErrExpr",
	cst.RuleSelfExpr:          "SelfExpr",
	cst.RuleSuperExpr:         "SuperExpr",
	cst.RuleWildcardPattern:   "WildcardPattern",
	cst.RuleBindPattern:       "BindPattern",
	cst.RuleLiteralPattern:    "LiteralPattern",
	cst.RuleVariantPattern:    "VariantPattern",
	cst.RuleTuplePattern:      "TuplePattern",
	cst.RuleStructPattern:     "StructPattern",
}

func ruleName(r cst.RuleKind) string {
	if n, ok := ruleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Rule(%d)", int(r))
}

// readSource loads file and reports an os-level failure the same way
// every other dump command does.
func readSource(file string) (string, bool) {
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "limit: %v\n", err)
		return "", false
	}
	return string(data), true
}

func dumpTokens(file string) int {
	src, ok := readSource(file)
	if !ok {
		return exitDriverErr
	}
	sink := &source.Sink{Catalog: source.DefaultCatalog()}
	toks := lexer.New(file, src, lexer.CST, trivia.NewPool(), sink).ScanAll()
	for _, t := range toks {
		fmt.Printf("%-14s %-20q line:%-4d col:%-4d leading:%d trailing:%d\n",
			t.Kind, t.Text(), t.Line, t.Column, len(t.Leading), len(t.Trailing))
	}
	reportAll(sink.Diagnostics(), fsetFor(file, src))
	return exitOK
}

func dumpCST(file string) int {
	src, ok := readSource(file)
	if !ok {
		return exitDriverErr
	}
	sink := &source.Sink{Catalog: source.DefaultCatalog()}
	f := parser.ParseFile(file, src, lexer.CST, trivia.NewPool(), sink)
	printCST(f.CSTNode(), 0)
	reportAll(sink.Diagnostics(), fsetFor(file, src))
	return exitOK
}

func printCST(n cst.Node, depth int) {
	if n == nil {
		return
	}
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	switch t := n.(type) {
	case *cst.Leaf:
		fmt.Printf("%s%s %q\n", indent, t.Tok.Kind, t.Tok.Text())
	case *cst.Nonterminal:
		marker := ""
		if t.Error {
			marker = " (error)"
		}
		fmt.Printf("%s%s%s\n", indent, ruleName(t.Rule), marker)
		for _, c := range t.Children {
			printCST(c, depth+1)
		}
	}
}

func dumpAST(file string) int {
	src, ok := readSource(file)
	if !ok {
		return exitDriverErr
	}
	sink := &source.Sink{Catalog: source.DefaultCatalog()}
	f := parser.ParseFile(file, src, lexer.Legacy, nil, sink)
	spew.Dump(f)
	reportAll(sink.Diagnostics(), fsetFor(file, src))
	return exitOK
}

func dumpBytecode(file string) int {
	c := compiler.New(lexer.Legacy)
	result, err := c.CompileFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "limit: %v\n", err)
		return exitDriverErr
	}
	reportAll(result.Diagnostics, c.Loader.Files)
	if result.LIR == nil {
		return exitCompileErr
	}

	names := make([]string, 0, len(result.LIR.Functions))
	for name := range result.LIR.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Print(lir.Disassemble(result.LIR.Functions[name]))
	}
	if !c.CanExecute() {
		return exitCompileErr
	}
	return exitOK
}

// fsetFor builds a single-file FileSet for commands that parse outside
// of compiler.Compilation (which otherwise owns one via its Loader).
func fsetFor(file, src string) *source.FileSet {
	fset := source.NewFileSet()
	fset.Add(file, []byte(src))
	return fset
}
