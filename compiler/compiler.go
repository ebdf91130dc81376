// Package compiler wires the tokenizer, parser and code generator
// together into the single entry point main.go calls.
//
// In brief we go through a three-step process:
//
//  1.  Use the lexer to tokenize the source text.
//
//  2.  Parse the tokens into a typed AST, resolving scope and types
//      along the way.
//
//  3.  Walk the AST, generating assembly for each function.
package compiler

import (
	"github.com/skx/subc/codegen"
	"github.com/skx/subc/lexer"
	"github.com/skx/subc/parser"
	"github.com/skx/subc/source"
)

// Compiler holds our object-state.
type Compiler struct {
	// debug holds a flag to decide if debugging "stuff" is generated
	// in the output assembly.
	debug bool

	// src holds the program we're compiling, tagged with a name used
	// only for diagnostics (e.g. "a.c" or "<stdin>").
	src *source.Source
}

// New creates a new compiler for the given named source text.
func New(name, text string) *Compiler {
	return &Compiler{src: source.New(name, text)}
}

// SetDebug changes the debug-flag for our output.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// Compile converts the input program into a collection of AMD64
// assembly language.
func (c *Compiler) Compile() (string, error) {
	toks, err := lexer.Tokenize(c.src)
	if err != nil {
		return "", err
	}

	prog, err := parser.Parse(toks, c.src)
	if err != nil {
		return "", err
	}

	return codegen.Generate(prog, c.debug)
}
