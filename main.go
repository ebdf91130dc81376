// This is the main-driver for our compiler.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/skx/subc/compiler"
)

func main() {
	os.Exit(run())
}

// run contains the actual driver logic, returning the process exit
// code. Keeping main() a thin wrapper lets every other error path use
// an ordinary return instead of os.Exit, so the only place the process
// ever terminates is here.
func run() int {
	//
	// Look for flags.
	//
	debug := flag.Bool("debug", false, "Insert debug \"stuff\" in our generated output.")
	output := flag.String("o", "", "Write the generated assembly here, instead of stdout.")
	flag.Parse()

	//
	// Ensure we have exactly one positional argument: a path, or "-"
	// for stdin.
	//
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "%s: invalid number of arguments\n", os.Args[0])
		return 1
	}

	src, name, err := readInput(flag.Args()[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", os.Args[0], err)
		return 1
	}

	//
	// Create a compiler-object, with the program as input.
	//
	comp := compiler.New(name, src)

	//
	// Are we inserting debugging "stuff" ?
	//
	if *debug {
		comp.SetDebug(true)
	}

	//
	// Compile.
	//
	out, err := comp.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	//
	// Write the assembly to stdout, or the requested file.
	//
	if *output == "" {
		fmt.Print(out)
		return 0
	}

	if err := os.WriteFile(*output, []byte(out), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", os.Args[0], err)
		return 1
	}
	return 0
}

// readInput loads the program text from path, or from stdin when path
// is "-". It returns the text alongside the name to use for that
// source in diagnostics.
func readInput(path string) (string, string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(b), "<stdin>", nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(b), path, nil
}
