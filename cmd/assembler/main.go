// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/triad/cpu"
)

func main() {
	var output string
	var text bool
	var verbose bool

	flag.StringVar(&output, "o", "", "Object file to write (default: input with .o)")
	flag.BoolVar(&text, "t", false, "Also write a text dump of the object to stdout")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: Expected a single input file, got: %v", os.Args[0], flag.Args())
	}

	input := flag.Arg(0)
	if len(output) == 0 {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".o"
	}

	inf, err := os.Open(input)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	obj, err := asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}

	ouf, err := os.Create(output)
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}
	defer ouf.Close()

	_, err = obj.WriteTo(ouf)
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}

	if text {
		err = obj.Dump(os.Stdout)
		if err != nil {
			log.Fatal(err)
		}
	}
}
