// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ezrec/triad/linker"
	"github.com/ezrec/triad/object"
)

// placements collects repeated -place flags.
type placements []linker.Placement

func (pl *placements) String() string {
	var names []string
	for _, place := range *pl {
		names = append(names, place.String())
	}
	return strings.Join(names, ",")
}

func (pl *placements) Set(text string) (err error) {
	place, err := linker.ParsePlacement(text)
	if err != nil {
		return
	}
	*pl = append(*pl, place)
	return
}

func readObject(path string) (obj *object.Object, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	obj, err = object.Read(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}
	return
}

func main() {
	var hex bool
	var relocatable bool
	var output string
	var script string
	var text bool
	var verbose bool
	var place placements

	flag.BoolVar(&hex, "hex", false, "Link a placed executable (.hex)")
	flag.BoolVar(&relocatable, "relocatable", false, "Link a relocatable object (.o)")
	flag.StringVar(&output, "o", "", "Output file")
	flag.StringVar(&script, "script", "", "YAML link script")
	flag.BoolVar(&text, "t", false, "Also write a text dump of the output to stdout")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(&place, "place", "Section placement, name@0xADDR (repeatable)")

	flag.Parse()

	ctx := linker.NewContext()
	ctx.Verbose = verbose
	ctx.Relocatable = relocatable
	ctx.Placements = place

	inputs := flag.Args()

	if len(script) != 0 {
		inf, err := os.Open(script)
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}
		ls, err := linker.LoadScript(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}

		err = ls.Apply(ctx)
		if err != nil {
			log.Fatalf("%v: %v", script, err)
		}

		if !hex && !relocatable {
			hex = ls.Mode == linker.MODE_EXECUTABLE
			relocatable = ctx.Relocatable
		}
		if len(output) == 0 {
			output = ls.Output
		}
		inputs = append(ls.Inputs, inputs...)
	}

	if hex == relocatable {
		log.Fatalf("%v: Exactly one of -hex or -relocatable is required", os.Args[0])
	}
	ctx.Relocatable = relocatable

	switch {
	case len(output) == 0:
		log.Fatalf("%v: No output file given", os.Args[0])
	case hex && !strings.HasSuffix(output, ".hex"):
		log.Fatalf("%v: Executable output must have a .hex extension", output)
	case relocatable && !strings.HasSuffix(output, ".o"):
		log.Fatalf("%v: Relocatable output must have a .o extension", output)
	}

	if len(inputs) == 0 {
		log.Fatalf("%v: No input files", os.Args[0])
	}

	for _, path := range inputs {
		obj, err := readObject(path)
		if err != nil {
			log.Fatal(err)
		}
		ctx.Add(obj)
	}

	obj, err := ctx.Link()
	if err != nil {
		log.Fatal(err)
	}

	ouf, err := os.Create(output)
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}
	defer ouf.Close()

	if relocatable {
		_, err = obj.WriteTo(ouf)
		if err == nil && text {
			err = obj.Dump(os.Stdout)
		}
	} else {
		var exe *object.Executable
		exe, err = ctx.Executable()
		if err == nil {
			_, err = exe.WriteTo(ouf)
		}
		if err == nil && text {
			err = exe.Dump(os.Stdout)
		}
	}
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}
}
