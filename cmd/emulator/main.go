// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/triad/emulator"
	"github.com/ezrec/triad/io"
	"github.com/ezrec/triad/object"
	"github.com/ezrec/triad/translate"
)

const CONSOLE_PATH = "/dev/tty"

func run(path string, verbose bool) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	exe, err := object.ReadExecutable(inf)
	inf.Close()
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Terminal.Output = os.Stdout

	if io.IsTerminal(os.Stdin) {
		var con *io.Console
		con, err = io.OpenConsole(CONSOLE_PATH)
		if err != nil {
			return
		}
		defer con.Close()
		emu.Terminal.Input = con
	} else {
		emu.Terminal.Input = io.NewStream(os.Stdin)
	}

	emu.Load(exe)
	err = emu.Run()

	if err == nil {
		translate.Fprint(os.Stdout, "\nEmulated processor executed halt instruction\n")
	}
	fmt.Print(emu.Cpu.String())

	return
}

func main() {
	var verbose bool

	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: Expected a single executable file, got: %v", os.Args[0], flag.Args())
	}

	err := run(flag.Arg(0), verbose)
	if err != nil {
		log.Fatal(err)
	}
}
