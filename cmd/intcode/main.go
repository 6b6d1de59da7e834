// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/intcode/machine"
	"github.com/ezrec/intcode/translate"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "intcode",
	Short: "An Intcode interpreter.",
	Long:  "An interpreter, assembler and disassembler for Intcode programs.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if locale := GetString(cmd, "locale"); len(locale) != 0 {
			translate.SetLocale(locale)
		}
	},
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "trace every executed instruction")
	rootCmd.PersistentFlags().String("locale", "", "message locale, as a BCP 47 tag")
}

// GetFlag gets an expected boolean flag, or exits.
func GetFlag(cmd *cobra.Command, flag string) bool {
	value, err := cmd.Flags().GetBool(flag)
	if err != nil {
		log.Fatalf("%v: %v", flag, err)
	}
	return value
}

// GetString gets an expected string flag, or exits.
func GetString(cmd *cobra.Command, flag string) string {
	value, err := cmd.Flags().GetString(flag)
	if err != nil {
		log.Fatalf("%v: %v", flag, err)
	}
	return value
}

// GetStringArray gets an expected string array flag, or exits.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	value, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		log.Fatalf("%v: %v", flag, err)
	}
	return value
}

// setVerbose configures the log level from the verbose flag.
func setVerbose(cmd *cobra.Command) (verbose bool) {
	verbose = GetFlag(cmd, "verbose")
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	return
}

// splitDefine splits a NAME=VALUE argument.
func splitDefine(item string) (name string, value string) {
	name, value, ok := strings.Cut(item, "=")
	if !ok || len(name) == 0 {
		log.Fatalf("malformed definition %q", item)
	}
	return
}

// assembleFile assembles a source file, with NAME=VALUE predefined equates.
func assembleFile(name string, defines []string, verbose bool) (mem machine.Memory, prog *machine.Program) {
	inf, err := os.Open(name)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer inf.Close()

	asm := &machine.Assembler{Verbose: verbose}
	for _, define := range defines {
		asm.Predefine(splitDefine(define))
	}

	prog, err = asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", name, err)
	}
	mem = prog.Memory()

	return
}

// loadMemory reads a program image, or assembles it when asm is set.
func loadMemory(name string, asm bool) (mem machine.Memory, prog *machine.Program) {
	if asm {
		mem, prog = assembleFile(name, nil, false)
		return
	}

	inf, err := os.Open(name)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer inf.Close()

	mem, err = machine.ParseMemory(inf)
	if err != nil {
		log.Fatalf("%v: %v", name, err)
	}

	return
}

// patchMemory applies ADDR=VALUE patches.
func patchMemory(mem *machine.Memory, patches []string) {
	for _, patch := range patches {
		addr, value := splitDefine(patch)
		a, err := strconv.ParseInt(addr, 0, 64)
		if err != nil {
			log.Fatalf("%v: %v", patch, err)
		}
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			log.Fatalf("%v: %v", patch, err)
		}
		err = mem.Store(a, v)
		if err != nil {
			log.Fatalf("%v: %v", patch, err)
		}
	}
}

// openOutput returns stdout for "-", or creates the named file.
func openOutput(name string) (ouf *os.File) {
	if name == "-" {
		return os.Stdout
	}

	ouf, err := os.Create(name)
	if err != nil {
		log.Fatalf("%v", err)
	}

	return
}

// closeOutput closes a file returned by openOutput.
func closeOutput(ouf *os.File) {
	if ouf == os.Stdout {
		fmt.Fprintln(ouf)
		return
	}

	err := ouf.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}
}
