package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/intcode/emulator"
	"github.com/ezrec/intcode/machine"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] program",
	Short: "run a program with a tape.",
	Long: `Run a program to completion. Input words are read from the input tape,
	 and output words are written to the output tape, both as comma-delimited text.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		verbose := setVerbose(cmd)

		var mode machine.Mode
		if GetFlag(cmd, "interactive") {
			mode |= machine.MODE_INTERACTIVE
		}
		if GetFlag(cmd, "network") {
			mode |= machine.MODE_NETWORK
		}

		mem, prog := loadMemory(args[0], GetFlag(cmd, "asm"))
		patchMemory(&mem, GetStringArray(cmd, "set"))

		emu := emulator.NewEmulator(mem, mode)
		if prog != nil {
			emu.Program = prog
		}
		emu.Verbose = verbose

		input := GetString(cmd, "input")
		if input == "-" {
			emu.Tape.Input = os.Stdin
		} else {
			inf, err := os.Open(input)
			if err != nil {
				log.Fatalf("%v", err)
			}
			defer inf.Close()
			emu.Tape.Input = inf
		}

		ouf := openOutput(GetString(cmd, "output"))
		emu.Tape.Output = ouf

		emu.Reset()
		err := emu.Run()
		closeOutput(ouf)
		if err != nil {
			log.Fatalf("%v: %v", args[0], err)
		}

		if verbose {
			log.Debugf("%v: %v", args[0], emu.Machine.String())
		}

		if dump := GetString(cmd, "dump"); len(dump) != 0 {
			ouf := openOutput(dump)
			err = emu.Memory.Format(ouf)
			closeOutput(ouf)
			if err != nil {
				log.Fatalf("%v: %v", dump, err)
			}
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("input", "i", "-", "input tape file")
	runCmd.Flags().StringP("output", "o", "-", "output tape file")
	runCmd.Flags().String("dump", "", "write the final memory image to a file")
	runCmd.Flags().StringArray("set", []string{}, "patch memory before running, as ADDR=VALUE")
	runCmd.Flags().Bool("interactive", false, "stop, instead of failing, when the input tape is empty")
	runCmd.Flags().Bool("network", false, "read -1 when the input tape is empty")
	runCmd.Flags().Bool("asm", false, "program is assembly source")
}
