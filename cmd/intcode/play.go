package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ezrec/intcode/emulator"
)

var playCmd = &cobra.Command{
	Use:   "play [flags] program",
	Short: "run an ASCII program interactively.",
	Long: `Run an ASCII program interactively. Each line typed is sent to the program,
	 except for the commands 'save', 'load', 'quit' and 'exit'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		verbose := setVerbose(cmd)

		mem, _ := loadMemory(args[0], GetFlag(cmd, "asm"))
		patchMemory(&mem, GetStringArray(cmd, "set"))

		ss := emulator.NewSession(mem)
		ss.Verbose = verbose
		if term.IsTerminal(int(os.Stdin.Fd())) {
			ss.Prompt = GetString(cmd, "prompt")
		}

		err := ss.Run(os.Stdin, os.Stdout)
		if err != nil {
			log.Fatalf("%v: %v", args[0], err)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("prompt", "> ", "prompt shown when input is a terminal")
	playCmd.Flags().StringArray("set", []string{}, "patch memory before running, as ADDR=VALUE")
	playCmd.Flags().Bool("asm", false, "program is assembly source")
}
