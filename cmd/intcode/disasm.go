package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezrec/intcode/machine"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [flags] program",
	Short: "list a program.",
	Long:  `Disassemble a program. Words that do not decode are listed as .data.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setVerbose(cmd)

		mem, _ := loadMemory(args[0], false)
		for ip, text := range machine.Listing(mem) {
			fmt.Printf("%05d: %v\n", ip, text)
		}
	},
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}
