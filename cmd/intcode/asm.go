package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] source",
	Short: "assemble a program.",
	Long:  `Assemble a source file into comma-delimited program text.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		verbose := setVerbose(cmd)

		defines := GetStringArray(cmd, "define")
		if verbose {
			log.Debugf("%v: defines %v", args[0], defines)
		}

		mem, _ := assembleFile(args[0], defines, verbose)

		ouf := openOutput(GetString(cmd, "output"))
		err := mem.Format(ouf)
		closeOutput(ouf)
		if err != nil {
			log.Fatalf("%v", err)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(asmCmd)
	asmCmd.Flags().StringP("output", "o", "-", "specify output file.")
	asmCmd.Flags().StringArrayP("define", "D", []string{}, "predefine an equate, as NAME=VALUE.")
}
