package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepform/pkg/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate <wizard-file>...",
	Short: "Check wizard definition files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			def, err := loader.LoadFile(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s is valid (%d steps)\n", path, def.Key, def.Len())
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
