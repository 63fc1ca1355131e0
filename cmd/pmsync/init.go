package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackcoderx/pmsync/pkg/core"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .pmsync folder with a default config and an example definition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := core.InitializeFolder(".")
		if err != nil {
			return err
		}
		if len(created) == 0 {
			fmt.Printf("%s already initialized, nothing to do.\n", core.FolderName)
			return nil
		}
		for _, path := range created {
			fmt.Println("✓ created", path)
		}
		fmt.Println("Set POSTMAN_API_KEY (or add it to .env), then run pmsync diff.")
		return nil
	},
}
