package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blackcoderx/pmsync/pkg/core"
	"github.com/blackcoderx/pmsync/pkg/storage"
	"github.com/blackcoderx/pmsync/pkg/tui"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the definition file without contacting the remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Credentials are not needed here, so settings are not validated.
		core.SetDefaults(viper.GetViper())
		path := definitionFile
		if path == "" {
			path = viper.GetString("definition")
		}

		def, err := storage.LoadDefinition(path)
		if err != nil {
			var verr *storage.ValidationError
			if errors.As(err, &verr) {
				for _, p := range verr.Problems {
					fmt.Println(tui.ErrorStyle.Render(tui.ErrorPrefix + p))
				}
			}
			return err
		}

		fmt.Println(tui.CreatedStyle.Render(fmt.Sprintf("%s%s is valid: environment %q with %d variables, collection %q with %d requests",
			tui.OkPrefix, path,
			def.Environment.Name, len(def.Environment.Values),
			def.Collection.Name, storage.CountRequests(def.Collection.Items))))

		for _, name := range storage.MissingVariables(def) {
			fmt.Println(tui.UpdatedStyle.Render(fmt.Sprintf("  warning: {{%s}} is used but not defined in the environment", name)))
		}
		return nil
	},
}
