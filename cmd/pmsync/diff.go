package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackcoderx/pmsync/pkg/core"
	"github.com/blackcoderx/pmsync/pkg/logging"
	"github.com/blackcoderx/pmsync/pkg/storage"
	"github.com/blackcoderx/pmsync/pkg/syncer"
	"github.com/blackcoderx/pmsync/pkg/tui"
)

func init() {
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what a sync would change, without writing anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := logging.New(verbose)
		defer func() { _ = logger.Sync() }()

		settings, err := core.LoadSettings()
		if err != nil {
			return err
		}
		def, err := loadDefinition(settings)
		if err != nil {
			return err
		}
		client, err := settings.NewClient(ctx, logger)
		if err != nil {
			return err
		}

		envPlan, err := syncer.Plan[storage.Environment](ctx, syncer.KindEnvironment, client.Environments(), def.Environment, syncer.WithLogger(logger))
		if err != nil {
			return err
		}
		colPlan, err := syncer.Plan[storage.Collection](ctx, syncer.KindCollection, client.Collections(), def.Collection, syncer.WithLogger(logger))
		if err != nil {
			return err
		}

		for _, p := range []syncer.PlanEntry{envPlan, colPlan} {
			fmt.Print(tui.RenderMarkdown(tui.PlanMarkdown(p), 0))
			if p.Diff != "" {
				fmt.Print(tui.HighlightDiff(p.Diff, 0))
			}
		}
		return nil
	},
}
