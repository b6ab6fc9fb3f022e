package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/orgsync/internal/cli"
	"github.com/jackzampolin/orgsync/internal/export"
	"github.com/jackzampolin/orgsync/internal/progress"
	"github.com/jackzampolin/orgsync/internal/reconcile"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cards carrying an organization ID to a CSV",
	Long: `Export paginates the database and collects every card whose content
blocks contain an organization ID and whose ORGA ID* property is still
empty. Matching cards land in a CSV on the Desktop; nothing is written
back to the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, _, err := setup()
		if err != nil {
			return err
		}

		tracker := progress.New(os.Stderr)
		engine := reconcile.New(newNotionClient(cfg), nil, reconcile.Options{
			DatabaseID: cfg.Notion.DatabaseID,
			Progress:   tracker.Update,
			Logger:     newLogger(),
		})

		sum, err := engine.Run(ctx)
		tracker.Finish()
		if err != nil {
			return err
		}

		if len(sum.Records) == 0 {
			fmt.Println("No cards were found with an organization ID in the body.")
			return cli.Output(summarize(sum, ""))
		}

		if err := export.WriteCSV(cfg.Export.Path, sum.Records); err != nil {
			return err
		}
		fmt.Printf("Card information has been written to %s\n", cfg.Export.Path)

		return cli.Output(summarize(sum, cfg.Export.Path))
	},
}
