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

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Write discovered organization IDs back to the cards",
	Long: `Ingest paginates the database, writes each discovered organization ID
to the card's ORGA ID* property, and re-reads the card to confirm the
write before recording it. Verified cards land in a CSV on the Desktop;
when that file already exists it seeds the set of cards to skip, so
repeated runs do no duplicate work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, _, err := setup()
		if err != nil {
			return err
		}

		processed, err := export.LoadProcessedIDs(cfg.Ingest.Path)
		if err != nil {
			return err
		}

		client := newNotionClient(cfg)
		tracker := progress.New(os.Stderr)
		engine := reconcile.New(client, client, reconcile.Options{
			DatabaseID: cfg.Notion.DatabaseID,
			WriteBack:  true,
			Processed:  processed,
			Progress:   tracker.Update,
			Logger:     newLogger(),
		})

		sum, err := engine.Run(ctx)
		tracker.Finish()
		if err != nil {
			return err
		}

		if len(sum.Records) == 0 {
			fmt.Println("No cards were found without the 'ORGA ID*' property.")
			return cli.Output(summarize(sum, ""))
		}

		if err := export.WriteCSV(cfg.Ingest.Path, sum.Records); err != nil {
			return err
		}
		fmt.Printf("Card information has been written to %s\n", cfg.Ingest.Path)
		fmt.Printf("Number of cards without 'ORGA ID*': %d\n", len(sum.Records))

		return cli.Output(summarize(sum, cfg.Ingest.Path))
	},
}
