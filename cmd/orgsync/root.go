package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/orgsync/internal/cli"
	"github.com/jackzampolin/orgsync/internal/config"
	"github.com/jackzampolin/orgsync/internal/home"
	"github.com/jackzampolin/orgsync/internal/notion"
	"github.com/jackzampolin/orgsync/internal/reconcile"
	"github.com/jackzampolin/orgsync/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "orgsync",
	Short: "Sync organization IDs between a Notion database and a CSV export",
	Long: `Orgsync scans the cards of a Notion database for embedded organization
IDs and keeps remote cards and a local CSV export in step.

Commands:
  export  collect cards carrying an organization ID into a CSV
  ingest  write discovered IDs back to the cards, verify each write,
          and export the verified set

Credentials come from the environment: NOTION_TOKEN (bearer token) and
DATABASE_ID (the database to sync).`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.orgsync/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "orgsync home directory (default: ~/.orgsync)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "run summary format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup resolves the home directory and loads validated configuration.
func setup() (*config.Config, *home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(cfgFile, h)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, h, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newNotionClient(cfg *config.Config) *notion.Client {
	return notion.NewClient(notion.Config{
		BaseURL: cfg.Notion.BaseURL,
		Token:   cfg.Notion.Token,
		Version: cfg.Notion.Version,
	})
}

// runSummary is the per-run report rendered via the --output format.
type runSummary struct {
	Cards    int            `json:"cards" yaml:"cards"`
	Total    int            `json:"total,omitempty" yaml:"total,omitempty"`
	Outcomes map[string]int `json:"outcomes" yaml:"outcomes"`
	Output   string         `json:"output,omitempty" yaml:"output,omitempty"`
}

func summarize(sum *reconcile.Summary, output string) runSummary {
	outcomes := make(map[string]int, len(sum.Counts))
	for outcome, n := range sum.Counts {
		outcomes[string(outcome)] = n
	}
	return runSummary{
		Cards:    sum.Cards,
		Total:    sum.Total,
		Outcomes: outcomes,
		Output:   output,
	}
}
