// Package reconcile decides, card by card, whether remote entries still
// need processing, and drives the extract / write / verify steps.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/orgsync/internal/extract"
	"github.com/jackzampolin/orgsync/internal/notion"
)

const (
	// TargetProperty is the rich-text field the organization ID lands in.
	TargetProperty = "ORGA ID*"

	// TitlePlaceholder substitutes for cards without a title property.
	TitlePlaceholder = "Title not found"

	// SourceTag marks every record produced by this tool.
	SourceTag = "Corpus"
)

// Outcome is the terminal state of one card within a run.
type Outcome string

const (
	OutcomeSkippedAlreadySet Outcome = "skipped_already_set"
	OutcomeSkippedProcessed  Outcome = "skipped_already_processed"
	OutcomeNoIdentifier      Outcome = "no_identifier"
	OutcomeRecorded          Outcome = "recorded"
	OutcomeWriteFailed       Outcome = "write_failed"
	OutcomeVerifyFailed      Outcome = "verify_failed"
)

// Record is one successfully processed card.
type Record struct {
	Link   string
	Title  string
	OrgID  string
	Source string
}

// ProgressFunc observes per-card completion: done cards so far and the
// best-effort total (0 when unknown).
type ProgressFunc func(done, total int)

// Reader lists database entries and fetches per-card content blocks.
type Reader interface {
	QueryDatabase(ctx context.Context, databaseID, startCursor string) (*notion.QueryResult, error)
	BlockChildren(ctx context.Context, pageID string) (*notion.BlockList, error)
}

// Writer sets a card property and confirms the write took effect.
type Writer interface {
	UpdateProperty(ctx context.Context, pageID, propName, text string) error
	VerifyProperty(ctx context.Context, pageID, propName, expected string) (bool, error)
}

// Options configures a run.
type Options struct {
	DatabaseID string

	// TargetProperty defaults to "ORGA ID*".
	TargetProperty string

	// WriteBack selects the ingest variant: discovered IDs are written to
	// the card and verified before being recorded.
	WriteBack bool

	// Processed holds normalized card IDs already seen in a prior export
	// (write-back variant only); read-only for the run.
	Processed map[string]struct{}

	// Progress is invoked once per card outcome; may be nil.
	Progress ProgressFunc

	Logger *slog.Logger
}

// Summary aggregates a run.
type Summary struct {
	Records []Record
	Counts  map[Outcome]int
	// Cards is the number of entries that reached a terminal outcome.
	Cards int
	// Total is the best-effort entry count from the initial query.
	Total int
}

// Engine runs the reconciliation loop.
type Engine struct {
	reader Reader
	writer Writer
	opts   Options
	log    *slog.Logger
}

// New creates an Engine. writer may be nil when opts.WriteBack is false.
func New(reader Reader, writer Writer, opts Options) *Engine {
	if opts.TargetProperty == "" {
		opts.TargetProperty = TargetProperty
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{reader: reader, writer: writer, opts: opts, log: log}
}

// Run paginates the database and processes every card sequentially. The
// initial cursor-less query failing is the only fatal condition; a page
// failure mid-run ends pagination, keeping what was accumulated.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	initial, err := e.reader.QueryDatabase(ctx, e.opts.DatabaseID, "")
	if err != nil {
		return nil, fmt.Errorf("initial database query: %w", err)
	}

	sum := &Summary{
		Counts: make(map[Outcome]int),
		Total:  initial.Total,
	}

	cursor := ""
	for {
		page, err := e.reader.QueryDatabase(ctx, e.opts.DatabaseID, cursor)
		if err != nil {
			e.log.Error("database query failed", "cursor", cursor, "error", err)
			break
		}

		for i := range page.Results {
			outcome, rec := e.processCard(ctx, &page.Results[i])
			sum.Counts[outcome]++
			sum.Cards++
			if rec != nil {
				sum.Records = append(sum.Records, *rec)
			}
			if e.opts.Progress != nil {
				e.opts.Progress(sum.Cards, sum.Total)
			}
		}

		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	return sum, nil
}

// processCard walks one card to a terminal outcome. A record is returned
// only for OutcomeRecorded.
func (e *Engine) processCard(ctx context.Context, card *notion.Page) (Outcome, *Record) {
	// Remote state: target field already set.
	if card.HasText(e.opts.TargetProperty) {
		return OutcomeSkippedAlreadySet, nil
	}

	// Local state: seen in a prior export.
	if e.opts.WriteBack {
		if _, ok := e.opts.Processed[notion.NormalizeID(card.ID)]; ok {
			return OutcomeSkippedProcessed, nil
		}
	}

	title, ok := card.Title()
	if !ok {
		title = TitlePlaceholder
	}

	blocks, err := e.reader.BlockChildren(ctx, card.ID)
	if err != nil {
		e.log.Error("failed to fetch card blocks", "card", card.ID, "error", err)
		return OutcomeNoIdentifier, nil
	}

	orgID, found := extract.OrgID(blocks.Results)
	if !found {
		return OutcomeNoIdentifier, nil
	}

	rec := &Record{
		Link:   notion.PageURL(card.ID),
		Title:  title,
		OrgID:  orgID,
		Source: SourceTag,
	}

	if !e.opts.WriteBack {
		return OutcomeRecorded, rec
	}

	if err := e.writer.UpdateProperty(ctx, card.ID, e.opts.TargetProperty, orgID); err != nil {
		e.log.Error("failed to update card", "card", card.ID, "error", err)
		return OutcomeWriteFailed, nil
	}

	// The update call succeeding does not guarantee the field committed;
	// only a confirming re-read makes the write durable.
	verified, err := e.writer.VerifyProperty(ctx, card.ID, e.opts.TargetProperty, orgID)
	if err != nil {
		e.log.Error("failed to verify card", "card", card.ID, "error", err)
		return OutcomeVerifyFailed, nil
	}
	if !verified {
		e.log.Error("card verification mismatch", "card", card.ID, "org_id", orgID)
		return OutcomeVerifyFailed, nil
	}

	e.log.Info("card updated", "card", card.ID, "org_id", orgID)
	return OutcomeRecorded, rec
}
