package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackzampolin/orgsync/internal/notion"
)

const testOrgID = "a1b2c3d4-e5f6-7890-abcd-ef1234567890"

// fakeRemote implements Reader and Writer against in-memory pages.
type fakeRemote struct {
	pages map[string]*notion.QueryResult // keyed by start cursor ("" = first page)
	fail  map[string]error               // query failures by cursor

	blocks    map[string]*notion.BlockList
	blocksErr map[string]error

	updateErr error
	verifyOK  bool
	verifyErr error
	// applyUpdates makes UpdateProperty mutate the stored page, emulating a
	// committed remote write across runs.
	applyUpdates bool

	blockCalls  []string
	updateCalls []string
	verifyCalls []string
}

func (f *fakeRemote) QueryDatabase(_ context.Context, _, cursor string) (*notion.QueryResult, error) {
	if err, ok := f.fail[cursor]; ok {
		return nil, err
	}
	page, ok := f.pages[cursor]
	if !ok {
		return nil, fmt.Errorf("no page for cursor %q", cursor)
	}
	return page, nil
}

func (f *fakeRemote) BlockChildren(_ context.Context, pageID string) (*notion.BlockList, error) {
	f.blockCalls = append(f.blockCalls, pageID)
	if err, ok := f.blocksErr[pageID]; ok {
		return nil, err
	}
	if bl, ok := f.blocks[pageID]; ok {
		return bl, nil
	}
	return &notion.BlockList{}, nil
}

func (f *fakeRemote) UpdateProperty(_ context.Context, pageID, propName, text string) error {
	f.updateCalls = append(f.updateCalls, pageID)
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.applyUpdates {
		for _, page := range f.pages {
			for i := range page.Results {
				if page.Results[i].ID == pageID {
					page.Results[i].Properties[propName] = notion.Property{
						Type:     "rich_text",
						RichText: []notion.RichText{{PlainText: text}},
					}
				}
			}
		}
	}
	return nil
}

func (f *fakeRemote) VerifyProperty(_ context.Context, pageID, _, _ string) (bool, error) {
	f.verifyCalls = append(f.verifyCalls, pageID)
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	return f.verifyOK, nil
}

func card(id, title string) notion.Page {
	props := map[string]notion.Property{}
	if title != "" {
		props["Name"] = notion.Property{Type: "title", Title: []notion.RichText{{PlainText: title}}}
	}
	return notion.Page{ID: id, Properties: props}
}

func cardWithOrgID(id, title, orgID string) notion.Page {
	c := card(id, title)
	c.Properties[TargetProperty] = notion.Property{
		Type:     "rich_text",
		RichText: []notion.RichText{{PlainText: orgID}},
	}
	return c
}

func orgIDBlocks(orgID string) *notion.BlockList {
	return &notion.BlockList{Results: []notion.Block{{
		Type:      "paragraph",
		Paragraph: &notion.BlockText{RichText: []notion.RichText{{PlainText: "see ref " + orgID + " for details"}}},
	}}}
}

func singlePage(cards ...notion.Page) map[string]*notion.QueryResult {
	return map[string]*notion.QueryResult{
		"": {Results: cards, HasMore: false},
	}
}

func TestEngine_Export_Recorded(t *testing.T) {
	remote := &fakeRemote{
		pages:  singlePage(card("11111111-1111-1111-1111-111111111111", "My Card")),
		blocks: map[string]*notion.BlockList{"11111111-1111-1111-1111-111111111111": orgIDBlocks(testOrgID)},
	}

	sum, err := New(remote, nil, Options{DatabaseID: "db"}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sum.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sum.Records))
	}
	rec := sum.Records[0]
	if rec.Link != "https://www.notion.so/11111111111111111111111111111111" {
		t.Errorf("unexpected link: %s", rec.Link)
	}
	if rec.Title != "My Card" {
		t.Errorf("unexpected title: %s", rec.Title)
	}
	if rec.OrgID != testOrgID {
		t.Errorf("unexpected org ID: %s", rec.OrgID)
	}
	if rec.Source != SourceTag {
		t.Errorf("unexpected source: %s", rec.Source)
	}
	if sum.Counts[OutcomeRecorded] != 1 {
		t.Errorf("expected 1 recorded outcome, got %d", sum.Counts[OutcomeRecorded])
	}
}

func TestEngine_Export_TitlePlaceholder(t *testing.T) {
	remote := &fakeRemote{
		pages:  singlePage(card("22222222-2222-2222-2222-222222222222", "")),
		blocks: map[string]*notion.BlockList{"22222222-2222-2222-2222-222222222222": orgIDBlocks(testOrgID)},
	}

	sum, err := New(remote, nil, Options{DatabaseID: "db"}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sum.Records) != 1 || sum.Records[0].Title != TitlePlaceholder {
		t.Errorf("expected placeholder title, got %+v", sum.Records)
	}
}

func TestEngine_AlreadySet_NoBlocksFetch(t *testing.T) {
	remote := &fakeRemote{
		pages: singlePage(cardWithOrgID("33333333-3333-3333-3333-333333333333", "Done", testOrgID)),
	}

	sum, err := New(remote, nil, Options{DatabaseID: "db"}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Counts[OutcomeSkippedAlreadySet] != 1 {
		t.Errorf("expected skipped-already-set, got %+v", sum.Counts)
	}
	if len(sum.Records) != 0 {
		t.Errorf("already-set card must not produce a record")
	}
	if len(remote.blockCalls) != 0 {
		t.Errorf("no blocks fetch expected, got %v", remote.blockCalls)
	}
}

func TestEngine_Ingest_ProcessedSkip(t *testing.T) {
	id := "44444444-4444-4444-4444-444444444444"
	remote := &fakeRemote{
		pages:  singlePage(card(id, "Seen before")),
		blocks: map[string]*notion.BlockList{id: orgIDBlocks(testOrgID)},
	}

	sum, err := New(remote, remote, Options{
		DatabaseID: "db",
		WriteBack:  true,
		Processed:  map[string]struct{}{notion.NormalizeID(id): {}},
	}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Counts[OutcomeSkippedProcessed] != 1 {
		t.Errorf("expected skipped-already-processed, got %+v", sum.Counts)
	}
	if len(remote.blockCalls) != 0 {
		t.Errorf("processed card must be skipped before any per-card call, got %v", remote.blockCalls)
	}
	if len(remote.updateCalls) != 0 {
		t.Errorf("no update expected, got %v", remote.updateCalls)
	}
}

func TestEngine_Ingest_WriteVerifyTable(t *testing.T) {
	id := "55555555-5555-5555-5555-555555555555"

	tests := []struct {
		name        string
		updateErr   error
		verifyOK    bool
		verifyErr   error
		wantOutcome Outcome
		wantRecords int
	}{
		{"write and verify succeed", nil, true, nil, OutcomeRecorded, 1},
		{"write fails", errors.New("boom"), true, nil, OutcomeWriteFailed, 0},
		{"verify mismatch", nil, false, nil, OutcomeVerifyFailed, 0},
		{"verify errors", nil, false, errors.New("boom"), OutcomeVerifyFailed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{
				pages:     singlePage(card(id, "Card")),
				blocks:    map[string]*notion.BlockList{id: orgIDBlocks(testOrgID)},
				updateErr: tt.updateErr,
				verifyOK:  tt.verifyOK,
				verifyErr: tt.verifyErr,
			}

			sum, err := New(remote, remote, Options{DatabaseID: "db", WriteBack: true}).Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if sum.Counts[tt.wantOutcome] != 1 {
				t.Errorf("expected outcome %s, got %+v", tt.wantOutcome, sum.Counts)
			}
			if len(sum.Records) != tt.wantRecords {
				t.Errorf("expected %d records, got %d", tt.wantRecords, len(sum.Records))
			}
			if len(remote.updateCalls) != 1 {
				t.Errorf("expected exactly one write per card, got %d", len(remote.updateCalls))
			}
			if tt.updateErr != nil && len(remote.verifyCalls) != 0 {
				t.Errorf("verify must not run after failed write")
			}
		})
	}
}

func TestEngine_Pagination_And_Progress(t *testing.T) {
	remote := &fakeRemote{
		pages: map[string]*notion.QueryResult{
			"": {
				Results:    []notion.Page{card("11111111-1111-1111-1111-111111111111", "A")},
				HasMore:    true,
				NextCursor: "c2",
				Total:      3,
			},
			"c2": {
				Results: []notion.Page{
					cardWithOrgID("22222222-2222-2222-2222-222222222222", "B", testOrgID),
					card("33333333-3333-3333-3333-333333333333", "C"),
				},
				HasMore: false,
			},
		},
		blocks: map[string]*notion.BlockList{
			"11111111-1111-1111-1111-111111111111": orgIDBlocks(testOrgID),
		},
	}

	var calls [][2]int
	sum, err := New(remote, nil, Options{
		DatabaseID: "db",
		Progress:   func(done, total int) { calls = append(calls, [2]int{done, total}) },
	}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Cards != 3 {
		t.Errorf("expected 3 cards seen, got %d", sum.Cards)
	}
	if len(calls) != sum.Cards {
		t.Errorf("progress must advance once per card: %d calls for %d cards", len(calls), sum.Cards)
	}
	for i, c := range calls {
		if c[0] != i+1 {
			t.Errorf("progress call %d reported done=%d", i, c[0])
		}
		if c[1] != 3 {
			t.Errorf("progress call %d reported total=%d, want 3", i, c[1])
		}
	}
	// A recorded, B already set, C no identifier.
	if sum.Counts[OutcomeRecorded] != 1 || sum.Counts[OutcomeSkippedAlreadySet] != 1 || sum.Counts[OutcomeNoIdentifier] != 1 {
		t.Errorf("unexpected outcome counts: %+v", sum.Counts)
	}
}

func TestEngine_PageFailure_KeepsAccumulated(t *testing.T) {
	remote := &fakeRemote{
		pages: map[string]*notion.QueryResult{
			"": {
				Results:    []notion.Page{card("11111111-1111-1111-1111-111111111111", "A")},
				HasMore:    true,
				NextCursor: "c2",
			},
		},
		fail:   map[string]error{"c2": errors.New("status 500")},
		blocks: map[string]*notion.BlockList{"11111111-1111-1111-1111-111111111111": orgIDBlocks(testOrgID)},
	}

	sum, err := New(remote, nil, Options{DatabaseID: "db"}).Run(context.Background())
	if err != nil {
		t.Fatalf("mid-run page failure must not fail the run: %v", err)
	}
	if len(sum.Records) != 1 {
		t.Errorf("expected accumulated record to survive, got %d", len(sum.Records))
	}
}

func TestEngine_InitialQueryFailure(t *testing.T) {
	remote := &fakeRemote{fail: map[string]error{"": errors.New("status 401")}}

	if _, err := New(remote, nil, Options{DatabaseID: "db"}).Run(context.Background()); err == nil {
		t.Fatal("expected error when the initial query fails")
	}
}

func TestEngine_BlocksFailure_SkipsEntry(t *testing.T) {
	id := "66666666-6666-6666-6666-666666666666"
	remote := &fakeRemote{
		pages:     singlePage(card(id, "Card")),
		blocksErr: map[string]error{id: errors.New("status 500")},
	}

	sum, err := New(remote, nil, Options{DatabaseID: "db"}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Counts[OutcomeNoIdentifier] != 1 {
		t.Errorf("blocks failure should yield no-identifier, got %+v", sum.Counts)
	}
	if sum.Cards != 1 {
		t.Errorf("failed entry must still count toward progress")
	}
}

func TestEngine_Ingest_Idempotent(t *testing.T) {
	id := "77777777-7777-7777-7777-777777777777"
	remote := &fakeRemote{
		pages:        singlePage(card(id, "Card")),
		blocks:       map[string]*notion.BlockList{id: orgIDBlocks(testOrgID)},
		verifyOK:     true,
		applyUpdates: true,
	}
	opts := Options{DatabaseID: "db", WriteBack: true}

	first, err := New(remote, remote, opts).Run(context.Background())
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if first.Counts[OutcomeRecorded] != 1 {
		t.Fatalf("first run should record the card, got %+v", first.Counts)
	}

	second, err := New(remote, remote, opts).Run(context.Background())
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if second.Counts[OutcomeSkippedAlreadySet] != 1 {
		t.Errorf("second run should skip the updated card, got %+v", second.Counts)
	}
	if len(remote.updateCalls) != 1 {
		t.Errorf("expected no new writes on the second run, got %d total", len(remote.updateCalls))
	}
}
