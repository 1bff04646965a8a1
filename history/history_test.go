package history

import (
	"testing"

	"github.com/earshot-app/earshot/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	s := openTestStore(t)

	texts := []string{"first", "second", "third"}
	for i, text := range texts {
		tr, err := s.Append(types.Transcript{
			Text:      text,
			Timestamp: int64(1000 + i),
		})
		if err != nil {
			t.Fatalf("Append(%q) error = %v", text, err)
		}
		if tr.ID == "" {
			t.Error("Append did not assign an ID")
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	if got[0].Text != "third" || got[1].Text != "second" {
		t.Errorf("Recent order = [%q, %q], want newest first", got[0].Text, got[1].Text)
	}
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Recent(5)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent on empty store returned %d entries", len(got))
	}

	if got, _ := s.Recent(0); got != nil {
		t.Error("Recent(0) should return nil")
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	s := openTestStore(t)

	// Nothing saved yet: zero value, no error.
	stats, err := s.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	if stats.Recordings != 0 {
		t.Errorf("empty ledger Recordings = %d", stats.Recordings)
	}

	want := types.LedgerStats{
		Recordings:        4,
		TotalProcessingMs: 3280,
		TotalAudioSeconds: 12.5,
		AvgProcessingMs:   820,
		AvgAudioSeconds:   3.125,
		RealtimeFactor:    3.8,
		SummaryText:       "4 recordings",
	}
	if err := s.SaveLedger(want); err != nil {
		t.Fatalf("SaveLedger() error = %v", err)
	}

	got, err := s.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	if got.Recordings != want.Recordings || got.AvgProcessingMs != want.AvgProcessingMs {
		t.Errorf("LoadLedger() = %+v, want %+v", got, want)
	}
}
