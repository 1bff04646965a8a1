package listen

import (
	"fmt"
	"sync"

	"github.com/earshot-app/earshot/internal/types"
)

// Ledger accumulates throughput counters across completed transcriptions.
// Counters only grow; averages and the realtime multiple are derived on
// read and are 0 while the ledger is empty.
type Ledger struct {
	mu                sync.Mutex
	recordings        int64
	totalProcessingMs int64
	totalAudioSeconds float64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record adds one completed transcription.
func (l *Ledger) Record(elapsedMs int64, audioSeconds float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordings++
	l.totalProcessingMs += elapsedMs
	l.totalAudioSeconds += audioSeconds
}

// Restore seeds the counters from a persisted snapshot. Intended for
// startup only, before Record is ever called.
func (l *Ledger) Restore(stats types.LedgerStats) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordings = stats.Recordings
	l.totalProcessingMs = stats.TotalProcessingMs
	l.totalAudioSeconds = stats.TotalAudioSeconds
}

// Snapshot returns the current counters with derived metrics filled in.
func (l *Ledger) Snapshot() types.LedgerStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := types.LedgerStats{
		Recordings:        l.recordings,
		TotalProcessingMs: l.totalProcessingMs,
		TotalAudioSeconds: l.totalAudioSeconds,
	}

	if l.recordings > 0 {
		stats.AvgProcessingMs = float64(l.totalProcessingMs) / float64(l.recordings)
		stats.AvgAudioSeconds = l.totalAudioSeconds / float64(l.recordings)
	}
	if l.totalProcessingMs > 0 {
		stats.RealtimeFactor = l.totalAudioSeconds / (float64(l.totalProcessingMs) / 1000)
	}

	if l.recordings == 0 {
		stats.SummaryText = "no recordings yet"
	} else {
		stats.SummaryText = fmt.Sprintf("%d recordings, avg %.0f ms, %.1fx realtime",
			stats.Recordings, stats.AvgProcessingMs, stats.RealtimeFactor)
	}

	return stats
}
