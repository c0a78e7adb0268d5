package contracts

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidSource is returned for a trigger origin outside the closed set
var ErrInvalidSource = errors.New("invalid run source")

// Source describes what triggered a run
type Source string

const (
	SourceWeb  Source = "web"
	SourceCLI  Source = "cli"
	SourceCron Source = "cron"
)

// ParseSource validates a trigger origin
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceWeb, SourceCLI, SourceCron:
		return Source(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
	}
}

// Filter is one (field, operator, value) triple of a theme's filter expression
type Filter struct {
	Left      string      `json:"left" yaml:"left"`
	Operation string      `json:"operation" yaml:"operation"`
	Right     interface{} `json:"right" yaml:"right"`
}

// ScreenRun identifies one pipeline execution. Immutable once created.
type ScreenRun struct {
	ID             uuid.UUID `json:"id"`
	ThemeID        string    `json:"theme_id"`
	Source         Source    `json:"source"`
	RunAt          time.Time `json:"run_at"`
	CandidateCount int       `json:"candidate_count"`
}

// StockSnapshot is one scored candidate persisted under a run.
// ThesisZh is inherited at insert time; ThesisGeneratedAt stays nil until a
// thesis is generated for this snapshot itself, which happens at most once.
type StockSnapshot struct {
	ID    int64     `json:"id"`
	RunID uuid.UUID `json:"run_id"`
	ScoredCandidate

	ThesisZh          *string    `json:"thesis_zh,omitempty"`
	ThesisGeneratedAt *time.Time `json:"thesis_generated_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// HistoryEntry is a snapshot joined with the run that produced it
type HistoryEntry struct {
	StockSnapshot

	ThemeID string    `json:"theme_id"`
	Source  Source    `json:"source"`
	RunAt   time.Time `json:"run_at"`
}

// Event names published on the change notifier
const (
	EventScreenComplete = "screen_complete"
	EventThesisUpdated  = "thesis_updated"
)

// ScreenCompleteEvent is the payload of EventScreenComplete
type ScreenCompleteEvent struct {
	Theme  string    `json:"theme"`
	RunID  uuid.UUID `json:"run_id"`
	Count  int       `json:"count"`
	Source Source    `json:"source"`
}

// ThesisUpdatedEvent is the payload of EventThesisUpdated
type ThesisUpdatedEvent struct {
	Ticker     string `json:"ticker"`
	SnapshotID int64  `json:"snapshot_id"`
}
