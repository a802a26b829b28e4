package audit

import (
	"sync"
	"time"

	"bitbucket.org/jjfidc/boletos_backend/models"
	"github.com/google/uuid"
)

// SlipAudit is the full trail for one slip: the resolved match, the five
// validation layer entries and, after dispatch, the delivery outcome.
type SlipAudit struct {
	FileRef     string                  `json:"fileRef"`
	Status      models.ValidationStatus `json:"status"`
	Reason      string                  `json:"reason,omitempty"`
	Tier        models.MatchTier        `json:"tier"`
	Score       int                     `json:"score,omitempty"`
	Rationale   []string                `json:"rationale,omitempty"`
	Layers      []models.LayerResult    `json:"layers"`
	Invoice     string                  `json:"invoice,omitempty"`
	Installment int                     `json:"installment,omitempty"`
	EmailSent   bool                    `json:"emailSent"`
	Recipients  []string                `json:"recipients,omitempty"`
	CC          []string                `json:"cc,omitempty"`
	Attachments int                     `json:"attachments,omitempty"`
	Timestamp   time.Time               `json:"timestamp"`
}

type CriticalError struct {
	Message   string    `json:"message"`
	FileRef   string    `json:"fileRef,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Warning struct {
	Message   string    `json:"message"`
	FileRef   string    `json:"fileRef,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LayerTally aggregates pass/fail counts for one validation layer.
type LayerTally struct {
	Pass int `json:"pass"`
	Fail int `json:"fail"`
}

// Run is the append-only audit trail of one batch execution. Single
// writer; the mutex only exists so a future parallel orchestrator can keep
// appending safely (ordering across slips is not significant).
type Run struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	StartedAt  time.Time
	FinishedAt time.Time

	mu       sync.Mutex
	slips    []*SlipAudit
	critical []CriticalError
	warnings []Warning
}

func NewRun(mode string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

func (r *Run) AddSlip(s *SlipAudit) {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slips = append(r.slips, s)
}

func (r *Run) AddCriticalError(message, fileRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.critical = append(r.critical, CriticalError{
		Message:   message,
		FileRef:   fileRef,
		Timestamp: time.Now(),
	})
}

func (r *Run) AddWarning(message, fileRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, Warning{
		Message:   message,
		FileRef:   fileRef,
		Timestamp: time.Now(),
	})
}

func (r *Run) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

func (r *Run) Slips() []*SlipAudit {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*SlipAudit, len(r.slips))
	copy(out, r.slips)
	return out
}

func (r *Run) CriticalErrors() []CriticalError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CriticalError, len(r.critical))
	copy(out, r.critical)
	return out
}

func (r *Run) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

func (r *Run) Approved() int {
	n := 0
	for _, s := range r.Slips() {
		if s.Status == models.StatusApproved {
			n++
		}
	}
	return n
}

func (r *Run) Rejected() int {
	n := 0
	for _, s := range r.Slips() {
		if s.Status == models.StatusRejected {
			n++
		}
	}
	return n
}

func (r *Run) SuccessRate() float64 {
	slips := r.Slips()
	if len(slips) == 0 {
		return 0
	}
	return float64(r.Approved()) / float64(len(slips))
}

// LayerStats tallies pass/fail per validation layer across the run.
// Layers that were not evaluable (nil outcome) count toward neither.
func (r *Run) LayerStats() map[string]LayerTally {
	stats := map[string]LayerTally{}
	for _, s := range r.Slips() {
		for _, layer := range s.Layers {
			if layer.Outcome == nil {
				continue
			}
			tally := stats[layer.Layer]
			if *layer.Outcome {
				tally.Pass++
			} else {
				tally.Fail++
			}
			stats[layer.Layer] = tally
		}
	}
	return stats
}

func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
