package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an analysis report.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// dateLayout is the calendar-date wire format used throughout.
const dateLayout = "2006-01-02"

// DateSpec selects the transcript window: either a single calendar date or
// a closed [Start, End] range. Exactly one form is populated.
type DateSpec struct {
	Date  string `json:"date,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// SingleDate returns a DateSpec covering one calendar date.
func SingleDate(date string) DateSpec {
	return DateSpec{Date: date}
}

// DateRange returns a DateSpec covering the closed interval [start, end].
func DateRange(start, end string) DateSpec {
	return DateSpec{Start: start, End: end}
}

// IsRange reports whether the spec is a start/end pair.
func (d DateSpec) IsRange() bool {
	return d.Date == ""
}

// Validate checks that exactly one form is populated and that all dates are
// well-formed YYYY-MM-DD values with start <= end for ranges.
func (d DateSpec) Validate() error {
	if d.Date != "" {
		if d.Start != "" || d.End != "" {
			return fmt.Errorf("date spec must be a single date or a range, not both")
		}
		if _, err := time.Parse(dateLayout, d.Date); err != nil {
			return fmt.Errorf("invalid date %q: %w", d.Date, err)
		}
		return nil
	}
	if d.Start == "" || d.End == "" {
		return fmt.Errorf("date spec requires a date or a start/end pair")
	}
	start, err := time.Parse(dateLayout, d.Start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", d.Start, err)
	}
	end, err := time.Parse(dateLayout, d.End)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", d.End, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", d.End, d.Start)
	}
	return nil
}

func (d DateSpec) String() string {
	if d.IsRange() {
		return d.Start + ".." + d.End
	}
	return d.Date
}

// AnalysisReport is the unit of work of the analysis pipeline and its result.
// It is created and mutated only by the analyzer; everyone else reads
// snapshots out of the Store.
type AnalysisReport struct {
	ID             string    `json:"reportId"`
	Target         string    `json:"target"`
	TargetName     string    `json:"targetName"`
	Dates          DateSpec  `json:"dates"`
	Status         Status    `json:"status"`
	RawData        string    `json:"rawData,omitempty"`
	StructuredData string    `json:"structuredData,omitempty"`
	FinalReport    string    `json:"finalReport,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	CompletedAt    time.Time `json:"completedAt,omitzero"`
}

// NewID generates an opaque report identifier: a UUID with dashes stripped.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
