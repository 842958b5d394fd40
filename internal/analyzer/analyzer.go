// Package analyzer orchestrates the analysis pipeline:
// resolve -> fetch -> normalize -> structure -> narrate -> finalize.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kanda-lab/chatreport/internal/chatlog"
	"github.com/kanda-lab/chatreport/internal/normalize"
	"github.com/kanda-lab/chatreport/internal/report"
)

// ErrTargetNotFound indicates the target does not resolve to a known
// conversation. No report record is created on this path.
var ErrTargetNotFound = errors.New("target conversation not found")

// ErrNoData indicates the transcript service returned no messages for the
// requested period. The report transitions to FAILED.
var ErrNoData = errors.New("no chat data for the specified period")

// TranscriptSource provides conversations and raw messages.
type TranscriptSource interface {
	ResolveConversation(ctx context.Context, target string) (*chatlog.Conversation, error)
	FetchMessages(ctx context.Context, target string, dates report.DateSpec) ([]chatlog.ChatMessage, error)
}

// CompletionGateway runs the two LLM analysis stages.
type CompletionGateway interface {
	Structure(ctx context.Context, chatData string) (string, error)
	Narrate(ctx context.Context, structuredData string) (string, error)
}

// Analyzer runs analysis pipelines against a shared report store. Each
// Analyze call runs synchronously to completion; concurrent calls for the
// same target and date spec are collapsed into a single run.
type Analyzer struct {
	source  TranscriptSource
	gateway CompletionGateway
	store   *report.Store
	group   singleflight.Group
}

// New creates an Analyzer.
func New(source TranscriptSource, gateway CompletionGateway, store *report.Store) *Analyzer {
	return &Analyzer{
		source:  source,
		gateway: gateway,
		store:   store,
	}
}

// Report returns a snapshot of a stored report by ID.
func (a *Analyzer) Report(id string) (report.AnalysisReport, bool) {
	return a.store.Get(id)
}

// Reports returns a snapshot of all stored reports keyed by report ID.
func (a *Analyzer) Reports() map[string]report.AnalysisReport {
	return a.store.ListAll()
}

// Analyze produces an analysis report for the target conversation over the
// given date spec. A COMPLETED report for the same target and dates is
// returned as-is without re-running the pipeline; PROCESSING or FAILED
// matches are not reused.
func (a *Analyzer) Analyze(ctx context.Context, target string, dates report.DateSpec) (report.AnalysisReport, error) {
	if err := dates.Validate(); err != nil {
		return report.AnalysisReport{}, err
	}

	// At most one concurrent run per (target, dates); duplicate callers
	// share the first run's result.
	key := target + "|" + dates.String()
	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		return a.run(ctx, target, dates)
	})
	if err != nil {
		return report.AnalysisReport{}, err
	}
	return v.(report.AnalysisReport), nil
}

func (a *Analyzer) run(ctx context.Context, target string, dates report.DateSpec) (report.AnalysisReport, error) {
	log.Printf("analyzer: starting analysis for %s (%s)", target, dates)

	if existing, ok := a.store.FindBySpec(target, dates); ok && existing.Status == report.StatusCompleted {
		log.Printf("analyzer: reusing completed report %s", existing.ID)
		return existing, nil
	}

	conv, err := a.source.ResolveConversation(ctx, target)
	if err != nil {
		if errors.Is(err, chatlog.ErrNotFound) {
			return report.AnalysisReport{}, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
		}
		return report.AnalysisReport{}, fmt.Errorf("resolving conversation: %w", err)
	}
	name := conv.DisplayName
	if name == "" {
		name = conv.Name
	}

	rep := a.store.Create(target, name, dates)
	log.Printf("analyzer: created report %s", rep.ID)

	messages, err := a.source.FetchMessages(ctx, target, dates)
	if err != nil {
		return a.fail(rep, err)
	}
	if len(messages) == 0 {
		return a.fail(rep, ErrNoData)
	}

	transcript, stats := normalize.Normalize(messages)
	rep.RawData = stats + "\n\n" + transcript
	a.persist(rep)

	structured, err := a.gateway.Structure(ctx, transcript)
	if err != nil {
		return a.fail(rep, err)
	}
	rep.StructuredData = structured
	a.persist(rep)

	final, err := a.gateway.Narrate(ctx, structured)
	if err != nil {
		return a.fail(rep, err)
	}

	rep.FinalReport = final
	rep.Status = report.StatusCompleted
	rep.CompletedAt = time.Now()
	a.persist(rep)

	log.Printf("analyzer: analysis complete, report %s", rep.ID)
	return rep, nil
}

// fail records the FAILED transition and returns the original error wrapped
// with the report that carries the failure.
func (a *Analyzer) fail(rep report.AnalysisReport, cause error) (report.AnalysisReport, error) {
	log.Printf("analyzer: analysis failed for report %s: %v", rep.ID, cause)

	rep.Status = report.StatusFailed
	rep.FinalReport = "analysis failed: " + cause.Error()
	rep.CompletedAt = time.Now()
	a.persist(rep)

	return rep, fmt.Errorf("chat analysis failed: %w", cause)
}

// persist records the report state. Recording the FAILED transition must
// never mask the error that caused it, so any store failure is logged and
// swallowed here.
func (a *Analyzer) persist(rep report.AnalysisReport) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("analyzer: failed to persist report %s: %v", rep.ID, r)
		}
	}()
	a.store.Upsert(rep)
}
