package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediashelf/internal/content"
	"mediashelf/internal/itemparse"
	"mediashelf/internal/library"
	"mediashelf/internal/logging"
	"mediashelf/internal/orchestrator"
	"mediashelf/internal/services"
)

// ErrBusy is returned when an ingest, match, or commit is already running.
var ErrBusy = services.ErrBusy

// ErrStale reports a collaborator result that arrived after the session was
// discarded; the result was dropped.
var ErrStale = errors.New("session changed while the operation was running")

// Parser turns raw input into extracted items.
type Parser interface {
	Parse(ctx context.Context, input itemparse.Input) (itemparse.Result, error)
}

// Matcher resolves a batch of items against the search service.
type Matcher interface {
	Resolve(ctx context.Context, requests []orchestrator.Request, hints orchestrator.Hints) (map[int]content.ProcessedItem, error)
}

// Committer persists finalized records. *library.Store satisfies it.
type Committer interface {
	Commit(ctx context.Context, subjectID, originURL string, records []library.Record) (int, error)
}

// Options configure a Controller.
type Options struct {
	SubjectID string
	Hints     orchestrator.Hints
	Logger    *slog.Logger
}

// CommitResult reports a finished commit.
type CommitResult struct {
	// Saved is the count the persistence layer reported.
	Saved int
	// Committed is how many items left the working list.
	Committed int
}

// Controller owns the working set of one collection session. At most one of
// Ingest, Match, and Commit runs at a time; the others fail fast with ErrBusy.
// Every other operation is synchronous and may run while one is in flight.
type Controller struct {
	mu         sync.Mutex
	state      *State
	busy       string
	generation uint64

	id        string
	subjectID string
	hints     orchestrator.Hints
	parser    Parser
	matcher   Matcher
	committer Committer
	logger    *slog.Logger
}

// NewController starts an empty session.
func NewController(parser Parser, matcher Matcher, committer Committer, opts Options) *Controller {
	id := uuid.NewString()
	logger := logging.WithSession(logging.NewComponentLogger(opts.Logger, "session"), id)
	return &Controller{
		state:     NewState(nil, ""),
		id:        id,
		subjectID: opts.SubjectID,
		hints:     opts.Hints,
		parser:    parser,
		matcher:   matcher,
		committer: committer,
		logger:    logger,
	}
}

// ID returns the session identifier stamped on every log record.
func (c *Controller) ID() string { return c.id }

// Busy reports the name of the running collaborator call, or "".
func (c *Controller) Busy() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) begin(op string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy != "" {
		return 0, services.Wrap(ErrBusy, "session", op, c.busy+" is still running", nil)
	}
	c.busy = op
	return c.generation, nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = ""
	c.mu.Unlock()
}

func (c *Controller) context(ctx context.Context) context.Context {
	return services.WithSessionID(ctx, c.id)
}

// Ingest parses input and, on success, replaces the working list with the
// parsed items, all selected. On failure the session is unchanged.
func (c *Controller) Ingest(ctx context.Context, input itemparse.Input) (int, error) {
	gen, err := c.begin("ingest")
	if err != nil {
		return 0, err
	}
	defer c.end()

	result, err := c.parser.Parse(c.context(ctx), input)
	if err != nil {
		logging.WarnWithContext(c.logger, "ingest failed", "session_ingest_failed",
			logging.String("mode", string(input.Mode)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "working list unchanged"),
			logging.String(logging.FieldErrorHint, "correct the input and submit again"),
		)
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return 0, ErrStale
	}
	c.state = NewState(result.Items, result.SourceURL)
	c.generation++
	c.logger.Info("items ingested",
		logging.String(logging.FieldEventType, "session_ingest"),
		logging.String("mode", string(input.Mode)),
		logging.Int("items", len(result.Items)),
		logging.String("source_url", result.SourceURL),
	)
	return len(result.Items), nil
}

// Match resolves every selected item and merges the results. A failed batch
// leaves the session untouched.
func (c *Controller) Match(ctx context.Context) (int, error) {
	gen, err := c.begin("match")
	if err != nil {
		return 0, err
	}
	defer c.end()

	c.mu.Lock()
	requests := make([]orchestrator.Request, 0, len(c.state.Selected))
	for _, i := range c.state.SelectedIndices() {
		requests = append(requests, orchestrator.Request{Index: i, Item: c.state.Items[i].Clone()})
	}
	c.mu.Unlock()
	if len(requests) == 0 {
		return 0, nil
	}

	start := time.Now()
	results, err := c.matcher.Resolve(c.context(ctx), requests, c.hints)
	if err != nil {
		logging.ErrorWithContext(c.logger, "match failed", "session_match_failed",
			logging.Int("items", len(requests)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry matching once search is reachable"),
		)
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		c.logger.Info("dropping match results for discarded session", logging.Int("items", len(results)))
		return 0, ErrStale
	}
	merged := c.state.MergeProcessed(results)
	c.logger.Info("items matched",
		logging.String(logging.FieldEventType, "session_match"),
		logging.Int("items", merged),
		logging.Duration("elapsed", time.Since(start)),
	)
	return merged, nil
}

// Commit persists the eligible targets and compacts the working list. Targets
// that are not selected or have no match are skipped; when none remain no
// call is made. On failure the session is unchanged.
func (c *Controller) Commit(ctx context.Context, targets []int) (CommitResult, error) {
	gen, err := c.begin("commit")
	if err != nil {
		return CommitResult{}, err
	}
	defer c.end()

	c.mu.Lock()
	records, committed := c.state.Finalize(targets)
	originURL := c.state.SourceURL
	c.mu.Unlock()
	if len(records) == 0 {
		c.logger.Info("nothing eligible to commit", logging.Int("targets", len(targets)))
		return CommitResult{}, nil
	}

	saved, err := c.committer.Commit(c.context(ctx), c.subjectID, originURL, records)
	if err != nil {
		logging.ErrorWithContext(c.logger, "commit failed", "session_commit_failed",
			logging.Int("records", len(records)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "nothing was saved; retry the commit"),
		)
		if !errors.Is(err, services.ErrCommit) && !errors.Is(err, services.ErrBusy) {
			err = services.Wrap(services.ErrCommit, "session", "commit", fmt.Sprintf("%d records", len(records)), err)
		}
		return CommitResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return CommitResult{Saved: saved}, ErrStale
	}
	c.state.Compact(committed)
	c.generation++
	c.logger.Info("items committed",
		logging.String(logging.FieldEventType, "session_commit"),
		logging.Int("saved", saved),
		logging.Int("committed", len(committed)),
		logging.Int("remaining", len(c.state.Items)),
	)
	return CommitResult{Saved: saved, Committed: len(committed)}, nil
}

// Discard drops the working set. Results of calls still in flight are
// ignored when they arrive.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = NewState(nil, "")
	c.generation++
	c.logger.Info("session discarded")
}

func (c *Controller) mutate(fn func(*State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.state)
}

// ToggleSelect flips the selection of item i.
func (c *Controller) ToggleSelect(i int) error {
	return c.mutate(func(s *State) error { return s.ToggleSelect(i) })
}

// ToggleSelectAll selects all non-excluded items, or clears the selection.
func (c *Controller) ToggleSelectAll() {
	_ = c.mutate(func(s *State) error { s.ToggleSelectAll(); return nil })
}

// ToggleExclude excludes or restores item i.
func (c *Controller) ToggleExclude(i int) error {
	return c.mutate(func(s *State) error { return s.ToggleExclude(i) })
}

// ToggleCollapse flips the collapsed flag of item i.
func (c *Controller) ToggleCollapse(i int) error {
	return c.mutate(func(s *State) error { return s.ToggleCollapse(i) })
}

// ApplyMatchChoice records a user-chosen match for item i.
func (c *Controller) ApplyMatchChoice(i int, candidate content.MatchCandidate, source content.MatchSource, query string) error {
	return c.mutate(func(s *State) error { return s.ApplyMatchChoice(i, candidate, source, query) })
}

// UpdateItem applies a user edit to item i.
func (c *Controller) UpdateItem(i int, patch ItemPatch) error {
	return c.mutate(func(s *State) error { return s.UpdateItem(i, patch) })
}

// SetStatus sets the workflow status of item i.
func (c *Controller) SetStatus(i int, status content.Status) error {
	return c.mutate(func(s *State) error { return s.SetStatus(i, status) })
}

// Snapshot returns a deep copy of the working set.
func (c *Controller) Snapshot() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// DisplayOrder returns the indices in display order.
func (c *Controller) DisplayOrder() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.DisplayOrder()
}
