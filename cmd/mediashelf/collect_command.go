package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediashelf/internal/content"
	"mediashelf/internal/extraction"
	"mediashelf/internal/itemparse"
	"mediashelf/internal/library"
	"mediashelf/internal/orchestrator"
	"mediashelf/internal/override"
	"mediashelf/internal/session"
)

type collectOptions struct {
	file    string
	text    string
	url     string
	hint    string
	exclude []int
	choose  []string
	status  []string
	prefer  string
	match   bool
	commit  bool
	json    bool
}

type collectItemView struct {
	Number         int                     `json:"number"`
	ID             string                  `json:"id"`
	Type           content.Type            `json:"type"`
	Title          string                  `json:"title"`
	TitleLocalized string                  `json:"titleLocalized,omitempty"`
	Creator        string                  `json:"creator,omitempty"`
	Selected       bool                    `json:"selected"`
	Excluded       bool                    `json:"excluded"`
	Matched        bool                    `json:"matched"`
	Match          *content.MatchCandidate `json:"match,omitempty"`
	MatchSource    content.MatchSource     `json:"matchSource,omitempty"`
	Status         content.Status          `json:"status,omitempty"`
	Candidates     int                     `json:"candidates"`
}

type collectReport struct {
	SessionID string            `json:"sessionId"`
	SourceURL string            `json:"sourceUrl,omitempty"`
	Items     []collectItemView `json:"items"`
	Saved     int               `json:"saved"`
	Committed int               `json:"committed"`
	Remaining int               `json:"remaining"`
}

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var opts collectOptions

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Ingest items, match them against search providers, and commit them",
		Long: `Collect runs one session: items come from a structured JSON file (--file),
free text (--text), or a web page (--url). Text and URL input need an LLM api key.

--match searches every selected item; --commit saves the selected, matched items
to the library (and implies --match). Item numbers for --exclude, --choose, and
--status are the 1-based positions in the ingested list.

--choose N=ROW runs a manual search for item N and picks row ROW of the ranked
results, the same rows "mediashelf search" prints. --status N=STATUS sets the
library status (WANT, IN_PROGRESS, FINISHED, DROPPED) of a matched item.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "Structured JSON file of items (- for stdin)")
	flags.StringVarP(&opts.text, "text", "t", "", "Free text to extract items from")
	flags.StringVarP(&opts.url, "url", "u", "", "Web page or video URL to extract items from")
	flags.StringVar(&opts.hint, "hint", "", "Expected content type for extraction (BOOK, VIDEO, GAME, MUSIC, CERTIFICATE)")
	flags.IntSliceVarP(&opts.exclude, "exclude", "x", nil, "Item numbers to exclude before matching")
	flags.StringArrayVar(&opts.choose, "choose", nil, "Pick a manual search row for an item, as N=ROW (repeatable)")
	flags.StringArrayVar(&opts.status, "status", nil, "Set the status of a matched item, as N=STATUS (repeatable)")
	flags.StringVar(&opts.prefer, "prefer", "", "Search only this provider when it serves the item's type")
	flags.BoolVarP(&opts.match, "match", "m", false, "Match selected items against the search providers")
	flags.BoolVar(&opts.commit, "commit", false, "Commit matched items to the library")
	flags.BoolVar(&opts.json, "json", false, "Output as JSON")
	return cmd
}

func (o collectOptions) input(stdin io.Reader) (itemparse.Input, error) {
	set := 0
	for _, value := range []string{o.file, o.text, o.url} {
		if strings.TrimSpace(value) != "" {
			set++
		}
	}
	if set != 1 {
		return itemparse.Input{}, errors.New("exactly one of --file, --text, or --url is required")
	}

	hint := ""
	if strings.TrimSpace(o.hint) != "" {
		t, ok := content.ParseType(o.hint)
		if !ok {
			return itemparse.Input{}, fmt.Errorf("unknown content type %q", o.hint)
		}
		hint = t.String()
	}

	switch {
	case o.file != "":
		var (
			data []byte
			err  error
		)
		if o.file == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(o.file)
		}
		if err != nil {
			return itemparse.Input{}, fmt.Errorf("read items: %w", err)
		}
		return itemparse.Input{Mode: itemparse.ModeStructured, Payload: string(data), Hint: hint}, nil
	case o.text != "":
		return itemparse.Input{Mode: itemparse.ModeText, Payload: o.text, Hint: hint}, nil
	default:
		return itemparse.Input{Mode: itemparse.ModeURL, Payload: o.url, Hint: hint}, nil
	}
}

type itemAssignment struct {
	number int
	value  string
}

// parseAssignments splits N=VALUE flag values.
func parseAssignments(flag string, values []string) ([]itemAssignment, error) {
	out := make([]itemAssignment, 0, len(values))
	for _, raw := range values {
		left, right, ok := strings.Cut(raw, "=")
		number, err := strconv.Atoi(strings.TrimSpace(left))
		if !ok || err != nil || number < 1 || strings.TrimSpace(right) == "" {
			return nil, fmt.Errorf("--%s expects N=VALUE with a positive item number, got %q", flag, raw)
		}
		out = append(out, itemAssignment{number: number, value: strings.TrimSpace(right)})
	}
	return out, nil
}

func parseStatus(raw string) (content.Status, error) {
	status := content.NormalizeStatus(raw)
	switch status {
	case content.StatusWant, content.StatusInProgress, content.StatusFinished, content.StatusDropped:
		return status, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

func runCollect(cmd *cobra.Command, ctx *commandContext, opts collectOptions) error {
	input, err := opts.input(cmd.InOrStdin())
	if err != nil {
		return err
	}
	choices, err := parseAssignments("choose", opts.choose)
	if err != nil {
		return err
	}
	statuses, err := parseAssignments("status", opts.status)
	if err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	runCtx := cmd.Context()

	var extractor itemparse.Extractor
	if input.Mode != itemparse.ModeStructured {
		svc, err := extraction.NewFromConfig(cfg, logger)
		if err != nil {
			return userError(err)
		}
		extractor = svc
	}

	var (
		matcher session.Matcher
		chooser *override.Adapter
	)
	if opts.match || opts.commit || len(choices) > 0 {
		searcher, err := ctx.searchService(runCtx)
		if err != nil {
			return userError(err)
		}
		if opts.match || opts.commit {
			matcher = orchestrator.NewFromConfig(cfg, searcher, logger)
		}
		chooser = override.New(searcher, cfg.Search.PageSize, logger)
	}

	prefer := strings.ToLower(strings.TrimSpace(opts.prefer))
	if prefer == "" {
		prefer = cfg.Search.PreferProvider
	}

	run := func(committer session.Committer) error {
		ctrl := session.NewController(itemparse.New(extractor, logger), matcher, committer, session.Options{
			SubjectID: cfg.Library.SubjectID,
			Hints:     orchestrator.Hints{PreferProvider: prefer},
			Logger:    logger,
		})
		if _, err := ctrl.Ingest(runCtx, input); err != nil {
			return userError(err)
		}
		for _, number := range opts.exclude {
			if err := ctrl.ToggleExclude(number - 1); err != nil {
				return fmt.Errorf("exclude %d: %w", number, userError(err))
			}
		}
		if matcher != nil {
			if _, err := ctrl.Match(runCtx); err != nil {
				return userError(err)
			}
		}
		for _, choice := range choices {
			if err := chooseRow(runCtx, ctrl, chooser, choice, prefer, cfg.Search.LocalizedLanguage, cfg.Search.PageSize); err != nil {
				return fmt.Errorf("choose %d: %w", choice.number, userError(err))
			}
		}
		for _, assignment := range statuses {
			status, err := parseStatus(assignment.value)
			if err != nil {
				return fmt.Errorf("status %d: %w", assignment.number, err)
			}
			if err := ctrl.SetStatus(assignment.number-1, status); err != nil {
				return fmt.Errorf("status %d: %w", assignment.number, userError(err))
			}
		}

		snapshot := ctrl.Snapshot()
		report := collectReport{
			SessionID: ctrl.ID(),
			SourceURL: snapshot.SourceURL,
			Items:     collectViews(snapshot),
			Remaining: snapshot.Len(),
		}
		if committer != nil {
			result, err := ctrl.Commit(runCtx, snapshot.SelectedIndices())
			if err != nil {
				return userError(err)
			}
			report.Saved = result.Saved
			report.Committed = result.Committed
			report.Remaining = ctrl.Snapshot().Len()
		}
		if opts.json {
			return writeJSON(cmd, report)
		}
		printCollectReport(cmd, report, committer != nil)
		return nil
	}

	if !opts.commit {
		return run(nil)
	}
	return ctx.withStore(func(store *library.Store) error { return run(store) })
}

// chooseRow searches the item's last query (or its title) and applies the
// ranked row the user picked as a manual match.
func chooseRow(ctx context.Context, ctrl *session.Controller, adapter *override.Adapter, choice itemAssignment, prefer, lang string, pageSize int) error {
	row, err := strconv.Atoi(choice.value)
	if err != nil || row < 1 {
		return fmt.Errorf("row must be a positive number, got %q", choice.value)
	}
	index := choice.number - 1
	snapshot := ctrl.Snapshot()
	if index >= snapshot.Len() {
		return fmt.Errorf("no item %d (list has %d)", choice.number, snapshot.Len())
	}
	item := snapshot.Items[index]
	query := item.LocalizedQuery()
	if processed, ok := snapshot.Processed[index]; ok && strings.TrimSpace(processed.LastSearchQuery) != "" {
		query = processed.LastSearchQuery
	}
	target := item.Creator
	if strings.TrimSpace(target) == "" {
		target = item.CreatorLocalized
	}

	page, offset := 1, row-1
	if pageSize > 0 {
		page, offset = (row-1)/pageSize+1, (row-1)%pageSize
	}
	result, err := adapter.Search(ctx, override.Request{
		Type:           item.Type,
		Query:          query,
		Page:           page,
		PreferProvider: prefer,
		Language:       lang,
		TargetCreator:  target,
	})
	if err != nil {
		return err
	}
	if offset >= len(result.Rows) {
		return fmt.Errorf("row %d not found; %q has %d results", row, query, result.Total)
	}
	return ctrl.ApplyMatchChoice(index, result.Rows[offset].Candidate, content.SourceManual, query)
}

func collectViews(st *session.State) []collectItemView {
	views := make([]collectItemView, 0, st.Len())
	for _, i := range st.DisplayOrder() {
		item := st.Items[i]
		view := collectItemView{
			Number:         i + 1,
			ID:             item.ID,
			Type:           item.Type,
			Title:          item.Title,
			TitleLocalized: item.TitleLocalized,
			Creator:        item.Creator,
			Selected:       st.Selected.Has(i),
			Excluded:       st.Excluded.Has(i),
		}
		if processed, ok := st.Processed[i]; ok {
			view.Matched = true
			view.Match = processed.SelectedMatch
			view.MatchSource = processed.MatchSource
			view.Status = processed.Status
			view.Candidates = len(processed.Candidates())
		}
		views = append(views, view)
	}
	return views
}

func printCollectReport(cmd *cobra.Command, report collectReport, committed bool) {
	out := cmd.OutOrStdout()
	if len(report.Items) == 0 {
		fmt.Fprintln(out, "No items found")
		return
	}
	headers := []string{"#", "Type", "Title", "Creator", "State", "Match", "Via"}
	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		state := ""
		switch {
		case item.Excluded:
			state = "excluded"
		case item.Selected:
			state = "selected"
		}
		title := item.Title
		if item.TitleLocalized != "" && item.TitleLocalized != item.Title {
			title = item.TitleLocalized + " (" + item.Title + ")"
		}
		rows = append(rows, []string{
			strconv.Itoa(item.Number),
			item.Type.String(),
			title,
			item.Creator,
			state,
			matchLabel(item),
			string(item.MatchSource),
		})
	}
	aligns := []columnAlignment{alignRight}
	fmt.Fprintln(out, renderTable(headers, rows, aligns, shouldColorize(out)))
	if report.SourceURL != "" {
		fmt.Fprintf(out, "Source: %s\n", report.SourceURL)
	}
	if committed {
		fmt.Fprintf(out, "Committed %d items (%d new in library); %d remain in the session\n",
			report.Committed, report.Saved, report.Remaining)
	}
}

func matchLabel(item collectItemView) string {
	if !item.Matched {
		return ""
	}
	if item.Match == nil {
		return fmt.Sprintf("no match (%d candidates)", item.Candidates)
	}
	label := item.Match.Title
	if item.Match.Creator != "" {
		label += " / " + item.Match.Creator
	}
	return fmt.Sprintf("%s [%s]", label, item.Match.ExternalSource)
}
