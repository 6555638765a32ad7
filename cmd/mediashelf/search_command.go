package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediashelf/internal/content"
	"mediashelf/internal/override"
)

type searchRowView struct {
	Rank         int                    `json:"rank"`
	Candidate    content.MatchCandidate `json:"candidate"`
	CreatorMatch bool                   `json:"creatorMatch"`
	Similarity   float64                `json:"similarity"`
}

type searchView struct {
	Type    content.Type    `json:"type"`
	Query   string          `json:"query"`
	Page    int             `json:"page"`
	Total   int             `json:"total"`
	HasMore bool            `json:"hasMore"`
	Rows    []searchRowView `json:"rows"`
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var page int
	var creator string
	var prefer string
	var lang string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <type> <query...>",
		Short: "Search providers by hand, ranking rows by a target creator",
		Example: `  mediashelf search book 데미안 --creator "헤르만 헤세"
  mediashelf search video parasite --prefer tmdb --page 2`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, ok := content.ParseType(args[0])
			if !ok {
				return fmt.Errorf("unknown content type %q", args[0])
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			searcher, err := ctx.searchService(cmd.Context())
			if err != nil {
				return userError(err)
			}
			if strings.TrimSpace(lang) == "" {
				lang = cfg.Search.LocalizedLanguage
			}
			if strings.TrimSpace(prefer) == "" {
				prefer = cfg.Search.PreferProvider
			}

			adapter := override.New(searcher, cfg.Search.PageSize, logger)
			result, err := adapter.Search(cmd.Context(), override.Request{
				Type:           contentType,
				Query:          strings.Join(args[1:], " "),
				Page:           page,
				PreferProvider: strings.ToLower(strings.TrimSpace(prefer)),
				Language:       lang,
				TargetCreator:  creator,
			})
			if err != nil {
				return userError(err)
			}

			if jsonOut {
				view := searchView{
					Type:    contentType,
					Query:   result.Query,
					Page:    result.Page,
					Total:   result.Total,
					HasMore: result.HasMore,
					Rows:    make([]searchRowView, 0, len(result.Rows)),
				}
				for i, row := range result.Rows {
					view.Rows = append(view.Rows, searchRowView{
						Rank:         i + 1,
						Candidate:    row.Candidate,
						CreatorMatch: row.CreatorMatch,
						Similarity:   row.Similarity,
					})
				}
				return writeJSON(cmd, view)
			}
			printSearchResult(cmd, result, strings.TrimSpace(creator) != "")
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Result page (1-based)")
	cmd.Flags().StringVar(&creator, "creator", "", "Rank rows whose creator matches this name first")
	cmd.Flags().StringVar(&prefer, "prefer", "", "Search only this provider")
	cmd.Flags().StringVar(&lang, "lang", "", "Query language (defaults to search.localized_language)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printSearchResult(cmd *cobra.Command, result override.Result, showCreatorMatch bool) {
	out := cmd.OutOrStdout()
	if len(result.Rows) == 0 {
		fmt.Fprintf(out, "No results for %q\n", result.Query)
		return
	}

	headers := []string{"#"}
	for _, col := range result.Columns {
		headers = append(headers, col.Label)
	}
	headers = append(headers, "Source", "Score")
	if showCreatorMatch {
		headers = append(headers, "Creator match")
	}
	aligns := make([]columnAlignment, len(headers))
	aligns[0] = alignRight
	aligns[len(result.Columns)+2] = alignRight

	rows := make([][]string, 0, len(result.Rows))
	for i, row := range result.Rows {
		cells := []string{strconv.Itoa(i + 1)}
		cells = append(cells, row.Cells...)
		cells = append(cells, row.Candidate.ExternalSource, fmt.Sprintf("%.2f", row.Similarity))
		if showCreatorMatch {
			cells = append(cells, yesNo(row.CreatorMatch))
		}
		rows = append(rows, cells)
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns, shouldColorize(out)))

	more := ""
	if result.HasMore {
		more = fmt.Sprintf("; more with --page %d", result.Page+1)
	}
	fmt.Fprintf(out, "Page %d, %d total%s\n", result.Page, result.Total, more)
}
