package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediashelf/internal/content"
	"mediashelf/internal/library"
)

type libraryEntryView struct {
	ID             string         `json:"id"`
	ItemRef        string         `json:"itemRef,omitempty"`
	Type           content.Type   `json:"type"`
	Title          string         `json:"title"`
	OriginalTitle  string         `json:"originalTitle,omitempty"`
	Creator        string         `json:"creator,omitempty"`
	Review         string         `json:"review,omitempty"`
	Rating         *float64       `json:"rating,omitempty"`
	Status         content.Status `json:"status"`
	SourceURL      string         `json:"sourceUrl,omitempty"`
	OriginURL      string         `json:"originUrl,omitempty"`
	ExternalID     string         `json:"externalId"`
	ExternalSource string         `json:"externalSource"`
	CoverImageURL  string         `json:"coverImageUrl,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect committed records",
	}
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	return libraryCmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var subject string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List records committed for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(subject) == "" {
				subject = cfg.Library.SubjectID
			}
			return ctx.withStore(func(store *library.Store) error {
				entries, err := store.List(cmd.Context(), subject)
				if err != nil {
					return err
				}
				if jsonOut {
					views := make([]libraryEntryView, 0, len(entries))
					for _, entry := range entries {
						views = append(views, libraryView(entry))
					}
					return writeJSON(cmd, views)
				}
				printLibrary(cmd, subject, entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Subject to list (defaults to library.subject_id)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func libraryView(entry library.Entry) libraryEntryView {
	return libraryEntryView{
		ID:             entry.ID,
		ItemRef:        entry.ItemRef,
		Type:           entry.Type,
		Title:          entry.Title,
		OriginalTitle:  entry.OriginalTitle,
		Creator:        entry.Creator,
		Review:         entry.Review,
		Rating:         entry.Rating,
		Status:         entry.Status,
		SourceURL:      entry.SourceURL,
		OriginURL:      entry.OriginURL,
		ExternalID:     entry.ExternalID,
		ExternalSource: entry.ExternalSource,
		CoverImageURL:  entry.CoverImageURL,
		Metadata:       entry.Metadata,
		CreatedAt:      entry.CreatedAt,
	}
}

func printLibrary(cmd *cobra.Command, subject string, entries []library.Entry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No records for subject %s\n", subject)
		return
	}
	headers := []string{"#", "Type", "Title", "Creator", "Status", "Rating", "Source", "Added"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		rating := ""
		if entry.Rating != nil {
			rating = strconv.FormatFloat(*entry.Rating, 'f', 1, 64)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			entry.Type.String(),
			entry.Title,
			entry.Creator,
			string(entry.Status),
			rating,
			entry.ExternalSource,
			entry.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns, shouldColorize(out)))
	fmt.Fprintf(out, "%d records for subject %s\n", len(entries), subject)
}
