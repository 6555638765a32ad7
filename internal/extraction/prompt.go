package extraction

import (
	"fmt"
	"strings"

	"mediashelf/internal/content"
)

const systemPrompt = `You extract media a person has consumed from the text you are given.
Return JSON only, shaped as:
{"items":[{"type":"BOOK|VIDEO|GAME|MUSIC|CERTIFICATE","title":"original-language title","titleLocalized":"title as written in the input, if different","creator":"author, director, developer, or artist","creatorLocalized":"creator as written in the input, if different","review":"the person's own comments, verbatim","rating":4.5}],"error":""}
Rules:
- One entry per distinct work. Never invent works that are not mentioned.
- rating is 0 to 5 in steps of 0.5, or omitted when the input gives none.
- Leave fields empty rather than guessing.
- When nothing can be extracted, return {"items":[],"error":"<short reason for the user>"}.`

func buildTextPrompt(text, hint string) string {
	var b strings.Builder
	writeHint(&b, hint)
	b.WriteString("Input text:\n")
	b.WriteString(text)
	return b.String()
}

func buildPagePrompt(page Page, hint string, maxChars int) string {
	var b strings.Builder
	writeHint(&b, hint)
	fmt.Fprintf(&b, "Source URL: %s\n", page.URL)
	if page.Title != "" {
		fmt.Fprintf(&b, "Page title: %s\n", page.Title)
	}
	if page.Author != "" {
		fmt.Fprintf(&b, "Page author: %s\n", page.Author)
	}
	if page.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", page.Description)
	}
	if text := truncateRunes(page.Text, maxChars); text != "" {
		b.WriteString("Page text:\n")
		b.WriteString(text)
	}
	return b.String()
}

func writeHint(b *strings.Builder, hint string) {
	if t, ok := content.ParseType(hint); ok {
		fmt.Fprintf(b, "Expected content type: %s\n", t)
	}
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
