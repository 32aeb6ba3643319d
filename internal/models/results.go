package models

import "strings"

// KeywordResult holds ATS keywords grouped by category
type KeywordResult struct {
	Skills     []string `json:"skills"`
	Tools      []string `json:"tools"`
	Roles      []string `json:"roles"`
	SoftSkills []string `json:"soft_skills"`
	Suggested  []string `json:"suggested"`
}

// All returns every categorized keyword (suggested excluded) in category order
func (k KeywordResult) All() []string {
	all := make([]string, 0, len(k.Skills)+len(k.Tools)+len(k.Roles)+len(k.SoftSkills))
	all = append(all, k.Skills...)
	all = append(all, k.Tools...)
	all = append(all, k.Roles...)
	all = append(all, k.SoftSkills...)
	return all
}

// CopyText is the comma-joined list the sidebar puts on the clipboard
func (k KeywordResult) CopyText() string {
	return strings.Join(k.All(), ", ")
}

// SummaryResult holds bullet points summarizing a page
type SummaryResult struct {
	Bullets   []string `json:"bullets"`
	PageTitle string   `json:"page_title"`
}

// CopyText renders the bullets one per line with a bullet glyph
func (s SummaryResult) CopyText() string {
	lines := make([]string, len(s.Bullets))
	for i, b := range s.Bullets {
		lines[i] = "• " + b
	}
	return strings.Join(lines, "\n")
}

// PageContent is what the page text provider hands to the core
type PageContent struct {
	Text    string `json:"text"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Favicon string `json:"favicon,omitempty"`
}
