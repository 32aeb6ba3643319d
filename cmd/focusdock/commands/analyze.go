package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/focusdock/internal/analysis"
	"github.com/benvon/focusdock/internal/cache"
	"github.com/benvon/focusdock/internal/keywords"
	"github.com/benvon/focusdock/internal/models"
)

// NewSummarizeCmd creates the summarize command
func NewSummarizeCmd() *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "summarize [FILE|-]",
		Short: "Summarize a page into key bullet points",
		Long:  "Summarize an HTML or plain text page read from FILE, or from stdin when FILE is - or omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := flags.load(cmd, args)
			if err != nil {
				return err
			}
			result, err := analysis.NewService(cache.Nop{}).Summarize(cmd.Context(), page)
			if err != nil {
				return fmt.Errorf("summarize page: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case flags.json:
				return writeJSON(out, result)
			case flags.copy:
				_, err = fmt.Fprintln(out, result.CopyText())
				return err
			}
			_, err = fmt.Fprintf(out, "📝 %s\n\n%s\n", result.PageTitle, result.CopyText())
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// NewKeywordsCmd creates the keywords command
func NewKeywordsCmd() *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "keywords [FILE|-]",
		Short: "Extract ATS keywords from a job posting",
		Long:  "Extract skills, tools, roles and soft skills from an HTML or plain text page read from FILE, or from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := flags.load(cmd, args)
			if err != nil {
				return err
			}
			result, err := analysis.NewService(cache.Nop{}).Keywords(cmd.Context(), page)
			if err != nil {
				return fmt.Errorf("extract keywords: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case flags.json:
				return writeJSON(out, result)
			case flags.copy:
				_, err = fmt.Fprintln(out, result.CopyText())
				return err
			}
			return writeKeywords(out, result)
		},
	}
	flags.register(cmd)
	return cmd
}

func writeKeywords(w io.Writer, r models.KeywordResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🎯 %d keywords found\n", keywords.Count(r))
	for _, group := range []struct {
		label string
		words []string
	}{
		{"Skills", r.Skills},
		{"Tools", r.Tools},
		{"Roles", r.Roles},
		{"Soft skills", r.SoftSkills},
		{"Suggested", r.Suggested},
	} {
		if len(group.words) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", group.label, strings.Join(group.words, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
