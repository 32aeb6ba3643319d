// Package summarizer turns raw page text into a short list of bullet points
// by scoring sentences with fixed heuristics.
package summarizer

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/focusdock/internal/models"
)

// NoContentBullet is returned when the text has no usable sentences
const NoContentBullet = "Unable to extract meaningful content from this page."

const (
	minSentenceLength = 21
	maxSentenceLength = 299
	maxBullets        = 10
	minBullets        = 3
	fallbackBullets   = 6

	// dedupNumerator/dedupDenominator is the word overlap ratio at which a
	// bullet counts as a repeat of an earlier one.
	dedupNumerator   = 7
	dedupDenominator = 10
)

// keyPhrases mark sentences that usually carry the point of a page.
// The list and the weights in score are tuned by hand; keep them stable so
// output stays reproducible.
var keyPhrases = []string{
	"important", "key", "main", "primary", "significant", "essential",
	"you will", "we are", "this is", "includes", "features",
	"requirement", "responsibility", "benefit", "offer",
	"must have", "looking for", "ideal candidate",
}

var (
	sentenceBreak  = regexp.MustCompile(`[.!?]+`)
	digit          = regexp.MustCompile(`\d`)
	leadingBullet  = regexp.MustCompile(`^\s*[-•*]\s*`)
	leadingNumeral = regexp.MustCompile(`^\s*\d+[.)]\s*`)
)

type candidate struct {
	sentence string
	score    int
	index    int
}

// Summarize picks up to ten representative sentences from text, in reading
// order. The result depends only on its inputs.
func Summarize(text, pageTitle string) models.SummaryResult {
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return models.SummaryResult{
			Bullets:   []string{NoContentBullet},
			PageTitle: pageTitle,
		}
	}

	scored := make([]candidate, len(sentences))
	for i, s := range sentences {
		scored[i] = candidate{sentence: s, score: score(s, i), index: i}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > maxBullets {
		scored = scored[:maxBullets]
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].index < scored[j].index
	})

	bullets := make([]string, 0, len(scored))
	for _, c := range scored {
		bullets = append(bullets, formatBullet(c.sentence))
	}

	unique := dedupe(bullets)
	if len(unique) > maxBullets {
		unique = unique[:maxBullets]
	}

	if len(unique) < minBullets {
		n := min(fallbackBullets, len(sentences))
		fallback := make([]string, 0, n)
		for _, s := range sentences[:n] {
			fallback = append(fallback, punctuate(capitalize(strings.TrimSpace(s))))
		}
		return models.SummaryResult{Bullets: fallback, PageTitle: pageTitle}
	}

	return models.SummaryResult{Bullets: unique, PageTitle: pageTitle}
}

// Normalize collapses every whitespace run (newlines included) to a single
// space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Sentences returns the sentence candidates of text that are long enough to
// be worth scoring.
func Sentences(text string) []string {
	var out []string
	for _, part := range sentenceBreak.Split(Normalize(text), -1) {
		s := strings.TrimSpace(part)
		n := utf8.RuneCountInString(s)
		if n >= minSentenceLength && n <= maxSentenceLength {
			out = append(out, s)
		}
	}
	return out
}

func score(sentence string, index int) int {
	total := 0

	switch {
	case index < 3:
		total += 3
	case index < 10:
		total += 2
	default:
		total++
	}

	if n := utf8.RuneCountInString(sentence); n > 50 && n < 200 {
		total += 2
	}

	if digit.MatchString(sentence) {
		total++
	}

	lower := strings.ToLower(sentence)
	for _, phrase := range keyPhrases {
		if strings.Contains(lower, phrase) {
			total += 2
			break
		}
	}

	if len(strings.Split(sentence, " ")) < 5 {
		total -= 2
	}

	if noiseCount(sentence) > 5 {
		total--
	}

	return total
}

// noiseCount counts characters outside [a-zA-Z0-9], whitespace and .,!?
func noiseCount(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case unicode.IsSpace(r):
		case r == '.', r == ',', r == '!', r == '?':
		default:
			n++
		}
	}
	return n
}

func formatBullet(sentence string) string {
	b := leadingBullet.ReplaceAllString(sentence, "")
	b = leadingNumeral.ReplaceAllString(b, "")
	b = strings.TrimSpace(b)
	return punctuate(capitalize(b))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func punctuate(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

// dedupe drops any bullet whose words mostly appear in an earlier kept bullet
func dedupe(bullets []string) []string {
	var kept, keptLower []string
	for _, b := range bullets {
		lower := strings.ToLower(b)
		words := strings.Split(lower, " ")
		repeat := false
		for _, prev := range keptLower {
			overlap := 0
			for _, w := range words {
				if strings.Contains(prev, w) {
					overlap++
				}
			}
			if overlap*dedupDenominator >= len(words)*dedupNumerator {
				repeat = true
				break
			}
		}
		if !repeat {
			kept = append(kept, b)
			keptLower = append(keptLower, lower)
		}
	}
	return kept
}
