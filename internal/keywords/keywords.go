// Package keywords classifies ATS-style keywords found in page text into
// skills, tools, roles and soft skills, and suggests recurring phrases.
package keywords

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/orderedset"
)

// Per-category result caps.
const (
	MaxSkills     = 15
	MaxTools      = 10
	MaxRoles      = 8
	MaxSoftSkills = 8
	MaxSuggested  = 8

	ngramPool     = 10
	minTokenBytes = 3
)

var (
	skillMatchers     = compile(skillPatterns)
	toolMatchers      = compile(toolPatterns)
	roleMatchers      = compile(rolePatterns)
	softSkillMatchers = compile(softSkillPatterns)
)

func compile(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)\b` + p + `\b`)
	}
	return out
}

// Extract classifies the vocabulary terms present in text and suggests the
// most frequent two and three word phrases not already classified.
func Extract(text string) models.KeywordResult {
	lower := strings.ToLower(text)

	skills := matchAll(lower, skillMatchers)
	tools := matchAll(lower, toolMatchers)
	roles := matchAll(lower, roleMatchers)
	soft := matchAll(lower, softSkillMatchers)

	classified := make(map[string]struct{})
	for _, set := range []*orderedset.Set[string]{skills, tools, roles, soft} {
		for _, item := range set.Items() {
			classified[strings.ToLower(item)] = struct{}{}
		}
	}

	tokens := tokenize(text)
	suggested := make([]string, 0, MaxSuggested)
	for _, phrase := range append(topNGrams(tokens, 2), topNGrams(tokens, 3)...) {
		if len(suggested) == MaxSuggested {
			break
		}
		if _, ok := classified[strings.ToLower(phrase)]; ok {
			continue
		}
		suggested = append(suggested, phrase)
	}

	return models.KeywordResult{
		Skills:     skills.Head(MaxSkills),
		Tools:      tools.Head(MaxTools),
		Roles:      roles.Head(MaxRoles),
		SoftSkills: soft.Head(MaxSoftSkills),
		Suggested:  suggested,
	}
}

// Count is the number of classified keywords. Suggestions are not counted.
func Count(r models.KeywordResult) int {
	return len(r.Skills) + len(r.Tools) + len(r.Roles) + len(r.SoftSkills)
}

func matchAll(lower string, matchers []*regexp.Regexp) *orderedset.Set[string] {
	set := orderedset.New[string]()
	for _, re := range matchers {
		for _, m := range re.FindAllString(lower, -1) {
			set.Add(displayCase(m))
		}
	}
	return set
}

// displayCase upper-cases the first letter and lower-cases the rest.
func displayCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func titleWord(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func isWordByte(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// tokenize lower-cases text, turns punctuation into spaces and keeps tokens
// longer than two characters.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if isWordByte(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	var tokens []string
	for _, f := range strings.Fields(cleaned) {
		if len(f) >= minTokenBytes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

type ngramCount struct {
	phrase string
	count  int
}

// topNGrams returns the ten most frequent n-word phrases, title-cased. Ties
// keep first-seen order.
func topNGrams(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	index := make(map[string]int)
	var counts []ngramCount
	for i := 0; i+n <= len(tokens); i++ {
		phrase := strings.Join(tokens[i:i+n], " ")
		if at, ok := index[phrase]; ok {
			counts[at].count++
			continue
		}
		index[phrase] = len(counts)
		counts = append(counts, ngramCount{phrase: phrase, count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	if len(counts) > ngramPool {
		counts = counts[:ngramPool]
	}

	out := make([]string, len(counts))
	for i, c := range counts {
		words := strings.Split(c.phrase, " ")
		for j, w := range words {
			words[j] = titleWord(w)
		}
		out[i] = strings.Join(words, " ")
	}
	return out
}
