// Package command maps free-form chat input to an intent using an ordered
// list of anchored, case-insensitive rules.
package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/benvon/focusdock/internal/models"
)

// DefaultTimerMinutes is used when a timer request names no usable duration
const DefaultTimerMinutes = 25

type rule struct {
	pattern *regexp.Regexp
	intent  models.Intent
}

func r(pattern string, intent models.Intent) rule {
	return rule{pattern: regexp.MustCompile(`(?i)` + pattern), intent: intent}
}

// rules are evaluated top to bottom and the first match wins, so ambiguous
// input resolves by position in this list.
var rules = []rule{
	r(`^(show|list|get|view)\s*(my\s*)?(tasks?|todos?|to-?dos?)`, models.IntentListTasks),
	r(`^(tasks?|todos?|to-?dos?)\s*(list)?$`, models.IntentListTasks),
	r(`^what('s| is| are)\s*(my\s*)?(tasks?|todos?)`, models.IntentListTasks),

	r(`^summarize?\s*(this\s*)?(page)?`, models.IntentSummarize),
	r(`^(get\s*)?summary`, models.IntentSummarize),
	r(`^tldr`, models.IntentSummarize),

	r(`^(ats|keywords?|extract)\s*(words?|keywords?)?`, models.IntentExtractKeywords),
	r(`^(get|show|find)\s*(ats\s*)?(keywords?)`, models.IntentExtractKeywords),
	r(`^job\s*keywords?`, models.IntentExtractKeywords),

	r(`^(mark\s*)?done\s+(.+)`, models.IntentMarkDone),
	r(`^complete\s+(.+)`, models.IntentMarkDone),
	r(`^finish\s+(.+)`, models.IntentMarkDone),

	r(`^delete\s+(.+)`, models.IntentDeleteTask),
	r(`^remove\s+(.+)`, models.IntentDeleteTask),

	r(`^(start|begin|set)\s*(a\s*)?(focus\s*)?(timer|pomodoro|session)`, models.IntentStartTimer),
	r(`^pomodoro`, models.IntentStartTimer),
	r(`^focus(\s+for)?\s+\d+`, models.IntentStartTimer),
	r(`^timer\s+(for\s+)?\d+`, models.IntentStartTimer),

	r(`^pause(\s*(the\s*)?timer)?`, models.IntentPauseTimer),

	r(`^(resume|continue|unpause)(\s*(the\s*)?timer)?`, models.IntentResumeTimer),

	r(`^(stop|cancel|end)\s*(the\s*)?(timer|pomodoro|session)`, models.IntentStopTimer),

	r(`^timer\s*status`, models.IntentTimerStatus),
	r(`^(how\s*much\s*)?time\s*left`, models.IntentTimerStatus),
	r(`^timer$`, models.IntentTimerStatus),

	r(`^(enable|use|turn\s*on|switch\s*to|set)\s*dark(\s*(mode|theme))?`, models.IntentDarkMode),
	r(`^dark(\s*(mode|theme))?$`, models.IntentDarkMode),

	r(`^(enable|use|turn\s*on|switch\s*to|set)\s*light(\s*(mode|theme))?`, models.IntentLightMode),
	r(`^light(\s*(mode|theme))?$`, models.IntentLightMode),

	r(`^(toggle|switch|change)\s*(the\s*)?(theme|mode)`, models.IntentToggleTheme),

	r(`^help`, models.IntentHelp),
	r(`^what can you do`, models.IntentHelp),
	r(`^commands?`, models.IntentHelp),
}

// Parse classifies input. When the matching rule's last capture group
// captured something other than the whole match, it becomes Params.
func Parse(input string) models.ParsedCommand {
	trimmed := strings.TrimSpace(input)

	for _, rl := range rules {
		loc := rl.pattern.FindStringSubmatchIndex(trimmed)
		if loc == nil {
			continue
		}
		cmd := models.ParsedCommand{Intent: rl.intent}
		if n := len(loc) / 2; n > 1 {
			start, end := loc[2*(n-1)], loc[2*(n-1)+1]
			if start >= 0 {
				last := trimmed[start:end]
				if last != trimmed[loc[0]:loc[1]] {
					cmd.Params = last
				}
			}
		}
		return cmd
	}

	return models.ParsedCommand{Intent: models.IntentUnknown}
}

var firstNumber = regexp.MustCompile(`(\d+)\s*(minutes?)?`)

// ExtractTimerMinutes returns the first number in text, or
// DefaultTimerMinutes when there is none or it is not positive.
func ExtractTimerMinutes(text string) int {
	return ExtractTimerMinutesOr(text, DefaultTimerMinutes)
}

// ExtractTimerMinutesOr is ExtractTimerMinutes with a caller-chosen default
func ExtractTimerMinutesOr(text string, fallback int) int {
	m := firstNumber.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
