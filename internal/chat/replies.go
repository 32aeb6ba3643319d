package chat

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/timer"
)

const (
	welcomeReply       = "👋 Hi! I'm FocusDock assistant. I can help you manage tasks, run timers, summarize pages, and more. Try 'help' to see all commands!"
	clearedReply       = "🧹 Chat history cleared! How can I help you?"
	noSummaryReply     = "❌ Not enough content to summarize on this page."
	noKeywordsReply    = "❌ No relevant keywords found on this page."
	doneUsageReply     = "❌ Please specify which task to mark as done. Example: 'done 1' or 'done task title'"
	deleteUsageReply   = "❌ Please specify which task to delete. Example: 'delete 1' or 'delete task title'"
	pausedAlready      = "⏸️ Timer is already paused. Say 'resume timer' to continue."
	nothingToPause     = "❌ No timer is running. Say 'start timer for 25 minutes' to begin."
	nothingToResume    = "❌ No timer to resume. Say 'start timer for 25 minutes' to begin."
	nothingToStop      = "❌ No timer is running."
	stoppedReply       = "⏹️ **Timer stopped.** Ready for your next focus session!"
	darkReply          = "🌙 **Dark mode enabled!** Easy on the eyes."
	lightReply         = "☀️ **Light mode enabled!** Bright and clear."
	switchedDarkReply  = "🌙 **Switched to dark mode!**"
	switchedLightReply = "☀️ **Switched to light mode!**"
	unknownReply       = "🤔 I'm not sure what you mean. Try 'help' to see what I can do, or use the quick commands below!"
	noTasksReply       = "You don't have any tasks yet. Add a page to your to-do list using the To-Do tab!"
	noTimerStatus      = "⏱️ No timer running. Say 'start timer for 25 minutes' to begin."
	taskErrorReply     = "❌ I couldn't reach your task list right now. Please try again."
	timerErrorReply    = "❌ I couldn't start the timer. Try 'start timer for 25 minutes'."
)

// HelpMessage lists every command the assistant understands
const HelpMessage = `🤖 **FocusDock Commands**

📋 **Tasks:**
• "show my tasks" - List all tasks
• "list todos" - Same as above

📝 **Summarize:**
• "summarize" - Summarize current page
• "tldr" - Same as above

🔍 **Keywords:**
• "ats keywords" - Extract job keywords
• "extract keywords" - Same as above

✅ **Manage:**
• "done [task name/number]" - Mark task complete
• "delete [task name/number]" - Remove a task

⏱️ **Timer:**
• "start timer for 25 minutes" - Start a focus session
• "pause timer" / "resume timer" - Pause or continue
• "stop timer" - End the session
• "timer status" - Time remaining

🌙 **Theme:**
• "dark mode" / "light mode" - Pick a theme
• "toggle theme" - Switch themes

💡 **Tips:**
• Use the tabs above for more features
• Click quick commands below for fast access`

const (
	notePreviewRunes  = 50
	maxCompletedShown = 3
	replySkills       = 8
	replyTools        = 6
	replyRoles        = 4
	replySoftSkills   = 4
)

func priorityGlyph(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "🔴"
	case models.PriorityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

// FormatTaskList renders the task overview. Open tasks are ordered by
// priority, newest first within a priority. Completed tasks are listed only
// when there are at most three of them.
func FormatTaskList(list []models.Task) string {
	if len(list) == 0 {
		return noTasksReply
	}

	open := models.OpenTasks(list)
	done := models.DoneTasks(list)
	sort.SliceStable(open, func(i, j int) bool {
		if ri, rj := open[i].Priority.Rank(), open[j].Priority.Rank(); ri != rj {
			return ri < rj
		}
		return open[i].CreatedAt.After(open[j].CreatedAt)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "📋 **Your Tasks** (%d open, %d done)\n\n", len(open), len(done))

	if len(open) > 0 {
		b.WriteString("**Open:**\n")
		for i, t := range open {
			fmt.Fprintf(&b, "%d. %s %s", i+1, priorityGlyph(t.Priority), t.Title)
			if t.Notes != "" {
				b.WriteString(" - " + truncate(t.Notes, notePreviewRunes))
			}
			b.WriteString("\n")
		}
	}

	if len(done) > 0 && len(done) <= maxCompletedShown {
		b.WriteString("\n**Completed:**\n")
		for _, t := range done {
			b.WriteString("✓ " + t.Title + "\n")
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func formatSummary(r models.SummaryResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 **Summary of \"%s\"**\n\n", r.PageTitle)
	b.WriteString(r.CopyText())
	return b.String()
}

func formatKeywords(r models.KeywordResult) string {
	var parts []string
	add := func(label string, items []string, n int) {
		if len(items) == 0 {
			return
		}
		parts = append(parts, fmt.Sprintf("**%s:** %s", label, strings.Join(items[:min(n, len(items))], ", ")))
	}
	add("Skills", r.Skills, replySkills)
	add("Tools", r.Tools, replyTools)
	add("Roles", r.Roles, replyRoles)
	add("Soft Skills", r.SoftSkills, replySoftSkills)
	return "🔍 **ATS Keywords Found:**\n\n" + strings.Join(parts, "\n")
}

func formatTimerStatus(s timer.Snapshot) string {
	clock := timer.FormatClock(s.RemainingSeconds)
	switch s.Status {
	case models.TimerStatusRunning:
		msg := fmt.Sprintf("⏱️ **Timer running:** %s remaining", clock)
		if s.LinkedTaskTitle != "" {
			msg += fmt.Sprintf(" on \"%s\"", s.LinkedTaskTitle)
		}
		return msg + "."
	case models.TimerStatusPaused:
		return fmt.Sprintf("⏸️ **Timer paused:** %s remaining.", clock)
	default:
		return noTimerStatus
	}
}

func taskNotFound(query string) string {
	return fmt.Sprintf("❌ Couldn't find a task matching \"%s\". Try 'show tasks' to see your task list.", query)
}
