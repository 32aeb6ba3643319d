package models

import "time"

// ChatRole identifies who wrote a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// MaxChatHistory is how many messages the history keeps
const MaxChatHistory = 50

// ChatMessage is one entry in the chat log
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Intent is the classified purpose of a chat utterance
type Intent string

const (
	IntentListTasks       Intent = "list_tasks"
	IntentSummarize       Intent = "summarize"
	IntentExtractKeywords Intent = "extract_keywords"
	IntentMarkDone        Intent = "mark_done"
	IntentDeleteTask      Intent = "delete_task"
	IntentStartTimer      Intent = "start_timer"
	IntentPauseTimer      Intent = "pause_timer"
	IntentResumeTimer     Intent = "resume_timer"
	IntentStopTimer       Intent = "stop_timer"
	IntentTimerStatus     Intent = "timer_status"
	IntentDarkMode        Intent = "enable_dark_mode"
	IntentLightMode       Intent = "enable_light_mode"
	IntentToggleTheme     Intent = "toggle_theme"
	IntentHelp            Intent = "help"
	IntentUnknown         Intent = "unknown"
)

// ParsedCommand is the interpreter's output for one utterance
type ParsedCommand struct {
	Intent Intent `json:"intent"`
	Params string `json:"params,omitempty"`
}

// HasParams reports whether the command carried a free-text argument
func (c ParsedCommand) HasParams() bool {
	return c.Params != ""
}
