// Package chat is the rule-based assistant. An Orchestrator takes one
// utterance at a time, classifies it and performs the matching action on
// the task list, the timer, the theme or the current page.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/analysis"
	"github.com/benvon/focusdock/internal/command"
	"github.com/benvon/focusdock/internal/logger"
	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/tasks"
	"github.com/benvon/focusdock/internal/timer"
)

// ErrEmptyMessage is returned by Handle for blank input
var ErrEmptyMessage = errors.New("message is empty")

// TaskManager is the subset of the task service the assistant drives
type TaskManager interface {
	List(ctx context.Context) ([]models.Task, error)
	MarkDone(ctx context.Context, id string) (models.Task, error)
	Delete(ctx context.Context, id string) error
}

// Analyzer produces summaries and keywords for a page. Implementations must
// analyze the given text rather than serve an earlier result for the URL.
type Analyzer interface {
	Summarize(ctx context.Context, page models.PageContent) (models.SummaryResult, error)
	Keywords(ctx context.Context, page models.PageContent) (models.KeywordResult, error)
}

// Timer is the focus timer as seen by the assistant
type Timer interface {
	State() timer.Snapshot
	Start(ctx context.Context, minutes int, taskID, taskTitle string) (timer.Snapshot, error)
	Pause(ctx context.Context) timer.Snapshot
	Resume(ctx context.Context) timer.Snapshot
	Stop(ctx context.Context) timer.Snapshot
}

// ThemeSetter changes the sidebar theme
type ThemeSetter interface {
	Set(ctx context.Context, t models.Theme) (models.Theme, error)
	Toggle(ctx context.Context) models.Theme
}

// Deps wires an Orchestrator to the objects it acts on
type Deps struct {
	Tasks    TaskManager
	Analyzer Analyzer
	Timer    Timer
	Theme    ThemeSetter
	History  HistoryStore
	Logger   *zap.Logger

	// DefaultTimerMinutes applies when "start timer" names no duration
	DefaultTimerMinutes int
}

// Orchestrator is the rule-based chat assistant. It handles one utterance at
// a time.
type Orchestrator struct {
	mu sync.Mutex

	tasks          TaskManager
	analyzer       Analyzer
	timer          Timer
	theme          ThemeSetter
	history        HistoryStore
	logger         *zap.Logger
	defaultMinutes int

	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates an orchestrator. Nil history and logger fall back
// to an in-memory log and a no-op logger.
func NewOrchestrator(d Deps) *Orchestrator {
	o := &Orchestrator{
		tasks:          d.Tasks,
		analyzer:       d.Analyzer,
		timer:          d.Timer,
		theme:          d.Theme,
		history:        d.History,
		logger:         d.Logger,
		defaultMinutes: d.DefaultTimerMinutes,
		now:            time.Now,
		newID:          func() string { return uuid.New().String() },
	}
	if o.history == nil {
		o.history = NewMemoryHistory()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.defaultMinutes <= 0 {
		o.defaultMinutes = command.DefaultTimerMinutes
	}
	return o
}

// Handle processes one utterance and returns the assistant's reply. Both the
// utterance and the reply are appended to the history. page may be nil when
// no page is open.
func (o *Orchestrator) Handle(ctx context.Context, input string, page PageSource) (models.ChatMessage, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.append(ctx, o.message(models.ChatRoleUser, text))

	cmd := command.Parse(text)
	o.logger.Debug("chat_command_parsed",
		zap.String("intent", string(cmd.Intent)),
		zap.String("params", logger.SanitizeChatText(cmd.Params)))

	reply := o.message(models.ChatRoleAssistant, o.dispatch(ctx, cmd, text, page))
	o.append(ctx, reply)
	return reply, nil
}

// History returns the chat log, seeding the welcome message when it is empty
func (o *Orchestrator) History(ctx context.Context) []models.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()

	list, err := o.history.List(ctx)
	if err != nil {
		o.logger.Warn("failed_to_load_chat_history", zap.Error(err))
		list = nil
	}
	if len(list) > 0 {
		return list
	}

	welcome := o.message(models.ChatRoleAssistant, welcomeReply)
	o.append(ctx, welcome)
	return []models.ChatMessage{welcome}
}

// ClearHistory empties the log and seeds the cleared message
func (o *Orchestrator) ClearHistory(ctx context.Context) []models.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.history.Clear(ctx); err != nil {
		o.logger.Warn("failed_to_clear_chat_history", zap.Error(err))
	}
	cleared := o.message(models.ChatRoleAssistant, clearedReply)
	o.append(ctx, cleared)
	return []models.ChatMessage{cleared}
}

func (o *Orchestrator) message(role models.ChatRole, content string) models.ChatMessage {
	return models.ChatMessage{
		ID:        o.newID(),
		Role:      role,
		Content:   content,
		Timestamp: o.now().UTC(),
	}
}

func (o *Orchestrator) append(ctx context.Context, msg models.ChatMessage) {
	if err := o.history.Append(ctx, msg); err != nil {
		o.logger.Warn("failed_to_append_chat_message",
			zap.String("role", string(msg.Role)),
			zap.Error(err))
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, cmd models.ParsedCommand, text string, page PageSource) string {
	switch cmd.Intent {
	case models.IntentListTasks:
		list, ok := o.listTasks(ctx)
		if !ok {
			return taskErrorReply
		}
		return FormatTaskList(list)

	case models.IntentSummarize:
		return o.summarize(ctx, page)

	case models.IntentExtractKeywords:
		return o.extractKeywords(ctx, page)

	case models.IntentMarkDone:
		if !cmd.HasParams() {
			return doneUsageReply
		}
		return o.withTask(ctx, cmd.Params, func(t models.Task) string {
			if _, err := o.tasks.MarkDone(ctx, t.ID); err != nil {
				o.logger.Warn("failed_to_mark_task_done", zap.String("task_id", t.ID), zap.Error(err))
				return taskErrorReply
			}
			return fmt.Sprintf("✅ Marked \"%s\" as done!", t.Title)
		})

	case models.IntentDeleteTask:
		if !cmd.HasParams() {
			return deleteUsageReply
		}
		return o.withTask(ctx, cmd.Params, func(t models.Task) string {
			if err := o.tasks.Delete(ctx, t.ID); err != nil {
				o.logger.Warn("failed_to_delete_task", zap.String("task_id", t.ID), zap.Error(err))
				return taskErrorReply
			}
			return fmt.Sprintf("🗑️ Deleted \"%s\"", t.Title)
		})

	case models.IntentStartTimer:
		return o.startTimer(ctx, text)

	case models.IntentPauseTimer:
		switch o.timer.State().Status {
		case models.TimerStatusPaused:
			return pausedAlready
		case models.TimerStatusStopped:
			return nothingToPause
		}
		s := o.timer.Pause(ctx)
		return fmt.Sprintf("⏸️ **Timer paused** at %s. Say 'resume timer' when ready.", timer.FormatClock(s.RemainingSeconds))

	case models.IntentResumeTimer:
		state := o.timer.State()
		switch state.Status {
		case models.TimerStatusRunning:
			return fmt.Sprintf("▶️ Timer is already running! %s remaining.", timer.FormatClock(state.RemainingSeconds))
		case models.TimerStatusStopped:
			return nothingToResume
		}
		s := o.timer.Resume(ctx)
		return fmt.Sprintf("▶️ **Timer resumed!** %s remaining. Stay focused!", timer.FormatClock(s.RemainingSeconds))

	case models.IntentStopTimer:
		if o.timer.State().Status == models.TimerStatusStopped {
			return nothingToStop
		}
		o.timer.Stop(ctx)
		return stoppedReply

	case models.IntentTimerStatus:
		return formatTimerStatus(o.timer.State())

	case models.IntentDarkMode:
		o.setTheme(ctx, models.ThemeDark)
		return darkReply

	case models.IntentLightMode:
		o.setTheme(ctx, models.ThemeLight)
		return lightReply

	case models.IntentToggleTheme:
		if o.theme.Toggle(ctx) == models.ThemeDark {
			return switchedDarkReply
		}
		return switchedLightReply

	case models.IntentHelp:
		return HelpMessage

	default:
		return unknownReply
	}
}

func (o *Orchestrator) listTasks(ctx context.Context) ([]models.Task, bool) {
	list, err := o.tasks.List(ctx)
	if err != nil {
		o.logger.Warn("failed_to_list_tasks", zap.Error(err))
		return nil, false
	}
	return list, true
}

func (o *Orchestrator) withTask(ctx context.Context, query string, act func(models.Task) string) string {
	list, ok := o.listTasks(ctx)
	if !ok {
		return taskErrorReply
	}
	t, found := tasks.Find(query, list)
	if !found {
		return taskNotFound(query)
	}
	return act(t)
}

func (o *Orchestrator) currentPage(ctx context.Context, page PageSource) models.PageContent {
	if page == nil {
		return models.PageContent{}
	}
	content, err := page.CurrentPage(ctx)
	if err != nil {
		o.logger.Warn("failed_to_read_page", zap.Error(err))
		return models.PageContent{}
	}
	return content
}

func (o *Orchestrator) summarize(ctx context.Context, page PageSource) string {
	result, err := o.analyzer.Summarize(ctx, o.currentPage(ctx, page))
	if err != nil {
		if !errors.Is(err, analysis.ErrInsufficientContent) {
			o.logger.Warn("failed_to_summarize_page", zap.Error(err))
		}
		return noSummaryReply
	}
	return formatSummary(result)
}

func (o *Orchestrator) extractKeywords(ctx context.Context, page PageSource) string {
	result, err := o.analyzer.Keywords(ctx, o.currentPage(ctx, page))
	if err != nil {
		if !errors.Is(err, analysis.ErrInsufficientContent) && !errors.Is(err, analysis.ErrNoKeywords) {
			o.logger.Warn("failed_to_extract_keywords", zap.Error(err))
		}
		return noKeywordsReply
	}
	return formatKeywords(result)
}

func (o *Orchestrator) startTimer(ctx context.Context, text string) string {
	if state := o.timer.State(); state.Status == models.TimerStatusRunning {
		return fmt.Sprintf("⏱️ Timer is already running! %s remaining. Say 'pause timer' or 'stop timer' first.",
			timer.FormatClock(state.RemainingSeconds))
	}

	minutes := command.ExtractTimerMinutesOr(text, o.defaultMinutes)
	if _, err := o.timer.Start(ctx, minutes, "", ""); err != nil {
		o.logger.Warn("failed_to_start_timer", zap.Int("minutes", minutes), zap.Error(err))
		return timerErrorReply
	}
	return fmt.Sprintf("⏱️ **Timer started!** %d minutes of focus time. You've got this! 💪", minutes)
}

func (o *Orchestrator) setTheme(ctx context.Context, t models.Theme) {
	if _, err := o.theme.Set(ctx, t); err != nil {
		o.logger.Warn("failed_to_set_theme", zap.String("theme", string(t)), zap.Error(err))
	}
}
