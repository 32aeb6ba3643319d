package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/analysis"
	"github.com/benvon/focusdock/internal/cache"
	"github.com/benvon/focusdock/internal/chat"
	"github.com/benvon/focusdock/internal/database"
	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/tasks"
	"github.com/benvon/focusdock/internal/theme"
	"github.com/benvon/focusdock/internal/timer"
)

const replHelp = "/help /history /clear /quit"

// NewChatCmd creates the interactive chat command
func NewChatCmd() *cobra.Command {
	var (
		pageFile string
		pageURL  string
		memory   bool
		minutes  int
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the FocusDock assistant",
		Long:  "Start an interactive session. Tasks, chat history, the timer and the theme persist in the database unless --memory is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			zapLogger, err := newLogger(cmd)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}

			var page chat.PageSource
			if pageFile != "" {
				flags := pageFlags{url: pageURL}
				content, err := flags.load(cmd, []string{pageFile})
				if err != nil {
					return err
				}
				page = chat.StaticPage(content)
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "bye",
			})
			if err != nil {
				return fmt.Errorf("start readline: %w", err)
			}
			defer func() {
				_ = rl.Close()
			}()

			var open opener = databaseOpener(cmd)
			if memory {
				open = memoryOpener
			}
			s, err := newSession(cmd.Context(), open, sessionOptions{
				logger:         zapLogger,
				out:            rl.Stdout(),
				defaultMinutes: minutes,
			})
			if err != nil {
				return err
			}
			defer s.close()

			return s.run(cmd.Context(), rl, page)
		},
	}
	cmd.Flags().StringVar(&pageFile, "page", "", "HTML or text file to treat as the current page")
	cmd.Flags().StringVar(&pageURL, "url", "", "URL of the current page")
	cmd.Flags().BoolVar(&memory, "memory", false, "Keep everything in memory for this session only")
	cmd.Flags().IntVar(&minutes, "minutes", 25, "Default focus timer length")
	return cmd
}

// stores is the persistence a chat session runs on
type stores struct {
	tasks    tasks.Store
	history  chat.HistoryStore
	timer    timer.StateStore
	theme    theme.Store
	shutdown func()
}

type opener func(ctx context.Context) (stores, error)

func memoryOpener(context.Context) (stores, error) {
	return stores{
		tasks:    tasks.NewMemoryStore(),
		history:  chat.NewMemoryHistory(),
		timer:    timer.NewMemoryStore(),
		shutdown: func() {},
	}, nil
}

func databaseOpener(cmd *cobra.Command) opener {
	return func(context.Context) (stores, error) {
		db, err := openDatabase(cmd)
		if err != nil {
			return stores{}, err
		}
		settings := database.NewSettingsRepository(db)
		return stores{
			tasks:   database.NewTaskRepository(db),
			history: database.NewChatHistoryRepository(db),
			timer:   settings,
			theme:   settings,
			shutdown: func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			},
		}, nil
	}
}

type sessionOptions struct {
	logger         *zap.Logger
	out            io.Writer
	defaultMinutes int
	timerOpts      []timer.Option
}

type session struct {
	orchestrator *chat.Orchestrator
	timer        *timer.Machine
	out          io.Writer
	shutdown     func()
}

func newSession(ctx context.Context, open opener, opts sessionOptions) (*session, error) {
	st, err := open(ctx)
	if err != nil {
		return nil, err
	}
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}
	if opts.out == nil {
		opts.out = io.Discard
	}

	s := &session{out: opts.out, shutdown: st.shutdown}

	timerOpts := append([]timer.Option{
		timer.WithStore(st.timer),
		timer.WithLogger(opts.logger),
		timer.OnFinish(s.announceFinish),
	}, opts.timerOpts...)
	s.timer = timer.New(timerOpts...)
	s.timer.Restore(ctx)

	themes := theme.NewManager(st.theme, opts.logger)
	themes.Restore(ctx)

	taskService := tasks.NewService(st.tasks)
	s.orchestrator = chat.NewOrchestrator(chat.Deps{
		Tasks:               taskService,
		Analyzer:            analysis.NewService(cache.NewMemory()),
		Timer:               s.timer,
		Theme:               themes,
		History:             st.history,
		Logger:              opts.logger,
		DefaultTimerMinutes: opts.defaultMinutes,
	})
	return s, nil
}

func (s *session) close() {
	s.timer.Close()
	s.shutdown()
}

func (s *session) announceFinish(snap timer.Snapshot) {
	msg := "⏰ Focus session complete!"
	if snap.LinkedTaskTitle != "" {
		msg += " Task: " + snap.LinkedTaskTitle
	}
	fmt.Fprintln(s.out, msg)
}

func (s *session) run(ctx context.Context, rl *readline.Instance, page chat.PageSource) error {
	for _, msg := range s.orchestrator.History(ctx) {
		s.print(msg)
	}
	fmt.Fprintf(s.out, "Commands: %s\n", replHelp)

	for {
		line, err := rl.Readline()
		if isReadTermination(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if s.handleLine(ctx, line, page) {
			return nil
		}
	}
}

// handleLine runs one line of input and reports whether the session should end
func (s *session) handleLine(ctx context.Context, line string, page chat.PageSource) (quit bool) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if strings.HasPrefix(input, "/") {
		switch strings.ToLower(strings.Fields(input)[0]) {
		case "/quit", "/exit", "/q":
			return true
		case "/clear":
			for _, msg := range s.orchestrator.ClearHistory(ctx) {
				s.print(msg)
			}
		case "/history":
			for _, msg := range s.orchestrator.History(ctx) {
				s.print(msg)
			}
		case "/help":
			fmt.Fprintf(s.out, "Commands: %s\nType 'help' to see what the assistant understands.\n", replHelp)
		default:
			fmt.Fprintf(s.out, "unknown command: %s\n", input)
		}
		return false
	}

	reply, err := s.orchestrator.Handle(ctx, input, page)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	s.print(reply)
	return false
}

func (s *session) print(msg models.ChatMessage) {
	prefix := "🤖"
	if msg.Role == models.ChatRoleUser {
		prefix = "🙂"
	}
	fmt.Fprintf(s.out, "%s %s\n", prefix, msg.Content)
}

func isReadTermination(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}
