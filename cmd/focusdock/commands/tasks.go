package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/focusdock/internal/database"
	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/tasks"
	"github.com/benvon/focusdock/internal/validation"
)

// NewTasksCmd creates the tasks command with its subcommands
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage saved pages",
		Long:  "List, add, complete and delete the pages saved to the task list.",
	}
	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksAddCmd())
	cmd.AddCommand(newTasksToggleCmd())
	cmd.AddCommand(newTasksDeleteCmd())
	return cmd
}

// withTasks opens the database for the length of fn
func withTasks(cmd *cobra.Command, fn func(svc *tasks.Service) error) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()
	return fn(tasks.NewService(database.NewTaskRepository(db)))
}

func newTasksListCmd() *cobra.Command {
	var status string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				if err := validation.ValidateTaskStatus(status); err != nil {
					return err
				}
			}
			return withTasks(cmd, func(svc *tasks.Service) error {
				list, err := svc.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list tasks: %w", err)
				}
				if asJSON {
					filtered := make([]models.Task, 0, len(list))
					for _, t := range list {
						if status == "" || string(t.Status) == status {
							filtered = append(filtered, t)
						}
					}
					return writeJSON(cmd.OutOrStdout(), filtered)
				}
				return writeTaskList(cmd.OutOrStdout(), list, models.TaskStatus(status))
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show open or done tasks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tasks as JSON")
	return cmd
}

// writeTaskList numbers tasks by their position in the full list so the
// numbers work as queries for toggle and delete even when filtered.
func writeTaskList(w io.Writer, list []models.Task, status models.TaskStatus) error {
	var b strings.Builder
	shown := 0
	for i, t := range list {
		if status != "" && t.Status != status {
			continue
		}
		shown++
		check := " "
		if !t.IsOpen() {
			check = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] %s (%s %s)", i+1, check, t.Title, t.Priority, t.Priority.Label())
		if t.DueDate != "" {
			fmt.Fprintf(&b, " due %s", t.DueDate)
		}
		fmt.Fprintf(&b, "\n   %s\n", t.URL)
	}
	if shown == 0 {
		b.WriteString("No tasks saved\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func newTasksAddCmd() *cobra.Command {
	var req tasks.SavePageRequest
	var priority string
	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Save a page to the task list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			req.Priority = models.Priority(priority)
			req.Title = validation.SanitizeText(req.Title)
			req.Notes = validation.SanitizeText(req.Notes)
			if err := validation.Struct(req); err != nil {
				return err
			}
			return withTasks(cmd, func(svc *tasks.Service) error {
				task, err := svc.SavePage(cmd.Context(), req)
				if err != nil {
					return fmt.Errorf("save task: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved \"%s\" (%s)\n", task.Title, task.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Task title (defaults to the URL)")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&priority, "priority", "", "P0, P1 or P2 (default P1)")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "Due date as YYYY-MM-DD")
	return cmd
}

func newTasksToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle QUERY",
		Short: "Flip a task between open and done",
		Long:  "Flip a task between open and done. QUERY is a task number, an id fragment or words from the title.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd, func(svc *tasks.Service) error {
				task, err := findTask(cmd, svc, args)
				if err != nil {
					return err
				}
				updated, err := svc.Toggle(cmd.Context(), task.ID)
				if err != nil {
					return fmt.Errorf("toggle task: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "\"%s\" is now %s\n", updated.Title, updated.Status)
				return err
			})
		},
	}
}

func newTasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete QUERY",
		Short: "Delete a saved task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd, func(svc *tasks.Service) error {
				task, err := findTask(cmd, svc, args)
				if err != nil {
					return err
				}
				if err := svc.Delete(cmd.Context(), task.ID); err != nil {
					return fmt.Errorf("delete task: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "🗑️ Deleted \"%s\"\n", task.Title)
				return err
			})
		},
	}
}

var errNoMatch = errors.New("no task matches")

func findTask(cmd *cobra.Command, svc *tasks.Service, args []string) (models.Task, error) {
	query := strings.Join(args, " ")
	task, ok, err := svc.Find(cmd.Context(), query)
	if err != nil {
		return models.Task{}, fmt.Errorf("find task: %w", err)
	}
	if !ok {
		return models.Task{}, fmt.Errorf("%w %q", errNoMatch, query)
	}
	return task, nil
}
