package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/config"
	"github.com/benvon/focusdock/internal/database"
	"github.com/benvon/focusdock/internal/logger"
)

// Persistent flag names
const (
	DatabaseFlag = "database"
	DebugFlag    = "debug"
)

// NewRootCmd builds the focusdock command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "focusdock",
		Short:         "FocusDock from the terminal",
		Long:          "Summarize pages, extract ATS keywords, manage saved tasks and chat with the FocusDock assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(DatabaseFlag, "", "Database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().Bool(DebugFlag, false, "Enable debug logging")

	rootCmd.AddCommand(NewSummarizeCmd())
	rootCmd.AddCommand(NewKeywordsCmd())
	rootCmd.AddCommand(NewTasksCmd())
	rootCmd.AddCommand(NewChatCmd())
	return rootCmd
}

// openDatabase connects to the --database URL, falling back to configuration
func openDatabase(cmd *cobra.Command) (*database.DB, error) {
	databaseURL, _ := cmd.Flags().GetString(DatabaseFlag)
	if databaseURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		databaseURL = cfg.DatabaseURL
	}

	db, err := database.New(cmd.Context(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// newLogger returns a console logger when --debug is set and a nop logger
// otherwise, so command output stays clean.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool(DebugFlag)
	if !debug {
		return zap.NewNop(), nil
	}
	return logger.NewDevelopmentLogger(true)
}
