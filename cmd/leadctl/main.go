// Command leadctl administers the buyer lead database: schema migrations,
// offline validation of import files, bulk import and export.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/buyerleads/internal/logging"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		dbURL    string
	)
	rootCmd := &cobra.Command{
		Use:           "leadctl",
		Short:         "Buyer lead administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, "text")
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "database-url", firstEnv("DATABASE_URL", "DB_URL"),
		"PostgreSQL connection URL (defaults to $DATABASE_URL)")

	rootCmd.AddCommand(
		migrateCmd(&dbURL),
		validateCmd(),
		importCmd(&dbURL),
		exportCmd(&dbURL),
	)
	return rootCmd
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
