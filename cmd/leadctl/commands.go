package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
	"github.com/JonMunkholm/buyerleads/internal/core"
	"github.com/JonMunkholm/buyerleads/internal/store"
)

var errNoDatabase = errors.New("no database configured: set DATABASE_URL or pass --database-url")

// openService connects to the database and returns a service without rate
// limiting. The returned func closes the pool.
func openService(ctx context.Context, dbURL string) (*core.Service, func(), error) {
	if dbURL == "" {
		return nil, nil, errNoDatabase
	}
	pool, err := store.Connect(ctx, dbURL, store.PoolOptions{MaxConns: 4})
	if err != nil {
		return nil, nil, err
	}
	return core.NewService(store.New(pool), nil), pool.Close, nil
}

func migrateCmd(dbURL *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if *dbURL == "" {
				return errNoDatabase
			}
			if err := store.MigrateUp(*dbURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if *dbURL == "" {
				return errNoDatabase
			}
			steps, _ := cmd.Flags().GetInt("steps")
			if err := store.MigrateDown(*dbURL, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s).\n", max(steps, 1))
			return nil
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an import file without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			report, err := core.CheckImport(filepath.Base(args[0]), data)
			if err != nil {
				return userError(err)
			}
			printReport(cmd.OutOrStdout(), report.ValidCount, report.TotalCount, report.Errors)
			if len(report.Errors) > 0 {
				return fmt.Errorf("%d of %d rows invalid", report.TotalCount-report.ValidCount, report.TotalCount)
			}
			return nil
		},
	}
}

// printReport lists each failing row with its field messages.
func printReport(w io.Writer, valid, total int, rows []buyer.RowError) {
	fmt.Fprintf(w, "%d of %d rows valid\n", valid, total)
	for _, row := range rows {
		fmt.Fprintf(w, "row %d:\n", row.Row)
		for _, fe := range row.Errors {
			fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
		}
	}
}

func parseOwner(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("owner")
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --owner %q: %w", raw, err)
	}
	return id, nil
}

func importCmd(dbURL *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or XLSX file as buyers owned by --owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwner(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			svc, closeFn, err := openService(cmd.Context(), *dbURL)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := svc.Import(cmd.Context(), owner, filepath.Base(args[0]), data)
			var batch *buyer.BatchValidationError
			if errors.As(err, &batch) {
				printReport(cmd.OutOrStdout(), batch.ValidCount, batch.TotalCount, batch.Rows)
				return errors.New("import rejected, no rows written")
			}
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d rows.\n", result.Imported, result.TotalCount)
			return nil
		},
	}
	cmd.Flags().String("owner", "", "user id that will own the imported buyers (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func exportCmd(dbURL *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write buyers to stdout as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwner(cmd)
			if err != nil {
				return err
			}
			formatName, _ := cmd.Flags().GetString("format")
			format, err := core.ParseFormat(formatName)
			if err != nil {
				return err
			}
			f, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}
			f.OwnerID = owner

			svc, closeFn, err := openService(cmd.Context(), *dbURL)
			if err != nil {
				return err
			}
			defer closeFn()

			return svc.Export(cmd.Context(), f, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("owner", "", "only export buyers owned by this user id")
	cmd.Flags().String("format", "csv", "output format (csv or xlsx)")
	cmd.Flags().String("search", "", "match name, email or phone")
	cmd.Flags().String("city", "", "city code")
	cmd.Flags().String("status", "", "status code")
	return cmd
}

// filterFromFlags builds a filter, rejecting unknown codes.
func filterFromFlags(cmd *cobra.Command) (buyer.Filter, error) {
	search, _ := cmd.Flags().GetString("search")
	city, _ := cmd.Flags().GetString("city")
	status, _ := cmd.Flags().GetString("status")

	if city != "" && !buyer.IsValidCode(buyer.FieldCity, city) {
		return buyer.Filter{}, fmt.Errorf("unknown city %q, want one of %v", city, buyer.CodesFor(buyer.FieldCity))
	}
	if status != "" && !buyer.IsValidCode(buyer.FieldStatus, status) {
		return buyer.Filter{}, fmt.Errorf("unknown status %q, want one of %v", status, buyer.CodesFor(buyer.FieldStatus))
	}
	return buyer.Filter{Search: search, City: buyer.City(city), Status: buyer.Status(status)}, nil
}

// userError pairs the catalog message with the underlying cause.
func userError(err error) error {
	return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
}
