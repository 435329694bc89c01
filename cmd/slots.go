package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/availability"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/calendar"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/config"
)

func newSlotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots [date]",
		Short: "Print the open appointment slots for a date",
		Long: `Print the appointment slots still open on a date (YYYY-MM-DD), as the
receptionist would offer them. Defaults to today in the clinic's time zone
when no date is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := ""
			if len(args) == 1 {
				date = args[0]
			}
			return runSlots(cmd, date)
		},
	}
	return cmd
}

func runSlots(cmd *cobra.Command, date string) error {
	_ = godotenv.Load()

	// Keep operator output clean; only surface real problems.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cat, err := catalog.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build slot catalog: %w", err)
	}

	gateway, err := calendar.NewClient(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	if date == "" {
		date = time.Now().In(cat.Location()).Format(catalog.DateLayout)
	}

	engine := availability.NewEngine(gateway, cat, logger, nil)
	result := engine.Compute(cmd.Context(), date)

	slots := make([]string, 0, len(result.Slots))
	for _, s := range result.Slots {
		slots = append(slots, string(s))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Date, strings.Join(slots, ", "))
	if result.Degraded {
		fmt.Fprintln(cmd.OutOrStdout(), "(calendar unreachable, showing fallback slots)")
	}
	return nil
}
