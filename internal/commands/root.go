package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splitkit-dev/splitkit/internal/buildinfo"
	"github.com/splitkit-dev/splitkit/internal/logging"
	"github.com/splitkit-dev/splitkit/internal/trip"
)

const (
	envTrip     = "SPLITKIT_TRIP"
	envLogLevel = "SPLITKIT_LOG_LEVEL"
	dateFormat  = "2006-01-02"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	tripDir  string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "splitkit",
		Short:   "Split trip expenses and settle up with the fewest transfers",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.tripDir, "trip", envOr(envTrip, "."), "trip directory (env "+envTrip+")")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", envOr(envLogLevel, logging.DefaultLevel), "log level: debug, info, warn, error (env "+envLogLevel+")")

	rootCmd.AddCommand(
		newInitCommand(g),
		newMemberCommand(g),
		newExpenseCommand(g),
		newPayCommand(g),
		newBalancesCommand(g),
		newSettleCommand(g),
		newExportCommand(g),
		newImportCommand(g),
		newLogCommand(g),
	)

	return rootCmd
}

func (g *globals) logger() (*zap.Logger, error) {
	return logging.New(g.logLevel)
}

// open loads the trip named by --trip.
func (g *globals) open() (*trip.Trip, error) {
	logger, err := g.logger()
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(g.tripDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return trip.Open(dir, logger)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDate reads a YYYY-MM-DD flag; empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
