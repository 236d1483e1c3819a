package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/splitkit-dev/splitkit/internal/trip"
)

func newInitCommand(g *globals) *cobra.Command {
	var name string
	var memberNames []string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a new trip",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := g.tripDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(g, absDir, name, memberNames)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "trip name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringArrayVar(&memberNames, "member", nil, "member display name, repeat for each member (required)")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func runInit(g *globals, dir, name string, memberNames []string) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}

	t, err := trip.Create(dir, name, memberNames, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Created trip %q at %s\n", name, dir)
	fmt.Printf("Trip code: %s\n", t.Config.Trip.Code)
	for _, m := range t.Members.All() {
		fmt.Printf("  %-12s %s\n", m.ID, m.Name)
	}
	return nil
}
