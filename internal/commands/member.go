package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMemberCommand(g *globals) *cobra.Command {
	memberCmd := &cobra.Command{
		Use:   "member",
		Short: "Trip members",
	}
	memberCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List members and their IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMemberList(g)
		},
	})
	return memberCmd
}

func runMemberList(g *globals) error {
	t, err := g.open()
	if err != nil {
		return err
	}
	for _, m := range t.Members.All() {
		fmt.Printf("%-12s %s\n", m.ID, m.Name)
	}
	return nil
}
