package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the nogu client.
// It registers the auth, beatmap and stats command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "nogu",
		Short: "nogu client commands",
	}
	root.AddCommand(NewAuthCommand(baseURL))
	root.AddCommand(NewBeatmapCommand(baseURL))
	root.AddCommand(NewStatsCommand(baseURL))
	return root
}
