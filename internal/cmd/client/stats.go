package client

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewStatsCommand constructs the `stats` command, printing the server's
// request broker counters.
func NewStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show server counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out json.RawMessage
			if err := getJSON(baseURL()+"/v1/stats", "", &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	return statsCmd
}
