// Package client contains Cobra CLI commands for nogu.
package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	transports "github.com/DAYGoodTime/nogu/internal/cmd/client/transports"
)

// NewBeatmapCommand constructs the `beatmap` command group and subcommands.
func NewBeatmapCommand(baseURL BaseURLFunc) *cobra.Command {
	beatmapCmd := &cobra.Command{Use: "beatmap", Short: "Beatmap operations"}

	beatmapCmd.AddCommand(
		newBeatmapGetCommand(baseURL),
		newBeatmapRequestCommand(baseURL),
	)

	return beatmapCmd
}

// newBeatmapGetCommand constructs the `beatmap get` subcommand.
func newBeatmapGetCommand(baseURL BaseURLFunc) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Look up a beatmap already in the local store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ident, _ := cmd.Flags().GetString("ident")
			if ident == "" {
				return fmt.Errorf("--ident is required")
			}
			var out json.RawMessage
			if err := getJSON(baseURL()+"/v1/beatmaps/"+ident, "", &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	getCmd.Flags().String("ident", "", "Beatmap md5, beatmap id, or set id")
	return getCmd
}

// newBeatmapRequestCommand constructs the `beatmap request` subcommand. It
// submits idents and prints each pushed result as a JSON line.
func newBeatmapRequestCommand(baseURL BaseURLFunc) *cobra.Command {
	requestCmd := &cobra.Command{
		Use:     "request",
		Short:   "Request beatmaps and stream the results",
		Aliases: []string{"stream"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			idents, _ := cmd.Flags().GetStringSlice("idents")
			token, _ := cmd.Flags().GetString("token")
			transportName, _ := cmd.Flags().GetString("transport")
			limit, _ := cmd.Flags().GetInt("limit")

			if len(idents) == 0 {
				return fmt.Errorf("--idents is required")
			}
			if token == "" {
				token = tokenFromEnv()
			}
			if token == "" {
				return fmt.Errorf("--token or NOGU_TOKEN is required")
			}
			if limit == 0 {
				// One result comes back per submitted ident.
				limit = len(idents)
			}

			t, err := getTransport(transportName)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			return t.Stream(cmd.Context(), transports.StreamRequest{
				BaseURL: baseURL(),
				Token:   token,
				Idents:  idents,
				Limit:   limit,
			}, func(res transports.Result) error {
				return enc.Encode(res)
			})
		},
	}
	requestCmd.Flags().StringSlice("idents", nil, "Beatmap idents to request (md5 or numeric id; repeat or comma-separate)")
	requestCmd.Flags().String("token", "", "Bearer token (default: NOGU_TOKEN)")
	requestCmd.Flags().String("transport", "sse", "Stream transport: sse|ws")
	requestCmd.Flags().Int("limit", 0, "Stop after N results (default: one per ident, -1 = until cancelled)")
	return requestCmd
}
