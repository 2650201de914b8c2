package commands

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/geostack-labs/geoforge/internal/config"
	"github.com/geostack-labs/geoforge/internal/remote"
)

// NewWorkspacesCommand creates the workspaces command.
func NewWorkspacesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workspaces",
		Short: "List workspaces on the remote service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			if err := cfg.ValidateRemote(); err != nil {
				return err
			}
			logger := config.GetLogger(cmd.Context())

			client := remote.NewClient(cfg.RemoteURL, cfg.Org, cfg.Token, logger)
			ws, err := client.ListWorkspaces(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if cfg.Output == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(ws)
			}

			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Name", "Description"})
			for _, x := range ws {
				t.AppendRow(table.Row{x.ID, x.Name, x.Description})
			}
			t.Render()
			return nil
		},
	}
}
