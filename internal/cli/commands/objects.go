package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/geostack-labs/geoforge/internal/config"
	"github.com/geostack-labs/geoforge/internal/remote"
)

// NewObjectsCommand creates the objects command.
func NewObjectsCommand() *cobra.Command {
	var (
		workspaceID string
		schemaID    string
		limit       int
		version     string
	)

	cmd := &cobra.Command{
		Use:   "objects [object-id]",
		Short: "List or inspect objects in a workspace",
		Long: `List the objects in a workspace, or show the metadata of one object
when an object id is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if err := cfg.ValidateRemote(); err != nil {
				return err
			}
			if workspaceID == "" {
				workspaceID = cfg.Workspace
			}
			if workspaceID == "" {
				return fmt.Errorf("workspace is required (set --workspace-id or workspace in geoforge.yaml)")
			}
			logger := config.GetLogger(cmd.Context())
			client := remote.NewClient(cfg.RemoteURL, cfg.Org, cfg.Token, logger)

			w := cmd.OutOrStdout()
			if len(args) == 1 {
				obj, err := client.GetObject(cmd.Context(), workspaceID, args[0], version)
				if err != nil {
					return err
				}
				return renderObject(w, obj, cfg.Output)
			}

			objects, err := client.ListObjects(cmd.Context(), workspaceID, remote.ListObjectsOptions{
				SchemaID: schemaID,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			return renderObjectList(w, objects, cfg.Output)
		},
	}

	cmd.Flags().StringVar(&workspaceID, "workspace-id", "", "Workspace identifier (overrides config)")
	cmd.Flags().StringVar(&schemaID, "schema", "", "Filter by schema identifier")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of objects to list")
	cmd.Flags().StringVar(&version, "object-version", "", "Object version to inspect (latest when empty)")

	return cmd
}

func renderObjectList(w io.Writer, objects []remote.ObjectSummary, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(objects)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Path", "Schema", "Version"})
	for _, o := range objects {
		t.AppendRow(table.Row{o.ID, o.Path, o.SchemaID, o.VersionID})
	}
	t.Render()
	return nil
}

func renderObject(w io.Writer, obj *remote.ObjectSummary, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(obj)
	}

	_, _ = fmt.Fprintf(w, "Object:  %s\n", obj.ID)
	_, _ = fmt.Fprintf(w, "Name:    %s\n", obj.Name)
	_, _ = fmt.Fprintf(w, "Path:    %s\n", obj.Path)
	_, _ = fmt.Fprintf(w, "Schema:  %s\n", obj.SchemaID)
	_, _ = fmt.Fprintf(w, "Version: %s\n", obj.VersionID)
	if obj.CreatedAt != "" {
		_, _ = fmt.Fprintf(w, "Created: %s\n", obj.CreatedAt)
	}
	return nil
}
