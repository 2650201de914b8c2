package commands

import (
	"github.com/spf13/cobra"

	"github.com/geostack-labs/geoforge/internal/service"
)

// NewLinesetCommand creates the lineset command.
func NewLinesetCommand() *cobra.Command {
	req := service.LineSegmentsRequest{}
	var (
		tags   []string
		target *service.Target
	)

	cmd := &cobra.Command{
		Use:   "lineset <vertices-file> <segments-file>",
		Short: "Build a line network from vertex and segment files",
		Long: `Build a line-segment network from two CSV or Parquet files.

The vertices file carries one row per vertex with x, y and z columns. The
segments file carries one row per segment with two columns holding the
zero-based positions of the segment's end vertices in the vertices file.`,
		Example: `  geoforge lineset veins_vertices.csv veins_segments.csv \
    --name "Vein Network" --path structures/veins

  geoforge lineset vertices.parquet segments.parquet --name Faults \
    --path structures/faults --start start_idx --end end_idx --dry-run=false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.VerticesFile = args[0]
			req.SegmentsFile = args[1]
			req.Target = *target

			cc, cleanup, err := NewCommandContext(cmd, req.DryRun)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := resolveTarget(&req.Target, tags, cc.Cfg); err != nil {
				return err
			}

			out := cc.Service.CreateLineSegments(cmd.Context(), req)
			return renderOutcome(cmd.OutOrStdout(), out, cc.Cfg.Output)
		},
	}

	target = targetFlags(cmd, &tags)

	cmd.Flags().StringVar(&req.XColumn, "x", "x", "X coordinate column in the vertices file")
	cmd.Flags().StringVar(&req.YColumn, "y", "y", "Y coordinate column in the vertices file")
	cmd.Flags().StringVar(&req.ZColumn, "z", "z", "Z coordinate column in the vertices file")
	cmd.Flags().StringVar(&req.StartIndexColumn, "start", "start", "Start vertex index column in the segments file")
	cmd.Flags().StringVar(&req.EndIndexColumn, "end", "end", "End vertex index column in the segments file")
	cmd.Flags().StringArrayVar(&req.VertexAttributeColumns, "vertex-attr", nil, "Vertex attribute column (repeatable)")
	cmd.Flags().StringArrayVar(&req.SegmentAttributeColumns, "segment-attr", nil, "Segment attribute column (repeatable)")

	return cmd
}
