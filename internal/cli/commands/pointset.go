package commands

import (
	"github.com/spf13/cobra"

	"github.com/geostack-labs/geoforge/internal/service"
)

// NewPointsetCommand creates the pointset command.
func NewPointsetCommand() *cobra.Command {
	req := service.PointsetRequest{}
	var (
		tags   []string
		target *service.Target
	)

	cmd := &cobra.Command{
		Use:   "pointset <file>",
		Short: "Build a point set from a coordinates file",
		Long: `Build a point set object from one CSV or Parquet file.

The file must carry one row per point with x, y and z coordinate columns.
Remaining columns become attributes unless --attr narrows the selection.`,
		Example: `  # Validate without creating
  geoforge pointset assay_points.csv --name "Assay Points" --path drilling/points

  # Create the object with selected attributes
  geoforge pointset points.parquet --name Points --path exploration/points \
    --attr au_ppm --attr lithology --dry-run=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.File = args[0]
			req.Target = *target

			cc, cleanup, err := NewCommandContext(cmd, req.DryRun)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := resolveTarget(&req.Target, tags, cc.Cfg); err != nil {
				return err
			}

			out := cc.Service.CreatePointset(cmd.Context(), req)
			return renderOutcome(cmd.OutOrStdout(), out, cc.Cfg.Output)
		},
	}

	target = targetFlags(cmd, &tags)

	cmd.Flags().StringVar(&req.XColumn, "x", "x", "X coordinate column")
	cmd.Flags().StringVar(&req.YColumn, "y", "y", "Y coordinate column")
	cmd.Flags().StringVar(&req.ZColumn, "z", "z", "Z coordinate column")
	cmd.Flags().StringArrayVar(&req.AttributeColumns, "attr", nil, "Attribute column (repeatable; default: all non-coordinate columns)")

	return cmd
}
