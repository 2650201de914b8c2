package commands

import (
	"github.com/spf13/cobra"

	"github.com/geostack-labs/geoforge/internal/service"
)

// NewIntervalsCommand creates the intervals command.
func NewIntervalsCommand() *cobra.Command {
	req := service.DownholeIntervalsRequest{}
	var (
		tags   []string
		target *service.Target
	)

	cmd := &cobra.Command{
		Use:   "intervals <file>",
		Short: "Build a flat interval object from a desurveyed interval file",
		Long: `Build a downhole-intervals object from one CSV or Parquet file.

Each row is one interval with its hole identifier, from/to depths and
precomputed start, end and midpoint coordinates. Remaining columns become
attributes unless --attr narrows the selection.`,
		Example: `  geoforge intervals composites.csv --name "Au Composites" \
    --path drilling/composites --composited

  geoforge intervals intervals.parquet --name Assays --path drilling/assays \
    --hole-id bhid --from from_m --to to_m --dry-run=false`,
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

			out := cc.Service.CreateDownholeIntervals(cmd.Context(), req)
			return renderOutcome(cmd.OutOrStdout(), out, cc.Cfg.Output)
		},
	}

	target = targetFlags(cmd, &tags)

	cmd.Flags().StringVar(&req.HoleIDColumn, "hole-id", "hole_id", "Hole id column")
	cmd.Flags().StringVar(&req.FromColumn, "from", "from", "Interval start depth column")
	cmd.Flags().StringVar(&req.ToColumn, "to", "to", "Interval end depth column")
	cmd.Flags().StringVar(&req.StartXColumn, "start-x", "start_x", "Interval start X column")
	cmd.Flags().StringVar(&req.StartYColumn, "start-y", "start_y", "Interval start Y column")
	cmd.Flags().StringVar(&req.StartZColumn, "start-z", "start_z", "Interval start Z column")
	cmd.Flags().StringVar(&req.EndXColumn, "end-x", "end_x", "Interval end X column")
	cmd.Flags().StringVar(&req.EndYColumn, "end-y", "end_y", "Interval end Y column")
	cmd.Flags().StringVar(&req.EndZColumn, "end-z", "end_z", "Interval end Z column")
	cmd.Flags().StringVar(&req.MidXColumn, "mid-x", "mid_x", "Interval midpoint X column")
	cmd.Flags().StringVar(&req.MidYColumn, "mid-y", "mid_y", "Interval midpoint Y column")
	cmd.Flags().StringVar(&req.MidZColumn, "mid-z", "mid_z", "Interval midpoint Z column")
	cmd.Flags().StringArrayVar(&req.AttributeColumns, "attr", nil, "Attribute column (repeatable; default: all non-role columns)")
	cmd.Flags().BoolVar(&req.IsComposited, "composited", false, "Mark the intervals as composited")

	return cmd
}
