package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/geostack-labs/geoforge/internal/service"
)

// intervalsSpec is the YAML shape of the --intervals file: a list of named
// interval collections to attach to the hole collection.
type intervalsSpec struct {
	Collections []struct {
		Name             string   `yaml:"name"`
		File             string   `yaml:"file"`
		HoleIDColumn     string   `yaml:"hole_id_column"`
		FromColumn       string   `yaml:"from_column"`
		ToColumn         string   `yaml:"to_column"`
		AttributeColumns []string `yaml:"attribute_columns"`
	} `yaml:"collections"`
}

// NewHolesCommand creates the holes command.
func NewHolesCommand() *cobra.Command {
	req := service.DownholeCollectionRequest{}
	var (
		tags          []string
		target        *service.Target
		intervalsFile string
	)

	cmd := &cobra.Command{
		Use:   "holes <collar-file> <survey-file>",
		Short: "Build a drillhole collection from collar and survey files",
		Long: `Build a drillhole collection from a collar file and a survey file.

The collar file carries one row per hole with its identifier and collar
coordinates. The survey file carries one row per survey station with the
hole identifier, measured depth, azimuth and dip. Interval collections
(assays, geology, ...) can be attached via a YAML file listing them:

  collections:
    - name: assays
      file: assays.csv
      hole_id_column: hole_id
      from_column: from_m
      to_column: to_m`,
		Example: `  geoforge holes collar.csv survey.csv --name "Phase 2 Drilling" \
    --path drilling/phase2

  geoforge holes collar.csv survey.csv --name Drilling --path drilling/all \
    --intervals intervals.yaml --invert-dip --dry-run=false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.CollarFile = args[0]
			req.SurveyFile = args[1]
			req.Target = *target

			if intervalsFile != "" {
				collections, err := loadIntervalsSpec(intervalsFile)
				if err != nil {
					return err
				}
				req.Intervals = collections
			}

			cc, cleanup, err := NewCommandContext(cmd, req.DryRun)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := resolveTarget(&req.Target, tags, cc.Cfg); err != nil {
				return err
			}

			out := cc.Service.CreateDownholeCollection(cmd.Context(), req)
			return renderOutcome(cmd.OutOrStdout(), out, cc.Cfg.Output)
		},
	}

	target = targetFlags(cmd, &tags)

	cmd.Flags().StringVar(&req.CollarIDColumn, "collar-id", "hole_id", "Hole id column in the collar file")
	cmd.Flags().StringVar(&req.SurveyIDColumn, "survey-id", "hole_id", "Hole id column in the survey file")
	cmd.Flags().StringVar(&req.XColumn, "x", "x", "Collar X coordinate column")
	cmd.Flags().StringVar(&req.YColumn, "y", "y", "Collar Y coordinate column")
	cmd.Flags().StringVar(&req.ZColumn, "z", "z", "Collar Z coordinate column")
	cmd.Flags().StringVar(&req.DepthColumn, "depth", "depth", "Measured depth column in the survey file")
	cmd.Flags().StringVar(&req.AzimuthColumn, "azimuth", "azimuth", "Azimuth column in the survey file")
	cmd.Flags().StringVar(&req.DipColumn, "dip", "dip", "Dip column in the survey file")
	cmd.Flags().StringVar(&req.MaxDepthColumn, "max-depth", "", "Collar column with final hole depths (default: derived from surveys)")
	cmd.Flags().BoolVar(&req.InvertDip, "invert-dip", false, "Negate dip values (for positive-down sources)")
	cmd.Flags().StringVar(&intervalsFile, "intervals", "", "YAML file listing interval collections to attach")

	return cmd
}

func loadIntervalsSpec(path string) ([]service.IntervalCollection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intervals file: %w", err)
	}
	var spec intervalsSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse intervals file %s: %w", path, err)
	}
	if len(spec.Collections) == 0 {
		return nil, fmt.Errorf("intervals file %s lists no collections", path)
	}

	out := make([]service.IntervalCollection, 0, len(spec.Collections))
	for i, c := range spec.Collections {
		if c.Name == "" || c.File == "" {
			return nil, fmt.Errorf("intervals file %s: collection %d needs name and file", path, i)
		}
		ic := service.IntervalCollection{
			Name:             c.Name,
			File:             c.File,
			HoleIDColumn:     c.HoleIDColumn,
			FromColumn:       c.FromColumn,
			ToColumn:         c.ToColumn,
			AttributeColumns: c.AttributeColumns,
		}
		if ic.HoleIDColumn == "" {
			ic.HoleIDColumn = "hole_id"
		}
		if ic.FromColumn == "" {
			ic.FromColumn = "from"
		}
		if ic.ToColumn == "" {
			ic.ToColumn = "to"
		}
		out = append(out, ic)
	}
	return out, nil
}
