package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/geostack-labs/geoforge/internal/service"
)

// renderOutcome writes a build outcome in the configured format. The exit
// error distinguishes a failed build from a rendering problem: any outcome
// other than created or validation_passed yields a non-nil error so the
// process exits non-zero.
func renderOutcome(w io.Writer, out *service.Outcome, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		return outcomeErr(out)
	}

	_, _ = fmt.Fprintf(w, "Status: %s\n", out.Status)
	if out.Message != "" {
		_, _ = fmt.Fprintln(w, out.Message)
	}
	if out.Error != "" {
		_, _ = fmt.Fprintf(w, "Error: %s\n", out.Error)
	}

	if val := out.Validation; val != nil {
		renderValidation(w, val)
	}

	if obj := out.Object; obj != nil {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "Created %s\n", obj.Path)
		_, _ = fmt.Fprintf(w, "  object:  %s\n", obj.ID)
		_, _ = fmt.Fprintf(w, "  version: %s\n", obj.VersionID)
	}

	return outcomeErr(out)
}

func renderValidation(w io.Writer, val *service.Validation) {
	if len(val.Rows) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Table", "Rows"})

		names := make([]string, 0, len(val.Rows))
		for name := range val.Rows {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t.AppendRow(table.Row{name, val.Rows[name]})
		}
		t.Render()
	}

	if box := val.BoundingBox; box != nil {
		_, _ = fmt.Fprintf(w, "Bounds: x [%g, %g]  y [%g, %g]  z [%g, %g]\n",
			box.MinX, box.MaxX, box.MinY, box.MaxY, box.MinZ, box.MaxZ)
	}
	if len(val.Attributes) > 0 {
		_, _ = fmt.Fprintf(w, "Attributes: %s\n", strings.Join(val.Attributes, ", "))
	}
	for _, warn := range val.Warnings {
		_, _ = fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	for _, e := range val.Errors {
		_, _ = fmt.Fprintf(w, "Validation error: %s\n", e)
	}
}

func outcomeErr(out *service.Outcome) error {
	switch out.Status {
	case service.StatusCreated, service.StatusValidationPassed:
		return nil
	}
	return fmt.Errorf("build finished with status %s", out.Status)
}
