package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostack-labs/geoforge/internal/config"
	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/remote"
	"github.com/geostack-labs/geoforge/internal/service"
)

func TestParseTags(t *testing.T) {
	tags, err := parseTags([]string{"project=alpha", "stage=infill"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"project": "alpha", "stage": "infill"}, tags)

	tags, err = parseTags(nil)
	require.NoError(t, err)
	assert.Nil(t, tags)

	_, err = parseTags([]string{"no-separator"})
	require.Error(t, err)

	_, err = parseTags([]string{"=value"})
	require.Error(t, err)
}

func TestResolveTarget(t *testing.T) {
	cfg := &config.Config{Workspace: "ws-default"}

	target := &service.Target{DryRun: true}
	require.NoError(t, resolveTarget(target, nil, cfg))
	assert.Equal(t, "ws-default", target.WorkspaceID)

	target = &service.Target{WorkspaceID: "ws-explicit", DryRun: false}
	require.NoError(t, resolveTarget(target, []string{"k=v"}, cfg))
	assert.Equal(t, "ws-explicit", target.WorkspaceID)
	assert.Equal(t, map[string]string{"k": "v"}, target.Tags)

	target = &service.Target{DryRun: false}
	err := resolveTarget(target, nil, &config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace")
}

func TestRenderOutcomeText(t *testing.T) {
	out := &service.Outcome{
		Status:  service.StatusValidationPassed,
		Message: "dry run passed",
		Validation: &service.Validation{
			Rows:        map[string]int{"points": 3},
			BoundingBox: &object.BoundingBox{MaxX: 10, MaxY: 4, MaxZ: 100},
			Attributes:  []string{"grade"},
			Warnings:    []string{"2 rows with missing coordinates"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, "text"))

	text := buf.String()
	assert.Contains(t, text, "Status: validation_passed")
	assert.Contains(t, text, "points")
	assert.Contains(t, text, "Attributes: grade")
	assert.Contains(t, text, "Warning: 2 rows with missing coordinates")
}

func TestRenderOutcomeCreated(t *testing.T) {
	out := &service.Outcome{
		Status: service.StatusCreated,
		Object: &remote.ObjectMetadata{
			ID: "obj-1", Path: "exploration/points.json", VersionID: "v1",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, "text"))
	assert.Contains(t, buf.String(), "Created exploration/points.json")
	assert.Contains(t, buf.String(), "obj-1")
}

func TestRenderOutcomeJSON(t *testing.T) {
	out := &service.Outcome{Status: service.StatusCreated}

	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, "json"))

	var decoded service.Outcome
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, service.StatusCreated, decoded.Status)
}

func TestRenderObjectList(t *testing.T) {
	objects := []remote.ObjectSummary{
		{ID: "obj-1", Path: "drilling/points.json", SchemaID: "pointset", VersionID: "v1"},
	}

	var buf bytes.Buffer
	require.NoError(t, renderObjectList(&buf, objects, "text"))
	assert.Contains(t, buf.String(), "drilling/points.json")
	assert.Contains(t, buf.String(), "pointset")

	buf.Reset()
	require.NoError(t, renderObjectList(&buf, objects, "json"))
	var decoded []remote.ObjectSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "obj-1", decoded[0].ID)
}

func TestRenderObject(t *testing.T) {
	obj := &remote.ObjectSummary{
		ID: "obj-1", Name: "points", Path: "drilling/points.json",
		SchemaID: "pointset", VersionID: "v2", CreatedAt: "2026-08-01T10:00:00Z",
	}

	var buf bytes.Buffer
	require.NoError(t, renderObject(&buf, obj, "text"))
	text := buf.String()
	assert.Contains(t, text, "Object:  obj-1")
	assert.Contains(t, text, "Version: v2")
	assert.Contains(t, text, "Created: 2026-08-01T10:00:00Z")
}

func TestRenderOutcomeFailureExitsNonZero(t *testing.T) {
	out := &service.Outcome{
		Status: service.StatusValidationFailed,
		Error:  "column missing",
	}

	var buf bytes.Buffer
	err := renderOutcome(&buf, out, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), service.StatusValidationFailed)
	assert.Contains(t, buf.String(), "Error: column missing")
}
