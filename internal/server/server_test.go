package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostack-labs/geoforge/internal/remote"
	"github.com/geostack-labs/geoforge/internal/service"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/testutil"
)

type fakeDirectory struct {
	workspaces []remote.Workspace
	objects    []remote.ObjectSummary
	err        error

	lastWorkspace string
	lastOpts      remote.ListObjectsOptions
	lastObjectID  string
	lastVersion   string
}

func (f *fakeDirectory) ListWorkspaces(context.Context) ([]remote.Workspace, error) {
	return f.workspaces, f.err
}

func (f *fakeDirectory) ListObjects(_ context.Context, workspaceID string, opts remote.ListObjectsOptions) ([]remote.ObjectSummary, error) {
	f.lastWorkspace = workspaceID
	f.lastOpts = opts
	return f.objects, f.err
}

func (f *fakeDirectory) GetObject(_ context.Context, workspaceID, objectID, version string) (*remote.ObjectSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastWorkspace = workspaceID
	f.lastObjectID = objectID
	f.lastVersion = version
	return &f.objects[0], nil
}

func newTestServer(t *testing.T, dir Directory) *httptest.Server {
	t.Helper()
	svc := service.New(store.NewMemStore(), nil, nil, testutil.NewTestLogger(t))
	srv := NewServer(Config{
		Service:   svc,
		Directory: dir,
		Logger:    testutil.NewTestLogger(t),
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestWorkspaces(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{workspaces: []remote.Workspace{
		{ID: "ws1", Name: "Exploration"},
	}})

	resp, err := http.Get(ts.URL + "/workspaces")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Workspaces []remote.Workspace `json:"workspaces"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Workspaces, 1)
	assert.Equal(t, "ws1", body.Workspaces[0].ID)
}

func TestWorkspacesWithoutRemote(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/workspaces")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWorkspacesRemoteFailure(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{err: errors.New("upstream down")})

	resp, err := http.Get(ts.URL + "/workspaces")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestListObjectsRoute(t *testing.T) {
	dir := &fakeDirectory{objects: []remote.ObjectSummary{
		{ID: "obj-1", Path: "drilling/points.json", SchemaID: "pointset", VersionID: "v1"},
	}}
	ts := newTestServer(t, dir)

	resp, err := http.Get(ts.URL + "/workspaces/ws1/objects?schema=pointset&limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Objects []remote.ObjectSummary `json:"objects"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Objects, 1)
	assert.Equal(t, "obj-1", body.Objects[0].ID)

	assert.Equal(t, "ws1", dir.lastWorkspace)
	assert.Equal(t, remote.ListObjectsOptions{SchemaID: "pointset", Limit: 10}, dir.lastOpts)
}

func TestListObjectsRejectsBadLimit(t *testing.T) {
	ts := newTestServer(t, &fakeDirectory{})

	resp, err := http.Get(ts.URL + "/workspaces/ws1/objects?limit=zero")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetObjectRoute(t *testing.T) {
	dir := &fakeDirectory{objects: []remote.ObjectSummary{
		{ID: "obj-1", Name: "points", Path: "drilling/points.json", VersionID: "v2"},
	}}
	ts := newTestServer(t, dir)

	resp, err := http.Get(ts.URL + "/workspaces/ws1/objects/obj-1?version=v2")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var obj remote.ObjectSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&obj))
	assert.Equal(t, "obj-1", obj.ID)

	assert.Equal(t, "obj-1", dir.lastObjectID)
	assert.Equal(t, "v2", dir.lastVersion)
}

func TestObjectsWithoutRemote(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/workspaces/ws1/objects")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPointsetToolDryRun(t *testing.T) {
	ts := newTestServer(t, nil)

	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y,z,grade\n0,0,1,0.5\n2,3,4,1.1\n"), 0644))

	body := fmt.Sprintf(`{
		"name": "points",
		"object_path": "exploration/points.json",
		"dry_run": true,
		"file": %q,
		"x_column": "x", "y_column": "y", "z_column": "z"
	}`, path)

	resp, err := http.Post(ts.URL+"/tools/pointset", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out service.Outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, service.StatusValidationPassed, out.Status)
	require.NotNil(t, out.Validation)
	assert.Equal(t, 2, out.Validation.Rows["points"])
}

func TestToolFailedBuildIsStillHTTP200(t *testing.T) {
	ts := newTestServer(t, nil)

	body := fmt.Sprintf(`{
		"name": "points",
		"object_path": "p",
		"dry_run": true,
		"file": %q,
		"x_column": "x", "y_column": "y", "z_column": "z"
	}`, filepath.Join(t.TempDir(), "missing.csv"))

	resp, err := http.Post(ts.URL+"/tools/pointset", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out service.Outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, service.StatusError, out.Status)
	assert.NotEmpty(t, out.Error)
}

func TestToolRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/tools/pointset", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToolRejectsUnknownFields(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/tools/pointset", "application/json",
		strings.NewReader(`{"name": "p", "surprise": true}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "surprise")
}
