// Package remote is the client for the workspace object service: it resolves
// pending table references to durable storage and creates geoscience
// objects. Failures are surfaced verbatim as RemoteError; the core applies
// no retry policy.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
)

// uploadConcurrency bounds parallel blob uploads per object creation.
const uploadConcurrency = 4

// RemoteError reports a failed call to the workspace service.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s failed: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote %s failed: %s", e.Op, e.Message)
}

// UploadCache records digests already uploaded to a workspace so they can be
// skipped. Implemented by blobcache.Cache.
type UploadCache interface {
	IsUploaded(workspaceID, digest string) (bool, error)
	MarkUploaded(workspaceID, digest string, sizeBytes int64) error
}

// Workspace is a remote workspace summary.
type Workspace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ObjectMetadata identifies a created object version.
type ObjectMetadata struct {
	ID        string `json:"object_id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	VersionID string `json:"version_id"`
}

// ObjectSummary describes one object in a workspace listing.
type ObjectSummary struct {
	ID        string `json:"object_id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	SchemaID  string `json:"schema_id"`
	VersionID string `json:"version_id"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ListObjectsOptions filters a workspace object listing. A zero value lists
// everything up to the service's default page size.
type ListObjectsOptions struct {
	SchemaID string
	Limit    int
}

// Client talks to one organization on the workspace service.
type Client struct {
	baseURL string
	orgID   string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the given service URL and organization.
func NewClient(baseURL, orgID, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		orgID:   orgID,
		token:   token,
		http:    &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}
}

// ListWorkspaces returns the workspaces visible to the client.
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.orgURL("workspaces"), nil, "application/json")
	if err != nil {
		return nil, &RemoteError{Op: "list workspaces", Message: err.Error()}
	}

	var out struct {
		Workspaces []Workspace `json:"workspaces"`
	}
	if err := c.do(req, "list workspaces", &out); err != nil {
		return nil, err
	}
	return out.Workspaces, nil
}

// ListObjects returns the objects in a workspace, optionally filtered by
// schema identifier.
func (c *Client) ListObjects(ctx context.Context, workspaceID string, opts ListObjectsOptions) ([]ObjectSummary, error) {
	u := c.orgURL("workspaces", workspaceID, "objects")
	q := url.Values{}
	if opts.SchemaID != "" {
		q.Set("schema", opts.SchemaID)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodGet, u, nil, "application/json")
	if err != nil {
		return nil, &RemoteError{Op: "list objects", Message: err.Error()}
	}

	var out struct {
		Objects []ObjectSummary `json:"objects"`
	}
	if err := c.do(req, "list objects", &out); err != nil {
		return nil, err
	}
	return out.Objects, nil
}

// GetObject returns the metadata of one object by its identifier. An empty
// version resolves to the latest.
func (c *Client) GetObject(ctx context.Context, workspaceID, objectID, version string) (*ObjectSummary, error) {
	u := c.orgURL("workspaces", workspaceID, "objects", objectID)
	if version != "" {
		u += "?version=" + url.QueryEscape(version)
	}

	req, err := c.newRequest(ctx, http.MethodGet, u, nil, "application/json")
	if err != nil {
		return nil, &RemoteError{Op: "get object", Message: err.Error()}
	}

	var out ObjectSummary
	if err := c.do(req, "get object", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadReferencedData resolves every table reference embedded in the
// serialized object to durable storage. Digests already recorded in the
// cache are skipped; uploads run with bounded parallelism. Uploaded blobs
// are not rolled back if the subsequent create fails - re-running the build
// is idempotent because blobs are content-addressed.
func (c *Client) UploadReferencedData(ctx context.Context, workspaceID string, obj map[string]any, src store.BlobSource, cache UploadCache) error {
	digests := object.CollectDigests(obj)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for _, d := range digests {
		g.Go(func() error {
			if cache != nil {
				uploaded, err := cache.IsUploaded(workspaceID, d)
				if err != nil {
					return err
				}
				if uploaded {
					c.logger.Debug("blob already uploaded", "digest", d)
					return nil
				}
			}

			size, err := c.uploadBlob(ctx, workspaceID, d, src)
			if err != nil {
				return err
			}
			if cache != nil {
				if err := cache.MarkUploaded(workspaceID, d, size); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (c *Client) uploadBlob(ctx context.Context, workspaceID, digest string, src store.BlobSource) (int64, error) {
	rc, err := src.Open(digest)
	if err != nil {
		return 0, &RemoteError{Op: "upload blob", Message: fmt.Sprintf("blob %s: %v", digest, err)}
	}
	defer func() { _ = rc.Close() }()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return 0, &RemoteError{Op: "upload blob", Message: fmt.Sprintf("blob %s: %v", digest, err)}
	}

	u := c.orgURL("workspaces", workspaceID, "blobs", digest)
	req, err := c.newRequest(ctx, http.MethodPut, u, bytes.NewReader(payload), "application/octet-stream")
	if err != nil {
		return 0, &RemoteError{Op: "upload blob", Message: err.Error()}
	}
	if err := c.do(req, "upload blob", nil); err != nil {
		return 0, err
	}

	c.logger.Debug("uploaded blob", "digest", digest, "bytes", len(payload))
	return int64(len(payload)), nil
}

// CreateObject creates a new geoscience object at the given path and returns
// its identity and version.
func (c *Client) CreateObject(ctx context.Context, workspaceID, path string, obj map[string]any) (*ObjectMetadata, error) {
	body, err := json.Marshal(map[string]any{
		"path":   path,
		"object": obj,
	})
	if err != nil {
		return nil, &RemoteError{Op: "create object", Message: err.Error()}
	}

	u := c.orgURL("workspaces", workspaceID, "objects")
	req, err := c.newRequest(ctx, http.MethodPost, u, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, &RemoteError{Op: "create object", Message: err.Error()}
	}

	var meta ObjectMetadata
	if err := c.do(req, "create object", &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *Client) orgURL(parts ...string) string {
	segs := append([]string{"orgs", c.orgID}, parts...)
	return c.baseURL + "/" + joinPath(segs)
}

func joinPath(segs []string) string {
	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: string(msg)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &RemoteError{Op: op, Message: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}
