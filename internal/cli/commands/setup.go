package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geostack-labs/geoforge/internal/blobcache"
	"github.com/geostack-labs/geoforge/internal/config"
	"github.com/geostack-labs/geoforge/internal/remote"
	"github.com/geostack-labs/geoforge/internal/service"
	"github.com/geostack-labs/geoforge/internal/store"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Service *service.Service
	Client  *remote.Client
}

// NewCommandContext wires a service for one build command. Dry runs stage
// blobs in memory and never touch the network; real runs need the remote
// configuration, a disk-backed blob store, and the upload state database.
// Returns the context and a cleanup function that must be called (typically
// via defer).
func NewCommandContext(cmd *cobra.Command, dryRun bool) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	cc := &CommandContext{Cfg: cfg, Logger: logger}
	cleanup := func() {}

	var (
		st      service.BlobStore
		creator service.Creator
		uploads remote.UploadCache
	)

	if dryRun {
		st = store.NewMemStore()
	} else {
		if err := cfg.ValidateRemote(); err != nil {
			return nil, nil, err
		}

		ds, err := store.NewDirStore(cfg.CacheDir, logger)
		if err != nil {
			return nil, nil, err
		}
		st = ds

		cache, err := openStateDB(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = cache.Close() }
		uploads = cache

		cc.Client = remote.NewClient(cfg.RemoteURL, cfg.Org, cfg.Token, logger)
		creator = cc.Client
	}

	cc.Service = service.New(st, creator, uploads, logger)
	return cc, cleanup, nil
}

func openStateDB(cfg *config.Config, logger *slog.Logger) (*blobcache.Cache, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	cache := blobcache.New(logger)
	if err := cache.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	return cache, nil
}

// getConfig returns the current configuration, falling back to defaults
// when the root command has not loaded one (direct command construction in
// tests).
func getConfig() *config.Config {
	if cfg := config.Current(); cfg != nil {
		return cfg
	}
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}

// targetFlags registers the flags shared by every build command and returns
// the target populated at parse time.
func targetFlags(cmd *cobra.Command, tags *[]string) *service.Target {
	t := &service.Target{}
	cmd.Flags().StringVar(&t.WorkspaceID, "workspace-id", "", "Workspace identifier (overrides config)")
	cmd.Flags().StringVar(&t.ObjectPath, "path", "", "Object path in the workspace")
	cmd.Flags().StringVar(&t.Name, "name", "", "Object display name")
	cmd.Flags().StringVar(&t.Description, "desc", "", "Object description")
	cmd.Flags().StringVar(&t.CRS, "crs", "", "Coordinate reference system")
	cmd.Flags().BoolVar(&t.DryRun, "dry-run", true, "Validate without creating the object")
	cmd.Flags().StringArrayVar(tags, "tag", nil, "Object tag as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("name")
	return t
}

// resolveTarget finalizes a target after flag parsing: the workspace falls
// back to the configured default and tag flags are split into pairs.
func resolveTarget(t *service.Target, tags []string, cfg *config.Config) error {
	if t.WorkspaceID == "" {
		t.WorkspaceID = cfg.Workspace
	}
	if !t.DryRun && t.WorkspaceID == "" {
		return fmt.Errorf("workspace is required (set --workspace-id or workspace in geoforge.yaml)")
	}
	parsed, err := parseTags(tags)
	if err != nil {
		return err
	}
	t.Tags = parsed
	return nil
}

func parseTags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid tag %q (expected key=value)", p)
		}
		out[k] = v
	}
	return out, nil
}
