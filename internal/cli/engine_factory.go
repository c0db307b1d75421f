package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/pkg/adapters/file"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/adapters/redis"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/observability"
	"github.com/aretw0/colloquy/pkg/persistence/middleware"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/profile"
	"github.com/aretw0/colloquy/pkg/variables"
)

// Project bundles what every command derives from colloquy.yaml.
type Project struct {
	Config   *config.Config
	Loader   *file.Loader
	Profiles *profile.Manager
	Logger   *slog.Logger

	defaults domain.VariableSnapshot
	hooks    []colloquy.Option
	closers  []func() error
}

// OpenProject loads the configuration of dir and builds the graph loader and
// the profile store it describes.
func OpenProject(dir string, debug bool) (*Project, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	logger, err := createLogger(cfg, debug)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Config: cfg,
		Loader: file.NewLoader(cfg.GraphsDir(), file.WithLoaderLogger(logger)),
		Logger: logger,
	}

	if p.defaults, err = cfg.Defaults(); err != nil {
		return nil, err
	}

	store, locker, err := p.openStore()
	if err != nil {
		return nil, err
	}
	opts := []profile.Option{profile.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, profile.WithLocker(locker))
		if cfg.Store.LockTTL > 0 {
			opts = append(opts, profile.WithLockTTL(cfg.Store.LockTTL))
		}
	}
	p.Profiles = profile.NewManager(store, opts...)
	return p, nil
}

// openStore builds the configured snapshot store wrapped in its middlewares.
func (p *Project) openStore() (ports.SnapshotStore, ports.DistributedLocker, error) {
	cfg := p.Config.Store

	var (
		store  ports.SnapshotStore
		locker ports.DistributedLocker
	)
	switch cfg.Driver {
	case config.DriverMemory:
		store = memory.NewStore()
	case config.DriverFile:
		store = file.NewStore(p.Config.ProfilesDir())
	case config.DriverRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		p.closers = append(p.closers, rs.Close)
		store = rs
		locker = redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
	default:
		return nil, nil, fmt.Errorf("unknown store driver '%s'", cfg.Driver)
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.Redact)
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, mw)
	}
	key, err := p.Config.EncryptionKey()
	if err != nil {
		return nil, nil, err
	}
	if key != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), locker, nil
}

// WithHooks adds lifecycle hooks to every engine created afterwards.
func (p *Project) WithHooks(opts ...colloquy.Option) {
	p.hooks = append(p.hooks, opts...)
}

// NewEngine initializes a Colloquy engine with standard CLI conventions.
// profileID may be empty for a run without persistence.
func (p *Project) NewEngine(profileID string, extra ...colloquy.Option) (*colloquy.Engine, error) {
	globals := variables.NewStoreFrom(p.defaults)

	opts := []colloquy.Option{
		colloquy.WithLogger(p.Logger),
		colloquy.WithLifecycleHooks(observability.LogHooks(p.Logger)),
		colloquy.WithGlobals(globals),
		colloquy.WithMaxSkipHops(p.Config.MaxSkipHops),
	}
	opts = append(opts, p.hooks...)
	if profileID != "" {
		opts = append(opts, colloquy.WithProfile(p.Profiles, profileID))
	}
	opts = append(opts, extra...)

	eng, err := colloquy.New(p.Loader, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}

// Entry resolves the graph to start: the explicit id, the configured entry
// if such a graph exists, or the conventional entry points.
func (p *Project) Entry(graphID string) string {
	if graphID != "" {
		return graphID
	}
	dir := p.Config.GraphsDir()
	if hasGraph(dir, p.Config.Entry) {
		return p.Config.Entry
	}
	return determineEntryPoint(dir)
}

// Close releases store connections.
func (p *Project) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// determineEntryPoint picks the graph to run when none is configured:
// start, main, index, or the graph named after the directory.
func determineEntryPoint(dir string) string {
	for _, id := range []string{"start", "main", "index"} {
		if hasGraph(dir, id) {
			return id
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		if base := filepath.Base(abs); hasGraph(dir, base) {
			return base
		}
	}
	return "start"
}

// hasGraph checks if a graph document exists for id in the directory.
func hasGraph(dir, id string) bool {
	for _, ext := range []string{".yaml", ".yml"} {
		if _, err := os.Stat(filepath.Join(dir, id+ext)); err == nil {
			return true
		}
	}
	return false
}
