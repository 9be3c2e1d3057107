package project

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
	"github.com/wmcornejo/reView/pkg/errors"
)

// Registry holds every loaded project keyed by lower-cased name.  All
// project files are parsed up front; lookups never touch disk.  Safe for
// concurrent reads.
type Registry struct {
	configDir string
	dataDir   string
	reader    FrameReader
	logger    logging.Logger
	onReload  func(trigger string, loaded int)

	mu       sync.RWMutex
	projects map[string]*Config
}

// RegistryOption tunes registry construction.
type RegistryOption func(*Registry)

// WithReloadHook runs after every successful (re)load, with the trigger
// ("startup", "fsnotify", "manual") and the number of loaded projects.
func WithReloadHook(hook func(trigger string, loaded int)) RegistryOption {
	return func(r *Registry) { r.onReload = hook }
}

// NewRegistry loads every project config under configDir.  Unparsable files
// are logged and skipped; an unreadable directory fails construction.
func NewRegistry(configDir, dataDir string, reader FrameReader, log logging.Logger, opts ...RegistryOption) (*Registry, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	r := &Registry{
		configDir: ExpandPath(configDir, ""),
		dataDir:   ExpandPath(dataDir, ""),
		reader:    reader,
		logger:    log.Named("project.registry"),
		projects:  make(map[string]*Config),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Reload("startup"); err != nil {
		return nil, err
	}
	return r, nil
}

// ConfigDir returns the expanded config directory.
func (r *Registry) ConfigDir() string { return r.configDir }

// DataDir returns the expanded data root substituted for REVIEW_DATA_DIR.
func (r *Registry) DataDir() string { return r.dataDir }

// Reload re-parses the config directory and swaps the project set.
func (r *Registry) Reload(trigger string) error {
	entries, err := os.ReadDir(r.configDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeValidation,
			"cannot read project config directory %s", r.configDir)
	}

	loaded := make(map[string]*Config)
	for _, entry := range entries {
		if entry.IsDir() || !isConfigFile(entry.Name()) {
			continue
		}
		path := filepath.Join(r.configDir, entry.Name())
		cfg, err := LoadConfig(path, r.dataDir, r.reader)
		if err != nil {
			r.logger.Warn("skipping unparsable project config",
				logging.String("path", path), logging.Err(err))
			continue
		}
		key := strings.ToLower(cfg.Name)
		if _, dup := loaded[key]; dup {
			r.logger.Warn("duplicate project name; keeping the first",
				logging.String("name", cfg.Name), logging.String("path", path))
			continue
		}
		loaded[key] = cfg
	}

	r.mu.Lock()
	r.projects = loaded
	r.mu.Unlock()

	r.logger.Info("project registry loaded",
		logging.String("trigger", trigger), logging.Int("projects", len(loaded)))
	if r.onReload != nil {
		r.onReload(trigger, len(loaded))
	}
	return nil
}

func isConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Get looks a project up by name, case-insensitively.
func (r *Registry) Get(name string) (*Config, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "project name is required")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cfg, ok := r.projects[strings.ToLower(name)]; ok {
		return cfg, nil
	}
	return nil, errors.Newf(errors.ErrCodeProjectUnknown,
		"no project named %q in config directory", name)
}

// Len reports how many projects are loaded.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects)
}

// Names lists projects that have at least one scenario file.
func (r *Registry) Names(ctx context.Context) []string {
	r.mu.RLock()
	configs := make([]*Config, 0, len(r.projects))
	for _, cfg := range r.projects {
		configs = append(configs, cfg)
	}
	r.mu.RUnlock()

	names := make([]string, 0, len(configs))
	for _, cfg := range configs {
		files, err := cfg.Files(ctx)
		if err != nil || len(files) == 0 {
			continue
		}
		names = append(names, cfg.Name)
	}
	return names
}

// SortedNames is Names, sorted.
func (r *Registry) SortedNames(ctx context.Context) []string {
	names := r.Names(ctx)
	sort.Strings(names)
	return names
}

// Watch reloads the registry whenever a project config file changes.  The
// watcher stops when ctx is canceled.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create config watcher")
	}
	if err := watcher.Add(r.configDir); err != nil {
		watcher.Close()
		return errors.Wrapf(err, errors.ErrCodeInternal,
			"failed to watch config directory %s", r.configDir)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isConfigFile(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.Reload("fsnotify"); err != nil {
					r.logger.Error("project reload failed", logging.Err(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Error("config watcher error", logging.Err(err))
			}
		}
	}()

	r.logger.Info("watching project config directory", logging.String("dir", r.configDir))
	return nil
}
