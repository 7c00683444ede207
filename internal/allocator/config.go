package allocator

import (
	"encoding/json"
	"log"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Config holds the handful of allocator tunables that are safe to change
// without touching the heap's binary layout. Geometry-defining constants
// (Classes, ClassBias, Alignment, ...) live in const.go and are not
// configurable: they are baked into every header word already written.
type Config struct {
	// ChunkSize is the number of bytes extend() requests from the
	// provider when no free block satisfies an allocation, before
	// falling back to requesting the exact size needed.
	ChunkSize uint32

	// EnableAudit runs Audit() after every top-level entry point and
	// panics on the first invariant violation found. Expensive; intended
	// for tests and debug builds, never for a throughput-sensitive path.
	EnableAudit bool

	// TunablesPath, if set, is a JSON file of the form
	// {"chunk_size": 4096, "enable_audit": false} watched for changes via
	// fsnotify so ChunkSize/EnableAudit can be retuned without a restart.
	TunablesPath string
}

// Option mutates a Config. Functional options, applied in New, keep the
// common case (zero options) at the default tunables below.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		ChunkSize:   ChunkSize,
		EnableAudit: false,
	}
}

// WithChunkSize overrides the default heap-extension chunk size.
func WithChunkSize(n uint32) Option {
	return func(c *Config) { c.ChunkSize = n }
}

// WithAudit toggles post-operation invariant auditing.
func WithAudit(enabled bool) Option {
	return func(c *Config) { c.EnableAudit = enabled }
}

// WithTunablesFile enables hot-reloadable tunables backed by path.
func WithTunablesFile(path string) Option {
	return func(c *Config) { c.TunablesPath = path }
}

// tunablesFile is the on-disk shape of a TunablesPath document.
type tunablesFile struct {
	ChunkSize   *uint32 `json:"chunk_size"`
	EnableAudit *bool   `json:"enable_audit"`
}

// tunablesWatcher hot-reloads Config.ChunkSize and Config.EnableAudit from
// a JSON file. The watcher goroutine reloads whenever the file changes,
// including while an entry point is running; both fields are stored and
// read atomically, so such a reload is benign and is visible no later
// than the next entry point.
type tunablesWatcher struct {
	path        string
	watcher     *fsnotify.Watcher
	chunkSize   atomic.Uint32
	enableAudit atomic.Bool
}

func newTunablesWatcher(path string, cfg *Config) (*tunablesWatcher, error) {
	tw := &tunablesWatcher{path: path}
	tw.chunkSize.Store(cfg.ChunkSize)
	tw.enableAudit.Store(cfg.EnableAudit)

	if err := tw.reload(); err != nil {
		log.Printf("allocator: initial tunables load from %s: %v", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	tw.watcher = w

	go tw.loop()

	return tw, nil
}

func (tw *tunablesWatcher) loop() {
	for {
		select {
		case ev, ok := <-tw.watcher.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := tw.reload(); err != nil {
					log.Printf("allocator: reload tunables from %s: %v", tw.path, err)
				}
			}
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}

			log.Printf("allocator: tunables watcher error: %v", err)
		}
	}
}

func (tw *tunablesWatcher) reload() error {
	data, err := os.ReadFile(tw.path)
	if err != nil {
		return err
	}

	var doc tunablesFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	if doc.ChunkSize != nil {
		tw.chunkSize.Store(*doc.ChunkSize)
	}

	if doc.EnableAudit != nil {
		tw.enableAudit.Store(*doc.EnableAudit)
	}

	return nil
}

func (tw *tunablesWatcher) close() error {
	if tw.watcher == nil {
		return nil
	}

	return tw.watcher.Close()
}
