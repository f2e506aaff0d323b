// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reports PLA sources that are created or modified in a
// directory, so they can be reconverted as they are edited.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period used when Watcher.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches one directory for source changes.
type Watcher struct {
	// Dir is the directory to watch. Subdirectories are not watched.
	Dir string

	// Extension selects the files reported (e.g. ".pla"); empty reports all.
	Extension string

	// Debounce is how long the directory must stay quiet before pending
	// changes are reported. Editors often write a file several times in a row.
	Debounce time.Duration

	// Log receives diagnostics; nil discards them.
	Log *zap.Logger
}

// Run blocks until ctx is cancelled, calling handle with the base name of
// every changed source once its changes settle. Names in one batch are
// reported in sorted order; handle runs on the watching goroutine.
func (w *Watcher) Run(ctx context.Context, handle func(name string)) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}
	log.Info("watching", zap.String("dir", w.Dir), zap.Duration("debounce", debounce))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug("change", zap.String("name", ev.Name), zap.String("op", ev.Op.String()))
			pending[filepath.Base(ev.Name)] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			sort.Strings(names)
			clear(pending)
			for _, name := range names {
				handle(name)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.Extension == "" || strings.EqualFold(filepath.Ext(base), w.Extension)
}
