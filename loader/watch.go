package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch calls fn with the selector of every dataset file written or
// created in d.Dir until ctx is done. fn runs on the watching goroutine.
func (d *DirSource) Watch(ctx context.Context, logger *zap.Logger, fn func(selector string)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", d.Dir, err)
	}
	defer w.Close()
	if err := w.Add(d.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", d.Dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if sel, ok := selectorOf(filepath.Base(ev.Name)); ok {
				logger.Debug("dataset changed", zap.String("selector", sel), zap.String("op", ev.Op.String()))
				fn(sel)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.String("dir", d.Dir), zap.Error(err))
		}
	}
}
