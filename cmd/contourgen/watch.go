package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/phanxgames/silhouette"
)

// contourWatcher regenerates <name>.contour.json next to every source image
// in a directory whenever the image is created or rewritten.
type contourWatcher struct {
	watcher  *fsnotify.Watcher
	opts     *detectOptions
	cfg      silhouette.ContourConfig
	debounce time.Duration

	// onWritten is called after a contour file is written. Tests hook it.
	onWritten func(path string)
}

func newContourWatcher(dir string, opts *detectOptions, cfg silhouette.ContourConfig) (*contourWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &contourWatcher{
		watcher:  w,
		opts:     opts,
		cfg:      cfg,
		debounce: 200 * time.Millisecond,
	}, nil
}

// Close stops watching.
func (cw *contourWatcher) Close() error {
	return cw.watcher.Close()
}

// processDir generates contours for every source image already in dir.
func (cw *contourWatcher) processDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !isSourceImage(e.Name()) {
			continue
		}
		cw.process(filepath.Join(dir, e.Name()))
	}
	return nil
}

// process regenerates one contour file. Failures are logged, not returned,
// so one bad image does not stop the watch.
func (cw *contourWatcher) process(path string) {
	cf, err := cw.opts.detectFile(path, cw.cfg)
	if err != nil {
		silhouette.Logger().Warn("contour failed", "image", path, "err", err)
		return
	}
	out := contourPath(path)
	if err := writeContourFile(out, cf); err != nil {
		silhouette.Logger().Warn("contour write failed", "path", out, "err", err)
		return
	}
	silhouette.Logger().Info("contour written",
		"path", out, "points", len(cf.Points), "source", cf.Source)
	if cw.onWritten != nil {
		cw.onWritten(out)
	}
}

// Run processes file system events until ctx is canceled or the watcher
// closes. Bursts of events for one file are collapsed into a single
// regeneration once the file has been quiet for the debounce interval.
func (cw *contourWatcher) Run(ctx context.Context) error {
	ready := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if !isSourceImage(event.Name) || !event.Has(fsnotify.Create|fsnotify.Write) {
				continue
			}
			path := event.Name
			if t, ok := timers[path]; ok {
				t.Reset(cw.debounce)
				continue
			}
			timers[path] = time.AfterFunc(cw.debounce, func() {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})

		case path := <-ready:
			delete(timers, path)
			cw.process(path)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			silhouette.Logger().Warn("watch error", "err", err)
		}
	}
}

func buildWatchCommand() *cobra.Command {
	var opts detectOptions
	var skipExisting bool
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Regenerate contour files whenever images in a directory change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			cfg, err := opts.contourConfig()
			if err != nil {
				return err
			}
			cw, err := newContourWatcher(dir, &opts, cfg)
			if err != nil {
				return err
			}
			defer cw.Close()

			if !skipExisting {
				if err := cw.processDir(dir); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			silhouette.Logger().Info("watching", "dir", dir)
			if err := cw.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Do not process images already in the directory")
	return cmd
}
