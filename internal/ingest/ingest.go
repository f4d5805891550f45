// Package ingest loads JSONL record files into the store, either one-shot
// (CLI import) or by watching a drop directory the mobile app exports into.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mwhelan/daybreak/internal/record"
	"github.com/mwhelan/daybreak/internal/store"
)

// settleDelay gives the writer time to finish the file after the create
// event fires.
const settleDelay = 200 * time.Millisecond

// Result counts what one file contributed.
type Result struct {
	CheckIns    int
	Meetings    int
	Meditations int
	Skipped     int // malformed or invalid lines
}

// File ingests one JSONL file of record entries. Malformed lines are skipped
// with a warning rather than aborting the whole file.
func File(ctx context.Context, repo store.Repository, path string, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var res Result
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var e record.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			logger.Warn("skipping malformed line", "file", path, "line", line, "error", err)
			res.Skipped++
			continue
		}
		if err := e.Validate(); err != nil {
			logger.Warn("skipping invalid entry", "file", path, "line", line, "error", err)
			res.Skipped++
			continue
		}

		switch {
		case e.CheckIn != nil:
			err = repo.AddCheckIn(ctx, *e.CheckIn)
			res.CheckIns++
		case e.Meeting != nil:
			err = repo.AddMeeting(ctx, *e.Meeting)
			res.Meetings++
		case e.Meditation != nil:
			err = repo.AddMeditation(ctx, *e.Meditation)
			res.Meditations++
		}
		if err != nil {
			return res, fmt.Errorf("store line %d of %s: %w", line, path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	return res, nil
}

// Watch ingests every *.jsonl file dropped into dir until ctx is cancelled.
// Files are processed once, on arrival; already-present files are ingested
// at startup.
func Watch(ctx context.Context, repo store.Repository, dir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ingest dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Catch up on files that arrived before the watch started.
	existing, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return fmt.Errorf("scan ingest dir: %w", err)
	}
	for _, p := range existing {
		ingestOne(ctx, repo, p, logger)
	}

	logger.Info("watching ingest directory", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".jsonl") {
				continue
			}
			time.Sleep(settleDelay)
			ingestOne(ctx, repo, event.Name, logger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("ingest watcher error", "error", err)
		}
	}
}

func ingestOne(ctx context.Context, repo store.Repository, path string, logger *slog.Logger) {
	res, err := File(ctx, repo, path, logger)
	if err != nil {
		logger.Error("ingest failed", "file", path, "error", err)
		return
	}
	logger.Info("ingested file",
		"file", path,
		"check_ins", res.CheckIns,
		"meetings", res.Meetings,
		"meditations", res.Meditations,
		"skipped", res.Skipped)

	done := path + ".done"
	if err := os.Rename(path, done); err != nil {
		logger.Warn("could not mark file done", "file", path, "error", err)
	}
}
