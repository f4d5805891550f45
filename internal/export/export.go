// Package export writes the full record history as zstd-compressed JSONL,
// suitable for backup or re-import through the ingest path.
package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/mwhelan/daybreak/internal/record"
	"github.com/mwhelan/daybreak/internal/store"
)

// Export writes all records from repo into dir as
// daybreak-history-YYYYMMDD.jsonl.zst and returns the file path. Check-ins
// come first, then meetings, then meditations, each oldest first, so exports
// of the same history are byte-identical.
func Export(ctx context.Context, repo store.Repository, dir string) (string, error) {
	entries, err := collect(ctx, repo)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	destPath := filepath.Join(dir, fmt.Sprintf("daybreak-history-%s.jsonl.zst", time.Now().UTC().Format("20060102")))
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	enc := json.NewEncoder(encoder)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			encoder.Close()
			return "", fmt.Errorf("encode entry: %w", err)
		}
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}
	return destPath, nil
}

// Read decompresses an export file and returns its entries in file order.
func Read(path string) ([]record.Entry, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var entries []record.Entry
	scanner := bufio.NewScanner(decoder)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e record.Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return entries, nil
}

func collect(ctx context.Context, repo store.Repository) ([]record.Entry, error) {
	checkIns, err := repo.CheckIns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load check-ins: %w", err)
	}
	meetings, err := repo.Meetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load meetings: %w", err)
	}
	meditations, err := repo.Meditations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load meditations: %w", err)
	}

	entries := make([]record.Entry, 0, len(checkIns)+len(meetings)+len(meditations))
	for i := range checkIns {
		entries = append(entries, record.Entry{CheckIn: &checkIns[i]})
	}
	for i := range meetings {
		entries = append(entries, record.Entry{Meeting: &meetings[i]})
	}
	for i := range meditations {
		entries = append(entries, record.Entry{Meditation: &meditations[i]})
	}
	return entries, nil
}
