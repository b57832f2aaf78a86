// Package jsonl implements the default Gateway: two JSONL files in the data
// directory, one for recipes and one for favorites.
//
// Each file starts with a header record naming its format. Every further
// line is one record. Files are replaced with the temp-file, fsync, rename
// pattern so a crash mid-write leaves the previous file intact.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single record. Steps text can exceed bufio's default.
const maxLineSize = 16 << 20

// formatVersion is the newest header version this package reads and the one
// it writes.
const formatVersion = 1

// header is the first record of every file.
type header struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
}

// errMissing marks a blob that does not exist yet.
var errMissing = errors.New("file does not exist")

// readJSONL reads a JSONL file written by writeJSONL and returns the records
// after the header. Any malformed line rejects the whole file, as does a
// file with no header at all. A missing file returns errMissing.
func readJSONL(path, format string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errMissing
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var (
		records []json.RawMessage
		sawHead bool
		lineNo  int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return nil, fmt.Errorf("line %d: %w", lineNo, errMalformed)
		}
		if !sawHead {
			if err := checkHeader(line, format); err != nil {
				return nil, err
			}
			sawHead = true
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	if !sawHead {
		return nil, fmt.Errorf("missing header: %w", errForeign)
	}
	return records, nil
}

func checkHeader(line []byte, format string) error {
	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return fmt.Errorf("header: %w", errForeign)
	}
	if h.Format != format || h.Version < 1 || h.Version > formatVersion {
		return fmt.Errorf("header %q v%d: %w", h.Format, h.Version, errForeign)
	}
	return nil
}

// writeJSONL atomically writes the header and records to a JSONL file using
// the temp-file, fsync, rename pattern.
func writeJSONL(path, format string, records []json.RawMessage) error {
	head, err := json.Marshal(header{Format: format, Version: formatVersion})
	if err != nil {
		return fmt.Errorf("encoding header: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range append([]json.RawMessage{head}, records...) {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
