package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"datarecon/core/record"
	"datarecon/core/storage"

	"github.com/minio/minio-go/v7"
)

// objectSource reads an NDJSON dataset object from bucket storage, one JSON
// record per line. Line order is the stable page order. Byte offsets of page
// boundaries are memoized so a restarted pass can issue a ranged GET instead
// of re-reading the whole object.
type objectSource struct {
	client  storage.Client
	bucket  string
	object  string
	name    string
	idField string

	mu    sync.Mutex
	marks map[int]int64 // record offset -> byte offset of its line
}

// NewObject creates a source over an NDJSON object in the given bucket.
func NewObject(name string, client storage.Client, bucket, object, idField string) Source {
	return &objectSource{
		client:  client,
		bucket:  bucket,
		object:  object,
		name:    name,
		idField: idField,
		marks:   map[int]int64{0: 0},
	}
}

func (s *objectSource) Name() string {
	return s.name
}

func (s *objectSource) Count(ctx context.Context) (int64, error) {
	// Stat first: a missing object surfaces here without opening a stream,
	// and an empty object needs no scan at all.
	info, err := s.client.StatObject(ctx, s.bucket, s.object, minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to stat object %s: %w", s.object, err)
	}
	if info.Size == 0 {
		return 0, nil
	}

	body, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to get object %s: %w", s.object, err)
	}
	defer body.Close()

	var n int64
	err = forEachLine(body, func(line string, _ int64) error {
		n++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count object %s: %w", s.object, err)
	}
	return n, nil
}

func (s *objectSource) Page(ctx context.Context, exclude map[string]struct{}, offset, limit int) ([]record.Record, error) {
	startRecord, startByte := s.nearestMark(offset)

	opts := minio.GetObjectOptions{}
	if startByte > 0 {
		if err := opts.SetRange(startByte, 0); err != nil {
			return nil, fmt.Errorf("failed to set range on %s: %w", s.object, err)
		}
	}
	body, err := s.client.GetObject(ctx, s.bucket, s.object, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", s.object, err)
	}
	defer body.Close()

	var page []record.Record
	recordIdx := startRecord
	endByte := startByte

	err = forEachLine(body, func(line string, lineEnd int64) error {
		if recordIdx >= offset {
			rec, err := decodeLine(line, exclude)
			if err != nil {
				return fmt.Errorf("record %d of %s: %w", recordIdx, s.object, err)
			}
			page = append(page, rec)
		}
		recordIdx++
		if len(page) >= limit {
			endByte = startByte + lineEnd
			return errStopScan
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(page) >= limit {
		// Remember where the next page starts for restartable paging.
		s.mu.Lock()
		s.marks[offset+len(page)] = endByte
		s.mu.Unlock()
	}
	return page, nil
}

func (s *objectSource) DistinctIDs(ctx context.Context) (map[string]struct{}, error) {
	body, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", s.object, err)
	}
	defer body.Close()

	ids := make(map[string]struct{})
	err = forEachLine(body, func(line string, _ int64) error {
		rec, err := decodeLine(line, nil)
		if err != nil {
			return err
		}
		if id, err := record.ID(rec, s.idField); err == nil {
			ids[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ids of %s: %w", s.object, err)
	}
	return ids, nil
}

func (s *objectSource) Close() error {
	return nil
}

// nearestMark returns the highest memoized page boundary at or before offset.
func (s *objectSource) nearestMark(offset int) (int, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bestRecord, bestByte := 0, int64(0)
	for rec, byteOff := range s.marks {
		if rec <= offset && rec > bestRecord {
			bestRecord, bestByte = rec, byteOff
		}
	}
	return bestRecord, bestByte
}

// errStopScan terminates forEachLine early without reporting an error.
var errStopScan = fmt.Errorf("stop scan")

// forEachLine calls fn for every non-blank line. lineEnd is the byte offset
// just past the line's newline, relative to the start of the reader.
func forEachLine(r io.Reader, fn func(line string, lineEnd int64) error) error {
	reader := bufio.NewReader(r)
	var pos int64
	for {
		line, err := reader.ReadString('\n')
		pos += int64(len(line))
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			if fnErr := fn(trimmed, pos); fnErr != nil {
				if fnErr == errStopScan {
					return nil
				}
				return fnErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// decodeLine parses one NDJSON record, keeping numbers as json.Number so the
// canonicalizer sees the exact text, and applies the top-level projection.
func decodeLine(line string, exclude map[string]struct{}) (record.Record, error) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON line: %w", err)
	}
	for name := range exclude {
		delete(raw, name)
	}
	return record.Record(raw), nil
}
