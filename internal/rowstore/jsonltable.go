// Line-oriented JSON persistence for one sequence of records.

package rowstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Cloner is implemented by record types that can clone themselves.
type Cloner[T any] interface {
	Clone() T
}

// jsonlFile persists an ordered sequence of records, one JSON document per
// line, with an in-memory cache. Reads hand out clones so callers cannot
// mutate the cache behind the lock.
type jsonlFile[T Cloner[T]] struct {
	path string
	mu   sync.RWMutex

	records []T
}

// openJSONLFile creates the file's directory if needed and loads all
// records.
func openJSONLFile[T Cloner[T]](path string) (*jsonlFile[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}
	f := &jsonlFile[T]{path: path}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *jsonlFile[T]) load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.records = []T{}
			return nil
		}
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var records []T
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("unmarshal record in %s: %w", f.path, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	f.records = records
	return nil
}

// Len returns the number of records.
func (f *jsonlFile[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.records)
}

// All returns clones of all records in order.
func (f *jsonlFile[T]) All() []T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]T, len(f.records))
	for i, r := range f.records {
		out[i] = r.Clone()
	}
	return out
}

// Append adds a record and persists it.
func (f *jsonlFile[T]) Append(rec T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", f.path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if _, err := file.WriteString("\n"); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	f.records = append(f.records, rec.Clone())
	return nil
}

// Replace swaps in a new full record sequence and persists it.
func (f *jsonlFile[T]) Replace(records []T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	w := bufio.NewWriter(file)
	kept := make([]T, len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
		kept[i] = rec.Clone()
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", f.path, err)
	}
	f.records = kept
	return nil
}
