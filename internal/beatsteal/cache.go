package beatsteal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// cachePayload is the on-disk shape of a borrowed beat set.
type cachePayload struct {
	SourceFileName string   `json:"source_file"`
	Markers        []uint32 `json:"markers"`
}

// SaveCache writes the payload to path so a later invocation can pick it up.
func SaveCache(path string, payload BorrowedBeats) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(cachePayload{
		SourceFileName: payload.SourceFileName,
		Markers:        payload.Markers,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode beats cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write beats cache: %w", err)
	}
	return nil
}

// LoadCache reads a previously saved payload. A missing file reports ok=false
// without an error.
func LoadCache(path string) (BorrowedBeats, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return BorrowedBeats{}, false, nil
		}
		return BorrowedBeats{}, false, fmt.Errorf("read beats cache: %w", err)
	}
	var payload cachePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return BorrowedBeats{}, false, fmt.Errorf("decode beats cache: %w", err)
	}
	if len(payload.Markers) == 0 {
		return BorrowedBeats{}, false, nil
	}
	return BorrowedBeats{
		SourceFileName: payload.SourceFileName,
		Markers:        payload.Markers,
	}, true, nil
}

// ClearCache removes the cache file. A missing file is not an error.
func ClearCache(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove beats cache: %w", err)
	}
	return nil
}
