package beatsteal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "beats.json")
	payload := BorrowedBeats{SourceFileName: "menu_theme.sns", Markers: []uint32{5, 10, 15}}

	if err := SaveCache(path, payload); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}

	loaded, ok, err := LoadCache(path)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if !ok {
		t.Fatal("expected a cached payload")
	}
	if loaded.SourceFileName != "menu_theme.sns" || loaded.BeatCount() != 3 {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestLoadCacheMissingFile(t *testing.T) {
	_, ok, err := LoadCache(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if ok {
		t.Fatal("expected no payload for missing file")
	}
}

func TestLoadCacheRejectsCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadCache(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beats.json")
	if err := SaveCache(path, BorrowedBeats{SourceFileName: "a.sns", Markers: []uint32{1}}); err != nil {
		t.Fatal(err)
	}
	if err := ClearCache(path); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("cache still present: %v", err)
	}
	if err := ClearCache(path); err != nil {
		t.Fatalf("ClearCache on missing file: %v", err)
	}
}
