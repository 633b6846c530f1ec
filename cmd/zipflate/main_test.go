package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseOptions_ValidCombinations(t *testing.T) {
	opts, err := parseOptions("deflate", 3, 4, true, true)
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if opts.Level != 3 {
		t.Errorf("Level = %d, want 3", opts.Level)
	}
	if opts.Workers != 4 {
		t.Errorf("Workers = %d, want 4", opts.Workers)
	}
	if !opts.ForceFixed || !opts.UseXXHash {
		t.Errorf("ForceFixed/UseXXHash not carried through")
	}
}

func TestParseOptions_InvalidMethod(t *testing.T) {
	if _, err := parseOptions("bogus", 0, 0, false, false); err == nil {
		t.Fatalf("expected error for invalid method")
	}
}

func TestParseOptions_InvalidLevel(t *testing.T) {
	if _, err := parseOptions("deflate", 9, 0, false, false); err == nil {
		t.Fatalf("expected error for out-of-range level")
	}
}

func TestParseOptions_InvalidWorkers(t *testing.T) {
	if _, err := parseOptions("deflate", 0, -1, false, false); err == nil {
		t.Fatalf("expected error for negative worker count")
	}
}

func TestLoadSources_ReadsFilesAndTotalsBytes(t *testing.T) {
	dir := t.TempDir()
	path1 := filepath.Join(dir, "a.txt")
	path2 := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(path1, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(path2, []byte("world!"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sources, total, err := loadSources([]string{path1, path2})
	if err != nil {
		t.Fatalf("loadSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if total != 11 {
		t.Fatalf("total = %d, want 11", total)
	}
	if string(sources[0].Data) != "hello" {
		t.Errorf("sources[0].Data = %q, want %q", sources[0].Data, "hello")
	}
}

func TestLoadSources_MissingFile(t *testing.T) {
	if _, _, err := loadSources([]string{"/nonexistent/path/zipflate-test"}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
