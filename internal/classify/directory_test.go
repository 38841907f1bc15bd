package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

func TestLoadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libraries.yaml")
	content := `- code: "12"
  name: "Merkez Kutuphanesi"
- code: "8999"
  name: "Sahil Halk Kutuphanesi"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	directory, err := LoadDirectory(path)
	if err != nil {
		t.Fatalf("LoadDirectory() returned error: %v", err)
	}

	libraries := directory.Libraries()
	if len(libraries) != 2 {
		t.Fatalf("Expected 2 libraries, got %d", len(libraries))
	}
	if libraries[0].Code != "12" || libraries[0].Name != "Merkez Kutuphanesi" {
		t.Errorf("Expected first library 12/Merkez Kutuphanesi, got %s/%s", libraries[0].Code, libraries[0].Name)
	}

	// Code 8999 counts with prefix 9999.
	library, found := directory.MatchPrefix("999988887777")
	if !found {
		t.Fatal("Expected a prefix match for 999988887777")
	}
	if library.Name != "Sahil Halk Kutuphanesi" {
		t.Errorf("Expected Sahil Halk Kutuphanesi, got %s", library.Name)
	}
}

func TestLoadDirectoryMissingFile(t *testing.T) {
	if _, err := LoadDirectory(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestDirectoryAddVisibleImmediately(t *testing.T) {
	directory := NewDirectory()
	if _, found := directory.MatchPrefix("101200000055"); found {
		t.Fatal("Expected no match in an empty directory")
	}

	directory.Add(models.Library{Code: "12", Name: "Merkez Kutuphanesi"})
	library, found := directory.MatchPrefix("101200000055")
	if !found {
		t.Fatal("Expected a match after Add")
	}
	if library.Code != "12" {
		t.Errorf("Expected library code 12, got %s", library.Code)
	}
}
