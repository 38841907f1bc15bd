package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ismailkaraca/kohasayim/internal/store"
)

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sayim.csv")
	content := "barkod,durum,odunc,yer,eser_adi\n" +
		"101200012345,0,0,YB,Ince Memed\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func runCount(t *testing.T, ctx context.Context, dbPath string, stdin string, args ...string) {
	t.Helper()
	c := newCountCmd()
	c.SetArgs(append([]string{"--catalog", writeTestCatalog(t), "--db", dbPath}, args...))
	c.SetIn(strings.NewReader(stdin))
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	if err := c.ExecuteContext(ctx); err != nil {
		t.Fatalf("count command returned error: %v", err)
	}
}

func TestCountSavesSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	runCount(t, context.Background(), dbPath, "101200012345\n", "--library", "12", "--name", "salon")

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	sessions, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 saved session, got %d", len(sessions))
	}
	if sessions[0].EventCount != 1 {
		t.Errorf("Expected 1 persisted event, got %d", sessions[0].EventCount)
	}
}

func TestCountSavesSessionOnCanceledContext(t *testing.T) {
	// Ctrl+C cancels the command context before the exit save runs; the
	// session must be persisted anyway.
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runCount(t, ctx, dbPath, "101200012345\n", "--library", "12", "--name", "salon")

	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	sessions, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected the interrupted session to be saved, got %d sessions", len(sessions))
	}
}
