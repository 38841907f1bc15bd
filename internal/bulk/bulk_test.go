package bulk

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ismailkaraca/kohasayim/internal/catalog"
	"github.com/ismailkaraca/kohasayim/internal/classify"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/models"
)

func testClassifier(t *testing.T) *classify.Classifier {
	t.Helper()

	rows := make([]models.ReferenceRecord, 0, 50)
	for i := 0; i < 50; i++ {
		rows = append(rows, models.ReferenceRecord{
			Identifier:      fmt.Sprintf("1012000%05d", i),
			Status:          models.StatusInCollection,
			LoanEligibility: "0",
		})
	}
	index, err := catalog.NewIndex(rows)
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	return classify.New(models.Scope{LibraryCode: "12"}, index, ledger.New(), classify.NewDirectory())
}

func TestRunChunksAndYields(t *testing.T) {
	c := testClassifier(t)

	codes := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		codes = append(codes, fmt.Sprintf("1012000%05d", i))
	}
	codes = append(codes, "9780134190440") // ISBN, surfaced but not logged
	codes = append(codes, "")              // blank, ignored

	var yields []Progress
	runner := New(c, 20)
	final, err := runner.Run(context.Background(), codes, func(p Progress) {
		yields = append(yields, p)
	})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	// 52 codes in chunks of 20 yields 3 times.
	if len(yields) != 3 {
		t.Errorf("Expected 3 yield points, got %d", len(yields))
	}
	if final.Processed != 52 {
		t.Errorf("Expected Processed=52, got %d", final.Processed)
	}
	if final.Logged != 50 {
		t.Errorf("Expected Logged=50, got %d", final.Logged)
	}
	if final.ISBNs != 1 {
		t.Errorf("Expected ISBNs=1, got %d", final.ISBNs)
	}
	if final.Ignored != 1 {
		t.Errorf("Expected Ignored=1, got %d", final.Ignored)
	}

	if c.Ledger().Len() != 50 {
		t.Errorf("Expected 50 ledger events, got %d", c.Ledger().Len())
	}
	if !c.Ledger().Seen("101200000042") {
		t.Error("Expected bulk scans to enter the seen set")
	}
}

func TestRunCancellationBetweenChunks(t *testing.T) {
	c := testClassifier(t)

	codes := make([]string, 40)
	for i := range codes {
		codes[i] = fmt.Sprintf("1012000%05d", i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner := New(c, 10)
	progress, err := runner.Run(ctx, codes, func(p Progress) {
		if p.Processed >= 20 {
			cancel()
		}
	})
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if progress.Processed != 20 {
		t.Errorf("Expected processing to stop at the yield point, got %d", progress.Processed)
	}
}

func TestRunSuppressesNotifications(t *testing.T) {
	c := testClassifier(t)

	var notified int
	c.SetNotifier(func(classify.Outcome) { notified++ })

	codes := []string{"101200000001", "101200000002", "9780134190440"}
	runner := New(c, 0)
	if _, err := runner.Run(context.Background(), codes, nil); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	// Only the ISBN hit breaks through bulk suppression.
	if notified != 1 {
		t.Errorf("Expected 1 notification (the ISBN), got %d", notified)
	}
}

func TestReadCodes(t *testing.T) {
	input := "101200000001\n\n  101200000002  \n9780134190440\n"
	codes, err := ReadCodes(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCodes() returned error: %v", err)
	}

	expected := []string{"101200000001", "101200000002", "9780134190440"}
	if len(codes) != len(expected) {
		t.Fatalf("Expected %d codes, got %d", len(expected), len(codes))
	}
	for i, code := range expected {
		if codes[i] != code {
			t.Errorf("Expected code %d to be %s, got %s", i, code, codes[i])
		}
	}
}
