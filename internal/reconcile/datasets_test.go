package reconcile

import (
	"testing"

	"github.com/ismailkaraca/kohasayim/internal/catalog"
	"github.com/ismailkaraca/kohasayim/internal/classify"
	"github.com/ismailkaraca/kohasayim/internal/ledger"
	"github.com/ismailkaraca/kohasayim/internal/models"
)

func buildTestDatasets(t *testing.T) *Datasets {
	t.Helper()

	rows := []models.ReferenceRecord{
		record("101200000001", "YB", models.StatusInCollection),
		record("101200000002", "DEPO", models.StatusInCollection),
		record("101200000003", "YB", models.StatusInCollection),  // never scanned
		record("101200000004", "YB", models.StatusWrittenOff),    // never scanned, inactive
	}

	index, err := catalog.NewIndex(rows)
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	led := ledger.New()
	directory := classify.NewDirectory(models.Library{Code: "8999", Name: "Sahil Halk Kutuphanesi"})
	c := classify.New(models.Scope{LibraryCode: "12", LocationCode: "YB"}, index, led, directory)

	c.Classify("101200000001") // clean
	c.Classify("101200000001") // duplicate
	c.Classify("101200000001") // duplicate again
	c.Classify("101200000002") // location mismatch (DEPO vs YB scope)
	c.Classify("999988887777") // wrong library
	c.Classify("555500012345") // invalid structure
	c.Classify("101200099999") // not found

	return BuildDatasets(index, led)
}

func TestBuildDatasets(t *testing.T) {
	d := buildTestDatasets(t)

	if len(d.Clean) != 1 || d.Clean[0].Identifier != "101200000001" {
		t.Errorf("Expected clean=[101200000001], got %v", d.Clean)
	}

	if len(d.Missing) != 1 {
		t.Fatalf("Expected 1 missing row, got %d", len(d.Missing))
	}
	if d.Missing[0].Identifier != "101200000003" {
		t.Errorf("Expected missing item 101200000003, got %s", d.Missing[0].Identifier)
	}

	if len(d.Duplicates) != 1 {
		t.Fatalf("Expected 1 duplicate group, got %d", len(d.Duplicates))
	}
	if d.Duplicates[0].Identifier != "101200000001" || d.Duplicates[0].ScanCount != 3 {
		t.Errorf("Expected 101200000001 scanned 3 times, got %s x%d",
			d.Duplicates[0].Identifier, d.Duplicates[0].ScanCount)
	}

	if len(d.WrongLibrary) != 1 || d.WrongLibrary[0].Identifier != "999988887777" {
		t.Errorf("Expected wrong_library=[999988887777], got %v", d.WrongLibrary)
	}
	if len(d.LocationMismatch) != 1 || d.LocationMismatch[0].Identifier != "101200000002" {
		t.Errorf("Expected location_mismatch=[101200000002], got %v", d.LocationMismatch)
	}
	if len(d.InvalidStructure) != 1 || d.InvalidStructure[0].Identifier != "555500012345" {
		t.Errorf("Expected invalid_structure=[555500012345], got %v", d.InvalidStructure)
	}
	if len(d.NotFound) != 1 || d.NotFound[0].Identifier != "101200099999" {
		t.Errorf("Expected not_found=[101200099999], got %v", d.NotFound)
	}

	// Full export joins every scan with its warnings.
	if len(d.Full) != 7 {
		t.Errorf("Expected 7 full rows, got %d", len(d.Full))
	}
	for _, row := range d.Full {
		if row.ScannedAt == "" {
			t.Errorf("Expected scanned_at on full row %s", row.Identifier)
		}
	}
}

func TestDatasetsByName(t *testing.T) {
	d := buildTestDatasets(t)

	for _, name := range DatasetNames {
		if _, ok := d.ByName(name); !ok {
			t.Errorf("Expected dataset %q to resolve", name)
		}
	}
	if _, ok := d.ByName("nope"); ok {
		t.Error("Expected unknown dataset name not to resolve")
	}
}

func TestRowFromEventJoinsWarnings(t *testing.T) {
	rows := []models.ReferenceRecord{
		{
			Identifier:      "101200000001",
			Status:          models.StatusTransferred,
			LoanEligibility: "4",
			Location:        "DEPO",
			OnLoan:          true,
			Title:           "Saatleri Ayarlama Enstitusu",
		},
	}
	index, err := catalog.NewIndex(rows)
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	led := ledger.New()
	c := classify.New(models.Scope{LibraryCode: "12", LocationCode: "YB"}, index, led, classify.NewDirectory())
	c.Classify("101200000001")

	d := BuildDatasets(index, led)
	if len(d.Full) != 1 {
		t.Fatalf("Expected 1 full row, got %d", len(d.Full))
	}

	row := d.Full[0]
	if row.Title != "Saatleri Ayarlama Enstitusu" {
		t.Errorf("Expected catalog fields joined onto the row, got title %q", row.Title)
	}
	if row.Warnings == "" {
		t.Error("Expected joined warning messages on the row")
	}
}
