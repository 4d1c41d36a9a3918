package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Perdok-cat/Woodcal/internal/calc"
	"github.com/Perdok-cat/Woodcal/internal/model"
)

func TestSheetIncludesTotals(t *testing.T) {
	var buf bytes.Buffer
	records := []model.CalculationRecord{
		{ID: 1, Round: 25, Length: 26, Head3: 13},
		{ID: 2, Round: 80, Length: 10, Head789: 51, Note: "cong"},
	}
	if err := Sheet(&buf, model.File{Name: "Ông 5", Note: "Nợ 50tr"}, records); err != nil {
		t.Fatalf("render sheet: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Ông 5") {
		t.Fatalf("unexpected title: %q", lines[0])
	}
	last := strings.Fields(lines[4])
	want := []string{"Total", "0", "51", "0", "0", "13"}
	if strings.Join(last, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected totals row: %q", lines[4])
	}
}

func TestPaymentGrandTotal(t *testing.T) {
	var buf bytes.Buffer
	p := calc.Pay(calc.Totals{model.Head3: 15}, model.Prices{model.Head3: 4})
	if err := Payment(&buf, p); err != nil {
		t.Fatalf("render payment: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "H3") || !strings.Contains(out, "60") {
		t.Fatalf("payment output missing H3 line: %s", out)
	}
}

func TestClassificationExplains(t *testing.T) {
	var buf bytes.Buffer
	if err := Classification(&buf, 25, 26); err != nil {
		t.Fatalf("render classification: %v", err)
	}
	for _, needle := range []string{"130000", "13", "H3"} {
		if !strings.Contains(buf.String(), needle) {
			t.Fatalf("missing %q in %s", needle, buf.String())
		}
	}
}

func TestFilesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Files(&buf, nil); err != nil {
		t.Fatalf("render files: %v", err)
	}
	if buf.String() != "No files found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
