package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Perdok-cat/Woodcal/internal/calc"
	"github.com/Perdok-cat/Woodcal/internal/model"
)

const dateLayout = "02/01/2006"

// Files prints the file list.
func Files(w io.Writer, files []model.File) error {
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, "No files found.")
		return err
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.ID, f.Name, f.Note, f.UpdatedAt.Local().Format(dateLayout)})
	}
	return writeLines(w, formatTable([]string{"ID", "Name", "Note", "Updated"}, rows, nil))
}

// Sheet prints a file's records followed by a totals row.
func Sheet(w io.Writer, file model.File, records []model.CalculationRecord) error {
	if _, err := fmt.Fprintf(w, "%s  %s\n", file.Name, file.Note); err != nil {
		return err
	}
	headers := []string{"#", "Round", "Length"}
	for _, b := range model.BucketsDescending {
		headers = append(headers, b.String())
	}
	headers = append(headers, "Note")

	rows := make([][]string, 0, len(records)+1)
	for i, rec := range records {
		row := []string{strconv.Itoa(i + 1), strconv.Itoa(rec.Round), formatFloat(rec.Length)}
		for _, b := range model.BucketsDescending {
			row = append(row, strconv.Itoa(rec.Value(b)))
		}
		rows = append(rows, append(row, rec.Note))
	}
	totals := calc.Sum(records)
	totalRow := []string{"", "Total", ""}
	for _, b := range model.BucketsDescending {
		totalRow = append(totalRow, strconv.Itoa(totals[b]))
	}
	rows = append(rows, append(totalRow, ""))

	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	return writeLines(w, formatTable(headers, rows, rightAlign))
}

// Payment prints totals × price = amount per bucket and the grand total.
func Payment(w io.Writer, p calc.Payment) error {
	rows := make([][]string, 0, len(p.Lines)+1)
	for _, line := range p.Lines {
		rows = append(rows, []string{
			line.Bucket.String(),
			strconv.Itoa(line.Total),
			formatFloat(line.Price),
			fmt.Sprintf("%.0f", line.Amount),
		})
	}
	rows = append(rows, []string{"Total", "", "", fmt.Sprintf("%.0f", p.Grand)})
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	return writeLines(w, formatTable([]string{"Head", "Count", "Price", "Amount"}, rows, rightAlign))
}

// Classification explains how a round and length are classified.
func Classification(w io.Writer, round int, length float64) error {
	raw := calc.Raw(round, length)
	res, ok := calc.Classify(round, length)
	bucket := "none"
	if ok {
		bucket = res.Bucket.String()
	}
	rows := [][]string{
		{"Round", strconv.Itoa(round)},
		{"Length", formatFloat(length)},
		{"Raw", strconv.FormatFloat(raw, 'f', 0, 64)},
		{"Value", strconv.Itoa(res.Value)},
		{"Bucket", bucket},
	}
	return writeLines(w, formatTable(nil, rows, map[int]bool{1: true}))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
