package calc

import "github.com/Perdok-cat/Woodcal/internal/model"

// Totals holds per-bucket sums over a sheet.
type Totals map[model.Bucket]int

// Sum adds up every bucket across records.
func Sum(records []model.CalculationRecord) Totals {
	totals := Totals{}
	for _, b := range model.BucketsDescending {
		totals[b] = 0
	}
	for _, rec := range records {
		for _, b := range model.BucketsDescending {
			totals[b] += rec.Value(b)
		}
	}
	return totals
}

// PaymentLine is one bucket's total multiplied by its unit price.
type PaymentLine struct {
	Bucket model.Bucket
	Total  int
	Price  float64
	Amount float64
}

// Payment summarizes the amount due for a sheet.
type Payment struct {
	Lines []PaymentLine
	Grand float64
}

// Pay multiplies totals by prices. Lines are ordered highest bucket first;
// buckets without a price are priced at zero.
func Pay(totals Totals, prices model.Prices) Payment {
	var p Payment
	for _, b := range model.BucketsDescending {
		line := PaymentLine{
			Bucket: b,
			Total:  totals[b],
			Price:  prices[b],
		}
		line.Amount = float64(line.Total) * line.Price
		p.Lines = append(p.Lines, line)
		p.Grand += line.Amount
	}
	return p
}
