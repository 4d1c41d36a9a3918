// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Bucket identifies one of the five head denominations a value is classified into.
type Bucket int

// Buckets ordered from the lowest denomination to the highest.
const (
	Head3 Bucket = iota
	Head4
	Head56
	Head789
	HeadHundreds
)

// BucketsDescending lists buckets in display order, highest denomination first.
var BucketsDescending = []Bucket{HeadHundreds, Head789, Head56, Head4, Head3}

// String returns the short column label for the bucket.
func (b Bucket) String() string {
	switch b {
	case Head3:
		return "H3"
	case Head4:
		return "H4"
	case Head56:
		return "H56"
	case Head789:
		return "H789"
	case HeadHundreds:
		return "H100"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

// File is a customer file owning an ordered list of calculation records.
type File struct {
	ID        string
	Name      string
	Note      string
	UpdatedAt time.Time
}

// CalculationRecord is one row of a calculation sheet.
type CalculationRecord struct {
	ID           int64
	Round        int
	Length       float64
	HeadHundreds int
	Head789      int
	Head56       int
	Head4        int
	Head3        int
	Note         string
}

// Value returns the record's value in bucket b.
func (r CalculationRecord) Value(b Bucket) int {
	switch b {
	case Head3:
		return r.Head3
	case Head4:
		return r.Head4
	case Head56:
		return r.Head56
	case Head789:
		return r.Head789
	case HeadHundreds:
		return r.HeadHundreds
	default:
		return 0
	}
}

// RecordPatch is a partial record. Nil fields are left untouched on merge.
type RecordPatch struct {
	Round        *int
	Length       *float64
	HeadHundreds *int
	Head789      *int
	Head56       *int
	Head4        *int
	Head3        *int
	Note         *string
}

// SetBucket sets the patch field for bucket b.
func (p *RecordPatch) SetBucket(b Bucket, v int) {
	switch b {
	case Head3:
		p.Head3 = &v
	case Head4:
		p.Head4 = &v
	case Head56:
		p.Head56 = &v
	case Head789:
		p.Head789 = &v
	case HeadHundreds:
		p.HeadHundreds = &v
	}
}

// Empty reports whether the patch names no fields.
func (p RecordPatch) Empty() bool {
	return p.Round == nil && p.Length == nil &&
		p.HeadHundreds == nil && p.Head789 == nil && p.Head56 == nil &&
		p.Head4 == nil && p.Head3 == nil && p.Note == nil
}

// Apply merges the non-nil patch fields into a copy of rec.
func (p RecordPatch) Apply(rec CalculationRecord) CalculationRecord {
	if p.Round != nil {
		rec.Round = *p.Round
	}
	if p.Length != nil {
		rec.Length = *p.Length
	}
	if p.HeadHundreds != nil {
		rec.HeadHundreds = *p.HeadHundreds
	}
	if p.Head789 != nil {
		rec.Head789 = *p.Head789
	}
	if p.Head56 != nil {
		rec.Head56 = *p.Head56
	}
	if p.Head4 != nil {
		rec.Head4 = *p.Head4
	}
	if p.Head3 != nil {
		rec.Head3 = *p.Head3
	}
	if p.Note != nil {
		rec.Note = *p.Note
	}
	return rec
}

// Int returns a pointer to v, for building patches.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v, for building patches.
func String(v string) *string { return &v }

// SheetConfig defines calculation sheet behaviour.
type SheetConfig struct {
	SettleDelay time.Duration
	Notes       []string
}

// Prices holds the unit price per bucket used by the payment summary.
type Prices map[Bucket]float64

// LogConfig defines logger settings.
type LogConfig struct {
	Level string
	Path  string
}
