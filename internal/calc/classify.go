// Package calc contains head classification, note cascading and payment arithmetic.
package calc

import (
	"math"
	"strconv"

	"github.com/Perdok-cat/Woodcal/internal/model"
)

// scale is the fixed factor applied to round² × length.
const scale = 8

// Result is a classified value and the bucket it belongs to.
type Result struct {
	Bucket model.Bucket
	Value  int
}

// Patch returns the merge-update written to a record for this result.
// Sibling buckets are not touched.
func (r Result) Patch(round int, length float64) model.RecordPatch {
	patch := model.RecordPatch{
		Round:  model.Int(round),
		Length: model.Float(length),
	}
	patch.SetBucket(r.Bucket, r.Value)
	return patch
}

// prefixRule keeps the first take digits of a raw value with exactly digits digits.
type prefixRule struct {
	digits int
	take   int
}

var prefixRules = []prefixRule{
	{digits: 5, take: 1},
	{digits: 6, take: 2},
	{digits: 7, take: 3},
	{digits: 8, take: 4},
}

type bucketRule struct {
	match  func(round int) bool
	bucket model.Bucket
}

// Evaluated in order; the first match wins. [30,40) and below 20 select nothing.
var bucketRules = []bucketRule{
	{match: func(r int) bool { return r >= 20 && r < 30 }, bucket: model.Head3},
	{match: func(r int) bool { return r >= 40 && r < 50 }, bucket: model.Head4},
	{match: func(r int) bool { return r >= 50 && r < 70 }, bucket: model.Head56},
	{match: func(r int) bool { return r >= 70 && r < 100 }, bucket: model.Head789},
	{match: func(r int) bool { return r >= 100 }, bucket: model.HeadHundreds},
}

// Raw computes floor(round × round × length × 8).
func Raw(round int, length float64) float64 {
	r := float64(round)
	return math.Floor(r * r * length * scale)
}

// Prefix extracts the classified value from a raw figure. Raw values with
// fewer than 5 or more than 8 digits yield 0.
func Prefix(raw float64) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return 0
	}
	digits := strconv.FormatFloat(raw, 'f', 0, 64)
	for _, rule := range prefixRules {
		if len(digits) != rule.digits {
			continue
		}
		v, err := strconv.Atoi(digits[:rule.take])
		if err != nil {
			return 0
		}
		return v
	}
	return 0
}

// BucketFor selects the bucket for a round count.
func BucketFor(round int) (model.Bucket, bool) {
	for _, rule := range bucketRules {
		if rule.match(round) {
			return rule.bucket, true
		}
	}
	return 0, false
}

// Classify maps a round and length to a bucket and value. The value is
// always computed; ok is false when the round selects no bucket and the
// result must be discarded.
func Classify(round int, length float64) (res Result, ok bool) {
	res.Value = Prefix(Raw(round, length))
	res.Bucket, ok = BucketFor(round)
	return res, ok
}
