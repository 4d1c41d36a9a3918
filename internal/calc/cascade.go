package calc

import (
	"strings"

	"github.com/Perdok-cat/Woodcal/internal/model"
)

// demotion moves the value held in from down to to and zeroes the buckets in clear.
type demotion struct {
	from  model.Bucket
	to    model.Bucket
	clear []model.Bucket
}

// Highest denomination first. Head3 is terminal and has no entry.
var demotions = []demotion{
	{from: model.HeadHundreds, to: model.Head789, clear: []model.Bucket{model.Head56, model.Head4, model.Head3}},
	{from: model.Head789, to: model.Head56, clear: []model.Bucket{model.Head4, model.Head3}},
	{from: model.Head56, to: model.Head4, clear: []model.Bucket{model.Head3}},
	{from: model.Head4, to: model.Head3},
}

// Demote moves the highest occupied bucket down one level. Stale values in
// lower buckets are overwritten with zero. ok is false when only Head3 (or
// nothing) is occupied.
func Demote(rec model.CalculationRecord) (patch model.RecordPatch, ok bool) {
	for _, d := range demotions {
		v := rec.Value(d.from)
		if v <= 0 {
			continue
		}
		patch.SetBucket(d.from, 0)
		patch.SetBucket(d.to, v)
		for _, b := range d.clear {
			patch.SetBucket(b, 0)
		}
		return patch, true
	}
	return model.RecordPatch{}, false
}

// ApplyNote returns the updates for setting note on rec. The note is always
// written. A non-blank note demotes the record one level, but only when the
// record's current note is blank: changing one note for another does not
// demote again until the note has been cleared.
func ApplyNote(rec model.CalculationRecord, note string) model.RecordPatch {
	var patch model.RecordPatch
	if strings.TrimSpace(note) != "" && strings.TrimSpace(rec.Note) == "" {
		patch, _ = Demote(rec)
	}
	patch.Note = model.String(note)
	return patch
}
