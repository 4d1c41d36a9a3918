package calc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perdok-cat/Woodcal/internal/model"
)

func TestApplyNoteDemotesOneLevel(t *testing.T) {
	tests := []struct {
		name string
		in   model.CalculationRecord
		want model.CalculationRecord
	}{
		{
			name: "hundreds with stale lower buckets",
			in:   model.CalculationRecord{HeadHundreds: 135, Head789: 82, Head56: 44, Head3: 10},
			want: model.CalculationRecord{Head789: 135, Note: "cong"},
		},
		{
			name: "789 to 56",
			in:   model.CalculationRecord{Head789: 50, Head3: 3},
			want: model.CalculationRecord{Head56: 50, Note: "cong"},
		},
		{
			name: "56 to 4",
			in:   model.CalculationRecord{Head56: 20},
			want: model.CalculationRecord{Head4: 20, Note: "cong"},
		},
		{
			name: "4 to 3",
			in:   model.CalculationRecord{Head4: 7},
			want: model.CalculationRecord{Head3: 7, Note: "cong"},
		},
		{
			name: "head3 is terminal",
			in:   model.CalculationRecord{Round: 25, Length: 26, Head3: 13},
			want: model.CalculationRecord{Round: 25, Length: 26, Head3: 13, Note: "cong"},
		},
		{
			name: "empty record",
			in:   model.CalculationRecord{},
			want: model.CalculationRecord{Note: "cong"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyNote(tt.in, "cong").Apply(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected record (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyNoteBlankOnlySetsNote(t *testing.T) {
	rec := model.CalculationRecord{HeadHundreds: 12, Note: "xấu"}
	for _, note := range []string{"", "   "} {
		patch := ApplyNote(rec, note)
		require.NotNil(t, patch.Note)
		assert.Equal(t, note, *patch.Note)
		assert.Nil(t, patch.HeadHundreds)
		assert.Nil(t, patch.Head789)
	}
}

func TestApplyNoteRearmsAfterClear(t *testing.T) {
	rec := model.CalculationRecord{HeadHundreds: 40}

	rec = ApplyNote(rec, "cong").Apply(rec)
	assert.Equal(t, 40, rec.Head789)

	rec = ApplyNote(rec, "sâu").Apply(rec)
	assert.Equal(t, 40, rec.Head789, "changing a note must not demote again")
	assert.Equal(t, "sâu", rec.Note)

	rec = ApplyNote(rec, "").Apply(rec)
	rec = ApplyNote(rec, "cong").Apply(rec)
	assert.Equal(t, 0, rec.Head789)
	assert.Equal(t, 40, rec.Head56)
}

func TestDemoteTerminal(t *testing.T) {
	_, ok := Demote(model.CalculationRecord{Head3: 5})
	assert.False(t, ok)
}
