package backup

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perdok-cat/Woodcal/internal/model"
	"github.com/Perdok-cat/Woodcal/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "woodcal.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	file, err := src.CreateFile(ctx, "Ông 6", "Nợ 60tr")
	require.NoError(t, err)
	for _, rec := range []model.CalculationRecord{
		{Round: 25, Length: 26, Head3: 13},
		{Round: 80, Length: 10, Head56: 51, Note: "cong"},
		{},
	} {
		_, err := src.InsertRecord(ctx, file.ID, rec)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, src, file.ID, &buf))
	assert.Contains(t, buf.String(), "name: Ông 6")

	dst := openStore(t)
	imported, err := Import(ctx, dst, strings.NewReader(buf.String()), false)
	require.NoError(t, err)
	assert.NotEqual(t, file.ID, imported.ID)
	assert.Equal(t, file.Name, imported.Name)

	want, err := src.LoadRecords(ctx, file.ID)
	require.NoError(t, err)
	got, err := dst.LoadRecords(ctx, imported.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(model.CalculationRecord{}, "ID")); diff != "" {
		t.Fatalf("records differ after import (-want +got):\n%s", diff)
	}
}

func TestImportKeepID(t *testing.T) {
	ctx := context.Background()
	doc := `version: 1
file:
  id: 0b7b2f4e-1c1a-4f43-9f5e-5f2a3c0c9d11
  name: Ông 7
  updated_at: 2025-11-18T13:15:00Z
records:
  - round: 100
    length: 10
    h100: 80
`
	st := openStore(t)
	file, err := Import(ctx, st, strings.NewReader(doc), true)
	require.NoError(t, err)
	assert.Equal(t, "0b7b2f4e-1c1a-4f43-9f5e-5f2a3c0c9d11", file.ID)

	records, err := st.LoadRecords(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 80, records[0].HeadHundreds)
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	_, err := Import(context.Background(), openStore(t), strings.NewReader("version: 9\nfile:\n  name: x\n"), false)
	assert.ErrorContains(t, err, "unsupported backup version")
}
