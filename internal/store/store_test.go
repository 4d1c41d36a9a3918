package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perdok-cat/Woodcal/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "woodcal.db"))
	require.NoError(t, err, "open store")
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestUpdateThenLoadKeepsUntouchedFields(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	file, err := st.CreateFile(ctx, "Ông 5", "Nợ 50tr")
	require.NoError(t, err)

	id, err := st.InsertRecord(ctx, file.ID, model.CalculationRecord{Round: 2, Length: 26, Head3: 10, Note: "xấu"})
	require.NoError(t, err)

	err = st.UpdateRecord(ctx, file.ID, id, model.RecordPatch{Round: model.Int(25), Head3: model.Int(13)})
	require.NoError(t, err)

	records, err := st.LoadRecords(ctx, file.ID)
	require.NoError(t, err)
	want := []model.CalculationRecord{{ID: id, Round: 25, Length: 26, Head3: 13, Note: "xấu"}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestLoadRecordsInsertionOrderPerFile(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.CreateFile(ctx, "Ông 6", "")
	require.NoError(t, err)
	b, err := st.CreateFile(ctx, "Ông 7", "")
	require.NoError(t, err)

	var ids []int64
	for i := 1; i <= 3; i++ {
		id, err := st.InsertRecord(ctx, a.ID, model.CalculationRecord{Round: i})
		require.NoError(t, err)
		ids = append(ids, id)
		_, err = st.InsertRecord(ctx, b.ID, model.CalculationRecord{Round: 100 + i})
		require.NoError(t, err)
	}

	records, err := st.LoadRecords(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, ids[i], rec.ID)
		assert.Equal(t, i+1, rec.Round)
	}
}

func TestUpdateRecordErrors(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	file, err := st.CreateFile(ctx, "Ông 5", "")
	require.NoError(t, err)

	err = st.UpdateRecord(ctx, file.ID, 42, model.RecordPatch{Round: model.Int(1)})
	assert.ErrorIs(t, err, ErrRecordNotFound)

	assert.NoError(t, st.UpdateRecord(ctx, file.ID, 42, model.RecordPatch{}), "empty patch is a no-op")

	_, err = st.InsertRecord(ctx, "missing", model.CalculationRecord{})
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestListFilesNewestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 11, 18, 13, 15, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := st.CreateFile(ctx, "first", "")
	require.NoError(t, err)
	second, err := st.CreateFile(ctx, "second", "")
	require.NoError(t, err)

	files, err := st.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, second.ID, files[0].ID)

	_, err = st.InsertRecord(ctx, first.ID, model.CalculationRecord{})
	require.NoError(t, err)
	files, err = st.ListFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, files[0].ID, "record insert touches the file")
}

func TestDeleteFileRemovesRecords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	file, err := st.CreateFile(ctx, "Ông 5", "")
	require.NoError(t, err)
	_, err = st.InsertRecord(ctx, file.ID, model.CalculationRecord{Round: 25})
	require.NoError(t, err)

	require.NoError(t, st.DeleteFile(ctx, file.ID))

	records, err := st.LoadRecords(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
	_, err = st.GetFile(ctx, file.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, st.DeleteFile(ctx, file.ID), ErrFileNotFound)
}

func TestCreateFileRequiresName(t *testing.T) {
	st := openTestStore(t)
	_, err := st.CreateFile(context.Background(), "   ", "note")
	assert.Error(t, err)
}

func TestOpenAddsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id TEXT NOT NULL,
		round INTEGER NOT NULL DEFAULT 0,
		length REAL NOT NULL DEFAULT 0,
		head_3 INTEGER NOT NULL DEFAULT 0,
		note TEXT NOT NULL DEFAULT ''
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO records (file_id, round, length, head_3) VALUES ('f', 25, 26, 13)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	records, err := st.LoadRecords(context.Background(), "f")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 13, records[0].Head3)
	assert.Equal(t, 0, records[0].HeadHundreds)
}
