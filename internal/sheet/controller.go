// Package sheet drives a single file's calculation sheet: row edits,
// calculate-and-advance, and note cascades, on top of a record store.
package sheet

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Perdok-cat/Woodcal/internal/calc"
	"github.com/Perdok-cat/Woodcal/internal/model"
)

// RecordStore persists calculation records for a file.
type RecordStore interface {
	InsertRecord(ctx context.Context, fileID string, rec model.CalculationRecord) (int64, error)
	UpdateRecord(ctx context.Context, fileID string, id int64, patch model.RecordPatch) error
	LoadRecords(ctx context.Context, fileID string) ([]model.CalculationRecord, error)
}

// Controller owns the in-memory rows of one file. It is not safe for
// concurrent use; callers drive it from a single event loop.
type Controller struct {
	store  RecordStore
	fileID string
	log    *zap.Logger

	records []model.CalculationRecord
	// Rows that already calculated for their current round/length.
	latched map[int64]struct{}
	lastErr error
}

// NewController constructs a controller for fileID. A nil logger discards output.
func NewController(st RecordStore, fileID string, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:   st,
		fileID:  fileID,
		log:     logger.With(zap.String("file", fileID)),
		latched: map[int64]struct{}{},
	}
}

// FileID returns the file the controller edits.
func (c *Controller) FileID() string {
	return c.fileID
}

// Load reads all rows from the store. A file without rows gets one blank row.
func (c *Controller) Load(ctx context.Context) error {
	records, err := c.store.LoadRecords(ctx, c.fileID)
	if err != nil {
		return c.fail("load records", err)
	}
	c.records = records
	c.latched = map[int64]struct{}{}
	if len(c.records) == 0 {
		if _, ok := c.AddRow(ctx); !ok {
			return c.lastErr
		}
	}
	return nil
}

// Records returns a copy of the current rows in order.
func (c *Controller) Records() []model.CalculationRecord {
	return append([]model.CalculationRecord(nil), c.records...)
}

// Record returns the row with the given id.
func (c *Controller) Record(id int64) (model.CalculationRecord, bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return model.CalculationRecord{}, false
	}
	return c.records[idx], true
}

// LastError returns the most recent store failure, or nil.
func (c *Controller) LastError() error {
	return c.lastErr
}

// Totals sums every bucket over the current rows.
func (c *Controller) Totals() calc.Totals {
	return calc.Sum(c.records)
}

// OnUpdateRecord persists patch and merges it into the row. Setting round or
// length to zero re-arms the row's calculation. On failure the row is left
// unchanged and false is returned.
func (c *Controller) OnUpdateRecord(ctx context.Context, id int64, patch model.RecordPatch) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		c.fail("update record", fmt.Errorf("record %d is not in the sheet", id))
		return false
	}
	if err := c.store.UpdateRecord(ctx, c.fileID, id, patch); err != nil {
		c.fail("update record", err, zap.Int64("record", id))
		return false
	}
	c.records[idx] = patch.Apply(c.records[idx])
	if (patch.Round != nil && *patch.Round == 0) || (patch.Length != nil && *patch.Length == 0) {
		delete(c.latched, id)
	}
	c.lastErr = nil
	return true
}

// OnLengthCommitted runs calculate-and-advance once per completed round and
// length. It returns true when the calculation was triggered.
func (c *Controller) OnLengthCommitted(ctx context.Context, id int64, round int, length float64) bool {
	if round <= 0 || length <= 0 {
		delete(c.latched, id)
		return false
	}
	if _, done := c.latched[id]; done {
		c.log.Debug("calculation already done for row", zap.Int64("record", id))
		return false
	}
	c.latched[id] = struct{}{}
	c.OnCalculateAndAddRow(ctx, id, round, length)
	return true
}

// OnCalculateAndAddRow classifies the pair, writes the bucket when one is
// selected, then appends a blank row.
func (c *Controller) OnCalculateAndAddRow(ctx context.Context, id int64, round int, length float64) {
	res, ok := calc.Classify(round, length)
	if ok {
		c.log.Debug("classified row",
			zap.Int64("record", id),
			zap.Int("round", round),
			zap.Float64("length", length),
			zap.Stringer("bucket", res.Bucket),
			zap.Int("value", res.Value))
		c.OnUpdateRecord(ctx, id, res.Patch(round, length))
	} else {
		c.log.Debug("round selects no bucket", zap.Int64("record", id), zap.Int("round", round))
	}
	c.AddRow(ctx)
}

// AddRow inserts a blank row at the end of the sheet.
func (c *Controller) AddRow(ctx context.Context) (model.CalculationRecord, bool) {
	var rec model.CalculationRecord
	id, err := c.store.InsertRecord(ctx, c.fileID, rec)
	if err != nil {
		c.fail("insert record", err)
		return model.CalculationRecord{}, false
	}
	rec.ID = id
	c.records = append(c.records, rec)
	c.lastErr = nil
	return rec, true
}

// ApplyNote sets a row's note and cascades its value down one bucket.
func (c *Controller) ApplyNote(ctx context.Context, id int64, note string) bool {
	rec, ok := c.Record(id)
	if !ok {
		c.fail("apply note", fmt.Errorf("record %d is not in the sheet", id))
		return false
	}
	return c.OnUpdateRecord(ctx, id, calc.ApplyNote(rec, note))
}

func (c *Controller) indexOf(id int64) int {
	for i := range c.records {
		if c.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) fail(op string, err error, fields ...zap.Field) error {
	c.lastErr = fmt.Errorf("%s: %w", op, err)
	c.log.Error(op+" failed", append(fields, zap.Error(err))...)
	return c.lastErr
}
