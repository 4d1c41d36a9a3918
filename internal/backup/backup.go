// Package backup exports a file and its records to YAML and imports them back.
package backup

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Perdok-cat/Woodcal/internal/model"
)

// FormatVersion is the document version written by Export.
const FormatVersion = 1

// Store is the persistence needed to export and import files.
type Store interface {
	GetFile(ctx context.Context, id string) (model.File, error)
	SaveFile(ctx context.Context, file model.File) error
	InsertRecord(ctx context.Context, fileID string, rec model.CalculationRecord) (int64, error)
	LoadRecords(ctx context.Context, fileID string) ([]model.CalculationRecord, error)
}

// Document is the YAML layout of an exported file.
type Document struct {
	Version int         `yaml:"version"`
	File    fileDoc     `yaml:"file"`
	Records []recordDoc `yaml:"records"`
}

type fileDoc struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Note      string    `yaml:"note,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

type recordDoc struct {
	Round        int     `yaml:"round"`
	Length       float64 `yaml:"length"`
	HeadHundreds int     `yaml:"h100,omitempty"`
	Head789      int     `yaml:"h789,omitempty"`
	Head56       int     `yaml:"h56,omitempty"`
	Head4        int     `yaml:"h4,omitempty"`
	Head3        int     `yaml:"h3,omitempty"`
	Note         string  `yaml:"note,omitempty"`
}

// Export writes the file and its records as YAML.
func Export(ctx context.Context, st Store, fileID string, w io.Writer) error {
	file, err := st.GetFile(ctx, fileID)
	if err != nil {
		return err
	}
	records, err := st.LoadRecords(ctx, fileID)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	doc := Document{
		Version: FormatVersion,
		File: fileDoc{
			ID:        file.ID,
			Name:      file.Name,
			Note:      file.Note,
			UpdatedAt: file.UpdatedAt.UTC(),
		},
		Records: make([]recordDoc, 0, len(records)),
	}
	for _, rec := range records {
		doc.Records = append(doc.Records, recordDoc{
			Round:        rec.Round,
			Length:       rec.Length,
			HeadHundreds: rec.HeadHundreds,
			Head789:      rec.Head789,
			Head56:       rec.Head56,
			Head4:        rec.Head4,
			Head3:        rec.Head3,
			Note:         rec.Note,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Import reads a YAML document and stores it as a file. Unless keepID is
// set the file gets a fresh id; records always get fresh ids.
func Import(ctx context.Context, st Store, r io.Reader, keepID bool) (model.File, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return model.File{}, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Version != FormatVersion {
		return model.File{}, fmt.Errorf("unsupported backup version %d", doc.Version)
	}
	if strings.TrimSpace(doc.File.Name) == "" {
		return model.File{}, fmt.Errorf("backup file has no name")
	}

	file := model.File{
		ID:        uuid.NewString(),
		Name:      doc.File.Name,
		Note:      doc.File.Note,
		UpdatedAt: doc.File.UpdatedAt,
	}
	if keepID && doc.File.ID != "" {
		file.ID = doc.File.ID
	}
	if err := st.SaveFile(ctx, file); err != nil {
		return model.File{}, err
	}
	for i, rd := range doc.Records {
		rec := model.CalculationRecord{
			Round:        rd.Round,
			Length:       rd.Length,
			HeadHundreds: rd.HeadHundreds,
			Head789:      rd.Head789,
			Head56:       rd.Head56,
			Head4:        rd.Head4,
			Head3:        rd.Head3,
			Note:         rd.Note,
		}
		if _, err := st.InsertRecord(ctx, file.ID, rec); err != nil {
			return model.File{}, fmt.Errorf("import record %d: %w", i+1, err)
		}
	}
	return st.GetFile(ctx, file.ID)
}
