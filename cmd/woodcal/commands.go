package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Perdok-cat/Woodcal/internal/backup"
	"github.com/Perdok-cat/Woodcal/internal/calc"
	"github.com/Perdok-cat/Woodcal/internal/model"
	"github.com/Perdok-cat/Woodcal/internal/report"
	"github.com/Perdok-cat/Woodcal/internal/store"
)

var (
	newName string
	newNote string

	calcRound  int
	calcLength float64

	payH100 float64
	payH789 float64
	payH56  float64
	payH4   float64
	payH3   float64

	exportOut string

	importKeepID bool
)

func newFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List files, newest first",
		Args:  cobra.NoArgs,
		RunE:  runFilesCmd,
	}
}

func runFilesCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	files, err := st.ListFiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	return report.Files(cmd.OutOrStdout(), files)
}

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a file",
		Args:  cobra.NoArgs,
		RunE:  runNewCmd,
	}
	cmd.Flags().StringVar(&newName, "name", "", "file name (required)")
	cmd.Flags().StringVar(&newNote, "note", "", "file note")
	return cmd
}

func runNewCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	file, err := st.CreateFile(cmd.Context(), newName, newNote)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	logger.Info("file created", zap.String("file", file.ID), zap.String("name", file.Name))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), file.ID)
	return err
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a file and its rows",
		Args:  cobra.ExactArgs(1),
		RunE:  runRmCmd,
	}
}

func runRmCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	file, err := getFile(cmd.Context(), st, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteFile(cmd.Context(), file.ID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	logger.Info("file deleted", zap.String("file", file.ID))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", file.Name)
	return err
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a file's sheet with totals",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	file, err := getFile(cmd.Context(), st, args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadRecords(cmd.Context(), file.ID)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	return report.Sheet(cmd.OutOrStdout(), file, records)
}

func newCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Classify a round and length without storing it",
		Args:  cobra.NoArgs,
		RunE:  runCalcCmd,
	}
	cmd.Flags().IntVar(&calcRound, "round", 0, "round measurement")
	cmd.Flags().Float64Var(&calcLength, "length", 0, "length measurement")
	_ = cmd.MarkFlagRequired("round")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

func runCalcCmd(cmd *cobra.Command, _ []string) error {
	if calcRound < 0 || calcLength < 0 {
		return fmt.Errorf("--round and --length must be >= 0")
	}
	return report.Classification(cmd.OutOrStdout(), calcRound, calcLength)
}

func newPayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Compute the payment for a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runPayCmd,
	}
	cmd.Flags().Float64Var(&payH100, "h100", 0, "unit price for H100")
	cmd.Flags().Float64Var(&payH789, "h789", 0, "unit price for H789")
	cmd.Flags().Float64Var(&payH56, "h56", 0, "unit price for H56")
	cmd.Flags().Float64Var(&payH4, "h4", 0, "unit price for H4")
	cmd.Flags().Float64Var(&payH3, "h3", 0, "unit price for H3")
	return cmd
}

func runPayCmd(cmd *cobra.Command, args []string) error {
	applyFloatConfig(cmd, "h100", &payH100, fileCfg.Payment.H100)
	applyFloatConfig(cmd, "h789", &payH789, fileCfg.Payment.H789)
	applyFloatConfig(cmd, "h56", &payH56, fileCfg.Payment.H56)
	applyFloatConfig(cmd, "h4", &payH4, fileCfg.Payment.H4)
	applyFloatConfig(cmd, "h3", &payH3, fileCfg.Payment.H3)

	prices := model.Prices{
		model.HeadHundreds: payH100,
		model.Head789:      payH789,
		model.Head56:       payH56,
		model.Head4:        payH4,
		model.Head3:        payH3,
	}
	for b, p := range prices {
		if p < 0 {
			return fmt.Errorf("--%s must be >= 0", lowerBucket(b))
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	file, err := getFile(cmd.Context(), st, args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadRecords(cmd.Context(), file.ID)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := printTitle(out, file.Name); err != nil {
		return err
	}
	return report.Payment(out, calc.Pay(calc.Sum(records), prices))
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a file and its rows as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportOut, "output", "o", "", "output path (default: stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	file, err := getFile(cmd.Context(), st, args[0])
	if err != nil {
		return err
	}
	if exportOut == "" {
		return backup.Export(cmd.Context(), st, file.ID, cmd.OutOrStdout())
	}
	if err := writeBackup(cmd.Context(), st, file.ID, exportOut); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	logErrf("Wrote %s\n", exportOut)
	return nil
}

// writeBackup exports to a temp file beside path and renames it into place.
func writeBackup(ctx context.Context, st *store.Store, fileID, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "woodcal-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := backup.Export(ctx, st, fileID, writer); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush backup: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close backup: %w", err)
	}
	return os.Rename(tmpPath, path)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Load a file from a YAML backup",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVar(&importKeepID, "keep-id", false, "reuse the file id stored in the backup")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() {
		if cerr := in.Close(); cerr != nil {
			_ = cerr
		}
	}()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	file, err := backup.Import(cmd.Context(), st, bufio.NewReader(in), importKeepID)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}
	logger.Info("file imported", zap.String("file", file.ID), zap.String("source", args[0]))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s)\n", file.Name, file.ID)
	return err
}

func getFile(ctx context.Context, st *store.Store, id string) (model.File, error) {
	file, err := st.GetFile(ctx, id)
	if errors.Is(err, store.ErrFileNotFound) {
		return model.File{}, fmt.Errorf("file %q not found", id)
	}
	if err != nil {
		return model.File{}, fmt.Errorf("failed to load file: %w", err)
	}
	return file, nil
}

func lowerBucket(b model.Bucket) string {
	s := b.String()
	if s == "" {
		return s
	}
	return "h" + s[1:]
}
