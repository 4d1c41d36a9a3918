// Package main provides the CLI entrypoint for woodcal.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Perdok-cat/Woodcal/internal/config"
	"github.com/Perdok-cat/Woodcal/internal/logging"
	"github.com/Perdok-cat/Woodcal/internal/store"
	"github.com/Perdok-cat/Woodcal/internal/ui"
)

var (
	logger  *zap.Logger
	fileCfg config.FileConfig

	rootFile string
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "woodcal",
		Short:             "Timber tally sheets in the terminal",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: initRuntime,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: runRootCmd,
	}

	rootCmd.Flags().StringVar(&rootFile, "file", "", "open the sheet of this file id")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newCalcCmd())
	rootCmd.AddCommand(newPayCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

// initRuntime loads the config file and builds the logger. The config
// command skips it so a broken config can still be edited.
func initRuntime(cmd *cobra.Command, _ []string) error {
	logger = zap.NewNop()
	if cmd.Name() == "config" {
		return nil
	}
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = cfg
	l, err := logging.New(cfg.LogSettings())
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("starting", zap.String("command", cmd.CommandPath()))
	return nil
}

func runRootCmd(_ *cobra.Command, _ []string) error {
	sheetCfg, err := fileCfg.SheetSettings()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	model := ui.NewModel(st, ui.Options{
		Sheet:  sheetCfg,
		Prices: fileCfg.Prices(),
		Logger: logger,
		FileID: strings.TrimSpace(rootFile),
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// printTitle writes s bold when w is a terminal and NO_COLOR is unset.
func printTitle(w io.Writer, s string) error {
	if shouldUseColor(w) {
		s = titleStyle.Render(s)
	}
	_, err := fmt.Fprintln(w, s)
	return err
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
