package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resumerag/internal/parser"
	"resumerag/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui <resume-file>",
	Short: "Index a résumé and ask questions about it interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	doc, err := parser.Parse(path, data)
	if err != nil {
		return fmt.Errorf("parse resume: %w", err)
	}

	// stderr output would tear the alt screen; only startup is logged
	engine, err := buildEngine(ctx, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	report, err := engine.Index(doc)
	if err != nil {
		return fmt.Errorf("index resume: %w", err)
	}
	log.Info("resume indexed", zap.String("path", path), zap.Int("chunks", report.ChunkCount))

	m := tui.New(engine, report.Summary)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
