package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/stockroom/internal/app"
	"github.com/MrJamesThe3rd/stockroom/internal/config"
	"github.com/MrJamesThe3rd/stockroom/internal/logger"
)

type model struct {
	app *app.App

	currentView View

	batchesView view.BatchesModel
	scanView    view.ScanModel
	defectView  view.DefectModel
}

type View int

const (
	ViewMenu    View = 0
	ViewBatches View = 1
	ViewScan    View = 2
	ViewDefect  View = 3
)

func initialModel(a *app.App) model {
	return model{
		app:         a,
		currentView: ViewMenu,
		batchesView: view.NewBatchesModel(a.Batches, a.Tracker),
		defectView:  view.NewDefectModel(a.Defects),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewBatches
				m.batchesView = view.NewBatchesModel(m.app.Batches, m.app.Tracker)

				return m, m.batchesView.Init()
			case "2":
				m.currentView = ViewDefect
				m.defectView = view.NewDefectModel(m.app.Defects)

				return m, m.defectView.Init()
			}
		}
	case view.OpenScanMsg:
		m.currentView = ViewScan
		m.scanView = view.NewScanModel(m.app.Tracker, msg.Batch)

		return m, m.scanView.Init()
	case view.BackMsg:
		// Leaving a scan returns to the batch list with fresh progress.
		if m.currentView == ViewScan {
			m.currentView = ViewBatches
			return m, m.batchesView.Init()
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewBatches:
		var newModel tea.Model
		newModel, cmd = m.batchesView.Update(msg)
		m.batchesView = newModel.(view.BatchesModel)
	case ViewScan:
		var newModel tea.Model
		newModel, cmd = m.scanView.Update(msg)
		m.scanView = newModel.(view.ScanModel)
	case ViewDefect:
		var newModel tea.Model
		newModel, cmd = m.defectView.Update(msg)
		m.defectView = newModel.(view.DefectModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Stockroom Scanner\n\n" +
				"1. Admit Batches\n" +
				"2. Register Defect\n\n" +
				"q. Quit",
		)
	case ViewBatches:
		return m.batchesView.View()
	case ViewScan:
		return m.scanView.View()
	case ViewDefect:
		return m.defectView.View()
	}

	return "Unknown View"
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so only warnings and errors are logged.
	log, err := logger.New("warn", logger.EncodingConsole)
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
