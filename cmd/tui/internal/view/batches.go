package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/stockroom/internal/batch"
)

// OpenScanMsg asks the program to start scanning into a batch.
type OpenScanMsg struct {
	Batch batch.Batch
}

type batchRow struct {
	batch    batch.Batch
	progress batch.Progress
}

type loadBatchesMsg struct {
	rows []batchRow
	err  error
}

type BatchesModel struct {
	CommonModel
	batches *batch.Service
	tracker *batch.Tracker

	table table.Model
	rows  []batchRow
	err   error
}

func NewBatchesModel(batches *batch.Service, tracker *batch.Tracker) BatchesModel {
	columns := []table.Column{
		{Title: "Base Code", Width: 14},
		{Title: "Product", Width: 16},
		{Title: "Qty", Width: 5},
		{Title: "Admitted", Width: 9},
		{Title: "State", Width: 10},
		{Title: "Selling", Width: 10},
		{Title: "Created", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BatchesModel{
		batches: batches,
		tracker: tracker,
		table:   t,
	}
}

func (m BatchesModel) Title() string { return "Batches" }
func (m BatchesModel) ShortHelp() string {
	return "Enter: scan into batch | r: refresh | Esc: back"
}

func (m BatchesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BatchesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBatchesMsg:
		m.err = msg.err
		if msg.err == nil {
			m.rows = msg.rows
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "enter":
			if len(m.rows) == 0 {
				return m, nil
			}

			b := m.rows[m.table.Cursor()].batch

			return m, func() tea.Msg { return OpenScanMsg{Batch: b} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *BatchesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, table.Row{
			r.batch.BaseCode,
			r.batch.ProductID,
			strconv.Itoa(r.batch.Quantity),
			strconv.Itoa(r.progress.Admitted),
			string(r.progress.State),
			FormatPrice(r.batch.SellingPrice),
			FormatDate(r.batch.CreatedAt),
		})
	}

	m.table.SetRows(rows)
}

func (m BatchesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		list, err := m.batches.List(ctx)
		if err != nil {
			return loadBatchesMsg{err: err}
		}

		rows := make([]batchRow, 0, len(list))
		for _, b := range list {
			p, err := m.tracker.Progress(ctx, b.ID)
			if err != nil {
				return loadBatchesMsg{err: fmt.Errorf("progress of batch %s: %w", b.BaseCode, err)}
			}

			rows = append(rows, batchRow{batch: b, progress: p})
		}

		return loadBatchesMsg{rows: rows}
	}
}

func (m BatchesModel) View() string {
	if m.err != nil {
		return frame(m, errorStyle.Render(FormatError(m.err)))
	}

	if len(m.rows) == 0 {
		return frame(m, "No batches planned yet. Import a plan with stockctl batch import.")
	}

	return frame(m, m.table.View())
}
