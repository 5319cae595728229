package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/stockroom/internal/batch"
)

const scanHistory = 8

type scanState int

const (
	scanStateReady scanState = iota
	scanStateBusy
	scanStateDone
)

type admitResultMsg struct {
	code string
	res  *batch.AdmitResult
	err  error
}

type progressMsg struct {
	progress batch.Progress
	err      error
}

type scanEntry struct {
	code string
	err  error
}

// ScanModel admits scanned barcodes into one batch. Scanners type the code
// followed by Enter, so each submitted line is one admission.
type ScanModel struct {
	CommonModel
	tracker *batch.Tracker
	batch   batch.Batch

	state    scanState
	input    textinput.Model
	bar      progress.Model
	progress batch.Progress
	history  []scanEntry
	err      error
}

func NewScanModel(tracker *batch.Tracker, b batch.Batch) ScanModel {
	ti := textinput.New()
	ti.Placeholder = "scan a barcode"
	ti.CharLimit = 64
	ti.Width = 32
	ti.Focus()

	return ScanModel{
		tracker: tracker,
		batch:   b,
		input:   ti,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		progress: batch.Progress{
			BatchID:  b.ID,
			Quantity: b.Quantity,
		},
	}
}

func (m ScanModel) Title() string {
	return fmt.Sprintf("Admit batch %s (%s)", m.batch.BaseCode, m.batch.ProductID)
}

func (m ScanModel) ShortHelp() string {
	return "Enter: admit | Esc: back"
}

func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.progressCmd())
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.err = msg.err
		if msg.err == nil {
			m.setProgress(msg.progress)
		}

		return m, nil

	case admitResultMsg:
		m.state = scanStateReady
		m.record(scanEntry{code: msg.code, err: msg.err})

		if msg.err == nil {
			m.setProgress(msg.res.Progress)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.bar.Width = min(max(msg.Width-10, 10), 60)

		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			code := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")

			if code == "" || m.state != scanStateReady {
				return m, nil
			}

			m.state = scanStateBusy

			return m, m.admitCmd(code)
		}
	}

	if m.state == scanStateDone {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *ScanModel) setProgress(p batch.Progress) {
	m.progress = p
	if p.Complete() {
		m.state = scanStateDone
		m.input.Blur()
	}
}

func (m *ScanModel) record(e scanEntry) {
	m.history = append([]scanEntry{e}, m.history...)
	if len(m.history) > scanHistory {
		m.history = m.history[:scanHistory]
	}
}

func (m ScanModel) admitCmd(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.tracker.Admit(ctx, m.batch.ID, code)

		return admitResultMsg{code: code, res: res, err: err}
	}
}

func (m ScanModel) progressCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.tracker.Progress(ctx, m.batch.ID)

		return progressMsg{progress: p, err: err}
	}
}

func (m ScanModel) percent() float64 {
	if m.progress.Quantity == 0 {
		return 1
	}

	return float64(m.progress.Admitted) / float64(m.progress.Quantity)
}

func (m ScanModel) View() string {
	var b strings.Builder

	b.WriteString(m.bar.ViewAs(m.percent()))
	fmt.Fprintf(&b, "  %d/%d\n\n", m.progress.Admitted, m.progress.Quantity)

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(FormatError(m.err)))
		b.WriteString("\n\n")
	case m.state == scanStateDone:
		b.WriteString(okStyle.Render("Batch complete. Every unit has been admitted."))
		b.WriteString("\n\n")
	default:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	for _, e := range m.history {
		if e.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s  %s", e.code, FormatError(e.err))))
		} else {
			b.WriteString(okStyle.Render("✓ " + e.code))
		}

		b.WriteString("\n")
	}

	return frame(m, strings.TrimRight(b.String(), "\n"))
}
