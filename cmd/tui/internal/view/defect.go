package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/stockroom/internal/defect"
)

type defectState int

const (
	defectStateForm defectState = iota
	defectStateSaving
	defectStateResult
)

type registerResultMsg struct {
	rec *defect.Record
	err error
}

type DefectModel struct {
	CommonModel
	defects *defect.Service

	state defectState
	form  *huh.Form
	rec   *defect.Record
	err   error
}

func NewDefectModel(defects *defect.Service) DefectModel {
	return DefectModel{
		defects: defects,
		form:    buildDefectForm(),
	}
}

func (m DefectModel) Title() string { return "Register Defect" }
func (m DefectModel) ShortHelp() string {
	if m.state == defectStateResult {
		return "Enter: register another | Esc: back"
	}

	return "Tab: next field | Esc: back"
}

func (m DefectModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m DefectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	switch m.state {
	case defectStateForm:
		return m.updateForm(msg)
	case defectStateSaving:
		if result, ok := msg.(registerResultMsg); ok {
			m.state = defectStateResult
			m.rec, m.err = result.rec, result.err
		}
	case defectStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
			fresh := NewDefectModel(m.defects)
			fresh.CommonModel = m.CommonModel

			return fresh, fresh.Init()
		}
	}

	return m, nil
}

func (m DefectModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = defectStateSaving

	return m, m.registerCmd(defect.RegisterParams{
		ProductID:   strings.TrimSpace(m.form.GetString("product")),
		Barcode:     strings.TrimSpace(m.form.GetString("barcode")),
		Description: strings.TrimSpace(m.form.GetString("description")),
	})
}

func (m DefectModel) registerCmd(params defect.RegisterParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rec, err := m.defects.Register(ctx, params)

		return registerResultMsg{rec: rec, err: err}
	}
}

func buildDefectForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("product").
				Title("Product ID").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("product id is required")
					}
					return nil
				}),
			huh.NewInput().
				Key("barcode").
				Title("Barcode").
				Description("Optional; scan the label if the item has one"),
			huh.NewText().
				Key("description").
				Title("Description").
				Placeholder("What is wrong with it?"),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m DefectModel) View() string {
	switch m.state {
	case defectStateForm:
		return frame(m, m.form.View())
	case defectStateSaving:
		return frame(m, "Saving...")
	}

	if m.err != nil {
		return frame(m, errorStyle.Render(FormatError(m.err)))
	}

	return frame(m, okStyle.Render(fmt.Sprintf("Registered defect %s for product %s.", m.rec.ID, m.rec.ProductID)))
}
