package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

type tableColumn struct {
	Width       int
	Name        string
	Style       lipgloss.Style
	HeaderStyle lipgloss.Style
}

type tableRow struct {
	Cells []string
	Style lipgloss.Style
}

// table renders fixed width columns
type table struct {
	columns []tableColumn
	rows    []*tableRow
}

func (t *table) addColumn(name string, width int) *table {
	t.columns = append(t.columns, tableColumn{
		Width:       width,
		Name:        name,
		Style:       lipgloss.NewStyle().Width(width).PaddingRight(1),
		HeaderStyle: lipgloss.NewStyle().Width(width).Bold(true).Underline(true).PaddingRight(1),
	})

	return t
}

func (t *table) addRow(data ...string) *tableRow {
	newRow := &tableRow{
		Cells: data,
		Style: lipgloss.NewStyle(),
	}
	t.rows = append(t.rows, newRow)
	return newRow
}

func (t *table) render() string {
	var rendered string
	for _, column := range t.columns {
		rendered += column.HeaderStyle.Render(column.Name)
	}
	rendered += "\n"
	for _, row := range t.rows {
		renderedCells := make([]string, len(t.columns))
		for i, column := range t.columns {
			cell := ""
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			renderedCells[i] = column.Style.Render(cell)
		}
		rendered += row.Style.Render(lipgloss.JoinHorizontal(
			lipgloss.Left,
			renderedCells...,
		)) + "\n"
	}
	return rendered
}
