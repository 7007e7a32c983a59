package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rcliao/object-cueing/internal/model"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// renderTable lays rows out as a bordered text table.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// printResult prints v as JSON, or as a table when --format text is set
// and the command can build one.
func printResult(v interface{}, headers []string, rows func() [][]string) {
	if formatFlag == "text" && rows != nil {
		fmt.Println(renderTable(headers, rows()))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func boolCell(b *bool) string {
	if b == nil {
		return model.NA
	}
	if *b {
		return "TRUE"
	}
	return "FALSE"
}

func intCell(n *int64) string {
	if n == nil {
		return model.NA
	}
	return strconv.FormatInt(*n, 10)
}

func floatCell(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
