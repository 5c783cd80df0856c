package input

import (
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX flattens every sheet's cells into pipe-delimited lines of plain
// text, one sheet after another. Grounded on the teacher's
// parser.XLSXParser (github.com/xuri/excelize/v2), trimmed to a single
// flat text blob since the extraction core has no per-sheet Section model.
func LoadXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", errors.Join(ErrUnreadable, err)
	}
	defer f.Close()

	var sheets []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		var b strings.Builder
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		sheets = append(sheets, b.String())
	}

	return strings.Join(sheets, "\n"), nil
}
