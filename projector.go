package excelview

// Project maps stored rows to display rows of exactly len(headers) cells,
// reading columnA..columnE positionally. Positions past ColumnCount are "".
func Project(headers []string, rows []RowRecord) [][]string {
	width := len(headers)
	out := make([][]string, len(rows))
	for i := range rows {
		cells := make([]string, width)
		for j := 0; j < width; j++ {
			cells[j] = rows[i].Cell(j)
		}
		out[i] = cells
	}
	return out
}

// DisplayHeaders returns headers with empty labels replaced by "Column A",
// "Column B", ... according to position
func DisplayHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		if h == "" {
			h = "Column " + columnLetter(i)
		}
		out[i] = h
	}
	return out
}

// columnLetter converts a zero-based column index to its spreadsheet letter (0 -> A, 26 -> AA)
func columnLetter(index int) string {
	result := ""
	for col := index + 1; col > 0; {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
