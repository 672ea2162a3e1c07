package excelview

import "strings"

// DefaultPageSize is the number of rows per page in the table view
const DefaultPageSize = 10

// Page is one page of a filtered row set
type Page struct {
	Number     int // 1-based, clamped to [1, TotalPages] (1 when there are no rows)
	TotalPages int
	TotalRows  int // rows after filtering
	Rows       [][]string
}

// Filter returns the rows having at least one cell containing term,
// ignoring case. An empty term returns rows unchanged.
func Filter(rows [][]string, term string) [][]string {
	if term == "" {
		return rows
	}
	needle := strings.ToLower(term)

	var results [][]string
	for _, row := range rows {
		if rowMatches(row, needle) {
			results = append(results, row)
		}
	}
	return results
}

func rowMatches(row []string, needle string) bool {
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell), needle) {
			return true
		}
	}
	return false
}

// PageCount returns ceil(n / size)
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns page number of rows. The page is clamped into range.
func Paginate(rows [][]string, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := PageCount(len(rows), size)
	page = clampPage(page, total)

	// Offset適用
	start := (page - 1) * size
	if start > len(rows) {
		start = len(rows)
	}
	// Limit適用
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}

	return Page{
		Number:     page,
		TotalPages: total,
		TotalRows:  len(rows),
		Rows:       rows[start:end],
	}
}

func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// View is the state of the searchable, paginated table: the full row set,
// the current search term and the current page
type View struct {
	headers  []string
	rows     [][]string
	filtered [][]string
	term     string
	page     int
	pageSize int
}

// NewView creates a view on page 1 with no search term
func NewView(headers []string, rows [][]string, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{
		headers:  headers,
		rows:     rows,
		filtered: rows,
		page:     1,
		pageSize: pageSize,
	}
}

// Headers returns the display labels of the columns
func (v *View) Headers() []string {
	return DisplayHeaders(v.headers)
}

// SetSearch changes the search term and returns to page 1
func (v *View) SetSearch(term string) {
	v.term = term
	v.filtered = Filter(v.rows, term)
	v.page = 1
}

// Search returns the current search term
func (v *View) Search() string {
	return v.term
}

// SetPage moves to page, clamped to the available pages
func (v *View) SetPage(page int) {
	v.page = clampPage(page, PageCount(len(v.filtered), v.pageSize))
}

// Current returns the rows of the current page
func (v *View) Current() Page {
	return Paginate(v.filtered, v.page, v.pageSize)
}
