package excelview_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ideamans/excelview"
)

func sampleRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		name := "Bob"
		if i%3 == 0 {
			name = "Alice"
		}
		rows[i] = []string{fmt.Sprintf("%d", i), name, "Engineering"}
	}
	return rows
}

func TestFilter(t *testing.T) {
	rows := [][]string{
		{"1", "Alice", "Engineering"},
		{"2", "Bob", "Marketing"},
		{"3", "alicia", "Sales"},
	}

	tests := []struct {
		name string
		term string
		want int
	}{
		{"empty term", "", 3},
		{"case insensitive", "ALIC", 2},
		{"any cell", "market", 1},
		{"numeric cell", "3", 1},
		{"no match", "zzz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := excelview.Filter(rows, tt.term)
			if len(got) != tt.want {
				t.Errorf("Filter(%q) returned %d rows, want %d", tt.term, len(got), tt.want)
			}
			if len(got) > len(rows) {
				t.Errorf("Filter(%q) grew the row set", tt.term)
			}
		})
	}

	if !reflect.DeepEqual(excelview.Filter(rows, ""), rows) {
		t.Error("empty term should restore the full row set")
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := excelview.PageCount(tt.n, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	rows := sampleRows(25)

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantLen   int
		wantFirst string
	}{
		{"first page", 1, 1, 10, "0"},
		{"last page", 3, 3, 5, "20"},
		{"beyond last", 9, 3, 5, "20"},
		{"below first", 0, 1, 10, "0"},
		{"negative", -4, 1, 10, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := excelview.Paginate(rows, tt.page, 10)
			if p.Number != tt.wantPage {
				t.Errorf("Number = %d, want %d", p.Number, tt.wantPage)
			}
			if len(p.Rows) != tt.wantLen {
				t.Errorf("len(Rows) = %d, want %d", len(p.Rows), tt.wantLen)
			}
			if p.Rows[0][0] != tt.wantFirst {
				t.Errorf("first row = %s, want %s", p.Rows[0][0], tt.wantFirst)
			}
			if p.TotalPages != 3 || p.TotalRows != 25 {
				t.Errorf("TotalPages=%d TotalRows=%d, want 3 and 25", p.TotalPages, p.TotalRows)
			}
		})
	}

	t.Run("no rows", func(t *testing.T) {
		p := excelview.Paginate(nil, 4, 10)
		if p.Number != 1 || p.TotalPages != 0 || len(p.Rows) != 0 {
			t.Errorf("Paginate(nil) = %+v", p)
		}
	})
}

func TestView_SearchResetsPage(t *testing.T) {
	rows := sampleRows(40)
	view := excelview.NewView([]string{"ID", "", "Dept"}, rows, 0)

	view.SetPage(3)
	if view.Current().Number != 3 {
		t.Fatalf("SetPage(3) -> page %d", view.Current().Number)
	}

	view.SetSearch("alice")
	page := view.Current()
	if page.Number != 1 {
		t.Errorf("page after search = %d, want 1", page.Number)
	}
	// rows 0,3,...,39 -> 14 matches
	if page.TotalRows != 14 || page.TotalPages != 2 {
		t.Errorf("filtered TotalRows=%d TotalPages=%d, want 14 and 2", page.TotalRows, page.TotalPages)
	}

	view.SetPage(2)
	view.SetSearch("alice")
	if view.Current().Number != 1 {
		t.Error("setting the same term again should still reset to page 1")
	}

	view.SetPage(50)
	if view.Current().Number != 2 {
		t.Errorf("SetPage(50) clamped to %d, want 2", view.Current().Number)
	}

	view.SetSearch("")
	if view.Current().TotalRows != 40 {
		t.Errorf("clearing search restored %d rows, want 40", view.Current().TotalRows)
	}

	if got := view.Headers(); !reflect.DeepEqual(got, []string{"ID", "Column B", "Dept"}) {
		t.Errorf("Headers() = %v", got)
	}
}
