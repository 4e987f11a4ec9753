package tables

import (
	"reflect"
	"testing"

	"github.com/tsawler/lattice/model"
)

func gridFrom(texts [][]string) model.Grid {
	grid := model.NewGrid(len(texts), len(texts[0]))
	for i, row := range texts {
		for j, text := range row {
			grid[i][j].Text = text
		}
	}
	return grid
}

func TestConsolidator_Consolidate_TwoLevelHeader(t *testing.T) {
	// A spanning "Revenue" cell over two sub-columns flattens into parented
	// labels; the span is implied by the blank cell to its right.
	grid := gridFrom([][]string{
		{"Region", "Revenue", ""},
		{"", "Q1", "Q2"},
		{"East", "100", "200"},
	})

	c := NewConsolidator(DefaultConfig())
	header, body := c.Consolidate(grid)

	if header.Depth != 2 {
		t.Fatalf("header depth = %d, want 2", header.Depth)
	}
	want := []string{"Region", "Revenue - Q1", "Revenue - Q2"}
	if !reflect.DeepEqual(header.Labels, want) {
		t.Errorf("labels = %v, want %v", header.Labels, want)
	}
	if body.RowCount() != 1 || body[0][0].Text != "East" {
		t.Errorf("body = %d rows starting %q, want 1 row starting \"East\"",
			body.RowCount(), body[0][0].Text)
	}
}

func TestConsolidator_Consolidate_DuplicateLabels(t *testing.T) {
	grid := gridFrom([][]string{
		{"Total", "Total"},
		{"10", "20"},
		{"30", "40"},
	})

	c := NewConsolidator(DefaultConfig())
	header, _ := c.Consolidate(grid)

	want := []string{"Total", "Total (1)"}
	if !reflect.DeepEqual(header.Labels, want) {
		t.Errorf("labels = %v, want %v", header.Labels, want)
	}
}

func TestConsolidator_Consolidate_NoHeaderRows(t *testing.T) {
	// A grid that starts with numeric rows has no header; every row stays in
	// the body and columns get positional labels.
	grid := gridFrom([][]string{
		{"1", "2", "3"},
		{"4", "5", "6"},
	})

	c := NewConsolidator(DefaultConfig())
	header, body := c.Consolidate(grid)

	if header.Depth != 0 {
		t.Fatalf("header depth = %d, want 0", header.Depth)
	}
	want := []string{"Column 1", "Column 2", "Column 3"}
	if !reflect.DeepEqual(header.Labels, want) {
		t.Errorf("labels = %v, want %v", header.Labels, want)
	}
	if body.RowCount() != 2 {
		t.Errorf("body = %d rows, want all 2 rows", body.RowCount())
	}
}

func TestConsolidator_Consolidate_MaxDepth(t *testing.T) {
	config := DefaultConfig()
	config.MaxHeaderDepth = 1

	grid := gridFrom([][]string{
		{"Region", "Revenue", ""},
		{"", "Q1", "Q2"},
		{"East", "100", "200"},
	})

	c := NewConsolidator(config)
	header, body := c.Consolidate(grid)

	if header.Depth != 1 {
		t.Errorf("header depth = %d, want capped at 1", header.Depth)
	}
	if body.RowCount() != 2 {
		t.Errorf("body = %d rows, want 2", body.RowCount())
	}
}

func TestConsolidator_Consolidate_KeepsLastRowAsBody(t *testing.T) {
	// Even when every row looks like a header, at least one row must remain
	// as body.
	grid := gridFrom([][]string{
		{"Name", "Role"},
		{"Alice", "Lead"},
	})

	c := NewConsolidator(DefaultConfig())
	header, body := c.Consolidate(grid)

	if header.Depth != 1 {
		t.Errorf("header depth = %d, want 1", header.Depth)
	}
	if body.RowCount() != 1 {
		t.Errorf("body = %d rows, want 1", body.RowCount())
	}
}

func TestConsolidator_Consolidate_AdjacentSpans(t *testing.T) {
	// Two spanning groups side by side: each parent covers only its own run
	// of blank cells, not its neighbor's columns.
	grid := gridFrom([][]string{
		{"Sales", "", "Costs"},
		{"Q1", "Q2", "Q1"},
		{"1", "2", "3"},
	})

	c := NewConsolidator(DefaultConfig())
	header, _ := c.Consolidate(grid)

	want := []string{"Sales - Q1", "Sales - Q2", "Costs - Q1"}
	if !reflect.DeepEqual(header.Labels, want) {
		t.Errorf("labels = %v, want %v", header.Labels, want)
	}
}

func TestLooksNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"100", true},
		{"1,234.56", true},
		{"$5.00", true},
		{"12%", true},
		{"(42)", true},
		{"-3.5", true},
		{"+7", true},
		{"€1,000", true},
		{"Q1", false},
		{"Revenue", false},
		{"", false},
		{"N/A", false},
		{"2024-01", false},
	}

	for _, tt := range tests {
		if got := looksNumeric(tt.in); got != tt.want {
			t.Errorf("looksNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDedupeLabels(t *testing.T) {
	got := dedupeLabels([]string{"A", "A", "A", "B"})
	want := []string{"A", "A (1)", "A (2)", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupeLabels() = %v, want %v", got, want)
	}
}
