package tables

import (
	"reflect"
	"testing"

	"github.com/tsawler/lattice/model"
)

func TestAssembler_Assemble(t *testing.T) {
	header := ConsolidatedHeader{
		Labels: []string{"Region", "Revenue - Q1", "Revenue - Q2"},
		Depth:  2,
	}
	body := gridFrom([][]string{
		{"East", "100", "200"},
		{"West", "150", "175"},
	})

	a := NewAssembler(DefaultConfig())
	table := a.Assemble(3, 1, header, body, 0.91)

	if table.ID != "table_3_1" {
		t.Errorf("ID = %q, want \"table_3_1\"", table.ID)
	}
	if table.PageNumber != 3 {
		t.Errorf("PageNumber = %d, want 3", table.PageNumber)
	}
	if table.Confidence != 0.91 {
		t.Errorf("Confidence = %f, want 0.91", table.Confidence)
	}
	if table.Shape != (model.Shape{Rows: 2, Cols: 3}) {
		t.Errorf("Shape = %+v, want 2x3", table.Shape)
	}

	want := []map[string]string{
		{"Region": "East", "Revenue - Q1": "100", "Revenue - Q2": "200"},
		{"Region": "West", "Revenue - Q1": "150", "Revenue - Q2": "175"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("Rows = %v, want %v", table.Rows, want)
	}
}

func TestAssembler_Assemble_MissingCells(t *testing.T) {
	// A body row narrower than the header keeps every label present, mapping
	// the missing columns to the empty string.
	header := ConsolidatedHeader{Labels: []string{"A", "B", "C"}}
	body := model.Grid{
		{model.Cell{Text: "1"}, model.Cell{Text: "2"}},
	}

	a := NewAssembler(DefaultConfig())
	table := a.Assemble(1, 0, header, body, 0.5)

	want := map[string]string{"A": "1", "B": "2", "C": ""}
	if !reflect.DeepEqual(table.Rows[0], want) {
		t.Errorf("row = %v, want %v", table.Rows[0], want)
	}
}

func TestAssembler_Assemble_EmptyBody(t *testing.T) {
	header := ConsolidatedHeader{Labels: []string{"A"}}

	a := NewAssembler(DefaultConfig())
	table := a.Assemble(1, 0, header, model.Grid{}, 0.2)

	if len(table.Rows) != 0 {
		t.Errorf("Rows = %d entries, want 0", len(table.Rows))
	}
	if table.Shape.Rows != 0 {
		t.Errorf("Shape.Rows = %d, want 0", table.Shape.Rows)
	}
}
