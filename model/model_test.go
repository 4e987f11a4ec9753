package model

import (
	"math"
	"reflect"
	"testing"
)

func TestBBox_Edges(t *testing.T) {
	b := NewBBox(10, 20, 30, 40)

	if b.Left() != 10 || b.Right() != 40 {
		t.Errorf("Left/Right = %f/%f, want 10/40", b.Left(), b.Right())
	}
	if b.Bottom() != 20 || b.Top() != 60 {
		t.Errorf("Bottom/Top = %f/%f, want 20/60", b.Bottom(), b.Top())
	}
	if c := b.Center(); c.X != 25 || c.Y != 40 {
		t.Errorf("Center() = %v, want {25 40}", c)
	}
}

func TestBBox_Contains(t *testing.T) {
	b := NewBBox(0, 0, 10, 10)

	if !b.Contains(Point{5, 5}) {
		t.Error("Contains(interior point) = false")
	}
	if !b.Contains(Point{0, 0}) {
		t.Error("Contains(corner) = false, edges should be inclusive")
	}
	if b.Contains(Point{11, 5}) {
		t.Error("Contains(exterior point) = true")
	}
}

func TestBBox_IntersectionUnion(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(5, 5, 10, 10)

	inter := a.Intersection(b)
	if inter.Area() != 25 {
		t.Errorf("Intersection area = %f, want 25", inter.Area())
	}

	union := a.Union(b)
	if union.Area() != 225 {
		t.Errorf("Union area = %f, want 225", union.Area())
	}

	disjoint := NewBBox(100, 100, 5, 5)
	if !a.Intersection(disjoint).IsEmpty() {
		t.Error("Intersection of disjoint boxes should be empty")
	}
}

func TestBBox_IoU(t *testing.T) {
	tests := []struct {
		name string
		a, b BBox
		want float64
	}{
		{"identical", NewBBox(0, 0, 10, 10), NewBBox(0, 0, 10, 10), 1.0},
		{"disjoint", NewBBox(0, 0, 10, 10), NewBBox(50, 50, 10, 10), 0.0},
		{"half overlap", NewBBox(0, 0, 10, 10), NewBBox(5, 0, 10, 10), 50.0 / 150.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.IoU(tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IoU() = %f, want %f", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("IoU() = %f, out of [0,1]", got)
			}
		})
	}
}

func TestRulingSegment_Length(t *testing.T) {
	r := RulingSegment{Orientation: Horizontal, Position: 100, Start: 50, End: 200}
	if r.Length() != 150 {
		t.Errorf("Length() = %f, want 150", r.Length())
	}

	reversed := RulingSegment{Orientation: Vertical, Position: 10, Start: 200, End: 50}
	if reversed.Length() != 150 {
		t.Errorf("Length() with reversed extent = %f, want 150", reversed.Length())
	}
}

func TestPageLayout_RulingsByOrientation(t *testing.T) {
	p := &PageLayout{
		PageNumber: 1,
		Rulings: []RulingSegment{
			{Orientation: Horizontal, Position: 700},
			{Orientation: Vertical, Position: 100},
			{Orientation: Horizontal, Position: 650},
		},
	}

	h, v := p.RulingsByOrientation()
	if len(h) != 2 || len(v) != 1 {
		t.Fatalf("RulingsByOrientation() = %d horizontal, %d vertical, want 2/1", len(h), len(v))
	}
	if h[0].Position != 700 || h[1].Position != 650 {
		t.Error("horizontal rulings out of order")
	}
}

func TestGrid_Validate(t *testing.T) {
	g := NewGrid(2, 3)
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() on fresh grid failed: %v", err)
	}
	if g.RowCount() != 2 || g.ColCount() != 3 {
		t.Errorf("grid shape = %dx%d, want 2x3", g.RowCount(), g.ColCount())
	}

	g[1][2].Col = 0
	if err := g.Validate(); err == nil {
		t.Error("Validate() should reject a cell with mismatched indices")
	}

	ragged := Grid{
		{{Row: 0, Col: 0, RowSpan: 1, ColSpan: 1}},
		{{Row: 1, Col: 0, RowSpan: 1, ColSpan: 1}, {Row: 1, Col: 1, RowSpan: 1, ColSpan: 1}},
	}
	if err := ragged.Validate(); err == nil {
		t.Error("Validate() should reject a ragged grid")
	}
}

func TestGrid_IsEmpty(t *testing.T) {
	g := NewGrid(2, 2)
	if !g.IsEmpty() {
		t.Error("fresh grid should be empty")
	}

	g[0][1].Text = "x"
	if g.IsEmpty() {
		t.Error("grid with text should not be empty")
	}
}

func TestTable_Text(t *testing.T) {
	table := &Table{
		Headers: []string{"Name", "Value"},
		Rows: []map[string]string{
			{"Name": "a", "Value": "1"},
			{"Name": "b", "Value": "2"},
		},
	}

	want := "Name\tValue\na\t1\nb\t2\n"
	if got := table.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestBuildSummary(t *testing.T) {
	tables := []Table{
		{ID: "table_1_0", PageNumber: 1, Confidence: 0.9, Shape: Shape{Rows: 2, Cols: 3}, Headers: []string{"A", "B", "C"}},
		{ID: "table_1_1", PageNumber: 1, Confidence: 0.8, Shape: Shape{Rows: 1, Cols: 2}, Headers: []string{"X", "Y"}},
		{ID: "table_2_0", PageNumber: 2, Confidence: 0.7, Shape: Shape{Rows: 4, Cols: 2}, Headers: []string{"P", "Q"}},
	}

	s := BuildSummary(tables, 2, nil)

	if s.TotalTables != 3 {
		t.Errorf("TotalTables = %d, want 3", s.TotalTables)
	}
	if s.PagesProcessed != 2 {
		t.Errorf("PagesProcessed = %d, want 2", s.PagesProcessed)
	}
	if !reflect.DeepEqual(s.TablesByPage, map[int]int{1: 2, 2: 1}) {
		t.Errorf("TablesByPage = %v, want map[1:2 2:1]", s.TablesByPage)
	}
	if math.Abs(s.AverageConfidence-0.8) > 1e-9 {
		t.Errorf("AverageConfidence = %f, want 0.8", s.AverageConfidence)
	}
	if len(s.Details) != 3 || s.Details[0].ID != "table_1_0" {
		t.Errorf("Details not preserved in order: %+v", s.Details)
	}
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(nil, 0, nil)
	if s.TotalTables != 0 || s.AverageConfidence != 0 || s.PagesProcessed != 0 {
		t.Errorf("empty summary = %+v, want zeros", s)
	}
}

func TestBuildSummary_SkippedPages(t *testing.T) {
	tables := []Table{
		{ID: "table_1_0", PageNumber: 1, Confidence: 0.5},
	}

	s := BuildSummary(tables, 3, []int{3, 2})

	if s.PagesProcessed != 1 {
		t.Errorf("PagesProcessed = %d, want 1 (3 pages, 2 skipped)", s.PagesProcessed)
	}
	if !reflect.DeepEqual(s.SkippedPages, []int{2, 3}) {
		t.Errorf("SkippedPages = %v, want sorted [2 3]", s.SkippedPages)
	}
}
