package tables

import (
	"fmt"

	"github.com/tsawler/lattice/model"
)

// Assembler turns a consolidated header and body grid into the final Table
// handed to callers.
type Assembler struct {
	config Config
}

// NewAssembler creates an assembler.
func NewAssembler(config Config) *Assembler {
	return &Assembler{config: config}
}

// Assemble builds a Table from one finalized candidate. pageNumber is the
// 1-based page; index is the 0-based position of the table within that page,
// which together form the table id. Every body row maps each header label to
// its cell text, with missing cells mapped to the empty string so all rows
// share the same key set.
func (a *Assembler) Assemble(pageNumber, index int, header ConsolidatedHeader, body model.Grid, confidence float64) model.Table {
	rows := make([]map[string]string, 0, body.RowCount())
	for _, gridRow := range body {
		row := make(map[string]string, len(header.Labels))
		for j, label := range header.Labels {
			if j < len(gridRow) {
				row[label] = gridRow[j].Text
			} else {
				row[label] = ""
			}
		}
		rows = append(rows, row)
	}

	return model.Table{
		ID:         fmt.Sprintf("table_%d_%d", pageNumber, index),
		PageNumber: pageNumber,
		Headers:    header.Labels,
		Rows:       rows,
		Confidence: confidence,
		Shape: model.Shape{
			Rows: body.RowCount(),
			Cols: body.ColCount(),
		},
	}
}
