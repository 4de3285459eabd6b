// Package tables - Class-name and display-color tables for table-structure
// recognition models.
package tables

import "image/color"

// NumClasses is the number of semantic classes the table-structure model
// predicts. The model's feature axis is 4 box coordinates + NumClasses scores.
const NumClasses = 9

// ClassNames lists the model's classes in training order. The index into this
// slice is the class index emitted by the model.
var ClassNames = []string{
	"table",
	"data_cell",
	"header_cell",
	"description_cell",
	"table_title",
	"rowsubtotals_cell",
	"rowtotal_cell",
	"columnsubtotals_cell",
	"columntotals_cell",
}

// Palette holds one display color per class, in the same order as ClassNames.
var Palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},  // table
	{R: 255, G: 127, B: 14, A: 255},  // data_cell
	{R: 44, G: 160, B: 44, A: 255},   // header_cell
	{R: 214, G: 39, B: 40, A: 255},   // description_cell
	{R: 148, G: 103, B: 189, A: 255}, // table_title
	{R: 140, G: 86, B: 75, A: 255},   // rowsubtotals_cell
	{R: 227, G: 119, B: 194, A: 255}, // rowtotal_cell
	{R: 127, G: 127, B: 127, A: 255}, // columnsubtotals_cell
	{R: 188, G: 189, B: 34, A: 255},  // columntotals_cell
}

// Name resolves a class index to its name.
//
// Arguments:
//   - class: The 0-based class index.
//
// Returns:
//   - string: The class name, or "unknown" if the index falls outside the table.
func Name(class int) string {
	if class < 0 || class >= len(ClassNames) {
		return "unknown"
	}
	return ClassNames[class]
}
