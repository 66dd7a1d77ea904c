// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifacts

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/thesis-engine/internal/scoring"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// NA marks a missing cell in every table.
const NA = "NA"

// Table is a rectangular data table. Cells hold int, float64, string, bool
// or nil for a missing value.
type Table struct {
	Headers []string
	Rows    [][]any
}

// DemographicsTable has one row per respondent: id, then each demographic.
func DemographicsTable(ds *types.Dataset) Table {
	t := Table{Headers: append([]string{"id"}, ds.Demographics...)}
	for _, r := range ds.Respondents {
		row := []any{r.ID}
		for _, name := range ds.Demographics {
			row = append(row, r.Demographics[name])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ResponsesTable has one row per respondent: id, careless marker, then every
// item. With keyed set, reverse-keyed items are inverted into the construct
// direction.
func ResponsesTable(ds *types.Dataset, keyed bool) Table {
	t := Table{Headers: []string{"id", "careless"}}
	var its []types.Item
	var scales []types.ScaleRange
	for _, in := range ds.Instruments {
		for _, it := range in.Items {
			its = append(its, it)
			scales = append(scales, in.Scale)
			t.Headers = append(t.Headers, it.ID)
		}
	}
	for _, r := range ds.Respondents {
		row := []any{r.ID, string(r.Careless)}
		for j, it := range its {
			v := r.Responses[it.ID]
			if v == nil {
				row = append(row, nil)
				continue
			}
			value := *v
			if keyed {
				value = scoring.Keyed(value, it, scales[j])
			}
			row = append(row, value)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ScoresTable has one row per respondent: id, then every subscale and total.
func ScoresTable(ds *types.Dataset) Table {
	vars := ds.ScoreVars()
	t := Table{Headers: append([]string{"id"}, vars...)}
	for _, r := range ds.Respondents {
		row := []any{r.ID}
		for _, v := range vars {
			if s := r.Scores[v]; s != nil {
				row = append(row, *s)
			} else {
				row = append(row, nil)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// CodebookTable describes every item column.
func CodebookTable(ds *types.Dataset) Table {
	t := Table{Headers: []string{"item", "instrument", "subscale", "reverse", "min", "max", "text"}}
	for _, in := range ds.Instruments {
		for _, it := range in.Items {
			t.Rows = append(t.Rows, []any{it.ID, in.Name, it.Subscale, it.Reverse, in.Scale.Min, in.Scale.Max, it.Text})
		}
	}
	return t
}

// cellString formats a cell for CSV output.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return NA
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return NA
		}
		return fToStr(x, 4)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// WriteCSV writes t to path.
func WriteCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Headers); err != nil {
		return err
	}
	record := make([]string, len(t.Headers))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = cellString(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// WriteWorkbook writes one sheet per named table to path, in the given
// order. The first sheet is active.
func WriteWorkbook(path string, names []string, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range names {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeSheet(f, name, tables[i]); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, t Table) error {
	for i, h := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			if v == nil {
				v = NA
			}
			if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
				v = NA
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
