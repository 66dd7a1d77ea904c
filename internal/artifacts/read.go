// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifacts

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// ReadResponses loads externally collected item-level data: a CSV file with
// an "id" column, one column per item of instruments, and optionally any of
// the named demographic columns. Empty and NA cells are missing. Other
// columns are ignored. Answers outside an item's scale are an error.
func ReadResponses(path string, instruments []types.Instrument, demographics []string) (*types.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening responses: %w", err)
	}
	defer f.Close()
	return ParseResponses(f, instruments, demographics)
}

// ParseResponses is ReadResponses over a reader.
func ParseResponses(r io.Reader, instruments []types.Instrument, demographics []string) (*types.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	idCol, ok := col["id"]
	if !ok {
		return nil, fmt.Errorf("responses have no id column")
	}
	type itemCol struct {
		id    string
		index int
		scale types.ScaleRange
	}
	var itemCols []itemCol
	for _, in := range instruments {
		for _, it := range in.Items {
			i, ok := col[it.ID]
			if !ok {
				return nil, fmt.Errorf("responses have no column for item %s", it.ID)
			}
			itemCols = append(itemCols, itemCol{id: it.ID, index: i, scale: in.Scale})
		}
	}
	ds := &types.Dataset{Instruments: instruments}
	for _, d := range demographics {
		if _, ok := col[d]; ok {
			ds.Demographics = append(ds.Demographics, d)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		resp := types.Respondent{ID: rec[idCol], Responses: make(map[string]*int, len(itemCols))}
		for _, ic := range itemCols {
			cell := strings.TrimSpace(rec[ic.index])
			if missing(cell) {
				resp.Responses[ic.id] = nil
				continue
			}
			v, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d, item %s: %q is not an integer", line, ic.id, cell)
			}
			if !ic.scale.Contains(v) {
				return nil, fmt.Errorf("line %d, item %s: %d outside %d-%d", line, ic.id, v, ic.scale.Min, ic.scale.Max)
			}
			resp.Responses[ic.id] = types.IntPtr(v)
		}
		for _, d := range ds.Demographics {
			cell := strings.TrimSpace(rec[col[d]])
			if missing(cell) {
				continue
			}
			if resp.Demographics == nil {
				resp.Demographics = make(map[string]any)
			}
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				resp.Demographics[d] = f
			} else {
				resp.Demographics[d] = cell
			}
		}
		ds.Respondents = append(ds.Respondents, resp)
	}
	return ds, nil
}

func missing(cell string) bool {
	return cell == "" || strings.EqualFold(cell, NA)
}
