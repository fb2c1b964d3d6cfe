// Package export writes calculation frames to files: CSV (UTF-8 or
// CP949 for Korean spreadsheet tooling), XLSX, and JSON records.
package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

// CSVOptions configures CSV output.
type CSVOptions struct {
	// CP949 transcodes the output to EUC-KR, which Excel on Korean
	// Windows expects for unmarked CSV files.
	CP949 bool
}

// WriteCSVFile writes the frame to path.
func WriteCSVFile(f *frame.Frame, path string, opts CSVOptions) error {
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}

	var werr error
	if opts.CP949 {
		w := transform.NewWriter(out, korean.EUCKR.NewEncoder())
		werr = f.WriteCSV(w)
		if werr == nil {
			werr = w.Close()
		}
	} else {
		werr = f.WriteCSV(out)
	}
	cerr := out.Close()
	if werr != nil {
		return eris.Wrapf(werr, "export: write csv %s", path)
	}
	return eris.Wrapf(cerr, "export: close %s", path)
}

// WriteXLSXFile writes the frame to path as a single-sheet workbook.
func WriteXLSXFile(f *frame.Frame, path, sheetName string) error {
	if sheetName == "" {
		sheetName = "result"
	}
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", sheetName)
	}

	// Columns already leads with the key column.
	header := sheet.AddRow()
	for _, col := range f.Columns {
		header.AddCell().SetString(col)
	}

	for _, rec := range f.Records() {
		row := sheet.AddRow()
		for _, col := range f.Columns {
			cell := row.AddCell()
			if v, ok := rec[col]; ok && v != nil {
				cell.SetValue(v)
			}
		}
	}

	return eris.Wrapf(wb.Save(path), "export: save %s", path)
}

// WriteJSONFile writes the frame as a records-oriented JSON array.
func WriteJSONFile(f *frame.Frame, path string) error {
	data, err := json.MarshalIndent(f.Records(), "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal records")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}
