package shapeload

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ParseShapefile reads a boundary shapefile and returns rows suitable
// for COPY loading: the dataset's attribute columns followed by the
// EWKB-encoded geometry. Records without a usable polygon are skipped.
func ParseShapefile(shpPath string, dataset Dataset, srid int) ([][]any, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shapeload: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map. Korean boundary releases use
	// upper-case DBF field names.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attrCols := []string{dataset.CodeColumn}
	if dataset.NameColumn != "" {
		attrCols = append(attrCols, dataset.NameColumn)
	}

	var rows [][]any
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		row := make([]any, 0, len(attrCols)+1)
		for _, col := range attrCols {
			idx, ok := fieldIdx[strings.ToLower(col)]
			if !ok {
				row = append(row, nil)
				continue
			}
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if val == "" {
				row = append(row, nil)
			} else {
				row = append(row, val)
			}
		}

		wkb, encErr := EncodeWKB(shape, srid)
		if encErr != nil || wkb == nil {
			skipped++
			continue
		}
		row = append(row, wkb)

		rows = append(rows, row)
	}

	if skipped > 0 {
		zap.L().Debug("shapeload: skipped shapefile records",
			zap.String("dataset", dataset.Name),
			zap.Int("skipped", skipped),
		)
	}

	return rows, nil
}
