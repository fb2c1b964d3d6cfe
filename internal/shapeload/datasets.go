// Package shapeload bulk-loads Korean administrative boundary
// shapefiles into the PostGIS border tables the calculators read.
package shapeload

import "fmt"

// SRID5179 is Korea 2000 / Unified CS, the planar CRS the border tables
// and buffer distances are expressed in.
const SRID5179 = 5179

// Dataset describes one boundary shapefile product.
type Dataset struct {
	Name       string // dataset identifier used on the CLI
	CodeColumn string // region code attribute
	NameColumn string // region name attribute, empty if absent
	Yearly     bool   // true = one table per census year
}

// Datasets lists the boundary products the loader understands.
var Datasets = []Dataset{
	{Name: "sigungu", CodeColumn: "sigungu_cd", NameColumn: "sigungu_nm", Yearly: true},
	{Name: "emd", CodeColumn: "adm_dr_cd", NameColumn: "adm_dr_nm", Yearly: true},
	{Name: "jgg", CodeColumn: "tot_reg_cd", Yearly: false},
}

// DatasetByName looks up a dataset by its CLI name.
func DatasetByName(name string) (Dataset, bool) {
	for _, d := range Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return Dataset{}, false
}

// TableName returns the target table for a dataset and census year.
// Yearly datasets follow the fourth-quarter naming of the national
// boundary releases.
func (d Dataset) TableName(year int) string {
	switch d.Name {
	case "sigungu":
		return fmt.Sprintf("bnd_sigungu_00_%d_4q", year)
	case "emd":
		return fmt.Sprintf("bnd_dong_00_%d_4q", year)
	case "jgg":
		return "jgg_borders_2023"
	default:
		return d.Name
	}
}

// Columns returns the DB columns in COPY order, geometry last.
func (d Dataset) Columns() []string {
	cols := []string{d.CodeColumn}
	if d.NameColumn != "" {
		cols = append(cols, d.NameColumn)
	}
	return append(cols, "geom")
}

// Schema returns the CREATE TABLE statement for the dataset's table.
func (d Dataset) Schema(year int) string {
	table := d.TableName(year)
	nameCol := ""
	if d.NameColumn != "" {
		nameCol = fmt.Sprintf("\n\t%s TEXT,", d.NameColumn)
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s TEXT PRIMARY KEY,%s
	geom geometry(MultiPolygon, %d)
);
CREATE INDEX IF NOT EXISTS idx_%s_geom ON %s USING GIST (geom);`,
		table, d.CodeColumn, nameCol, SRID5179, table, table)
}
