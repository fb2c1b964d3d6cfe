// Package border computes geospatial variables aggregated over Korean
// administrative boundaries: sigungu districts, eup-myeon-dong
// sub-districts, and the fixed jgg grid cells. Each calculator builds one
// spatial SQL statement (or a small fixed loop of them) against PostGIS and
// reshapes the result set into a frame keyed by the region code.
package border

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
	"github.com/ncc-airhealth/korea-geovariable/internal/validate"
)

// Type is the administrative boundary granularity.
type Type string

const (
	// Sgg is the sigungu (city/county/district) level.
	Sgg Type = "sgg"
	// Emd is the eup-myeon-dong (sub-district) level.
	Emd Type = "emd"
	// Jgg is the fixed grid-cell level.
	Jgg Type = "jgg"
)

// ParseType validates a border type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Sgg, Emd, Jgg:
		return Type(s), nil
	}
	return "", validate.Errorf("border: invalid border type %q, valid types are: sgg, emd, jgg", s)
}

// Table describes the boundary table backing a border type for a given
// survey year. The naming convention is owned by the data team; this layer
// only resolves it.
type Table struct {
	Name       string
	CodeColumn string
	NameColumn string
}

// TableFor resolves the boundary table for a border type and year. The jgg
// grid has a single 2023 vintage regardless of year.
func TableFor(bt Type, year int) Table {
	switch bt {
	case Sgg:
		return Table{
			Name:       fmt.Sprintf("bnd_sigungu_00_%d_4q", year),
			CodeColumn: "sigungu_cd",
			NameColumn: "sigungu_nm",
		}
	case Emd:
		return Table{
			Name:       fmt.Sprintf("bnd_dong_00_%d_4q", year),
			CodeColumn: "adm_dr_cd",
			NameColumn: "adm_dr_nm",
		}
	default:
		return Table{
			Name:       "jgg_borders_2023",
			CodeColumn: "tot_reg_cd",
			NameColumn: "tot_reg_cd",
		}
	}
}

// Calculator is one border-based variable computation bound to a border
// type and reference year.
type Calculator interface {
	// Name is the variable identifier used in routes and job records.
	Name() string

	// ValidYears lists the years the backing tables exist for.
	ValidYears() []int

	// Calculate runs the spatial SQL and reshapes the result. It returns a
	// frame keyed by the region code column for the border type.
	Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error)
}

// Factory builds a calculator for a border type and year.
type Factory func(bt Type, year int) Calculator

var registry = map[string]Factory{}

func register(name string, f Factory) {
	registry[name] = f
}

// New builds the named calculator, or an error listing known variables.
func New(variable string, bt Type, year int) (Calculator, error) {
	f, ok := registry[variable]
	if !ok {
		return nil, validate.Errorf("border: unknown variable %q, valid variables are: %s", variable, strings.Join(Variables(), ", "))
	}
	return f(bt, year), nil
}

// Variables returns the registered variable names, sorted.
func Variables() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateYear checks year against an allow-list. The message lists the
// valid years so API callers can self-correct.
func validateYear(year int, valid []int) error {
	for _, v := range valid {
		if year == v {
			return nil
		}
	}
	parts := make([]string, len(valid))
	for i, v := range valid {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return validate.Errorf("invalid year %d, valid years are: %s", year, strings.Join(parts, ", "))
}

// queryFrame executes one statement and drains it into a frame keyed by
// key. Query errors are logged before being returned so worker logs carry
// the failing variable even when the caller swallows details into job meta.
func queryFrame(ctx context.Context, pool db.Pool, name, key, sql string) (*frame.Frame, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		zap.L().Error("border: query failed", zap.String("variable", name), zap.Error(err))
		return nil, eris.Wrapf(err, "border: %s query", name)
	}
	f, err := frame.FromRows(key, rows)
	if err != nil {
		zap.L().Error("border: reshape failed", zap.String("variable", name), zap.Error(err))
		return nil, eris.Wrapf(err, "border: %s reshape", name)
	}
	return f, nil
}
