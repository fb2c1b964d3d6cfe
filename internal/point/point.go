// Package point computes geospatial variables for the adjusted jgg
// grid-cell centroids: raster values at the point, counts and weighted
// aggregates within circular buffers, and shortest distances to
// infrastructure features. Results are keyed by tot_reg_cd.
package point

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

// KeyColumn is the grid-cell identifier every point variable is keyed by.
const KeyColumn = "tot_reg_cd"

// BufferSizes are the valid catchment radii in meters for buffer-based
// variables. The centroid table is pre-buffered with one geometry column
// per size.
var BufferSizes = []int{100, 300, 500, 1000, 5000}

// EmissionBufferSizes are the coarser radii used by the emission variables.
var EmissionBufferSizes = []int{3000, 10000, 20000}

// EmissionTypes are the source geometry classes of the emission raster.
var EmissionTypes = []string{"area", "line", "point"}

// PollutantTypes are the inventory pollutant columns.
var PollutantTypes = []string{"co", "nox", "nh3", "voc", "pm10", "sox", "tsp"}

// Params carries the request parameters a point calculator may need.
// Individual calculators validate only the fields they use.
type Params struct {
	Year          int
	BufferSize    int
	EmissionType  string
	PollutantType string
}

// Calculator is one point-based variable computation.
type Calculator interface {
	// Name is the variable identifier used in routes and job records.
	Name() string

	// ValidYears lists the years the backing tables exist for.
	ValidYears() []int

	// Calculate runs the spatial SQL and reshapes the result into a frame
	// keyed by tot_reg_cd.
	Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error)
}

// Factory builds a calculator from request parameters.
type Factory func(p Params) Calculator

var registry = map[string]Factory{}

func register(name string, f Factory) {
	registry[name] = f
}

// New builds the named calculator, or an error listing known variables.
func New(variable string, p Params) (Calculator, error) {
	f, ok := registry[variable]
	if !ok {
		return nil, validate.Errorf("point: unknown variable %q, valid variables are: %s", variable, strings.Join(Variables(), ", "))
	}
	return f(p), nil
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

func validateYear(year int, valid []int) error {
	for _, v := range valid {
		if year == v {
			return nil
		}
	}
	return validate.Errorf("invalid year %d, valid years are: %s", year, joinInts(valid))
}

func validateBuffer(size int, valid []int) error {
	for _, v := range valid {
		if size == v {
			return nil
		}
	}
	return validate.Errorf("invalid buffer size %d, valid buffer sizes are: %s", size, joinInts(valid))
}

func validateEnum(kind, value string, valid []string) error {
	for _, v := range valid {
		if value == v {
			return nil
		}
	}
	return validate.Errorf("invalid %s %q, valid values are: %s", kind, value, strings.Join(valid, ", "))
}

// remapYear2000 substitutes 2005 for 2000 on datasets whose earliest
// survey is 2005. The substitution is long-standing documented behavior,
// so it stays a warning rather than an error.
func remapYear2000(variable string, year int) int {
	if year == 2000 {
		zap.L().Warn("point: year 2000 calculated as 2005", zap.String("variable", variable))
		return 2005
	}
	return year
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}

// queryFrame executes one statement and drains it into a tot_reg_cd frame.
func queryFrame(ctx context.Context, pool db.Pool, name, sql string) (*frame.Frame, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		zap.L().Error("point: query failed", zap.String("variable", name), zap.Error(err))
		return nil, eris.Wrapf(err, "point: %s query", name)
	}
	f, err := frame.FromRows(KeyColumn, rows)
	if err != nil {
		zap.L().Error("point: reshape failed", zap.String("variable", name), zap.Error(err))
		return nil, eris.Wrapf(err, "point: %s reshape", name)
	}
	return f, nil
}
