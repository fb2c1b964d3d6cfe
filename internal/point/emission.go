package point

import (
	"context"
	"fmt"
	"strings"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

// pollutants maps the inventory columns to their CAPSS report labels.
var pollutants = []struct {
	Column string
	Label  string
}{
	{"co", "CO"},
	{"nox", "NOx"},
	{"nh3", "NH3"},
	{"voc", "VOC"},
	{"pm10", "PM10"},
	{"sox", "SOx"},
	{"tsp", "TSP"},
}

func init() {
	register("emission_vector", func(p Params) Calculator {
		return &EmissionVectorCalculator{year: p.Year, buffer: p.BufferSize}
	})
	register("emission_raster_value", func(p Params) Calculator {
		return &EmissionRasterValueCalculator{
			year:          p.Year,
			emissionType:  strings.ToLower(p.EmissionType),
			pollutantType: strings.ToLower(p.PollutantType),
		}
	})
}

// EmissionVectorCalculator sums CAPSS point, line and area source
// emissions inside a wide buffer around each centroid. Columns are
// EM_{pollutant}_{buffer:05d}.
type EmissionVectorCalculator struct {
	year   int
	buffer int
}

func (c *EmissionVectorCalculator) Name() string      { return "emission_vector" }
func (c *EmissionVectorCalculator) ValidYears() []int { return []int{2010, 2015, 2019} }

func (c *EmissionVectorCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	if err := validateBuffer(c.buffer, EmissionBufferSizes); err != nil {
		return nil, err
	}

	inner := make([]string, 0, len(pollutants))
	outer := make([]string, 0, len(pollutants))
	for _, p := range pollutants {
		inner = append(inner, fmt.Sprintf("COALESCE(SUM(b.%s), 0) AS %s", p.Column, p.Column))
		outer = append(outer, fmt.Sprintf("sum(%s) AS \"EM_%s_%05d\"", p.Column, p.Label, c.buffer))
	}

	branch := func(table string) string {
		return fmt.Sprintf(`
			SELECT
				a.tot_reg_cd,
				'%[1]s' AS tablename,
				%[2]s
			FROM
				"jgg_centroid_adjusted" AS a
				LEFT JOIN %[1]s AS b
					ON ST_Contains(ST_Buffer(a.geom, %[3]d), b.geometry)
					AND b.year = %[4]d
			GROUP BY
				a.tot_reg_cd
		`, table, strings.Join(inner, ",\n\t\t\t\t"), c.buffer, c.year)
	}

	sql := fmt.Sprintf(`
		WITH tmp AS (
			%s
			UNION
			%s
			UNION
			%s
		)
		SELECT
			tmp.tot_reg_cd,
			%s
		FROM
			tmp
		GROUP BY
			tot_reg_cd
	`, branch("emission_point"), branch("emission_line"), branch("emission_area"), strings.Join(outer, ",\n\t\t\t"))
	return queryFrame(ctx, pool, c.Name(), sql)
}

// EmissionRasterValueCalculator samples the gridded emission raster at
// each centroid for one source class and one pollutant. Column is
// EM_{emission_type}_{pollutant_type}_{year}.
type EmissionRasterValueCalculator struct {
	year          int
	emissionType  string
	pollutantType string
}

func (c *EmissionRasterValueCalculator) Name() string      { return "emission_raster_value" }
func (c *EmissionRasterValueCalculator) ValidYears() []int { return []int{2001, 2005, 2010} }

func (c *EmissionRasterValueCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	if err := validateEnum("emission type", c.emissionType, EmissionTypes); err != nil {
		return nil, err
	}
	if err := validateEnum("pollutant type", c.pollutantType, PollutantTypes); err != nil {
		return nil, err
	}
	column := fmt.Sprintf("EM_%s_%s_%d", c.emissionType, c.pollutantType, c.year)
	sql := fmt.Sprintf(`
		SELECT src.tot_reg_cd,
			ST_Value(dst.rast, 1, src.geom) AS "%s"
		FROM jgg_centroid_adjusted AS src,
			emission_raster AS dst
		WHERE ST_Intersects(src.geom, dst.rast)
			AND dst.year = %d
			AND dst.emission_type = '%s'
			AND dst.pollutant_type = '%s'
		ORDER BY src.tot_reg_cd
	`, column, c.year, c.emissionType, c.pollutantType)
	return queryFrame(ctx, pool, c.Name(), sql)
}
