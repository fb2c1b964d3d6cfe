package point

import (
	"context"
	"fmt"
	"strings"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("business_registration_count", func(p Params) Calculator {
		return &WeightedCountCalculator{
			variable:   "business_registration_count",
			table:      "jgg_adjusted_sgis_bnu",
			column:     "cp_bnu",
			prefix:     "B_bnu",
			categories: 19,
			year:       p.Year,
			buffer:     p.BufferSize,
		}
	})
	register("business_employee_count", func(p Params) Calculator {
		return &WeightedCountCalculator{
			variable:   "business_employee_count",
			table:      "jgg_adjusted_sgis_bem",
			column:     "cp_bem",
			prefix:     "B_bem",
			categories: 19,
			year:       p.Year,
			buffer:     p.BufferSize,
		}
	})
	register("house_type_count", func(p Params) Calculator {
		return &WeightedCountCalculator{
			variable:   "house_type_count",
			table:      "jgg_adjusted_sgis_ho_gb",
			column:     "ho_gb",
			prefix:     "H_gb",
			categories: 6,
			year:       p.Year,
			buffer:     p.BufferSize,
		}
	})
}

// WeightedCountCalculator aggregates per-cell SGIS census counts into a
// buffer around each centroid, weighting every neighboring cell by the
// fraction of its area the buffer covers. The precomputed
// intersection_areas_{buffer} table maps each center cell to its
// overlapped neighbors with intersect_area and border_area. Output is one
// column per category, {prefix}_{i}_{buffer:04d}, plus a grand total
// column {prefix}_{buffer:04d}.
type WeightedCountCalculator struct {
	variable   string
	table      string
	column     string
	prefix     string
	categories int
	year       int
	buffer     int
}

func (c *WeightedCountCalculator) Name() string { return c.variable }

func (c *WeightedCountCalculator) ValidYears() []int {
	return []int{2000, 2005, 2010, 2015, 2020}
}

func (c *WeightedCountCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	if err := validateBuffer(c.buffer, BufferSizes); err != nil {
		return nil, err
	}

	exprs := make([]string, 0, c.categories+1)
	sums := make([]string, 0, c.categories)
	for i := 1; i <= c.categories; i++ {
		sum := fmt.Sprintf("COALESCE(SUM(p.%s_%03d::float * ia.intersect_area / ia.border_area), 0)", c.column, i)
		exprs = append(exprs, fmt.Sprintf("%s AS \"%s_%d_%04d\"", sum, c.prefix, i, c.buffer))
		sums = append(sums, sum)
	}
	exprs = append(exprs, fmt.Sprintf("%s AS \"%s_%04d\"", strings.Join(sums, " + "), c.prefix, c.buffer))

	sql := fmt.Sprintf(`
		SELECT
			ia.center_reg_cd AS tot_reg_cd,
			%s
		FROM
			intersection_areas_%d ia
		LEFT JOIN
			%s p
			ON p.tot_reg_cd = ia.border_reg_cd
			AND p.year = %d
		GROUP BY
			ia.center_reg_cd
		ORDER BY
			ia.center_reg_cd
	`, strings.Join(exprs, ",\n\t\t\t"), c.buffer, c.table, c.year)
	return queryFrame(ctx, pool, c.variable, sql)
}
