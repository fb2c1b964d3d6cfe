package border

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("clinic_count", func(bt Type, year int) Calculator {
		return &FacilityCountCalculator{bt: bt, year: year, variable: "clinic_count", table: "clinics"}
	})
	register("hospital_count", func(bt Type, year int) Calculator {
		return &FacilityCountCalculator{bt: bt, year: year, variable: "hospital_count", table: "hospitals"}
	})
}

// FacilityCountCalculator counts medical facilities open in the reference
// year inside each region. A facility counts when it opened on or before
// the end of the year, had not closed before the start of the year, and is
// flagged as operating.
type FacilityCountCalculator struct {
	bt   Type
	year int

	variable string
	table    string
}

func (c *FacilityCountCalculator) Name() string { return c.variable }

// ValidYears lists boundary survey years; the facility registry itself is
// not vintaged, only date-filtered.
func (c *FacilityCountCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *FacilityCountCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		SELECT
			b.%[1]s AS %[1]s,
			COUNT(f.*) AS %[4]s
		FROM
			%[2]s AS b
			LEFT JOIN %[3]s AS f
				ON ST_Contains(b.geom, f.geom)
				AND f.date <= '%[5]d-12-31'
				AND (f.date_c IS NULL OR f.date_c >= '%[5]d-01-01')
				AND f.operation = 1
		GROUP BY
			b.%[1]s
		ORDER BY
			b.%[1]s`,
		tbl.CodeColumn, tbl.Name, c.table, c.variable, c.year)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}
