package border

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("car_registration", func(bt Type, year int) Calculator {
		return &CarRegistrationCalculator{bt: bt, year: year}
	})
}

// CarRegistrationCalculator joins the sigungu-level car registration
// figures onto each region. Source data only exists at sigungu granularity,
// so finer regions inherit the value of their parent sigungu via the
// 5-character code prefix.
type CarRegistrationCalculator struct {
	bt   Type
	year int
}

func (c *CarRegistrationCalculator) Name() string { return "car_registration" }

func (c *CarRegistrationCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *CarRegistrationCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		SELECT
			b.%[1]s AS %[1]s,
			c.year,
			c.value AS sigungu_car_registration,
			ST_Area(b.geom) AS area,
			ST_Area(b.geom) / c.value AS area_per_car
		FROM
			%[2]s AS b
			JOIN car_registration AS c
				ON LEFT(b.%[1]s::text, 5) = c.sgg_cd::text
		WHERE c.year = %[3]d
		ORDER BY %[1]s`,
		tbl.CodeColumn, tbl.Name, c.year)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}
