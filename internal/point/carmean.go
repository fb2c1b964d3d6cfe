package point

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("car_registration_mean", func(p Params) Calculator {
		return &CarMeanCalculator{year: p.Year}
	})
}

// CarMeanCalculator annotates each centroid with the mean car
// registration of its enclosing sigungu. The first five digits of
// tot_reg_cd are the sigungu code.
type CarMeanCalculator struct {
	year int
}

func (c *CarMeanCalculator) Name() string { return "car_registration_mean" }

func (c *CarMeanCalculator) ValidYears() []int {
	return []int{2000, 2005, 2010, 2015, 2020}
}

func (c *CarMeanCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	sql := fmt.Sprintf(`
		SELECT
			a.tot_reg_cd,
			b.value AS "C_Car_sigungu_mean_registration"
		FROM
			jgg_centroid_adjusted a
			LEFT JOIN car_registration b
				ON LEFT(a.tot_reg_cd::text, 5) = b.sgg_cd::text
		WHERE b.year = %d
		ORDER BY
			a.tot_reg_cd
	`, c.year)
	return queryFrame(ctx, pool, c.Name(), sql)
}
