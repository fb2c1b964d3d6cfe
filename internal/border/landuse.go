package border

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

// landuseCodes is the level-2 land cover classification of the
// environmental ministry's landuse_v002 product.
var landuseCodes = []int{110, 120, 130, 140, 150, 160, 200, 310, 320, 330, 400, 500, 600, 710}

func init() {
	register("landuse_area", func(bt Type, year int) Calculator {
		return &LanduseAreaCalculator{bt: bt, year: year}
	})
}

// LanduseAreaCalculator computes, for every land cover class, the
// intersected area and its ratio to the region area. One query per class;
// the per-class frames are outer-merged into one wide table.
type LanduseAreaCalculator struct {
	bt   Type
	year int
}

func (c *LanduseAreaCalculator) Name() string { return "landuse_area" }

func (c *LanduseAreaCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *LanduseAreaCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)
	landuseTbl := fmt.Sprintf("landuse_v002_%d", c.year)

	frames := make([]*frame.Frame, 0, len(landuseCodes))
	for _, code := range landuseCodes {
		sql := fmt.Sprintf(`
			SELECT
				b.%[1]s AS %[1]s,
				SUM(ST_Area(ST_Intersection(l.geometry, b.geom))) AS lu_%[3]d_area,
				SUM(ST_Area(ST_Intersection(l.geometry, b.geom))) / MAX(ST_Area(b.geom)) AS lu_%[3]d_ratio
			FROM
				%[2]s AS b
				LEFT JOIN %[4]s AS l
					ON ST_Intersects(l.geometry, b.geom)
					AND l.code = %[3]d
			GROUP BY
				b.%[1]s
			ORDER BY
				b.%[1]s`,
			tbl.CodeColumn, tbl.Name, code, landuseTbl)

		f, err := queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frame.MergeAll(frames)
}
