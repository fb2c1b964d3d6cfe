package border

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("road", func(bt Type, year int) Calculator {
		return &RoadCalculator{bt: bt, year: year, limiter: rate.NewLimiter(rate.Limit(20), 1)}
	})
}

// RoadCalculator sums intersected road length per region. A single join
// across the full road network blows past statement memory on the jgg grid,
// so it runs one query per region instead; the limiter paces the loop so a
// long-running job does not starve other pool users.
type RoadCalculator struct {
	bt   Type
	year int

	limiter *rate.Limiter
}

func (c *RoadCalculator) Name() string { return "road" }

func (c *RoadCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *RoadCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	// No 2000 road survey exists; the 2005 network is the accepted stand-in.
	year := c.year
	if year == 2000 {
		year = 2005
	}

	codes, err := regionCodes(ctx, pool, tbl)
	if err != nil {
		return nil, err
	}

	out := frame.New(tbl.CodeColumn, "road_length")
	for i, code := range codes {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "border: road pacing")
			}
		}

		sql := fmt.Sprintf(`
			WITH
				road_1year AS ( SELECT * FROM roads WHERE year = %[3]d ),
				border_sel AS ( SELECT * FROM %[2]s WHERE %[1]s::text = '%[4]s' )
			SELECT
				bs.%[1]s AS %[1]s,
				COALESCE(SUM(ST_Length(ST_Intersection(r.geometry, bs.geom))), 0) AS road_length
			FROM
				border_sel AS bs
				LEFT JOIN road_1year r ON ST_Intersects(bs.geom, r.geometry)
			GROUP BY
				bs.%[1]s`,
			tbl.CodeColumn, tbl.Name, year, code)

		f, err := queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
		if err != nil {
			return nil, err
		}
		for j := 0; j < f.Len(); j++ {
			if err := out.Append(f.Row(j)); err != nil {
				return nil, err
			}
		}

		if (i+1)%500 == 0 {
			zap.L().Info("border: road progress",
				zap.String("border_type", string(c.bt)),
				zap.Int("done", i+1),
				zap.Int("total", len(codes)),
			)
		}
	}
	return out, nil
}

// regionCodes fetches the region code column of a border table in order.
func regionCodes(ctx context.Context, pool db.Pool, tbl Table) ([]string, error) {
	sql := fmt.Sprintf("SELECT %[1]s FROM %[2]s ORDER BY %[1]s", tbl.CodeColumn, tbl.Name)
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrapf(err, "border: list region codes from %s", tbl.Name)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, eris.Wrap(err, "border: scan region code")
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "border: iterate region codes")
	}
	return codes, nil
}
