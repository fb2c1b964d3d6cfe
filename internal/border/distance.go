package border

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("coastline_distance", func(bt Type, year int) Calculator {
		return &CoastlineDistanceCalculator{bt: bt, year: year}
	})
	register("airport_distance", func(bt Type, year int) Calculator {
		return &AirportDistanceCalculator{bt: bt, year: year}
	})
	register("mdl_distance", func(bt Type, year int) Calculator {
		return &MdlDistanceCalculator{bt: bt, year: year}
	})
	register("port_distance", func(bt Type, year int) Calculator {
		return &PortDistanceCalculator{bt: bt, year: year}
	})
}

// CoastlineDistanceCalculator measures the distance from each region
// centroid to the coastline of the reference year. Coastline geometries are
// stored in WGS84 and transformed to the Korea 2000 grid (EPSG:5179) so the
// distance comes out in meters.
type CoastlineDistanceCalculator struct {
	bt   Type
	year int
}

func (c *CoastlineDistanceCalculator) Name() string { return "coastline_distance" }

func (c *CoastlineDistanceCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *CoastlineDistanceCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		SELECT
			b.%[1]s AS %[1]s,
			ST_Distance(ST_Centroid(b.geom), ST_Transform(c.geom, 5179)) AS centroid_to_coastline
		FROM
			%[2]s AS b,
			coastline_%[3]d AS c
		ORDER BY %[1]s`,
		tbl.CodeColumn, tbl.Name, c.year)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}

// AirportDistanceCalculator finds the nearest airport to each region
// centroid via a ranked cross join and keeps the rank-1 row.
type AirportDistanceCalculator struct {
	bt   Type
	year int
}

func (c *AirportDistanceCalculator) Name() string { return "airport_distance" }

func (c *AirportDistanceCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *AirportDistanceCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		WITH airport_distance_tbl AS (
			SELECT
				b.%[1]s AS %[1]s,
				a.name AS airport_name,
				ST_Distance(ST_Centroid(b.geom), a.geometry) AS airport_distance
			FROM
				%[2]s AS b
				CROSS JOIN airport AS a
			WHERE a.year = %[3]d
		), airport_distance_rank_tbl AS (
			SELECT
				*,
				ROW_NUMBER() OVER (PARTITION BY ad.%[1]s ORDER BY airport_distance ASC) AS distance_rank
			FROM airport_distance_tbl AS ad
		)
		SELECT
			%[1]s,
			airport_name,
			airport_distance AS distance_to_nearest_airport
		FROM airport_distance_rank_tbl
		WHERE distance_rank = 1`,
		tbl.CodeColumn, tbl.Name, c.year)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}

// MdlDistanceCalculator measures the distance from each region centroid to
// the military demarcation line, unioned to a single geometry first.
type MdlDistanceCalculator struct {
	bt   Type
	year int
}

func (c *MdlDistanceCalculator) Name() string { return "mdl_distance" }

func (c *MdlDistanceCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *MdlDistanceCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		WITH mdl_sel AS (
			SELECT ST_Union(l.geometry) AS geometry
			FROM mdl AS l
			WHERE l.year = %[3]d
		)
		SELECT
			b.%[1]s AS %[1]s,
			ST_Distance(ST_Centroid(b.geom), ms.geometry) AS mdl_distance
		FROM
			%[2]s AS b,
			mdl_sel AS ms
		ORDER BY %[1]s`,
		tbl.CodeColumn, tbl.Name, c.year)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}

// PortDistanceCalculator finds the nearest port to each region centroid,
// same ranked-distance shape as the airport variable.
type PortDistanceCalculator struct {
	bt   Type
	year int
}

func (c *PortDistanceCalculator) Name() string { return "port_distance" }

func (c *PortDistanceCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *PortDistanceCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		WITH port_distance_tbl AS (
			SELECT
				b.%[1]s AS %[1]s,
				p.alias AS port_alias,
				ST_Distance(ST_Centroid(b.geom), p.geometry) AS port_distance
			FROM
				%[2]s AS b
				CROSS JOIN ports AS p
			WHERE p.year = %[3]d
		), port_distance_rank_tbl AS (
			SELECT
				*,
				ROW_NUMBER() OVER (PARTITION BY pd.%[1]s ORDER BY port_distance ASC) AS distance_rank
			FROM port_distance_tbl AS pd
		)
		SELECT
			%[1]s,
			port_alias,
			port_distance
		FROM port_distance_rank_tbl
		WHERE distance_rank = 1`,
		tbl.CodeColumn, tbl.Name, c.year)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}
