package shapeload

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
)

// LoadOptions configures a boundary load.
type LoadOptions struct {
	Dataset string // sigungu, emd, or jgg
	Year    int    // census year for yearly datasets
	ShpPath string // source .shp path
	SRID    int    // default 5179
	Replace bool   // truncate the table before loading
}

// Load parses the shapefile and bulk-copies it into the dataset's
// border table, creating the table if missing.
func Load(ctx context.Context, pool db.Pool, opts LoadOptions) (int64, error) {
	dataset, ok := DatasetByName(opts.Dataset)
	if !ok {
		return 0, eris.Errorf("shapeload: unknown dataset %q, valid datasets are: sigungu, emd, jgg", opts.Dataset)
	}
	if dataset.Yearly && opts.Year == 0 {
		return 0, eris.Errorf("shapeload: dataset %s requires a year", dataset.Name)
	}
	srid := opts.SRID
	if srid == 0 {
		srid = SRID5179
	}

	table := dataset.TableName(opts.Year)
	log := zap.L().With(
		zap.String("dataset", dataset.Name),
		zap.String("table", table),
	)

	start := time.Now()
	rows, err := ParseShapefile(opts.ShpPath, dataset, srid)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, eris.Errorf("shapeload: no loadable records in %s", opts.ShpPath)
	}
	log.Info("shapeload: parsed shapefile",
		zap.Int("records", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if _, err := pool.Exec(ctx, dataset.Schema(opts.Year)); err != nil {
		return 0, eris.Wrapf(err, "shapeload: create table %s", table)
	}
	if opts.Replace {
		if err := db.Truncate(ctx, pool, table); err != nil {
			return 0, err
		}
	}

	n, err := db.CopyFrom(ctx, pool, table, dataset.Columns(), rows)
	if err != nil {
		return 0, err
	}
	log.Info("shapeload: loaded border table",
		zap.Int64("rows", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n, nil
}
