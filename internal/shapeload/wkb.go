package shapeload

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"
)

// EncodeWKB converts a go-shp polygon geometry to EWKB bytes with the
// given SRID. Boundary shapefiles only carry polygons; other shapes
// return nil, nil.
func EncodeWKB(shape shp.Shape, srid int) ([]byte, error) {
	p, ok := shape.(*shp.Polygon)
	if !ok || p == nil {
		return nil, nil
	}

	mp := polygonToMultiPolygon(p, srid)
	if mp == nil {
		return nil, nil
	}

	data, err := ewkb.Marshal(mp, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "shapeload: encode WKB")
	}
	return data, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon, srid int) geom.T {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(srid)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("shapeload: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("shapeload: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
