package shapeload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetByName(t *testing.T) {
	d, ok := DatasetByName("sigungu")
	require.True(t, ok)
	assert.Equal(t, "sigungu_cd", d.CodeColumn)
	assert.True(t, d.Yearly)

	_, ok = DatasetByName("province")
	assert.False(t, ok)
}

func TestTableName(t *testing.T) {
	sigungu, _ := DatasetByName("sigungu")
	assert.Equal(t, "bnd_sigungu_00_2020_4q", sigungu.TableName(2020))

	emd, _ := DatasetByName("emd")
	assert.Equal(t, "bnd_dong_00_2015_4q", emd.TableName(2015))

	jgg, _ := DatasetByName("jgg")
	assert.Equal(t, "jgg_borders_2023", jgg.TableName(0))
	assert.False(t, jgg.Yearly)
}

func TestColumns(t *testing.T) {
	sigungu, _ := DatasetByName("sigungu")
	assert.Equal(t, []string{"sigungu_cd", "sigungu_nm", "geom"}, sigungu.Columns())

	jgg, _ := DatasetByName("jgg")
	assert.Equal(t, []string{"tot_reg_cd", "geom"}, jgg.Columns())
}

func TestSchema(t *testing.T) {
	sigungu, _ := DatasetByName("sigungu")
	schema := sigungu.Schema(2020)
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS bnd_sigungu_00_2020_4q")
	assert.Contains(t, schema, "sigungu_cd TEXT PRIMARY KEY")
	assert.Contains(t, schema, "geometry(MultiPolygon, 5179)")
	assert.Contains(t, schema, "USING GIST (geom)")

	jgg, _ := DatasetByName("jgg")
	assert.NotContains(t, jgg.Schema(0), "TEXT,\n")
}

func TestLoad_UnknownDataset(t *testing.T) {
	_, err := Load(context.Background(), nil, LoadOptions{Dataset: "province"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dataset "province"`)
	assert.Contains(t, err.Error(), "valid datasets are: sigungu, emd, jgg")
}

func TestLoad_YearlyRequiresYear(t *testing.T) {
	_, err := Load(context.Background(), nil, LoadOptions{Dataset: "emd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a year")
}
