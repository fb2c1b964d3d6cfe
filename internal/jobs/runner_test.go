package jobs

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_BorderJob(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	rows := pgxmock.NewRows([]string{"sigungu_cd", "river_area_sum"}).
		AddRow("11010", 1523.4)
	mock.ExpectQuery("river_area_sum").WillReturnRows(rows)

	run := NewRunner(mock)
	result, err := run(context.Background(), &Job{
		Kind:     KindBorder,
		Variable: "river",
		Params:   Params{BorderType: "sgg", Year: 2020},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"sigungu_cd":"11010","river_area_sum":1523.4}]`, string(result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_PointJob(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	rows := pgxmock.NewRows([]string{"tot_reg_cd", "D_Port_2015"}).
		AddRow("110100001001", 8754.2)
	mock.ExpectQuery("ST_Distance").WillReturnRows(rows)

	run := NewRunner(mock)
	result, err := run(context.Background(), &Job{
		Kind:     KindPoint,
		Variable: "port_distance",
		Params:   Params{Year: 2015},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"tot_reg_cd":"110100001001","D_Port_2015":8754.2}]`, string(result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_InvalidBorderType(t *testing.T) {
	run := NewRunner(nil)
	_, err := run(context.Background(), &Job{
		Kind:     KindBorder,
		Variable: "river",
		Params:   Params{BorderType: "province", Year: 2020},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid border type "province"`)
}

func TestRunner_UnknownKind(t *testing.T) {
	run := NewRunner(nil)
	_, err := run(context.Background(), &Job{Kind: "batch", Variable: "river"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job kind")
}
