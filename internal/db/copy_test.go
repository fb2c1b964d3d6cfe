package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "bnd_sigungu_00_2020_4q", []string{"sigungu_cd", "geom"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"bnd_sigungu_00_2020_4q"}, []string{"sigungu_cd", "sigungu_nm", "geom"}).WillReturnResult(2)

	rows := [][]any{
		{"11010", "Jongno-gu", []byte{0x01}},
		{"11020", "Jung-gu", []byte{0x01}},
	}
	n, err := CopyFrom(context.Background(), mock, "bnd_sigungu_00_2020_4q", []string{"sigungu_cd", "sigungu_nm", "geom"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"jgg_borders_2023"}, []string{"tot_reg_cd", "geom"}).WillReturnError(fmt.Errorf("copy failed"))

	rows := [][]any{{"110100001001", []byte{0x01}}}
	_, err = CopyFrom(context.Background(), mock, "jgg_borders_2023", []string{"tot_reg_cd", "geom"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO jgg_borders_2023")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTruncate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`TRUNCATE TABLE "river"`).WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))

	err = Truncate(context.Background(), mock, "river")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
