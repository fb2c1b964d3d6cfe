package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func TestWriteFrame_UnknownFormat(t *testing.T) {
	f := frame.New("tot_reg_cd", "value")
	err := writeFrame(f, "out.bin", "parquet")
	assert.ErrorContains(t, err, `unknown output format "parquet"`)
}

func TestWriteFrame_JSON(t *testing.T) {
	f := frame.New("tot_reg_cd", "value")
	require.NoError(t, f.Append(map[string]any{"tot_reg_cd": "1101053", "value": 1.5}))

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeFrame(f, path, "json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1101053")
}
