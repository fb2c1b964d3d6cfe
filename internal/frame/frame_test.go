package frame

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndKeys(t *testing.T) {
	f := New("sigungu_cd", "river_area_sum")
	require.NoError(t, f.Append(map[string]any{"sigungu_cd": "11010", "river_area_sum": 120.5}))
	require.NoError(t, f.Append(map[string]any{"sigungu_cd": "11020", "river_area_sum": 0.0}))

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"11010", "11020"}, f.Keys())
	assert.Equal(t, []string{"sigungu_cd", "river_area_sum"}, f.Columns)
	assert.Equal(t, 120.5, f.Value("11010", "river_area_sum"))
}

func TestAppend_MissingKey(t *testing.T) {
	f := New("tot_reg_cd")
	err := f.Append(map[string]any{"value": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tot_reg_cd")
}

func TestAppend_DuplicateKeyOverwrites(t *testing.T) {
	f := New("adm_dr_cd", "v")
	require.NoError(t, f.Append(map[string]any{"adm_dr_cd": "1101053", "v": 1}))
	require.NoError(t, f.Append(map[string]any{"adm_dr_cd": "1101053", "v": 2}))
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, 2, f.Value("1101053", "v"))
}

func TestMerge_Outer(t *testing.T) {
	left := New("tot_reg_cd", "lu_110_area")
	require.NoError(t, left.Append(map[string]any{"tot_reg_cd": "A", "lu_110_area": 10.0}))
	require.NoError(t, left.Append(map[string]any{"tot_reg_cd": "B", "lu_110_area": 20.0}))

	right := New("tot_reg_cd", "lu_120_area")
	require.NoError(t, right.Append(map[string]any{"tot_reg_cd": "B", "lu_120_area": 2.0}))
	require.NoError(t, right.Append(map[string]any{"tot_reg_cd": "C", "lu_120_area": 3.0}))

	merged, err := left.Merge(right)
	require.NoError(t, err)

	assert.Equal(t, []string{"tot_reg_cd", "lu_110_area", "lu_120_area"}, merged.Columns)
	assert.Equal(t, []string{"A", "B", "C"}, merged.Keys())
	assert.Nil(t, merged.Value("A", "lu_120_area"))
	assert.Equal(t, 2.0, merged.Value("B", "lu_120_area"))
	assert.Nil(t, merged.Value("C", "lu_110_area"))
}

func TestMerge_KeyMismatch(t *testing.T) {
	left := New("sigungu_cd")
	right := New("adm_dr_cd")
	_, err := left.Merge(right)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key mismatch")
}

func TestMergeAll(t *testing.T) {
	frames := make([]*Frame, 3)
	for i, col := range []string{"a", "b", "c"} {
		f := New("tot_reg_cd", col)
		require.NoError(t, f.Append(map[string]any{"tot_reg_cd": "X", col: i}))
		frames[i] = f
	}
	merged, err := MergeAll(frames)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Len())
	assert.Equal(t, []string{"tot_reg_cd", "a", "b", "c"}, merged.Columns)
}

func TestMergeAll_Empty(t *testing.T) {
	_, err := MergeAll(nil)
	require.Error(t, err)
}

func TestSplitStats(t *testing.T) {
	parts, err := SplitStats("(52114,2412.5,0.0463,0.0123,-0.21,0.92)")
	require.NoError(t, err)
	assert.Equal(t, []string{"52114", "2412.5", "0.0463", "0.0123", "-0.21", "0.92"}, parts)
}

func TestSplitStats_WrongArity(t *testing.T) {
	_, err := SplitStats("(1,2,3)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 6")
}

func TestStatValue(t *testing.T) {
	assert.Equal(t, 12.5, StatValue("12.5"))
	assert.Nil(t, StatValue(""))
	assert.Equal(t, "NaN-ish", StatValue("NaN-ish"))
}

func TestWriteCSV(t *testing.T) {
	f := New("sigungu_cd", "ndvi_mean", "ndvi_max")
	require.NoError(t, f.Append(map[string]any{"sigungu_cd": "11010", "ndvi_mean": 0.42}))

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "sigungu_cd,ndvi_mean,ndvi_max", lines[0])
	assert.Equal(t, "11010,0.42,", lines[1])
}

func TestRecords(t *testing.T) {
	f := New("tot_reg_cd", "D_Coast_2020")
	require.NoError(t, f.Append(map[string]any{"tot_reg_cd": "110100001", "D_Coast_2020": 354.2}))
	records := f.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "110100001", records[0]["tot_reg_cd"])
	assert.Equal(t, 354.2, records[0]["D_Coast_2020"])
}
