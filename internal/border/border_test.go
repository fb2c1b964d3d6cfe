package border

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for _, s := range []string{"sgg", "emd", "jgg"} {
		bt, err := ParseType(s)
		require.NoError(t, err)
		assert.Equal(t, Type(s), bt)
	}

	_, err := ParseType("gu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sgg, emd, jgg")
}

func TestTableFor(t *testing.T) {
	sgg := TableFor(Sgg, 2020)
	assert.Equal(t, "bnd_sigungu_00_2020_4q", sgg.Name)
	assert.Equal(t, "sigungu_cd", sgg.CodeColumn)
	assert.Equal(t, "sigungu_nm", sgg.NameColumn)

	emd := TableFor(Emd, 2005)
	assert.Equal(t, "bnd_dong_00_2005_4q", emd.Name)
	assert.Equal(t, "adm_dr_cd", emd.CodeColumn)

	jgg := TableFor(Jgg, 2010)
	assert.Equal(t, "jgg_borders_2023", jgg.Name)
	assert.Equal(t, "tot_reg_cd", jgg.CodeColumn)
	assert.Equal(t, "tot_reg_cd", jgg.NameColumn)
}

func TestNew_UnknownVariable(t *testing.T) {
	_, err := New("commute_time", Sgg, 2020)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable")
	assert.Contains(t, err.Error(), "river")
}

func TestVariables(t *testing.T) {
	vars := Variables()
	assert.Contains(t, vars, "river")
	assert.Contains(t, vars, "emission")
	assert.Contains(t, vars, "landuse_area")
	assert.Contains(t, vars, "road")
	assert.Contains(t, vars, "raster_emission")
	assert.Contains(t, vars, "clinic_count")
	assert.Contains(t, vars, "hospital_count")
	assert.IsNonDecreasing(t, vars)
}

// Every calculator must reject an out-of-range year with a message listing
// its valid years.
func TestAllCalculators_InvalidYear(t *testing.T) {
	for _, variable := range Variables() {
		t.Run(variable, func(t *testing.T) {
			calc, err := New(variable, Sgg, 1999)
			require.NoError(t, err)

			_, err = calc.Calculate(t.Context(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid year 1999")
			assert.Contains(t, err.Error(), "valid years are:")
		})
	}
}

func TestValidateYear_Message(t *testing.T) {
	err := validateYear(2003, []int{2000, 2005, 2010, 2015, 2020})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2000, 2005, 2010, 2015, 2020")
}
