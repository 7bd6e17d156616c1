package lut

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_SamplePositions(t *testing.T) {
	raw := []float64{1, 5, 9}
	out, err := Expand(raw, 4, 2)
	require.NoError(t, err)
	require.Len(t, out, 12)

	// Raw values land exactly at pixelFirst + k*step.
	assert.Equal(t, 1.0, out[2])
	assert.Equal(t, 5.0, out[6])
	assert.Equal(t, 9.0, out[10])
}

func TestExpand_FillAndInterpolation(t *testing.T) {
	raw := []float64{10, 20}
	out, err := Expand(raw, 4, 2)
	require.NoError(t, err)
	require.Len(t, out, 8)

	// Columns before the origin take the first value.
	assert.Equal(t, 10.0, out[0])
	assert.Equal(t, 10.0, out[1])

	// Interior columns interpolate linearly between the bracketing values.
	assert.Equal(t, 12.5, out[3])
	assert.Equal(t, 15.0, out[4])
	assert.Equal(t, 17.5, out[5])

	// Columns past the last position take the last value.
	assert.Equal(t, 20.0, out[6])
	assert.Equal(t, 20.0, out[7])
}

func TestExpand_InterpolationStaysBracketed(t *testing.T) {
	raw := []float64{3, 7, 2, 11}
	out, err := Expand(raw, 8, 0)
	require.NoError(t, err)

	for k := 0; k < len(raw)-1; k++ {
		lo, hi := raw[k], raw[k+1]
		if lo > hi {
			lo, hi = hi, lo
		}
		for c := k * 8; c <= (k+1)*8 && c < len(out); c++ {
			assert.GreaterOrEqual(t, out[c], lo, "column %d", c)
			assert.LessOrEqual(t, out[c], hi, "column %d", c)
		}
	}
}

func TestExpand_NegativeStep(t *testing.T) {
	// A descending table expands like the ascending expansion of the
	// reversed list.
	raw := []float64{1, 2, 3}
	out, err := Expand(raw, -10, 100)
	require.NoError(t, err)
	require.Len(t, out, 30)

	reversed, err := Expand([]float64{3, 2, 1}, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, reversed, out)

	// Every column sits before the origin, so all take the (reversed)
	// first value.
	for _, v := range out {
		assert.Equal(t, 3.0, v)
	}
}

func TestExpand_Errors(t *testing.T) {
	_, err := Expand(nil, 4, 0)
	assert.ErrorIs(t, err, ErrBadLUT)

	_, err = Expand([]float64{1}, 0, 0)
	assert.ErrorIs(t, err, ErrBadLUT)

	// Negative step with a non-positive origin is the guarded descending
	// product case.
	_, err = Expand([]float64{1, 2}, -4, 0)
	assert.ErrorIs(t, err, ErrDescendingOrigin)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const lutXML = `<?xml version="1.0"?>
<lut xmlns="rcmGsProductSchema">
  <offset>-2.5</offset>
  <pixelFirstLutValue>0</pixelFirstLutValue>
  <stepSize>2</stepSize>
  <numberOfValues>3</numberOfValues>
  <gains>2 4 6</gains>
</lut>`

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lutSigma.xml", lutXML)

	table, err := Load(path, 6)
	require.NoError(t, err)

	assert.Equal(t, -2.5, table.Offset)
	assert.Equal(t, []float64{2, 3, 4, 5, 6, 6}, table.Gains)
}

func TestLoad_NarrowerThanRaster(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lutSigma.xml", lutXML)

	_, err := Load(path, 100)
	assert.ErrorIs(t, err, ErrBadLUT)
}

func TestLoad_CountMismatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lutSigma.xml", `<?xml version="1.0"?>
<lut>
  <offset>0</offset>
  <pixelFirstLutValue>0</pixelFirstLutValue>
  <stepSize>2</stepSize>
  <numberOfValues>5</numberOfValues>
  <gains>2 4 6</gains>
</lut>`)

	_, err := Load(path, 1)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.xml"), 1)
	assert.Error(t, err)
}

const noiseXML = `<?xml version="1.0"?>
<noiseLevels xmlns="rcmGsProductSchema">
  <referenceNoiseLevel>
    <sarCalibrationType>Sigma Nought</sarCalibrationType>
    <pixelFirstNoiseValue>0</pixelFirstNoiseValue>
    <stepSize>2</stepSize>
    <numberOfValues>2</numberOfValues>
    <noiseLevelValues>-30 -32</noiseLevelValues>
  </referenceNoiseLevel>
  <referenceNoiseLevel>
    <sarCalibrationType>Beta Nought</sarCalibrationType>
    <pixelFirstNoiseValue>0</pixelFirstNoiseValue>
    <stepSize>2</stepSize>
    <numberOfValues>2</numberOfValues>
    <noiseLevelValues>-20 -22</noiseLevelValues>
  </referenceNoiseLevel>
</noiseLevels>`

func TestLoadNoise_SelectsCalibrationType(t *testing.T) {
	path := writeFile(t, t.TempDir(), "noiseLevels.xml", noiseXML)

	sigma, err := LoadNoise(path, TypeSigma, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{-30, -31, -32, -32}, sigma)

	beta, err := LoadNoise(path, TypeBeta, 4)
	require.NoError(t, err)
	assert.Equal(t, -20.0, beta[0])
}

func TestLoadNoise_AbsentTypeIsNil(t *testing.T) {
	path := writeFile(t, t.TempDir(), "noiseLevels.xml", noiseXML)

	gamma, err := LoadNoise(path, TypeGamma, 4)
	require.NoError(t, err)
	assert.Nil(t, gamma)
}

func TestLoadIncidenceAngles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "incidenceAngles.xml", `<?xml version="1.0"?>
<incidenceAngles xmlns="rcmGsProductSchema">
  <pixelFirstAnglesValue>0</pixelFirstAnglesValue>
  <stepSize>3</stepSize>
  <numberOfValues>2</numberOfValues>
  <angles>20.0 23.0</angles>
</incidenceAngles>`)

	angles, err := LoadIncidenceAngles(path, 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 21, 22, 23, 23, 23}, angles)
}
