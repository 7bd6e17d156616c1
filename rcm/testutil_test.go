package rcm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeninja55/go-rcm/raster"
)

// fakeImage is an in-memory raster.ImageFile. Samples are held as complex
// values per native band; real bands use the real part.
type fakeImage struct {
	st        raster.Structure
	types     []raster.DataType
	samples   [][]complex128 // per band, row-major SizeX*SizeY
	failReads bool
	closes    int
}

func newFakeImage(w, h, blockW, blockH int, types ...raster.DataType) *fakeImage {
	f := &fakeImage{
		st: raster.Structure{
			SizeX:      w,
			SizeY:      h,
			BlockSizeX: blockW,
			BlockSizeY: blockH,
			NBands:     len(types),
		},
		types: types,
	}
	for range types {
		f.samples = append(f.samples, make([]complex128, w*h))
	}
	return f
}

func (f *fakeImage) set(band, x, y int, v complex128) {
	f.samples[band-1][y*f.st.SizeX+x] = v
}

func (f *fakeImage) at(band, x, y int) complex128 {
	return f.samples[band-1][y*f.st.SizeX+x]
}

func (f *fakeImage) Structure() raster.Structure { return f.st }

func (f *fakeImage) BandType(band int) raster.DataType {
	if band < 1 || band > len(f.types) {
		return raster.Unknown
	}
	return f.types[band-1]
}

func (f *fakeImage) Close() error {
	f.closes++
	return nil
}

func (f *fakeImage) ReadWindow(bands []int, win raster.Window, dst interface{}, bufType raster.DataType) error {
	if f.failReads {
		return errors.New("simulated i/o failure")
	}
	if err := bufType.CheckBuffer(dst, win.Pixels()); err != nil {
		return err
	}

	switch {
	case len(bands) == 1 && !bufType.IsComplex():
		for i := 0; i < win.H; i++ {
			for j := 0; j < win.W; j++ {
				storeReal(dst, i*win.W+j, real(f.at(bands[0], win.X+j, win.Y+i)))
			}
		}
	case len(bands) == 1 && bufType.IsComplex():
		for i := 0; i < win.H; i++ {
			for j := 0; j < win.W; j++ {
				storePair(dst, i*win.W+j, f.at(bands[0], win.X+j, win.Y+i))
			}
		}
	case len(bands) == 2 && bufType.IsComplex():
		for i := 0; i < win.H; i++ {
			for j := 0; j < win.W; j++ {
				re := real(f.at(bands[0], win.X+j, win.Y+i))
				im := real(f.at(bands[1], win.X+j, win.Y+i))
				storePair(dst, i*win.W+j, complex(re, im))
			}
		}
	default:
		return fmt.Errorf("fake image: unsupported read %v as %s", bands, bufType)
	}
	return nil
}

func storeReal(dst interface{}, idx int, v float64) {
	switch d := dst.(type) {
	case []uint8:
		d[idx] = uint8(v)
	case []uint16:
		d[idx] = uint16(v)
	case []int16:
		d[idx] = int16(v)
	case []uint32:
		d[idx] = uint32(v)
	case []int32:
		d[idx] = int32(v)
	case []float32:
		d[idx] = float32(v)
	case []float64:
		d[idx] = v
	}
}

func storePair(dst interface{}, idx int, v complex128) {
	switch d := dst.(type) {
	case []int16:
		d[2*idx] = int16(real(v))
		d[2*idx+1] = int16(imag(v))
	case []int32:
		d[2*idx] = int32(real(v))
		d[2*idx+1] = int32(imag(v))
	case []float32:
		d[2*idx] = float32(real(v))
		d[2*idx+1] = float32(imag(v))
	case []float64:
		d[2*idx] = real(v)
		d[2*idx+1] = imag(v)
	}
}

// Fake image files registered by path; the .tif/.ntf openers dispatch here.
var (
	fakeMu    sync.Mutex
	fakeFiles = map[string]*fakeImage{}
	fakeOnce  sync.Once
)

func fakeOpen(path string) (raster.ImageFile, error) {
	fakeMu.Lock()
	defer fakeMu.Unlock()
	img, ok := fakeFiles[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such test image", path)
	}
	return img, nil
}

func registerFakeImage(t *testing.T, path string, img *fakeImage) {
	t.Helper()
	fakeOnce.Do(func() {
		raster.RegisterOpener(".tif", fakeOpen)
		raster.RegisterOpener(".ntf", fakeOpen)
	})
	fakeMu.Lock()
	fakeFiles[path] = img
	fakeMu.Unlock()
	t.Cleanup(func() {
		fakeMu.Lock()
		delete(fakeFiles, path)
		fakeMu.Unlock()
	})
}

// bundleSpec describes a synthetic product bundle written into a temp dir.
type bundleSpec struct {
	width, height  int
	sampleType     string
	bits           int
	polarizations  string
	productType    string
	entries        int    // numberOfEntries; 0 means 1
	namespace      string // xmlns; default rcmGsProductSchema
	underMetadata  bool   // write product.xml under metadata/
	ipdfs          string // raw ipdf XML
	lutEntries     string // raw lookupTableFileName XML
	noiseEntries   string // raw noiseLevelFileName XML
	incidenceEntry string // raw incidenceAngleFileName XML
	mapProjection  string // raw mapProjection XML
	geolocation    string // raw geolocationGrid / rationalFunctions XML
}

func (s bundleSpec) withDefaults() bundleSpec {
	if s.width == 0 {
		s.width = 4
	}
	if s.height == 0 {
		s.height = 2
	}
	if s.sampleType == "" {
		s.sampleType = "Magnitude Detected"
	}
	if s.bits == 0 {
		s.bits = 16
	}
	if s.polarizations == "" {
		s.polarizations = "HH"
	}
	if s.productType == "" {
		s.productType = "GRD"
	}
	if s.entries == 0 {
		s.entries = 1
	}
	if s.namespace == "" {
		s.namespace = "rcmGsProductSchema"
	}
	if s.ipdfs == "" {
		s.ipdfs = `<ipdf pole="HH">imagery_HH.tif</ipdf>`
	}
	return s
}

// writeBundle materializes the spec and returns the bundle directory.
func writeBundle(t *testing.T, spec bundleSpec) string {
	t.Helper()
	dir := t.TempDir()
	writeBundleInto(t, dir, spec)
	return dir
}

// writeBundleInto materializes the spec inside an existing directory.
func writeBundleInto(t *testing.T, dir string, spec bundleSpec) {
	t.Helper()
	spec = spec.withDefaults()

	productDir := dir
	if spec.underMetadata {
		productDir = filepath.Join(dir, "metadata")
		require.NoError(t, os.MkdirAll(productDir, 0o755))
	}

	doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<product xmlns="%s">
  <productId>RCM1_TEST_0001</productId>
  <sourceAttributes>
    <satellite>RCM-1</satellite>
    <sensor>SAR</sensor>
    <beamModeMnemonic>FSL</beamModeMnemonic>
    <rawDataStartTime>2019-06-21T10:00:00Z</rawDataStartTime>
    <radarParameters>
      <polarizations>%s</polarizations>
    </radarParameters>
    <orbitAndAttitude>
      <orbitInformation>
        <passDirection>Ascending</passDirection>
      </orbitInformation>
    </orbitAndAttitude>
  </sourceAttributes>
  <imageGenerationParameters>
    <generalProcessingInformation>
      <productType>%s</productType>
      <processingFacility>PGF</processingFacility>
      <processingTime>2019-06-21T12:00:00Z</processingTime>
    </generalProcessingInformation>
  </imageGenerationParameters>
  <imageReferenceAttributes>
    <rasterAttributes>
      <sampleType>%s</sampleType>
      <bitsPerSample>%d</bitsPerSample>
      <sampledPixelSpacing>2.5</sampledPixelSpacing>
      <sampledLineSpacing>2.8</sampledLineSpacing>
    </rasterAttributes>
    <geographicInformation>
      <ellipsoidParameters>
        <ellipsoidName>WGS 84</ellipsoidName>
        <semiMajorAxis>6378137</semiMajorAxis>
        <semiMinorAxis>6356752.314245</semiMinorAxis>
      </ellipsoidParameters>
      %s
    </geographicInformation>
    %s
    %s
    %s
    %s
    <lutApplied>Unity</lutApplied>
    <perPolarizationScaling>true</perPolarizationScaling>
  </imageReferenceAttributes>
  <sceneAttributes>
    <numberOfEntries>%d</numberOfEntries>
    <imageAttributes>
      <numLines>%d</numLines>
      <samplesPerLine>%d</samplesPerLine>
      %s
    </imageAttributes>
  </sceneAttributes>
</product>`,
		spec.namespace, spec.polarizations, spec.productType,
		spec.sampleType, spec.bits,
		spec.geolocation, spec.mapProjection,
		spec.lutEntries, spec.noiseEntries, spec.incidenceEntry,
		spec.entries, spec.height, spec.width, spec.ipdfs)

	require.NoError(t, os.WriteFile(filepath.Join(productDir, "product.xml"), []byte(doc), 0o644))
}

// writeCalibFile drops a calibration document next to product.xml.
func writeCalibFile(t *testing.T, bundleDir string, underMetadata bool, name, content string) {
	t.Helper()
	calibDir := filepath.Join(bundleDir, "calibration")
	if underMetadata {
		calibDir = filepath.Join(bundleDir, "metadata", "calibration")
	}
	require.NoError(t, os.MkdirAll(calibDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(calibDir, name), []byte(content), 0o644))
}

// constLUT builds a LUT document with the given gains covering the width.
func constLUT(offset float64, step int, gains ...float64) string {
	vals := make([]string, len(gains))
	for i, g := range gains {
		vals[i] = fmt.Sprintf("%g", g)
	}
	return fmt.Sprintf(`<?xml version="1.0"?>
<lut xmlns="rcmGsProductSchema">
  <offset>%g</offset>
  <pixelFirstLutValue>0</pixelFirstLutValue>
  <stepSize>%d</stepSize>
  <numberOfValues>%d</numberOfValues>
  <gains>%s</gains>
</lut>`, offset, step, len(gains), strings.Join(vals, " "))
}
