// Package gdalimg backs the raster.ImageFile interface with GDAL through
// github.com/airbusgeo/godal.
//
// Importing this package registers openers for .tif, .tiff and .ntf files:
//
//	import _ "github.com/codeninja55/go-rcm/raster/gdalimg"
//
// The core driver has no dependency on GDAL; only binaries that want real
// GeoTIFF/NITF decoding pull this package in.
package gdalimg

import (
	"fmt"

	"github.com/airbusgeo/godal"

	"github.com/codeninja55/go-rcm/raster"
)

func init() {
	if err := godal.RegisterRaster(godal.GTiff, godal.DriverName("NITF")); err != nil {
		panic(fmt.Sprintf("gdalimg: raster driver registration failed: %v", err))
	}

	raster.RegisterOpener(".tif", open)
	raster.RegisterOpener(".tiff", open)
	raster.RegisterOpener(".ntf", open)
}

// file adapts a godal dataset to raster.ImageFile.
type file struct {
	ds *godal.Dataset
}

func open(path string) (raster.ImageFile, error) {
	ds, err := godal.Open(path, godal.RasterOnly(), godal.Drivers("GTiff", "NITF"))
	if err != nil {
		return nil, fmt.Errorf("gdal open %s: %w", path, err)
	}
	return &file{ds: ds}, nil
}

func (f *file) Structure() raster.Structure {
	st := f.ds.Structure()
	return raster.Structure{
		SizeX:      st.SizeX,
		SizeY:      st.SizeY,
		BlockSizeX: st.BlockSizeX,
		BlockSizeY: st.BlockSizeY,
		NBands:     st.NBands,
	}
}

func (f *file) BandType(band int) raster.DataType {
	bands := f.ds.Bands()
	if band < 1 || band > len(bands) {
		return raster.Unknown
	}
	return fromGodal(bands[band-1].Structure().DataType)
}

func (f *file) ReadWindow(bands []int, win raster.Window, dst interface{}, bufType raster.DataType) error {
	if err := bufType.CheckBuffer(dst, win.Pixels()); err != nil {
		return err
	}

	switch {
	case len(bands) == 1:
		return f.readSingle(bands[0], win, dst, bufType)
	case len(bands) == 2 && bufType.IsComplex():
		return f.readPair(bands[0], bands[1], win, dst, bufType)
	default:
		return fmt.Errorf("unsupported read: %d source bands into %s", len(bands), bufType)
	}
}

// readSingle reads one native band, converting to bufType.
func (f *file) readSingle(band int, win raster.Window, dst interface{}, bufType raster.DataType) error {
	bnds := f.ds.Bands()
	if band < 1 || band > len(bnds) {
		return fmt.Errorf("band %d out of range (file has %d)", band, len(bnds))
	}
	b := bnds[band-1]

	if !bufType.IsComplex() {
		return b.Read(win.X, win.Y, dst, win.W, win.H)
	}

	// Complex destinations go through a []complex128 scratch: GDAL performs
	// the native-type conversion, the pairs are split here.
	scratch := make([]complex128, win.Pixels())
	if err := b.Read(win.X, win.Y, scratch, win.W, win.H); err != nil {
		return err
	}
	storePairs(dst, scratch)
	return nil
}

// readPair interleaves two real native bands into one complex destination.
func (f *file) readPair(iBand, qBand int, win raster.Window, dst interface{}, bufType raster.DataType) error {
	bnds := f.ds.Bands()
	if iBand < 1 || iBand > len(bnds) || qBand < 1 || qBand > len(bnds) {
		return fmt.Errorf("band pair (%d,%d) out of range (file has %d)", iBand, qBand, len(bnds))
	}

	n := win.Pixels()
	re := make([]float64, n)
	im := make([]float64, n)
	if err := bnds[iBand-1].Read(win.X, win.Y, re, win.W, win.H); err != nil {
		return err
	}
	if err := bnds[qBand-1].Read(win.X, win.Y, im, win.W, win.H); err != nil {
		return err
	}

	scratch := make([]complex128, n)
	for i := range scratch {
		scratch[i] = complex(re[i], im[i])
	}
	storePairs(dst, scratch)
	return nil
}

// storePairs splits complex scratch values into the interleaved component
// layout raster.DataType documents.
func storePairs(dst interface{}, src []complex128) {
	switch d := dst.(type) {
	case []int16:
		for i, c := range src {
			d[2*i] = int16(real(c))
			d[2*i+1] = int16(imag(c))
		}
	case []int32:
		for i, c := range src {
			d[2*i] = int32(real(c))
			d[2*i+1] = int32(imag(c))
		}
	case []float32:
		for i, c := range src {
			d[2*i] = float32(real(c))
			d[2*i+1] = float32(imag(c))
		}
	case []float64:
		for i, c := range src {
			d[2*i] = real(c)
			d[2*i+1] = imag(c)
		}
	}
}

func (f *file) Close() error {
	return f.ds.Close()
}

// fromGodal maps godal element types onto raster.DataType.
func fromGodal(dt godal.DataType) raster.DataType {
	switch dt {
	case godal.Byte:
		return raster.Byte
	case godal.UInt16:
		return raster.UInt16
	case godal.Int16:
		return raster.Int16
	case godal.UInt32:
		return raster.UInt32
	case godal.Int32:
		return raster.Int32
	case godal.Float32:
		return raster.Float32
	case godal.Float64:
		return raster.Float64
	case godal.CInt16:
		return raster.CInt16
	case godal.CInt32:
		return raster.CInt32
	case godal.CFloat32:
		return raster.CFloat32
	case godal.CFloat64:
		return raster.CFloat64
	default:
		return raster.Unknown
	}
}
