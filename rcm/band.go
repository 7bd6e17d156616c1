package rcm

import (
	"fmt"

	"github.com/codeninja55/go-rcm/raster"
	"github.com/codeninja55/go-rcm/rcm/lut"
)

// Band exposes one polarization of the product under the dataset's selected
// calibration view.
//
// Raw bands report the product's native element type. Calibrated bands
// report Float32, or CFloat32 when the source is complex, and retain the
// original type to drive the read formula. Complex buffers follow the
// interleaved-pair convention of raster.DataType; the calibrated value of a
// complex sample lands in the real slot with a zero imaginary part.
type Band struct {
	ds           *Dataset
	polarization string

	dataType raster.DataType // reported to callers
	origType raster.DataType // source element type, drives calibration dispatch
	mapping  BandMapping
	isNITF   bool

	calibration Calibration
	lut         *lut.Table
	noise       []float64

	file     raster.ImageFile
	fileBand int // 1-based source band within file
	blockW   int
	blockH   int
}

// Polarization returns the band's polarization tag, e.g. "HV".
func (b *Band) Polarization() string { return b.polarization }

// DataType returns the element type the band reports to callers.
func (b *Band) DataType() raster.DataType { return b.dataType }

// Calibration returns the band's calibration kind.
func (b *Band) Calibration() Calibration { return b.calibration }

// BlockSize returns the band's native block dimensions.
func (b *Band) BlockSize() (w, h int) { return b.blockW, b.blockH }

// LUT returns the band's calibration table, or nil for raw bands.
func (b *Band) LUT() *lut.Table { return b.lut }

// NoiseLevels returns the dense per-column noise floor, or nil when the
// product declares none for this calibration.
func (b *Band) NoiseLevels() []float64 { return b.noise }

// ReadBlock fills dst with one block of the band at its reported type.
//
// dst must satisfy DataType().CheckBuffer for a full block of pixels. Blocks
// straddling the raster's right or bottom edge read only the covered portion
// and leave the rest of dst zeroed. Reads are stateless: the same block
// always yields the same bytes.
func (b *Band) ReadBlock(blockX, blockY int, dst interface{}) error {
	if b.file == nil {
		return fmt.Errorf("band %s is closed", b.polarization)
	}
	if err := b.dataType.CheckBuffer(dst, b.blockW*b.blockH); err != nil {
		return err
	}

	x0 := blockX * b.blockW
	y0 := blockY * b.blockH
	if blockX < 0 || blockY < 0 || x0 >= b.ds.width || y0 >= b.ds.height {
		return fmt.Errorf("block (%d,%d) outside raster", blockX, blockY)
	}

	reqW := min(b.blockW, b.ds.width-x0)
	reqH := min(b.blockH, b.ds.height-y0)
	if reqW < b.blockW || reqH < b.blockH {
		zeroBuffer(dst)
	}
	win := raster.Window{X: x0, Y: y0, W: reqW, H: reqH}

	var err error
	if b.lut != nil {
		err = b.readCalibrated(win, dst)
	} else {
		err = b.readRaw(win, dst)
	}
	if err != nil {
		return &ReadError{Polarization: b.polarization, BlockX: blockX, BlockY: blockY, Cause: err}
	}
	return nil
}

// readSource issues the underlying read for the band's mapping. For a
// two-band pair outside NITF the I and Q bands interleave into a complex
// buffer; the NITF pair quirk and every straight mapping read the source
// band directly, letting the backend convert to bufType.
func (b *Band) readSource(win raster.Window, dst interface{}, bufType raster.DataType) error {
	if b.mapping == MappingTwoBandComplex && !b.isNITF {
		return b.file.ReadWindow([]int{b.fileBand, b.fileBand + 1}, win, dst, bufType)
	}
	return b.file.ReadWindow([]int{b.fileBand}, win, dst, bufType)
}

// readRaw fills dst with unmodified samples at the reported type.
func (b *Band) readRaw(win raster.Window, dst interface{}) error {
	if win.W == b.blockW && win.H == b.blockH {
		return b.readSource(win, dst, b.dataType)
	}

	scratch, err := raster.MakeBuffer(b.dataType, win.Pixels())
	if err != nil {
		return err
	}
	if err := b.readSource(win, scratch, b.dataType); err != nil {
		return err
	}
	return copyRows(dst, scratch, b.dataType, win.W, win.H, b.blockW)
}

// readCalibrated reads the raw window at the original element type and
// applies the calibration formula per pixel, addressing the LUT by absolute
// raster column.
func (b *Band) readCalibrated(win raster.Window, dst interface{}) error {
	scratch, err := raster.MakeBuffer(b.origType, win.Pixels())
	if err != nil {
		return err
	}
	if err := b.readSource(win, scratch, b.origType); err != nil {
		return err
	}

	out, ok := dst.([]float32)
	if !ok {
		return fmt.Errorf("calibrated band buffer must be []float32, got %T", dst)
	}
	gains := b.lut.Gains
	offset := b.lut.Offset

	if b.origType.IsComplex() {
		for i := 0; i < win.H; i++ {
			for j := 0; j < win.W; j++ {
				g := gainAt(gains, win.X+j)
				re, im := complexSample(scratch, i*win.W+j)
				v := (re*re + im*im) / (g * g)
				out[2*(i*b.blockW+j)] = float32(v)
				out[2*(i*b.blockW+j)+1] = 0
			}
		}
		return nil
	}

	for i := 0; i < win.H; i++ {
		for j := 0; j < win.W; j++ {
			g := gainAt(gains, win.X+j)
			d := realSample(scratch, i*win.W+j)
			out[i*b.blockW+j] = float32((d*d + offset) / g)
		}
	}
	return nil
}

// gainAt addresses the LUT by absolute column, clamping past a narrowed
// table's end.
func gainAt(gains []float64, col int) float64 {
	if col >= len(gains) {
		col = len(gains) - 1
	}
	return gains[col]
}

// complexSample extracts the I/Q pair of pixel idx from an interleaved
// scratch buffer.
func complexSample(scratch interface{}, idx int) (re, im float64) {
	switch s := scratch.(type) {
	case []int16:
		return float64(s[2*idx]), float64(s[2*idx+1])
	case []int32:
		return float64(s[2*idx]), float64(s[2*idx+1])
	case []float32:
		return float64(s[2*idx]), float64(s[2*idx+1])
	case []float64:
		return s[2*idx], s[2*idx+1]
	default:
		panic(fmt.Sprintf("unreachable: complex scratch %T", scratch))
	}
}

// realSample extracts pixel idx from a real scratch buffer.
func realSample(scratch interface{}, idx int) float64 {
	switch s := scratch.(type) {
	case []uint8:
		return float64(s[idx])
	case []uint16:
		return float64(s[idx])
	case []float32:
		return float64(s[idx])
	case []float64:
		return float64(s[idx])
	default:
		panic(fmt.Sprintf("unreachable: real scratch %T", scratch))
	}
}

// SetPartialLUT narrows the band's LUT to width columns starting at offset,
// re-publishing the band's LUT metadata. The on-disk table is untouched.
//
// offset is clamped to 0 and width so that offset+width stays below the
// current table length. Not safe to run concurrently with ReadBlock on the
// same band.
func (b *Band) SetPartialLUT(offset, width int) error {
	if b.lut == nil {
		return fmt.Errorf("band %s has no LUT", b.polarization)
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.lut.Gains)-1 {
		offset = len(b.lut.Gains) - 1
	}
	if width < 1 {
		width = 1
	}
	if offset+width > len(b.lut.Gains)-1 {
		width = len(b.lut.Gains) - 1 - offset
		if width < 1 {
			width = 1
		}
	}

	gains := make([]float64, width)
	copy(gains, b.lut.Gains[offset:offset+width])
	b.lut = &lut.Table{Offset: b.lut.Offset, Gains: gains}

	b.ds.refreshLUTMetadata()
	return nil
}

// Close releases the underlying image-file handle. Idempotent.
func (b *Band) Close() error {
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}

// zeroBuffer clears a read destination before a partial-edge read.
func zeroBuffer(dst interface{}) {
	switch d := dst.(type) {
	case []uint8:
		clear(d)
	case []uint16:
		clear(d)
	case []int16:
		clear(d)
	case []uint32:
		clear(d)
	case []int32:
		clear(d)
	case []float32:
		clear(d)
	case []float64:
		clear(d)
	}
}

// copyRows lays a packed win.W x win.H scratch read into a block-strided
// destination.
func copyRows(dst, src interface{}, dt raster.DataType, reqW, reqH, blockW int) error {
	per := 1
	if dt.IsComplex() {
		per = 2
	}
	switch d := dst.(type) {
	case []uint8:
		return copyRowsT(d, src.([]uint8), per, reqW, reqH, blockW)
	case []uint16:
		return copyRowsT(d, src.([]uint16), per, reqW, reqH, blockW)
	case []int16:
		return copyRowsT(d, src.([]int16), per, reqW, reqH, blockW)
	case []uint32:
		return copyRowsT(d, src.([]uint32), per, reqW, reqH, blockW)
	case []int32:
		return copyRowsT(d, src.([]int32), per, reqW, reqH, blockW)
	case []float32:
		return copyRowsT(d, src.([]float32), per, reqW, reqH, blockW)
	case []float64:
		return copyRowsT(d, src.([]float64), per, reqW, reqH, blockW)
	default:
		return fmt.Errorf("unsupported destination buffer %T", dst)
	}
}

func copyRowsT[T any](dst, src []T, elemsPerPixel, reqW, reqH, blockW int) error {
	for i := 0; i < reqH; i++ {
		copy(dst[i*blockW*elemsPerPixel:(i*blockW+reqW)*elemsPerPixel],
			src[i*reqW*elemsPerPixel:(i+1)*reqW*elemsPerPixel])
	}
	return nil
}
