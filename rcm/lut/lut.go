// Package lut loads RCM calibration look-up tables and noise-level tables,
// densifying their sparse per-column samples to cover a full raster width.
//
// Table files live under the product's calibration/ directory and are small
// XML documents: a handful of scalars describing the sampling grid plus a
// whitespace-separated list of values. Expand turns that sparse list into a
// dense column-addressed array; Load and LoadNoise parse the two on-disk
// document shapes.
package lut

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrBadLUT indicates table parameters inconsistent with densification:
	// no values, a zero step, or a densified table narrower than the raster.
	ErrBadLUT = errors.New("bad LUT")

	// ErrDescendingOrigin indicates a descending table (negative step)
	// whose first-pixel origin is not positive.
	ErrDescendingOrigin = errors.New("descending product: first pixel value must be positive")

	// ErrMalformed indicates a table document that cannot be parsed.
	ErrMalformed = errors.New("malformed LUT document")
)

// Table is a dense column-addressed calibration table.
type Table struct {
	// Offset is added to the squared sample before gain division.
	Offset float64
	// Gains holds one gain per absolute raster column.
	Gains []float64
}

// Expand densifies a sparse sample list onto a per-column grid.
//
// raw[k] is the value at column pixelFirst + k*|step|. Columns before
// pixelFirst take the first value, columns between two sample positions are
// linearly interpolated, and columns past the last position take the last
// value. A negative step describes a range-reversed table: the expansion is
// the same procedure applied to the reversed list.
//
// The result has length |step| * len(raw).
func Expand(raw []float64, step, pixelFirst int) ([]float64, error) {
	n := len(raw)
	if n == 0 {
		return nil, fmt.Errorf("%w: no values", ErrBadLUT)
	}
	if step == 0 {
		return nil, fmt.Errorf("%w: zero step size", ErrBadLUT)
	}
	if step < 0 {
		if pixelFirst <= 0 {
			return nil, ErrDescendingOrigin
		}
		reversed := make([]float64, n)
		for i, v := range raw {
			reversed[n-1-i] = v
		}
		raw = reversed
		step = -step
	}

	last := pixelFirst + (n-1)*step
	out := make([]float64, step*n)
	for c := range out {
		switch {
		case c <= pixelFirst:
			out[c] = raw[0]
		case c >= last:
			out[c] = raw[n-1]
		default:
			k := (c - pixelFirst) / step
			frac := float64((c-pixelFirst)%step) / float64(step)
			out[c] = raw[k] + frac*(raw[k+1]-raw[k])
		}
	}
	return out, nil
}

// lutDoc mirrors the on-disk lookup-table document.
type lutDoc struct {
	XMLName            xml.Name  `xml:"lut"`
	Offset             float64   `xml:"offset"`
	PixelFirstLutValue int       `xml:"pixelFirstLutValue"`
	StepSize           int       `xml:"stepSize"`
	NumberOfValues     int       `xml:"numberOfValues"`
	Gains              floatList `xml:"gains"`
}

// Load parses a lookup-table XML file and densifies it.
//
// width is the raster width the table must cover; a densified table shorter
// than width fails with ErrBadLUT.
func Load(path string, width int) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read LUT %s: %w", path, err)
	}

	var doc lutDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if doc.NumberOfValues != len(doc.Gains) {
		return nil, fmt.Errorf("%w: %s: numberOfValues %d does not match %d gains",
			ErrMalformed, path, doc.NumberOfValues, len(doc.Gains))
	}

	gains, err := Expand(doc.Gains, doc.StepSize, doc.PixelFirstLutValue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(gains) < width {
		return nil, fmt.Errorf("%w: %s: table covers %d columns, raster is %d wide",
			ErrBadLUT, path, len(gains), width)
	}

	return &Table{Offset: doc.Offset, Gains: gains}, nil
}

// floatList decodes a whitespace-separated list of floats held in a single
// XML text node.
type floatList []float64

func (f *floatList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	for _, field := range strings.Fields(s) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("value %q: %w", field, err)
		}
		*f = append(*f, v)
	}
	return nil
}
