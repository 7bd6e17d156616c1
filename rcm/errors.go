// Package rcm implements a read-only raster driver for RADARSAT Constellation
// Mission (RCM) SAR product bundles rooted at a product.xml descriptor.
//
// A bundle is opened by directory path, by the path of its product.xml, or by
// a calibration subdataset reference of the form
// RCM_CALIB:<SIGMA0|BETA0|GAMMA|UNCALIB>:<path>. Each polarimetric channel is
// exposed as a band; calibrated views apply per-column look-up tables to the
// raw samples at read time.
package rcm

import (
	"errors"
	"fmt"

	"github.com/codeninja55/go-rcm/raster"
)

var (
	// ErrNotRecognized indicates a path that does not name an RCM product.
	ErrNotRecognized = errors.New("not an RCM product")

	// ErrReadOnly indicates the caller requested write access; the driver
	// only opens products read-only.
	ErrReadOnly = errors.New("RCM products are read-only")

	// ErrMalformedXML indicates a descriptor that cannot be parsed or is
	// missing required nodes.
	ErrMalformedXML = errors.New("malformed product descriptor")

	// ErrBadGeometry indicates a degenerate raster extent or a scene entry
	// count other than one.
	ErrBadGeometry = errors.New("bad product geometry")

	// ErrUnsupported indicates a sample-type / bits-per-sample combination
	// or calibration request the driver does not handle.
	ErrUnsupported = errors.New("unsupported product variant")

	// ErrMissingSibling indicates a referenced sibling file (image, LUT,
	// noise table) that cannot be opened.
	ErrMissingSibling = errors.New("missing sibling file")

	// ErrIncompatibleBandFile indicates an image file whose native bands
	// cannot be mapped onto the product's element type.
	ErrIncompatibleBandFile = errors.New("incompatible band file")

	// ErrRead indicates a failed block read from an underlying image file.
	ErrRead = errors.New("block read failed")
)

// SiblingError wraps ErrMissingSibling with the path that failed.
type SiblingError struct {
	Path  string
	Cause error
}

func (e *SiblingError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMissingSibling.Error(), e.Path, e.Cause)
}

func (e *SiblingError) Unwrap() error {
	return ErrMissingSibling
}

// BandFileError wraps ErrIncompatibleBandFile with the probe context.
type BandFileError struct {
	Path      string
	Requested raster.DataType
	NBands    int
}

func (e *BandFileError) Error() string {
	return fmt.Sprintf("%s: %s: %d native bands cannot supply %s",
		ErrIncompatibleBandFile.Error(), e.Path, e.NBands, e.Requested)
}

func (e *BandFileError) Unwrap() error {
	return ErrIncompatibleBandFile
}

// ReadError wraps ErrRead with the block coordinates that failed.
type ReadError struct {
	Polarization   string
	BlockX, BlockY int
	Cause          error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %s block (%d,%d): %v",
		ErrRead.Error(), e.Polarization, e.BlockX, e.BlockY, e.Cause)
}

func (e *ReadError) Unwrap() error {
	return ErrRead
}
