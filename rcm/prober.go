package rcm

import "github.com/codeninja55/go-rcm/raster"

// BandMapping classifies how an image file's native bands supply one logical
// RCM band.
type BandMapping int

const (
	// MappingStraight reads one native band at the reported type.
	MappingStraight BandMapping = iota
	// MappingTwoBandComplex pairs two native bands as the I and Q halves
	// of one complex band.
	MappingTwoBandComplex
)

// String implements fmt.Stringer.
func (m BandMapping) String() string {
	if m == MappingTwoBandComplex {
		return "TwoBandComplex"
	}
	return "Straight"
}

// probeBandMapping classifies the mapping between a file's native bands and
// the product's requested element type.
//
// One native band (or four, when a single file packs every polarization) of
// the requested type maps straight through. Two equal real bands whose
// complex pairing is the requested type read as I/Q. Two equal bands that
// are already complex at the requested precision also read as I/Q pairs, a
// quirk of some NITF packings. NITF containers that match no rule fall back
// to a straight read; anything else is rejected.
func probeBandMapping(path string, requested raster.DataType, f raster.ImageFile, isNITF bool) (BandMapping, error) {
	n := f.Structure().NBands

	switch n {
	case 1, 4:
		if f.BandType(1) == requested {
			return MappingStraight, nil
		}
	case 2:
		first, second := f.BandType(1), f.BandType(2)
		if first == second {
			if raster.ComplexType(first) == requested {
				return MappingTwoBandComplex, nil
			}
			if first.IsComplex() && first == requested {
				return MappingTwoBandComplex, nil
			}
		}
	}

	if isNITF {
		return MappingStraight, nil
	}
	return MappingStraight, &BandFileError{Path: path, Requested: requested, NBands: n}
}
