package lut

import (
	"encoding/xml"
	"fmt"
	"os"
)

// Calibration type labels used by noise-level documents and by the
// lookupTableFileName selectors in the product descriptor.
const (
	TypeBeta  = "Beta Nought"
	TypeSigma = "Sigma Nought"
	TypeGamma = "Gamma"
)

// noiseDoc mirrors the on-disk noise-level document.
type noiseDoc struct {
	XMLName xml.Name             `xml:"noiseLevels"`
	Levels  []referenceNoiseLevel `xml:"referenceNoiseLevel"`
}

type referenceNoiseLevel struct {
	SarCalibrationType   string    `xml:"sarCalibrationType"`
	PixelFirstNoiseValue int       `xml:"pixelFirstNoiseValue"`
	StepSize             int       `xml:"stepSize"`
	NumberOfValues       int       `xml:"numberOfValues"`
	NoiseLevelValues     floatList `xml:"noiseLevelValues"`
}

// LoadNoise parses a noise-level XML file and densifies the reference level
// whose sarCalibrationType matches calibType (one of TypeBeta, TypeSigma,
// TypeGamma).
//
// Returns (nil, nil) when the document carries no level of the requested
// type: the noise table is optional on a calibrated band.
func LoadNoise(path, calibType string, width int) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read noise levels %s: %w", path, err)
	}

	var doc noiseDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	for _, lvl := range doc.Levels {
		if lvl.SarCalibrationType != calibType {
			continue
		}
		if lvl.NumberOfValues != len(lvl.NoiseLevelValues) {
			return nil, fmt.Errorf("%w: %s: numberOfValues %d does not match %d noise values",
				ErrMalformed, path, lvl.NumberOfValues, len(lvl.NoiseLevelValues))
		}
		values, err := Expand(lvl.NoiseLevelValues, lvl.StepSize, lvl.PixelFirstNoiseValue)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(values) < width {
			return nil, fmt.Errorf("%w: %s: noise table covers %d columns, raster is %d wide",
				ErrBadLUT, path, len(values), width)
		}
		return values, nil
	}
	return nil, nil
}

// incidenceDoc mirrors the on-disk incidence-angle document.
type incidenceDoc struct {
	XMLName              xml.Name  `xml:"incidenceAngles"`
	PixelFirstAnglesValue int      `xml:"pixelFirstAnglesValue"`
	StepSize             int       `xml:"stepSize"`
	NumberOfValues       int       `xml:"numberOfValues"`
	Angles               floatList `xml:"angles"`
}

// LoadIncidenceAngles parses an incidence-angle XML file into a dense
// per-column table of angles in degrees.
func LoadIncidenceAngles(path string, width int) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read incidence angles %s: %w", path, err)
	}

	var doc incidenceDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if doc.NumberOfValues != len(doc.Angles) {
		return nil, fmt.Errorf("%w: %s: numberOfValues %d does not match %d angles",
			ErrMalformed, path, doc.NumberOfValues, len(doc.Angles))
	}

	angles, err := Expand(doc.Angles, doc.StepSize, doc.PixelFirstAnglesValue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(angles) < width {
		return nil, fmt.Errorf("%w: %s: angle table covers %d columns, raster is %d wide",
			ErrBadLUT, path, len(angles), width)
	}
	return angles, nil
}
