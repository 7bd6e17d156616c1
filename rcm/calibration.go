package rcm

import (
	"fmt"
	"strings"

	"github.com/codeninja55/go-rcm/rcm/lut"
)

// Calibration selects the radiometric view a dataset exposes.
type Calibration int

const (
	// CalibNone means no subdataset was selected; bands are uncalibrated
	// and the dataset publishes the subdataset list.
	CalibNone Calibration = iota
	// CalibUncalib is the explicitly selected uncalibrated view.
	CalibUncalib
	// CalibSigma0 is the Sigma-Nought backscatter view.
	CalibSigma0
	// CalibBeta0 is the Beta-Nought radar-brightness view.
	CalibBeta0
	// CalibGamma is the Gamma backscatter view.
	CalibGamma
)

// String returns the subdataset tag for the calibration kind.
func (c Calibration) String() string {
	switch c {
	case CalibUncalib:
		return "UNCALIB"
	case CalibSigma0:
		return "SIGMA0"
	case CalibBeta0:
		return "BETA0"
	case CalibGamma:
		return "GAMMA"
	default:
		return ""
	}
}

// Description returns a human-readable label for subdataset metadata.
func (c Calibration) Description() string {
	switch c {
	case CalibUncalib:
		return "Uncalibrated digital numbers"
	case CalibSigma0:
		return "Sigma Nought calibrated"
	case CalibBeta0:
		return "Beta Nought calibrated"
	case CalibGamma:
		return "Gamma calibrated"
	default:
		return ""
	}
}

// lutType returns the sarCalibrationType label used by LUT and noise-level
// documents, or "" for uncalibrated views.
func (c Calibration) lutType() string {
	switch c {
	case CalibSigma0:
		return lut.TypeSigma
	case CalibBeta0:
		return lut.TypeBeta
	case CalibGamma:
		return lut.TypeGamma
	default:
		return ""
	}
}

// isCalibrated reports whether the view applies a LUT at read time.
func (c Calibration) isCalibrated() bool {
	return c == CalibSigma0 || c == CalibBeta0 || c == CalibGamma
}

// ParseCalibration maps a subdataset tag onto a Calibration. Matching is
// case-insensitive and GAMMA0 is accepted as an alias for GAMMA.
func ParseCalibration(tag string) (Calibration, error) {
	switch strings.ToUpper(tag) {
	case "UNCALIB":
		return CalibUncalib, nil
	case "SIGMA0":
		return CalibSigma0, nil
	case "BETA0":
		return CalibBeta0, nil
	case "GAMMA", "GAMMA0":
		return CalibGamma, nil
	default:
		return CalibNone, fmt.Errorf("unknown calibration tag %q", tag)
	}
}
