package rcm

import (
	"fmt"
	"strings"
)

// subdatasetPrefix is the literal leading a calibration subdataset reference.
const subdatasetPrefix = "RCM_CALIB"

// ParseSubdatasetName splits a subdataset reference of the form
// RCM_CALIB:<TAG>:<path-to-product.xml>.
//
// The prefix and tag match case-insensitively. ok is false when name does not
// carry the prefix at all; a recognized prefix with an unknown tag is an
// error.
func ParseSubdatasetName(name string) (calib Calibration, path string, ok bool, err error) {
	parts := strings.SplitN(name, ":", 3)
	if len(parts) < 1 || !strings.EqualFold(parts[0], subdatasetPrefix) {
		return CalibNone, "", false, nil
	}
	if len(parts) != 3 || parts[2] == "" {
		return CalibNone, "", true, fmt.Errorf("%w: subdataset reference %q needs the form %s:<TAG>:<path>",
			ErrNotRecognized, name, subdatasetPrefix)
	}

	calib, err = ParseCalibration(parts[1])
	if err != nil {
		return CalibNone, "", true, fmt.Errorf("%w: %v", ErrNotRecognized, err)
	}
	return calib, parts[2], true, nil
}

// FormatSubdatasetName builds the subdataset reference for a calibration view
// of the product descriptor at path.
func FormatSubdatasetName(c Calibration, path string) string {
	return fmt.Sprintf("%s:%s:%s", subdatasetPrefix, c, path)
}
