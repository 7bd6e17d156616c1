package rcm

import "math"

// geotransform computes the affine 6-tuple from the four positioning corner
// coordinates, then validates it by predicting the lower-right corner.
//
// Corner coordinates address pixel centers; the returned tuple follows the
// usual outer-edge convention (origin at the outer corner of pixel 0,0). The
// prediction tolerance is one quarter of a pixel on each axis; a corner set
// that disagrees by more is reported as invalid and the caller falls back to
// an identity transform.
func geotransform(pi *positioningInformation, width, height int) (gt [6]float64, consistent bool) {
	ul := pi.UpperLeftCorner.MapCoordinate
	ur := pi.UpperRightCorner.MapCoordinate
	bl := pi.LowerLeftCorner.MapCoordinate
	br := pi.LowerRightCorner.MapCoordinate

	w := float64(width - 1)
	h := float64(height - 1)

	gt[1] = (ur.Easting - ul.Easting) / w
	gt[2] = (bl.Easting - ul.Easting) / h
	gt[4] = (ur.Northing - ul.Northing) / w
	gt[5] = (bl.Northing - ul.Northing) / h
	gt[0] = ul.Easting
	gt[3] = ul.Northing

	// Predict the lower-right pixel center and compare against the
	// descriptor's value.
	predE := gt[0] + w*gt[1] + h*gt[2]
	predN := gt[3] + w*gt[4] + h*gt[5]

	tolE := math.Abs(gt[1]) / 4
	tolN := math.Abs(gt[5]) / 4
	consistent = math.Abs(predE-br.Easting) <= tolE && math.Abs(predN-br.Northing) <= tolN

	// Shift the origin from the first pixel center to the raster's outer
	// corner.
	gt[0] -= gt[1]/2 + gt[2]/2
	gt[3] -= gt[4]/2 + gt[5]/2

	return gt, consistent
}

// identityGeotransform is the placeholder published when positioning
// information is absent or inconsistent.
var identityGeotransform = [6]float64{0, 1, 0, 0, 0, 1}
