package rcm

import (
	"strconv"
	"strings"
)

// buildMetadata assembles the root metadata domain from the descriptor and
// the assembled dataset.
func buildMetadata(d *descriptor, ds *Dataset) map[string]string {
	doc := d.doc
	md := make(map[string]string, 24)

	md["PRODUCT_TYPE"] = doc.ImageGenerationParameters.GeneralProcessingInformation.ProductType
	md["PRODUCT_ID"] = doc.ProductID
	md["POLARIZATIONS"] = strings.Join(ds.polarizations, " ")
	md["BEAM_MODE"] = doc.SourceAttributes.BeamModeMnemonic
	md["ACQUISITION_START_TIME"] = doc.SourceAttributes.RawDataStartTime
	md["ORBIT_DIRECTION"] = strings.ToUpper(doc.SourceAttributes.OrbitAndAttitude.OrbitInformation.PassDirection)
	md["SATELLITE_IDENTIFIER"] = doc.SourceAttributes.Satellite
	md["SENSOR_IDENTIFIER"] = doc.SourceAttributes.Sensor
	md["PROCESSING_FACILITY"] = doc.ImageGenerationParameters.GeneralProcessingInformation.ProcessingFacility
	md["PROCESSING_TIME"] = doc.ImageGenerationParameters.GeneralProcessingInformation.ProcessingTime

	ra := doc.ImageReferenceAttributes.RasterAttributes
	md["SAMPLE_TYPE"] = ds.sampleType
	md["DATA_TYPE"] = ds.dataType.String()
	md["BITS_PER_SAMPLE"] = strconv.Itoa(ds.bitsPerSample)
	md["PIXEL_SPACING"] = formatFloat(ra.SampledPixelSpacing)
	md["LINE_SPACING"] = formatFloat(ra.SampledLineSpacing)

	md["LUT_APPLIED"] = doc.ImageReferenceAttributes.LutApplied
	if doc.ImageReferenceAttributes.PerPolarizationScaling {
		md["PER_POLARIZATION_SCALING"] = "TRUE"
	} else {
		md["PER_POLARIZATION_SCALING"] = "FALSE"
	}

	if mp := doc.ImageReferenceAttributes.MapProjection; mp != nil && mp.MapProjectionDescriptor != "" {
		md["MAP_PROJECTION_DESCRIPTOR"] = mp.MapProjectionDescriptor
	}

	if len(ds.incidence) > 0 {
		md["NEAR_RANGE_INCIDENCE_ANGLE"] = formatFloat(ds.incidence[0])
		md["FAR_RANGE_INCIDENCE_ANGLE"] = formatFloat(ds.incidence[len(ds.incidence)-1])
	}

	addLUTMetadata(md, ds)
	return md
}

// addLUTMetadata publishes the per-band LUT description items, suffixed by
// the 1-based band number.
func addLUTMetadata(md map[string]string, ds *Dataset) {
	for i, b := range ds.bands {
		if b.lut == nil {
			continue
		}
		n := strconv.Itoa(i + 1)
		md["LUT_TYPE_"+n] = b.calibration.String()
		md["LUT_SIZE_"+n] = strconv.Itoa(len(b.lut.Gains))
		md["LUT_OFFSET_"+n] = formatFloat(b.lut.Offset)
		md["LUT_GAINS_"+n] = joinGains(b.lut.Gains)
	}
}

// refreshLUTMetadata re-publishes LUT items after a partial-LUT narrowing.
func (ds *Dataset) refreshLUTMetadata() {
	if ds.metadata == nil {
		return
	}
	addLUTMetadata(ds.metadata, ds)
}

// joinGains serializes a dense gain table. The table commonly exceeds 10^4
// entries, so the buffer grows with the gain count rather than using a fixed
// size.
func joinGains(gains []float64) string {
	var sb strings.Builder
	sb.Grow(len(gains) * 16)
	for i, g := range gains {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(formatFloat(g))
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// buildRPC assembles the RPC metadata domain, or nil when the descriptor
// carries no rational functions.
func buildRPC(d *descriptor) map[string]string {
	rf := d.doc.ImageReferenceAttributes.GeographicInformation.RationalFunctions
	if rf == nil {
		return nil
	}
	return map[string]string{
		"ERR_BIAS":       formatFloat(rf.BiasError),
		"ERR_RAND":       formatFloat(rf.RandomError),
		"LINE_OFF":       formatFloat(rf.LineOffset),
		"SAMP_OFF":       formatFloat(rf.PixelOffset),
		"LAT_OFF":        formatFloat(rf.LatitudeOffset),
		"LONG_OFF":       formatFloat(rf.LongitudeOffset),
		"HEIGHT_OFF":     formatFloat(rf.HeightOffset),
		"LINE_SCALE":     formatFloat(rf.LineScale),
		"SAMP_SCALE":     formatFloat(rf.PixelScale),
		"LAT_SCALE":      formatFloat(rf.LatitudeScale),
		"LONG_SCALE":     formatFloat(rf.LongitudeScale),
		"HEIGHT_SCALE":   formatFloat(rf.HeightScale),
		"LINE_NUM_COEFF": rf.LineNumeratorCoefficients.join(),
		"LINE_DEN_COEFF": rf.LineDenominatorCoefficients.join(),
		"SAMP_NUM_COEFF": rf.PixelNumeratorCoefficients.join(),
		"SAMP_DEN_COEFF": rf.PixelDenominatorCoefficients.join(),
	}
}
