package rcm

import (
	"fmt"
	"strconv"
	"strings"
)

// wktWGS84 is the geographic coordinate system published for GCPs and for
// products with incomplete ellipsoid information.
const wktWGS84 = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]`

// geographicWKT builds the geographic CRS string from the descriptor's
// ellipsoid parameters, falling back to WGS84 when they are incomplete.
// The second return value reports whether the fallback was taken.
func geographicWKT(ep ellipsoidParameters) (string, bool) {
	if ep.EllipsoidName == "" || ep.SemiMajorAxis <= 0 || ep.SemiMinorAxis <= 0 {
		return wktWGS84, true
	}

	invFlattening := 0.0
	if ep.SemiMajorAxis != ep.SemiMinorAxis {
		invFlattening = ep.SemiMajorAxis / (ep.SemiMajorAxis - ep.SemiMinorAxis)
	}
	return fmt.Sprintf(
		`GEOGCS["%s",DATUM["%s",SPHEROID["%s",%s,%s]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]`,
		ep.EllipsoidName, strings.ReplaceAll(ep.EllipsoidName, " ", "_"), ep.EllipsoidName,
		strconv.FormatFloat(ep.SemiMajorAxis, 'f', -1, 64),
		strconv.FormatFloat(invFlattening, 'f', -1, 64),
	), false
}

// projectedWKT builds an opaque projected CRS string for the named map
// projections a product may carry. Unrecognized descriptors produce a
// skeleton PROJCS so the descriptor text is never lost.
func projectedWKT(descriptor, geogWKT string) string {
	upper := strings.ToUpper(strings.TrimSpace(descriptor))

	switch {
	case strings.HasPrefix(upper, "UTM"):
		zone, south := parseUTMZone(upper)
		if zone > 0 {
			meridian := -183 + 6*zone
			falseNorthing := 0
			if south {
				falseNorthing = 10000000
			}
			return fmt.Sprintf(
				`PROJCS["%s",%s,PROJECTION["Transverse_Mercator"],PARAMETER["latitude_of_origin",0],PARAMETER["central_meridian",%d],PARAMETER["scale_factor",0.9996],PARAMETER["false_easting",500000],PARAMETER["false_northing",%d],UNIT["metre",1]]`,
				descriptor, geogWKT, meridian, falseNorthing)
		}
	case strings.Contains(upper, "ALBERS"):
		return fmt.Sprintf(`PROJCS["%s",%s,PROJECTION["Albers_Conic_Equal_Area"],UNIT["metre",1]]`,
			descriptor, geogWKT)
	case strings.Contains(upper, "LAMBERT"):
		return fmt.Sprintf(`PROJCS["%s",%s,PROJECTION["Lambert_Conformal_Conic_2SP"],UNIT["metre",1]]`,
			descriptor, geogWKT)
	case strings.Contains(upper, "STATE PLANE") || strings.Contains(upper, "STATEPLANE"):
		return fmt.Sprintf(`PROJCS["%s",%s,PROJECTION["Transverse_Mercator"],UNIT["metre",1]]`,
			descriptor, geogWKT)
	}
	return fmt.Sprintf(`PROJCS["%s",%s,UNIT["metre",1]]`, descriptor, geogWKT)
}

// parseUTMZone extracts the zone number and hemisphere from descriptors such
// as "UTM17N" or "UTM 8S".
func parseUTMZone(upper string) (zone int, south bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(upper, "UTM"))
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return 0, false
	}
	switch rest[len(rest)-1] {
	case 'S':
		south = true
		rest = strings.TrimSpace(rest[:len(rest)-1])
	case 'N':
		rest = strings.TrimSpace(rest[:len(rest)-1])
	}
	zone, err := strconv.Atoi(rest)
	if err != nil || zone < 1 || zone > 60 {
		return 0, false
	}
	return zone, south
}
