package rcm

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/codeninja55/go-rcm/raster"
	"github.com/codeninja55/go-rcm/rcm/lut"
)

// GCP is one ground control point tying a raster position to the ellipsoid.
type GCP struct {
	ID    string
	Info  string
	Pixel float64
	Line  float64
	X     float64 // longitude, degrees
	Y     float64 // latitude, degrees
	Z     float64 // height, metres
}

// OpenOptions configures Open behavior.
type OpenOptions struct {
	// Update requests write access. RCM products are read-only, so any
	// open with Update set fails with ErrReadOnly.
	Update bool

	// Logger receives diagnostics (geotransform inconsistency, incomplete
	// ellipsoid information). Defaults to log.Default().
	Logger *log.Logger
}

// Dataset is one opened RCM product bundle.
//
// A Dataset and its bands are not safe for concurrent use; callers may open
// any number of datasets concurrently but must serialize access to each.
type Dataset struct {
	productPath string
	description string
	calibration Calibration

	width, height int
	dataType      raster.DataType
	sampleType    string
	bitsPerSample int
	polarizations []string
	singleNITF    bool

	geotransform [6]float64
	gtValid      bool
	projection   string
	gcpProj      string
	gcps         []GCP

	metadata    map[string]string
	rpc         map[string]string
	subdatasets map[string]string

	incidence []float64
	bands     []*Band

	logger *log.Logger
}

// Open opens an RCM product read-only.
//
// path may be a bundle directory, the path of product.xml itself, or a
// calibration subdataset reference (see ParseSubdatasetName).
func Open(path string) (*Dataset, error) {
	return OpenWith(path, OpenOptions{})
}

// OpenWith opens an RCM product with explicit options.
func OpenWith(path string, opts OpenOptions) (*Dataset, error) {
	if opts.Update {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, path)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	calib := CalibNone
	productPath := path
	if c, p, ok, err := ParseSubdatasetName(path); ok {
		if err != nil {
			return nil, err
		}
		calib, productPath = c, p
	}

	resolved, err := resolveProductPath(productPath)
	if err != nil {
		return nil, err
	}
	d, err := parseDescriptor(resolved)
	if err != nil {
		return nil, err
	}

	if calib.isCalibrated() && !d.calibrationAvailable {
		return nil, fmt.Errorf("%w: product type %q carries no calibration LUTs",
			ErrUnsupported, d.doc.ImageGenerationParameters.GeneralProcessingInformation.ProductType)
	}

	ds := &Dataset{
		productPath:   d.productPath,
		description:   path,
		calibration:   calib,
		width:         d.width,
		height:        d.height,
		dataType:      d.dataType,
		sampleType:    d.sampleType,
		bitsPerSample: d.bitsPerSample,
		polarizations: d.polarizations,
		singleNITF:    d.singleNITF,
		geotransform:  identityGeotransform,
		logger:        logger,
	}

	ds.buildGeoreferencing(d)
	ds.loadIncidenceAngles(d)

	if err := ds.assembleBands(d); err != nil {
		_ = ds.Close()
		return nil, err
	}

	ds.metadata = buildMetadata(d, ds)
	ds.rpc = buildRPC(d)
	if calib == CalibNone {
		ds.subdatasets = buildSubdatasets(d.productPath)
	}

	return ds, nil
}

// buildGeoreferencing derives the CRS strings, geotransform and GCP list.
// Failures here degrade to warnings; the open continues.
func (ds *Dataset) buildGeoreferencing(d *descriptor) {
	geo := d.doc.ImageReferenceAttributes.GeographicInformation

	geogWKT, fellBack := geographicWKT(geo.EllipsoidParameters)
	if fellBack && geo.EllipsoidParameters != (ellipsoidParameters{}) {
		ds.logger.Warn("incomplete ellipsoid information, assuming WGS84",
			"product", ds.productPath, "ellipsoid", geo.EllipsoidParameters.EllipsoidName)
	}
	ds.gcpProj = geogWKT
	ds.projection = geogWKT

	if mp := d.doc.ImageReferenceAttributes.MapProjection; mp != nil {
		if mp.MapProjectionDescriptor != "" {
			ds.projection = projectedWKT(mp.MapProjectionDescriptor, geogWKT)
		}
		if mp.PositioningInformation != nil {
			gt, consistent := geotransform(mp.PositioningInformation, ds.width, ds.height)
			if consistent {
				ds.geotransform = gt
				ds.gtValid = true
			} else {
				ds.logger.Warn("corner coordinates disagree with affine prediction by more than a quarter pixel, geotransform marked invalid",
					"product", ds.productPath)
			}
		}
	}

	for i, tp := range geo.GeolocationGrid.ImageTiePoints {
		ds.gcps = append(ds.gcps, GCP{
			ID:    fmt.Sprintf("%d", i+1),
			Pixel: tp.ImageCoordinate.Pixel,
			Line:  tp.ImageCoordinate.Line,
			X:     tp.GeodeticCoordinate.Longitude,
			Y:     tp.GeodeticCoordinate.Latitude,
			Z:     tp.GeodeticCoordinate.Height,
		})
	}
}

// loadIncidenceAngles densifies the optional incidence-angle table. Best
// effort: problems are logged, never fatal.
func (ds *Dataset) loadIncidenceAngles(d *descriptor) {
	path, ok := d.incidenceFile()
	if !ok {
		return
	}
	angles, err := lut.LoadIncidenceAngles(path, ds.width)
	if err != nil {
		ds.logger.Warn("incidence angle table unusable", "path", path, "error", err)
		return
	}
	ds.incidence = angles
}

// assembleBands opens the underlying image files and constructs one band per
// polarization, raw or calibrated according to the selected view.
func (ds *Dataset) assembleBands(d *descriptor) error {
	for i, pole := range d.polarizations {
		entry, ok := d.imageFileFor(pole)
		if !ok {
			return &SiblingError{
				Path:  filepath.Join(d.dir, "?"),
				Cause: fmt.Errorf("no image file declared for polarization %s", pole),
			}
		}
		imgPath := filepath.Join(d.dir, entry.Name)
		isNITF := strings.EqualFold(filepath.Ext(imgPath), ".ntf")

		f, err := raster.OpenFile(imgPath)
		if err != nil {
			return &SiblingError{Path: imgPath, Cause: err}
		}

		st := f.Structure()
		if st.NBands == 0 {
			_ = f.Close()
			continue
		}

		mapping, err := probeBandMapping(imgPath, d.dataType, f, isNITF)
		if err != nil {
			_ = f.Close()
			return err
		}

		fileBand := 1
		if st.NBands == 4 {
			fileBand = i + 1
		}

		blockW, blockH := st.BlockSizeX, st.BlockSizeY
		if blockW <= 0 || blockW > ds.width {
			blockW = ds.width
		}
		if blockH <= 0 || blockH > ds.height {
			blockH = ds.height
		}

		b := &Band{
			ds:           ds,
			polarization: pole,
			mapping:      mapping,
			isNITF:       isNITF,
			calibration:  ds.calibration,
			file:         f,
			fileBand:     fileBand,
			blockW:       blockW,
			blockH:       blockH,
			origType:     d.dataType,
			dataType:     d.dataType,
		}

		if ds.calibration.isCalibrated() {
			if err := ds.attachCalibration(d, b, pole); err != nil {
				_ = f.Close()
				b.file = nil
				return err
			}
		}

		ds.bands = append(ds.bands, b)
	}

	if len(ds.bands) == 0 {
		return &SiblingError{
			Path:  d.dir,
			Cause: fmt.Errorf("no usable image files for any polarization"),
		}
	}
	return nil
}

// attachCalibration loads the LUT and optional noise table for a calibrated
// band and switches its reported type to the float view.
func (ds *Dataset) attachCalibration(d *descriptor, b *Band, pole string) error {
	calibType := ds.calibration.lutType()

	lutPath, ok := d.lutFileFor(pole, calibType)
	if !ok {
		return &SiblingError{
			Path:  filepath.Join(d.dir, calibrationFolder),
			Cause: fmt.Errorf("no %s lookup table declared for polarization %s", calibType, pole),
		}
	}
	table, err := lut.Load(lutPath, ds.width)
	if err != nil {
		return wrapSibling(lutPath, err)
	}
	b.lut = table

	if noisePath, ok := d.noiseFileFor(pole); ok {
		noise, err := lut.LoadNoise(noisePath, calibType, ds.width)
		if err != nil {
			return wrapSibling(noisePath, err)
		}
		b.noise = noise
	}

	if b.origType.IsComplex() {
		b.dataType = raster.CFloat32
	} else {
		b.dataType = raster.Float32
	}
	return nil
}

// wrapSibling folds file-access failures into the sibling taxonomy while
// letting LUT semantic errors pass through unchanged.
func wrapSibling(path string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &SiblingError{Path: path, Cause: err}
	}
	return err
}

// buildSubdatasets publishes the four calibration views of the bundle.
func buildSubdatasets(productPath string) map[string]string {
	views := []Calibration{CalibUncalib, CalibSigma0, CalibBeta0, CalibGamma}
	md := make(map[string]string, 2*len(views))
	for k, c := range views {
		md[fmt.Sprintf("SUBDATASET_%d_NAME", k+1)] = FormatSubdatasetName(c, productPath)
		md[fmt.Sprintf("SUBDATASET_%d_DESC", k+1)] = fmt.Sprintf("%s view of %s", c.Description(), productPath)
	}
	return md
}

// Width returns the raster width in pixels.
func (ds *Dataset) Width() int { return ds.width }

// Height returns the raster height in pixels.
func (ds *Dataset) Height() int { return ds.height }

// Description returns the string the dataset was opened with: the subdataset
// reference when one was used, the caller's path otherwise.
func (ds *Dataset) Description() string { return ds.description }

// Calibration returns the selected calibration view.
func (ds *Dataset) Calibration() Calibration { return ds.calibration }

// Polarizations returns the ordered polarization list from the descriptor.
func (ds *Dataset) Polarizations() []string { return ds.polarizations }

// Bands returns the dataset's bands in polarization order.
func (ds *Dataset) Bands() []*Band { return ds.bands }

// Band returns the 1-based band, or nil when out of range.
func (ds *Dataset) Band(n int) *Band {
	if n < 1 || n > len(ds.bands) {
		return nil
	}
	return ds.bands[n-1]
}

// GeoTransform returns the affine transform. It fails when the descriptor
// carried no positioning information or its corners were inconsistent.
func (ds *Dataset) GeoTransform() ([6]float64, error) {
	if !ds.gtValid {
		return identityGeotransform, fmt.Errorf("no valid geotransform for %s", ds.productPath)
	}
	return ds.geotransform, nil
}

// Projection returns the dataset CRS as an opaque WKT string.
func (ds *Dataset) Projection() string { return ds.projection }

// GCPs returns the ground control points and their CRS.
func (ds *Dataset) GCPs() ([]GCP, string) { return ds.gcps, ds.gcpProj }

// IncidenceAngles returns the dense per-column incidence angle table, or nil
// when the product carries none.
func (ds *Dataset) IncidenceAngles() []float64 { return ds.incidence }

// Metadata returns the named metadata domain: "" for the root domain,
// "SUBDATASETS" for the subdataset list (empty once a calibration view has
// been selected), "RPC" for rational polynomial coefficients.
func (ds *Dataset) Metadata(domain string) map[string]string {
	switch domain {
	case "":
		return ds.metadata
	case "SUBDATASETS":
		return ds.subdatasets
	case "RPC":
		return ds.rpc
	default:
		return nil
	}
}

// Close releases every band and its underlying image-file handle. Bands are
// destroyed before the dataset; each handle is closed exactly once.
func (ds *Dataset) Close() error {
	var firstErr error
	for _, b := range ds.bands {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	ds.bands = nil
	return firstErr
}
