package rcm

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/codeninja55/go-rcm/raster"
)

// calibrationFolder is the bundle subdirectory holding LUT, noise-level and
// incidence-angle documents, always sibling to product.xml.
const calibrationFolder = "calibration"

// productFileName is the descriptor file every bundle is rooted at.
const productFileName = "product.xml"

var validate = validator.New()

// descriptor is the semantic view of a parsed product.xml.
type descriptor struct {
	doc *productDoc

	// productPath is the resolved path of product.xml; dir its directory.
	productPath string
	dir         string

	width, height        int
	dataType             raster.DataType
	sampleType           string
	bitsPerSample        int
	polarizations        []string
	singleNITF           bool
	imageFiles           []ipdfEntry
	calibrationAvailable bool
}

// Identify reports whether path names an RCM product: a subdataset
// reference, a directory holding product.xml (directly or under metadata/),
// or a product.xml file whose root element is an rcm-namespaced product.
func Identify(path string) bool {
	if _, p, ok, err := ParseSubdatasetName(path); ok {
		if err != nil {
			return false
		}
		path = p
	}

	resolved, err := resolveProductPath(path)
	if err != nil {
		return false
	}
	return hasRCMRoot(resolved)
}

// resolveProductPath locates product.xml from a directory or file path.
func resolveProductPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotRecognized, path, err)
	}

	if info.IsDir() {
		for _, candidate := range []string{
			filepath.Join(path, productFileName),
			filepath.Join(path, "metadata", productFileName),
		} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("%w: no %s under %s", ErrNotRecognized, productFileName, path)
	}

	if !strings.EqualFold(filepath.Base(path), productFileName) {
		return "", fmt.Errorf("%w: %s is not %s", ErrNotRecognized, path, productFileName)
	}
	return path, nil
}

// hasRCMRoot checks the root element without decoding the whole document.
func hasRCMRoot(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local == "product" &&
				strings.Contains(strings.ToLower(start.Name.Space), "rcm")
		}
	}
}

// parseDescriptor reads and validates product.xml at the resolved path.
func parseDescriptor(resolved string) (*descriptor, error) {
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotRecognized, resolved, err)
	}

	var doc productDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedXML, resolved, err)
	}
	if !strings.Contains(strings.ToLower(doc.XMLName.Space), "rcm") {
		return nil, fmt.Errorf("%w: %s: root namespace %q is not an RCM namespace",
			ErrNotRecognized, resolved, doc.XMLName.Space)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedXML, resolved, err)
	}

	d := &descriptor{
		doc:         &doc,
		productPath: resolved,
		dir:         filepath.Dir(resolved),
	}

	if doc.SceneAttributes.NumberOfEntries != 1 {
		return nil, fmt.Errorf("%w: %d scene entries, only single-beam products are supported",
			ErrBadGeometry, doc.SceneAttributes.NumberOfEntries)
	}
	img := doc.SceneAttributes.ImageAttributes[0]
	if img.SamplesPerLine <= 1 || img.NumLines <= 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadGeometry, img.SamplesPerLine, img.NumLines)
	}
	d.width = img.SamplesPerLine
	d.height = img.NumLines

	ra := doc.ImageReferenceAttributes.RasterAttributes
	d.sampleType = ra.SampleType
	d.bitsPerSample = ra.BitsPerSample
	d.dataType, err = elementType(ra.SampleType, ra.BitsPerSample)
	if err != nil {
		return nil, err
	}

	productType := doc.ImageGenerationParameters.GeneralProcessingInformation.ProductType
	d.calibrationAvailable = calibrationAvailable(productType)

	d.polarizations = strings.Fields(doc.SourceAttributes.RadarParameters.Polarizations)
	if len(d.polarizations) == 0 {
		return nil, fmt.Errorf("%w: %s: empty polarization list", ErrMalformedXML, resolved)
	}

	d.imageFiles = lo.Map(img.Ipdf, func(e ipdfEntry, _ int) ipdfEntry {
		e.Name = normalizePath(strings.TrimSpace(e.Name))
		return e
	})
	d.singleNITF = lo.SomeBy(d.imageFiles, func(e ipdfEntry) bool {
		return strings.EqualFold(filepath.Ext(e.Name), ".ntf")
	})

	return d, nil
}

// elementType maps the descriptor's sample family onto a reported type.
func elementType(sampleType string, bits int) (raster.DataType, error) {
	switch {
	case sampleType == "Complex" && bits == 32:
		return raster.CFloat32, nil
	case sampleType == "Complex" && bits == 16:
		return raster.CInt16, nil
	case sampleType == "Magnitude Detected" && bits == 32:
		return raster.Float32, nil
	case sampleType == "Magnitude Detected" && bits == 16:
		return raster.UInt16, nil
	default:
		return raster.Unknown, fmt.Errorf("%w: sampleType %q with %d bits per sample",
			ErrUnsupported, sampleType, bits)
	}
}

// calibrationAvailable reports whether the product family carries LUTs.
// Unknown, GCD and GCC product types do not.
func calibrationAvailable(productType string) bool {
	if len(productType) < 3 {
		return false
	}
	switch strings.ToUpper(productType[:3]) {
	case "UNK", "GCD", "GCC":
		return false
	default:
		return true
	}
}

// normalizePath rewrites descriptor path separators for the running OS.
func normalizePath(name string) string {
	return filepath.FromSlash(strings.ReplaceAll(name, "\\", "/"))
}

// imageFileFor returns the ipdf entry backing a polarization.
func (d *descriptor) imageFileFor(pole string) (ipdfEntry, bool) {
	if d.singleNITF {
		if len(d.imageFiles) == 0 {
			return ipdfEntry{}, false
		}
		return d.imageFiles[0], true
	}
	return lo.Find(d.imageFiles, func(e ipdfEntry) bool {
		return strings.EqualFold(e.Pole, pole)
	})
}

// lutFileFor returns the calibration LUT path for a polarization and view.
func (d *descriptor) lutFileFor(pole, calibType string) (string, bool) {
	entry, ok := lo.Find(d.doc.ImageReferenceAttributes.LookupTableFiles, func(e lutFileEntry) bool {
		return strings.EqualFold(e.Pole, pole) && e.SarCalibrationType == calibType
	})
	if !ok {
		return "", false
	}
	return filepath.Join(d.dir, calibrationFolder, normalizePath(strings.TrimSpace(entry.Name))), true
}

// noiseFileFor returns the noise-level path for a polarization.
func (d *descriptor) noiseFileFor(pole string) (string, bool) {
	entry, ok := lo.Find(d.doc.ImageReferenceAttributes.NoiseLevelFiles, func(e noiseFileEntry) bool {
		return strings.EqualFold(e.Pole, pole)
	})
	if !ok {
		return "", false
	}
	return filepath.Join(d.dir, calibrationFolder, normalizePath(strings.TrimSpace(entry.Name))), true
}

// incidenceFile returns the incidence-angle path when the descriptor names one.
func (d *descriptor) incidenceFile() (string, bool) {
	name := strings.TrimSpace(d.doc.ImageReferenceAttributes.IncidenceAngleFileName)
	if name == "" {
		return "", false
	}
	return filepath.Join(d.dir, calibrationFolder, normalizePath(name)), true
}
