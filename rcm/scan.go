package rcm

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/alitto/pond"
)

// ScanOptions configures ScanDirectory.
type ScanOptions struct {
	// Workers is the descriptor-parsing concurrency.
	// Default: runtime.GOMAXPROCS(0).
	Workers int

	// Context cancels an in-flight scan. If nil, a background context is
	// used.
	Context context.Context
}

// ProductSummary describes one discovered RCM bundle without opening its
// image files.
type ProductSummary struct {
	Path          string // resolved product.xml path
	ProductID     string
	ProductType   string
	Width         int
	Height        int
	SampleType    string
	Polarizations []string
}

// ScanResult aggregates a directory sweep.
type ScanResult struct {
	// Products holds one summary per successfully parsed bundle.
	Products []ProductSummary

	// Errors maps descriptor paths that looked like RCM products but
	// failed to parse onto their errors.
	Errors map[string]error
}

// ScanDirectory walks root for RCM product descriptors and parses each on a
// worker pool.
//
// Candidate files are ones named product.xml whose root element carries an
// RCM namespace; other XML files are skipped silently. Parse failures land
// in ScanResult.Errors and do not stop the sweep.
func ScanDirectory(root string, opts ScanOptions) (*ScanResult, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var candidates []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the sweep continues.
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if strings.EqualFold(entry.Name(), productFileName) {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Errors: make(map[string]error)}
	var mu sync.Mutex

	pool := pond.New(opts.Workers, 0, pond.MinWorkers(opts.Workers), pond.Context(ctx))

	for _, candidate := range candidates {
		path := candidate
		pool.Submit(func() {
			if !hasRCMRoot(path) {
				return
			}
			d, err := parseDescriptor(path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[path] = err
				return
			}
			result.Products = append(result.Products, ProductSummary{
				Path:          d.productPath,
				ProductID:     d.doc.ProductID,
				ProductType:   d.doc.ImageGenerationParameters.GeneralProcessingInformation.ProductType,
				Width:         d.width,
				Height:        d.height,
				SampleType:    d.sampleType,
				Polarizations: d.polarizations,
			})
		})
	}

	pool.StopAndWait()
	return result, nil
}
