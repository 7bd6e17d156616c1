package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/codeninja55/go-rcm/rcm"
	"github.com/codeninja55/go-rcm/rcm/lut"
)

// InfoCmd inspects a single RCM product.
type InfoCmd struct {
	Path        string `arg:"" type:"path" help:"Bundle directory, product.xml path, or RCM_CALIB subdataset reference"`
	Calibration string `name:"calibration" short:"c" help:"Open a calibration view: SIGMA0, BETA0, GAMMA, UNCALIB"`
}

// Run executes the info command.
func (c *InfoCmd) Run(logger *log.Logger) error {
	path := c.Path
	if c.Calibration != "" {
		calib, err := rcm.ParseCalibration(c.Calibration)
		if err != nil {
			return err
		}
		path = rcm.FormatSubdatasetName(calib, path)
	}

	logger.Info("opening product", "path", path)
	ds, err := rcm.OpenWith(path, rcm.OpenOptions{Logger: logger})
	if err != nil {
		return err
	}
	defer ds.Close()

	fmt.Printf("%s\n", ds.Description())
	fmt.Printf("  size: %d x %d\n", ds.Width(), ds.Height())
	fmt.Printf("  polarizations: %s\n", strings.Join(ds.Polarizations(), " "))
	if gt, err := ds.GeoTransform(); err == nil {
		fmt.Printf("  geotransform: %v\n", gt)
	}
	fmt.Println()

	for i, b := range ds.Bands() {
		bw, bh := b.BlockSize()
		fmt.Printf("  band %d: %s %s, blocks %dx%d", i+1, b.Polarization(), b.DataType(), bw, bh)
		if t := b.LUT(); t != nil {
			fmt.Printf(", LUT %d gains offset %g", len(t.Gains), t.Offset)
		}
		fmt.Println()
	}
	fmt.Println()

	renderKeyValues("Metadata", ds.Metadata(""))
	renderKeyValues("Subdatasets", ds.Metadata("SUBDATASETS"))
	renderKeyValues("RPC", ds.Metadata("RPC"))
	return nil
}

// ScanCmd sweeps a directory tree for RCM products.
type ScanCmd struct {
	Root    string `arg:"" type:"existingdir" help:"Directory to sweep"`
	Workers int    `name:"workers" short:"w" help:"Parsing concurrency (default: GOMAXPROCS)"`
}

// Run executes the scan command.
func (c *ScanCmd) Run(logger *log.Logger) error {
	logger.Info("scanning", "root", c.Root)

	result, err := rcm.ScanDirectory(c.Root, rcm.ScanOptions{Workers: c.Workers})
	if err != nil {
		return err
	}

	for _, p := range result.Products {
		fmt.Printf("%s\t%s\t%dx%d\t%s\n",
			p.Path, p.ProductType, p.Width, p.Height, strings.Join(p.Polarizations, " "))
	}
	for path, err := range result.Errors {
		logger.Warn("unparseable product", "path", path, "error", err)
	}

	logger.Info("scan complete", "products", len(result.Products), "errors", len(result.Errors))
	return nil
}

// LutCmd dumps a calibration lookup table file.
type LutCmd struct {
	Path  string `arg:"" type:"existingfile" help:"LUT XML file"`
	Width int    `name:"width" default:"1" help:"Raster width the table must cover"`
	Full  bool   `name:"full" help:"Print every gain instead of a summary"`
}

// Run executes the lut command.
func (c *LutCmd) Run(logger *log.Logger) error {
	table, err := lut.Load(c.Path, c.Width)
	if err != nil {
		return err
	}

	fmt.Printf("offset: %g\n", table.Offset)
	fmt.Printf("gains: %d\n", len(table.Gains))
	if c.Full {
		for i, g := range table.Gains {
			fmt.Printf("%d\t%g\n", i, g)
		}
		return nil
	}

	n := len(table.Gains)
	fmt.Printf("first: %g\n", table.Gains[0])
	fmt.Printf("mid: %g\n", table.Gains[n/2])
	fmt.Printf("last: %g\n", table.Gains[n-1])
	return nil
}
