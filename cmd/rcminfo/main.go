// Command rcminfo inspects RADARSAT Constellation Mission product bundles:
// metadata, calibration subdatasets, LUT summaries, and directory sweeps.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	_ "github.com/codeninja55/go-rcm/raster/gdalimg"
)

const (
	appName        = "rcminfo"
	appDescription = "RCM SAR product inspection CLI for go-rcm"
)

// CLI is the root command structure.
type CLI struct {
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log verbosity"`
	NoBanner bool   `name:"no-banner" help:"Suppress the ASCII banner"`

	Info InfoCmd `cmd:"" name:"info" help:"Inspect one RCM product"`
	Scan ScanCmd `cmd:"" name:"scan" help:"Sweep a directory tree for RCM products"`
	Lut  LutCmd  `cmd:"" name:"lut" help:"Dump a calibration lookup table file"`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logger := setupLogger(cli.LogLevel)
	if !cli.NoBanner {
		printBanner()
	}

	if err := ctx.Run(logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger configures the global logger.
func setupLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	log.SetDefault(logger)
	return logger
}
