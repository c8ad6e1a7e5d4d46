/*------------------------------------------------------------------------------
* crx2rnx.go : restore rinex observation files from compact rinex
*
*          crx2rnx [option ...] [file ...]
*
*          Without input files the compact rinex stream is read from stdin
*          and the restored stream is written to stdout.
*-----------------------------------------------------------------------------*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"gnsscrx"
)

const (
	PRGNAME   = "CRX2RNX"
	TRACEFILE = "crx2rnx.trace"
)

func main() {
	app := &cli.App{
		Name:      "crx2rnx",
		Usage:     "restore rinex observation files from compact rinex",
		ArgsUsage: "[file ...]",
		Version:   gnsscrx.VER_GNSSCRX,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "o", Usage: "output file (single input only, - for stdout)"},
			&cli.StringFlag{Name: "d", Usage: "output directory [same as input file]"},
			&cli.StringFlag{Name: "c", Usage: "options file (yaml)"},
			&cli.StringFlag{Name: "compress", Usage: "compress outputs (gz,zst,br,lz4,sz)"},
			&cli.IntFlag{Name: "p", Usage: "files converted in parallel", Value: 4},
			&cli.BoolFlag{Name: "rescale", Usage: "rescale values exceeding the field width"},
			&cli.IntFlag{Name: "trace", Usage: "output trace level [off]"},
			&cli.BoolFlag{Name: "stat", Usage: "print conversion statistics as json to stderr"},
		},
		Action: crx2rnx,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", PRGNAME, err)
		os.Exit(1)
	}
}

func crx2rnx(c *cli.Context) error {
	var (
		stats []*gnsscrx.Stat
		err   error
	)
	opt := gnsscrx.DefaultOptions()
	if c.IsSet("c") {
		if err = gnsscrx.LoadOpts(c.String("c"), &opt); err != nil {
			return err
		}
	}
	if c.IsSet("compress") {
		opt.Compress = c.String("compress")
	}
	if c.IsSet("p") || !c.IsSet("c") {
		opt.Parallel = c.Int("p")
	}
	if c.IsSet("rescale") {
		opt.Rescale = c.Bool("rescale")
	}
	if c.IsSet("trace") {
		opt.TraceLevel = c.Int("trace")
	}
	if err = opt.Check(); err != nil {
		return err
	}
	if opt.TraceLevel > 0 {
		file := opt.TraceFile
		if file == "" {
			file = TRACEFILE
		}
		gnsscrx.TraceOpen(file)
		gnsscrx.TraceLevel(opt.TraceLevel)
		defer gnsscrx.TraceClose()
	}
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
	defer cancel()

	files := c.Args().Slice()
	switch {
	case len(files) == 0:
		stats, err = convertOne(ctx, "-", c.String("o"), &opt)
	case c.IsSet("o"):
		if len(files) > 1 {
			return errors.New("-o with more than one input file")
		}
		stats, err = convertOne(ctx, files[0], c.String("o"), &opt)
	default:
		stats, err = gnsscrx.ConvertFiles(ctx, files, c.String("d"), &opt, gnsscrx.CONV_CRX2RNX)
	}
	if c.Bool("stat") {
		if e := gnsscrx.WriteStat(os.Stderr, stats); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func convertOne(ctx context.Context, infile, outfile string, opt *gnsscrx.Options) ([]*gnsscrx.Stat, error) {
	if outfile == "" {
		outfile = "-"
		if infile != "-" {
			outfile = gnsscrx.OutPath(infile, "", opt.Compress, gnsscrx.CONV_CRX2RNX)
		}
	}
	stat, err := gnsscrx.Crx2RnxFile(ctx, infile, outfile, opt)
	return []*gnsscrx.Stat{stat}, err
}
