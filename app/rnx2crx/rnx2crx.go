/*------------------------------------------------------------------------------
* rnx2crx.go : compress rinex observation files to compact rinex
*
*          rnx2crx [option ...] [file ...]
*
*          Without input files the rinex stream is read from stdin and the
*          compact rinex stream is written to stdout.
*-----------------------------------------------------------------------------*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"gnsscrx"
)

const (
	PRGNAME   = "RNX2CRX"
	TRACEFILE = "rnx2crx.trace"
)

func main() {
	app := &cli.App{
		Name:      "rnx2crx",
		Usage:     "compress rinex observation files to compact rinex",
		ArgsUsage: "[file ...]",
		Version:   gnsscrx.VER_GNSSCRX,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "o", Usage: "output file (single input only, - for stdout)"},
			&cli.StringFlag{Name: "d", Usage: "output directory [same as input file]"},
			&cli.StringFlag{Name: "c", Usage: "options file (yaml)"},
			&cli.StringFlag{Name: "compress", Usage: "compress outputs (gz,zst,br,lz4,sz)"},
			&cli.IntFlag{Name: "p", Usage: "files converted in parallel", Value: 4},
			&cli.IntFlag{Name: "e", Usage: "reference epoch interval in epochs [0: off]"},
			&cli.IntFlag{Name: "obsorder", Usage: "difference order of observables", Value: gnsscrx.DEF_OBSORDER},
			&cli.IntFlag{Name: "clkorder", Usage: "difference order of receiver clock", Value: gnsscrx.DEF_CLKORDER},
			&cli.StringFlag{Name: "date", Usage: "CRINEX PROG / DATE date yyyy-mm-dd [today]"},
			&cli.StringFlag{Name: "time", Usage: "CRINEX PROG / DATE time hh:mm[:ss] [now, 00:00 with -date]"},
			&cli.IntFlag{Name: "trace", Usage: "output trace level [off]"},
			&cli.BoolFlag{Name: "stat", Usage: "print conversion statistics as json to stderr"},
		},
		Action: rnx2crx,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", PRGNAME, err)
		os.Exit(1)
	}
}

func rnx2crx(c *cli.Context) error {
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
	if c.IsSet("e") {
		opt.ResetInterval = c.Int("e")
	}
	if c.IsSet("obsorder") {
		opt.ObsOrder = c.Int("obsorder")
	}
	if c.IsSet("clkorder") {
		opt.ClockOrder = c.Int("clkorder")
	}
	if c.IsSet("date") || c.IsSet("time") {
		if opt.Date, err = gnsscrx.CrxDate(time.Now(), c.String("date"), c.String("time")); err != nil {
			return err
		}
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
		stats, err = gnsscrx.ConvertFiles(ctx, files, c.String("d"), &opt, gnsscrx.CONV_RNX2CRX)
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
			outfile = gnsscrx.OutPath(infile, "", opt.Compress, gnsscrx.CONV_RNX2CRX)
		}
	}
	stat, err := gnsscrx.Rnx2CrxFile(ctx, infile, outfile, opt)
	return []*gnsscrx.Stat{stat}, err
}
