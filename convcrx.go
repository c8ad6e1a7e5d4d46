/*------------------------------------------------------------------------------
* convcrx.go : compact rinex file conversion
*
*          output file names by input extension (transport compression
*          extensions .gz .zst .br .lz4 .sz are removed first):
*
*              crx2rnx : .crx -> .rnx, .yyd -> .yyo, other -> +.rnx
*              rnx2crx : .rnx -> .crx, .yyo -> .yyd, other -> +.crx
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

/* conversion direction ------------------------------------------------------*/
const (
	CONV_CRX2RNX = 0 /* compact rinex to rinex */
	CONV_RNX2CRX = 1 /* rinex to compact rinex */
)

// replaceExt swaps a crinex/rinex extension, keeping its case.
func replaceExt(path string, dir int) string {
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	from, to, long, longto := byte('d'), byte('o'), ".crx", ".rnx"
	if dir == CONV_RNX2CRX {
		from, to, long, longto = 'o', 'd', ".rnx", ".crx"
	}
	switch {
	case strings.EqualFold(ext, long):
		if ext == strings.ToUpper(ext) {
			return base + strings.ToUpper(longto)
		}
		return base + longto
	case len(ext) == 4 && ext[3] == from:
		return base + ext[:3] + string(to)
	case len(ext) == 4 && ext[3] == from-'a'+'A':
		return base + ext[:3] + string(to-'a'+'A')
	}
	return path + longto
}

// OutPath returns the default output path of infile. The output goes to
// outdir if not empty and gets the transport extension of compress.
func OutPath(infile, outdir, compress string, dir int) string {
	path := replaceExt(StripTransport(infile), dir)
	if outdir != "" {
		path = filepath.Join(outdir, filepath.Base(path))
	}
	if compress != "" {
		path += "." + strings.TrimPrefix(compress, ".")
	}
	return path
}

// ConvertFile converts infile to outfile in direction dir. A partial output
// file is removed on failure.
func ConvertFile(ctx context.Context, infile, outfile string, opt *Options, dir int) (stat *Stat, err error) {
	Trace(3, "convertfile: infile=%s outfile=%s dir=%d\n", infile, outfile, dir)

	src, inc, err := OpenLineSource(infile)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, inc.Close()) }()

	dst, outc, err := CreateLineSink(outfile)
	if err != nil {
		return nil, err
	}
	if dir == CONV_RNX2CRX {
		stat, err = NewCompressor(opt).Run(ctx, src, dst)
	} else {
		stat, err = NewDecompressor(src, opt).Run(ctx, dst)
	}
	err = multierr.Append(err, outc.Close())
	if stat == nil {
		stat = &Stat{}
	}
	stat.Input, stat.Output = infile, outfile
	stat.BytesIn, stat.BytesOut = src.Bytes, dst.Bytes

	if err != nil {
		Trace(2, "convertfile: %s: %v\n", infile, err)
		if StreamType(outfile) == STR_FILE {
			os.Remove(outfile)
		}
		return stat, errors.WithMessage(err, infile)
	}
	return stat, nil
}

// Crx2RnxFile restores a rinex observation file from compact rinex.
func Crx2RnxFile(ctx context.Context, infile, outfile string, opt *Options) (*Stat, error) {
	return ConvertFile(ctx, infile, outfile, opt, CONV_CRX2RNX)
}

// Rnx2CrxFile compresses a rinex observation file to compact rinex.
func Rnx2CrxFile(ctx context.Context, infile, outfile string, opt *Options) (*Stat, error) {
	return ConvertFile(ctx, infile, outfile, opt, CONV_RNX2CRX)
}

// ConvertFiles converts files concurrently, opt.Parallel at a time, to
// their default output paths in outdir. The first failure cancels the
// conversions not yet finished.
func ConvertFiles(ctx context.Context, files []string, outdir string, opt *Options, dir int) ([]*Stat, error) {
	if opt == nil {
		def := DefaultOptions()
		opt = &def
	}
	stats := make([]*Stat, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if opt.Parallel > 0 {
		g.SetLimit(opt.Parallel)
	}
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			var err error
			stats[i], err = ConvertFile(ctx, file, OutPath(file, outdir, opt.Compress, dir), opt, dir)
			return err
		})
	}
	return stats, g.Wait()
}

// WriteStat writes conversion statistics as json.
func WriteStat(w io.Writer, stats []*Stat) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(stats), "write stat")
}
