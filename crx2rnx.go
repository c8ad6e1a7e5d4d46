/*------------------------------------------------------------------------------
* crx2rnx.go : compact rinex to rinex observation
*
* reference :
*     [1] Y.Hatanaka, A Compression Format and Tools for GNSS Observation
*         Data, Bulletin of the Geospatial Information Authority of Japan,
*         55, 21-30, 2008
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Decompressor restores a rinex observation stream from compact rinex. It
// is itself a line source of the restored stream.
type Decompressor struct {
	src     *countSource
	opt     Options
	CrxVer  int    /* crinex major version */
	Prog    string /* CRINEX PROG / DATE program */
	Date    string /* CRINEX PROG / DATE date */
	Header  *ObsHeader
	tracker *Tracker
	queue   []string
	nout    int64
	errHead error /* first header error, sticky */
}

// NewDecompressor returns a decompressor reading compact lines from src.
func NewDecompressor(src LineSource, opt *Options) *Decompressor {
	d := &Decompressor{src: &countSource{src: src}, opt: DefaultOptions()}
	if opt != nil {
		d.opt = *opt
	}
	return d
}

// CrxVersion decodes a CRINEX VERS / TYPE line.
func CrxVersion(buff string) (int, error) {
	if !strings.Contains(substr(buff, 60, 20), CRX_VERSLABEL) ||
		!strings.Contains(substr(buff, 20, 40), CRX_MARKER) {
		return 0, codecErr(ErrFormat, "not a compact rinex file: %q", buff)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(substr(buff, 0, 20)), 64)
	if err != nil {
		return 0, codecErr(ErrFormat, "invalid crinex version: %q", buff)
	}
	switch int(v) {
	case 1, 3:
		return int(v), nil
	}
	return 0, codecErr(ErrFormat, "unsupported crinex version: %.1f", v)
}

// ReadHeader reads the compact rinex header. It is called by the first
// ReadLine if not called before. A failed header is not read again.
func (d *Decompressor) ReadHeader() error {
	if d.Header != nil {
		return nil
	}
	if d.errHead == nil {
		d.errHead = d.readHeader()
	}
	return d.errHead
}

func (d *Decompressor) readHeader() error {
	var (
		buff [2]string
		err  error
	)
	for i := range buff {
		if buff[i], err = d.src.ReadLine(); err != nil {
			if err == io.EOF {
				return codecErr(ErrFormat, "no crinex header")
			}
			return err
		}
	}
	if d.CrxVer, err = CrxVersion(buff[0]); err != nil {
		return locate(err, 0, 1, "", "")
	}
	if !strings.Contains(substr(buff[1], 60, 20), CRX_PROGLABEL) {
		return locate(codecErr(ErrFormat, "no %s: %q", CRX_PROGLABEL, buff[1]), 0, 2, "", "")
	}
	d.Prog = strings.TrimSpace(substr(buff[1], 0, 20))
	d.Date = strings.TrimSpace(substr(buff[1], 40, 20))

	hdr, err := ReadObsHeader(d.src)
	if err != nil {
		return locate(err, 0, d.src.n, "", "")
	}
	if d.CrxVer == 1 && hdr.Layout.Major != 2 || d.CrxVer == 3 && hdr.Layout.Major < 3 {
		return codecErr(ErrFormat, "crinex %d with rinex %.2f", d.CrxVer, hdr.Ver)
	}
	Trace(3, "crx2rnx: crinex=%d rinex=%.2f prog=%s date=%s\n", d.CrxVer, hdr.Ver, d.Prog, d.Date)

	d.Header = hdr
	d.queue = append(d.queue, hdr.Lines...)
	d.tracker = NewTracker(hdr.Layout, &d.opt)
	return nil
}

// ReadLine returns the next line of the restored stream.
func (d *Decompressor) ReadLine() (string, error) {
	if err := d.ReadHeader(); err != nil {
		return "", err
	}
	for len(d.queue) == 0 {
		desc, err := d.src.ReadLine()
		if err != nil {
			return "", err
		}
		lines, err := d.tracker.Decode(desc, d.src.ReadLine)
		if err != nil {
			return "", locate(err, 0, d.src.n, "", "")
		}
		d.queue = lines
	}
	line := d.queue[0]
	d.queue = d.queue[1:]
	d.nout++
	return line, nil
}

// Stat returns the counters of the pass so far.
func (d *Decompressor) Stat() *Stat {
	stat := &Stat{}
	if d.tracker != nil {
		*stat = d.tracker.Stat()
	}
	stat.LinesIn, stat.LinesOut = d.src.n, d.nout
	return stat
}

// Run writes the restored stream to dst.
func (d *Decompressor) Run(ctx context.Context, dst LineSink) (*Stat, error) {
	Tracet(3, "crx2rnx: run\n")

	for {
		if err := ctx.Err(); err != nil {
			return d.Stat(), err
		}
		line, err := d.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d.Stat(), err
		}
		if err = dst.WriteLine(line); err != nil {
			return d.Stat(), errors.Wrap(err, "crx2rnx")
		}
	}
	stat := d.Stat()
	Tracet(3, "crx2rnx: epochs=%d events=%d lines=%d\n", stat.Epochs, stat.Events, stat.LinesOut)
	return stat, dst.Flush()
}
