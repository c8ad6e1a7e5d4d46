/*------------------------------------------------------------------------------
* rnx2crx.go : rinex observation to compact rinex
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Compressor converts a rinex observation stream to compact rinex.
type Compressor struct {
	opt   Options
	Clock clock.Clock /* time of CRINEX PROG / DATE */
}

// NewCompressor returns a compressor with options opt (nil: defaults).
func NewCompressor(opt *Options) *Compressor {
	c := &Compressor{opt: DefaultOptions(), Clock: clock.New()}
	if opt != nil {
		c.opt = *opt
	}
	return c
}

// CrxHeader returns the two lines compact rinex puts in front of the rinex
// header.
func CrxHeader(crxver int, prog string, date string) []string {
	return []string{
		fmt.Sprintf("%-20s%-40s%-20s", fmt.Sprintf("%d.0", crxver), CRX_MARKER, CRX_VERSLABEL),
		fmt.Sprintf("%-20.20s%-20s%-20s%-20s", prog, "", date, CRX_PROGLABEL),
	}
}

// CrxDate returns the CRINEX PROG / DATE date of a calendar date
// (yyyy-mm-dd) and time of day (hh:mm[:ss]) in UTC. A date without time is
// at midnight, a time without date is on the day of now.
func CrxDate(now time.Time, date, tod string) (string, error) {
	t := now.UTC()
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return "", errors.Wrapf(err, "invalid date %q", date)
		}
		t = d
	}
	if tod != "" || date != "" {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	if tod != "" {
		h, err := time.Parse("15:04:05", tod)
		if err != nil {
			if h, err = time.Parse("15:04", tod); err != nil {
				return "", errors.Wrapf(err, "invalid time %q", tod)
			}
		}
		t = t.Add(time.Duration(h.Hour())*time.Hour + time.Duration(h.Minute())*time.Minute +
			time.Duration(h.Second())*time.Second)
	}
	return t.Format(CRX_DATEFORMAT), nil
}

// Run reads a rinex observation stream from src and writes compact rinex
// to dst.
func (c *Compressor) Run(ctx context.Context, src LineSource, dst LineSink) (*Stat, error) {
	in, out := &countSource{src: src}, &countSink{dst: dst}
	stat := &Stat{}

	Tracet(3, "rnx2crx: run\n")

	hdr, err := ReadObsHeader(in)
	if err != nil {
		return stat, locate(err, 0, in.n, "", "")
	}
	crxver := 3
	if hdr.Layout.Major <= 2 {
		crxver = 1
	}
	date := c.opt.Date
	if date == "" {
		date = c.Clock.Now().UTC().Format(CRX_DATEFORMAT)
	}
	for _, buff := range append(CrxHeader(crxver, c.opt.Program, date), hdr.Lines...) {
		if err = out.WriteLine(buff); err != nil {
			return stat, errors.Wrap(err, "rnx2crx")
		}
	}
	tracker := NewTracker(hdr.Layout, &c.opt)

	for {
		if err = ctx.Err(); err != nil {
			break
		}
		var epoch *ObsEpoch
		if epoch, err = ReadObsEpoch(in, hdr.Layout); err != nil {
			if err == io.EOF {
				err = nil
			} else {
				err = locate(err, tracker.Epochs()+1, in.n, "", "")
			}
			break
		}
		lines, err := tracker.Encode(epoch)
		if err != nil {
			return c.stat(tracker, in, out), locate(err, 0, in.n, "", "")
		}
		for _, buff := range lines {
			if err = out.WriteLine(buff); err != nil {
				return c.stat(tracker, in, out), errors.Wrap(err, "rnx2crx")
			}
		}
	}
	stat = c.stat(tracker, in, out)
	if err != nil {
		return stat, err
	}
	Tracet(3, "rnx2crx: epochs=%d events=%d lines=%d\n", stat.Epochs, stat.Events, stat.LinesOut)
	return stat, out.Flush()
}

func (c *Compressor) stat(t *Tracker, in *countSource, out *countSink) *Stat {
	stat := t.Stat()
	stat.LinesIn, stat.LinesOut = in.n, out.n
	return &stat
}
