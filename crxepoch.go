/*------------------------------------------------------------------------------
* crxepoch.go : epoch state tracker of compact rinex
*
*          An epoch block of compact rinex is:
*
*          descriptor : epoch line with the satellite list appended, as a
*                       text diff against the previous descriptor. A
*                       reference descriptor starts with '&' (crinex 1) or
*                       '>' (crinex 3) and resets all states.
*          clock      : receiver clock offset symbol (empty: none)
*          data       : one line per satellite, one symbol per observable
*                       separated by blanks, followed by a blank and the
*                       LLI/SSI string diffed against the previous one of
*                       the satellite.
*
*          A special event (flag 2-5) is a reference descriptor followed by
*          the announced number of lines as is. It resets all states.
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"strings"
)

// satState is the difference state of one satellite.
type satState struct {
	obs   []DiffState /* per observable */
	flags *TextDiff   /* LLI/SSI string */
}

// Tracker holds the state of one conversion pass, either direction. It must
// not be shared between passes.
type Tracker struct {
	layout   *Layout
	opt      Options
	desc     *TextDiff
	clock    DiffState
	sats     map[string]*satState
	nepoch   int /* epoch blocks processed */
	nevent   int /* special events */
	sinceRef int /* epochs since the last reference epoch */
	seen     map[string]struct{}
}

// NewTracker returns a tracker for records of layout l. The layout is
// updated by the obs types records of special events.
func NewTracker(l *Layout, opt *Options) *Tracker {
	t := &Tracker{layout: l, desc: NewTextDiff(0, false), seen: make(map[string]struct{})}
	if opt != nil {
		t.opt = *opt
	} else {
		t.opt = DefaultOptions()
	}
	t.Reset()
	return t
}

// Reset invalidates all states. The next epoch is a reference epoch.
func (t *Tracker) Reset() {
	t.desc.Reset()
	t.clock.Init(t.opt.ClockOrder)
	t.sats = make(map[string]*satState)
	t.sinceRef = 0
}

// Epochs returns the number of epoch blocks processed.
func (t *Tracker) Epochs() int { return t.nepoch }

// Stat returns the counters of the pass.
func (t *Tracker) Stat() Stat {
	return Stat{
		Version: t.layout.Major,
		Epochs:  t.nepoch - t.nevent,
		Events:  t.nevent,
		Sats:    len(t.seen),
	}
}

func (t *Tracker) sat(sat string, ntype int) *satState {
	ss, ok := t.sats[sat]
	if !ok || len(ss.obs) != ntype {
		ss = &satState{obs: make([]DiffState, ntype), flags: NewTextDiff(2*ntype, true)}
		for i := range ss.obs {
			ss.obs[i].Init(t.opt.ObsOrder)
		}
		t.sats[sat] = ss
	}
	t.seen[sat] = struct{}{}
	return ss
}

func (t *Tracker) isReference(desc string) bool {
	if t.layout.Major <= 2 {
		return charAt(desc, 0) == '&'
	}
	return charAt(desc, 0) == '>'
}

func (t *Tracker) event(flag int, lines []string) error {
	t.nevent++
	t.Reset()
	Trace(3, "event: epoch=%d flag=%d lines=%d\n", t.nepoch, flag, len(lines))
	return t.layout.UpdateTypes(lines)
}

/* decompression -------------------------------------------------------------*/

// Decode restores the plain lines of one epoch block from its compact
// descriptor. Further lines of the block are pulled from next. No lines are
// returned unless the whole block is restored.
func (t *Tracker) Decode(desc string, next func() (string, error)) ([]string, error) {
	t.nepoch++
	lines, err := t.decode(desc, next)
	if err != nil {
		return nil, locate(err, t.nepoch, 0, "", "")
	}
	return lines, nil
}

func (t *Tracker) decode(desc string, next func() (string, error)) ([]string, error) {
	var (
		line string
		err  error
	)
	if t.isReference(desc) {
		t.Reset()
		if t.layout.Major <= 2 {
			desc = " " + desc[1:]
		}
		if err = t.desc.Reference(desc); err != nil {
			return nil, err
		}
		line = t.desc.Prev()
	} else if line, err = t.desc.Decode(desc); err != nil {
		return nil, err
	}
	flag, n, err := t.layout.epochFlag(line)
	if err != nil {
		return nil, err
	}
	epoch := &ObsEpoch{Flag: flag}

	if flag >= EVENT_MOVING {
		epoch.Text = line
		for i := 0; i < n; i++ {
			buff, err := next()
			if err != nil {
				return nil, truncated(err)
			}
			epoch.Lines = append(epoch.Lines, buff)
		}
		if err = t.event(flag, epoch.Lines); err != nil {
			return nil, err
		}
		return FormatObsEpoch(epoch, t.layout, &t.opt)
	}
	text, clk := t.layout.EpochDefs()
	if len(line) > text.Width+3*n {
		return nil, codecErr(ErrFormat, "satellite list longer than %d: %q", n, line)
	}
	line = padRight(line, text.Width+3*n)
	epoch.Text = line[:text.Width]
	for i := 0; i < n; i++ {
		epoch.Sats = append(epoch.Sats, line[text.Width+3*i:text.Width+3*i+3])
	}

	/* receiver clock offset */
	buff, err := next()
	if err != nil {
		return nil, truncated(err)
	}
	sym, err := ParseSymbol(strings.TrimSpace(buff))
	if err != nil {
		return nil, locate(err, 0, 0, "", clk.Name)
	}
	epoch.Clock = Obs{Blank: sym.Blank, LLI: ' ', SSI: ' '}
	if !sym.Blank {
		if epoch.Clock.Val, err = t.clock.Decode(sym); err != nil {
			return nil, locate(err, 0, 0, "", clk.Name)
		}
	}

	/* observation data */
	for _, sat := range epoch.Sats {
		buff, err := next()
		if err != nil {
			return nil, truncated(err)
		}
		obs, err := t.decodeSat(sat, buff)
		if err != nil {
			return nil, locate(err, 0, 0, sat, "")
		}
		epoch.Data = append(epoch.Data, obs)
	}
	t.sinceRef++
	return FormatObsEpoch(epoch, t.layout, &t.opt)
}

func (t *Tracker) decodeSat(sat, buff string) ([]Obs, error) {
	defs, err := t.layout.Slots(sat)
	if err != nil {
		return nil, err
	}
	ntype := len(defs) / 3
	ss := t.sat(sat, ntype)

	part := strings.SplitN(buff, " ", ntype+1)
	obs := make([]Obs, ntype)
	for i := range obs {
		str := ""
		if i < len(part) {
			str = part[i]
		}
		sym, err := ParseSymbol(str)
		if err != nil {
			return nil, locate(err, 0, 0, "", defs[3*i].Name)
		}
		if obs[i].Blank = sym.Blank; sym.Blank {
			continue
		}
		if obs[i].Val, err = ss.obs[i].Decode(sym); err != nil {
			return nil, locate(err, 0, 0, "", defs[3*i].Name)
		}
	}
	diff := ""
	if len(part) > ntype {
		diff = part[ntype]
	}
	flags, err := ss.flags.Decode(diff)
	if err != nil {
		return nil, locate(err, 0, 0, "", "LLI/SSI")
	}
	for i := range obs {
		obs[i].LLI, obs[i].SSI = charAt(flags, 2*i), charAt(flags, 2*i+1)
	}
	return obs, nil
}

/* compression ---------------------------------------------------------------*/

// Encode returns the compact lines of one epoch block.
func (t *Tracker) Encode(epoch *ObsEpoch) ([]string, error) {
	t.nepoch++
	lines, err := t.encode(epoch)
	if err != nil {
		return nil, locate(err, t.nepoch, 0, "", "")
	}
	return lines, nil
}

func (t *Tracker) encode(epoch *ObsEpoch) ([]string, error) {
	var text string

	ref := !t.desc.Valid() || epoch.Flag >= EVENT_MOVING ||
		t.opt.ResetInterval > 0 && t.sinceRef >= t.opt.ResetInterval
	if ref {
		t.Reset()
	}
	if epoch.Flag >= EVENT_MOVING {
		text = epoch.Text
	} else {
		def, _ := t.layout.EpochDefs()
		text = padRight(substr(epoch.Text, 0, def.Width), def.Width) + strings.Join(epoch.Sats, "")
	}
	desc, err := t.desc.Encode(text)
	if err != nil {
		return nil, err
	}
	if ref && t.layout.Major <= 2 {
		desc = "&" + substr(desc, 1, len(desc))
	}
	out := []string{desc}

	if epoch.Flag >= EVENT_MOVING {
		out = append(out, epoch.Lines...)
		if err = t.event(epoch.Flag, epoch.Lines); err != nil {
			return nil, err
		}
		return out, nil
	}
	if len(epoch.Data) != len(epoch.Sats) {
		return nil, codecErr(ErrFormat, "%d satellites with %d data records", len(epoch.Sats), len(epoch.Data))
	}

	/* receiver clock offset */
	clock := ""
	if !epoch.Clock.Blank {
		sym, err := t.clock.Encode(epoch.Clock.Val)
		if err != nil {
			return nil, locate(err, 0, 0, "", "CLOCK")
		}
		clock = sym.String()
	}
	out = append(out, clock)

	/* observation data */
	for i, sat := range epoch.Sats {
		buff, err := t.encodeSat(sat, epoch.Data[i])
		if err != nil {
			return nil, locate(err, 0, 0, sat, "")
		}
		out = append(out, buff)
	}
	t.sinceRef++
	return out, nil
}

func (t *Tracker) encodeSat(sat string, obs []Obs) (string, error) {
	defs, err := t.layout.Slots(sat)
	if err != nil {
		return "", err
	}
	ntype := len(defs) / 3
	if len(obs) != ntype {
		return "", codecErr(ErrFormat, "%d observables, %d types", len(obs), ntype)
	}
	ss := t.sat(sat, ntype)

	syms := make([]string, ntype)
	flags := make([]byte, 2*ntype)
	for i, o := range obs {
		flags[2*i], flags[2*i+1] = flagChar(o.LLI), flagChar(o.SSI)
		if o.Blank {
			continue
		}
		sym, err := ss.obs[i].Encode(o.Val)
		if err != nil {
			return "", locate(err, 0, 0, "", defs[3*i].Name)
		}
		syms[i] = sym.String()
	}
	diff, err := ss.flags.Encode(string(flags))
	if err != nil {
		return "", locate(err, 0, 0, "", "LLI/SSI")
	}
	buff := strings.Join(syms, " ")
	if diff == "" {
		return trimRight(buff), nil
	}
	return buff + " " + diff, nil
}
