/*------------------------------------------------------------------------------
* renix.go : rinex observation records
*
* reference :
*     [1] W.Gurtner and L.Estey, RINEX The Receiver Independent Exchange Format
*         Version 2.11, December 10, 2007
*     [2] RINEX The Receiver Independent Exchange Format Version 3.04,
*         International GNSS Service (IGS), RINEX Working Group and Radio
*         Technical Commission for Maritime Services Special Committee 104
*         (RTCM-SC104), November 23, 2018
*
* Only what the compact rinex codec needs is decoded here: the version and
* the observation types of the header, and the fixed-width epoch records.
* Plain lines are handled without trailing blanks.
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"io"
	"strconv"
	"strings"
)

/* observation record layout -------------------------------------------------*/

// Layout describes the fixed-width observation records of one file.
type Layout struct {
	Major         int               /* rinex version major (2,3,4) */
	Types         map[byte][]string /* obs types per system (ver.2: key ' ') */
	LineWidth     int               /* max data line width (0: unlimited) */
	FieldsPerLine int               /* obs fields per data line (0: all on one) */
	slots         map[byte][]FieldDef
}

// NewLayout returns the default layout of rinex version major.
func NewLayout(major int) *Layout {
	l := &Layout{Major: major, Types: make(map[byte][]string)}
	if major <= 2 {
		l.LineWidth, l.FieldsPerLine = 80, 5
	}
	return l
}

// SetTypes replaces the observation types of system sys.
func (l *Layout) SetTypes(sys byte, types []string) {
	if l.Major <= 2 {
		sys = ' '
	}
	l.Types[sys] = types
	l.slots = nil
}

func (l *Layout) sysKey(sat string) byte {
	if l.Major <= 2 {
		return ' '
	}
	return charAt(sat, 0)
}

// ObsTypes returns the observation types of satellite sat.
func (l *Layout) ObsTypes(sat string) ([]string, error) {
	types, ok := l.Types[l.sysKey(sat)]
	if !ok || len(types) == 0 {
		return nil, &CodecError{Kind: ErrFormat, Sat: sat, Msg: "no observation types for system"}
	}
	return types, nil
}

// Slots returns the field table of the data record of satellite sat: one
// numeric field and two flag fields per observable.
func (l *Layout) Slots(sat string) ([]FieldDef, error) {
	key := l.sysKey(sat)
	if defs, ok := l.slots[key]; ok {
		return defs, nil
	}
	types, err := l.ObsTypes(sat)
	if err != nil {
		return nil, err
	}
	defs := make([]FieldDef, 0, 3*len(types))
	for i, t := range types {
		line, col := 0, 3+OBSFIELDWIDTH*i
		if l.FieldsPerLine > 0 {
			line, col = i/l.FieldsPerLine, OBSFIELDWIDTH*(i%l.FieldsPerLine)
		}
		defs = append(defs,
			FieldDef{Kind: FieldNumeric, Name: t, Line: line, Col: col, Width: OBSWIDTH, Decimals: OBSDECIMALS},
			FieldDef{Kind: FieldFlag, Name: t + ".LLI", Line: line, Col: col + OBSWIDTH, Width: 1},
			FieldDef{Kind: FieldFlag, Name: t + ".SSI", Line: line, Col: col + OBSWIDTH + 1, Width: 1})
	}
	if l.slots == nil {
		l.slots = make(map[byte][]FieldDef)
	}
	l.slots[key] = defs
	return defs, nil
}

// EpochDefs returns the field table of an epoch descriptor: the literal
// descriptor text and the receiver clock offset.
func (l *Layout) EpochDefs() (text, clock FieldDef) {
	if l.Major <= 2 {
		return FieldDef{Kind: FieldText, Name: "EPOCH", Width: SATCOL_VER2},
			FieldDef{Kind: FieldNumeric, Name: "CLOCK", Col: CLKCOL_VER2, Width: CLKWIDTH_VER2, Decimals: CLKDEC_VER2}
	}
	return FieldDef{Kind: FieldText, Name: "EPOCH", Width: CLKCOL_VER3},
		FieldDef{Kind: FieldNumeric, Name: "CLOCK", Col: CLKCOL_VER3, Width: CLKWIDTH_VER3, Decimals: CLKDEC_VER3}
}

func (l *Layout) flagCol() int {
	if l.Major <= 2 {
		return 28
	}
	return 31
}

// dataLines returns the number of plain lines of a satellite record.
func (l *Layout) dataLines(ntype int) int {
	if l.FieldsPerLine <= 0 {
		return 1
	}
	if n := (ntype + l.FieldsPerLine - 1) / l.FieldsPerLine; n > 0 {
		return n
	}
	return 1
}

/* observation header --------------------------------------------------------*/

// ObsHeader collects what the codec needs from an observation header.
type ObsHeader struct {
	Ver    float64 /* rinex version */
	Type   byte    /* file type */
	Sys    byte    /* satellite system */
	Layout *Layout
	Lines  []string /* header lines as read */
	End    bool     /* END OF HEADER seen */
	cursys byte     /* system of a continued obs types record */
	ntype  int      /* announced number of types of a continued record */
}

// DecodeLine decodes one header line. It is also used for the header
// records of special events.
func (h *ObsHeader) DecodeLine(buff string) error {
	h.Lines = append(h.Lines, buff)
	if len(buff) <= 60 {
		return nil
	}
	label := buff[60:]

	switch {
	case strings.Contains(label, "RINEX VERSION / TYPE"):
		v, err := strconv.ParseFloat(strings.TrimSpace(substr(buff, 0, 9)), 64)
		if err != nil {
			return codecErr(ErrFormat, "invalid rinex version: %q", buff)
		}
		h.Ver, h.Type, h.Sys = v, charAt(buff, 20), charAt(buff, 40)
		if h.Type != 'O' {
			return codecErr(ErrFormat, "not an observation file: type=%c", h.Type)
		}
		h.Layout = NewLayout(int(v))
	case strings.Contains(label, "# / TYPES OF OBSERV"): /* ver.2 */
		return h.decodeTypes(buff, ' ', 0, 6, 10, 6, 2, 9)
	case strings.Contains(label, "SYS / # / OBS TYPES"): /* ver.3 */
		return h.decodeTypes(buff, charAt(buff, 0), 3, 3, 7, 4, 3, 13)
	case strings.Contains(label, "END OF HEADER"):
		h.End = true
	}
	return nil
}

// decodeTypes decodes an obs types record: number of types at ncol/nlen,
// types at tcol+i*tstep with width twidth, maxn types per line.
func (h *ObsHeader) decodeTypes(buff string, sys byte, ncol, nlen, tcol, tstep, twidth, maxn int) error {
	if h.Layout == nil {
		return codecErr(ErrFormat, "obs types before RINEX VERSION / TYPE")
	}
	str := substr(buff, ncol, nlen)
	if strings.TrimSpace(str) != "" || (sys != ' ' && h.Layout.Major > 2) {
		n, ok := str2int(str)
		if !ok || n <= 0 || n > MAXOBSTYPE {
			return codecErr(ErrFormat, "invalid number of obs types: %q", buff)
		}
		h.cursys, h.ntype = sys, n
		h.Layout.SetTypes(sys, make([]string, 0, n))
	} else if h.ntype == 0 {
		return codecErr(ErrFormat, "obs types continuation without record: %q", buff)
	}
	key := h.cursys
	if h.Layout.Major <= 2 {
		key = ' '
	}
	types := h.Layout.Types[key]
	for i := 0; i < maxn && len(types) < h.ntype; i++ {
		t := strings.TrimSpace(substr(buff, tcol+i*tstep, twidth))
		if t == "" {
			return codecErr(ErrFormat, "missing obs type: %q", buff)
		}
		types = append(types, t)
	}
	h.Layout.SetTypes(h.cursys, types)
	if len(types) >= h.ntype {
		h.ntype = 0
	}
	return nil
}

// ReadObsHeader reads an observation header up to END OF HEADER.
func ReadObsHeader(src LineSource) (*ObsHeader, error) {
	h := &ObsHeader{}
	for !h.End {
		buff, err := src.ReadLine()
		if err == io.EOF {
			return nil, codecErr(ErrFormat, "no END OF HEADER")
		}
		if err != nil {
			return nil, err
		}
		if len(h.Lines) == 0 && !strings.Contains(substr(buff, 60, 20), "RINEX VERSION / TYPE") {
			return nil, codecErr(ErrFormat, "first line is not RINEX VERSION / TYPE: %q", buff)
		}
		if err = h.DecodeLine(buff); err != nil {
			return nil, err
		}
	}
	if h.Layout == nil || len(h.Layout.Types) == 0 {
		return nil, codecErr(ErrFormat, "no observation types in header")
	}
	Trace(4, "readobsh: ver=%.2f types=%d\n", h.Ver, len(h.Layout.Types))
	return h, nil
}

// UpdateTypes applies the obs types records among the header lines of a
// special event to the layout. Other records are ignored.
func (l *Layout) UpdateTypes(lines []string) error {
	h := &ObsHeader{Layout: l}
	for _, buff := range lines {
		label := substr(buff, 60, 20)
		if !strings.Contains(label, "# / TYPES OF OBSERV") && !strings.Contains(label, "SYS / # / OBS TYPES") {
			continue
		}
		if err := h.DecodeLine(buff); err != nil {
			return err
		}
	}
	return nil
}

/* epoch records -------------------------------------------------------------*/

// epochFlag decodes the event flag and record count of a descriptor.
func (l *Layout) epochFlag(buff string) (flag, n int, err error) {
	col := l.flagCol()
	c := charAt(buff, col)
	if c < '0' || c > '9' {
		return 0, 0, codecErr(ErrFormat, "invalid epoch flag: %q", buff)
	}
	flag = int(c - '0')
	n, ok := str2int(substr(buff, col+1, 3))
	if !ok || n < 0 {
		return 0, 0, codecErr(ErrFormat, "invalid record count: %q", buff)
	}
	if flag > EVENT_MAXSUPPORT {
		return flag, n, codecErr(ErrUnsupportedEvent, "event flag %d", flag)
	}
	if flag < EVENT_MOVING && n > MAXEPOCHSAT {
		return 0, 0, codecErr(ErrFormat, "too many satellites: %d", n)
	}
	return flag, n, nil
}

// ReadObsEpoch reads one epoch block of a plain observation stream. It
// returns io.EOF at the end of the stream. A record that does not
// reproduce its input lines exactly is a format error.
func ReadObsEpoch(src LineSource, l *Layout) (*ObsEpoch, error) {
	buff, err := src.ReadLine()
	if err != nil {
		return nil, err
	}
	in := []string{buff}

	if l.Major <= 2 && charAt(buff, 0) != ' ' || l.Major > 2 && charAt(buff, 0) != '>' {
		return nil, codecErr(ErrFormat, "invalid epoch line: %q", buff)
	}
	flag, n, err := l.epochFlag(buff)
	if err != nil {
		return nil, err
	}
	epoch := &ObsEpoch{Flag: flag}

	if flag >= EVENT_MOVING {
		if buff != trimRight(buff) {
			return nil, codecErr(ErrFormat, "non-canonical epoch record: %q", buff)
		}
		epoch.Text = buff
		for i := 0; i < n; i++ {
			if buff, err = readMore(src); err != nil {
				return nil, err
			}
			epoch.Lines = append(epoch.Lines, buff)
		}
		return epoch, nil
	}
	text, clk := l.EpochDefs()
	epoch.Text = padRight(substr(buff, 0, text.Width), text.Width)
	epoch.Clock = Obs{Blank: true, LLI: ' ', SSI: ' '}
	if str := substr(buff, clk.Col, clk.Width); strings.TrimSpace(str) != "" {
		if epoch.Clock.Val, err = ParseFixed(str, clk.Decimals); err != nil {
			return nil, locate(err, 0, 0, "", clk.Name)
		}
		epoch.Clock.Blank = false
	}
	/* satellite list */
	if l.Major <= 2 {
		for i, j := 0, SATCOL_VER2; i < n; i, j = i+1, j+3 {
			if i > 0 && i%SATPERLINE == 0 {
				if buff, err = readMore(src); err != nil {
					return nil, err
				}
				in = append(in, buff)
				j = SATCOL_VER2
			}
			epoch.Sats = append(epoch.Sats, padRight(substr(buff, j, 3), 3))
		}
	}
	/* observation data */
	for i := 0; i < n; i++ {
		var sat string
		if l.Major > 2 {
			if buff, err = src.ReadLine(); err != nil {
				return nil, truncated(err)
			}
			sat = padRight(substr(buff, 0, 3), 3)
			epoch.Sats = append(epoch.Sats, sat)
		} else {
			sat = epoch.Sats[i]
		}
		obs, lines, err := readObsData(src, l, sat, buff)
		if err != nil {
			return nil, err
		}
		in = append(in, lines...)
		epoch.Data = append(epoch.Data, obs)
	}
	out, err := FormatObsEpoch(epoch, l, nil)
	if err != nil {
		return nil, err
	}
	if !equalLines(in, out) {
		return nil, codecErr(ErrFormat, "non-canonical epoch record: %q", in[0])
	}
	return epoch, nil
}

func readMore(src LineSource) (string, error) {
	buff, err := src.ReadLine()
	if err != nil {
		return "", truncated(err)
	}
	return buff, nil
}

func truncated(err error) error {
	if err == io.EOF {
		return codecErr(ErrFormat, "truncated epoch record")
	}
	return err
}

// readObsData reads the data record of satellite sat. For ver.3 the first
// line has already been read into buff.
func readObsData(src LineSource, l *Layout, sat, buff string) ([]Obs, []string, error) {
	var (
		lines []string
		err   error
	)
	defs, err := l.Slots(sat)
	if err != nil {
		return nil, nil, err
	}
	nline := l.dataLines(len(defs) / 3)
	for i := 0; i < nline; i++ {
		if l.Major <= 2 {
			if buff, err = src.ReadLine(); err != nil {
				return nil, nil, truncated(err)
			}
		}
		lines = append(lines, buff)
	}
	obs := make([]Obs, len(defs)/3)
	for i := range obs {
		v, lli, ssi := defs[3*i], defs[3*i+1], defs[3*i+2]
		line := lines[v.Line]
		obs[i].LLI, obs[i].SSI = charAt(line, lli.Col), charAt(line, ssi.Col)
		str := substr(line, v.Col, v.Width)
		if strings.TrimSpace(str) == "" {
			obs[i].Blank = true
			continue
		}
		if obs[i].Val, err = ParseFixed(str, v.Decimals); err != nil {
			return nil, nil, locate(err, 0, 0, sat, v.Name)
		}
	}
	return obs, lines, nil
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// numField renders a numeric field. A value exceeding the field width is
// rescaled if enabled in opt, otherwise it is an overflow error.
func numField(v int64, def FieldDef, opt *Options) (string, error) {
	str, ok := fixedField(v, def.Decimals, def.Width)
	if ok {
		return str, nil
	}
	if opt != nil && opt.Rescale {
		if w, ok := rescale(v, def, opt.RescaleModulus); ok {
			str, _ = fixedField(w, def.Decimals, def.Width)
			Trace(3, "rescale: %s %d -> %d\n", def.Name, v, w)
			return str, nil
		}
	}
	return "", &CodecError{Kind: ErrOverflow, Obs: def.Name,
		Msg: "value " + str + " exceeds field width " + strconv.Itoa(def.Width)}
}

// rescale shifts v by multiples of mod (field units) until it fits the
// field width. This convention is provisional.
func rescale(v int64, def FieldDef, mod int64) (int64, bool) {
	if mod <= 0 || def.Decimals >= len(pow10) {
		return v, false
	}
	step := mod * pow10[def.Decimals]
	if step/pow10[def.Decimals] != mod {
		return v, false
	}
	for i := 0; i < 100; i++ {
		if _, ok := fixedField(v, def.Decimals, def.Width); ok {
			return v, true
		}
		if v > 0 {
			v -= step
		} else {
			v += step
		}
	}
	return v, false
}

// FormatObsEpoch renders an epoch block as plain lines.
func FormatObsEpoch(epoch *ObsEpoch, l *Layout, opt *Options) ([]string, error) {
	var out []string

	if epoch.Flag >= EVENT_MOVING {
		out = append(out, trimRight(epoch.Text))
		return append(out, epoch.Lines...), nil
	}
	text, clk := l.EpochDefs()
	head := []string{padRight(substr(epoch.Text, 0, text.Width), text.Width)}
	if l.Major <= 2 {
		for i, sat := range epoch.Sats {
			if i > 0 && i%SATPERLINE == 0 {
				head = append(head, strings.Repeat(" ", SATCOL_VER2))
			}
			head[len(head)-1] += sat
		}
	}
	if !epoch.Clock.Blank {
		str, err := numField(epoch.Clock.Val, clk, opt)
		if err != nil {
			return nil, err
		}
		head[0] = padRight(head[0], clk.Col) + str
	}
	for _, buff := range head {
		out = append(out, trimRight(buff))
	}

	for i, sat := range epoch.Sats {
		defs, err := l.Slots(sat)
		if err != nil {
			return nil, err
		}
		if i >= len(epoch.Data) || len(epoch.Data[i]) != len(defs)/3 {
			return nil, &CodecError{Kind: ErrFormat, Sat: sat, Msg: "wrong number of observables"}
		}
		lines := make([][]byte, l.dataLines(len(defs)/3))
		if l.Major > 2 {
			lines[0] = append(lines[0], sat...)
		}
		for j, obs := range epoch.Data[i] {
			v := defs[3*j]
			str := strings.Repeat(" ", v.Width)
			if !obs.Blank {
				if str, err = numField(obs.Val, v, opt); err != nil {
					return nil, locate(err, 0, 0, sat, v.Name)
				}
			}
			lines[v.Line] = append(lines[v.Line], str...)
			lines[v.Line] = append(lines[v.Line], flagChar(obs.LLI), flagChar(obs.SSI))
		}
		for _, b := range lines {
			if l.LineWidth > 0 && len(trimRight(string(b))) > l.LineWidth {
				return nil, &CodecError{Kind: ErrFormat, Sat: sat, Msg: "data line exceeds " + strconv.Itoa(l.LineWidth) + " columns"}
			}
			out = append(out, trimRight(string(b)))
		}
	}
	return out, nil
}

func flagChar(c byte) byte {
	if c == 0 {
		return ' '
	}
	return c
}
