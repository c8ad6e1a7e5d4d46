package gnsscrx

// basic types of the compact rinex codec

const (
	VER_GNSSCRX    = "0.1.0"    /* library version */
	PRGNAME_CRX    = "GNSSCRX"  /* program name written to CRINEX PROG / DATE */
	MAXDIFFORDER   = 5          /* max order of differences */
	MAXOBSTYPE     = 64         /* max number of obs types per system */
	MAXEPOCHSAT    = 999        /* max number of satellites in an epoch */
	OBSWIDTH       = 14         /* obs value width (F14.3) */
	OBSDECIMALS    = 3          /* obs value decimals */
	OBSFIELDWIDTH  = 16         /* obs value + lli + ssi */
	CLKWIDTH_VER2  = 12         /* receiver clock offset width ver.2 (F12.9) */
	CLKDEC_VER2    = 9          /* receiver clock offset decimals ver.2 */
	CLKCOL_VER2    = 68         /* receiver clock offset column ver.2 */
	CLKWIDTH_VER3  = 15         /* receiver clock offset width ver.3 (F15.12) */
	CLKDEC_VER3    = 12         /* receiver clock offset decimals ver.3 */
	CLKCOL_VER3    = 41         /* receiver clock offset column ver.3 */
	SATCOL_VER2    = 32         /* first satellite column of epoch line ver.2 */
	SATPERLINE     = 12         /* satellites per epoch line ver.2 */
	RESCALE_MOD    = 1000000000 /* default rescale modulus (field units) */
	DEF_OBSORDER   = 3          /* default difference order of observables */
	DEF_CLKORDER   = 2          /* default difference order of clock offset */
	CRX_MARKER     = "COMPACT RINEX FORMAT"
	CRX_VERSLABEL  = "CRINEX VERS   / TYPE"
	CRX_PROGLABEL  = "CRINEX PROG / DATE"
	CRX_DATEFORMAT = "02-Jan-06 15:04"
)

/* event flags ---------------------------------------------------------------*/
const (
	EVENT_OK         = 0 /* ok */
	EVENT_POWERFAIL  = 1 /* power failure between previous and current epoch */
	EVENT_MOVING     = 2 /* start moving antenna */
	EVENT_NEWSITE    = 3 /* new site occupation */
	EVENT_HEADER     = 4 /* header information follows */
	EVENT_EXTERNAL   = 5 /* external event */
	EVENT_CYCLESLIP  = 6 /* cycle slip records follow */
	EVENT_MAXSUPPORT = EVENT_EXTERNAL
)

/* type definition -----------------------------------------------------------*/

// FieldKind is the closed set of field interpretations in an observation
// record.
type FieldKind int

const (
	FieldNumeric FieldKind = iota /* decimal fixed-point number */
	FieldText                     /* literal text */
	FieldFlag                     /* single flag character */
)

func (k FieldKind) String() string {
	switch k {
	case FieldNumeric:
		return "numeric"
	case FieldText:
		return "text"
	case FieldFlag:
		return "flag"
	}
	return "unknown"
}

// FieldDef locates one field of a plain record.
type FieldDef struct {
	Kind     FieldKind
	Name     string /* observable code, "LLI", "SSI", "CLOCK", "EPOCH" */
	Col      int    /* column in the record (line-relative) */
	Line     int    /* line of the record (ver.2 wraps) */
	Width    int    /* field width */
	Decimals int    /* decimals of numeric fields */
}

// Obs is one observable slot of a satellite record.
type Obs struct {
	Blank bool  /* no value */
	Val   int64 /* value scaled by 10^OBSDECIMALS */
	LLI   byte  /* loss of lock indicator (' ': none) */
	SSI   byte  /* signal strength indicator (' ': none) */
}

// ObsEpoch is one epoch block of an observation file.
type ObsEpoch struct {
	Flag  int      /* event flag */
	Text  string   /* epoch descriptor text (time, flag and count) */
	Sats  []string /* satellite ids, order significant */
	Clock Obs      /* receiver clock offset (LLI/SSI unused) */
	Data  [][]Obs  /* observables per satellite */
	Lines []string /* special event records (flag 2-5) */
}

// NumRec returns the record count announced by the epoch.
func (epoch *ObsEpoch) NumRec() int {
	if epoch.Flag >= EVENT_MOVING {
		return len(epoch.Lines)
	}
	return len(epoch.Sats)
}

// Stat summarizes one conversion pass.
type Stat struct {
	Input    string `json:"input,omitempty"`
	Output   string `json:"output,omitempty"`
	Version  int    `json:"rinex_version"`
	Epochs   int    `json:"epochs"`
	Events   int    `json:"events"`
	Sats     int    `json:"satellites"`
	LinesIn  int64  `json:"lines_in"`
	LinesOut int64  `json:"lines_out"`
	BytesIn  int64  `json:"bytes_in"`
	BytesOut int64  `json:"bytes_out"`
}
