/*------------------------------------------------------------------------------
* options.go : conversion options
*
*          options are kept in a yaml file:
*
*              obsorder: 3          # difference order of observables
*              clkorder: 2          # difference order of receiver clock
*              reset: 0             # reference epoch interval (0: off)
*              rescale: false       # rescale values exceeding field width
*              rescalemod: 1000000000
*              program: GNSSCRX     # CRINEX PROG / DATE program name
*              date: ""             # CRINEX PROG / DATE date (dd-Mon-yy hh:mm)
*              compress: ""         # transport compression of outputs
*              parallel: 4          # files converted in parallel
*              trace: 0             # trace level
*              tracefile: ""
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Options controls one conversion pass.
type Options struct {
	ObsOrder       int    `yaml:"obsorder"`   /* difference order of observables */
	ClockOrder     int    `yaml:"clkorder"`   /* difference order of receiver clock offset */
	ResetInterval  int    `yaml:"reset"`      /* epochs between reference epochs (0: none) */
	Rescale        bool   `yaml:"rescale"`    /* rescale values exceeding the field width */
	RescaleModulus int64  `yaml:"rescalemod"` /* rescale modulus (field units) */
	Program        string `yaml:"program"`    /* program name of CRINEX PROG / DATE */
	Date           string `yaml:"date"`       /* date of CRINEX PROG / DATE ("": current time) */
	Compress       string `yaml:"compress"`   /* output transport compression (gz,zst,br,lz4,sz) */
	Parallel       int    `yaml:"parallel"`   /* files converted in parallel */
	TraceLevel     int    `yaml:"trace"`      /* trace level (0: off) */
	TraceFile      string `yaml:"tracefile"`  /* trace file ("": stdout) */
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		ObsOrder:       DEF_OBSORDER,
		ClockOrder:     DEF_CLKORDER,
		RescaleModulus: RESCALE_MOD,
		Program:        PRGNAME_CRX + " " + VER_GNSSCRX,
		Parallel:       4,
	}
}

// Check validates the options.
func (opt *Options) Check() error {
	switch {
	case opt.ObsOrder < 0 || opt.ObsOrder > MAXDIFFORDER:
		return errors.Errorf("obsorder %d out of range 0-%d", opt.ObsOrder, MAXDIFFORDER)
	case opt.ClockOrder < 0 || opt.ClockOrder > MAXDIFFORDER:
		return errors.Errorf("clkorder %d out of range 0-%d", opt.ClockOrder, MAXDIFFORDER)
	case opt.ResetInterval < 0:
		return errors.Errorf("reset interval %d negative", opt.ResetInterval)
	case opt.Rescale && opt.RescaleModulus <= 0:
		return errors.Errorf("rescale modulus %d not positive", opt.RescaleModulus)
	case len(opt.Program) > 20:
		return errors.Errorf("program name longer than 20 characters: %q", opt.Program)
	case opt.Parallel < 0:
		return errors.Errorf("parallel %d negative", opt.Parallel)
	}
	if opt.Date != "" {
		if _, err := time.Parse(CRX_DATEFORMAT, opt.Date); err != nil {
			return errors.Errorf("date not in %q format: %q", CRX_DATEFORMAT, opt.Date)
		}
	}
	if opt.Compress != "" {
		if _, ok := TransportByName(opt.Compress); !ok {
			return errors.Errorf("unknown compression: %q", opt.Compress)
		}
	}
	return nil
}

// LoadOpts reads options from a yaml file. Keys missing in the file keep
// their values in opt.
func LoadOpts(file string, opt *Options) error {
	Trace(3, "loadopts: file=%s\n", file)

	buff, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, "load options")
	}
	if err = yaml.Unmarshal(buff, opt); err != nil {
		return errors.Wrapf(err, "options file %s", file)
	}
	return opt.Check()
}

// SaveOpts writes options to a yaml file.
func SaveOpts(file string, opt *Options) error {
	Trace(3, "saveopts: file=%s\n", file)

	buff, err := yaml.Marshal(opt)
	if err != nil {
		return errors.Wrap(err, "save options")
	}
	return errors.Wrap(os.WriteFile(file, buff, 0o644), "save options")
}
