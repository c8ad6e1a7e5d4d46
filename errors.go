package gnsscrx

import (
	"fmt"

	"github.com/pkg/errors"
)

/* error kinds ---------------------------------------------------------------*/
var (
	ErrFormat           = errors.New("format error")
	ErrDecodeState      = errors.New("no valid difference state")
	ErrOverflow         = errors.New("arithmetic overflow")
	ErrUnsupportedEvent = errors.New("unsupported event")
)

// CodecError locates a codec failure. It unwraps to one of the error kinds
// above.
type CodecError struct {
	Kind  error
	Epoch int    /* epoch index (1-based, 0: header) */
	Line  int64  /* input line number (1-based, 0: unknown) */
	Sat   string /* satellite id */
	Obs   string /* observable or field name */
	Msg   string
}

func (e *CodecError) Error() string {
	s := fmt.Sprintf("%s: epoch=%d", e.Kind, e.Epoch)
	if e.Line > 0 {
		s += fmt.Sprintf(" line=%d", e.Line)
	}
	if e.Sat != "" {
		s += fmt.Sprintf(" sat=%q", e.Sat)
	}
	if e.Obs != "" {
		s += fmt.Sprintf(" obs=%s", e.Obs)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *CodecError) Unwrap() error { return e.Kind }

func codecErr(kind error, format string, v ...interface{}) *CodecError {
	return &CodecError{Kind: kind, Msg: fmt.Sprintf(format, v...)}
}

// locate fills in the position of err if it is a codec error without one.
func locate(err error, epoch int, line int64, sat, obs string) error {
	var ce *CodecError
	if !errors.As(err, &ce) {
		return err
	}
	if ce.Epoch == 0 {
		ce.Epoch = epoch
	}
	if ce.Line == 0 {
		ce.Line = line
	}
	if ce.Sat == "" {
		ce.Sat = sat
	}
	if ce.Obs == "" {
		ce.Obs = obs
	}
	return ce
}
