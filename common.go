/*------------------------------------------------------------------------------
* common.go : common functions
*
*          trace output, fixed-point numbers and column access for fixed
*          width records
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	muTrace    sync.Mutex
	logTrace   *zap.SugaredLogger = zap.NewNop().Sugar()
	fileTrace  *lumberjack.Logger
	levelTrace int
	tickTrace  time.Time /* time at traceopen */
)

/* debug trace functions -----------------------------------------------------*/

// TraceOpen starts trace output to file (stdout if file is empty). The file
// is rotated once it grows beyond 64 MB.
func TraceOpen(file string) {
	var ws zapcore.WriteSyncer
	muTrace.Lock()
	defer muTrace.Unlock()

	if fileTrace != nil {
		fileTrace.Close()
		fileTrace = nil
	}
	if len(file) == 0 {
		ws = zapcore.Lock(os.Stdout)
	} else {
		fileTrace = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    64,
			MaxBackups: 3,
		}
		ws = zapcore.AddSync(fileTrace)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), ws, zapcore.DebugLevel)
	logTrace = zap.New(core).Sugar()
	tickTrace = time.Now()
}

// TraceClose stops trace output.
func TraceClose() {
	muTrace.Lock()
	defer muTrace.Unlock()

	logTrace.Sync()
	if fileTrace != nil {
		fileTrace.Close()
		fileTrace = nil
	}
	logTrace = zap.NewNop().Sugar()
}

// TraceLevel sets the trace level (0: off, 1: error ... 5: debug).
func TraceLevel(level int) {
	muTrace.Lock()
	levelTrace = level
	muTrace.Unlock()
}

func tracef(level int, format string, v ...interface{}) {
	muTrace.Lock()
	lg, lv := logTrace, levelTrace
	muTrace.Unlock()

	if level > lv {
		return
	}
	format = strings.TrimRight(format, "\n")
	switch {
	case level <= 1:
		lg.Errorf(format, v...)
	case level == 2:
		lg.Warnf(format, v...)
	case level == 3:
		lg.Infof(format, v...)
	default:
		lg.Debugf(format, v...)
	}
}

// Trace writes a trace message of level. Level 1 messages are errors and
// also go to stderr.
func Trace(level int, format string, v ...interface{}) {
	if level <= 1 {
		fmt.Fprintf(os.Stderr, format, v...)
	}
	tracef(level, format, v...)
}

// Tracet writes a trace message prefixed with the time since TraceOpen.
func Tracet(level int, format string, v ...interface{}) {
	t := time.Since(tickTrace).Seconds()
	tracef(level, "%9.3f: "+format, append([]interface{}{t}, v...)...)
}

/* fixed-point numbers -------------------------------------------------------*/

var pow10 = [...]int64{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000,
	100000000, 1000000000, 10000000000, 100000000000, 1000000000000,
	10000000000000, 100000000000000, 1000000000000000, 10000000000000000,
	100000000000000000, 1000000000000000000}

// ParseFixed converts a decimal string with exactly dec decimals to an
// integer scaled by 10^dec. Leading and trailing blanks are ignored.
func ParseFixed(s string, dec int) (int64, error) {
	var (
		v    int64
		neg  bool
		nint int
	)
	s = strings.TrimSpace(s)
	if dec < 0 || dec >= len(pow10) {
		return 0, codecErr(ErrFormat, "invalid decimals %d", dec)
	}
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	}
	ip, fp := s, ""
	if dec > 0 {
		i := strings.IndexByte(s, '.')
		if i < 0 {
			return 0, codecErr(ErrFormat, "no decimal point: %q", s)
		}
		ip, fp = s[:i], s[i+1:]
		if len(fp) != dec {
			return 0, codecErr(ErrFormat, "expected %d decimals: %q", dec, s)
		}
	}
	if len(ip) == 0 {
		return 0, codecErr(ErrFormat, "no integer part: %q", s)
	}
	for _, c := range ip + fp {
		if c < '0' || c > '9' {
			return 0, codecErr(ErrFormat, "not a number: %q", s)
		}
		if nint++; nint > 18 {
			return 0, codecErr(ErrOverflow, "too many digits: %q", s)
		}
		v = v*10 + int64(c-'0')
	}
	if neg {
		if v == 0 {
			return 0, codecErr(ErrFormat, "negative zero: %q", "-"+s)
		}
		v = -v
	}
	return v, nil
}

// FormatFixed is the inverse of ParseFixed.
func FormatFixed(v int64, dec int) string {
	if v == math.MinInt64 {
		return "NaN"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	if dec <= 0 {
		return fmt.Sprintf("%s%d", sign, v)
	}
	return fmt.Sprintf("%s%d.%0*d", sign, v/pow10[dec], dec, v%pow10[dec])
}

// fixedField formats v right-aligned in width; ok is false if it does not fit.
func fixedField(v int64, dec, width int) (string, bool) {
	s := FormatFixed(v, dec)
	if len(s) > width {
		return s, false
	}
	return strings.Repeat(" ", width-len(s)) + s, true
}

/* checked arithmetic --------------------------------------------------------*/
func addInt64(a, b int64) (int64, error) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, codecErr(ErrOverflow, "%d + %d", a, b)
	}
	return c, nil
}

func subInt64(a, b int64) (int64, error) {
	c := a - b
	if (c < a) != (b > 0) {
		return 0, codecErr(ErrOverflow, "%d - %d", a, b)
	}
	return c, nil
}

/* column access -------------------------------------------------------------*/

// substr returns n characters of s from column i, clipped to the line.
func substr(s string, i, n int) string {
	if i >= len(s) {
		return ""
	}
	if i+n > len(s) {
		return s[i:]
	}
	return s[i : i+n]
}

// charAt returns the character at column i, blank beyond the line.
func charAt(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return ' '
}

// padRight pads s with blanks to n columns.
func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func trimRight(s string) string {
	return strings.TrimRight(s, " ")
}

// str2int parses an integer column, blank is 0.
func str2int(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
