/*------------------------------------------------------------------------------
* stream.go : line stream functions
*
* stream path :
*     ""  or "-"                   stdin (read) / stdout (write)
*     serial://port[:brate]        serial port (read/write)
*     file path                    local file, transport compression by
*                                  extension: .gz .zst .br .lz4 .sz
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	serial "github.com/tarm/goserial"
	"go.uber.org/multierr"
)

/* constants -----------------------------------------------------------------*/
const (
	STR_NONE    = 0 /* stream type: none */
	STR_FILE    = 1 /* stream type: file */
	STR_SERIAL  = 2 /* stream type: serial */
	STR_STDIO   = 3 /* stream type: stdin/stdout */
	DEF_BRATE   = 9600
	MAXLINELEN  = 1 << 20 /* max length of a line */
	SERIAL_PREF = "serial://"
)

/* transport compression -----------------------------------------------------*/

// Transport is an outer compression wrapper of a stream.
type Transport struct {
	Ext       string
	NewReader func(io.Reader) (io.ReadCloser, error)
	NewWriter func(io.Writer) (io.WriteCloser, error)
}

var transports = []Transport{
	{".gz",
		func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) },
		func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }},
	{".zst",
		func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		},
		func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }},
	{".br",
		func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(brotli.NewReader(r)), nil },
		func(w io.Writer) (io.WriteCloser, error) { return brotli.NewWriter(w), nil }},
	{".lz4",
		func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(lz4.NewReader(r)), nil },
		func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }},
	{".sz",
		func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(snappy.NewReader(r)), nil },
		func(w io.Writer) (io.WriteCloser, error) { return snappy.NewBufferedWriter(w), nil }},
}

// TransportOf returns the transport wrapper of path by its extension.
func TransportOf(path string) (Transport, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, t := range transports {
		if t.Ext == ext {
			return t, true
		}
	}
	return Transport{}, false
}

// TransportByName returns the transport wrapper named gz, zst, br, lz4 or sz.
func TransportByName(name string) (Transport, bool) {
	return TransportOf("." + strings.TrimPrefix(name, "."))
}

// StripTransport removes a transport extension from path.
func StripTransport(path string) string {
	if t, ok := TransportOf(path); ok {
		return path[:len(path)-len(t.Ext)]
	}
	return path
}

/* line source and sink ------------------------------------------------------*/

// LineSource is an ordered sequence of lines. ReadLine returns io.EOF at
// the end.
type LineSource interface {
	ReadLine() (string, error)
}

// LineSink consumes an ordered sequence of lines.
type LineSink interface {
	WriteLine(line string) error
	Flush() error
}

// LineReader reads lines of a byte stream. Line terminators (LF or CRLF)
// are removed.
type LineReader struct {
	sc    *bufio.Scanner
	Lines int64 /* lines read */
	Bytes int64 /* bytes read from the underlying stream (before transport decompression) */
}

// NewLineReader returns a line source reading r.
func NewLineReader(r io.Reader) *LineReader {
	lr := &LineReader{}
	lr.scan(&countReader{r: r, n: &lr.Bytes})
	return lr
}

func (lr *LineReader) scan(r io.Reader) {
	lr.sc = bufio.NewScanner(r)
	lr.sc.Buffer(make([]byte, 0, 4096), MAXLINELEN)
}

func (lr *LineReader) ReadLine() (string, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return "", errors.Wrap(err, "read line")
		}
		return "", io.EOF
	}
	lr.Lines++
	return strings.TrimSuffix(lr.sc.Text(), "\r"), nil
}

// LineWriter writes lines terminated by LF.
type LineWriter struct {
	wr    *bufio.Writer
	Lines int64 /* lines written */
	Bytes int64 /* bytes written to the underlying stream (after transport compression) */
}

// NewLineWriter returns a line sink writing to w.
func NewLineWriter(w io.Writer) *LineWriter {
	lw := &LineWriter{}
	lw.wr = bufio.NewWriter(&countWriter{w: w, n: &lw.Bytes})
	return lw
}

func (lw *LineWriter) WriteLine(line string) error {
	if _, err := lw.wr.WriteString(line); err != nil {
		return errors.Wrap(err, "write line")
	}
	if err := lw.wr.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "write line")
	}
	lw.Lines++
	return nil
}

func (lw *LineWriter) Flush() error {
	return errors.Wrap(lw.wr.Flush(), "flush")
}

/* byte counters -------------------------------------------------------------*/
type countReader struct {
	r io.Reader
	n *int64
}

func (cr *countReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	*cr.n += int64(n)
	return n, err
}

type countWriter struct {
	w io.Writer
	n *int64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	*cw.n += int64(n)
	return n, err
}

// LineSlice is an in-memory line source and sink.
type LineSlice struct {
	Lines []string
	pos   int
}

func (ls *LineSlice) ReadLine() (string, error) {
	if ls.pos >= len(ls.Lines) {
		return "", io.EOF
	}
	ls.pos++
	return ls.Lines[ls.pos-1], nil
}

func (ls *LineSlice) WriteLine(line string) error {
	ls.Lines = append(ls.Lines, line)
	return nil
}

func (ls *LineSlice) Flush() error { return nil }

// countSource counts the lines read from src.
type countSource struct {
	src LineSource
	n   int64
}

func (cs *countSource) ReadLine() (string, error) {
	line, err := cs.src.ReadLine()
	if err == nil {
		cs.n++
	}
	return line, err
}

// countSink counts the lines written to dst.
type countSink struct {
	dst LineSink
	n   int64
}

func (cs *countSink) WriteLine(line string) error {
	if err := cs.dst.WriteLine(line); err != nil {
		return err
	}
	cs.n++
	return nil
}

func (cs *countSink) Flush() error { return cs.dst.Flush() }

/* stream open/close ---------------------------------------------------------*/

// StreamType returns the stream type of path.
func StreamType(path string) int {
	switch {
	case path == "" || path == "-":
		return STR_STDIO
	case strings.HasPrefix(path, SERIAL_PREF):
		return STR_SERIAL
	}
	return STR_FILE
}

// closers closes a stack of wrappers, innermost last.
type closers []io.Closer

func (cs closers) Close() error {
	var err error
	for i := len(cs) - 1; i >= 0; i-- {
		err = multierr.Append(err, cs[i].Close())
	}
	return err
}

// openSerial opens serial://port[:brate].
func openSerial(path string) (io.ReadWriteCloser, error) {
	port, brate := strings.TrimPrefix(path, SERIAL_PREF), DEF_BRATE
	if i := strings.LastIndexByte(port, ':'); i > 0 {
		n, err := strconv.Atoi(port[i+1:])
		if err != nil || n <= 0 {
			return nil, errors.Errorf("bitrate error: %s", path)
		}
		port, brate = port[:i], n
	}
	if !strings.HasPrefix(port, "/") && !strings.HasPrefix(port, "COM") {
		port = "/dev/" + port
	}
	Tracet(3, "openserial: port=%s brate=%d\n", port, brate)
	s, err := serial.OpenPort(&serial.Config{Name: port, Baud: brate})
	if err != nil {
		return nil, errors.Wrapf(err, "open serial %s", port)
	}
	return s, nil
}

// OpenLineSource opens a stream path for reading. Transport compression
// is removed according to the file extension.
func OpenLineSource(path string) (*LineReader, io.Closer, error) {
	var (
		r  io.Reader
		cs closers
	)
	switch StreamType(path) {
	case STR_STDIO:
		return NewLineReader(os.Stdin), closers{}, nil
	case STR_SERIAL:
		s, err := openSerial(path)
		if err != nil {
			return nil, nil, err
		}
		return NewLineReader(s), closers{s}, nil
	}
	fp, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open input")
	}
	lr := &LineReader{}
	r, cs = &countReader{r: fp, n: &lr.Bytes}, closers{fp}
	if t, ok := TransportOf(path); ok {
		rc, err := t.NewReader(r)
		if err != nil {
			return nil, nil, multierr.Append(errors.Wrapf(err, "open %s stream", t.Ext), cs.Close())
		}
		r, cs = rc, append(cs, rc)
	}
	lr.scan(r)
	Tracet(3, "openlinesource: path=%s\n", path)
	return lr, cs, nil
}

// CreateLineSink creates a stream path for writing. Transport compression
// is added according to the file extension.
func CreateLineSink(path string) (*LineWriter, io.Closer, error) {
	var (
		w  io.Writer
		cs closers
	)
	switch StreamType(path) {
	case STR_STDIO:
		return NewLineWriter(os.Stdout), closers{}, nil
	case STR_SERIAL:
		s, err := openSerial(path)
		if err != nil {
			return nil, nil, err
		}
		return NewLineWriter(s), closers{s}, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "create directory")
		}
	}
	fp, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create output")
	}
	lw := &LineWriter{}
	w, cs = &countWriter{w: fp, n: &lw.Bytes}, closers{fp}
	if t, ok := TransportOf(path); ok {
		wc, err := t.NewWriter(w)
		if err != nil {
			return nil, nil, multierr.Append(errors.Wrapf(err, "create %s stream", t.Ext), cs.Close())
		}
		w, cs = wc, append(cs, wc)
	}
	lw.wr = bufio.NewWriter(w)
	Tracet(3, "createlinesink: path=%s\n", path)
	return lw, cs, nil
}
