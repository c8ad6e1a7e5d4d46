/*------------------------------------------------------------------------------
* crxtext.go : text difference codec of compact rinex
*
* A line is compared column by column with the previous line of the same
* role: an unchanged character becomes a blank, a character changed to a
* blank becomes '&' and any other change is written as is. Trailing blanks
* of the diff are dropped, so a short diff copies the rest of the previous
* line.
*-----------------------------------------------------------------------------*/
package gnsscrx

import "strings"

// DiffText returns the diff of cur against prev. cur must not contain '&'.
func DiffText(cur, prev string) string {
	n := len(cur)
	if len(prev) > n {
		n = len(prev)
	}
	buff := make([]byte, n)
	for i := 0; i < n; i++ {
		c, p := charAt(cur, i), charAt(prev, i)
		switch {
		case c == p:
			buff[i] = ' '
		case c == ' ':
			buff[i] = '&'
		default:
			buff[i] = c
		}
	}
	return trimRight(string(buff))
}

// PatchText applies diff to prev. The result has no trailing blanks.
func PatchText(diff, prev string) string {
	n := len(diff)
	if len(prev) > n {
		n = len(prev)
	}
	buff := []byte(padRight(prev, n))
	for i := 0; i < len(diff); i++ {
		switch diff[i] {
		case ' ':
		case '&':
			buff[i] = ' '
		default:
			buff[i] = diff[i]
		}
	}
	return trimRight(string(buff))
}

// TextDiff holds the last reconstructed line of one role.
type TextDiff struct {
	prev     string
	valid    bool
	width    int  /* max line width (0: unlimited) */
	blankRef bool /* a reset leaves an empty reference instead of none */
}

// NewTextDiff returns a codec for lines of at most width columns. With
// blankRef the first line is diffed against an empty line, otherwise it
// must be a verbatim reference.
func NewTextDiff(width int, blankRef bool) *TextDiff {
	t := &TextDiff{width: width, blankRef: blankRef}
	t.Reset()
	return t
}

// Reset drops the reference line.
func (t *TextDiff) Reset() {
	t.prev = ""
	t.valid = t.blankRef
}

// Valid reports whether a reference line is present.
func (t *TextDiff) Valid() bool { return t.valid }

// Prev returns the reference line.
func (t *TextDiff) Prev() string { return t.prev }

func (t *TextDiff) check(line string) error {
	if t.width > 0 && len(line) > t.width {
		return codecErr(ErrFormat, "line exceeds %d columns: %q", t.width, line)
	}
	return nil
}

// Reference sets a verbatim line as the new reference.
func (t *TextDiff) Reference(line string) error {
	line = trimRight(line)
	if err := t.check(line); err != nil {
		return err
	}
	t.prev, t.valid = line, true
	return nil
}

// Encode returns the diff of line against the reference and makes line the
// new reference. Without a reference line is returned verbatim.
func (t *TextDiff) Encode(line string) (string, error) {
	line = trimRight(line)
	if strings.IndexByte(line, '&') >= 0 {
		return "", codecErr(ErrFormat, "'&' in text field: %q", line)
	}
	if err := t.check(line); err != nil {
		return "", err
	}
	if !t.valid {
		t.prev, t.valid = line, true
		return line, nil
	}
	diff := DiffText(line, t.prev)
	t.prev = line
	return diff, nil
}

// Decode applies diff to the reference line. A diff without reference is a
// format error.
func (t *TextDiff) Decode(diff string) (string, error) {
	if !t.valid {
		return "", codecErr(ErrFormat, "diff without reference line: %q", diff)
	}
	line := PatchText(diff, t.prev)
	if err := t.check(line); err != nil {
		return "", err
	}
	t.prev = line
	return line, nil
}
