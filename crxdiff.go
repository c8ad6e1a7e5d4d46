/*------------------------------------------------------------------------------
* crxdiff.go : numeric difference codec of compact rinex
*
* reference :
*     [1] Y.Hatanaka, A Compression Format and Tools for GNSS Observation
*         Data, Bulletin of the Geospatial Information Authority of Japan,
*         55, 21-30, 2008
*
* A series of scaled integers is replaced by its differences of order k.
* Until k+1 samples have been seen the order is capped at the number of
* samples so far. A series starts (or restarts) with an initialization
* symbol "k&v" carrying the target order k and the absolute value v.
*-----------------------------------------------------------------------------*/
package gnsscrx

import (
	"strconv"
	"strings"
)

// Symbol is one encoded element of a difference series.
type Symbol struct {
	Blank bool  /* no value, state untouched */
	Init  bool  /* initialization: Val is absolute */
	Order int   /* target order of an initialization */
	Val   int64 /* absolute value or difference of the current order */
}

func (s Symbol) String() string {
	switch {
	case s.Blank:
		return ""
	case s.Init:
		return strconv.Itoa(s.Order) + "&" + strconv.FormatInt(s.Val, 10)
	}
	return strconv.FormatInt(s.Val, 10)
}

// ParseSymbol parses the text form of a symbol.
func ParseSymbol(str string) (Symbol, error) {
	var (
		sym Symbol
		err error
	)
	if len(str) == 0 {
		return Symbol{Blank: true}, nil
	}
	if i := strings.IndexByte(str, '&'); i >= 0 {
		sym.Init = true
		if sym.Order, err = strconv.Atoi(str[:i]); err != nil || i != 1 {
			return sym, codecErr(ErrFormat, "invalid order: %q", str)
		}
		if sym.Order > MAXDIFFORDER {
			return sym, codecErr(ErrFormat, "order %d exceeds %d", sym.Order, MAXDIFFORDER)
		}
		str = str[i+1:]
	}
	if sym.Val, err = strconv.ParseInt(str, 10, 64); err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return sym, codecErr(ErrOverflow, "value out of range: %q", str)
		}
		return sym, codecErr(ErrFormat, "not a number: %q", str)
	}
	return sym, nil
}

// DiffState is the difference state of one series.
type DiffState struct {
	order int                     /* target order */
	n     int                     /* samples since initialization (capped at order+1) */
	diff  [MAXDIFFORDER + 1]int64 /* last differences of order 0..order */
}

// NewDiffState returns a state that initializes with the given order.
func NewDiffState(order int) *DiffState {
	ds := &DiffState{}
	ds.Init(order)
	return ds
}

// Init sets the target order and forces the next symbol to be absolute.
func (ds *DiffState) Init(order int) {
	if order < 0 {
		order = 0
	} else if order > MAXDIFFORDER {
		order = MAXDIFFORDER
	}
	ds.order = order
	ds.n = 0
}

// Reset forces the next symbol to be absolute, keeping the target order.
func (ds *DiffState) Reset() { ds.n = 0 }

// Valid reports whether a difference can be decoded against the state.
func (ds *DiffState) Valid() bool { return ds.n > 0 }

// Order returns the target order.
func (ds *DiffState) Order() int { return ds.order }

func (ds *DiffState) effective() int {
	if ds.n < ds.order {
		return ds.n
	}
	return ds.order
}

func (ds *DiffState) commit(nd *[MAXDIFFORDER + 1]int64, m int) {
	copy(ds.diff[:m+1], nd[:m+1])
	if ds.n <= ds.order {
		ds.n++
	}
}

// Encode returns the symbol of the next value v.
func (ds *DiffState) Encode(v int64) (Symbol, error) {
	var (
		nd  [MAXDIFFORDER + 1]int64
		err error
	)
	if ds.n == 0 {
		nd[0] = v
		ds.commit(&nd, 0)
		return Symbol{Init: true, Order: ds.order, Val: v}, nil
	}
	m := ds.effective()
	nd[0] = v
	for i := 1; i <= m; i++ {
		if nd[i], err = subInt64(nd[i-1], ds.diff[i-1]); err != nil {
			return Symbol{}, err
		}
	}
	ds.commit(&nd, m)
	return Symbol{Val: nd[m]}, nil
}

// Decode returns the value of the next symbol. A blank symbol must not be
// passed; blank fields leave the state untouched.
func (ds *DiffState) Decode(sym Symbol) (int64, error) {
	var (
		nd  [MAXDIFFORDER + 1]int64
		err error
	)
	if sym.Blank {
		return 0, codecErr(ErrFormat, "blank symbol")
	}
	if sym.Init {
		ds.Init(sym.Order)
		nd[0] = sym.Val
		ds.commit(&nd, 0)
		return sym.Val, nil
	}
	if ds.n == 0 {
		return 0, codecErr(ErrDecodeState, "difference %d without initialization", sym.Val)
	}
	m := ds.effective()
	nd[m] = sym.Val
	for i := m; i >= 1; i-- {
		if nd[i-1], err = addInt64(nd[i], ds.diff[i-1]); err != nil {
			return 0, err
		}
	}
	ds.commit(&nd, m)
	return nd[0], nil
}
