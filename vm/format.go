package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// String returns the user-facing rendering of v: numbers in their natural
// form, strings as lossy UTF-8 text without quotes, tables as an opaque
// "table: 0x..." tag and functions as "function".
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBoolean:
		if v.bits != 0 {
			return "true"
		}
		return "false"
	case KindInteger:
		return strconv.FormatInt(int64(v.bits), 10)
	case KindFloat:
		return formatFloat(math.Float64frombits(v.bits))
	case KindShortString, KindMidString, KindLongString:
		b, _ := v.content()
		return lossy(b)
	case KindTable:
		return fmt.Sprintf("table: %p", v.obj)
	case KindFunction:
		return "function"
	}
	return "<unknown>"
}

// Debug returns the diagnostic rendering of v. Strings are quoted with a
// marker per size class ('short', "mid", '''long''') with backslashes and
// the marker's quote character escaped. Tables show their part sizes as
// table:<array>:<map>, and named functions show their name.
//
// Debug never blocks or modifies v. A table that is exclusively borrowed
// renders as table:<borrowed>.
func (v Value) Debug() string {
	switch v.kind {
	case KindShortString:
		return "'" + singleQuoteEscaper.Replace(v.String()) + "'"
	case KindMidString:
		return `"` + doubleQuoteEscaper.Replace(v.String()) + `"`
	case KindLongString:
		return "'''" + singleQuoteEscaper.Replace(v.String()) + "'''"
	case KindTable:
		t := (*Table)(v.obj)
		if t.writing {
			return "table:<borrowed>"
		}
		return fmt.Sprintf("table:%d:%d", len(t.array), t.nhash)
	case KindFunction:
		if name := (*Function)(v.obj).name; name != "" {
			return "function:" + name
		}
		return "function"
	}
	return v.String()
}

// Format implements fmt.Formatter. %v and %s print the user-facing form,
// %+v and %#v the diagnostic form, %q the quoted user-facing form.
func (v Value) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') || f.Flag('#') {
			fmt.Fprint(f, v.Debug())
			return
		}
		fmt.Fprint(f, v.String())
	case 's':
		fmt.Fprint(f, v.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(v.String()))
	case 'd':
		if v.kind == KindInteger {
			fmt.Fprint(f, int64(v.bits))
			return
		}
		fmt.Fprintf(f, "%%!d(%s)", v.Debug())
	default:
		fmt.Fprintf(f, "%%!%c(%s)", verb, v.Debug())
	}
}

var (
	singleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

// formatFloat renders floats so they never read as integers: 1 prints as
// "1.0". NaN and the infinities print as nan, inf and -inf.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
