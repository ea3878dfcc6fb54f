package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/luna/vm"
)

// parseLiteral turns a command-line literal into a Value:
//
//	nil, true, false      the constants
//	42, -7, 0x1f          integers
//	1.5, 1e3, 2.0         floats (anything strconv.ParseFloat takes)
//	"text"                Go-quoted strings
//	{}                    an empty table
//
// Bare words that match none of these are rejected so that typos are not
// silently packed as strings.
func parseLiteral(s string) (vm.Value, error) {
	switch s {
	case "nil":
		return vm.Nil, nil
	case "true":
		return vm.True, nil
	case "false":
		return vm.False, nil
	case "{}":
		return vm.NewTableValue(0, 0), nil
	}
	if strings.HasPrefix(s, `"`) {
		text, err := strconv.Unquote(s)
		if err != nil {
			return vm.Nil, fmt.Errorf("bad string literal %s: %w", s, err)
		}
		return vm.FromString(text), nil
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return vm.FromInt(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return vm.FromFloat(f), nil
	}
	return vm.Nil, fmt.Errorf("unrecognized literal %q", s)
}
