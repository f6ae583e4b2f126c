// internal/ixapi/member.go

package ixapi

import (
	"fmt"
	"strconv"
	"strings"

	apperr "ixexplorer/internal/error"
	"ixexplorer/internal/tcl"
)

// Kind is the coercion applied to a member's wire value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindMac
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindMac:
		return "mac"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Flag qualifies a member.
type Flag uint8

const (
	// FlagRdOnly members reject writes before anything is sent.
	FlagRdOnly Flag = 1 << iota
	// FlagIgErr members read as their zero value when the hardware does not
	// support them.
	FlagIgErr
	// FlagMultiValue members hold a Tcl list.
	FlagMultiValue
)

// Member describes one remote attribute.
type Member struct {
	// Name is the wire name, sent as -Name.
	Name string
	// Attr is the local attribute name. It defaults to Name.
	Attr  string
	Kind  Kind
	Flags Flag
}

// M declares a member whose local name equals its wire name.
func M(name string, kind Kind, flags ...Flag) Member {
	m := Member{Name: name, Attr: name, Kind: kind}
	for _, f := range flags {
		m.Flags |= f
	}
	return m
}

// Has reports whether all bits of f are set.
func (m Member) Has(f Flag) bool {
	return m.Flags&f == f
}

// Zero returns the decoded zero value of the member's kind.
func (m Member) Zero() any {
	switch m.Kind {
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindBool:
		return false
	}
	return ""
}

// Decode converts a cget result into the member's Go type: string, int,
// float64 or bool. MAC addresses come back colon separated.
func (m Member) Decode(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch m.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperr.New(apperr.ValidationError, fmt.Sprintf("member %s: %q is not an int", m.Name, raw), err)
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.New(apperr.ValidationError, fmt.Sprintf("member %s: %q is not a float", m.Name, raw), err)
		}
		return f, nil
	case KindBool:
		return parseBool(m.Name, raw)
	case KindMac:
		return strings.Join(strings.Fields(raw), ":"), nil
	}
	return raw, nil
}

// Encode renders v as a config argument.
func (m Member) Encode(v any) (string, error) {
	switch m.Kind {
	case KindInt:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return fmt.Sprint(n), nil
		case string:
			if _, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return strings.TrimSpace(n), nil
			}
		}
	case KindFloat:
		switch f := v.(type) {
		case float64:
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		case float32:
			return strconv.FormatFloat(float64(f), 'f', -1, 32), nil
		case int:
			return strconv.Itoa(f), nil
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err == nil {
				return strings.TrimSpace(f), nil
			}
		}
	case KindBool:
		switch b := v.(type) {
		case bool:
			return strconv.FormatBool(b), nil
		case int:
			return strconv.FormatBool(b != 0), nil
		case string:
			parsed, err := parseBool(m.Name, b)
			if err != nil {
				return "", err
			}
			return strconv.FormatBool(parsed.(bool)), nil
		}
	case KindMac:
		s, ok := v.(string)
		if !ok {
			break
		}
		octets := strings.FieldsFunc(s, func(r rune) bool {
			return r == ':' || r == '-' || r == ' ' || r == '.'
		})
		if len(octets) != 6 {
			return "", apperr.Newf(apperr.ValidationError, "member %s: %q is not a MAC address", m.Name, s)
		}
		return tcl.Quote(strings.Join(octets, " ")), nil
	default:
		if m.Has(FlagMultiValue) {
			if list, ok := v.([]string); ok {
				return tcl.Quote(tcl.List(list...)), nil
			}
		}
		return tcl.Quote(fmt.Sprint(v)), nil
	}
	return "", apperr.Newf(apperr.ValidationError, "member %s: cannot use %v (%T) as %s", m.Name, v, v, m.Kind)
}

func parseBool(name, raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return nil, apperr.Newf(apperr.ValidationError, "member %s: %q is not a bool", name, raw)
}
