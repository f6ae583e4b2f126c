package ixapi

import (
	"testing"

	apperr "ixexplorer/internal/error"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		member Member
		raw    string
		want   any
	}{
		{M("speed", KindInt), "1000", 1000},
		{M("rate", KindFloat), "99.5", 99.5},
		{M("flag", KindBool), "1", true},
		{M("flag", KindBool), "false", false},
		{M("da", KindMac), "00 DE BB 00 00 01", "00:DE:BB:00:00:01"},
		{M("name", KindString), " stream 1 ", "stream 1"},
	}
	for _, tt := range tests {
		got, err := tt.member.Decode(tt.raw)
		if err != nil {
			t.Errorf("Decode(%s, %q) error = %v", tt.member.Name, tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Decode(%s, %q) = %v (%T), want %v", tt.member.Name, tt.raw, got, got, tt.want)
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, tt := range []struct {
		member Member
		raw    string
	}{
		{M("speed", KindInt), "auto"},
		{M("flag", KindBool), "yes"},
		{M("rate", KindFloat), ""},
	} {
		if _, err := tt.member.Decode(tt.raw); !apperr.IsType(err, apperr.ValidationError) {
			t.Errorf("Decode(%s, %q) error = %v, want ValidationError", tt.member.Name, tt.raw, err)
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		member Member
		value  any
		want   string
	}{
		{M("speed", KindInt), 100, "100"},
		{M("speed", KindInt), "25", "25"},
		{M("rate", KindFloat), 12.5, "12.5"},
		{M("flag", KindBool), true, "true"},
		{M("flag", KindBool), "0", "false"},
		{M("da", KindMac), "00:de:bb:00:00:01", "{00 de bb 00 00 01}"},
		{M("da", KindMac), "00-de-bb-00-00-02", "{00 de bb 00 00 02}"},
		{M("name", KindString), "my stream", "{my stream}"},
		{M("name", KindString), "s1", "s1"},
		{M("list", KindString, FlagMultiValue), []string{"a b", "c"}, "{{a b} c}"},
	}
	for _, tt := range tests {
		got, err := tt.member.Encode(tt.value)
		if err != nil {
			t.Errorf("Encode(%s, %v) error = %v", tt.member.Name, tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Encode(%s, %v) = %q, want %q", tt.member.Name, tt.value, got, tt.want)
		}
	}
}

func TestEncodeInvalid(t *testing.T) {
	for _, tt := range []struct {
		member Member
		value  any
	}{
		{M("speed", KindInt), 1.5},
		{M("da", KindMac), "00:11:22"},
		{M("da", KindMac), 12},
		{M("flag", KindBool), "maybe"},
	} {
		if _, err := tt.member.Encode(tt.value); !apperr.IsType(err, apperr.ValidationError) {
			t.Errorf("Encode(%s, %v) error = %v, want ValidationError", tt.member.Name, tt.value, err)
		}
	}
}

func TestSchemaLookup(t *testing.T) {
	s := NewSchema("port", []Member{{Name: "DestMacAddress", Attr: "destMac", Kind: KindMac}}, "write")
	if _, ok := s.Member("destMac"); !ok {
		t.Error("lookup by local name failed")
	}
	if _, ok := s.Member("DestMacAddress"); !ok {
		t.Error("lookup by wire name failed")
	}
	if !s.HasCommand("write") || s.HasCommand("reset") {
		t.Error("HasCommand mismatch")
	}
	rx := s.WithVerbs("getRx", "setRx")
	if s.GetVerb != "get" || rx.GetVerb != "getRx" {
		t.Error("WithVerbs modified the original schema")
	}
}
