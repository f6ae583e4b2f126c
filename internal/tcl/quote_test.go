package tcl

import "testing"

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "{}"},
		{"port", "port"},
		{"1/1/1", "1/1/1"},
		{"C:/configs/port 1.prt", "{C:/configs/port 1.prt}"},
		{"a{b", `a\{b`},
		{"{a b}", "{{a b}}"},
		{`ends with\`, `ends\ with\\`},
		{"$var", "{$var}"},
		{"#comment", "{#comment}"},
		{"a\nb}", `a\nb\}`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestList(t *testing.T) {
	got := List("warning one", "two", "")
	want := "{warning one} two {}"
	if got != want {
		t.Errorf("List() = %q, want %q", got, want)
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		verb string
		args []any
		want string
	}{
		{"port write", []any{"1 1 1"}, "port write 1 1 1"},
		{"stream get", []any{"1 1 1", 2}, "stream get 1 1 1 2"},
		{"session login", []any{""}, "session login"},
		{"enableEvents", []any{true}, "enableEvents true"},
	}
	for _, tt := range tests {
		if got := Command(tt.verb, tt.args...); got != tt.want {
			t.Errorf("Command(%q, %v) = %q, want %q", tt.verb, tt.args, got, tt.want)
		}
	}
}
