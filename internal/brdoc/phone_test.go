package brdoc

import "testing"

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"11999998888", "+55 (11) 99999-8888"},
		{"(11) 99999-8888", "+55 (11) 99999-8888"},
		{"1133334444", "+55 (11) 3333-4444"},
		{"123", "123"},
		{"119999988881", "119999988881"},
		{"", ""},
	}
	for _, c := range cases {
		if got := FormatPhone(c.in); got != c.want {
			t.Fatalf("FormatPhone(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestDisplayPhone(t *testing.T) {
	if got := DisplayPhone(""); got != "—" {
		t.Fatalf("vazio deveria exibir travessão, veio %q", got)
	}
	if got := DisplayPhone("1133334444"); got != "+55 (11) 3333-4444" {
		t.Fatalf("DisplayPhone: %q", got)
	}
}
