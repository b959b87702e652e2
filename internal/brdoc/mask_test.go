package brdoc

import "testing"

func TestMaskCPFProgressive(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1"},
		{"111", "111"},
		{"1114", "111.4"},
		{"111444", "111.444"},
		{"1114447", "111.444.7"},
		{"111444777", "111.444.777"},
		{"1114447773", "111.444.777-3"},
		{"11144477735", "111.444.777-35"},
	}
	for _, c := range cases {
		if got := MaskCPF(c.in); got != c.want {
			t.Fatalf("MaskCPF(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestMaskCPFIdempotent(t *testing.T) {
	masked := MaskCPF("11144477735")
	if again := MaskCPF(masked); again != masked {
		t.Fatalf("reaplicar máscara mudou o valor: %q -> %q", masked, again)
	}
}

func TestMaskPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"11", "11"},
		{"119", "(11) 9"},
		{"11999", "(11) 999"},
		{"11999998", "(11) 99999-8"},
		{"11999998888", "(11) 99999-8888"},
		{"(11) 99999-8888", "(11) 99999-8888"},
		{"119999988880", "119999988880"},
	}
	for _, c := range cases {
		if got := MaskPhone(c.in); got != c.want {
			t.Fatalf("MaskPhone(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestMaskCEP(t *testing.T) {
	if got := MaskCEP("89200000"); got != "89200-000" {
		t.Fatalf("MaskCEP: %q", got)
	}
	if got := MaskCEP("89200-000"); got != "89200-000" {
		t.Fatalf("máscara de CEP não é idempotente: %q", got)
	}
	if got := MaskCEP("892"); got != "892" {
		t.Fatalf("CEP parcial: %q", got)
	}
}
