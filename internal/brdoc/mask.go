package brdoc

import "regexp"

// Máscaras progressivas aplicadas a cada tecla digitada. O valor é sempre
// rederivado a partir dos dígitos, então reaplicar a máscara sobre um valor
// já mascarado é no-op. Nenhum dígito é descartado, só separadores mudam.

var (
	groupOf3  = regexp.MustCompile(`(\d{3})(\d)`)
	cpfTail   = regexp.MustCompile(`(\d{3})(\d{1,2})$`)
	phoneArea = regexp.MustCompile(`(\d{2})(\d)`)
	phoneDash = regexp.MustCompile(`(\d{5})(\d)`)
	cepDash   = regexp.MustCompile(`(\d{5})(\d)`)
)

// MaskCPF formata dígitos como 000.000.000-00 conforme o usuário digita.
func MaskCPF(value string) string {
	v := NormalizeCPF(value)
	v = replaceFirst(groupOf3, v, "$1.$2")
	v = replaceFirst(groupOf3, v, "$1.$2")
	v = replaceFirst(cpfTail, v, "$1-$2")
	return v
}

// MaskPhone formata dígitos como (00) 00000-0000. Acima de 11 dígitos a
// entrada fica sem separadores (o campo aceita digitação parcial livre).
func MaskPhone(value string) string {
	v := NormalizeCPF(value)
	if len(v) <= 11 {
		v = replaceFirst(phoneArea, v, "($1) $2")
		v = replaceFirst(phoneDash, v, "$1-$2")
	}
	return v
}

// MaskCEP formata dígitos como 00000-000.
func MaskCEP(value string) string {
	v := NormalizeCPF(value)
	return replaceFirst(cepDash, v, "$1-$2")
}

// replaceFirst substitui só a primeira ocorrência (semântica do replace de
// string do JS, que as máscaras reproduzem).
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	out := make([]byte, 0, len(s)+4)
	out = append(out, s[:loc[0]]...)
	out = re.ExpandString(out, repl, s, loc)
	out = append(out, s[loc[1]:]...)
	return string(out)
}
