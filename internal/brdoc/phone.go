package brdoc

import "fmt"

// FormatPhone formata um telefone nacional para exibição.
// 11 dígitos: +55 (AA) NNNNN-NNNN (celular); 10 dígitos: +55 (AA) NNNN-NNNN.
// Qualquer outro comprimento retorna a entrada como veio (nunca rejeita).
func FormatPhone(phone string) string {
	if phone == "" {
		return ""
	}
	digits := NormalizeCPF(phone)
	switch len(digits) {
	case 11:
		return fmt.Sprintf("+55 (%s) %s-%s", digits[0:2], digits[2:7], digits[7:])
	case 10:
		return fmt.Sprintf("+55 (%s) %s-%s", digits[0:2], digits[2:6], digits[6:])
	}
	return phone
}

// DisplayPhone é FormatPhone com placeholder para campo ausente.
func DisplayPhone(phone string) string {
	if phone == "" {
		return "—"
	}
	return FormatPhone(phone)
}
