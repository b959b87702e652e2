package brdoc

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// NormalizeCPF remove tudo que não for dígito.
func NormalizeCPF(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}

// ValidCPF valida o CPF pelo duplo dígito verificador (mod 11).
// CPF vazio é válido: o campo é opcional e obrigatoriedade é decisão do caller.
func ValidCPF(cpf string) bool {
	if cpf == "" {
		return true
	}
	digits := NormalizeCPF(cpf)
	if digits == "" {
		return true
	}
	if len(digits) != 11 || allSame(digits) {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	if checkDigit(sum) != int(digits[9]-'0') {
		return false
	}
	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * (11 - i)
	}
	return checkDigit(sum) == int(digits[10]-'0')
}

// checkDigit aplica a regra do resto: resto < 2 vira 0, senão 11 - resto.
func checkDigit(sum int) int {
	rev := 11 - (sum % 11)
	if rev >= 10 {
		return 0
	}
	return rev
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// CPFHash retorna SHA-256 do CPF normalizado em hex. Usado na coluna unique
// cpf_hash para detectar duplicidade sem depender da formatação digitada.
func CPFHash(cpfNormalized string) string {
	h := sha256.Sum256([]byte(cpfNormalized))
	return hex.EncodeToString(h[:])
}
