// Package taxid valida y formatea documentos fiscales brasileños (CNPJ y CPF) de proveedores.
package taxid

import (
	"fmt"
	"unicode"
)

// pesos del módulo 11 de la Receita Federal, aplicados de izquierda a derecha.
var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfWeights1  = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfWeights2  = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Normalize devuelve solo los dígitos: "11.222.333/0001-81" → "11222333000181".
func Normalize(s string) string {
	return string(extractDigits(s))
}

// Validate acepta un CNPJ (14 dígitos) o CPF (11 dígitos), con o sin puntuación, y verifica los
// dos dígitos de verificación.
func Validate(s string) error {
	digits := extractDigits(s)
	switch len(digits) {
	case 14:
		return validate(digits, "CNPJ", cnpjWeights1, cnpjWeights2)
	case 11:
		return validate(digits, "CPF", cpfWeights1, cpfWeights2)
	default:
		return fmt.Errorf("taxid: se esperaban 11 (CPF) o 14 (CNPJ) dígitos, se encontraron %d", len(digits))
	}
}

func validate(digits []byte, kind string, w1, w2 []int) error {
	if allSame(digits) {
		return fmt.Errorf("taxid: %s con dígitos repetidos", kind)
	}
	n := len(digits)
	d1 := checkDigit(digits[:n-2], w1)
	d2 := checkDigit(append(append([]byte{}, digits[:n-2]...), d1), w2)
	if digits[n-2] != d1 || digits[n-1] != d2 {
		return fmt.Errorf("taxid: dígitos de verificación del %s inválidos: esperado %c%c, recibido %c%c",
			kind, d1, d2, digits[n-2], digits[n-1])
	}
	return nil
}

func checkDigit(base []byte, weights []int) byte {
	var sum int
	for i, d := range base {
		sum += int(d-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + (11 - r))
}

// Format aplica la máscara oficial; devuelve la entrada sin cambios si no tiene 11 ni 14 dígitos.
func Format(s string) string {
	d := Normalize(s)
	switch len(d) {
	case 14:
		return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:14])
	case 11:
		return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
	default:
		return s
	}
}

func allSame(digits []byte) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
