package service

import (
	"strings"
)

// NitErrorReason distinguishes the failure modes of NIT validation.
type NitErrorReason string

const (
	NitMissing           NitErrorReason = "MISSING_VALUE"
	NitInvalidCharacters NitErrorReason = "INVALID_CHARACTERS"
	NitWrongLength       NitErrorReason = "WRONG_LENGTH"
	NitInvalidCheckDigit NitErrorReason = "INVALID_CHECK_DIGIT"
)

// NitError reports why a NIT failed validation.
type NitError struct {
	Reason  NitErrorReason
	Message string
}

func (e *NitError) Error() string {
	return e.Message
}

// nitWeights is the official DIAN weight table, most-significant digit
// first. Fixed external algorithm; must not be altered.
var nitWeights = [9]int{71, 67, 59, 53, 47, 43, 41, 37, 29}

// ValidateNit validates a Colombian NIT. Accepted forms are a bare
// 9-digit string or 9 digits, a hyphen and one check digit. The check
// digit, when present, is recomputed and compared.
func ValidateNit(raw string) error {
	nit := strings.TrimSpace(raw)
	if nit == "" {
		return &NitError{Reason: NitMissing, Message: "nit_transp is required"}
	}

	for _, r := range nit {
		if (r < '0' || r > '9') && r != '-' {
			return &NitError{Reason: NitInvalidCharacters, Message: "nit_transp must contain only digits and hyphens"}
		}
	}

	if !strings.Contains(nit, "-") {
		if len(nit) != 9 {
			return &NitError{Reason: NitWrongLength, Message: "nit_transp must have exactly 9 digits"}
		}
		return nil
	}

	if len(nit) != 11 {
		return &NitError{Reason: NitWrongLength, Message: "nit_transp must have exactly 9 digits, a hyphen and 1 check digit"}
	}
	parts := strings.Split(nit, "-")
	if len(parts) != 2 || len(parts[0]) != 9 || len(parts[1]) != 1 {
		return &NitError{Reason: NitWrongLength, Message: "nit_transp must have exactly 9 digits, a hyphen and 1 check digit"}
	}

	if parts[1] != nitCheckDigit(parts[0]) {
		return &NitError{Reason: NitInvalidCheckDigit, Message: "nit_transp check digit is invalid"}
	}
	return nil
}

// nitCheckDigit computes the check digit for 9 NIT digits: weighted
// sum mod 11; the digit is the remainder when below 2, 11-remainder
// otherwise.
func nitCheckDigit(digits string) string {
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * nitWeights[i]
	}
	remainder := sum % 11
	if remainder < 2 {
		return string(rune('0' + remainder))
	}
	return string(rune('0' + (11 - remainder)))
}
