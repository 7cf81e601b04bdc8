package allocation

import (
	"fmt"
	"unicode"
)

// Initial derives the single uppercase letter a client's dedicated number
// starts with. Names whose first character is not a letter in A-Z fall back
// to 'X'. Total: never fails, never reads external state.
func Initial(name string) byte {
	for _, r := range name {
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'Z' {
			return byte(r)
		}
		break
	}
	return 'X'
}

// ClientPrefix is the non-sequence portion of a dedicated number.
func ClientPrefix(name string) string {
	return string(Initial(name))
}

// ContractPrefix is the non-sequence portion of a contract code: category
// code, two-digit year, and the owning client's dedicated number.
func ContractPrefix(categoryCode string, year int, parentNumber string) string {
	return fmt.Sprintf("%s%02d%s", categoryCode, year%100, parentNumber)
}

// FormatClientNumber composes a dedicated number: initial letter plus a
// two-digit zero-padded sequence (third "G" client -> "G03").
func FormatClientNumber(initial byte, seq int) string {
	return fmt.Sprintf("%c%02d", initial, seq)
}

// FormatContractCode composes a contract code: category code, two-digit
// year, parent dedicated number, two-digit sequence ("MS25G0103").
func FormatContractCode(categoryCode string, year int, parentNumber string, seq int) string {
	return fmt.Sprintf("%s%02d", ContractPrefix(categoryCode, year, parentNumber), seq)
}
