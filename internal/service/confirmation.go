package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// codeAlphabet omits 0/O and 1/I so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 8

// ConfirmationCodePattern matches every code NewConfirmationCode produces.
var ConfirmationCodePattern = regexp.MustCompile(`^[A-HJ-NP-Z2-9]{8}$`)

// NewConfirmationCode returns a random code of codeLength characters.
func NewConfirmationCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, codeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
