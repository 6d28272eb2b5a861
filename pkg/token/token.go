package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/argon2"
)

const (
	// ResetAlphabet is the character set of password-reset tokens.
	ResetAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// ResetLength is the length of password-reset tokens.
	ResetLength = 32

	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	digestSalt    = "session-auth-reset-token-v1"

	errGenerateRandomFmt = "failed to generate random index: %w"
	errLengthPositiveFmt = "length must be positive"
	errAlphabetEmptyFmt  = "alphabet must not be empty"
)

// Generate returns a token of length characters drawn uniformly from alphabet.
func Generate(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf(errLengthPositiveFmt)
	}
	if alphabet == "" {
		return "", fmt.Errorf(errAlphabetEmptyFmt)
	}

	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf(errGenerateRandomFmt, err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// Digest derives the at-rest form of a token. It is deterministic so the
// digest can be used as a lookup key.
func Digest(tok string) string {
	sum := argon2.IDKey([]byte(tok), []byte(digestSalt), argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return hex.EncodeToString(sum)
}
