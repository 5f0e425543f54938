/*
Package pin turns the shared 4-digit redemption PIN into a stored
representation and verifies attempts against it.

PURPOSE:
  The PIN must not be recoverable from storage. This package uses bcrypt,
  a salted one-way hash: the stored value differs on every Hash call and
  verification goes through constant-time comparison inside bcrypt.

FORMAT:
  A valid PIN is exactly 4 ASCII digits. Format is checked on update, not
  on verify - a malformed attempt simply fails to match.

SEE ALSO:
  - ledger/service.go: The consumption gate calling Verify
*/
package pin

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

var format = regexp.MustCompile(`^[0-9]{4}$`)

// Valid reports whether p is exactly 4 digits.
func Valid(p string) bool {
	return format.MatchString(p)
}

// Hash returns a salted one-way hash of the PIN. Two calls with the same
// PIN produce different hashes.
func Hash(p string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether attempt matches the stored hash.
func Verify(hash, attempt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(attempt)) == nil
}
