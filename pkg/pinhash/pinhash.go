package pinhash

import (
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Hash returns the bcrypt hash of a numeric PIN. PINs never leave the
// security service in clear text once hashed.
func Hash(pin int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strconv.Itoa(pin)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the PIN matches a stored hash.
func Verify(hash string, pin int) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(strconv.Itoa(pin)))
	return err == nil
}
