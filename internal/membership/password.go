package membership

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MaxJoinPasswordBytes is the longest password bcrypt will hash.
const MaxJoinPasswordBytes = 72

// HashJoinPassword hashes a league join password for storage.
func HashJoinPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyJoinPassword compares in constant time via bcrypt.
func VerifyJoinPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// checkJoinPassword applies the password gate for first-time joins. A
// password sent to an unprotected league is ignored.
func checkJoinPassword(hash string, password *string) error {
	if hash == "" {
		return nil
	}
	if password == nil || strings.TrimSpace(*password) == "" {
		return newError(KindBadRequest, "Password is required to join this league")
	}
	if !VerifyJoinPassword(hash, *password) {
		return newError(KindUnauthorized, "Incorrect league password")
	}
	return nil
}
