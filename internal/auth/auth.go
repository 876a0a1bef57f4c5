package auth

import "golang.org/x/crypto/bcrypt"

// HashCost is the bcrypt work factor for stored password hashes.
const HashCost = 14

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(bytes), err
}

// CheckPasswordHash reports whether the plaintext password matches the
// stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
