package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const suffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

var accountNumberPattern = regexp.MustCompile(`^4001-\d{4}-\d{4}$`)

// FormatID renders the {type}_{unixMillis}_{suffix} identifier layout.
func FormatID(kind string, at time.Time, suffix string) string {
	return fmt.Sprintf("%s_%d_%s", kind, at.UnixMilli(), suffix)
}

// RandomSuffix returns n random lowercase alphanumerics.
func RandomSuffix(n int) string {
	result := make([]byte, n)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(suffixCharset))))
		result[i] = suffixCharset[num.Int64()]
	}
	return string(result)
}

// GenerateAccountNumber returns 4001-XXXX-XXXX with two independent,
// zero-padded random groups. Callers enforce uniqueness.
func GenerateAccountNumber() string {
	a, _ := rand.Int(rand.Reader, big.NewInt(10000))
	b, _ := rand.Int(rand.Reader, big.NewInt(10000))
	return fmt.Sprintf("4001-%04d-%04d", a.Int64(), b.Int64())
}

func ValidateAccountNumber(accountNumber string) bool {
	return accountNumberPattern.MatchString(accountNumber)
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
