package services

import (
	"crypto/rand"
	"math/big"
	"regexp"

	"github.com/fsdevblog/shortkit/internal/models"
	"github.com/pkg/errors"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Формат кода: 3-50 символов, латиница, цифры, дефис и подчеркивание.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

// ValidateCode проверяет формат короткого кода.
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return errors.Wrapf(ErrValidation,
			"short code must be %d-%d chars of [A-Za-z0-9_-], got `%s`",
			models.CodeMinLength, models.CodeMaxLength, code)
	}
	return nil
}

// GenerateCode возвращает случайный код фиксированной длины над base62
// алфавитом. Уникальность здесь не проверяется — её держит констрейнт
// хранилища, аллокатор лишь повторяет генерацию при коллизии.
func GenerateCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, models.GeneratedCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", errors.Wrap(err, "failed to read random source")
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
