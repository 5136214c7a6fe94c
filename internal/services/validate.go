package services

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	targetURLMinLength = 10
	targetURLMaxLength = 2048
)

// Префиксы, исполняющие код либо подменяющие содержимое. Отклоняем до любого
// обращения к хранилищу.
var blockedTargetPrefixes = []string{
	"javascript:",
	"data:",
	"vbscript:",
	"file:",
	"about:",
}

// ValidateTargetURL проверяет целевой адрес: абсолютный URL, только http/https.
func ValidateTargetURL(rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return errors.Wrap(ErrValidation, "target url is empty")
	}
	if len(trimmed) < targetURLMinLength {
		return errors.Wrapf(ErrValidation, "target url is too short (min %d chars)", targetURLMinLength)
	}
	if len(trimmed) > targetURLMaxLength {
		return errors.Wrapf(ErrValidation, "target url is too long (max %d chars)", targetURLMaxLength)
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range blockedTargetPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return errors.Wrapf(ErrValidation, "target url matches blocked pattern `%s`", prefix)
		}
	}

	parsed, parseErr := url.ParseRequestURI(trimmed)
	if parseErr != nil {
		return errors.Wrapf(ErrValidation, "failed to parse target url: %s", parseErr.Error())
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.Wrapf(ErrValidation, "target url scheme `%s` is not allowed", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.Wrap(ErrValidation, "target url has no host")
	}
	return nil
}
