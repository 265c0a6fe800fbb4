package domain

import (
	"net/url"
	"strings"
	"unicode"
)

const maxKeyLength = 1024

// ObjectKey is a validated object-store key. It is created from raw request
// input by ParseObjectKey and is safe to hand to the storage client.
type ObjectKey string

func (k ObjectKey) String() string { return string(k) }

// ParseObjectKey validates a raw key taken from the request path.
//
// The length check runs on the raw value to bound decode cost. The character
// whitelist and traversal checks run on the percent-decoded value so that
// encoding cannot smuggle a traversal sequence past them. Whitelisting is
// deliberate: unexpected separator characters introduced by future encodings
// cannot silently bypass a blacklist.
func ParseObjectKey(raw string) (ObjectKey, error) {
	if raw == "" {
		return "", Errorf(ErrInvalidKey, "key parameter is required")
	}
	if len(raw) > maxKeyLength {
		return "", Errorf(ErrInvalidKey, "key parameter too long (max: %d)", maxKeyLength)
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", Errorf(ErrInvalidKey, "invalid URL encoding")
	}

	for _, r := range decoded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '/', '-', '_', '.':
			continue
		}
		return "", Errorf(ErrInvalidKey, "key contains invalid characters")
	}

	if strings.Contains(decoded, "..") ||
		strings.HasPrefix(decoded, "/") ||
		strings.Contains(decoded, "//") ||
		strings.Contains(decoded, `\`) {
		return "", Errorf(ErrInvalidKey, "path traversal detected")
	}

	return ObjectKey(decoded), nil
}
