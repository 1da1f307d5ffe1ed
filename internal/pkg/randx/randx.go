/*
Package randx provides functions for generating identifiers and default display names.

Identifiers are standard UUIDs; random name suffixes are Base62 characters drawn from a
cryptographically secure random number generator (crypto/rand).
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// nicknameRandomLength is the number of random characters in a fallback name.
	nicknameRandomLength = 6
)

// IdentityID generates the unique identifier of a directory account.
func IdentityID() string {
	return uuid.New().String()
}

// SessionID generates the unique identifier of a registered connection.
func SessionID() string {
	return uuid.New().String()
}

// DisplayName derives a default name from an email address by capitalizing its local part,
// so "writer@example.com" becomes "Writer". It falls back to UserNickname when the local
// part is empty.
func DisplayName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		name, err := UserNickname()
		if err != nil {
			return "User_X"
		}
		return name
	}

	first, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(first)) + local[size:]
}

// UserNickname generates a random nickname with a "User_" prefix and 6 random Base62 characters.
func UserNickname() (string, error) {
	result := make([]byte, nicknameRandomLength)

	for i := range nicknameRandomLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for nickname: %v", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return "User_" + string(result), nil
}
