package store

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	saltBytes = 16
	separator = ":"
)

var ErrInvalidPassword = errors.New("given password does not match")

// HashCredential returns "<salt>:<hash>" for the given password, both base64
func HashCredential(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hashed := hashPassword(salt, []byte(password))

	return fmt.Sprintf("%s%s%s",
		base64.StdEncoding.EncodeToString(salt),
		separator,
		base64.StdEncoding.EncodeToString(hashed),
	), nil
}

// VerifyCredential checks a password against a credential made by HashCredential
func VerifyCredential(credential, password string) error {
	parts := strings.SplitN(credential, separator, 2)
	if len(parts) != 2 {
		return ErrInvalidPassword
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return err
	}

	stored, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return err
	}

	if !bytes.Equal(hashPassword(salt, []byte(password)), stored) {
		return ErrInvalidPassword
	}

	return nil
}

func hashPassword(salt, password []byte) []byte {
	input := make([]byte, 0, len(salt)+len(password))
	input = append(input, salt...)
	input = append(input, password...)

	sum := sha256.Sum256(input)
	return sum[:]
}
