package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const idLength = 16 // bytes, 32 hex characters

// newID returns a random hex identifier for a new record. The data-access
// layer stores IDs as opaque strings, so both backends share this scheme.
func newID() string {
	token, err := generateSecureToken(idLength)
	if err != nil {
		// crypto/rand failing is unrecoverable for ID assignment.
		panic(fmt.Sprintf("failed to generate identifier: %v", err))
	}
	return token
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// fallbackUserName is the display name used when a user lookup fails.
func fallbackUserName(userID string) string {
	if len(userID) > 8 {
		userID = userID[:8]
	}
	return "User " + userID
}

// GetExtensionFromContentType maps an image content type to a file
// extension for uploaded avatars and logos.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}
