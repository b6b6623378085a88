package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GenerateChannelName produces a unique channel name for a call session.
func GenerateChannelName(patientID string) string {
	return fmt.Sprintf("call_%s_%s", patientID, uuid.New().String())
}

// GenerateRTCToken mints an opaque token the RTC engine accepts for joining
// a channel. The engine itself validates it; the backend only issues and
// records it.
func GenerateRTCToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate RTC token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
