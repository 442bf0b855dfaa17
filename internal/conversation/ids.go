package conversation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// GenerateID creates a unique conversation ID in cv-<millis36><rand> format.
// The millisecond prefix makes IDs sort chronologically as strings.
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("conversation: generate ID: %w", err)
	}
	return "cv-" + strconv.FormatInt(time.Now().UnixMilli(), 36) + hex.EncodeToString(b), nil
}

var idPattern = regexp.MustCompile(`^cv-[0-9a-z]{1,29}$`)

// ValidID reports whether s looks like a GenerateID-produced conversation
// ID. Used to reject malformed IDs at the HTTP edge before touching storage.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}
