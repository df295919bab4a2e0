// Package util provides utility functions for the StorySprout application.
package util

import (
	"math/rand"
	"strings"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
// Uses math/rand/v2 for optimal performance with modern best practices.
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2 with optimal entropy utilization for non-cryptographic purposes.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length) // Pre-allocate capacity for efficiency

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.Intn(16)])
	}

	return builder.String()
}

// GenerateSessionID generates a unique session ID with "sess_" prefix.
func GenerateSessionID() string {
	return GenerateRandomID("sess_", 32)
}

// GenerateInteractionID generates a unique interaction ID with "int_" prefix.
func GenerateInteractionID() string {
	return GenerateRandomID("int_", 32)
}

// GenerateStoryID generates a unique story ID with "story_" prefix.
func GenerateStoryID() string {
	return GenerateRandomID("story_", 32)
}
