package server

import (
	"crypto/rand"
	"regexp"
	"strings"
)

// Room codes are 5 characters from an alphabet that drops the visually
// confusable I, O, 0 and 1.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 5

var roomCodePattern = regexp.MustCompile(`^[A-Z2-9]{5}$`)

func newRoomCode() string {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return strings.Repeat("A", roomCodeLength)
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf)
}

func normalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func isValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}
