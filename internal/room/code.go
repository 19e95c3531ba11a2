package room

import (
	"math/rand/v2"
	"strings"

	"roundtable/backend/internal/config"
)

// NewCode samples a 6-char room code from the 32-symbol alphabet.
// Uniqueness is the caller's problem: Create resamples on collision.
func NewCode() string {
	b := make([]byte, config.RoomCodeLength)
	for i := range b {
		b[i] = config.RoomCodeAlphabet[rand.IntN(len(config.RoomCodeAlphabet))]
	}
	return string(b)
}

// NormalizeCode канонізує код кімнати: пробіли зрізаються, літери
// приводяться до верхнього регістру. Вхід нечутливий до регістру.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
