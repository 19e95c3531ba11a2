package room_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"roundtable/backend/internal/config"
	"roundtable/backend/internal/room"
)

// TestNewCodeShape verifies length and alphabet membership: no
// ambiguous 0/1/I/O characters ever appear.
func TestNewCodeShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := room.NewCode()

		assert.Len(t, code, config.RoomCodeLength)
		for _, c := range code {
			assert.Contains(t, config.RoomCodeAlphabet, string(c))
		}
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "O")
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC234", room.NormalizeCode("  abc234 "))
	assert.Equal(t, "ABC234", room.NormalizeCode("ABC234"))
	assert.Equal(t, "", room.NormalizeCode("   "))
}

// TestCodesVary is a smoke check that generation is not degenerate.
func TestCodesVary(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[room.NewCode()] = true
	}
	assert.Greater(t, len(seen), 90, "codes should be effectively unique: %s", strings.Join(keys(seen), ","))
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
