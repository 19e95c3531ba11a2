package roomstore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundtable/backend/internal/models"
)

// TestDocRoundTripKeepsHostSecret verifies the persisted document keeps
// the host secret even though the Room struct hides it from client
// serialization. Losing it here would lock the host out of their own
// room after a restart.
func TestDocRoundTripKeepsHostSecret(t *testing.T) {
	doc := &roomDoc{
		Room: &models.Room{
			Code:       "ABC234",
			Topic:      "AI ethics",
			HostSecret: "secret-123",
			Status:     models.StatusCollecting,
		},
		Participants: []*models.Participant{{ID: "p1", Name: "Alice"}},
	}

	payload := marshalDoc(doc)
	require.NotNil(t, payload)

	loaded, err := decodeDoc(payload)
	require.NoError(t, err)
	assert.Equal(t, "secret-123", loaded.Room.HostSecret)
	assert.Equal(t, "ABC234", loaded.Room.Code)
	require.Len(t, loaded.Participants, 1)
	assert.Equal(t, "Alice", loaded.Participants[0].Name)
}

// TestRoomSerializationStaysSecretFree verifies the client-facing Room
// JSON still never carries the secret.
func TestRoomSerializationStaysSecretFree(t *testing.T) {
	body, err := json.Marshal(&models.Room{Code: "ABC234", HostSecret: "secret-123"})

	require.NoError(t, err)
	assert.NotContains(t, string(body), "secret-123")
}
