package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"roundtable/backend/internal/apperr"
	"roundtable/backend/internal/insights"
	"roundtable/backend/internal/models"
	"roundtable/backend/internal/room"
)

type createRoomRequest struct {
	Topic string `json:"topic"`
	Mode  string `json:"mode"`
}

// CreateRoom allocates a room. The host secret is returned exactly
// once, here.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("invalid request body"))
		return
	}

	r, err := h.Rooms.Create(req.Topic, req.Mode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"room":        r,
		"host_secret": r.HostSecret,
		"join_url":    joinURL(r.Code),
	})
}

type joinRequest struct {
	Name string `json:"name"`
}

// JoinRoom admits a participant by room code.
func (h *Handler) JoinRoom(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("invalid request body"))
		return
	}

	p, err := h.Rooms.Join(c.Param("code"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"participant": p})
}

// RoomState is the polling endpoint: the room plus all participants
// and their scored responses. The host secret is never serialized.
func (h *Handler) RoomState(c *gin.Context) {
	r, parts, err := h.Rooms.State(c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r, "participants": parts})
}

// LockRoom and UnlockRoom toggle admissions. Host only.
func (h *Handler) LockRoom(c *gin.Context)   { h.setLocked(c, true) }
func (h *Handler) UnlockRoom(c *gin.Context) { h.setLocked(c, false) }

func (h *Handler) setLocked(c *gin.Context, locked bool) {
	r, err := h.Rooms.SetLocked(c.Param("code"), hostSecret(c), locked)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r})
}

// StartRoom opens round 1. Host only.
func (h *Handler) StartRoom(c *gin.Context) {
	r, err := h.Rooms.Start(c.Param("code"), hostSecret(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r})
}

type submitRequest struct {
	ParticipantID string `json:"participant_id"`
	Transcript    string `json:"transcript"`
}

// Submit accepts the current turn holder's argument, either as JSON
// text or as a multipart "audio" upload that is transcribed first.
// Transcription has no fallback: without the AI collaborator an audio
// submission fails hard rather than fabricating a transcript.
func (h *Handler) Submit(c *gin.Context) {
	if file, err := c.FormFile("audio"); err == nil {
		if h.AI == nil {
			writeError(c, apperr.Upstreamf("transcription is not configured"))
			return
		}
		src, err := file.Open()
		if err != nil {
			writeError(c, apperr.Validationf("unreadable audio upload"))
			return
		}
		defer src.Close()

		transcript, err := h.AI.Transcribe(c.Request.Context(), file.Filename, src)
		if err != nil {
			writeError(c, err)
			return
		}
		h.submitTranscript(c, c.PostForm("participant_id"), transcript)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("invalid request body"))
		return
	}
	h.submitTranscript(c, req.ParticipantID, req.Transcript)
}

func (h *Handler) submitTranscript(c *gin.Context, participantID, transcript string) {
	resp, err := h.Rooms.Submit(c.Request.Context(), c.Param("code"), participantID, transcript)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"response": resp})
}

// NextTurn advances the turn. Host only.
func (h *Handler) NextTurn(c *gin.Context) {
	r, err := h.Rooms.NextTurn(c.Param("code"), hostSecret(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r})
}

type assignTurnRequest struct {
	ParticipantID string `json:"participant_id"`
}

// AssignTurn is the host's manual turn override.
func (h *Handler) AssignTurn(c *gin.Context) {
	var req assignTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("invalid request body"))
		return
	}
	r, err := h.Rooms.AssignTurn(c.Param("code"), hostSecret(c), req.ParticipantID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r})
}

type handRequest struct {
	ParticipantID string `json:"participant_id"`
}

func (h *Handler) RaiseHand(c *gin.Context) { h.hand(c, h.Rooms.RaiseHand) }
func (h *Handler) LowerHand(c *gin.Context) { h.hand(c, h.Rooms.LowerHand) }

func (h *Handler) hand(c *gin.Context, op func(code, participantID string) (*models.Room, error)) {
	var req handRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("invalid request body"))
		return
	}
	r, err := op(c.Param("code"), req.ParticipantID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r})
}

// RemoveParticipant evicts a participant. Host only.
func (h *Handler) RemoveParticipant(c *gin.Context) {
	r, err := h.Rooms.RemoveParticipant(c.Param("code"), hostSecret(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r})
}

// EndRoom closes the room and returns the ranked report. Host only.
func (h *Handler) EndRoom(c *gin.Context) {
	rep, err := h.Rooms.End(c.Request.Context(), c.Param("code"), hostSecret(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rep})
}

// RoomInsights computes the read-only analytics view.
func (h *Handler) RoomInsights(c *gin.Context) {
	r, parts, err := h.Rooms.State(c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights.Analyze(r, parts))
}

// RoomQR renders the join link as a QR PNG.
func (h *Handler) RoomQR(c *gin.Context) {
	code := room.NormalizeCode(c.Param("code"))
	if _, err := h.Store.GetRoom(code); err != nil {
		writeError(c, err)
		return
	}
	png, err := qrcode.Encode(joinURL(code), qrcode.Medium, 256)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// joinURL builds the client-facing join link for a room code.
func joinURL(code string) string {
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return base + "/join/" + code
}
