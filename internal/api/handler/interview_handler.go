package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roundtable/backend/internal/apperr"
)

type startInterviewRequest struct {
	Role       string `json:"role"`
	Focus      string `json:"focus"`
	Difficulty string `json:"difficulty"`
}

// StartInterview opens a practice session and returns the first
// question together with the session id the client polls with.
func (h *Handler) StartInterview(c *gin.Context) {
	var req startInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("invalid request body"))
		return
	}

	session, err := h.Interviews.Start(c.Request.Context(), req.Role, req.Focus, req.Difficulty)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

type answerRequest struct {
	Text string `json:"text"`
}

// AnswerInterview records the candidate's answer. The response carries
// the next question, or the completed session once the question cap is
// reached.
func (h *Handler) AnswerInterview(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validationf("invalid request body"))
		return
	}
	if req.Text == "" {
		writeError(c, apperr.Validationf("answer text is required"))
		return
	}

	session, err := h.Interviews.Answer(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// InterviewState returns the current session snapshot.
func (h *Handler) InterviewState(c *gin.Context) {
	session, err := h.Interviews.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// InterviewTranscript returns the complete, untrimmed exchange history.
func (h *Handler) InterviewTranscript(c *gin.Context) {
	transcript, err := h.Interviews.Transcript(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": transcript})
}
