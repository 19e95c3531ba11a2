package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"

	"roundtable/backend/internal/models"
)

// Report returns the final ranked report. Available only after the
// room has ended.
func (h *Handler) Report(c *gin.Context) {
	rep, err := h.Rooms.Report(c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rep})
}

// ReportText renders the report as a plain-text summary for copy-paste
// sharing.
func (h *Handler) ReportText(c *gin.Context) {
	rep, err := h.Rooms.Report(c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(reportText(rep)))
}

func reportText(rep *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Discussion report — room %s\n", rep.RoomCode)
	fmt.Fprintf(&b, "Topic: %s\n", rep.Topic)
	fmt.Fprintf(&b, "Mode: %s, rounds completed: %d\n\n", rep.Mode, rep.Rounds)
	for _, res := range rep.Results {
		if res.Status == models.ResultSilent {
			fmt.Fprintf(&b, "%d. %s — silent (no submissions)\n", res.Rank, res.Name)
			continue
		}
		fmt.Fprintf(&b, "%d. %s — %.1f weighted (%.1f raw) over %d responses\n",
			res.Rank, res.Name, res.WeightedScore, res.RawAverage, res.ResponseCount)
	}
	fmt.Fprintf(&b, "\nGenerated at %s\n", rep.GeneratedAt.Format("2006-01-02 15:04"))
	return b.String()
}

// ReportPDF renders the report as a downloadable PDF.
func (h *Handler) ReportPDF(c *gin.Context) {
	rep, err := h.Rooms.Report(c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Discussion report - room %s", rep.RoomCode))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Topic: "+rep.Topic)
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Mode: %s    Rounds completed: %d", rep.Mode, rep.Rounds))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(12, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, "Participant", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Weighted", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Raw", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Responses", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, res := range rep.Results {
		pdf.CellFormat(12, 8, fmt.Sprintf("%d", res.Rank), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 8, res.Name, "1", 0, "L", false, 0, "")
		if res.Status == models.ResultSilent {
			pdf.CellFormat(30, 8, "-", "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, "-", "1", 0, "C", false, 0, "")
		} else {
			pdf.CellFormat(30, 8, fmt.Sprintf("%.1f", res.WeightedScore), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.1f", res.RawAverage), "1", 0, "C", false, 0, "")
		}
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", res.ResponseCount), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Generated at "+rep.GeneratedAt.Format("2006-01-02 15:04"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=report-%s.pdf", rep.RoomCode))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// InterviewTranscriptText renders the full interview exchange as plain
// text, one line per message.
func (h *Handler) InterviewTranscriptText(c *gin.Context) {
	transcript, err := h.Interviews.Transcript(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var b strings.Builder
	for _, m := range transcript {
		speaker := "Interviewer"
		if m.Speaker == models.SpeakerCandidate {
			speaker = "Candidate"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", speaker, m.Text)
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}
