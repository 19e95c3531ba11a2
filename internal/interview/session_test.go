package interview_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roundtable/backend/internal/apperr"
	"roundtable/backend/internal/config"
	"roundtable/backend/internal/interview"
	"roundtable/backend/internal/models"
)

// TestStartAsksFirstQuestion verifies session creation: one interviewer
// message, question count 1, active status.
func TestStartAsksFirstQuestion(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("NextQuestion", mock.Anything, mock.Anything, "", mock.Anything).
		Return("Tell me about yourself.", nil).Once()
	reg := interview.NewRegistry(gen, nil)

	s, err := reg.Start(context.Background(), "backend engineer", "technical", "medium")

	require.NoError(t, err)
	assert.Equal(t, models.InterviewActive, s.Status)
	assert.Equal(t, 1, s.QuestionCount)
	require.Len(t, s.FullTranscript, 1)
	assert.Equal(t, models.SpeakerInterviewer, s.FullTranscript[0].Speaker)
	gen.AssertExpectations(t)
}

func TestStartRequiresRole(t *testing.T) {
	reg := interview.NewRegistry(nil, nil)

	_, err := reg.Start(context.Background(), "", "technical", "easy")

	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestAnswerUnknownSessionNotFound(t *testing.T) {
	reg := interview.NewRegistry(nil, nil)

	_, err := reg.Answer(context.Background(), "ghost", "my answer")

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

// TestQuestionCapAndTranscriptLength runs a full interview offline (nil
// generator -> fallback questions) and checks the fixed maximum: after
// 8 questions the session is complete, a 9th question is never
// generated, and the transcript holds exactly 2 messages per exchange.
func TestQuestionCapAndTranscriptLength(t *testing.T) {
	reg := interview.NewRegistry(nil, nil)
	s, err := reg.Start(context.Background(), "backend engineer", "mixed", "hard")
	require.NoError(t, err)

	for i := 1; i < config.MaxInterviewQuestions; i++ {
		s, err = reg.Answer(context.Background(), s.ID, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
	}

	assert.Equal(t, models.InterviewComplete, s.Status)
	assert.Equal(t, config.MaxInterviewQuestions, s.QuestionCount)

	// The answer to the final question is kept for the transcript but
	// must not produce another question.
	s, err = reg.Answer(context.Background(), s.ID, "final answer")
	require.NoError(t, err)
	assert.Equal(t, config.MaxInterviewQuestions, s.QuestionCount)
	assert.Equal(t, models.InterviewComplete, s.Status)

	transcript, err := reg.Transcript(s.ID)
	require.NoError(t, err)
	assert.Len(t, transcript, 2*config.MaxInterviewQuestions)

	// Full transcript alternates interviewer/candidate throughout.
	for i, msg := range transcript {
		if i%2 == 0 {
			assert.Equal(t, models.SpeakerInterviewer, msg.Speaker, "message %d", i)
		} else {
			assert.Equal(t, models.SpeakerCandidate, msg.Speaker, "message %d", i)
		}
	}
}

// TestPromptWindowStaysBounded verifies the payload sent to the
// generator never exceeds 6 raw messages regardless of interview length,
// while the full transcript keeps growing.
func TestPromptWindowStaysBounded(t *testing.T) {
	gen := new(MockGenerator)
	maxWindow := 0
	gen.On("NextQuestion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			window := args.Get(3).([]models.InterviewMessage)
			if len(window) > maxWindow {
				maxWindow = len(window)
			}
		}).
		Return("next question?", nil)
	gen.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Return("candidate discussed background and a project.", nil)
	reg := interview.NewRegistry(gen, nil)

	s, err := reg.Start(context.Background(), "data analyst", "behavioral", "easy")
	require.NoError(t, err)
	for i := 1; i < config.MaxInterviewQuestions; i++ {
		s, err = reg.Answer(context.Background(), s.ID, fmt.Sprintf("long answer %d", i))
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, maxWindow, config.RawWindowMessages)
	assert.LessOrEqual(t, len(s.Messages), config.RawWindowMessages+1)
	assert.NotEmpty(t, s.ConversationSummary)

	// Answering the final question completes the transcript: two
	// messages per exchange.
	s, err = reg.Answer(context.Background(), s.ID, "final answer")
	require.NoError(t, err)
	assert.Len(t, s.FullTranscript, 2*config.MaxInterviewQuestions)
}

// TestSummaryReplacedNotAppended verifies each summarization pass
// supersedes the previous summary instead of concatenating onto it.
func TestSummaryReplacedNotAppended(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("NextQuestion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("next question?", nil)
	pass := 0
	gen.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { pass++ }).
		Return("summary v2", nil).
		Maybe()
	reg := interview.NewRegistry(gen, nil)

	s, err := reg.Start(context.Background(), "backend engineer", "technical", "medium")
	require.NoError(t, err)
	for i := 1; i < config.MaxInterviewQuestions; i++ {
		s, err = reg.Answer(context.Background(), s.ID, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, pass, 2, "summarization should have run more than once")
	assert.Equal(t, "summary v2", s.ConversationSummary)
}

// TestGeneratorFailureFallsBack verifies upstream failures are masked
// with the deterministic fallback question instead of failing the turn.
func TestGeneratorFailureFallsBack(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("NextQuestion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", apperr.Upstreamf("model is down"))
	reg := interview.NewRegistry(gen, nil)

	s, err := reg.Start(context.Background(), "backend engineer", "hr", "easy")

	require.NoError(t, err)
	require.Len(t, s.Messages, 1)
	assert.NotEmpty(t, s.Messages[0].Text)
	assert.Equal(t, 1, s.QuestionCount)
}

// TestCompletedSessionArchivedOnce verifies the transcript row is
// written exactly when the session completes.
func TestCompletedSessionArchivedOnce(t *testing.T) {
	arch := new(MockArchiver)
	arch.On("ArchiveInterview", mock.AnythingOfType("*models.InterviewRecord")).Return(nil).Once()
	reg := interview.NewRegistry(nil, arch)

	s, err := reg.Start(context.Background(), "backend engineer", "mixed", "medium")
	require.NoError(t, err)
	for i := 1; i < config.MaxInterviewQuestions; i++ {
		s, err = reg.Answer(context.Background(), s.ID, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
	}

	assert.Equal(t, models.InterviewComplete, s.Status)
	arch.AssertExpectations(t)
}
