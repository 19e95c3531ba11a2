package interview_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"roundtable/backend/internal/models"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) NextQuestion(ctx context.Context, systemPrompt, summary string, window []models.InterviewMessage) (string, error) {
	args := m.Called(ctx, systemPrompt, summary, window)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Summarize(ctx context.Context, older []models.InterviewMessage, previous string) (string, error) {
	args := m.Called(ctx, older, previous)
	return args.String(0), args.Error(1)
}

type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) ArchiveInterview(rec *models.InterviewRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}
