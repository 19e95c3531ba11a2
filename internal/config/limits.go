package config

const (
	// Room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet omits visually ambiguous symbols (0, 1, I, O).
	RoomCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	// RoomCodeMaxAttempts bounds collision resampling. With 32^6 codes
	// the loop practically never runs more than once.
	RoomCodeMaxAttempts = 50

	// Interview
	MaxInterviewQuestions = 8
	// RawWindowMessages is the prompt buffer bound: the last 3
	// exchanges (question + answer) are kept verbatim.
	RawWindowMessages = 6

	// Insight thresholds
	DominanceSharePercent = 50.0
	LowRelevanceAverage   = 6.0
	LowClarityAverage     = 6.0
	HighBiasAverage       = 6.0
	ScoreDisparityGap     = 3.0
)
