// internal/prompt/generator.go
package prompt

import "context"

// Difficulty selects how hard a generated drawing prompt should be.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// PromptResult is the generated word a drawer must depict.
type PromptResult struct {
	Prompt string `json:"prompt"`
}

// GuessEvaluation is the verdict on a user's guess in the AI game mode.
// CorrectAnswer is only populated when IsCorrect is false.
type GuessEvaluation struct {
	IsCorrect     bool   `json:"isCorrect"`
	Feedback      string `json:"feedback"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

// DrawingGuess is the model's read of a user drawing.
type DrawingGuess struct {
	GuessedObjectName  string   `json:"guessedObjectName"`
	Confidence         float64  `json:"confidence"`
	Feedback           string   `json:"feedback"`
	AlternativeGuesses []string `json:"alternativeGuesses,omitempty"`
}

// Generator is the boundary to the hosted language model. All three calls are
// plain request/response; any of them may fail with a transport error. Word
// generation failures are never fatal to a game: the session engine substitutes
// an offline fallback word instead.
type Generator interface {
	GeneratePrompt(ctx context.Context, difficulty Difficulty) (*PromptResult, error)
	EvaluateGuess(ctx context.Context, drawingDescription, userGuess string) (*GuessEvaluation, error)
	GuessDrawing(ctx context.Context, drawingDataURI string) (*DrawingGuess, error)
}
