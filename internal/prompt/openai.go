// internal/prompt/openai.go
package prompt

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when OPENAI_MODEL is not set. Drawing analysis needs a
// vision-capable model.
const DefaultModel = openai.GPT4oMini

const generatePromptTemplate = `You are a drawing prompt generator for a party game. ` +
	`Come up with one fun, concrete thing to draw at %q difficulty. ` +
	`Easy prompts are simple everyday objects, medium somewhat more challenging, ` +
	`hard very difficult or abstract. The game language is Turkish; answer in Turkish. ` +
	`Respond with JSON: {"prompt": "<the word or short phrase>"}`

const evaluateGuessTemplate = `You are judging a round of a drawing guessing game.
Drawing description: %q
Player guess: %q
Decide whether the guess is correct, allowing close synonyms. Be encouraging in the feedback.
Respond with JSON: {"isCorrect": bool, "feedback": "...", "correctAnswer": "only when incorrect"}`

const guessDrawingInstruction = `You are an expert guesser in a drawing game. Look at the image and guess what it depicts. ` +
	`Answer in Turkish. Respond with JSON: ` +
	`{"guessedObjectName": "...", "confidence": 0.0-1.0, "feedback": "short friendly feedback", ` +
	`"alternativeGuesses": ["up to 3 alternatives when confidence is below 0.7"]}`

// OpenAIGenerator implements Generator against any OpenAI-compatible chat
// completion endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator for the given API key. Pass an empty
// model to use DefaultModel.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (g *OpenAIGenerator) GeneratePrompt(ctx context.Context, difficulty Difficulty) (*PromptResult, error) {
	var out PromptResult
	msg := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf(generatePromptTemplate, string(difficulty)),
	}
	if err := g.complete(ctx, msg, &out); err != nil {
		return nil, fmt.Errorf("generate prompt: %w", err)
	}
	if out.Prompt == "" {
		return nil, fmt.Errorf("generate prompt: model returned empty prompt")
	}
	return &out, nil
}

func (g *OpenAIGenerator) EvaluateGuess(ctx context.Context, drawingDescription, userGuess string) (*GuessEvaluation, error) {
	var out GuessEvaluation
	msg := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf(evaluateGuessTemplate, drawingDescription, userGuess),
	}
	if err := g.complete(ctx, msg, &out); err != nil {
		return nil, fmt.Errorf("evaluate guess: %w", err)
	}
	return &out, nil
}

func (g *OpenAIGenerator) GuessDrawing(ctx context.Context, drawingDataURI string) (*DrawingGuess, error) {
	var out DrawingGuess
	msg := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: guessDrawingInstruction},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: drawingDataURI},
			},
		},
	}
	if err := g.complete(ctx, msg, &out); err != nil {
		return nil, fmt.Errorf("guess drawing: %w", err)
	}
	return &out, nil
}

// complete runs one JSON-mode chat completion and unmarshals the reply into out.
func (g *OpenAIGenerator) complete(ctx context.Context, msg openai.ChatCompletionMessage, out interface{}) error {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: []openai.ChatCompletionMessage{msg},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no completion choices returned")
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("decode model reply: %w", err)
	}
	return nil
}
