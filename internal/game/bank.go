package game

import (
	"encoding/json"
	"fmt"
	"os"
)

// Bank is the ordered, immutable question sequence loaded at startup.
type Bank struct {
	questions []Question
}

type bankFile struct {
	Questions []Question `json:"questions"`
}

// LoadBank reads and validates a question bank from a JSON file.
// A load failure is fatal to startup, so errors carry full context.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var file bankFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("question bank %s contains no questions", path)
	}

	for i := range file.Questions {
		q := &file.Questions[i]
		if q.ID == 0 {
			q.ID = i + 1
		}
		if q.Points <= 0 {
			q.Points = defaultPoints
		}
		if err := validateQuestion(*q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}

	return &Bank{questions: file.Questions}, nil
}

// NewBank wraps an already-validated question slice. Used by tests.
func NewBank(questions []Question) *Bank {
	for i := range questions {
		if questions[i].Points <= 0 {
			questions[i].Points = defaultPoints
		}
	}
	return &Bank{questions: questions}
}

func validateQuestion(q Question) error {
	if q.Prompt == "" {
		return fmt.Errorf("empty prompt")
	}
	if q.CorrectAnswer == "" {
		return fmt.Errorf("empty correct_answer")
	}
	switch q.Type {
	case TypeMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("multiple_choice needs at least 2 options, got %d", len(q.Options))
		}
	case TypeTrueFalse, TypeTextInput:
		if len(q.Options) > 0 {
			return fmt.Errorf("%s question must not carry options", q.Type)
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// At returns the question at index i.
func (b *Bank) At(i int) (Question, bool) {
	if i < 0 || i >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[i], true
}
