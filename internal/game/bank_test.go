package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBankFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBankDefaultsAndIDs(t *testing.T) {
	path := writeBankFile(t, `{
		"questions": [
			{"question": "2+2?", "type": "text_input", "correct_answer": "4"},
			{"question": "Sky is blue.", "type": "true_false", "correct_answer": "true", "points": 25}
		]
	}`)

	bank, err := LoadBank(path)
	require.NoError(t, err)
	require.Equal(t, 2, bank.Len())

	first, ok := bank.At(0)
	require.True(t, ok)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 10, first.Points, "points default to 10")

	second, ok := bank.At(1)
	require.True(t, ok)
	assert.Equal(t, 25, second.Points)

	_, ok = bank.At(2)
	assert.False(t, ok)
}

func TestLoadBankRejectsInvalidQuestions(t *testing.T) {
	cases := map[string]string{
		"missing file entirely": "",
		"multiple choice without options": `{"questions": [
			{"question": "Pick one", "type": "multiple_choice", "correct_answer": "A"}
		]}`,
		"true_false with options": `{"questions": [
			{"question": "Yes?", "type": "true_false", "options": ["true","false"], "correct_answer": "true"}
		]}`,
		"unknown type": `{"questions": [
			{"question": "Hm", "type": "essay", "correct_answer": "x"}
		]}`,
		"empty prompt": `{"questions": [
			{"question": "", "type": "text_input", "correct_answer": "x"}
		]}`,
		"empty correct answer": `{"questions": [
			{"question": "Hm", "type": "text_input", "correct_answer": ""}
		]}`,
		"empty bank": `{"questions": []}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			var path string
			if content == "" {
				path = filepath.Join(t.TempDir(), "missing.json")
			} else {
				path = writeBankFile(t, content)
			}
			_, err := LoadBank(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadBankValidMultipleChoice(t *testing.T) {
	path := writeBankFile(t, `{"questions": [
		{"question": "Capital of France?", "type": "multiple_choice",
		 "options": ["Paris", "London"], "correct_answer": "Paris",
		 "hints": ["City of Light"]}
	]}`)

	bank, err := LoadBank(path)
	require.NoError(t, err)

	q, ok := bank.At(0)
	require.True(t, ok)
	assert.Equal(t, []string{"Paris", "London"}, q.Options)
	assert.Equal(t, []string{"City of Light"}, q.Hints)
}
