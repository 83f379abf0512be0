package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxVerbLength bounds accepted infinitives, in runes.
const MaxVerbLength = 20

var verbPattern = regexp.MustCompile(`^[a-zA-Záàâãéèêíïóôõöúçñ\s-]+$`)

var allowedModes = map[string]bool{
	"Indicativo": true,
	"Subjuntivo": true,
	"Imperativo": true,
}

var allowedTenses = map[string]bool{
	"Presente":                    true,
	"Pretérito Imperfeito":        true,
	"Pretérito Perfeito":          true,
	"Pretérito Mais-que-perfeito": true,
	"Futuro do Presente":          true,
	"Futuro do Pretérito":         true,
	"Futuro":                      true,
	"Afirmativo":                  true,
	"Negativo":                    true,
}

// Task is one (verb, mode, tense) unit of scrape work.
type Task struct {
	Verb  string `json:"verb"`
	Mode  string `json:"mode"`
	Tense string `json:"tense"`
}

func (t Task) String() string {
	return fmt.Sprintf("%s %s/%s", t.Verb, t.Mode, t.Tense)
}

// Normalize trims the task and lower-cases the verb.
func (t Task) Normalize() Task {
	return Task{
		Verb:  strings.ToLower(strings.TrimSpace(t.Verb)),
		Mode:  strings.TrimSpace(t.Mode),
		Tense: strings.TrimSpace(t.Tense),
	}
}

var (
	ErrInvalidVerb    = errors.New("invalid verb")
	ErrInvalidGrammar = errors.New("invalid mode or tense")
	ErrNoTasks        = errors.New("no tasks")
)

// ValidVerb reports whether s looks like a Portuguese infinitive.
func ValidVerb(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > MaxVerbLength {
		return false
	}
	return verbPattern.MatchString(s)
}

// ValidGrammar reports whether mode and tense are both whitelisted.
func ValidGrammar(mode, tense string) bool {
	return allowedModes[mode] && allowedTenses[tense]
}

// Validate checks a single task.
func (t Task) Validate() error {
	if !ValidVerb(t.Verb) {
		return fmt.Errorf("%w: %q", ErrInvalidVerb, t.Verb)
	}
	if !ValidGrammar(t.Mode, t.Tense) {
		return fmt.Errorf("%w: %q/%q", ErrInvalidGrammar, t.Mode, t.Tense)
	}
	return nil
}

// ValidateTasks requires a non-empty list of valid tasks and reports the first
// offending index.
func ValidateTasks(tasks []Task) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}
