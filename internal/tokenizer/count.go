package tokenizer

import (
	"errors"
)

// CountResult captures the outcome of counting one piece of content.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountText estimates tokens for already-decoded text using counter.
func CountText(counter Counter, text string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errors.New("nil tokenizer counter")
	}
	tokens, err := counter.CountString(text)
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
