package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding(encodingName)
	})
	return tk, tkErr
}

// Count returns the cl100k token count of text. When the encoding can't be
// loaded (offline, no cache) it falls back to Estimate and reports exact=false.
func Count(text string) (n int, exact bool) {
	if text == "" {
		return 0, true
	}
	enc, err := getTokenizer()
	if err != nil {
		return Estimate(text), false
	}
	return len(enc.Encode(text, nil, nil)), true
}

// Estimate approximates tokens as one per four runes, rounded up.
func Estimate(text string) int {
	runes := utf8.RuneCountInString(text)
	return (runes + 3) / 4
}
