package content

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// minLanguageLetters is the shortest message worth running detection on.
const minLanguageLetters = 3

// Languages counts the detected language of each original message. Messages
// with too few letters are skipped.
func Languages(messages []string, topN int) []Entry[string] {
	counter := NewCounter[string]()
	for _, m := range messages {
		if letterCount(m) < minLanguageLetters {
			continue
		}
		info := whatlanggo.Detect(m)
		name := info.Lang.String()
		if name == "" {
			continue
		}
		counter.Add(name)
	}
	return counter.MostCommon(topN)
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
