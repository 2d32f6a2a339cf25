// Package textclean turns raw chat messages into lower-case lemmatized
// token strings for content analysis.
package textclean

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/rs/zerolog/log"

	"github.com/Zuo-Peng/wachat-insight/internal/parse"
)

var (
	urlRe       = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	nonLetterRe = regexp.MustCompile(`[^a-zA-Z]`)
)

var (
	lemmaOnce  sync.Once
	lemmatizer *golem.Lemmatizer
	lemmaErr   error
)

// loadLemmatizer loads the English dictionary once per process.
func loadLemmatizer() (*golem.Lemmatizer, error) {
	lemmaOnce.Do(func() {
		lemmatizer, lemmaErr = golem.New(en.New())
		if lemmaErr == nil {
			log.Debug().Msg("english lemmatizer loaded")
		}
	})
	return lemmatizer, lemmaErr
}

// Cleaner normalizes message text. It is safe for concurrent use.
type Cleaner struct {
	stop  StopWords
	lemma *golem.Lemmatizer
}

// NewCleaner loads the lemmatizer and builds the stop word set. extra words
// are added to the English list.
func NewCleaner(extra []string) (*Cleaner, error) {
	lem, err := loadLemmatizer()
	if err != nil {
		return nil, fmt.Errorf("load lemmatizer: %w", err)
	}
	lowered := make([]string, 0, len(extra))
	for _, w := range extra {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lowered = append(lowered, w)
		}
	}
	return &Cleaner{stop: EnglishStopWords(lowered...), lemma: lem}, nil
}

// StopWords exposes the set the cleaner drops.
func (c *Cleaner) StopWords() StopWords {
	return c.stop
}

// Clean removes URLs and non-letters, lower-cases, drops stop words and
// one-letter tokens, and lemmatizes what is left. Cleaning cleaned text
// returns it unchanged.
func (c *Cleaner) Clean(msg string) string {
	msg = urlRe.ReplaceAllString(msg, "")
	msg = nonLetterRe.ReplaceAllString(msg, " ")
	msg = strings.ToLower(msg)

	fields := strings.Fields(msg)
	out := fields[:0]
	for _, w := range fields {
		if len(w) <= 1 || c.stop.Has(w) {
			continue
		}
		l := c.lemmatize(w)
		if len(l) <= 1 || c.stop.Has(l) {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, " ")
}

// lemmatize only accepts a lemma that is itself a fixed point and would
// survive tokenization unchanged.
func (c *Cleaner) lemmatize(w string) string {
	l := c.lemma.Lemma(w)
	if l == w || !isLowerASCII(l) {
		return w
	}
	if c.lemma.Lemma(l) != l {
		return w
	}
	return l
}

func isLowerASCII(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// Apply fills Cleaned on every record.
func (c *Cleaner) Apply(records []parse.ChatRecord) {
	for i := range records {
		records[i].Cleaned = c.Clean(records[i].Message)
	}
}
