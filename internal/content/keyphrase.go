package content

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// excludedPhrases are export boilerplate, not content.
var excludedPhrases = map[string]struct{}{
	"media omitted": {},
	"security code": {},
	"tap learn":     {},
}

// messageBreak separates messages inside one tagging batch. Cleaned text has
// no punctuation, so the token can only come from the separator and it is
// never part of a chunk.
const messageBreak = " . "

const keyphraseBatch = 256

// chunkTag reports whether a Penn Treebank tag can be part of a noun-phrase
// chunk: a determiner, a plain adjective, or any noun.
func chunkTag(tag string) bool {
	return tag == "DT" || tag == "JJ" || strings.HasPrefix(tag, "NN")
}

// Keyphrases tags each cleaned message and counts maximal runs of chunk
// tokens that span at least two words.
func Keyphrases(cleaned []string, topN int) ([]Entry[string], error) {
	counter := NewCounter[string]()

	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		defer func() { batch = batch[:0] }()
		doc, err := prose.NewDocument(strings.Join(batch, messageBreak),
			prose.WithSegmentation(false),
			prose.WithExtraction(false))
		if err != nil {
			return err
		}
		var run []string
		emit := func() {
			if len(run) > 1 {
				phrase := strings.Join(run, " ")
				if _, skip := excludedPhrases[strings.ToLower(phrase)]; !skip {
					counter.Add(phrase)
				}
			}
			run = run[:0]
		}
		for _, tok := range doc.Tokens() {
			if tok.Text != "." && chunkTag(tok.Tag) {
				run = append(run, tok.Text)
				continue
			}
			emit()
		}
		emit()
		return nil
	}

	for _, msg := range cleaned {
		if strings.TrimSpace(msg) == "" {
			continue
		}
		batch = append(batch, msg)
		if len(batch) == keyphraseBatch {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return counter.MostCommon(topN), nil
}
