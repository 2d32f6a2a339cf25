// Package content derives text analytics from cleaned chat messages: word
// and bigram frequencies, a word cloud, noun-phrase keyphrases, LDA topics,
// sentiment and languages.
package content

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
)

// SentimentSamples is how many example messages each class keeps.
const SentimentSamples = 5

// Bigram is an adjacent token pair within one message.
type Bigram [2]string

func (b Bigram) String() string {
	return b[0] + " " + b[1]
}

type Options struct {
	TopN       int
	Topics     int
	Passes     int
	Seed       int64
	TopicTerms int

	// StopWords seeds the word cloud exclusion list; defaults to English.
	StopWords textclean.StopWords
	// NoCloud skips rendering the word cloud image.
	NoCloud   bool
}

func DefaultOptions() Options {
	return Options{TopN: 20, Topics: 5, Passes: 15, Seed: 100, TopicTerms: 10}
}

func (o *Options) fill() {
	d := DefaultOptions()
	if o.TopN <= 0 {
		o.TopN = d.TopN
	}
	if o.Topics <= 0 {
		o.Topics = d.Topics
	}
	if o.Passes <= 0 {
		o.Passes = d.Passes
	}
	if o.TopicTerms <= 0 {
		o.TopicTerms = d.TopicTerms
	}
	if o.StopWords == nil {
		o.StopWords = textclean.EnglishStopWords()
	}
}

type ClassCount struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

// SentimentSummary has one count per class, in SentimentClasses order, and
// up to SentimentSamples original messages per class in encounter order.
type SentimentSummary struct {
	Distribution []ClassCount        `json:"distribution"`
	Samples      map[string][]string `json:"samples"`
}

func (s SentimentSummary) Count(class string) int {
	for _, c := range s.Distribution {
		if c.Class == class {
			return c.Count
		}
	}
	return 0
}

type Result struct {
	TopWords      []Entry[string]  `json:"top_words"`
	TopBigrams    []Entry[Bigram]  `json:"top_bigrams"`
	TopKeyphrases []Entry[string]  `json:"top_keyphrases"`
	Topics        []Topic          `json:"topics"` // nil when no message has a cleaned token
	Sentiment     SentimentSummary `json:"sentiment"`
	Languages     []Entry[string]  `json:"languages"`

	WordCloud    []byte `json:"-"`
	WordCloudErr error  `json:"-"`
	KeyphraseErr error  `json:"-"`
}

// HasWordCloud reports whether an image was rendered.
func (r *Result) HasWordCloud() bool {
	return len(r.WordCloud) > 0
}

// Analyze runs every content analysis over records, which must already carry
// cleaned text. It sets each record's sentiment score and label.
func Analyze(records []parse.ChatRecord, opts Options) *Result {
	opts.fill()

	res := &Result{
		TopWords:      []Entry[string]{},
		TopBigrams:    []Entry[Bigram]{},
		TopKeyphrases: []Entry[string]{},
		Languages:     []Entry[string]{},
	}

	cleaned := make([]string, len(records))
	originals := make([]string, len(records))
	words := NewCounter[string]()
	bigrams := NewCounter[Bigram]()
	for i := range records {
		cleaned[i] = records[i].Cleaned
		originals[i] = records[i].Message
		toks := strings.Fields(records[i].Cleaned)
		for j, w := range toks {
			words.Add(w)
			if j > 0 {
				bigrams.Add(Bigram{toks[j-1], w})
			}
		}
	}
	res.TopWords = words.MostCommon(opts.TopN)
	res.TopBigrams = bigrams.MostCommon(opts.TopN)

	if !opts.NoCloud {
		exclude := make(map[string]struct{}, len(opts.StopWords)+len(textclean.CloudExclusions))
		for w := range opts.StopWords {
			exclude[w] = struct{}{}
		}
		for _, w := range textclean.CloudExclusions {
			exclude[w] = struct{}{}
		}
		res.WordCloud, res.WordCloudErr = RenderWordCloud(CloudFrequencies(cleaned, exclude), opts.Seed)
		if res.WordCloudErr != nil {
			log.Debug().Err(res.WordCloudErr).Msg("word cloud skipped")
		}
	}

	if len(records) > 0 {
		kp, err := Keyphrases(cleaned, opts.TopN)
		if err != nil {
			res.KeyphraseErr = err
			log.Warn().Err(err).Msg("keyphrase extraction failed")
		} else {
			res.TopKeyphrases = kp
		}
	}

	res.Topics = FitTopics(cleaned, LDAConfig{
		Topics: opts.Topics,
		Passes: opts.Passes,
		Seed:   opts.Seed,
		Terms:  opts.TopicTerms,
	})

	res.Sentiment = scoreSentiment(records)
	res.Languages = Languages(originals, -1)
	return res
}

func scoreSentiment(records []parse.ChatRecord) SentimentSummary {
	var scorer Scorer
	counts := make(map[string]int, len(SentimentClasses))
	sum := SentimentSummary{Samples: make(map[string][]string, len(SentimentClasses))}
	for _, c := range SentimentClasses {
		sum.Samples[c] = []string{}
	}
	for i := range records {
		r := &records[i]
		r.SentimentScore = scorer.Score(r.Cleaned)
		r.SentimentLabel = Classify(r.SentimentScore)
		counts[r.SentimentLabel]++
		if s := sum.Samples[r.SentimentLabel]; len(s) < SentimentSamples {
			sum.Samples[r.SentimentLabel] = append(s, r.Message)
		}
	}
	for _, c := range SentimentClasses {
		sum.Distribution = append(sum.Distribution, ClassCount{Class: c, Count: counts[c]})
	}
	return sum
}
