package content

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Topic is one fitted topic with its strongest terms.
type Topic struct {
	Label string      `json:"topic"`
	Words string      `json:"words"`
	Terms []TopicTerm `json:"terms"`
}

type TopicTerm struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// LDAConfig controls the topic model.
type LDAConfig struct {
	Topics int
	Passes int
	Seed   int64
	Terms  int // terms reported per topic
}

// sweepsPerPass converts corpus passes into Gibbs sweeps.
const sweepsPerPass = 20

// FitTopics runs latent Dirichlet allocation by collapsed Gibbs sampling
// over whitespace-tokenized documents. Empty documents are ignored; it
// returns nil when no document has a token. The same input and seed always
// give the same topics.
func FitTopics(docs []string, cfg LDAConfig) []Topic {
	if cfg.Topics <= 0 {
		cfg.Topics = 5
	}
	if cfg.Passes <= 0 {
		cfg.Passes = 15
	}
	if cfg.Terms <= 0 {
		cfg.Terms = 10
	}

	vocab := make(map[string]int)
	var words []string
	var corpus [][]int
	for _, d := range docs {
		toks := strings.Fields(d)
		if len(toks) == 0 {
			continue
		}
		ids := make([]int, len(toks))
		for i, w := range toks {
			id, ok := vocab[w]
			if !ok {
				id = len(words)
				vocab[w] = id
				words = append(words, w)
			}
			ids[i] = id
		}
		corpus = append(corpus, ids)
	}
	if len(corpus) == 0 {
		return nil
	}

	K, V := cfg.Topics, len(words)
	alpha := 1.0 / float64(K)
	eta := 1.0 / float64(K)
	rng := rand.New(rand.NewSource(cfg.Seed))

	nkw := make([][]int, K)
	for k := range nkw {
		nkw[k] = make([]int, V)
	}
	nk := make([]int, K)
	ndk := make([][]int, len(corpus))
	z := make([][]int, len(corpus))
	for d, doc := range corpus {
		ndk[d] = make([]int, K)
		z[d] = make([]int, len(doc))
		for i, w := range doc {
			k := rng.Intn(K)
			z[d][i] = k
			ndk[d][k]++
			nkw[k][w]++
			nk[k]++
		}
	}

	p := make([]float64, K)
	veta := float64(V) * eta
	for sweep := 0; sweep < cfg.Passes*sweepsPerPass; sweep++ {
		for d, doc := range corpus {
			for i, w := range doc {
				k := z[d][i]
				ndk[d][k]--
				nkw[k][w]--
				nk[k]--

				total := 0.0
				for t := 0; t < K; t++ {
					total += (float64(ndk[d][t]) + alpha) * (float64(nkw[t][w]) + eta) / (float64(nk[t]) + veta)
					p[t] = total
				}
				u := rng.Float64() * total
				k = sort.SearchFloat64s(p, u)
				if k >= K {
					k = K - 1
				}

				z[d][i] = k
				ndk[d][k]++
				nkw[k][w]++
				nk[k]++
			}
		}
	}

	topics := make([]Topic, K)
	for k := 0; k < K; k++ {
		terms := make([]TopicTerm, V)
		denom := float64(nk[k]) + veta
		for w := 0; w < V; w++ {
			terms[w] = TopicTerm{Word: words[w], Weight: (float64(nkw[k][w]) + eta) / denom}
		}
		// vocabulary order breaks ties
		sort.SliceStable(terms, func(i, j int) bool { return terms[i].Weight > terms[j].Weight })
		if len(terms) > cfg.Terms {
			terms = terms[:cfg.Terms]
		}
		topics[k] = Topic{
			Label: fmt.Sprintf("Topic %d", k+1),
			Words: formatTerms(terms),
			Terms: terms,
		}
	}
	return topics
}

// formatTerms renders terms as `0.045*"word" + 0.030*"other"`.
func formatTerms(terms []TopicTerm) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fmt.Sprintf("%.3f*%q", t.Weight, t.Word)
	}
	return strings.Join(parts, " + ")
}
