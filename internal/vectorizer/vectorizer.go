package vectorizer

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Default fitting parameters.
const (
	DefaultMaxFeatures = 5000
	DefaultMaxDF       = 0.8
)

// ErrEmptyCorpus is returned by Fit when no document produces any term.
var ErrEmptyCorpus = errors.New("vectorizer: empty corpus")

// tokenRe matches word tokens of at least two characters. Single-character
// tokens carry no retrieval signal and are discarded.
var tokenRe = regexp.MustCompile(`\w\w+`)

// Config controls vocabulary construction.
type Config struct {
	// MaxFeatures caps the vocabulary size, keeping the terms with the
	// highest total corpus frequency. Zero means DefaultMaxFeatures.
	MaxFeatures int
	// MaxDF removes terms appearing in more than this fraction of
	// documents. Zero means DefaultMaxDF.
	MaxDF float64
}

func (c Config) withDefaults() Config {
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = DefaultMaxFeatures
	}
	if c.MaxDF <= 0 {
		c.MaxDF = DefaultMaxDF
	}
	return c
}

// Model is a fitted TF-IDF vectorizer. It is immutable after Fit and safe
// for concurrent Transform calls. The exported fields make the model
// JSON-serializable for the on-disk cache.
type Model struct {
	// Vocabulary maps each term (unigram or space-joined bigram) to its
	// column index. Columns are assigned in lexicographic term order so
	// fitting the same corpus always yields the same model.
	Vocabulary map[string]int `json:"vocabulary"`
	// IDF holds the smoothed inverse document frequency per column.
	IDF []float64 `json:"idf"`
	// NumDocs is the size of the fitted corpus.
	NumDocs int `json:"num_docs"`
}

// terms tokenizes text into lowercase unigrams and bigrams with stop words
// removed. Bigrams join the surviving tokens, so a stop word between two
// content words does not break their adjacency.
func terms(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; !stop {
			tokens = append(tokens, tok)
		}
	}

	out := make([]string, 0, len(tokens)*2)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// Fit builds a Model from the corpus. Terms appearing in more than
// cfg.MaxDF of the documents are pruned, then the cfg.MaxFeatures terms
// with the highest total corpus frequency are kept.
func Fit(corpus []string, cfg Config) (*Model, error) {
	cfg = cfg.withDefaults()

	docFreq := make(map[string]int)
	totalFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range terms(doc) {
			totalFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}
	if len(docFreq) == 0 {
		return nil, ErrEmptyCorpus
	}

	n := len(corpus)
	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if float64(df)/float64(n) > cfg.MaxDF {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return nil, ErrEmptyCorpus
	}

	if len(kept) > cfg.MaxFeatures {
		// Highest total frequency first; ties resolve alphabetically
		// so truncation is deterministic.
		sort.Slice(kept, func(i, j int) bool {
			fi, fj := totalFreq[kept[i]], totalFreq[kept[j]]
			if fi != fj {
				return fi > fj
			}
			return kept[i] < kept[j]
		})
		kept = kept[:cfg.MaxFeatures]
	}
	sort.Strings(kept)

	m := &Model{
		Vocabulary: make(map[string]int, len(kept)),
		IDF:        make([]float64, len(kept)),
		NumDocs:    n,
	}
	for i, term := range kept {
		m.Vocabulary[term] = i
		m.IDF[i] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}
	return m, nil
}

// Transform maps texts onto the fitted vocabulary. Each row is a sublinear
// TF-IDF vector normalized to unit length; terms outside the vocabulary are
// ignored. A text with no in-vocabulary terms yields a zero vector.
func (m *Model) Transform(texts []string) [][]float32 {
	rows := make([][]float32, len(texts))
	for i, text := range texts {
		rows[i] = m.transformOne(text)
	}
	return rows
}

// TransformOne vectorizes a single text, typically a query.
func (m *Model) TransformOne(text string) []float32 {
	return m.transformOne(text)
}

func (m *Model) transformOne(text string) []float32 {
	counts := make(map[int]int)
	for _, term := range terms(text) {
		if col, ok := m.Vocabulary[term]; ok {
			counts[col]++
		}
	}

	vec := make([]float32, len(m.IDF))
	var norm float64
	for col, tf := range counts {
		w := (1 + math.Log(float64(tf))) * m.IDF[col]
		vec[col] = float32(w)
		norm += w * w
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for col := range counts {
			vec[col] = float32(float64(vec[col]) * inv)
		}
	}
	return vec
}

// CosineSimilarity computes the cosine of the angle between two vectors of
// equal length. Transform output is unit-normalized, so for those vectors
// this reduces to a dot product, but the general form keeps it correct for
// unnormalized input too.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
