package suggest

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/coder/hnsw"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const matcherMaxNeighbors = 16

// Embedder computes embedding vectors for short strings.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Match is a known tag ranked against the suggestion candidates.
type Match struct {
	Tag   string  `json:"tag"`
	Score float64 `json:"score"` // 0-1
}

// Matcher ranks the known-tag vocabulary by similarity to suggestion
// candidates. With an embedder the vocabulary is indexed in an HNSW graph
// and compared by cosine distance; without one (or when embedding fails) it
// falls back to Levenshtein ranking.
type Matcher struct {
	embedder Embedder

	mu      sync.RWMutex
	graph   *hnsw.Graph[string]
	vectors map[string][]float32
}

// NewMatcher creates a matcher. embedder may be nil.
func NewMatcher(embedder Embedder) *Matcher {
	return &Matcher{
		embedder: embedder,
		vectors:  make(map[string][]float32),
	}
}

// Rank returns known tags similar to the candidates, best first, scored in
// [0, 1]. Tags in the exclude set (already on the item) are left out.
func (m *Matcher) Rank(ctx context.Context, candidates []Candidate, knownTags []string, exclude map[string]struct{}) []Match {
	vocab := make([]string, 0, len(knownTags))
	for _, tag := range knownTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, skip := exclude[tag]; skip {
			continue
		}
		vocab = append(vocab, tag)
	}
	if len(vocab) == 0 || len(candidates) == 0 {
		return nil
	}

	var best map[string]float64
	if m.embedder != nil {
		scores, err := m.rankByEmbedding(ctx, candidates, vocab)
		if err != nil {
			log.Printf("could not rank tags by embedding, falling back to edit distance: %v", err)
		} else {
			best = scores
		}
	}
	if best == nil {
		best = rankByEditDistance(candidates, vocab)
	}

	out := make([]Match, 0, len(best))
	for tag, score := range best {
		out = append(out, Match{Tag: tag, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func (m *Matcher) rankByEmbedding(ctx context.Context, candidates []Candidate, vocab []string) (map[string]float64, error) {
	if err := m.ensureIndexed(ctx, vocab); err != nil {
		return nil, err
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	queries, err := m.embedder.EmbedTexts(ctx, names)
	if err != nil {
		return nil, err
	}

	inVocab := make(map[string]struct{}, len(vocab))
	for _, tag := range vocab {
		inVocab[tag] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	best := make(map[string]float64)
	for i, query := range queries {
		neighbors := m.graph.Search(query, matcherMaxNeighbors)
		for _, n := range neighbors {
			if _, ok := inVocab[n.Key]; !ok {
				continue
			}
			vec, ok := m.vectors[n.Key]
			if !ok {
				continue
			}
			similarity := 1 - float64(hnsw.CosineDistance(query, vec))
			if similarity < 0 {
				similarity = 0
			}
			score := candidates[i].Confidence * similarity
			if score > best[n.Key] {
				best[n.Key] = score
			}
		}
	}
	return best, nil
}

// ensureIndexed rebuilds the HNSW graph when the vocabulary changed since
// the last build. Embeddings of tags already in the index are reused.
func (m *Matcher) ensureIndexed(ctx context.Context, vocab []string) error {
	m.mu.RLock()
	missing := make([]string, 0)
	for _, tag := range vocab {
		if _, ok := m.vectors[tag]; !ok {
			missing = append(missing, tag)
		}
	}
	upToDate := len(missing) == 0 && m.graph != nil
	m.mu.RUnlock()

	if upToDate {
		return nil
	}

	var fetched [][]float32
	if len(missing) > 0 {
		var err error
		fetched, err = m.embedder.EmbedTexts(ctx, missing)
		if err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tag := range missing {
		m.vectors[tag] = fetched[i]
	}

	g := hnsw.NewGraph[string]()
	g.M = matcherMaxNeighbors
	g.Ml = 1.0 / float64(matcherMaxNeighbors)
	g.Distance = hnsw.CosineDistance
	for tag, vec := range m.vectors {
		if len(vec) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(tag, vec))
	}
	m.graph = g
	return nil
}

// rankByEditDistance scores vocabulary tags by normalized Levenshtein rank
// against each candidate. A perfect match scores the candidate's confidence;
// the score decays with edit distance.
func rankByEditDistance(candidates []Candidate, vocab []string) map[string]float64 {
	best := make(map[string]float64)
	for _, c := range candidates {
		for _, rank := range fuzzy.RankFindNormalizedFold(c.Name, vocab) {
			score := c.Confidence / float64(1+rank.Distance)
			if score > best[rank.Target] {
				best[rank.Target] = score
			}
		}
	}
	return best
}
