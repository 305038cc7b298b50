package retrieval

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// lexicalIndex is an incrementally maintained BM25 index over chunk
// text. Keys are chunk ordinals (global insertion order), which also
// serve as the deterministic tie-breaker downstream. Not goroutine-safe
// on its own; the Indexer serializes access.
type lexicalIndex struct {
	k1 float64
	b  float64

	postings  map[string]map[int]int // term -> ord -> tf
	chunkLens map[int]int            // ord -> token count
	totalLen  int
}

func newLexicalIndex() *lexicalIndex {
	return &lexicalIndex{
		k1:        1.2,
		b:         0.75,
		postings:  make(map[string]map[int]int),
		chunkLens: make(map[int]int),
	}
}

// add indexes one chunk's text under ord. O(tokens).
func (ix *lexicalIndex) add(ord int, text string) {
	terms := tokenize(text)
	ix.chunkLens[ord] = len(terms)
	ix.totalLen += len(terms)
	for _, t := range terms {
		p, ok := ix.postings[t]
		if !ok {
			p = make(map[int]int)
			ix.postings[t] = p
		}
		p[ord]++
	}
}

// remove drops one chunk from the index.
func (ix *lexicalIndex) remove(ord int, text string) {
	terms := tokenize(text)
	ix.totalLen -= ix.chunkLens[ord]
	delete(ix.chunkLens, ord)
	for _, t := range terms {
		if p, ok := ix.postings[t]; ok {
			delete(p, ord)
			if len(p) == 0 {
				delete(ix.postings, t)
			}
		}
	}
}

func (ix *lexicalIndex) size() int { return len(ix.chunkLens) }

type scored struct {
	ord   int
	score float64
}

// search ranks chunks by BM25 against the query, best first, up to k.
func (ix *lexicalIndex) search(query string, k int) []scored {
	n := len(ix.chunkLens)
	if n == 0 || k <= 0 {
		return nil
	}
	avgLen := float64(ix.totalLen) / float64(n)

	acc := make(map[int]float64)
	for _, term := range uniqueTerms(tokenize(query)) {
		p, ok := ix.postings[term]
		if !ok {
			continue
		}
		df := float64(len(p))
		idf := math.Log(1 + (float64(n)-df+0.5)/(df+0.5))
		for ord, tf := range p {
			norm := 1 - ix.b + ix.b*float64(ix.chunkLens[ord])/avgLen
			acc[ord] += idf * float64(tf) * (ix.k1 + 1) / (float64(tf) + ix.k1*norm)
		}
	}

	out := make([]scored, 0, len(acc))
	for ord, s := range acc {
		out = append(out, scored{ord: ord, score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].ord < out[j].ord
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
