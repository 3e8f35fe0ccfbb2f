package chunking

import (
	"regexp"
	"strings"
)

var sentenceDelim = regexp.MustCompile(`[.!?]+`)

// Splitter cuts document text into sentence-aligned chunks of at most
// ChunkSize runes, seeding each new chunk with the trailing Overlap runes of
// the previous one so context survives chunk boundaries.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Chunk splits text on sentence-terminal punctuation and greedily packs
// sentences into chunks. A single sentence longer than ChunkSize is
// hard-split into fixed windows of ChunkSize-Overlap runes. Deterministic;
// empty or all-whitespace input yields nil.
func (s *Splitter) Chunk(text string) []string {
	var chunks []string
	var current []rune

	for _, sentence := range sentenceDelim.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		runes := []rune(sentence)

		if len(current)+1+len(runes) <= s.ChunkSize {
			current = append(current, ' ')
			current = append(current, runes...)
			continue
		}

		if len(current) > 0 {
			if chunk := strings.TrimSpace(string(current)); chunk != "" {
				chunks = append(chunks, chunk)
			}
		}

		if len(runes) > s.ChunkSize {
			chunks = append(chunks, s.hardSplit(runes)...)
			current = nil
			continue
		}

		current = s.seedWithOverlap(chunks, runes)
	}

	if len(current) > 0 {
		if chunk := strings.TrimSpace(string(current)); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// hardSplit emits fixed windows of ChunkSize-Overlap runes for a sentence
// that cannot fit any chunk on its own.
func (s *Splitter) hardSplit(sentence []rune) []string {
	window := s.ChunkSize - s.Overlap
	if window <= 0 {
		window = s.ChunkSize
	}

	out := make([]string, 0, len(sentence)/window+1)
	for start := 0; start < len(sentence); start += window {
		end := start + window
		if end > len(sentence) {
			end = len(sentence)
		}
		out = append(out, string(sentence[start:end]))
	}
	return out
}

// seedWithOverlap starts a fresh buffer with the tail of the last emitted
// chunk, when that chunk is long enough to donate one.
func (s *Splitter) seedWithOverlap(chunks []string, sentence []rune) []rune {
	if len(chunks) == 0 {
		return append([]rune{}, sentence...)
	}
	last := []rune(chunks[len(chunks)-1])
	if len(last) <= s.Overlap {
		return append([]rune{}, sentence...)
	}

	seed := append([]rune{}, last[len(last)-s.Overlap:]...)
	seed = append(seed, ' ')
	return append(seed, sentence...)
}
