package chunking

import (
	"reflect"
	"strings"
	"testing"
)

func TestChunkEmptyInput(t *testing.T) {
	s := NewSplitter(1000, 200)
	if got := s.Chunk(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := s.Chunk("   \n\t  "); got != nil {
		t.Fatalf("expected nil for whitespace input, got %v", got)
	}
}

func TestChunkSingleShortSentence(t *testing.T) {
	s := NewSplitter(1000, 200)
	got := s.Chunk("Robots need sensors.")
	if len(got) != 1 || got[0] != "Robots need sensors" {
		t.Fatalf("unexpected chunks: %v", got)
	}
}

func TestChunkOverlapScenario(t *testing.T) {
	s := NewSplitter(40, 10)
	text := "Robots need sensors. Sensors measure the world. Control loops use sensor data."

	chunks := s.Chunk(text)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if len([]rune(c)) > 40 {
			t.Fatalf("chunk %d exceeds max size: %q", i, c)
		}
	}

	tail := string([]rune(chunks[0])[len([]rune(chunks[0]))-10:])
	if !strings.HasPrefix(chunks[1], tail) {
		t.Fatalf("chunk 1 %q does not start with trailing 10 runes of chunk 0 (%q)", chunks[1], tail)
	}
}

func TestChunkCoversEverySentence(t *testing.T) {
	s := NewSplitter(50, 10)
	sentences := []string{
		"The arm moves slowly",
		"Torque limits protect the joints",
		"Feedback keeps the pose stable",
		"Calibration happens at boot",
	}
	text := strings.Join(sentences, ". ") + "."

	joined := strings.Join(s.Chunk(text), " ")
	for _, sentence := range sentences {
		if !strings.Contains(joined, sentence) {
			t.Fatalf("sentence %q missing from chunk output", sentence)
		}
	}
}

func TestChunkHardSplitsOversizedSentence(t *testing.T) {
	s := NewSplitter(20, 5)
	long := strings.Repeat("x", 47)

	chunks := s.Chunk(long + ".")
	if len(chunks) != 4 {
		t.Fatalf("expected 4 hard-split windows (15+15+15+2), got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks[:3] {
		if len(c) != 15 {
			t.Fatalf("window %d has length %d, want 15", i, len(c))
		}
	}
	if chunks[3] != "xx" {
		t.Fatalf("unexpected final window %q", chunks[3])
	}
	if got := strings.Join(chunks, ""); got != long {
		t.Fatalf("hard-split windows do not reassemble the sentence")
	}
}

func TestChunkDeterministic(t *testing.T) {
	s := NewSplitter(40, 10)
	text := "One two three. Four five six! Seven eight nine? Ten eleven twelve."

	first := s.Chunk(text)
	second := s.Chunk(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("chunking is not deterministic: %v vs %v", first, second)
	}
}

func TestNewSplitterNormalizesBadParams(t *testing.T) {
	s := NewSplitter(0, -1)
	if s.ChunkSize != 1000 || s.Overlap != 0 {
		t.Fatalf("unexpected normalization: size=%d overlap=%d", s.ChunkSize, s.Overlap)
	}

	s = NewSplitter(100, 100)
	if s.Overlap != 25 {
		t.Fatalf("expected overlap clamped to size/4, got %d", s.Overlap)
	}
}
