package transcript

import (
	"fmt"
	"strings"
)

// Stitcher accumulates chunk results in the order they are added.
// Each added result is copied with its offset applied; the caller's
// slices are never modified.
type Stitcher struct {
	segments []Segment
	words    []Word
	duration float64
	parts    int
}

// NewStitcher returns an empty Stitcher.
func NewStitcher() *Stitcher {
	return &Stitcher{
		segments: []Segment{},
		words:    []Word{},
	}
}

// Add appends p, shifting every timestamp by p.Offset.
func (s *Stitcher) Add(p Part) {
	for _, seg := range p.Result.Segments {
		seg.Start += p.Offset
		seg.End += p.Offset
		if seg.Tokens != nil {
			seg.Tokens = append([]int(nil), seg.Tokens...)
		}
		s.segments = append(s.segments, seg)
	}
	for _, w := range p.Result.Words {
		w.Start += p.Offset
		w.End += p.Offset
		s.words = append(s.words, w)
	}
	s.duration += p.Result.Duration
	s.parts++
}

// Parts returns how many results were added.
func (s *Stitcher) Parts() int { return s.parts }

// Transcript builds the merged transcript. The text is the words joined
// by single spaces, so it always agrees with the word list.
func (s *Stitcher) Transcript(meta Metadata) Transcript {
	texts := make([]string, len(s.words))
	for i, w := range s.words {
		texts[i] = w.Word
	}
	return Transcript{
		Text:     strings.TrimSpace(strings.Join(texts, " ")),
		Segments: append([]Segment{}, s.segments...),
		Words:    append([]Word{}, s.words...),
		Duration: s.duration,
		Metadata: meta,
	}
}

// Stitch merges parts in the given order. Parts are not sorted.
func Stitch(parts []Part, meta Metadata) Transcript {
	s := NewStitcher()
	for _, p := range parts {
		s.Add(p)
	}
	return s.Transcript(meta)
}

// CheckOrder reports the first word or segment that ends before it
// starts, or whose start precedes the previous one. It does not reorder
// anything.
func (t Transcript) CheckOrder() error {
	for i, w := range t.Words {
		if w.Start > w.End {
			return fmt.Errorf("%w: word %d ends at %.3fs before its start %.3fs",
				ErrOutOfOrder, i, w.End, w.Start)
		}
	}
	for i, s := range t.Segments {
		if s.Start > s.End {
			return fmt.Errorf("%w: segment %d ends at %.3fs before its start %.3fs",
				ErrOutOfOrder, i, s.End, s.Start)
		}
	}
	for i := 1; i < len(t.Words); i++ {
		if t.Words[i].Start < t.Words[i-1].Start {
			return fmt.Errorf("%w: word %d starts at %.3fs before %.3fs",
				ErrOutOfOrder, i, t.Words[i].Start, t.Words[i-1].Start)
		}
	}
	for i := 1; i < len(t.Segments); i++ {
		if t.Segments[i].Start < t.Segments[i-1].Start {
			return fmt.Errorf("%w: segment %d starts at %.3fs before %.3fs",
				ErrOutOfOrder, i, t.Segments[i].Start, t.Segments[i-1].Start)
		}
	}
	return nil
}
