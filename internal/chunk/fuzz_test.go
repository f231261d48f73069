package chunk

import (
	"strings"
	"testing"
)

// FuzzSplit verifies the lossless round-trip invariant for arbitrary
// inputs and limits.
func FuzzSplit(f *testing.F) {
	f.Add("", 1)
	f.Add("hello world", 4)
	f.Add(strings.Repeat("é", 50), 3)
	f.Add(strings.Repeat("x", 9000), 4000)

	f.Fuzz(func(t *testing.T, text string, limit int) {
		if limit < 1 {
			limit = 1
		}

		chunks := Split(text, limit)

		if text == "" && chunks != nil {
			t.Fatalf("Split(%q, %d) = %v, want nil", text, limit, chunks)
		}

		total := 0
		for i, c := range chunks {
			if len(c) > limit {
				t.Fatalf("chunk %d length %d exceeds limit %d", i, len(c), limit)
			}
			if len(c) == 0 {
				t.Fatalf("chunk %d is empty", i)
			}
			total += len(c)
		}
		if total != len(text) {
			t.Fatalf("chunks cover %d bytes, input has %d", total, len(text))
		}

		if got := strings.Join(chunks, ""); got != text {
			t.Fatalf("round trip mismatch: got %q, want %q", got, text)
		}

		if text != "" {
			want := (len(text) + limit - 1) / limit
			if len(chunks) != want {
				t.Fatalf("chunk count %d, want ceil(%d/%d) = %d", len(chunks), len(text), limit, want)
			}
		}
	})
}
