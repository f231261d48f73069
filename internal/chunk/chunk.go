// Package chunk splits unbounded text into size-limited segments.
//
// Both outbound transports impose hard content limits (Telegram messages,
// Notion paragraph blocks). Split is the single primitive behind both:
// a positional byte split whose segments concatenate back to the exact
// original text.
package chunk

// Split divides text into consecutive segments of at most limit bytes.
//
// The split is purely positional: it makes no attempt to respect word,
// line, or rune boundaries. Concatenating the returned segments in order
// reproduces text byte for byte. Empty text yields nil, so callers never
// emit an empty message or block.
//
// Split panics if limit < 1; the limits in this program are compile-time
// constants, so a non-positive limit is a programming error.
func Split(text string, limit int) []string {
	if limit < 1 {
		panic("chunk: limit must be >= 1")
	}
	if text == "" {
		return nil
	}

	chunks := make([]string, 0, (len(text)+limit-1)/limit)
	for start := 0; start < len(text); start += limit {
		end := start + limit
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
