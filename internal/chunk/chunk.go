// Package chunk splits normalized document text into bounded segments on
// natural boundaries for independent model calls.
package chunk

import "strings"

// boundaryFraction is how far into the window a sentence boundary must sit
// before we accept it as a cut point; earlier cuts would produce degenerate
// tiny chunks.
const boundaryFraction = 0.6

// Normalize collapses all runs of whitespace (spaces, tabs, newlines) into
// single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Split normalizes text and carves it into ordered chunks of at most maxChars
// characters. Cut points prefer the last ". " inside the window when it lies
// past 60% of the window, then the last plain space, then a hard cut at the
// window edge. Concatenating the chunks (ignoring boundary trimming)
// reconstructs the normalized text.
//
// A single token longer than maxChars forces a hard cut mid-token.
func Split(text string, maxChars int) []string {
	text = Normalize(text)
	if len(text) <= maxChars {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	i := 0
	for i < len(text) {
		j := min(i+maxChars, len(text))

		cut := strings.LastIndex(text[i:j], ". ")
		if cut == -1 || cut <= int(float64(maxChars)*boundaryFraction) {
			cut = strings.LastIndex(text[i:j], " ")
		}
		if cut <= 0 {
			cut = j - i
		}

		c := strings.TrimSpace(text[i : i+cut])
		if c != "" {
			chunks = append(chunks, c)
		}
		i += cut
	}
	return chunks
}
