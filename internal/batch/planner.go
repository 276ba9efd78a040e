package batch

import "fmt"

// DefaultSize is the maximum number of strings sent in one request
const DefaultSize = 35

// Item pairs a source string with its 1-based position inside a batch
type Item struct {
	ID   int
	Text string
}

// Chunk is one batch of outstanding strings. Start and End are the
// half-open range the chunk covers in the outstanding list.
type Chunk struct {
	Index int
	Start int
	End   int
	Texts []string
}

// Items assigns positional ids to the chunk's strings. Ids restart at 1
// for every chunk.
func (c Chunk) Items() []Item {
	items := make([]Item, len(c.Texts))
	for i, text := range c.Texts {
		items[i] = Item{ID: i + 1, Text: text}
	}
	return items
}

// Outstanding returns the strings in uniques that have no key in existing,
// keeping their original order
func Outstanding(uniques []string, existing map[string]string) []string {
	var out []string
	for _, s := range uniques {
		if _, ok := existing[s]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Split partitions texts into consecutive chunks of at most size strings.
// Only the last chunk may be smaller.
func Split(texts []string, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}

	var chunks []Chunk
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Texts: texts[start:end],
		})
	}
	return chunks, nil
}

// Progress returns the completed percentage after processed of total
// strings, rounded and capped at 100
func Progress(processed, total int) int {
	if total <= 0 {
		return 100
	}
	processed = min(processed, total)
	return min(100, (processed*100+total/2)/total)
}
