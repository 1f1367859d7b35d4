package parsers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultSplitBytes is the default upper bound for one split part.
const DefaultSplitBytes = 3 * 1024 * 1024

// ErrInvalidSplitSize is returned for a non-positive part size.
var ErrInvalidSplitSize = errors.New("split size must be positive")

// PartName returns the file name of the i-th part, counting from 1.
func PartName(i int) string {
	return fmt.Sprintf("claude-part-%02d.json", i)
}

// SplitExport divides a Claude export into JSON arrays whose conversations
// together stay under maxBytes. A conversation larger than maxBytes is
// written to a part of its own. Sizes are measured on compact JSON; parts
// are indented.
func SplitExport(content []byte, maxBytes int) ([][]byte, error) {
	if maxBytes <= 0 {
		return nil, ErrInvalidSplitSize
	}

	items, err := sniffConversations(content)
	if err != nil {
		return nil, err
	}

	var (
		parts [][]byte
		batch []json.RawMessage
		size  int
	)

	save := func(convs []json.RawMessage) error {
		if len(convs) == 0 {
			return nil
		}
		out, err := json.MarshalIndent(convs, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding part %d: %w", len(parts)+1, err)
		}
		parts = append(parts, out)
		return nil
	}

	for _, item := range items {
		var compact bytes.Buffer
		if err := json.Compact(&compact, item); err != nil {
			return nil, domainMalformed(err)
		}
		conv := json.RawMessage(compact.Bytes())
		n := len(conv)

		if n > maxBytes {
			if err := save(batch); err != nil {
				return nil, err
			}
			batch, size = nil, 0
			if err := save([]json.RawMessage{conv}); err != nil {
				return nil, err
			}
			continue
		}

		if size+n > maxBytes {
			if err := save(batch); err != nil {
				return nil, err
			}
			batch, size = nil, 0
		}
		batch = append(batch, conv)
		size += n
	}

	if err := save(batch); err != nil {
		return nil, err
	}
	return parts, nil
}
