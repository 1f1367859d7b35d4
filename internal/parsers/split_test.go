package parsers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

func conversationJSON(name string, textLen int) string {
	return `{"name":"` + name + `","chat_messages":[{"sender":"human","text":"` + strings.Repeat("a", textLen) + `"}]}`
}

func TestSplitExport_GroupsUnderLimit(t *testing.T) {
	// each compact conversation is a little over 100 bytes
	export := "[" + strings.Join([]string{
		conversationJSON("one", 50),
		conversationJSON("two", 50),
		conversationJSON("three", 50),
	}, ",") + "]"

	parts, err := SplitExport([]byte(export), 250)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	var first, second []map[string]any
	require.NoError(t, json.Unmarshal(parts[0], &first))
	require.NoError(t, json.Unmarshal(parts[1], &second))
	assert.Len(t, first, 2)
	assert.Len(t, second, 1)
	assert.Equal(t, "three", second[0]["name"])
}

func TestSplitExport_OversizeConversationAlone(t *testing.T) {
	export := `{"conversations":[` + strings.Join([]string{
		conversationJSON("small", 10),
		conversationJSON("huge", 500),
		conversationJSON("tail", 10),
	}, ",") + "]}"

	parts, err := SplitExport([]byte(export), 200)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	var huge []map[string]any
	require.NoError(t, json.Unmarshal(parts[1], &huge))
	require.Len(t, huge, 1)
	assert.Equal(t, "huge", huge[0]["name"])
}

func TestSplitExport_PartsAreParseable(t *testing.T) {
	export := "[" + conversationJSON("x", 5) + "]"

	parts, err := SplitExport([]byte(export), DefaultSplitBytes)
	require.NoError(t, err)
	require.Len(t, parts, 1)

	convs, err := NewClaude().Parse(t.Context(), parts[0], PartName(1))
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestSplitExport_Errors(t *testing.T) {
	_, err := SplitExport([]byte(`[]`), 0)
	assert.ErrorIs(t, err, ErrInvalidSplitSize)

	_, err = SplitExport([]byte(`nope`), 10)
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	parts, err := SplitExport([]byte(`[]`), 10)
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestPartName(t *testing.T) {
	assert.Equal(t, "claude-part-01.json", PartName(1))
	assert.Equal(t, "claude-part-12.json", PartName(12))
}
