package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"agent_response","data":"hello","files":[{"id":"f-1","original_name":"a.pdf"}]}`))
	require.NoError(t, err)
	assert.Equal(t, MessageType("agent_response"), msg.Type)
	assert.Equal(t, "hello", msg.Data)
	require.Len(t, msg.Files, 1)
	assert.Equal(t, "a.pdf", msg.Files[0].DisplayName())
	assert.NotEmpty(t, msg.Raw)

	structured, err := ParseMessage([]byte(`{"type":"agent_response","data":{"step":1}}`))
	require.NoError(t, err)
	assert.Empty(t, structured.Data)

	_, err = ParseMessage([]byte("not json"))
	assert.Error(t, err)
}

func TestMessageContent(t *testing.T) {
	nested, err := ParseMessage([]byte(`{"type":"agent_response","response":{"response":{"response":"final answer"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "final answer", nested.Content())

	structured, err := ParseMessage([]byte(`{"type":"tool","data":{"k":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"type\": \"tool\",\n  \"data\": {\n    \"k\": 1\n  }\n}", structured.Content())

	raw := RawTextMessage([]byte(`{"type":`))
	assert.Equal(t, `{"type":`, raw.Content())
	assert.False(t, raw.IsUser())

	user := Message{Type: MessageTypeUser, Data: "hi"}
	assert.Equal(t, "hi", user.Content())
	assert.True(t, user.IsUser())
}

func TestAttachedFileState(t *testing.T) {
	assert.True(t, AttachedFile{RemoteID: "f-1"}.Ready())
	assert.False(t, AttachedFile{RemoteID: "f-1", Loading: true}.Ready())
	assert.True(t, AttachedFile{Error: "boom"}.Failed())
	assert.False(t, AttachedFile{Error: "boom", Loading: true}.Failed())
}

func TestProviderConfig(t *testing.T) {
	var nilConfig *ProviderConfig
	assert.False(t, nilConfig.Usable())
	assert.False(t, (&ProviderConfig{Provider: "openai"}).Usable())
	assert.Equal(t, "gpt-4o", (&ProviderConfig{Configs: []ModelConfig{{Name: "gpt-4o"}, {Name: "other"}}}).LLMName())
}
