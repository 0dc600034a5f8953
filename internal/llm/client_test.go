package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
	assert.Equal(t, "plain text", StripFences("  plain text  "))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
