package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const promptYAML = `
role: You are the assistant of Chembys, talking to [Customer Name].
rules:
  - Be brief.
  - Reply in the customer's language.
tokens:
  greeting: Use {{GREETING_TEMPLATE:[Customer Name]}} to greet.
  order: Use {{ORDER_CONFIRM:{...}}} to confirm.
closing: |
  Thank you.
`

func TestFlattenPromptKeepsDocumentOrder(t *testing.T) {
	text, err := FlattenPrompt([]byte(promptYAML))
	require.NoError(t, err)

	assert.Equal(t,
		"You are the assistant of Chembys, talking to [Customer Name].\n\n"+
			"Be brief.\nReply in the customer's language.\n\n"+
			"Use {{GREETING_TEMPLATE:[Customer Name]}} to greet.\n\n"+
			"Use {{ORDER_CONFIRM:{...}}} to confirm.\n\n"+
			"Thank you.",
		text)
}

func TestFlattenPromptPlainScalar(t *testing.T) {
	text, err := FlattenPrompt([]byte("just a prompt\n"))
	require.NoError(t, err)
	assert.Equal(t, "just a prompt", text)

	_, err = FlattenPrompt([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = FlattenPrompt([]byte("key: [unclosed"))
	assert.Error(t, err)
}

func TestSystemPromptFor(t *testing.T) {
	prompt := SystemPrompt{Text: "Hello [Customer Name], again [Customer Name]."}
	assert.Equal(t, "Hello Asha, again Asha.", prompt.For("Asha"))

	custom := SystemPrompt{Text: "Hi {name}", Placeholder: "{name}"}
	assert.Equal(t, "Hi Ravi", custom.For("Ravi"))
}

func TestLoadSystemPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(promptYAML), 0644))

	prompt, err := LoadSystemPrompt(path, DefaultNamePlaceholder)
	require.NoError(t, err)
	assert.Contains(t, prompt.For("Asha"), "talking to Asha.")

	_, err = LoadSystemPrompt(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}

func TestBundledPromptLoads(t *testing.T) {
	prompt, err := LoadSystemPrompt(filepath.Join("..", "..", "prompts", "system_prompt.yaml"), DefaultNamePlaceholder)
	require.NoError(t, err)
	assert.Contains(t, prompt.Text, DefaultNamePlaceholder)
	assert.Contains(t, prompt.Text, "{{ORDER_CONFIRM:")
}
