package conversation

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func history() []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage("prompt"),
		schema.UserMessage("u1"),
		schema.AssistantMessage("a1", nil),
		schema.UserMessage("u2"),
		schema.AssistantMessage("a2", nil),
		schema.UserMessage("u3"),
	}
}

func contents(messages []*schema.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.Content
	}
	return out
}

func TestWindowStrategyFullHistory(t *testing.T) {
	s := NewWindowStrategy(0)
	assert.Equal(t, contents(history()), contents(s.BuildContext(history())))
}

func TestWindowStrategyKeepsSystemPrompt(t *testing.T) {
	s := NewWindowStrategy(3)
	assert.Equal(t, []string{"prompt", "u2", "a2", "u3"}, contents(s.BuildContext(history())))
}

func TestWindowStrategySkipsLeadingAssistant(t *testing.T) {
	s := NewWindowStrategy(4)
	assert.Equal(t, []string{"prompt", "u2", "a2", "u3"}, contents(s.BuildContext(history())))
}

func TestWindowStrategyShortHistory(t *testing.T) {
	s := NewWindowStrategy(10)
	assert.Len(t, s.BuildContext(history()), 6)
	assert.Empty(t, s.BuildContext(nil))
}
