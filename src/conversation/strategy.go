package conversation

import (
	"github.com/cloudwego/eino/schema"
)

type ContextStrategy interface {
	BuildContext(messages []*schema.Message) []*schema.Message
	GetMaxTurns() int
}

// ====================== Window ======================
// WindowStrategy keeps the system prompt plus the last maxTurns turns.
// maxTurns <= 0 keeps the full history.
type WindowStrategy struct {
	maxTurns int
}

func NewWindowStrategy(maxTurns int) *WindowStrategy {
	return &WindowStrategy{maxTurns: maxTurns}
}

func (s *WindowStrategy) GetMaxTurns() int {
	return s.maxTurns
}

func (s *WindowStrategy) BuildContext(messages []*schema.Message) []*schema.Message {
	if s.maxTurns <= 0 || len(messages) == 0 {
		return messages
	}

	var system []*schema.Message
	rest := messages
	if messages[0].Role == schema.System {
		system, rest = messages[:1], messages[1:]
	}

	// Trim to last N turns, never starting on an assistant turn
	recent := trimTail(rest, s.maxTurns)
	for len(recent) > 1 && recent[0].Role == schema.Assistant {
		recent = recent[1:]
	}

	out := make([]*schema.Message, 0, len(system)+len(recent))
	out = append(out, system...)
	return append(out, recent...)
}

// Helper function
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
