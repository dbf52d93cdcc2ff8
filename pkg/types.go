package pkg

import (
	"time"
)

// Core types shared across the chat bridge

// Conversation roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage represents a message in conversation history
type ConversationMessage struct {
	Role    string `json:"role"`    // user, assistant, system
	Content string `json:"content"`
}

// SystemMessage, UserMessage and AssistantMessage mirror the eino schema helpers
func SystemMessage(content string) ConversationMessage {
	return ConversationMessage{Role: RoleSystem, Content: content}
}

func UserMessage(content string) ConversationMessage {
	return ConversationMessage{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) ConversationMessage {
	return ConversationMessage{Role: RoleAssistant, Content: content}
}

// OrderItem is a single line of an ORDER_CONFIRM payload
type OrderItem struct {
	ProductName string  `json:"productName" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

// Order is the structured argument of an ORDER_CONFIRM placeholder
type Order struct {
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	Items       []OrderItem `json:"items" validate:"dive"`
	TotalAmount float64     `json:"totalAmount" validate:"gte=0"`
	PaymentMode string      `json:"paymentMode" validate:"required"`
}

// OrderEntry is an order as recorded in the order ledger
type OrderEntry struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	ExchangeID  string    `json:"exchange_id"`
	Timestamp   time.Time `json:"timestamp"`
	Order       Order     `json:"order"`
	FinalAmount float64   `json:"final_amount"`
}
