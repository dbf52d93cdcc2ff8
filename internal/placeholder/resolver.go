// Package placeholder expands the {{TOKEN}} markers a model embeds in its
// replies into catalog content.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"eino_chat_bridge/internal/templates"
	"eino_chat_bridge/pkg"
)

var (
	// {{GREETING_TEMPLATE}} and {{GREETING_TEMPLATE:Name}}
	greetingPattern = regexp.MustCompile(`\{\{GREETING_TEMPLATE(?::([^}]*))?\}\}`)
	// {{IDENTIFIER}}
	constantPattern = regexp.MustCompile(`\{\{([A-Z_]+)\}\}`)
	// {{PINCODE_MISMATCH:City}}
	pincodePattern = regexp.MustCompile(`\{\{PINCODE_MISMATCH:([^}]+)\}\}`)
)

// {{ORDER_CONFIRM:{...json...}}}
const orderPrefix = "{{" + templates.OrderConfirmID + ":"

// Resolver replaces placeholder tokens with catalog content. Tokens it cannot
// resolve are left in place, so Resolve never fails.
type Resolver struct {
	catalog  *templates.Catalog
	validate *validator.Validate
}

// NewResolver creates a resolver over the catalog
func NewResolver(catalog *templates.Catalog) *Resolver {
	return &Resolver{
		catalog:  catalog,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Resolve expands every recognizable token in text
func (r *Resolver) Resolve(text string) string {
	resolved, _ := r.ResolveOrders(text)
	return resolved
}

// ResolveOrders expands every recognizable token and also returns the orders
// that were confirmed by ORDER_CONFIRM tokens, in order of appearance.
func (r *Resolver) ResolveOrders(text string) (string, []pkg.Order) {
	if text == "" {
		return text, nil
	}

	text = r.resolveGreetings(text)
	text = r.resolveConstants(text)
	text = r.resolvePincodeMismatches(text)
	return r.resolveOrderConfirmations(text)
}

func (r *Resolver) resolveGreetings(text string) string {
	return greetingPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := greetingPattern.FindStringSubmatch(match)
		// an absent argument and an empty one both mean "default name"
		return r.catalog.Greeting(groups[1])
	})
}

func (r *Resolver) resolveConstants(text string) string {
	return constantPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := constantPattern.FindStringSubmatch(match)
		if snippet, ok := r.catalog.Constant(groups[1]); ok {
			return snippet
		}
		return match
	})
}

func (r *Resolver) resolvePincodeMismatches(text string) string {
	return pincodePattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := pincodePattern.FindStringSubmatch(match)
		city := strings.TrimSpace(groups[1])
		if city == "" {
			return match
		}
		return r.catalog.PincodeMismatch(city)
	})
}

func (r *Resolver) resolveOrderConfirmations(text string) (string, []pkg.Order) {
	if !strings.Contains(text, orderPrefix) {
		return text, nil
	}

	var (
		out    strings.Builder
		orders []pkg.Order
		rest   = text
	)
	for {
		i := strings.Index(rest, orderPrefix)
		if i < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:i])
		body := rest[i+len(orderPrefix):]

		if end, ok := objectEnd(body); ok && strings.HasPrefix(body[end:], "}}") {
			if order, err := r.decodeOrder(body[:end]); err == nil {
				out.WriteString(r.catalog.OrderConfirm(order))
				orders = append(orders, order)
				rest = body[end+2:]
				continue
			}
		}

		// malformed: keep the prefix verbatim and scan on after it
		out.WriteString(orderPrefix)
		rest = body
	}

	return out.String(), orders
}

func (r *Resolver) decodeOrder(raw string) (pkg.Order, error) {
	var order pkg.Order
	if err := sonic.UnmarshalString(raw, &order); err != nil {
		return pkg.Order{}, fmt.Errorf("failed to decode order payload: %w", err)
	}
	if err := r.validate.Struct(order); err != nil {
		return pkg.Order{}, fmt.Errorf("invalid order payload: %w", err)
	}
	return order, nil
}

// objectEnd returns the index just past the JSON object that starts at s[0].
// Braces inside string literals are ignored.
func objectEnd(s string) (int, bool) {
	if !strings.HasPrefix(s, "{") {
		return 0, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
