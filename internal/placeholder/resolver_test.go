package placeholder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eino_chat_bridge/internal/services"
	"eino_chat_bridge/internal/templates"
)

const orderJSON = `{"name":"Asha","phone":"9999999999","address":"MG Road, Kochi","items":[{"productName":"Carrot Seed Oil","quantity":1,"amount":420},{"productName":"Rose Dew Face Cleanser","quantity":1,"amount":80}],"totalAmount":500,"paymentMode":"%s"}`

func newTestResolver() *Resolver {
	catalog := templates.New(templates.Options{
		ProductList: services.NewProductService().ProductList(),
	})
	return NewResolver(catalog)
}

func orderToken(mode string) string {
	return "{{ORDER_CONFIRM:" + fmt.Sprintf(orderJSON, mode) + "}}"
}

func TestResolveGreeting(t *testing.T) {
	r := newTestResolver()

	named := r.Resolve("{{GREETING_TEMPLATE:John Doe}}")
	assert.Contains(t, named, "Hi John Doe,")
	assert.Contains(t, named, "Kumkumadi Brightening Cream - ₹689")

	noArg := r.Resolve("{{GREETING_TEMPLATE}}")
	emptyArg := r.Resolve("{{GREETING_TEMPLATE:}}")
	blankArg := r.Resolve("{{GREETING_TEMPLATE:   }}")

	assert.Equal(t, noArg, emptyArg)
	assert.Equal(t, noArg, blankArg)
	assert.Contains(t, noArg, "Hi there,")
}

func TestResolveConstants(t *testing.T) {
	r := newTestResolver()

	out := r.Resolve("Here is how to use it:{{USAGE_CARROT}}Anything else?")
	assert.Contains(t, out, "Apply 4-5 drops to clean skin")
	assert.NotContains(t, out, "{{")

	out = r.Resolve("{{PRODUCT_LIST}}")
	assert.Contains(t, out, "*🧖 HAIR CARE*")
}

func TestResolveLeavesUnknownTokens(t *testing.T) {
	r := newTestResolver()

	tests := []string{
		"{{MADE_UP_TOKEN}}",
		"before {{TOTALLY_INVENTED}} after",
		"{{PINCODE_MISMATCH}}",
		"{{PINCODE_MISMATCH:   }}",
		"{{lowercase_token}}",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, r.Resolve(in))
		})
	}
}

func TestResolvePincodeMismatch(t *testing.T) {
	r := newTestResolver()

	out := r.Resolve("{{PINCODE_MISMATCH: Kochi }}")
	assert.Contains(t, out, "doesn’t match the city/area: Kochi.")
}

func TestResolveOrderCOD(t *testing.T) {
	r := newTestResolver()

	out, orders := r.ResolveOrders("Please confirm:" + orderToken("cod"))
	require.Len(t, orders, 1)
	assert.Equal(t, "Asha", orders[0].Name)
	assert.Len(t, orders[0].Items, 2)

	assert.Contains(t, out, "📍 Name: Asha")
	assert.Contains(t, out, "• Carrot Seed Oil × 1 = ₹420")
	assert.Contains(t, out, "🔒 COD Charge: ₹30")
	assert.Contains(t, out, "💰 Total Amount: ₹530 (COD)")
	assert.Contains(t, out, "Please keep ₹530 ready at delivery")
	assert.NotContains(t, out, "Google Pay")
	assert.NotContains(t, out, "ORDER_CONFIRM")
}

func TestResolveOrderPrepaid(t *testing.T) {
	r := newTestResolver()

	out := r.Resolve(orderToken("upi"))
	assert.Contains(t, out, "💰 Total Amount: ₹500 (UPI)")
	assert.Contains(t, out, "Please pay ₹500 via Google Pay to: +91 9656190290")
	assert.Contains(t, out, "kindly send a screenshot")
	assert.NotContains(t, out, "COD Charge")
	assert.NotContains(t, out, "ready at delivery")
}

func TestResolveOrderMalformedIsVerbatim(t *testing.T) {
	r := newTestResolver()

	tests := map[string]string{
		"broken json":       `{{ORDER_CONFIRM:{"name":"Asha",}}}`,
		"missing mode":      `{{ORDER_CONFIRM:{"name":"Asha","totalAmount":500}}}`,
		"string total":      `{{ORDER_CONFIRM:{"totalAmount":"500","paymentMode":"cod"}}}`,
		"not an object":     `{{ORDER_CONFIRM:Asha}}`,
		"unterminated":      `{{ORDER_CONFIRM:{"paymentMode":"cod"`,
		"missing closing":   `{{ORDER_CONFIRM:{"paymentMode":"cod"} done`,
		"item without name": `{{ORDER_CONFIRM:{"items":[{"quantity":1}],"paymentMode":"cod"}}}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			out, orders := r.ResolveOrders(in)
			assert.Equal(t, in, out)
			assert.Empty(t, orders)
		})
	}
}

func TestResolveOrderBracesInsideStrings(t *testing.T) {
	r := newTestResolver()

	in := `{{ORDER_CONFIRM:{"name":"Asha","address":"Flat {2}, \"Rose\" Villa","totalAmount":100,"paymentMode":"gpay"}}}`
	out, orders := r.ResolveOrders(in)
	require.Len(t, orders, 1)
	assert.Equal(t, `Flat {2}, "Rose" Villa`, orders[0].Address)
	assert.Contains(t, out, `🏠 Address: Flat {2}, "Rose" Villa`)
}

func TestResolveMixedTokens(t *testing.T) {
	r := newTestResolver()

	in := "{{GREETING_TEMPLATE:Asha}}|{{CANCEL_TEMPLATE}}|{{UNKNOWN_THING}}|{{PINCODE_MISMATCH:Kozhikode}}|" +
		orderToken("cod") + "|" + orderToken("upi")
	out, orders := r.ResolveOrders(in)

	assert.Len(t, orders, 2)
	assert.Contains(t, out, "Hi Asha,")
	assert.Contains(t, out, "We grow the ingredients on our own farm")
	assert.Contains(t, out, "{{UNKNOWN_THING}}")
	assert.Contains(t, out, "city/area: Kozhikode.")
	assert.Contains(t, out, "₹530 (COD)")
	assert.Contains(t, out, "₹500 (UPI)")
}

func TestResolveIdempotentOnPlainText(t *testing.T) {
	r := newTestResolver()

	inputs := []string{
		"",
		"hello there",
		"Price is {5} and {{ not a token }}",
		"*bold* _italic_ ~strike~",
		"{single} braces {{}} and {{ORDER_CONFIRM:",
		"multi\nline\n\ntext",
	}
	for _, in := range inputs {
		once := r.Resolve(in)
		assert.Equal(t, in, once)
		assert.Equal(t, once, r.Resolve(once))
	}

	// fully resolved output carries no tokens and stays stable
	resolved := r.Resolve("{{GREETING_TEMPLATE:Asha}}" + orderToken("cod"))
	assert.Equal(t, resolved, r.Resolve(resolved))
}
