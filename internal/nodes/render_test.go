package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eino_chat_bridge/internal/placeholder"
	"eino_chat_bridge/internal/services"
	"eino_chat_bridge/internal/templates"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	catalog := templates.New(templates.Options{
		ProductList: services.NewProductService().ProductList(),
	})
	r, err := NewRenderer(context.Background(), placeholder.NewResolver(catalog))
	require.NoError(t, err)
	return r
}

func TestRenderResolvesThenSanitizes(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render(context.Background(), "## Usage\n{{USAGE_CARROT}}\nSee [site](https://chembys.in)")
	require.NoError(t, err)

	assert.NotContains(t, out.Text, "##")
	assert.NotContains(t, out.Text, "{{USAGE_CARROT}}")
	assert.Contains(t, out.Text, "Usage\n")
	assert.Contains(t, out.Text, "Apply 4-5 drops")
	assert.Contains(t, out.Text, "site: https://chembys.in")
	assert.Empty(t, out.Orders)
}

func TestRenderGreeting(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render(context.Background(), "{{GREETING_TEMPLATE:Asha}}")
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Hi Asha,")
	assert.Contains(t, out.Text, "*🧖 HAIR CARE*")
}

func TestRenderCollectsOrders(t *testing.T) {
	r := newTestRenderer(t)

	raw := `Done! {{ORDER_CONFIRM:{"name":"Asha","phone":"1","address":"Kochi","items":[{"productName":"Carrot Seed Oil","quantity":1,"amount":500}],"totalAmount":500,"paymentMode":"cod"}}}`
	out, err := r.Render(context.Background(), raw)
	require.NoError(t, err)

	require.Len(t, out.Orders, 1)
	assert.Equal(t, "cod", out.Orders[0].PaymentMode)
	assert.Contains(t, out.Text, "₹530")
}

func TestRenderKeepsUnknownTokens(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render(context.Background(), "x {{NOT_A_THING}} y")
	require.NoError(t, err)
	assert.Equal(t, "x {{NOT_A_THING}} y", out.Text)
}
