// Package templates holds the static reply catalog: constant snippets keyed by
// placeholder identifier plus generators for the parameterized ones.
package templates

import (
	"strconv"
	"strings"
	"text/template"

	"eino_chat_bridge/pkg"
)

// Placeholder identifiers with generator semantics.
const (
	GreetingID        = "GREETING_TEMPLATE"
	PincodeMismatchID = "PINCODE_MISMATCH"
	OrderConfirmID    = "ORDER_CONFIRM"
	ProductListID     = "PRODUCT_LIST"
)

const (
	DefaultCustomerName  = "there"
	DefaultCODCharge     = 30
	DefaultPaymentHandle = "+91 9656190290"
)

const greetingText = `
Hi {{.Name}},
Thank you for reaching out to Chembys 💛
Here's our product list for you:
{{.ProductList}}
would you like to know more about any specific product? or order any?
`

const pincodeMismatchText = `
It looks like the pincode doesn’t match the city/area: {{.}}.
Could you please double-check the pincode so we can ensure proper delivery? 😊
`

const orderConfirmText = `
Thanks for sharing your details!
📍 Name: {{.Order.Name}}
📞 Phone: {{.Order.Phone}}
🏠 Address: {{.Order.Address}}

🛍️ Order Summary:
{{range .Order.Items}}• {{.ProductName}} × {{money .Quantity}} = ₹{{money .Amount}}
{{end}}
{{if .COD}}🔒 COD Charge: ₹{{money .Charge}}{{end}}
💰 Total Amount: ₹{{money .Final}} ({{.Mode}})

{{if .COD}}No need to pay now. Please keep ₹{{money .Final}} ready at delivery 📦{{else}}Please pay ₹{{money .Final}} via Google Pay to: {{.Handle}}
Once done, kindly send a screenshot so we can confirm your order.{{end}}
`

var funcs = template.FuncMap{"money": FormatAmount}

var (
	greetingTmpl        = template.Must(template.New(GreetingID).Parse(greetingText))
	pincodeMismatchTmpl = template.Must(template.New(PincodeMismatchID).Parse(pincodeMismatchText))
	orderConfirmTmpl    = template.Must(template.New(OrderConfirmID).Funcs(funcs).Parse(orderConfirmText))
)

// Options configures a Catalog
type Options struct {
	ProductList   string
	DefaultName   string
	CODCharge     float64
	PaymentHandle string
	// Constants are merged over the built-in constant snippets.
	Constants map[string]string
}

// Catalog maps placeholder identifiers to reply content. It is immutable after
// construction and safe for concurrent use.
type Catalog struct {
	constants     map[string]string
	productList   string
	defaultName   string
	codCharge     float64
	paymentHandle string
}

// New builds a catalog from options, filling unset fields with defaults
func New(opts Options) *Catalog {
	c := &Catalog{
		constants:     make(map[string]string, len(builtinConstants)+len(opts.Constants)+1),
		productList:   opts.ProductList,
		defaultName:   opts.DefaultName,
		codCharge:     opts.CODCharge,
		paymentHandle: opts.PaymentHandle,
	}
	if strings.TrimSpace(c.defaultName) == "" {
		c.defaultName = DefaultCustomerName
	}
	if c.codCharge <= 0 {
		c.codCharge = DefaultCODCharge
	}
	if c.paymentHandle == "" {
		c.paymentHandle = DefaultPaymentHandle
	}

	for id, text := range builtinConstants {
		c.constants[id] = text
	}
	for id, text := range opts.Constants {
		c.constants[id] = text
	}
	c.constants[ProductListID] = c.productList

	return c
}

// Constant returns the static snippet for id. Generator identifiers are not
// constants.
func (c *Catalog) Constant(id string) (string, bool) {
	text, ok := c.constants[id]
	return text, ok
}

// ProductList returns the rendered product list
func (c *Catalog) ProductList() string {
	return c.productList
}

// DefaultName is the name used when a greeting has no usable customer name
func (c *Catalog) DefaultName() string {
	return c.defaultName
}

// Greeting renders the welcome message with the product list interpolated.
// A blank name falls back to the default name.
func (c *Catalog) Greeting(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.defaultName
	}
	return execute(greetingTmpl, struct {
		Name        string
		ProductList string
	}{Name: name, ProductList: c.productList})
}

// PincodeMismatch renders the pincode/city mismatch notice
func (c *Catalog) PincodeMismatch(city string) string {
	return execute(pincodeMismatchTmpl, strings.TrimSpace(city))
}

// IsCOD reports whether the payment mode is cash on delivery
func IsCOD(paymentMode string) bool {
	return strings.EqualFold(strings.TrimSpace(paymentMode), "cod")
}

// FinalAmount is the stated total plus the COD surcharge when it applies
func (c *Catalog) FinalAmount(order pkg.Order) float64 {
	if IsCOD(order.PaymentMode) {
		return order.TotalAmount + c.codCharge
	}
	return order.TotalAmount
}

// OrderConfirm renders the order summary with payment instructions
func (c *Catalog) OrderConfirm(order pkg.Order) string {
	return execute(orderConfirmTmpl, struct {
		Order  pkg.Order
		COD    bool
		Charge float64
		Final  float64
		Mode   string
		Handle string
	}{
		Order:  order,
		COD:    IsCOD(order.PaymentMode),
		Charge: c.codCharge,
		Final:  c.FinalAmount(order),
		Mode:   strings.ToUpper(strings.TrimSpace(order.PaymentMode)),
		Handle: c.paymentHandle,
	})
}

// FormatAmount prints an amount without trailing zeros: 530, 12.5
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func execute(tmpl *template.Template, data any) string {
	var b strings.Builder
	// templates are parsed at init and only reference fields that exist
	_ = tmpl.Execute(&b, data)
	return b.String()
}
