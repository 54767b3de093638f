package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var funcs = template.FuncMap{
	"money": func(v float64) string {
		return printer.Sprintf("$%.2f", v)
	},
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
}

var (
	quotationTmpl = template.Must(template.New("quotation").Funcs(funcs).Parse(`
<h2>Your Quotation {{.Number}}</h2>
<p>Dear {{.CustomerName}},</p>
<p>Thank you for your enquiry. Please find your quotation for <strong>{{.ServiceName}}</strong> below.</p>
<table>
  <tr><td>Travel dates</td><td>{{date .StartDate}} &ndash; {{date .EndDate}}</td></tr>
  <tr><td>Party</td><td>{{.Adults}} adult(s){{if .Children}}, {{.Children}} child(ren){{end}}{{if .Infants}}, {{.Infants}} infant(s){{end}}</td></tr>
  <tr><td>Subtotal</td><td>{{money .Subtotal}}</td></tr>
  {{if .DiscountAmount}}<tr><td>Discount</td><td>-{{money .DiscountAmount}}</td></tr>{{end}}
  <tr><td><strong>Total</strong></td><td><strong>{{money .TotalAmount}}</strong></td></tr>
  <tr><td>Deposit due</td><td>{{money .DepositAmount}}</td></tr>
  <tr><td>Balance</td><td>{{money .BalanceAmount}}</td></tr>
</table>
{{if .IncludedServices}}
<h3>What's included</h3>
<ul>{{range .IncludedServices}}<li>{{.}}</li>{{end}}</ul>
{{end}}
<p>This quotation is valid until <strong>{{date .ValidUntil}}</strong>.</p>
`))

	acceptanceAlertTmpl = template.Must(template.New("acceptance_alert").Funcs(funcs).Parse(`
<h2>Quotation {{.Number}} accepted</h2>
<p>{{.CustomerName}} ({{.CustomerEmail}}{{if .CustomerPhone}}, {{.CustomerPhone}}{{end}}) has accepted quotation {{.Number}}.</p>
<table>
  <tr><td>Service</td><td>{{.ServiceName}}</td></tr>
  <tr><td>Travel dates</td><td>{{date .StartDate}} &ndash; {{date .EndDate}}</td></tr>
  <tr><td>Total</td><td>{{money .TotalAmount}}</td></tr>
  <tr><td>Deposit due</td><td>{{money .DepositAmount}}</td></tr>
</table>
`))

	acceptanceConfirmTmpl = template.Must(template.New("acceptance_confirm").Funcs(funcs).Parse(`
<h2>Booking confirmed &mdash; next steps</h2>
<p>Dear {{.CustomerName}},</p>
<p>Thank you for accepting quotation <strong>{{.Number}}</strong> for {{.ServiceName}}.</p>
<p>To confirm your booking, please transfer the deposit of <strong>{{money .DepositAmount}}</strong>.
The balance of {{money .BalanceAmount}} is due before your travel date.</p>
<p>Our team will contact you with payment instructions within one business day.</p>
`))

	invoiceTmpl = template.Must(template.New("invoice").Funcs(funcs).Parse(`
<h2>Invoice {{.InvoiceNumber}}</h2>
<p>Dear {{.CustomerName}},</p>
<p>This invoice records your payment against quotation {{.QuotationNumber}}.</p>
<table>
  <tr><td>Total amount</td><td>{{money .TotalAmount}}</td></tr>
  <tr><td>Paid</td><td>{{money .PaidAmount}}</td></tr>
  <tr><td>Remaining</td><td>{{money .RemainingAmount}}</td></tr>
  <tr><td>Status</td><td>{{.Status}}</td></tr>
</table>
{{if .PaymentReference}}<p>Payment reference: {{.PaymentReference}}</p>{{end}}
`))

	expiryDigestTmpl = template.Must(template.New("expiry_digest").Funcs(funcs).Parse(`
<h2>Quotations expiring soon</h2>
<p>The following quotations expire within {{.WindowDays}} day(s):</p>
<ul>
{{range .Items}}<li>{{.Number}} &mdash; {{.CustomerName}}, {{money .TotalAmount}}, valid until {{date .ValidUntil}}</li>
{{end}}</ul>
`))
)

// QuotationEmailData is the view model for the customer quotation email.
type QuotationEmailData struct {
	Number           string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	ServiceName      string
	StartDate        time.Time
	EndDate          time.Time
	Adults           int
	Children         int
	Infants          int
	Subtotal         float64
	DiscountAmount   float64
	TotalAmount      float64
	DepositAmount    float64
	BalanceAmount    float64
	ValidUntil       time.Time
	IncludedServices []string
}

// InvoiceEmailData is the view model for the invoice email.
type InvoiceEmailData struct {
	InvoiceNumber    string
	QuotationNumber  string
	CustomerName     string
	TotalAmount      float64
	PaidAmount       float64
	RemainingAmount  float64
	Status           string
	PaymentReference string
}

// DigestItem is one expiring quotation in the operator digest.
type DigestItem struct {
	Number       string
	CustomerName string
	TotalAmount  float64
	ValidUntil   time.Time
}

// DigestData is the view model for the expiring-quotations digest.
type DigestData struct {
	WindowDays int
	Items      []DigestItem
}

// QuotationEmail renders the customer-facing quotation message.
func QuotationEmail(data QuotationEmailData) (subject, body string, err error) {
	subject = fmt.Sprintf("Your quotation %s from Horizon Tours", data.Number)
	body, err = render(quotationTmpl, data)
	return subject, body, err
}

// AcceptanceAlert renders the operator notification for a new acceptance.
func AcceptanceAlert(data QuotationEmailData) (subject, body string, err error) {
	subject = fmt.Sprintf("Quotation %s accepted by %s", data.Number, data.CustomerName)
	body, err = render(acceptanceAlertTmpl, data)
	return subject, body, err
}

// AcceptanceConfirmation renders the customer next-steps message.
func AcceptanceConfirmation(data QuotationEmailData) (subject, body string, err error) {
	subject = fmt.Sprintf("Booking confirmed - quotation %s", data.Number)
	body, err = render(acceptanceConfirmTmpl, data)
	return subject, body, err
}

// InvoiceEmail renders the invoice message.
func InvoiceEmail(data InvoiceEmailData) (subject, body string, err error) {
	subject = fmt.Sprintf("Invoice %s from Horizon Tours", data.InvoiceNumber)
	body, err = render(invoiceTmpl, data)
	return subject, body, err
}

// ExpiryDigest renders the operator digest of quotations expiring soon.
func ExpiryDigest(data DigestData) (subject, body string, err error) {
	subject = fmt.Sprintf("%d quotation(s) expiring soon", len(data.Items))
	body, err = render(expiryDigestTmpl, data)
	return subject, body, err
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
