package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
	_ "time/tzdata"

	qrcode "github.com/skip2/go-qrcode"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	qrCodeFileName = "beoordelen-qr.png"
	qrCodeSize     = 256
)

var amsterdam = loadAmsterdam()

func loadAmsterdam() *time.Location {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		return time.UTC
	}
	return loc
}

// CounterOfferProposal is the content of the email asking a customer to review a new price.
type CounterOfferProposal struct {
	CustomerName       string
	DeviceName         string
	OriginalPriceCents int64
	AmendedPriceCents  int64
	Reason             string
	ReviewURL          string
	ExpiresAt          time.Time
	EvidenceCount      int
}

// CounterOfferOutcome is the content of the confirmation sent after the customer responded.
type CounterOfferOutcome struct {
	CustomerName       string
	DeviceName         string
	OriginalPriceCents int64
	AmendedPriceCents  int64
}

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type counterOfferProposalEmailData struct {
	baseEmailData
	CustomerName     string
	DeviceName       string
	OriginalFormatted string
	AmendedFormatted string
	Reason           string
	ExpiresAt        string
	EvidenceCount    int
	HasQRCode        bool
}

type counterOfferOutcomeEmailData struct {
	baseEmailData
	CustomerName      string
	DeviceName        string
	OriginalFormatted string
	AmendedFormatted  string
}

// message is a rendered email, independent of the delivery provider.
type message struct {
	subject     string
	html        string
	attachments []Attachment
}

func counterOfferProposalMessage(p CounterOfferProposal) (message, error) {
	qr, err := reviewQRCode(p.ReviewURL)
	if err != nil {
		return message{}, err
	}

	content, err := renderEmailTemplate("counter_offer_proposal.html", counterOfferProposalEmailData{
		baseEmailData: baseEmailData{
			Title:      "Aangepast bod",
			Heading:    "We hebben uw toestel beoordeeld",
			Subheading: "Na inspectie stellen we een aangepast bod voor.",
			CTALabel:   "Bekijk het bod",
			CTAURL:     p.ReviewURL,
		},
		CustomerName:     p.CustomerName,
		DeviceName:       deviceLabel(p.DeviceName),
		OriginalFormatted: formatCurrencyEUR(p.OriginalPriceCents),
		AmendedFormatted: formatCurrencyEUR(p.AmendedPriceCents),
		Reason:           p.Reason,
		ExpiresAt:        p.ExpiresAt.In(amsterdam).Format("02-01-2006 15:04"),
		EvidenceCount:    p.EvidenceCount,
		HasQRCode:        qr != nil,
	})
	if err != nil {
		return message{}, err
	}

	msg := message{
		subject: fmt.Sprintf(subjectCounterOfferProposalFmt, deviceLabel(p.DeviceName)),
		html:    content,
	}
	if qr != nil {
		msg.attachments = append(msg.attachments, Attachment{Content: qr, FileName: qrCodeFileName, MIMEType: "image/png"})
	}
	return msg, nil
}

func counterOfferAcceptedMessage(o CounterOfferOutcome) (message, error) {
	content, err := renderEmailTemplate("counter_offer_accepted.html", outcomeData(o, "Bod geaccepteerd", "Bedankt voor uw akkoord"))
	if err != nil {
		return message{}, err
	}
	return message{
		subject: fmt.Sprintf(subjectCounterOfferAcceptedFmt, deviceLabel(o.DeviceName)),
		html:    content,
	}, nil
}

func counterOfferDeclinedMessage(o CounterOfferOutcome) (message, error) {
	content, err := renderEmailTemplate("counter_offer_declined.html", outcomeData(o, "Bod afgewezen", "We hebben uw reactie ontvangen"))
	if err != nil {
		return message{}, err
	}
	return message{
		subject: fmt.Sprintf(subjectCounterOfferDeclinedFmt, deviceLabel(o.DeviceName)),
		html:    content,
	}, nil
}

func outcomeData(o CounterOfferOutcome, title, heading string) counterOfferOutcomeEmailData {
	return counterOfferOutcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   title,
			Heading: heading,
		},
		CustomerName:      o.CustomerName,
		DeviceName:        deviceLabel(o.DeviceName),
		OriginalFormatted: formatCurrencyEUR(o.OriginalPriceCents),
		AmendedFormatted:  formatCurrencyEUR(o.AmendedPriceCents),
	}
}

// reviewQRCode returns a PNG QR code of the review link, or nil without a link.
func reviewQRCode(url string) ([]byte, error) {
	if url == "" {
		return nil, nil
	}
	png, err := qrcode.Encode(url, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("encode review qr code: %w", err)
	}
	return png, nil
}

func deviceLabel(name string) string {
	if name == "" {
		return "toestel"
	}
	return name
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrencyEUR(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s€%d,%02d", sign, cents/100, cents%100)
}
