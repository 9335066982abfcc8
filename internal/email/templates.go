package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
	texttemplate "text/template"

	"donation_backend/internal/models"

	"github.com/shopspring/decimal"
)

const receiptTemplateName = "donation_receipt"

const receiptSubject = "Thank you for your donation"

const receiptHTML = `<!DOCTYPE html>
<html>
<body>
<p>{{if .FirstName}}Dear {{.FirstName}},{{else}}Hello,{{end}}</p>
<p>Thank you for your donation of <strong>{{.Amount}} {{.Currency}}</strong>.</p>
<p>Reference: {{.Reference}}<br>Date: {{.Date}}</p>
</body>
</html>`

const receiptText = `{{if .FirstName}}Dear {{.FirstName}},{{else}}Hello,{{end}}

Thank you for your donation of {{.Amount}} {{.Currency}}.

Reference: {{.Reference}}
Date: {{.Date}}
`

// ReceiptData - данные, доступные шаблонам квитанции
type ReceiptData struct {
	FirstName string
	Amount    string
	Currency  string
	Reference string
	Date      string
}

// TemplateManager хранит разобранные HTML и текстовые шаблоны
type TemplateManager struct {
	mutex sync.RWMutex
	html  map[string]*template.Template
	text  map[string]*texttemplate.Template
}

func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{
		html: make(map[string]*template.Template),
		text: make(map[string]*texttemplate.Template),
	}
	if err := tm.AddTemplate(receiptTemplateName, receiptHTML, receiptText); err != nil {
		return nil, err
	}
	return tm, nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name, htmlSrc, textSrc string) error {
	h, err := template.New(name).Parse(htmlSrc)
	if err != nil {
		return fmt.Errorf("failed to parse html template %s: %w", name, err)
	}
	t, err := texttemplate.New(name).Parse(textSrc)
	if err != nil {
		return fmt.Errorf("failed to parse text template %s: %w", name, err)
	}

	tm.mutex.Lock()
	tm.html[name] = h
	tm.text[name] = t
	tm.mutex.Unlock()
	return nil
}

func (tm *TemplateManager) RenderReceipt(donation *models.Donation) (*Message, error) {
	data := NewReceiptData(donation)

	tm.mutex.RLock()
	h, okHTML := tm.html[receiptTemplateName]
	t, okText := tm.text[receiptTemplateName]
	tm.mutex.RUnlock()
	if !okHTML || !okText {
		return nil, fmt.Errorf("template not found: %s", receiptTemplateName)
	}

	var htmlBuf, textBuf strings.Builder
	if err := h.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	if err := t.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	return &Message{
		To:       donation.Email,
		Subject:  receiptSubject,
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
	}, nil
}

func NewReceiptData(donation *models.Donation) ReceiptData {
	currency := donation.Currency
	if currency == "" {
		currency = "usd"
	}
	return ReceiptData{
		FirstName: donation.FirstName,
		Amount:    FormatMinorUnits(donation.Amount),
		Currency:  strings.ToUpper(currency),
		Reference: donation.PaymentIntentID,
		Date:      donation.CreatedAt.UTC().Format("2006-01-02"),
	}
}

// FormatMinorUnits выводит центы строкой с двумя знаками: 1235 -> "12.35".
func FormatMinorUnits(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
