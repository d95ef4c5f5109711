package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
)

// События, о которых уведомляются пользователи.
const (
	EventCaseCreated       = "case.created"
	EventCaseStatusChanged = "case.status_changed"
	EventJobClaimed        = "job.claimed"
	EventJobCompleted      = "job.completed"
	EventCheckoutCompleted = "checkout.completed"
)

// Data поля, подставляемые в шаблоны писем.
type Data struct {
	RecipientName  string     `json:"recipient_name,omitempty"`
	CaseID         string     `json:"case_id,omitempty"`
	CaseType       string     `json:"case_type,omitempty"`
	Address        string     `json:"address,omitempty"`
	OldStatus      string     `json:"old_status,omitempty"`
	NewStatus      string     `json:"new_status,omitempty"`
	ContractorName string     `json:"contractor_name,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	TransactionID  string     `json:"transaction_id,omitempty"`
	CaseCount      int        `json:"case_count,omitempty"`
	Total          int64      `json:"total,omitempty"`
}

// Message готовое письмо.
type Message struct {
	Recipient string
	Subject   string
	Text      string
	HTML      string
}

type eventTemplate struct {
	subject string
	body    string
}

// Тело шаблона общее для текстовой и HTML версии: html/template экранирует подстановки.
var eventTemplates = map[string]eventTemplate{
	EventCaseCreated: {
		subject: "Case created for {{.Address}}",
		body: `Hello {{.RecipientName}},

Your {{caseType .CaseType}} case for {{.Address}} was created as a draft and added to your cart.
Check out to submit it for posting.`,
	},
	EventCaseStatusChanged: {
		subject: "Case status changed to {{.NewStatus}}",
		body: `Hello {{.RecipientName}},

The status of your case for {{.Address}} changed from {{.OldStatus}} to {{.NewStatus}}.`,
	},
	EventJobClaimed: {
		subject: "A contractor claimed your posting job",
		body: `Hello {{.RecipientName}},

{{.ContractorName}} claimed the posting job for {{.Address}}.{{if .DueDate}}
Expected completion by {{date .DueDate}}.{{end}}`,
	},
	EventJobCompleted: {
		subject: "Posting job completed for {{.Address}}",
		body: `Hello {{.RecipientName}},

The posting job for {{.Address}} is complete. All proof documents are uploaded and available in your case.`,
	},
	EventCheckoutCompleted: {
		subject: "Payment received: {{money .Total}}",
		body: `Hello {{.RecipientName}},

We received your payment of {{money .Total}} for {{.CaseCount}} case(s).
Transaction: {{.TransactionID}}`,
	},
}

func templateFuncs() map[string]interface{} {
	return map[string]interface{}{
		"money": valueobject.FormatCents,
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.UTC().Format("Jan 2, 2006 15:04 MST")
		},
		"caseType": func(t string) string {
			ct := valueobject.CaseType(t)
			if !ct.IsValid() {
				return "eviction"
			}
			return ct.Label()
		},
	}
}

// Events перечисляет известные события.
func Events() []string {
	return []string{EventCaseCreated, EventCaseStatusChanged, EventJobClaimed, EventJobCompleted, EventCheckoutCompleted}
}

// BuildMessage собирает тему, текст и HTML письма для события.
func BuildMessage(event, recipient string, data Data) (Message, error) {
	tpl, ok := eventTemplates[event]
	if !ok {
		return Message{}, fmt.Errorf("notify: unknown event %q", event)
	}
	if data.RecipientName == "" {
		data.RecipientName = "there"
	}

	subject, err := executeText(event+".subject", tpl.subject, data)
	if err != nil {
		return Message{}, err
	}
	text, err := executeText(event+".text", tpl.body, data)
	if err != nil {
		return Message{}, err
	}

	htmlTpl, err := htmltemplate.New(event + ".html").Funcs(templateFuncs()).Parse(tpl.body)
	if err != nil {
		return Message{}, fmt.Errorf("notify: parse html %s: %w", event, err)
	}
	var htmlBody bytes.Buffer
	if err := htmlTpl.Execute(&htmlBody, data); err != nil {
		return Message{}, fmt.Errorf("notify: render html %s: %w", event, err)
	}

	return Message{
		Recipient: recipient,
		Subject:   subject,
		Text:      text,
		HTML:      wrapHTML(subject, htmlBody.String()),
	}, nil
}

func executeText(name, body string, data Data) (string, error) {
	tpl, err := texttemplate.New(name).Funcs(templateFuncs()).Parse(body)
	if err != nil {
		return "", fmt.Errorf("notify: parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", name, err)
	}
	return buf.String(), nil
}

func wrapHTML(title, escapedBody string) string {
	paragraphs := strings.Split(escapedBody, "\n\n")
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(htmltemplate.HTMLEscapeString(title))
	b.WriteString("</title></head><body style=\"font-family:Arial,sans-serif\">")
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(p, "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}
