package providers

import (
	"context"
	"net/http"
)

const (
	NameSendGrid       = "sendgrid"
	sendGridAPIURL     = "https://api.sendgrid.com"
	sendGridSendPath   = "/v3/mail/send"
	sendGridScopesPath = "/v3/scopes"
	sendGridMessageID  = "X-Message-Id"
	mimeTextPlain      = "text/plain"
	mimeTextHTML       = "text/html"
)

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMail struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
	Categories       []string                  `json:"categories,omitempty"`
}

type SendGrid struct {
	client
}

func NewSendGrid(cfg Config) *SendGrid {
	return &SendGrid{client: newClient(NameSendGrid, sendGridAPIURL, cfg)}
}

func (p *SendGrid) Name() string {
	return p.name
}

func (p *SendGrid) Send(ctx context.Context, msg *Message) (string, error) {
	to := make([]sendGridAddress, len(msg.To))
	for i, addr := range msg.To {
		to[i] = sendGridAddress{Email: addr}
	}

	// SendGrid requires text/plain to precede text/html.
	var content []sendGridContent
	if msg.Text != "" {
		content = append(content, sendGridContent{Type: mimeTextPlain, Value: msg.Text})
	}
	content = append(content, sendGridContent{Type: mimeTextHTML, Value: msg.HTML})

	payload := sendGridMail{
		Personalizations: []sendGridPersonalization{{To: to}},
		From:             sendGridAddress{Email: msg.From},
		Subject:          msg.Subject,
		Content:          content,
	}
	if msg.Tag != "" {
		payload.Categories = []string{msg.Tag}
	}

	resp, _, err := p.do(ctx, http.MethodPost, sendGridSendPath, payload)
	if err != nil {
		return "", err
	}
	return resp.Header.Get(sendGridMessageID), nil
}

func (p *SendGrid) Verify(ctx context.Context) error {
	_, _, err := p.do(ctx, http.MethodGet, sendGridScopesPath, nil)
	return err
}
