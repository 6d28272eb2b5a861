package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	NameResend        = "resend"
	resendAPIURL      = "https://api.resend.com"
	resendEmailsPath  = "/emails"
	resendAPIKeysPath = "/api-keys"
	resendTagContext  = "context"
)

type resendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resendEmail struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	Subject string      `json:"subject"`
	HTML    string      `json:"html"`
	Text    string      `json:"text,omitempty"`
	Tags    []resendTag `json:"tags,omitempty"`
}

type Resend struct {
	client
}

func NewResend(cfg Config) *Resend {
	return &Resend{client: newClient(NameResend, resendAPIURL, cfg)}
}

func (p *Resend) Name() string {
	return p.name
}

func (p *Resend) Send(ctx context.Context, msg *Message) (string, error) {
	payload := resendEmail{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.Tag != "" {
		payload.Tags = []resendTag{{Name: resendTagContext, Value: msg.Tag}}
	}

	_, body, err := p.do(ctx, http.MethodPost, resendEmailsPath, payload)
	if err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf(errDecodeFmt, p.name, err)
	}
	return out.ID, nil
}

func (p *Resend) Verify(ctx context.Context) error {
	_, _, err := p.do(ctx, http.MethodGet, resendAPIKeysPath, nil)
	return err
}
