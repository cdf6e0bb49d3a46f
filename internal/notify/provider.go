package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jmehdipour/enroll-gateway/internal/model"
)

type Provider interface {
	Name() string
	Ready() bool
	Acquire() bool
	Send(ctx context.Context, sms model.SMS) error
}

// HTTPProvider posts the SMS as JSON to an SMS gateway endpoint.
type HTTPProvider struct {
	name   string
	url    string
	apiKey string
	client *http.Client
	br     *Breaker
}

type HTTPProviderOpts struct {
	Name          string
	BaseURL       string
	Path          string
	APIKey        string // sent as Bearer token when set
	TimeoutMs     int
	FailThreshold int
	OpenForMs     int
}

func NewHTTPProvider(o HTTPProviderOpts) *HTTPProvider {
	if o.TimeoutMs <= 0 {
		o.TimeoutMs = 3000
	}

	return &HTTPProvider{
		name:   o.Name,
		url:    o.BaseURL + o.Path,
		apiKey: o.APIKey,
		client: &http.Client{Timeout: time.Duration(o.TimeoutMs) * time.Millisecond},
		br:     NewBreaker(o.FailThreshold, time.Duration(o.OpenForMs)*time.Millisecond),
	}
}

func (p *HTTPProvider) Name() string  { return p.name }
func (p *HTTPProvider) Ready() bool   { return p.br.Ready() }
func (p *HTTPProvider) Acquire() bool { return p.br.Allow() }

func (p *HTTPProvider) Send(ctx context.Context, sms model.SMS) error {
	err := p.post(ctx, sms)
	p.br.Record(err)
	return err
}

func (p *HTTPProvider) post(ctx context.Context, sms model.SMS) error {
	b, err := json.Marshal(sms)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("provider=%s status=%d", p.name, res.StatusCode)
	}

	return nil
}
