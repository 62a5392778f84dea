// Package webhook posts Discord-style embed messages to a chat webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// Field is one name/value row of an embed.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Embed is a titled, colored block of fields.
type Embed struct {
	Title  string  `json:"title"`
	Color  int     `json:"color"`
	Fields []Field `json:"fields"`
}

// Message is the webhook request body.
type Message struct {
	Embeds []Embed `json:"embeds"`
}

// Discord rejects messages beyond these limits. Lengths are in characters.
const (
	MaxEmbeds         = 10
	MaxFieldsPerEmbed = 25
	MaxFieldName      = 256
	MaxFieldValue     = 1024
	MaxTitle          = 256
	MaxMessageChars   = 6000
)

const ellipsis = "…"

// truncate shortens s to at most n characters, marking the cut with an
// ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	return string(r[:n-1]) + ellipsis
}

// NewMessage lays fields out over as many embeds as needed, each with
// the same title and color, and truncates names and values so the
// message stays within Discord's limits. Fields beyond
// MaxEmbeds*MaxFieldsPerEmbed are dropped. Every non-empty value keeps at least
// one character.
func NewMessage(title string, color int, fields []Field) Message {
	if limit := MaxEmbeds * MaxFieldsPerEmbed; len(fields) > limit {
		fields = fields[:limit]
	}

	embeds := (len(fields) + MaxFieldsPerEmbed - 1) / MaxFieldsPerEmbed
	if embeds == 0 {
		embeds = 1
	}

	title = truncate(title, MaxTitle)
	budget := MaxMessageChars - embeds*utf8.RuneCountInString(title)

	fitted := make([]Field, len(fields))
	for i, f := range fields {
		fitted[i].Name = truncate(f.Name, MaxFieldName)
		budget -= utf8.RuneCountInString(fitted[i].Name)
	}

	for i, f := range fields {
		remaining := len(fields) - i - 1
		allowance := min(MaxFieldValue, max(budget-remaining, 1))
		fitted[i].Value = truncate(f.Value, allowance)
		budget -= utf8.RuneCountInString(fitted[i].Value)
	}

	msg := Message{Embeds: make([]Embed, 0, embeds)}
	for start := 0; start < len(fitted) || len(msg.Embeds) == 0; start += MaxFieldsPerEmbed {
		end := min(start+MaxFieldsPerEmbed, len(fitted))
		msg.Embeds = append(msg.Embeds, Embed{
			Title:  title,
			Color:  color,
			Fields: fitted[start:end],
		})
	}
	return msg
}

// Chars counts the characters Discord bills against MaxMessageChars.
func (m Message) Chars() int {
	n := 0
	for _, e := range m.Embeds {
		n += utf8.RuneCountInString(e.Title)
		for _, f := range e.Fields {
			n += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
		}
	}
	return n
}

// StatusError is returned when the webhook answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded with status %d: %s", e.StatusCode, e.Body)
}

// Client sends messages to a single webhook URL.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a Client for url. The outbound request is traced as a
// New Relic external segment when the request context carries a transaction.
func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Transport: newrelic.NewRoundTripper(http.DefaultTransport)},
	}
}

// Send POSTs msg as JSON.
func (c *Client) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal webhook message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send webhook request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
