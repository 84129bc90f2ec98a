package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/farmsentry/farmsentry/internal/config"
)

// webhookSink posts events to a Slack, Teams, or generic HTTP webhook.
// The target URL is resolved from the environment on every send, so a
// rotated secret takes effect without a restart.
type webhookSink struct {
	target config.WebhookTarget
	client *http.Client
}

func (s *webhookSink) Name() string {
	return "webhook/" + s.target.Type
}

func (s *webhookSink) Send(e Event) error {
	url := s.target.URL()
	if url == "" {
		return fmt.Errorf("webhook url env %q is unset", s.target.URLEnv)
	}

	var body []byte
	switch s.target.Type {
	case "slack":
		body, _ = json.Marshal(map[string]string{
			"text": fmt.Sprintf("*%s* %s", priorityLabel(e.Priority), e.Message),
		})
	case "teams":
		payload := map[string]interface{}{
			"@type":      "MessageCard",
			"@context":   "http://schema.org/extensions",
			"themeColor": priorityColor(e.Priority),
			"summary":    string(e.Service),
			"title":      fmt.Sprintf("FarmSentry: %s", e.Service),
			"text":       e.Message,
		}
		body, _ = json.Marshal(payload)
	default: // "http"
		body, _ = json.Marshal(map[string]interface{}{"event": e})
	}

	return s.post(url, body)
}

func (s *webhookSink) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func priorityLabel(p Priority) string {
	switch p {
	case PriorityHigh:
		return "[HIGH]"
	case PriorityNormal:
		return "[NORMAL]"
	default:
		return "[INFO]"
	}
}

func priorityColor(p Priority) string {
	switch p {
	case PriorityHigh:
		return "FF4F6A"
	case PriorityNormal:
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
