package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPNotifier hands messages to the mail relay service.
type HTTPNotifier struct {
	serviceURL string
	httpClient *http.Client
}

func NewHTTPNotifier(serviceURL string, client *http.Client) *HTTPNotifier {
	return &HTTPNotifier{
		serviceURL: serviceURL,
		httpClient: client,
	}
}

func (n *HTTPNotifier) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.serviceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}
	return nil
}
