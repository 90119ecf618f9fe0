package live

import (
	"context"
	"net/url"

	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/ws"
)

type websocketTransport struct {
	client *ws.Client
}

// WebsocketDialer connects to the push server at endpoint, authenticating
// with the session token in the query string.
func WebsocketDialer(endpoint, token string, compressed bool) Dialer {
	return func(ctx context.Context) (Transport, error) {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, err
		}

		if token != "" {
			query := u.Query()
			query.Set("token", token)
			u.RawQuery = query.Encode()
		}

		client, err := ws.Dial(ctx, u.String(), nil, compressed)
		if err != nil {
			return nil, err
		}

		return &websocketTransport{client: client}, nil
	}
}

func (t *websocketTransport) Send(ctx context.Context, d model.Directive) error {
	return t.client.WriteJSON(d)
}

func (t *websocketTransport) Events() <-chan []byte {
	return t.client.R
}

func (t *websocketTransport) Close() error {
	return t.client.Close()
}
