package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrClosed = errors.New("connection is closed")

type messageInfo struct {
	msg             []byte
	needCompression bool
}

// Client pumps a websocket connection through channels. R is closed when the
// connection drops.
type Client struct {
	Conn *websocket.Conn
	R    chan []byte

	w          chan messageInfo
	done       chan struct{}
	closeOnce  sync.Once
	compressed bool
}

// Dial opens a websocket connection. When compressed is true every frame in
// both directions is zlib-compressed.
func Dial(ctx context.Context, url string, header http.Header, compressed bool) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	return NewClient(conn, compressed), nil
}

func NewClient(conn *websocket.Conn, compressed bool) *Client {
	if conn == nil {
		return nil
	}

	c := &Client{
		Conn:       conn,
		R:          make(chan []byte, 128),
		w:          make(chan messageInfo, 128),
		done:       make(chan struct{}),
		compressed: compressed,
	}

	go c.runReader()
	go c.runWriter()
	return c
}

func (c *Client) runReader() {
	defer close(c.R)
	defer c.Close()

	for {
		t, msg, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		if t == websocket.CloseMessage {
			return
		}

		if t != websocket.TextMessage && t != websocket.BinaryMessage {
			continue
		}

		if c.compressed {
			msg, err = Decompress(msg)
			if err != nil {
				continue
			}
		}

		select {
		case c.R <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Client) runWriter() {
	for {
		select {
		case <-c.done:
			return
		case info := <-c.w:
			msg := info.msg
			if info.needCompression {
				var err error
				msg, err = Compress(info.msg)
				if err != nil {
					continue
				}
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Write queues msg, compressed if the client was dialed with compression.
func (c *Client) Write(msg []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.w <- messageInfo{msg: msg, needCompression: c.compressed}:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Client) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.Write(b)
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.Conn.Close()
	})

	return err
}
