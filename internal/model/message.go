package model

import (
	"strconv"
	"strings"
	"time"
)

// SendStatus tracks a locally created message until the backend confirms it.
type SendStatus uint8

const (
	// Unsent is the status of a message that is waiting for confirmation.
	Unsent SendStatus = iota

	// Sent is the status of a message confirmed by the backend. Messages
	// received from the backend directly are always Sent.
	Sent

	// Failed is the status of a message whose send request failed. It stays
	// in the feed until it is resent.
	Failed
)

func (s SendStatus) String() string {
	switch s {
	case Unsent:
		return "unsent"
	case Sent:
		return "sent"
	case Failed:
		return "failed"
	default:
		return "Invalid SendStatus: " + strconv.Itoa(int(s))
	}
}

type Reactor struct {
	UserID     ID     `json:"user_id"`
	UserHandle string `json:"user_handle"`
}

type Attachment struct {
	Name         string `json:"name"`
	MimeType     string `json:"mime_type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// MimeCategory is "image", "video" or "file".
func (a Attachment) MimeCategory() string {
	switch {
	case strings.HasPrefix(a.MimeType, "image/"):
		return "image"
	case strings.HasPrefix(a.MimeType, "video/"):
		return "video"
	default:
		return "file"
	}
}

// ParentMessage is a snapshot of the message being replied to.
type ParentMessage struct {
	ID   ID     `json:"id"`
	User User   `json:"user"`
	Text string `json:"text"`
}

type Message struct {
	ID             ID                   `json:"id"`
	OptimisticUUID string               `json:"optimistic_uuid,omitempty"`
	User           User                 `json:"user"`
	Text           string               `json:"text"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Edited         bool                 `json:"edited"`
	Reactions      map[string][]Reactor `json:"reactions,omitempty"`
	Parent         *ParentMessage       `json:"parent,omitempty"`
	Files          []Attachment         `json:"files,omitempty"`

	Pending bool       `json:"-"`
	Status  SendStatus `json:"-"`
}

func (m Message) HasFiles() bool {
	return len(m.Files) > 0
}

// Clone deep-copies the mutable parts of a message so a snapshot handed to a
// renderer never aliases store state.
func (m Message) Clone() Message {
	c := m
	if m.Reactions != nil {
		c.Reactions = make(map[string][]Reactor, len(m.Reactions))
		for k, v := range m.Reactions {
			c.Reactions[k] = append([]Reactor(nil), v...)
		}
	}

	if m.Files != nil {
		c.Files = append([]Attachment(nil), m.Files...)
	}

	if m.Parent != nil {
		p := *m.Parent
		c.Parent = &p
	}

	return c
}

// Snapshot returns the shallow parent reference used when replying to m.
func (m Message) Snapshot() *ParentMessage {
	return &ParentMessage{ID: m.ID, User: m.User, Text: m.Text}
}

// ToggleReaction adds the reactor under symbol, or removes it if it already
// reacted with that symbol. A user is listed at most once per symbol.
func (m *Message) ToggleReaction(symbol string, r Reactor) (added bool) {
	if m.Reactions == nil {
		m.Reactions = map[string][]Reactor{}
	}

	reactors := m.Reactions[symbol]
	for i, existing := range reactors {
		if existing.UserHandle == r.UserHandle {
			reactors = append(reactors[:i:i], reactors[i+1:]...)
			if len(reactors) == 0 {
				delete(m.Reactions, symbol)
			} else {
				m.Reactions[symbol] = reactors
			}
			return false
		}
	}

	m.Reactions[symbol] = append(reactors, r)
	return true
}
