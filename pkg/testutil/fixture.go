package testutil

import (
	"strconv"
	"time"

	"github.com/wikid-app/feed/internal/model"
)

var (
	Viewer = model.User{ID: "1", Handle: "viewer", Name: "Viewer"}
	Alice  = model.User{ID: "2", Handle: "alice", Name: "Alice"}
	Bob    = model.User{ID: "3", Handle: "bob", Name: "Bob"}

	Community = model.Community{
		ID:          "10",
		Handle:      "wikid",
		Name:        "Wikid",
		Permissions: model.Permissions{SendMessages: true},
	}

	ChannelRef = model.ChannelRef{CommunityHandle: "wikid", ChannelHandle: "general"}
)

var baseTime = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

// Message builds a confirmed message. Successive ids get successive
// timestamps.
func Message(id string, author model.User, text string) model.Message {
	at := baseTime
	if n, err := strconv.Atoi(id); err == nil {
		at = at.Add(time.Duration(n) * time.Minute)
	}

	return model.Message{
		ID:        model.ID(id),
		User:      author,
		Text:      text,
		CreatedAt: at,
		UpdatedAt: at,
		Status:    model.Sent,
	}
}

func Channel(id string, remaining int, messages ...model.Message) model.Channel {
	community := Community
	return model.Channel{
		ID:                model.ID(id),
		Handle:            ChannelRef.ChannelHandle,
		Name:              "General",
		User:              Viewer,
		Community:         &community,
		Messages:          messages,
		RemainingMessages: remaining,
	}
}

func Texts(messages []model.Message) []string {
	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.Text
	}
	return texts
}

func IDs(messages []model.Message) []model.ID {
	ids := make([]model.ID, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	return ids
}
