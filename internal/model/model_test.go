package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ID_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want ID
	}{
		{name: "string", raw: `"42"`, want: "42"},
		{name: "number", raw: `42`, want: "42"},
		{name: "large number", raw: `1665419223415033856`, want: "1665419223415033856"},
		{name: "null", raw: `null`, want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &id))
			require.Equal(t, tc.want, id)
		})
	}

	var id ID
	require.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func Test_Message_ToggleReaction(t *testing.T) {
	alice := Reactor{UserID: "2", UserHandle: "alice"}
	bob := Reactor{UserID: "3", UserHandle: "bob"}

	var m Message
	require.True(t, m.ToggleReaction("👍", alice))
	require.True(t, m.ToggleReaction("👍", bob))
	require.Len(t, m.Reactions["👍"], 2)

	require.False(t, m.ToggleReaction("👍", alice))
	require.Equal(t, []Reactor{bob}, m.Reactions["👍"])

	require.False(t, m.ToggleReaction("👍", bob))
	require.NotContains(t, m.Reactions, "👍")
}

func Test_Message_Clone(t *testing.T) {
	m := Message{
		ID:        "1",
		Reactions: map[string][]Reactor{"🔥": {{UserHandle: "alice"}}},
		Parent:    &ParentMessage{ID: "0", Text: "root"},
	}

	c := m.Clone()
	c.ToggleReaction("🔥", Reactor{UserHandle: "bob"})
	c.Parent.Text = "changed"

	require.Len(t, m.Reactions["🔥"], 1)
	require.Equal(t, "root", m.Parent.Text)
}

func Test_User_DisplayName(t *testing.T) {
	require.Equal(t, "Alice", User{Handle: "alice", Name: "Alice"}.DisplayName())
	require.Equal(t, "alice", User{Handle: "alice", Name: "  "}.DisplayName())
	require.Equal(t, "Ghost", User{}.DisplayName())
}

func Test_Attachment_MimeCategory(t *testing.T) {
	require.Equal(t, "image", Attachment{MimeType: "image/png"}.MimeCategory())
	require.Equal(t, "video", Attachment{MimeType: "video/mp4"}.MimeCategory())
	require.Equal(t, "file", Attachment{MimeType: "application/pdf"}.MimeCategory())
}
