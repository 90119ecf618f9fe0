package model

type Permissions struct {
	SendMessages bool `json:"send_messages"`
}

type Community struct {
	ID          ID          `json:"id,omitempty"`
	Handle      string      `json:"handle"`
	Name        string      `json:"name,omitempty"`
	Permissions Permissions `json:"permissions"`
}

// Channel is one element of the channel load response. The hot API answers
// both the initial load and backfill pages with an array of these.
type Channel struct {
	ID                ID         `json:"id"`
	Handle            string     `json:"handle"`
	Name              string     `json:"name,omitempty"`
	User              User       `json:"user"`
	Community         *Community `json:"community,omitempty"`
	Messages          []Message  `json:"messages"`
	RemainingMessages int        `json:"remaining_messages"`
}

// ChannelRef identifies a channel on the hot API.
type ChannelRef struct {
	CommunityHandle string
	ChannelHandle   string
}

type GetChannelRequest struct {
	ChannelRef
	Page int
}

type GetChannelResponse struct {
	Channel Channel
}

type SelectChannelRequest struct {
	ChannelHandle string `structs:"channel_handle"`
}

// LocalFile is an attachment picked on this device, uploaded with the send
// request.
type LocalFile struct {
	Name     string
	MimeType string
	Data     []byte
}

type CreateMessageRequest struct {
	CommunityHandle string
	ChannelID       ID
	Text            string
	ParentID        ID
	Files           []LocalFile
	OptimisticUUID  string
}

type CreateMessageResponse struct {
	Message Message
}

type EditMessageRequest struct {
	MessageID ID     `structs:"message_id"`
	Text      string `structs:"text"`
}

type EditMessageResponse struct {
	Message *Message
}

type ReactMessageRequest struct {
	MessageID ID     `structs:"message_id"`
	Reaction  string `structs:"reaction"`
}

type ReactMessageResponse struct {
	Updated bool
}
