package feed

import (
	"strings"

	"github.com/wikid-app/feed/internal/model"
	"golang.org/x/exp/slices"
)

// PlaceholderPrefix marks ids generated locally for messages that the
// backend has not confirmed yet.
const PlaceholderPrefix = "local-"

type Mutation int

const (
	MutationNone Mutation = iota
	MutationReset
	MutationReplaced
	MutationAppended
	MutationMerged
	MutationPrepended
)

func (m Mutation) String() string {
	switch m {
	case MutationReset:
		return "reset"
	case MutationReplaced:
		return "replaced"
	case MutationAppended:
		return "appended"
	case MutationMerged:
		return "merged"
	case MutationPrepended:
		return "prepended"
	default:
		return "none"
	}
}

func IsPlaceholder(id model.ID) bool {
	return strings.HasPrefix(string(id), PlaceholderPrefix)
}

// outstanding is an unconfirmed local send.
type outstanding struct {
	target model.ID
	text   string
}

// alias is a backend record that was merged into the entry target.
type alias struct {
	target model.ID
	text   string
}

// Store is the ordered message list of one channel. Order is insertion
// order: backfill prepends, live updates append or replace in place.
type Store struct {
	messages  []model.Message
	remaining int

	// sends maps every unconfirmed correlation token to the entry that
	// displays it. Several tokens point at one entry when consecutive sends
	// were merged.
	sends map[string]*outstanding

	aliases map[model.ID]*alias
}

func NewStore() *Store {
	return &Store{
		sends:   map[string]*outstanding{},
		aliases: map[model.ID]*alias{},
	}
}

// Reset replaces the whole sequence. Duplicate ids keep their first
// occurrence.
func (s *Store) Reset(messages []model.Message, remaining int) {
	s.messages = make([]model.Message, 0, len(messages))
	s.sends = map[string]*outstanding{}
	s.aliases = map[model.ID]*alias{}

	seen := make(map[model.ID]struct{}, len(messages))
	for _, m := range messages {
		if _, ok := seen[m.ID]; ok && !m.ID.IsZero() {
			continue
		}
		seen[m.ID] = struct{}{}

		s.messages = append(s.messages, confirmed(m))
	}

	s.remaining = remaining
	if s.remaining < 0 {
		s.remaining = 0
	}
}

// ApplyIncoming merges a record coming from the backend: a live update, a
// send confirmation or an edit acknowledgment.
func (s *Store) ApplyIncoming(msg model.Message) Mutation {
	msg = confirmed(msg)

	// A record echoing an unconfirmed token is that send's confirmation.
	if _, ok := s.sends[msg.OptimisticUUID]; ok {
		if mutation, ok := s.ReconcileOptimistic(msg.OptimisticUUID, msg); ok {
			return mutation
		}
	}

	if i := s.indexByID(msg.ID); i >= 0 {
		if s.redelivered(i, msg) {
			return MutationNone
		}
		s.replaceAt(i, msg)
		return MutationReplaced
	}

	if a, ok := s.aliases[msg.ID]; ok {
		return s.applyAlias(msg, a)
	}

	if i := s.indexByToken(msg.OptimisticUUID); i >= 0 {
		s.replaceAt(i, msg)
		return MutationReplaced
	}

	if mutation, ok := s.applyEcho(msg); ok {
		return mutation
	}

	return s.appendOrMerge(msg)
}

// Prepend inserts strictly older messages at the head, skipping any id that
// is already present. It returns the number of messages inserted.
func (s *Store) Prepend(older []model.Message, remaining int) int {
	seen := make(map[model.ID]struct{}, len(s.messages)+len(older))
	for _, m := range s.messages {
		seen[m.ID] = struct{}{}
	}

	batch := make([]model.Message, 0, len(older))
	for _, m := range older {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		if _, ok := s.aliases[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}

		batch = append(batch, confirmed(m))
	}

	if remaining < s.remaining {
		s.remaining = remaining
	}
	if s.remaining < 0 {
		s.remaining = 0
	}

	if len(batch) == 0 {
		return 0
	}

	s.messages = append(batch, s.messages...)
	return len(batch)
}

// ApplyOptimistic shows a local send immediately under placeholderID.
func (s *Store) ApplyOptimistic(msg model.Message, token string, placeholderID model.ID) Mutation {
	msg = msg.Clone()
	msg.ID = placeholderID
	msg.OptimisticUUID = token
	msg.Pending = true
	msg.Status = model.Unsent

	mutation := s.appendOrMerge(msg)

	last := &s.messages[len(s.messages)-1]
	last.OptimisticUUID = token
	last.Pending = true
	last.Status = model.Unsent
	s.sends[token] = &outstanding{target: last.ID, text: msg.Text}

	return mutation
}

// ReconcileOptimistic resolves the send of token with the confirmed record.
// A standalone placeholder is replaced by the record. A send that was merged
// into an existing entry keeps the entry text and the record is remembered
// as part of that entry.
func (s *Store) ReconcileOptimistic(token string, record model.Message) (Mutation, bool) {
	record = confirmed(record)
	record.OptimisticUUID = token

	send, ok := s.sends[token]
	if !ok {
		if i := s.indexByID(record.ID); i >= 0 {
			if s.redelivered(i, record) {
				return MutationNone, true
			}
			s.replaceAt(i, record)
			return MutationReplaced, true
		}
		// Echoed earlier and merged into another entry.
		if _, ok := s.aliases[record.ID]; ok {
			return MutationNone, true
		}
		return MutationNone, false
	}
	delete(s.sends, token)

	i := s.indexByID(send.target)
	if i < 0 {
		return MutationNone, false
	}

	// A live update delivered the record first: drop the placeholder so the
	// id stays unique.
	if j := s.indexByID(record.ID); j >= 0 && j != i {
		s.messages = slices.Delete(s.messages, i, i+1)
		s.retarget(send.target, record.ID)
		s.refreshPending(s.indexByID(record.ID))
		return MutationReplaced, true
	}

	entry := &s.messages[i]
	switch {
	case record.ID.IsZero() || record.ID == entry.ID:
		if !s.targeted(entry.ID) {
			s.replaceAt(i, record)
			return MutationReplaced, true
		}

	case IsPlaceholder(entry.ID) && !s.merged(entry.ID, send.text):
		if !s.targeted(entry.ID) && !s.grouped(entry.ID) {
			s.replaceAt(i, record)
			return MutationReplaced, true
		}

		// Other sends or records share this placeholder: take the id and
		// keep the grouped text.
		placeholder := entry.ID
		entry.ID = record.ID
		entry.CreatedAt = record.CreatedAt
		s.retarget(placeholder, record.ID)

	default:
		if _, ok := s.aliases[record.ID]; !ok {
			s.aliases[record.ID] = &alias{target: entry.ID, text: send.text}
		}
	}

	s.refreshPending(i)
	return MutationReplaced, true
}

// Outstanding reports whether the send of token still waits for its
// confirmation.
func (s *Store) Outstanding(token string) bool {
	_, ok := s.sends[token]
	return ok
}

// MarkFailed flags the entry of token as failed. It stays pending so it can
// be resent.
func (s *Store) MarkFailed(token string) bool {
	send, ok := s.sends[token]
	if !ok {
		return false
	}

	i := s.indexByID(send.target)
	if i < 0 {
		return false
	}

	s.messages[i].Status = model.Failed
	return true
}

// Retoken moves an outstanding send to a fresh token before a resend.
func (s *Store) Retoken(oldToken, newToken string) bool {
	send, ok := s.sends[oldToken]
	if !ok {
		return false
	}

	delete(s.sends, oldToken)
	s.sends[newToken] = send

	if i := s.indexByID(send.target); i >= 0 {
		if s.messages[i].OptimisticUUID == oldToken {
			s.messages[i].OptimisticUUID = newToken
		}
		s.messages[i].Status = model.Unsent
	}

	return true
}

// Update applies fn to the entry with id in place. It is used for local
// edits and reactions, which never move an entry. Ids of records merged
// into an entry are not resolved.
func (s *Store) Update(id model.ID, fn func(*model.Message)) bool {
	i := s.indexByID(id)
	if i < 0 {
		return false
	}

	parent := s.messages[i].Parent
	fn(&s.messages[i])
	s.messages[i].Parent = parent
	return true
}

func (s *Store) Messages() []model.Message {
	out := make([]model.Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Clone()
	}
	return out
}

func (s *Store) Len() int {
	return len(s.messages)
}

func (s *Store) Remaining() int {
	return s.remaining
}

func (s *Store) First() (model.Message, bool) {
	if len(s.messages) == 0 {
		return model.Message{}, false
	}
	return s.messages[0].Clone(), true
}

func (s *Store) Last() (model.Message, bool) {
	if len(s.messages) == 0 {
		return model.Message{}, false
	}
	return s.messages[len(s.messages)-1].Clone(), true
}

// Find looks id up among entries, then among records merged into one.
func (s *Store) Find(id model.ID) (model.Message, bool) {
	i := s.indexByID(id)
	if i < 0 {
		a, ok := s.aliases[id]
		if !ok {
			return model.Message{}, false
		}

		if i = s.indexByID(a.target); i < 0 {
			return model.Message{}, false
		}
	}

	return s.messages[i].Clone(), true
}

// FindByToken returns the entry currently displaying the send of token.
func (s *Store) FindByToken(token string) (model.Message, bool) {
	if send, ok := s.sends[token]; ok {
		return s.Find(send.target)
	}

	i := s.indexByToken(token)
	if i < 0 {
		return model.Message{}, false
	}
	return s.messages[i].Clone(), true
}

// appendOrMerge implements consecutive-message grouping: a message from the
// author of the last entry, without reply target, where neither side carries
// attachments, is concatenated onto the last entry.
func (s *Store) appendOrMerge(msg model.Message) Mutation {
	if n := len(s.messages); n > 0 {
		last := &s.messages[n-1]
		if last.User.Same(msg.User) && msg.Parent == nil && !msg.HasFiles() && !last.HasFiles() {
			last.Text = last.Text + "\n" + msg.Text
			if !msg.UpdatedAt.IsZero() {
				last.UpdatedAt = msg.UpdatedAt
			}

			if !msg.ID.IsZero() && !IsPlaceholder(msg.ID) {
				s.aliases[msg.ID] = &alias{target: last.ID, text: msg.Text}
			}
			return MutationMerged
		}
	}

	s.messages = append(s.messages, msg)
	return MutationAppended
}

// applyAlias handles a record that was merged into an entry before. The same
// record again is a no-op; an edited record replaces its part of the text.
func (s *Store) applyAlias(msg model.Message, a *alias) Mutation {
	i := s.indexByID(a.target)
	if i < 0 {
		delete(s.aliases, msg.ID)
		return s.appendOrMerge(msg)
	}

	if msg.Text == a.text {
		return MutationNone
	}

	entry := &s.messages[i]
	if k := strings.LastIndex(entry.Text, "\n"+a.text); k >= 0 {
		entry.Text = entry.Text[:k+1] + msg.Text + entry.Text[k+1+len(a.text):]
	} else {
		entry.Text = entry.Text + "\n" + msg.Text
	}

	entry.Edited = entry.Edited || msg.Edited
	if !msg.UpdatedAt.IsZero() {
		entry.UpdatedAt = msg.UpdatedAt
	}
	a.text = msg.Text

	return MutationReplaced
}

// applyEcho recognizes the server echo of the viewer's own unconfirmed send,
// which arrives on the live stream without a token, possibly before the send
// request returns. The echo proves the backend stored the send, so the send
// is settled and can no longer fail or be resent.
func (s *Store) applyEcho(msg model.Message) (Mutation, bool) {
	n := len(s.messages)
	if n == 0 || msg.ID.IsZero() {
		return MutationNone, false
	}

	last := &s.messages[n-1]
	if !last.Pending || !last.User.Same(msg.User) {
		return MutationNone, false
	}

	tokens := s.tokensOf(last.ID)
	for _, token := range tokens {
		if s.sends[token].text != msg.Text {
			continue
		}

		switch placeholder := last.ID; {
		case !IsPlaceholder(placeholder) || s.merged(placeholder, msg.Text):
			s.aliases[msg.ID] = &alias{target: last.ID, text: msg.Text}

		case len(tokens) == 1 && !s.grouped(placeholder):
			parent := last.Parent
			*last = msg
			last.OptimisticUUID = token
			if parent != nil {
				last.Parent = parent
			}
			s.retarget(placeholder, msg.ID)

		default:
			last.ID = msg.ID
			last.CreatedAt = msg.CreatedAt
			s.retarget(placeholder, msg.ID)
		}

		delete(s.sends, token)
		s.refreshPending(n - 1)
		return MutationReplaced, true
	}

	return MutationNone, false
}

// replaceAt swaps in a new record. The parent reference and the correlation
// token of the existing entry survive the replacement. Records merged into
// the old entry are forgotten since the new text supersedes them.
func (s *Store) replaceAt(i int, msg model.Message) {
	old := s.messages[i]
	if old.Parent != nil {
		msg.Parent = old.Parent
	}
	if msg.OptimisticUUID == "" {
		msg.OptimisticUUID = old.OptimisticUUID
	}

	for id, a := range s.aliases {
		if a.target == old.ID && msg.Text != old.Text {
			delete(s.aliases, id)
		}
	}

	s.messages[i] = msg
	if old.ID != msg.ID {
		s.retarget(old.ID, msg.ID)
	}
	s.refreshPending(i)
}

func (s *Store) refreshPending(i int) {
	if i < 0 || i >= len(s.messages) {
		return
	}

	entry := &s.messages[i]
	if !s.targeted(entry.ID) {
		entry.Pending = false
		entry.Status = model.Sent
		return
	}

	entry.Pending = true
	if entry.Status == model.Sent {
		entry.Status = model.Unsent
	}
}

func (s *Store) tokensOf(id model.ID) []string {
	tokens := []string{}
	for token, send := range s.sends {
		if send.target == id {
			tokens = append(tokens, token)
		}
	}
	slices.Sort(tokens)
	return tokens
}

// redelivered reports whether msg is the unchanged head record of the
// grouped entry at i, whose text continues with merged sends or records.
func (s *Store) redelivered(i int, msg model.Message) bool {
	entry := s.messages[i]
	if !s.grouped(entry.ID) && !s.targeted(entry.ID) {
		return false
	}
	return strings.HasPrefix(entry.Text, msg.Text+"\n")
}

// grouped reports whether backend records were merged into the entry id.
func (s *Store) grouped(id model.ID) bool {
	for _, a := range s.aliases {
		if a.target == id {
			return true
		}
	}
	return false
}

func (s *Store) targeted(id model.ID) bool {
	for _, send := range s.sends {
		if send.target == id {
			return true
		}
	}
	return false
}

// merged reports whether text was merged into the entry id rather than
// being the text it was created with.
func (s *Store) merged(id model.ID, text string) bool {
	i := s.indexByID(id)
	if i < 0 {
		return false
	}
	return !strings.HasPrefix(s.messages[i].Text, text)
}

func (s *Store) retarget(from, to model.ID) {
	if from == to {
		return
	}

	for _, send := range s.sends {
		if send.target == from {
			send.target = to
		}
	}

	for _, a := range s.aliases {
		if a.target == from {
			a.target = to
		}
	}
}

func (s *Store) indexByID(id model.ID) int {
	if id.IsZero() {
		return -1
	}
	return slices.IndexFunc(s.messages, func(m model.Message) bool { return m.ID == id })
}

func (s *Store) indexByToken(token string) int {
	if token == "" {
		return -1
	}
	return slices.IndexFunc(s.messages, func(m model.Message) bool { return m.OptimisticUUID == token })
}

func confirmed(m model.Message) model.Message {
	m = m.Clone()
	m.Pending = false
	m.Status = model.Sent
	return m
}
