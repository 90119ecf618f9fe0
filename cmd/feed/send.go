package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/wikid-app/feed/internal/common"
	"github.com/wikid-app/feed/internal/model"
)

func (s *srv) startSend(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")

	var files []model.LocalFile
	for _, path := range c.StringSlice("file") {
		f, err := common.ReadLocalFile(path)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	if strings.TrimSpace(text) == "" && len(files) == 0 {
		return errors.New("nothing to send")
	}

	if err := s.setup(c, os.Stderr); err != nil {
		return err
	}
	defer s.stop()

	const (
		loading = iota
		replying
		sending
	)

	replyTo := model.ID(c.String("reply-to"))
	state := loading
	inFlight := false
	s.feed.Select(channelRef(c))

	for {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()

		case u := <-s.feed.Updates():
			if u.Err != nil {
				return u.Err
			}

			switch state {
			case loading:
				if u.Loading || u.Channel.ID.IsZero() {
					continue
				}

				if !replyTo.IsZero() {
					s.feed.Reply(replyTo)
					state = replying
					continue
				}

				s.feed.Send(text, files)
				state = sending

			case replying:
				s.feed.Send(text, files)
				state = sending

			case sending:
				// Updates queued before the send was applied show nothing
				// in flight yet.
				if pending(u.Messages) {
					inFlight = true
					continue
				}

				if !inFlight {
					continue
				}

				fmt.Printf("Sent to #%s\n", u.Ref.ChannelHandle)
				return nil
			}
		}
	}
}

func pending(messages []model.Message) bool {
	for _, m := range messages {
		if m.Pending {
			return true
		}
	}
	return false
}
