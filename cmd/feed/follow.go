package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/wikid-app/feed/internal/domain/feed"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/dateutil"
)

func (s *srv) startFollow(c *cli.Context) error {
	if err := s.setup(c, os.Stderr); err != nil {
		return err
	}
	defer s.stop()

	s.feed.Select(channelRef(c))

	printed := map[model.ID]string{}
	for {
		select {
		case <-s.ctx.Done():
			return nil

		case u := <-s.feed.Updates():
			if u.Err != nil {
				if u.Channel.ID.IsZero() {
					return u.Err
				}
				s.logger.Warnf("%v", u.Err)
			}

			if u.Result.Mutation == feed.MutationReset {
				printed = map[model.ID]string{}
			}

			for _, m := range u.Messages {
				if m.Pending || feed.IsPlaceholder(m.ID) {
					continue
				}

				text, seen := printed[m.ID]
				if seen && text == m.Text {
					continue
				}

				printMessage(os.Stdout, m, seen)
				printed[m.ID] = m.Text
			}
		}
	}
}

func printMessage(w io.Writer, m model.Message, edited bool) {
	mark := ""
	if edited {
		mark = " (edited)"
	}

	reply := ""
	if m.Parent != nil {
		reply = fmt.Sprintf(" ↳ %s", m.Parent.User.DisplayName())
	}

	fmt.Fprintf(w, "%s %s%s%s: %s\n", dateutil.Stamp(m.CreatedAt, time.Now()), m.User.DisplayName(), reply, mark, m.Text)
	for _, f := range m.Files {
		fmt.Fprintf(w, "      [%s] %s %s\n", f.MimeCategory(), f.Name, f.URL)
	}
}
