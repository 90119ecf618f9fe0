package main

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"
	"github.com/wikid-app/feed/internal/ui"
)

func (s *srv) startTUI(c *cli.Context) error {
	// The terminal reports scroll positions in lines.
	s.rowHeight = 1

	// Log lines would corrupt the screen unless a log file is configured.
	if err := s.setup(c, io.Discard); err != nil {
		return err
	}
	defer s.stop()

	s.feed.Select(channelRef(c))

	program := tea.NewProgram(ui.New(s.feed, s.feed.Updates()), tea.WithAltScreen(), tea.WithContext(s.ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	return nil
}
