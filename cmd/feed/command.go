package main

import "github.com/urfave/cli/v2"

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path of a TOML config file",
		EnvVars: []string{"FEED_CONFIG"},
	}

	communityFlag = &cli.StringFlag{
		Name:     "community",
		Usage:    "community handle",
		EnvVars:  []string{"FEED_COMMUNITY"},
		Required: true,
	}

	channelFlag = &cli.StringFlag{
		Name:     "channel",
		Usage:    "channel handle",
		EnvVars:  []string{"FEED_CHANNEL"},
		Required: true,
	}
)

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "feed"
	app.Usage = "Follow and post to a wikid channel"
	app.Flags = []cli.Flag{configFlag}
	app.Commands = []*cli.Command{
		{
			Action:      s.startFollow,
			Name:        "follow",
			Usage:       "Print a channel and its live updates",
			Flags:       []cli.Flag{communityFlag, channelFlag},
			Category:    "Feed",
			Description: `Loads the latest messages of a channel, then prints every message as it arrives.`,
		},
		{
			Action:    s.startSend,
			Name:      "send",
			Usage:     "Send one message and wait for its confirmation",
			ArgsUsage: "<text>",
			Flags: []cli.Flag{
				communityFlag,
				channelFlag,
				&cli.StringSliceFlag{Name: "file", Usage: "attach a local file"},
				&cli.StringFlag{Name: "reply-to", Usage: "id of the message to reply to"},
			},
			Category: "Feed",
		},
		{
			Action:      s.startTUI,
			Name:        "tui",
			Usage:       "Open a channel in the terminal",
			Flags:       []cli.Flag{communityFlag, channelFlag},
			Category:    "Feed",
			Description: `Interactive feed with backfill on scroll, replies, edits and reactions.`,
		},
		{
			Action:    s.startPublish,
			Name:      "publish",
			Usage:     "Publish a message on the live broker",
			ArgsUsage: "<text>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "channel-id", Usage: "id of the channel topic", Required: true},
				&cli.StringFlag{Name: "author", Usage: "handle of the author", Value: "bot"},
			},
			Category:    "Development",
			Description: `Stands in for the backend when the live transport is kafka or redis.`,
		},
	}

	s.cli = app
}
