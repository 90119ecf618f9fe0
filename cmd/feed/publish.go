package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"
	"github.com/wikid-app/feed/config"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/kafka"
	"github.com/wikid-app/feed/pkg/pubsub"
	"github.com/wikid-app/feed/pkg/redis"
)

func (s *srv) startPublish(c *cli.Context) error {
	if err := s.loadConfig(c); err != nil {
		return err
	}

	if err := s.loadLogger(os.Stderr); err != nil {
		return err
	}

	s.loadContext(c.Context)
	defer s.stop()

	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to publish")
	}

	node, err := snowflake.NewNode(s.configs.Feed.SnowflakeNode)
	if err != nil {
		return err
	}

	author := c.String("author")
	now := time.Now().UTC()
	body, err := json.Marshal(model.Message{
		ID:        model.IDFromInt(node.Generate().Int64()),
		User:      model.User{Handle: author, Name: author},
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	channelID := c.String("channel-id")

	var publisher pubsub.Publisher
	var topic string
	pack := &pubsub.Pack{Msg: body}

	switch s.configs.Live.Transport {
	case config.TransportKafka:
		publisher, err = kafka.NewPublisher("feed-publish", []string{s.configs.Kafka.Addr})
		if err != nil {
			return err
		}
		topic = s.configs.Kafka.Topic
		pack.Key = []byte(channelID)

	case config.TransportRedis:
		rdb, err := redis.NewClient(s.ctx, s.configs.Redis.Addr)
		if err != nil {
			return err
		}
		publisher = redis.NewPublisher(rdb, s.configs.Redis.ChannelPrefix)
		topic = channelID

	default:
		return errors.New("publish needs the kafka or redis live transport")
	}
	defer publisher.Stop(s.ctx)

	if err := publisher.Publish(s.ctx, topic, pack); err != nil {
		return err
	}

	s.logger.Infof("Published message on channel %s", channelID)
	return nil
}
