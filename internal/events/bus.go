package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/openshelf/openshelf/backend/internal/feed"
)

// Topics for the closed set of cross-component events. Anything that wants to
// react to an engagement change subscribes to one of these; there is no
// untyped "something changed" broadcast.
const (
	TopicPostDeleted  = "feed.post_deleted"
	TopicLikeChanged  = "feed.like_changed"
	TopicCommentAdded = "feed.comment_added"
)

// PostDeleted is published after a post and its engagement rows are removed.
type PostDeleted struct {
	Kind feed.ItemKind `json:"kind"`
	ID   string        `json:"id"`
}

// LikeChanged is published after a successful ToggleLike. NewCount is the
// authoritative count at publish time.
type LikeChanged struct {
	Kind     feed.ItemKind `json:"kind"`
	ID       string        `json:"id"`
	NewCount int           `json:"new_count"`
	ActorID  uint          `json:"actor_id"`
	Liked    bool          `json:"liked"`
}

// CommentAdded is published after a successful AddComment.
type CommentAdded struct {
	Kind      feed.ItemKind `json:"kind"`
	ID        string        `json:"id"`
	CommentID string        `json:"comment_id"`
	NewCount  int           `json:"new_count"`
	ActorID   uint          `json:"actor_id"`
}

// Bus carries the typed event set over an in-process gochannel pub/sub.
type Bus struct {
	ch *gochannel.GoChannel
}

// NewBus creates a new in-process event bus
func NewBus() *Bus {
	return &Bus{
		ch: gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false)),
	}
}

func (b *Bus) publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return b.ch.Publish(topic, msg)
}

// PublishPostDeleted publishes a PostDeleted event
func (b *Bus) PublishPostDeleted(ev PostDeleted) error {
	return b.publish(TopicPostDeleted, ev)
}

// PublishLikeChanged publishes a LikeChanged event
func (b *Bus) PublishLikeChanged(ev LikeChanged) error {
	return b.publish(TopicLikeChanged, ev)
}

// PublishCommentAdded publishes a CommentAdded event
func (b *Bus) PublishCommentAdded(ev CommentAdded) error {
	return b.publish(TopicCommentAdded, ev)
}

// Subscribe returns the raw message stream for a topic. Consumers decode the
// payload into the topic's event type and must Ack every message.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.ch.Subscribe(ctx, topic)
}

// Close shuts the bus down and closes all subscriber channels
func (b *Bus) Close() error {
	return b.ch.Close()
}
