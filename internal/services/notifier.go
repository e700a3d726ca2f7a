package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/openshelf/openshelf/backend/internal/events"
	"github.com/openshelf/openshelf/backend/internal/feed"
	"github.com/openshelf/openshelf/backend/internal/models"
	"github.com/openshelf/openshelf/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// Notifier consumes engagement events off the bus and records notification
// rows for the item's author. It is the only consumer besides the mutation
// callers themselves; there is no broadcast-and-refetch path.
type Notifier struct {
	bus           *events.Bus
	notifications repositories.NotificationRepository
	posts         repositories.PostRepository
	progress      repositories.ProgressRepository
	reviews       repositories.ReviewRepository
	log           *logrus.Entry
}

// NewNotifier creates a new Notifier
func NewNotifier(
	bus *events.Bus,
	notifications repositories.NotificationRepository,
	posts repositories.PostRepository,
	progress repositories.ProgressRepository,
	reviews repositories.ReviewRepository,
	log *logrus.Entry,
) *Notifier {
	return &Notifier{
		bus:           bus,
		notifications: notifications,
		posts:         posts,
		progress:      progress,
		reviews:       reviews,
		log:           log,
	}
}

// Start subscribes to the engagement topics and consumes until ctx is done.
func (n *Notifier) Start(ctx context.Context) error {
	likes, err := n.bus.Subscribe(ctx, events.TopicLikeChanged)
	if err != nil {
		return err
	}
	comments, err := n.bus.Subscribe(ctx, events.TopicCommentAdded)
	if err != nil {
		return err
	}
	go n.consumeLikes(ctx, likes)
	go n.consumeComments(ctx, comments)
	return nil
}

func (n *Notifier) consumeLikes(ctx context.Context, msgs <-chan *message.Message) {
	for msg := range msgs {
		var ev events.LikeChanged
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			n.log.WithError(err).Warn("dropping malformed like event")
			msg.Ack()
			continue
		}
		if ev.Liked { // unlikes do not notify
			n.record(ctx, "like", ev.ActorID, feed.TargetKey{Kind: ev.Kind, ID: ev.ID},
				"liked your "+string(ev.Kind))
		}
		msg.Ack()
	}
}

func (n *Notifier) consumeComments(ctx context.Context, msgs <-chan *message.Message) {
	for msg := range msgs {
		var ev events.CommentAdded
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			n.log.WithError(err).Warn("dropping malformed comment event")
			msg.Ack()
			continue
		}
		n.record(ctx, "comment", ev.ActorID, feed.TargetKey{Kind: ev.Kind, ID: ev.ID},
			"commented on your "+string(ev.Kind))
		msg.Ack()
	}
}

func (n *Notifier) record(ctx context.Context, kind string, actorID uint, key feed.TargetKey, text string) {
	recipientID, err := n.resolveAuthor(ctx, key)
	if err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"target_kind": key.Kind,
			"target_id":   key.ID,
		}).Warn("could not resolve notification recipient")
		return
	}
	if recipientID == actorID { // no self-notifications
		return
	}
	err = n.notifications.CreateNotification(&models.Notification{
		Type:        kind,
		ActorID:     actorID,
		RecipientID: recipientID,
		TargetKind:  string(key.Kind),
		TargetID:    key.ID,
		Message:     text,
	})
	if err != nil {
		n.log.WithError(err).Warn("failed to store notification")
	}
}

func (n *Notifier) resolveAuthor(ctx context.Context, key feed.TargetKey) (uint, error) {
	switch key.Kind {
	case feed.KindPost:
		post, err := n.posts.GetPostByID(ctx, key.ID)
		if err != nil {
			return 0, err
		}
		return post.AuthorID, nil
	case feed.KindProgress:
		progress, err := n.progress.GetProgressByID(ctx, key.ID)
		if err != nil {
			return 0, err
		}
		return progress.AuthorID, nil
	case feed.KindReview:
		review, err := n.reviews.GetReviewByID(ctx, key.ID)
		if err != nil {
			return 0, err
		}
		return review.AuthorID, nil
	}
	return 0, fmt.Errorf("unknown target kind %q", key.Kind)
}
