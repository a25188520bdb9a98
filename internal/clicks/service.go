package clicks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devrecs/devrecs-backend/pkg/db/models"
	"github.com/devrecs/devrecs-backend/pkg/enums"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
	"github.com/devrecs/devrecs-backend/pkg/logger"
	"github.com/devrecs/devrecs-backend/pkg/outbox"
	"github.com/devrecs/devrecs-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service records click events against posts.
type Service interface {
	TrackClick(ctx context.Context, input TrackClickInput) (bool, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// TrackClickInput carries the click metadata captured at the HTTP edge.
// ViewerID is nil for anonymous visitors.
type TrackClickInput struct {
	PostID    uuid.UUID
	ViewerID  *uuid.UUID
	UserIP    string
	UserAgent string
	Referrer  string
}

// NewService builds a click tracking service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clicks repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: ob,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) TrackClick(ctx context.Context, input TrackClickInput) (bool, error) {
	if input.PostID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "post id required")
	}

	post, err := s.repo.FindPost(ctx, input.PostID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}

	// Author traffic is not attributable. No write at all, just signal it.
	if input.ViewerID != nil && *input.ViewerID == post.UserID {
		logCtx := s.logg.WithPostID(ctx, post.ID.String())
		s.logg.Info(logCtx, "self click ignored")
		return false, nil
	}

	clickedAt := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		click := &models.PostClick{
			PostID:    post.ID,
			UserIP:    input.UserIP,
			UserAgent: input.UserAgent,
			Referrer:  input.Referrer,
			ClickedAt: clickedAt,
		}
		if err := repo.InsertClick(ctx, click); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert click")
		}
		if err := repo.IncrementClickCount(ctx, post.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment click count")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPostClicked,
			AggregateType: enums.AggregatePost,
			AggregateID:   post.ID,
			Version:       1,
			Actor:         buildActor(input.ViewerID),
			Data: payloads.PostClickedEvent{
				PostID:     post.ID,
				OwnerID:    post.UserID,
				ClickCount: post.ClickCount + 1,
				ClickedAt:  clickedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit click event")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func buildActor(viewerID *uuid.UUID) *outbox.ActorRef {
	if viewerID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *viewerID}
}
