package notification

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("notification not found")
	ErrAlreadySent = errors.New("notification already sent")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		QueryNotifications(ctx context.Context) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		CreateNotification(ctx context.Context, ntf Notification) (Notification, error)
		UpdateNotification(ctx context.Context, ntf Notification) (Notification, error)
		DeleteNotification(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx)
}

// QuerySent returns the notifications visible to learners.
func (svc *Service) QuerySent(ctx context.Context) ([]Notification, error) {
	all, err := svc.repo.QueryNotifications(ctx)
	if err != nil {
		return nil, err
	}
	sent := make([]Notification, 0, len(all))
	for _, ntf := range all {
		if ntf.IsSent {
			sent = append(sent, ntf)
		}
	}
	return sent, nil
}

func (svc *Service) Create(ctx context.Context, nn NewNotification) (Notification, error) {
	ntf := Notification{
		Title:     nn.Title,
		Message:   nn.Message,
		Type:      nn.Type,
		CreatedAt: nowFunc().UTC(),
	}
	return svc.repo.CreateNotification(ctx, ntf)
}

// MarkSent flags a notification as dispatched. Sending twice is an error.
func (svc *Service) MarkSent(ctx context.Context, id string) (Notification, error) {
	ntf, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if ntf.IsSent {
		return Notification{}, ErrAlreadySent
	}
	now := nowFunc().UTC()
	ntf.IsSent = true
	ntf.SentAt = &now
	return svc.repo.UpdateNotification(ctx, ntf)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteNotification(ctx, id)
}
