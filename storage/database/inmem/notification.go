package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/finquest/finquest/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ntfs := make([]notification.Notification, 0, len(repo.db.table))
	for _, ntf := range repo.db.table {
		ntfs = append(ntfs, *ntf)
	}
	sort.Slice(ntfs, func(i, j int) bool { return ntfs[i].CreatedAt.After(ntfs[j].CreatedAt) })
	return ntfs, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ntf, ok := repo.db.table[id]; ok {
		return *ntf, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, ntf notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ntf.ID = uuid.NewString()
	repo.db.table[ntf.ID] = &ntf
	return ntf, nil
}

func (repo *notificationRepository) UpdateNotification(ctx context.Context, ntf notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[ntf.ID]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	ntf.CreatedAt = orig.CreatedAt
	repo.db.table[ntf.ID] = &ntf
	return ntf, nil
}

func (repo *notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
