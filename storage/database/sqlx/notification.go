package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/notification"
)

type notificationRow struct {
	ID        string     `db:"id"`
	Title     string     `db:"title"`
	Message   string     `db:"message"`
	Type      string     `db:"type"`
	IsSent    bool       `db:"is_sent"`
	SentAt    *time.Time `db:"sent_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (r notificationRow) model() notification.Notification {
	return notification.Notification(r)
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context) ([]notification.Notification, error) {
	var rows []notificationRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM notification ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	ntfs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		ntfs = append(ntfs, row.model())
	}
	return ntfs, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var row notificationRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM notification WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return row.model(), nil
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, ntf notification.Notification) (notification.Notification, error) {
	var row notificationRow
	query := `
INSERT INTO notification (title, message, type, is_sent, sent_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		ntf.Title, ntf.Message, ntf.Type, ntf.IsSent, ntf.SentAt, ntf.CreatedAt,
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return row.model(), nil
}

func (repo *notificationRepository) UpdateNotification(ctx context.Context, ntf notification.Notification) (notification.Notification, error) {
	var row notificationRow
	query := `
UPDATE notification
SET title = $2, message = $3, type = $4, is_sent = $5, sent_at = $6
WHERE id = $1
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		ntf.ID, ntf.Title, ntf.Message, ntf.Type, ntf.IsSent, ntf.SentAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	return row.model(), nil
}

func (repo *notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM notification WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return nil
}
