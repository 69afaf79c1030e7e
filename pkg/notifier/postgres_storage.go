package notifier

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the notifications table DDL. Applied once at startup; the
// table is small enough that versioned migrations would be overhead.
const Schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	body              TEXT NOT NULL,
	category          TEXT NOT NULL,
	priority          TEXT NOT NULL,
	reservation_id    TEXT NOT NULL DEFAULT '',
	tracking_token    TEXT NOT NULL UNIQUE,
	email_sent        BOOLEAN NOT NULL DEFAULT FALSE,
	email_sent_at     TIMESTAMPTZ,
	email_opened      BOOLEAN NOT NULL DEFAULT FALSE,
	email_opened_at   TIMESTAMPTZ,
	client_ip         TEXT NOT NULL DEFAULT '',
	client_user_agent TEXT NOT NULL DEFAULT '',
	operator_read     BOOLEAN NOT NULL DEFAULT FALSE,
	operator_read_at  TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_notifications_reservation ON notifications (reservation_id);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (operator_read) WHERE NOT operator_read;
`

// PostgresStorage is a pgx-backed implementation of the Storage interface.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a Postgres notification storage over the pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

// ApplySchema creates the notifications table if it does not exist.
func (s *PostgresStorage) ApplySchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

const notificationColumns = `id, title, body, category, priority, reservation_id, tracking_token,
	email_sent, email_sent_at, email_opened, email_opened_at, client_ip, client_user_agent,
	operator_read, operator_read_at, created_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.Category, &n.Priority, &n.ReservationID,
		&n.TrackingToken, &n.EmailSent, &n.EmailSentAt, &n.EmailOpened, &n.EmailOpenedAt,
		&n.ClientIP, &n.ClientUserAgent, &n.OperatorRead, &n.OperatorReadAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *PostgresStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return ErrMissingID
	}
	if notif.TrackingToken == "" {
		return ErrMissingToken
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, title, body, category, priority, reservation_id,
			tracking_token, email_sent, email_sent_at, operator_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10)`,
		notif.ID, notif.Title, notif.Body, notif.Category, notif.Priority,
		notif.ReservationID, notif.TrackingToken, notif.EmailSent, notif.EmailSentAt,
		notif.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateToken
	}
	return err
}

func (s *PostgresStorage) Get(ctx context.Context, id string) (*Notification, error) {
	n, err := scanNotification(s.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

func (s *PostgresStorage) GetByToken(ctx context.Context, token string) (*Notification, error) {
	n, err := scanNotification(s.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE tracking_token = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	return n, err
}

func (s *PostgresStorage) List(ctx context.Context, opts ListOptions) ([]Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE TRUE`
	args := []any{}

	if opts.OnlyUnread {
		query += ` AND NOT operator_read`
	}
	if opts.ReservationID != "" {
		args = append(args, opts.ReservationID)
		query += ` AND reservation_id = $` + strconv.Itoa(len(args))
	}
	if len(opts.Categories) > 0 {
		cats := make([]string, len(opts.Categories))
		for i, c := range opts.Categories {
			cats[i] = string(c)
		}
		args = append(args, cats)
		query += ` AND category = ANY($` + strconv.Itoa(len(args)) + `)`
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		query += ` AND created_at > $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *PostgresStorage) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE NOT operator_read`).Scan(&count)
	return count, err
}

func (s *PostgresStorage) MarkRead(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications SET operator_read = TRUE, operator_read_at = now()
		WHERE id = ANY($1) AND NOT operator_read`, ids)
	return err
}

func (s *PostgresStorage) MarkUnread(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications SET operator_read = FALSE, operator_read_at = NULL
		WHERE id = ANY($1)`, ids)
	return err
}

func (s *PostgresStorage) MarkReadByReservation(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications SET operator_read = TRUE, operator_read_at = now()
		WHERE reservation_id = $1 AND NOT operator_read`, reservationID)
	return err
}

func (s *PostgresStorage) DeleteByReservation(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE reservation_id = $1`, reservationID)
	return err
}

func (s *PostgresStorage) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET email_sent = TRUE, email_sent_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkEmailOpened relies on the conditional WHERE clause for atomicity:
// two concurrent opens race on a single UPDATE and only one row change wins.
func (s *PostgresStorage) MarkEmailOpened(ctx context.Context, token string, at time.Time, clientIP, userAgent string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET email_opened = TRUE, email_opened_at = $2, client_ip = $3, client_user_agent = $4
		WHERE tracking_token = $1 AND NOT email_opened`,
		token, at, clientIP, userAgent)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Distinguish "already opened" from "no such token".
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE tracking_token = $1)`, token).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrTokenNotFound
	}
	return false, nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
