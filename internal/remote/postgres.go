package remote

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
)

// NotifyChannel is the LISTEN/NOTIFY channel announcing remote writes
const NotifyChannel = "mirrorday_reminders"

// PostgresBackend stores the shared reminder collection in a Postgres
// database reachable by every device. Each write raises a NOTIFY so other
// devices re-fetch. A device also hears its own writes; the resulting
// self-refresh merges to a no-op.
type PostgresBackend struct {
	db *sql.DB

	// announce, when set, broadcasts a change signal on an external
	// transport (AMQP) in addition to pg_notify.
	announce func()
}

// NewPostgresBackend opens the shared database and ensures the schema
func NewPostgresBackend(url string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	b := &PostgresBackend{db: db}
	if err := b.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *PostgresBackend) ensureSchema() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			description TEXT,
			background_color TEXT,
			modified_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure remote schema: %w", classify(err))
	}
	return nil
}

// SetAnnounce installs an extra broadcast hook fired after every write
func (b *PostgresBackend) SetAnnounce(fn func()) { b.announce = fn }

// Close releases the database connection pool
func (b *PostgresBackend) Close() error { return b.db.Close() }

// Ping verifies connectivity; used by the health endpoint
func (b *PostgresBackend) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// FetchAll returns every remote reminder with its record reference attached
func (b *PostgresBackend) FetchAll(ctx context.Context) ([]models.Reminder, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, title, date, description, background_color, modified_at
		FROM reminders`)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Reminder
	for rows.Next() {
		var (
			r     models.Reminder
			desc  sql.NullString
			color sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Date, &desc, &color, &r.ModifiedAt); err != nil {
			return nil, apperr.DataCorruption(err)
		}
		if desc.Valid {
			r.Description = &desc.String
		}
		if color.Valid {
			c := models.BackgroundColor(color.String)
			r.BackgroundColor = &c
		}
		r.RemoteRef = r.ID.String()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Save upserts the record and notifies other devices
func (b *PostgresBackend) Save(ctx context.Context, r models.Reminder) (string, error) {
	var desc, color sql.NullString
	if r.Description != nil {
		desc = sql.NullString{String: *r.Description, Valid: true}
	}
	if r.BackgroundColor != nil {
		color = sql.NullString{String: string(*r.BackgroundColor), Valid: true}
	}

	_, err := b.db.ExecContext(ctx, `
		INSERT INTO reminders (id, title, date, description, background_color, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			date = EXCLUDED.date,
			description = EXCLUDED.description,
			background_color = EXCLUDED.background_color,
			modified_at = EXCLUDED.modified_at`,
		r.ID, r.Title, r.Date, desc, color, r.ModifiedAt)
	if err != nil {
		return "", classify(err)
	}

	b.notifyPeers(ctx)
	return r.ID.String(), nil
}

// Delete removes the record by reference and notifies other devices
func (b *PostgresBackend) Delete(ctx context.Context, ref string) error {
	id, err := uuid.Parse(ref)
	if err != nil {
		return apperr.Backend(fmt.Sprintf("malformed record reference %q", ref), err)
	}
	if _, err := b.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id); err != nil {
		return classify(err)
	}
	b.notifyPeers(ctx)
	return nil
}

func (b *PostgresBackend) notifyPeers(ctx context.Context) {
	// Best effort: a missed notification only delays convergence until the
	// next refresh.
	_, _ = b.db.ExecContext(ctx, `SELECT pg_notify($1, '')`, NotifyChannel)
	if b.announce != nil {
		b.announce()
	}
}

// classify maps driver errors onto the application taxonomy
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return apperr.NetworkUnavailable(err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return apperr.Backend(pqErr.Message, err)
	}
	return apperr.Backend(err.Error(), err)
}

// PGListener streams remote change notifications over LISTEN/NOTIFY
type PGListener struct {
	listener *pq.Listener
	ch       chan struct{}
	done     chan struct{}
}

// NewPGListener subscribes to the shared database's change channel
func NewPGListener(url string) (*PGListener, error) {
	listener := pq.NewListener(url, 10*time.Second, time.Minute, nil)
	if err := listener.Listen(NotifyChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", NotifyChannel, classify(err))
	}

	l := &PGListener{
		listener: listener,
		ch:       make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go l.pump()
	return l, nil
}

func (l *PGListener) pump() {
	defer close(l.ch)
	for {
		select {
		case <-l.done:
			return
		case n, ok := <-l.listener.Notify:
			if !ok {
				return
			}
			// n is nil after a reconnect; treat it as a change signal
			// since notifications may have been missed while away.
			_ = n
			select {
			case l.ch <- struct{}{}:
			default:
			}
		}
	}
}

// Changes implements Notifier
func (l *PGListener) Changes() <-chan struct{} { return l.ch }

// Close implements Notifier
func (l *PGListener) Close() error {
	close(l.done)
	return l.listener.Close()
}
