// Package inbox stores contact-form submissions in SQLite.
package inbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ThanksMessage is shown after a submission is stored.
const ThanksMessage = "¡Gracias por contactarnos! Nos pondremos en contacto contigo pronto."

// timeLayout is fixed-width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	ErrMissingField = errors.New("inbox: missing field")
	ErrInvalidEmail = errors.New("inbox: invalid email")
)

const schema = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL,
	message     TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS contact_messages_created_at ON contact_messages(created_at);
`

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Normalize trims every field and checks that none is empty and that the
// email address parses.
func (m *Message) Normalize() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)
	switch {
	case m.Name == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case m.Email == "":
		return fmt.Errorf("%w: email", ErrMissingField)
	case m.Message == "":
		return fmt.Errorf("%w: message", ErrMissingField)
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, m.Email)
	}
	return nil
}

// Store is safe for concurrent use; database/sql serializes access.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save validates m, assigns an id and timestamp and inserts it.
func (s *Store) Save(ctx context.Context, m Message) (Message, error) {
	if err := m.Normalize(); err != nil {
		return Message{}, err
	}
	m.ID = uuid.New().String()
	m.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, m.Message, m.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// List returns up to limit messages, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Message, error) {
	query := `SELECT id, name, email, message, created_at FROM contact_messages ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var created string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n)
	return n, err
}
