package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// Store writes events to the audit_messages table and reads an item's
// history back out of it
type Store struct {
	db       *sql.DB
	hostname string
}

// Message is a stored audit event
type Message struct {
	ID        int64                        `json:"id"`
	Facility  int                          `json:"facility"`
	Severity  int                          `json:"severity"`
	Timestamp time.Time                    `json:"timestamp"`
	Hostname  string                       `json:"hostname"`
	Appname   string                       `json:"appname"`
	Procid    string                       `json:"procid"`
	Msgid     string                       `json:"msgid"`
	Sdata     map[string]map[string]string `json:"sdata"`
	Message   string                       `json:"message"`
}

// Subject returns the type and id of the item the event is about
func (m Message) Subject() (string, string) {
	s := m.Sdata[SDIDSubject]
	return s["type"], s["id"]
}

// NewStore opens the audit database named by SEEK_AUDIT_DATABASE_URL.
// It returns nil when the variable is not set.
func NewStore() (*Store, error) {
	dbURL := os.Getenv("SEEK_AUDIT_DATABASE_URL")
	if dbURL == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("audit database: %w", err)
	}
	return NewStoreWithDB(db), nil
}

// NewStoreWithDB creates a store over an open connection
func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{db: db, hostname: hostname}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists an event
func (s *Store) Save(event Event) error {
	if s.db == nil {
		return nil
	}
	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO audit_messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		event.Facility(),
		int(event.Severity()),
		time.Now().UTC(),
		s.hostname,
		appName,
		os.Getpid(),
		event.MessageID(),
		sdata,
		event.Message(),
	)
	return err
}

// History returns the newest events about one item, newest first
func (s *Store) History(ctx context.Context, itemType, itemID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message
		FROM audit_messages
		WHERE sdata -> $1 ->> 'type' = $2 AND sdata -> $1 ->> 'id' = $3
		ORDER BY timestamp DESC, id DESC
		LIMIT $4
	`, SDIDSubject, itemType, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit history of %s %s: %w", itemType, itemID, err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			m                                Message
			hostname, appname, procid, msgid sql.NullString
			sdata                            []byte
		)
		if err := rows.Scan(&m.ID, &m.Facility, &m.Severity, &m.Timestamp, &hostname, &appname, &procid, &msgid, &sdata, &m.Message); err != nil {
			return nil, err
		}
		m.Hostname, m.Appname, m.Procid, m.Msgid = hostname.String, appname.String, procid.String, msgid.String
		if len(sdata) > 0 {
			if err := json.Unmarshal(sdata, &m.Sdata); err != nil {
				return nil, fmt.Errorf("audit message %d: %w", m.ID, err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Prune deletes events older than before and returns how many went
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_messages WHERE timestamp < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning audit messages: %w", err)
	}
	return res.RowsAffected()
}
