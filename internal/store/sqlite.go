package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/pbaille/timelines/internal/domain"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound is returned by GetEvent when no row has the requested id
	ErrNotFound = errors.New("event not found")
	// ErrCorruptRow marks a stored row whose media or date column cannot be decoded
	ErrCorruptRow = errors.New("corrupt event row")
)

const selectEvents = "SELECT id, title, note, date, tag, media FROM events"

// eventRow mirrors the events table; note, tag and media are nullable on disk
type eventRow struct {
	ID    int64          `db:"id"`
	Title string         `db:"title"`
	Note  sql.NullString `db:"note"`
	Date  string         `db:"date"`
	Tag   sql.NullString `db:"tag"`
	Media sql.NullString `db:"media"`
}

func (r eventRow) decode() (domain.Event, error) {
	media, err := decodeMedia(r.Media)
	if err != nil {
		return domain.Event{}, err
	}
	date, err := time.Parse(domain.DateLayout, r.Date)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: date %q", ErrCorruptRow, r.Date)
	}
	return domain.Event{
		ID:    r.ID,
		Title: r.Title,
		Note:  r.Note.String,
		Date:  date,
		Tag:   r.Tag.String,
		Media: media,
	}, nil
}

// Store handles database operations for the events table
type Store struct {
	db *sqlx.DB
}

// Open returns a store for the database at dbPath without touching the schema.
// Reads against a store that was never initialized come back empty.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// New opens and initializes the database at dbPath
func New(dbPath string) (*Store, error) {
	s, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Initialize switches the database to WAL mode and creates the events table.
// It is safe to call on every start.
func (s *Store) Initialize() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("enable wal: %w", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// AddEvent inserts a new event and returns its id
func (s *Store) AddEvent(title, note string, date time.Time, tag string, media []string) (int64, error) {
	dateText, mediaText, err := encodeFields(date, media)
	if err != nil {
		return 0, err
	}

	res, err := s.db.Exec(
		"INSERT INTO events (title, note, date, tag, media) VALUES (?, ?, ?, ?, ?)",
		title, note, dateText, tag, mediaText,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// GetEvents returns every event, most recent date first. Query failures are
// logged and yield an empty list; rows that fail to decode are skipped.
func (s *Store) GetEvents() []domain.Event {
	var rows []eventRow
	if err := s.db.Select(&rows, selectEvents+" ORDER BY date DESC, id DESC"); err != nil {
		log.Warn().Err(err).Msg("list events failed, returning empty timeline")
		return []domain.Event{}
	}

	events := make([]domain.Event, 0, len(rows))
	for _, r := range rows {
		e, err := r.decode()
		if err != nil {
			log.Warn().Err(err).Int64("event_id", r.ID).Msg("skipping unreadable event")
			continue
		}
		events = append(events, e)
	}
	return events
}

// GetEvent retrieves a single event by id
func (s *Store) GetEvent(id int64) (*domain.Event, error) {
	var r eventRow
	err := s.db.Get(&r, selectEvents+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	e, err := r.decode()
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return &e, nil
}

// SearchEvents returns the events matching f, most recent date first
func (s *Store) SearchEvents(f domain.Filter) []domain.Event {
	return f.Apply(s.GetEvents())
}

// UpdateEvent replaces every field of the event with the given id.
// It reports false, without error, when no event has that id.
func (s *Store) UpdateEvent(id int64, title, note string, date time.Time, tag string, media []string) (bool, error) {
	dateText, mediaText, err := encodeFields(date, media)
	if err != nil {
		return false, err
	}

	res, err := s.db.Exec(
		"UPDATE events SET title = ?, note = ?, date = ?, tag = ?, media = ? WHERE id = ?",
		title, note, dateText, tag, mediaText, id,
	)
	if err != nil {
		return false, fmt.Errorf("update event: %w", err)
	}
	return affected(res, "update event")
}

// DeleteEvent removes the event with the given id.
// It reports false, without error, when no event has that id.
func (s *Store) DeleteEvent(id int64) (bool, error) {
	res, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return affected(res, "delete event")
}

func encodeFields(date time.Time, media []string) (string, string, error) {
	dateText, err := domain.FormatDate(date)
	if err != nil {
		return "", "", err
	}
	mediaText, err := encodeMedia(media)
	if err != nil {
		return "", "", err
	}
	return dateText, mediaText, nil
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}
