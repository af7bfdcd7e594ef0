// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface for persisting users and notes.
//
// The connection is established lazily: the first operation opens it, runs
// schema migrations and caches the handle for the lifetime of the process.
// Concurrent first-time callers converge on a single connection attempt.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/singleflight"

	"github.com/patric-chuzhbe/ainotes/internal/models"
	"github.com/patric-chuzhbe/ainotes/internal/note"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed implementation of the notes storage.
type PostgresDB struct {
	dsn               string
	connectionTimeout time.Duration
	migrationsDir     string
	preReset          bool

	// open establishes and migrates the connection; replaced in tests
	open func(ctx context.Context) (*sql.DB, error)

	connectGroup singleflight.Group
	database     atomic.Pointer[sql.DB]
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables dropping the whole public schema before migration.
// It is meant for test setups only.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New returns a PostgresDB bound to the given DSN. No connection is made
// here: the first storage operation connects and migrates.
func New(
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) *PostgresDB {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	db := &PostgresDB{
		dsn:               databaseDSN,
		connectionTimeout: connectionTimeout,
		migrationsDir:     migrationsDir,
		preReset:          options.DBPreReset,
	}
	db.open = db.openAndMigrate

	return db
}

// conn returns the shared connection handle, establishing it on first use.
// The single-flight group collapses concurrent first-time calls into one
// open+migrate attempt; a failed attempt is retried by the next caller.
func (db *PostgresDB) conn(ctx context.Context) (*sql.DB, error) {
	if database := db.database.Load(); database != nil {
		return database, nil
	}

	result, err, _ := db.connectGroup.Do("connect", func() (interface{}, error) {
		if database := db.database.Load(); database != nil {
			return database, nil
		}

		database, err := db.open(ctx)
		if err != nil {
			return nil, err
		}

		db.database.Store(database)

		return database, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*sql.DB), nil
}

func (db *PostgresDB) openAndMigrate(ctx context.Context) (*sql.DB, error) {
	database, err := sql.Open("pgx", db.dsn)
	if err != nil {
		return nil, fmt.Errorf("opening the database handle: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("connecting to the database: %w", err)
	}

	if db.preReset {
		if err := resetDB(pingCtx, database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("error while `resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(database, db.migrationsDir); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return database, nil
}

// CreateUser inserts a new user record.
// Returns models.ErrConflict when the email is already registered.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	database, err := db.conn(ctx)
	if err != nil {
		return nil, err
	}

	_, err = database.ExecContext(
		ctx,
		`
			INSERT INTO users (id, email, password_hash, name, created_at)
				VALUES ($1, $2, $3, $4, $5)
		`,
		usr.ID,
		usr.Email,
		usr.PasswordHash,
		usr.Name,
		usr.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, models.ErrConflict
		}
		return nil, err
	}

	result := *usr

	return &result, nil
}

// FindUserByEmail fetches the user registered under the given email.
func (db *PostgresDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	database, err := db.conn(ctx)
	if err != nil {
		return nil, false, err
	}

	row := database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, name, created_at FROM users WHERE email = $1`,
		email,
	)

	return scanUser(row)
}

// GetUserByID fetches a user by their UUID.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	database, err := db.conn(ctx)
	if err != nil {
		return nil, false, err
	}

	row := database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, name, created_at FROM users WHERE id = $1`,
		userID,
	)

	return scanUser(row)
}

func scanUser(row *sql.Row) (*user.User, bool, error) {
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &usr.Name, &usr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// InsertNote stores a new note record.
func (db *PostgresDB) InsertNote(ctx context.Context, theNote *note.Note) error {
	database, err := db.conn(ctx)
	if err != nil {
		return err
	}

	_, err = database.ExecContext(
		ctx,
		`
			INSERT INTO notes (id, user_id, title, content, is_audio, is_favorite, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
		theNote.ID,
		theNote.UserID,
		theNote.Title,
		theNote.Content,
		theNote.IsAudio,
		theNote.IsFavorite,
		theNote.CreatedAt,
		theNote.UpdatedAt,
	)

	return err
}

// FindNotes returns the notes owned by userID, optionally filtered by a
// case-insensitive substring match against title or content, ordered by
// creation time per sortOrder.
func (db *PostgresDB) FindNotes(ctx context.Context, userID, search, sortOrder string) ([]note.Note, error) {
	database, err := db.conn(ctx)
	if err != nil {
		return nil, err
	}

	direction := "DESC"
	if sortOrder == models.SortOrderAsc {
		direction = "ASC"
	}

	rows, err := database.QueryContext(
		ctx,
		fmt.Sprintf(
			`
				SELECT id, user_id, title, content, is_audio, is_favorite, created_at, updated_at
					FROM notes
					WHERE user_id = $1
						AND ($2 = '' OR title ILIKE '%%' || $2 || '%%' OR content ILIKE '%%' || $2 || '%%')
					ORDER BY created_at %s, id
			`,
			direction,
		),
		userID,
		search,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []note.Note{}
	for rows.Next() {
		var theNote note.Note
		err = rows.Scan(
			&theNote.ID,
			&theNote.UserID,
			&theNote.Title,
			&theNote.Content,
			&theNote.IsAudio,
			&theNote.IsFavorite,
			&theNote.CreatedAt,
			&theNote.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		result = append(result, theNote)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetNoteByID fetches the note with the given id regardless of owner.
// Ownership is checked by the service layer.
func (db *PostgresDB) GetNoteByID(ctx context.Context, noteID string) (*note.Note, bool, error) {
	database, err := db.conn(ctx)
	if err != nil {
		return nil, false, err
	}

	row := database.QueryRowContext(
		ctx,
		`
			SELECT id, user_id, title, content, is_audio, is_favorite, created_at, updated_at
				FROM notes
				WHERE id = $1
		`,
		noteID,
	)

	theNote := &note.Note{}
	err = row.Scan(
		&theNote.ID,
		&theNote.UserID,
		&theNote.Title,
		&theNote.Content,
		&theNote.IsAudio,
		&theNote.IsFavorite,
		&theNote.CreatedAt,
		&theNote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return theNote, true, nil
}

// UpdateNote overwrites the mutable fields of the stored note.
func (db *PostgresDB) UpdateNote(ctx context.Context, theNote *note.Note) error {
	database, err := db.conn(ctx)
	if err != nil {
		return err
	}

	result, err := database.ExecContext(
		ctx,
		`
			UPDATE notes
				SET title = $2, content = $3, is_favorite = $4, updated_at = $5
				WHERE id = $1
		`,
		theNote.ID,
		theNote.Title,
		theNote.Content,
		theNote.IsFavorite,
		theNote.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteNote removes the note with the given id (hard delete).
func (db *PostgresDB) DeleteNote(ctx context.Context, noteID string) error {
	database, err := db.conn(ctx)
	if err != nil {
		return err
	}

	result, err := database.ExecContext(
		ctx,
		`DELETE FROM notes WHERE id = $1`,
		noteID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Ping verifies connectivity with the PostgreSQL database within the
// configured timeout, connecting first if needed.
func (db *PostgresDB) Ping(ctx context.Context) error {
	database, err := db.conn(ctx)
	if err != nil {
		return err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return database.PingContext(ctxWithTimeout)
}

// Close closes the database connection if one was established.
func (db *PostgresDB) Close() error {
	database := db.database.Load()
	if database == nil {
		return nil
	}

	return database.Close()
}

func resetDB(ctx context.Context, database *sql.DB) error {
	_, err := database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("error while `database.ExecContext()` calling: %w", err)
	}
	return nil
}
