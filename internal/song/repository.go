package song

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const songColumns = `id, user_id, title, artist, song_path, image_path, created_at`

// Repository handles all song and liked_songs database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert creates a song row and returns the stored record with its
// server-assigned id and timestamp.
func (r *Repository) Insert(ctx context.Context, userID *string, title, artist, songPath, imagePath string) (*Song, error) {
	s := &Song{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO songs (user_id, title, artist, song_path, image_path)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+songColumns,
		userID, title, artist, songPath, imagePath,
	).Scan(&s.ID, &s.UserID, &s.Title, &s.Artist, &s.SongPath, &s.ImagePath, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}
	return s, nil
}

// GetByID fetches a song by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Song, error) {
	s := &Song{}
	err := r.db.QueryRow(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Title, &s.Artist, &s.SongPath, &s.ImagePath, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get song by id: %w", err)
	}
	return s, nil
}

// DeleteByID removes a song row by primary key. Blob cleanup is the delete
// flow's responsibility, not the store's.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all songs, newest first.
func (r *Repository) List(ctx context.Context) ([]Song, error) {
	return r.list(ctx,
		`SELECT `+songColumns+` FROM songs ORDER BY created_at DESC`)
}

// SearchByTitle returns songs whose title contains q, case-insensitive, newest first.
func (r *Repository) SearchByTitle(ctx context.Context, q string) ([]Song, error) {
	return r.list(ctx,
		`SELECT `+songColumns+` FROM songs
		 WHERE title ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC`, q)
}

// SearchByArtist returns songs whose artist contains q, case-insensitive, newest first.
func (r *Repository) SearchByArtist(ctx context.Context, q string) ([]Song, error) {
	return r.list(ctx,
		`SELECT `+songColumns+` FROM songs
		 WHERE artist ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC`, q)
}

// ListByUser returns the songs uploaded by userID, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Song, error) {
	return r.list(ctx,
		`SELECT `+songColumns+` FROM songs
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Song, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		var s Song
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Artist, &s.SongPath, &s.ImagePath, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// Like records that userID liked songID. The (user_id, song_id) primary key
// makes a duplicate like an idempotent no-op.
func (r *Repository) Like(ctx context.Context, userID string, songID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO liked_songs (user_id, song_id) VALUES ($1, $2)`,
		userID, songID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("like song: %w", err)
	}
	return nil
}

// Unlike removes the exact (userID, songID) like. Removing a like that does
// not exist is a no-op success.
func (r *Repository) Unlike(ctx context.Context, userID string, songID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM liked_songs WHERE user_id = $1 AND song_id = $2`,
		userID, songID)
	if err != nil {
		return fmt.Errorf("unlike song: %w", err)
	}
	return nil
}

// IsLiked reports whether userID has liked songID.
func (r *Repository) IsLiked(ctx context.Context, userID string, songID int64) (bool, error) {
	var liked bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM liked_songs WHERE user_id = $1 AND song_id = $2)`,
		userID, songID,
	).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("check liked: %w", err)
	}
	return liked, nil
}

// ListLiked returns the songs userID has liked, most recently liked first.
func (r *Repository) ListLiked(ctx context.Context, userID string) ([]Song, error) {
	return r.list(ctx,
		`SELECT s.id, s.user_id, s.title, s.artist, s.song_path, s.image_path, s.created_at
		 FROM liked_songs l
		 JOIN songs s ON s.id = l.song_id
		 WHERE l.user_id = $1
		 ORDER BY l.created_at DESC`, userID)
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation checks for a PostgreSQL foreign_key_violation (code 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
