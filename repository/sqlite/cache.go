package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/repository"
)

const maxLockRetries = 3

// Repository is a session cache of transcripts, video details and stage
// artifacts. Rows older than the TTL are invisible to reads and removed by
// PurgeExpired.
type Repository struct {
	db         *sql.DB
	statements *PreparedStatements
	ttl        time.Duration
	now        func() time.Time
}

var _ repository.Cache = (*Repository)(nil)

func NewRepository(ctx context.Context, dsn string, ttl time.Duration) (*Repository, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}

	stmts := &PreparedStatements{}
	if err := stmts.Prepare(ctx, db); err != nil {
		stmts.Close()
		db.Close()
		return nil, err
	}

	return &Repository{
		db:         db,
		statements: stmts,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

func (r *Repository) SaveTranscript(ctx context.Context, t *models.Transcript) error {
	const op = "SQLiteRepository.SaveTranscript"

	err := r.withLockRetry(ctx, func() error {
		_, err := r.statements.upsertTranscript.ExecContext(ctx,
			string(t.VideoID),
			t.Language,
			t.Text,
			t.FragmentCount,
			t.FetchedAt.UnixNano(),
			r.expiresAt(),
		)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to cache transcript")
	}
	return nil
}

func (r *Repository) FindTranscript(ctx context.Context, id models.VideoID, lang string) (*models.Transcript, error) {
	const op = "SQLiteRepository.FindTranscript"

	t := &models.Transcript{}
	var videoID string
	var fetchedAt int64

	err := r.statements.getTranscript.QueryRowContext(ctx, string(id), lang, r.now().UnixNano()).Scan(
		&videoID,
		&t.Language,
		&t.Text,
		&t.FragmentCount,
		&fetchedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Transcript not cached")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query transcript")
	}

	t.VideoID = models.VideoID(videoID)
	t.FetchedAt = time.Unix(0, fetchedAt)
	return t, nil
}

func (r *Repository) SaveArtifact(ctx context.Context, key repository.ArtifactKey, a *models.Artifact) error {
	const op = "SQLiteRepository.SaveArtifact"

	err := r.withLockRetry(ctx, func() error {
		_, err := r.statements.upsertArtifact.ExecContext(ctx,
			string(key.VideoID),
			key.Language,
			string(key.Stage),
			key.Model,
			a.Text,
			a.CreatedAt.UnixNano(),
			r.expiresAt(),
		)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to cache artifact")
	}
	return nil
}

func (r *Repository) FindArtifact(ctx context.Context, key repository.ArtifactKey) (*models.Artifact, error) {
	const op = "SQLiteRepository.FindArtifact"

	a := &models.Artifact{}
	var stage string
	var createdAt int64

	err := r.statements.getArtifact.QueryRowContext(ctx,
		string(key.VideoID),
		key.Language,
		string(key.Stage),
		key.Model,
		r.now().UnixNano(),
	).Scan(&stage, &a.Model, &a.Text, &createdAt)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Artifact not cached")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query artifact")
	}

	a.Stage = models.Stage(stage)
	a.CreatedAt = time.Unix(0, createdAt)
	return a, nil
}

func (r *Repository) SaveVideoInfo(ctx context.Context, id models.VideoID, info *models.VideoInfo) error {
	const op = "SQLiteRepository.SaveVideoInfo"

	err := r.withLockRetry(ctx, func() error {
		_, err := r.statements.upsertVideo.ExecContext(ctx,
			string(id),
			info.Title,
			info.Author,
			int64(info.Duration),
			r.expiresAt(),
		)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to cache video info")
	}
	return nil
}

func (r *Repository) FindVideoInfo(ctx context.Context, id models.VideoID) (*models.VideoInfo, error) {
	const op = "SQLiteRepository.FindVideoInfo"

	info := &models.VideoInfo{}
	var duration int64

	err := r.statements.getVideo.QueryRowContext(ctx, string(id), r.now().UnixNano()).Scan(
		&info.Title,
		&info.Author,
		&duration,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Video info not cached")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query video info")
	}

	info.Duration = time.Duration(duration)
	return info, nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (r *Repository) PurgeExpired(ctx context.Context) (int64, error) {
	const op = "SQLiteRepository.PurgeExpired"

	var removed int64
	now := r.now().UnixNano()

	err := WithTransaction(ctx, r.db, func(tx Executor) error {
		for _, query := range []string{purgeTranscriptsQuery, purgeArtifactsQuery, purgeVideosQuery} {
			res, err := tx.ExecContext(ctx, query, now)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed += n
		}
		return nil
	})
	if err != nil {
		return 0, errors.Internal(op, err, "Failed to purge cache")
	}
	return removed, nil
}

func (r *Repository) Close() error {
	if err := r.statements.Close(); err != nil {
		r.db.Close()
		return err
	}
	return r.db.Close()
}

func (r *Repository) expiresAt() int64 {
	if r.ttl <= 0 {
		return 0
	}
	return r.now().Add(r.ttl).UnixNano()
}

func (r *Repository) withLockRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < maxLockRetries; i++ {
		if err = fn(); err == nil || !isLockError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * 50 * time.Millisecond):
		}
	}
	return err
}

// isLockError matches both "database is locked" and the shared-cache
// "database table is locked", plus SQLITE_BUSY.
func isLockError(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrLocked || sqliteErr.Code == sqlite3.ErrBusy
	}
	msg := err.Error()
	return strings.Contains(msg, "locked") || strings.Contains(msg, "busy")
}
