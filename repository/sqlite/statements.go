package sqlite

import (
	"context"
	"database/sql"

	"github.com/nijaru/yt-notes/errors"
)

const (
	upsertTranscriptQuery = `
        INSERT INTO transcripts (
            video_id, language, text, fragment_count, fetched_at, expires_at
        ) VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(video_id, language) DO UPDATE SET
            text = excluded.text,
            fragment_count = excluded.fragment_count,
            fetched_at = excluded.fetched_at,
            expires_at = excluded.expires_at
    `

	getTranscriptQuery = `
        SELECT video_id, language, text, fragment_count, fetched_at
        FROM transcripts
        WHERE video_id = ? AND language = ? AND (expires_at = 0 OR expires_at > ?)
    `

	upsertArtifactQuery = `
        INSERT INTO artifacts (
            video_id, language, stage, model, text, created_at, expires_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(video_id, language, stage, model) DO UPDATE SET
            text = excluded.text,
            created_at = excluded.created_at,
            expires_at = excluded.expires_at
    `

	getArtifactQuery = `
        SELECT stage, model, text, created_at
        FROM artifacts
        WHERE video_id = ? AND language = ? AND stage = ? AND model = ?
          AND (expires_at = 0 OR expires_at > ?)
    `

	upsertVideoQuery = `
        INSERT INTO videos (video_id, title, author, duration, expires_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(video_id) DO UPDATE SET
            title = excluded.title,
            author = excluded.author,
            duration = excluded.duration,
            expires_at = excluded.expires_at
    `

	getVideoQuery = `
        SELECT title, author, duration
        FROM videos
        WHERE video_id = ? AND (expires_at = 0 OR expires_at > ?)
    `

	purgeTranscriptsQuery = `
        DELETE FROM transcripts WHERE expires_at != 0 AND expires_at <= ?
    `

	purgeArtifactsQuery = `
        DELETE FROM artifacts WHERE expires_at != 0 AND expires_at <= ?
    `

	purgeVideosQuery = `
        DELETE FROM videos WHERE expires_at != 0 AND expires_at <= ?
    `
)

type PreparedStatements struct {
	upsertTranscript *sql.Stmt
	getTranscript    *sql.Stmt
	upsertArtifact   *sql.Stmt
	getArtifact      *sql.Stmt
	upsertVideo      *sql.Stmt
	getVideo         *sql.Stmt
}

func (stmts *PreparedStatements) Prepare(ctx context.Context, db *sql.DB) error {
	const op = "PreparedStatements.Prepare"

	var err error

	if stmts.upsertTranscript, err = db.PrepareContext(ctx, upsertTranscriptQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare upsert transcript statement")
	}

	if stmts.getTranscript, err = db.PrepareContext(ctx, getTranscriptQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare get transcript statement")
	}

	if stmts.upsertArtifact, err = db.PrepareContext(ctx, upsertArtifactQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare upsert artifact statement")
	}

	if stmts.getArtifact, err = db.PrepareContext(ctx, getArtifactQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare get artifact statement")
	}

	if stmts.upsertVideo, err = db.PrepareContext(ctx, upsertVideoQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare upsert video statement")
	}

	if stmts.getVideo, err = db.PrepareContext(ctx, getVideoQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare get video statement")
	}

	return nil
}

func (stmts *PreparedStatements) Close() error {
	for _, stmt := range []*sql.Stmt{
		stmts.upsertTranscript,
		stmts.getTranscript,
		stmts.upsertArtifact,
		stmts.getArtifact,
		stmts.upsertVideo,
		stmts.getVideo,
	} {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
