package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/repository"
)

func newTestRepository(t *testing.T, ttl time.Duration) *Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	repo, err := NewRepository(context.Background(), dsn, ttl)
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTranscriptRoundTrip(t *testing.T) {
	repo := newTestRepository(t, time.Hour)
	ctx := context.Background()

	transcript := &models.Transcript{
		VideoID:       "dQw4w9WgXcQ",
		Language:      "en",
		Text:          "Hello world",
		FragmentCount: 2,
		FetchedAt:     time.Now(),
	}

	if err := repo.SaveTranscript(ctx, transcript); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.FindTranscript(ctx, "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Hello world" || got.FragmentCount != 2 {
		t.Errorf("unexpected transcript: %+v", got)
	}
	if !got.FetchedAt.Equal(time.Unix(0, transcript.FetchedAt.UnixNano())) {
		t.Errorf("expected fetched_at %v, got %v", transcript.FetchedAt, got.FetchedAt)
	}

	if _, err := repo.FindTranscript(ctx, "dQw4w9WgXcQ", "de"); !errors.IsNotFound(err) {
		t.Errorf("expected not found for other language, got %v", err)
	}
}

func TestArtifactKeyedByModel(t *testing.T) {
	repo := newTestRepository(t, time.Hour)
	ctx := context.Background()

	key := repository.ArtifactKey{VideoID: "dQw4w9WgXcQ", Language: "en", Stage: models.StageTranslate, Model: "m1"}
	artifact := &models.Artifact{Stage: models.StageTranslate, Text: "Hola mundo", Model: "m1", CreatedAt: time.Now()}

	if err := repo.SaveArtifact(ctx, key, artifact); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.FindArtifact(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Hola mundo" || got.Stage != models.StageTranslate {
		t.Errorf("unexpected artifact: %+v", got)
	}

	key.Model = "m2"
	if _, err := repo.FindArtifact(ctx, key); !errors.IsNotFound(err) {
		t.Errorf("expected not found for other model, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	repo := newTestRepository(t, time.Minute)
	ctx := context.Background()

	now := time.Now()
	repo.now = func() time.Time { return now }

	transcript := &models.Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", Text: "x", FetchedAt: now}
	if err := repo.SaveTranscript(ctx, transcript); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.now = func() time.Time { return now.Add(2 * time.Minute) }

	if _, err := repo.FindTranscript(ctx, "dQw4w9WgXcQ", "en"); !errors.IsNotFound(err) {
		t.Errorf("expected expired entry to be hidden, got %v", err)
	}

	removed, err := repo.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 row removed, got %d", removed)
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	repo := newTestRepository(t, 0)
	ctx := context.Background()

	now := time.Now()
	repo.now = func() time.Time { return now }
	if err := repo.SaveTranscript(ctx, &models.Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", FetchedAt: now}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.now = func() time.Time { return now.Add(24 * time.Hour) }
	if _, err := repo.FindTranscript(ctx, "dQw4w9WgXcQ", "en"); err != nil {
		t.Errorf("expected entry to persist, got %v", err)
	}
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	repo := newTestRepository(t, time.Hour)
	ctx := context.Background()

	first, err := repo.db.Conn(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer first.Close()

	second, err := repo.db.Conn(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d: unexpected error: %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d: expected busy_timeout 5000, got %d", i, timeout)
		}
	}
}

func TestIsLockError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"database locked", stderrors.New("database is locked"), true},
		{"shared cache table locked", stderrors.New("database table is locked: transcripts"), true},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"locked code", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"other", stderrors.New("no such table"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLockError(tt.err); got != tt.want {
				t.Errorf("isLockError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestVideoInfoRoundTrip(t *testing.T) {
	repo := newTestRepository(t, time.Hour)
	ctx := context.Background()

	if _, err := repo.FindVideoInfo(ctx, "dQw4w9WgXcQ"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found before save, got %v", err)
	}

	info := &models.VideoInfo{Title: "Demo", Author: "Rick", Duration: 212 * time.Second}
	if err := repo.SaveVideoInfo(ctx, "dQw4w9WgXcQ", info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.FindVideoInfo(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *info {
		t.Errorf("expected %+v, got %+v", info, got)
	}
}
