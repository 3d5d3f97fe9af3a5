package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/kkdai/youtube/v2"
	"golang.org/x/sync/singleflight"

	"github.com/nijaru/yt-notes/models"
)

const (
	videoLoaderTTL  = 5 * time.Minute
	videoLoaderSize = 32
)

type loadFunc func(ctx context.Context, id string) (*youtube.Video, error)

type loadedVideo struct {
	video    *youtube.Video
	loadedAt time.Time
}

// VideoLoader fetches player responses and keeps recent ones briefly, so the
// metadata lookup and the transcript fetch for one video share a single
// upstream call. Concurrent loads of the same id are collapsed.
type VideoLoader struct {
	client *youtube.Client
	load   loadFunc
	group  singleflight.Group
	ttl    time.Duration
	size   int
	now    func() time.Time

	mu      sync.Mutex
	entries map[models.VideoID]loadedVideo
}

func NewVideoLoader(client *youtube.Client) *VideoLoader {
	if client == nil {
		client = &youtube.Client{}
	}
	l := newVideoLoader(client.GetVideoContext)
	l.client = client
	return l
}

func newVideoLoader(load loadFunc) *VideoLoader {
	return &VideoLoader{
		load:    load,
		ttl:     videoLoaderTTL,
		size:    videoLoaderSize,
		now:     time.Now,
		entries: make(map[models.VideoID]loadedVideo),
	}
}

// Client returns the YouTube client the loader fetches with.
func (l *VideoLoader) Client() *youtube.Client {
	return l.client
}

func (l *VideoLoader) Load(ctx context.Context, id models.VideoID) (*youtube.Video, error) {
	if video := l.recent(id); video != nil {
		return video, nil
	}

	v, err, _ := l.group.Do(string(id), func() (interface{}, error) {
		if video := l.recent(id); video != nil {
			return video, nil
		}
		video, err := l.load(ctx, string(id))
		if err != nil {
			return nil, err
		}
		l.store(id, video)
		return video, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*youtube.Video), nil
}

func (l *VideoLoader) recent(id models.VideoID) *youtube.Video {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[id]
	if !ok || l.now().Sub(entry.loadedAt) >= l.ttl {
		return nil
	}
	return entry.video
}

func (l *VideoLoader) store(id models.VideoID, video *youtube.Video) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, entry := range l.entries {
		if now.Sub(entry.loadedAt) >= l.ttl {
			delete(l.entries, key)
		}
	}

	for len(l.entries) >= l.size {
		var oldest models.VideoID
		var oldestAt time.Time
		for key, entry := range l.entries {
			if oldest == "" || entry.loadedAt.Before(oldestAt) {
				oldest, oldestAt = key, entry.loadedAt
			}
		}
		delete(l.entries, oldest)
	}

	l.entries[id] = loadedVideo{video: video, loadedAt: now}
}
