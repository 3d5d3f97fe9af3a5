package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/models"
)

type fakeObjects struct {
	puts map[string][]byte
	ct   map[string]string
	err  error
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
		f.ct = map[string]string{}
	}
	f.puts[aws.ToString(in.Key)] = body
	f.ct[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func testReport() *models.Report {
	return &models.Report{
		ID:        "3f1c",
		VideoID:   "dQw4w9WgXcQ",
		Language:  "en",
		CreatedAt: time.Date(2024, 5, 1, 23, 0, 0, 0, time.FixedZone("x", -2*3600)),
	}
}

func TestSaveReport(t *testing.T) {
	fake := &fakeObjects{}
	client := newSpacesClient(fake, "notes", "reports")

	key, err := client.SaveReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, "reports/2024-05-02/dQw4w9WgXcQ/3f1c.json", key)
	assert.Equal(t, "application/json", fake.ct[key])

	var decoded models.Report
	require.NoError(t, json.Unmarshal(fake.puts[key], &decoded))
	assert.Equal(t, models.VideoID("dQw4w9WgXcQ"), decoded.VideoID)
}

func TestSaveRendered(t *testing.T) {
	fake := &fakeObjects{}
	client := newSpacesClient(fake, "notes", "")

	key, err := client.SaveRendered(context.Background(), testReport(), ".md", "text/markdown", []byte("# Demo"))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02/dQw4w9WgXcQ/3f1c.md", key)
	assert.Equal(t, "# Demo", string(fake.puts[key]))
}

func TestSaveReportUploadError(t *testing.T) {
	client := newSpacesClient(&fakeObjects{err: errors.New("denied")}, "notes", "reports")

	_, err := client.SaveReport(context.Background(), testReport())
	assert.ErrorContains(t, err, "denied")
}

func TestNewSpacesClientRequiresBucket(t *testing.T) {
	_, err := NewSpacesClient(context.Background(), config.StorageConfig{})
	assert.Error(t, err)
}
