package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetStorage persists downloaded media content.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// AssetUpdater records mirroring outcomes on the video document.
type AssetUpdater interface {
	MarkAssetReady(ctx context.Context, videoID primitive.ObjectID, location string, size int64) error
	MarkAssetFailed(ctx context.Context, videoID primitive.ObjectID) error
}

// IngestorConfig controls the concurrency characteristics of the ingestor.
type IngestorConfig struct {
	QueueSize    int
	Workers      int
	FetchTimeout time.Duration
}

// Job identifies a video whose remote media should be mirrored into the
// service's own bucket.
type Job struct {
	VideoID  primitive.ObjectID
	MediaURL string
}

// Ingestor asynchronously copies uploaded media from its CDN location into
// the object store so the catalog does not depend on a third party keeping
// the file around. It never touches engagement state.
type Ingestor struct {
	storage AssetStorage
	updater AssetUpdater
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var errIngestorClosed = errors.New("media ingestor closed")

// NewIngestor constructs a background worker pool that mirrors media assets.
func NewIngestor(storage AssetStorage, updater AssetUpdater, cfg IngestorConfig, logger *slog.Logger) *Ingestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &Ingestor{
		storage: storage,
		updater: updater,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		timeout: cfg.FetchTimeout,
		logger:  logger,
		jobs:    make(chan Job, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Enqueue schedules mirroring for the supplied video.
func (i *Ingestor) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	case i.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (i *Ingestor) Shutdown(ctx context.Context) error {
	i.once.Do(func() {
		i.cancel()
		close(i.jobs)
	})

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (i *Ingestor) worker() {
	defer i.wg.Done()

	for {
		select {
		case <-i.ctx.Done():
			return
		case job, ok := <-i.jobs:
			if !ok {
				return
			}
			i.handleJob(job)
		}
	}
}

func (i *Ingestor) handleJob(job Job) {
	if i.storage == nil || i.updater == nil {
		i.logger.Error("media ingestor missing dependencies", "hasStorage", i.storage != nil, "hasUpdater", i.updater != nil)
		return
	}

	fetchCtx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	location, size, err := i.mirror(fetchCtx, job)
	if err != nil {
		i.logger.Error("media mirroring failed", "videoId", job.VideoID.Hex(), "url", job.MediaURL, "error", err)
		i.recordFailure(job.VideoID)
		return
	}

	if err := i.recordSuccess(job.VideoID, location, size); err != nil {
		i.logger.Error("mark asset ready", "videoId", job.VideoID.Hex(), "error", err)
		i.recordFailure(job.VideoID)
	}
}

func (i *Ingestor) mirror(ctx context.Context, job Job) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.MediaURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build media request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("fetch media: unexpected status %d", resp.StatusCode)
	}

	counted := &countingReader{r: resp.Body}
	key := assetKey(job)
	location, err := i.storage.Save(ctx, key, counted)
	if err != nil {
		return "", 0, fmt.Errorf("store media: %w", err)
	}

	return location, counted.n, nil
}

func (i *Ingestor) recordFailure(videoID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.updater.MarkAssetFailed(ctx, videoID); err != nil {
		i.logger.Error("record asset failure", "videoId", videoID.Hex(), "error", err)
	}
}

func (i *Ingestor) recordSuccess(videoID primitive.ObjectID, location string, size int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return i.updater.MarkAssetReady(ctx, videoID, location, size)
}

func assetKey(job Job) string {
	name := path.Base(strings.SplitN(job.MediaURL, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "media"
	}
	return path.Join("videos", job.VideoID.Hex(), name)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
