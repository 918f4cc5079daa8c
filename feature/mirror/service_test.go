package mirror

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"listing-mirror/core/reconcile"
	"listing-mirror/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBucket = "test-bucket"

type fakeSource struct {
	entries  []reconcile.RawEntry
	bodies   map[string][]byte
	err      error
	listings atomic.Int32
	block    chan struct{}
}

func (f *fakeSource) Listing(ctx context.Context) ([]reconcile.RawEntry, error) {
	f.listings.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.entries, f.err
}

func (f *fakeSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	body, ok := f.bodies[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return body, nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []*Run
}

func (f *fakeRecorder) Record(ctx context.Context, run *Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

func size(n int64) *int64 { return &n }

func testConfig() Config {
	return Config{
		Prefix:         "bls_data/",
		Concurrency:    2,
		IndexName:      "index.html",
		PresignSeconds: 3600,
	}
}

func newTestService(client *mocks.Client, src Source, cfg Config) *Service {
	return NewService(client, testBucket, src, cfg, zap.NewNop())
}

func storedObjects() []minio.ObjectInfo {
	return []minio.ObjectInfo{
		{Key: "bls_data/index.html", Size: 900, UserMetadata: map[string]string{}},
		{Key: "bls_data/old.txt", Size: 4, UserMetadata: map[string]string{}},
		{Key: "bls_data/same.txt", Size: 4, UserMetadata: map[string]string{
			"X-Amz-Meta-Source-Size":          "4",
			"X-Amz-Meta-Source-Last-Modified": "2024-01-05T08:30:00",
		}},
	}
}

func sourceEntries() []reconcile.RawEntry {
	return []reconcile.RawEntry{
		{FileName: "same.txt", Link: "/pub/same.txt", Size: size(4), LastModified: "1/5/2024 8:30 AM"},
		{FileName: "new.txt", Link: "/pub/new.txt", Size: size(3), LastModified: "2/1/2024 1:00 PM"},
	}
}

// TestService_Sync tests a full pass: withdrawn removed, new uploaded, index left alone.
func TestService_Sync(t *testing.T) {
	client := new(mocks.Client)
	src := &fakeSource{
		entries: sourceEntries(),
		bodies:  map[string][]byte{"/pub/new.txt": []byte("new")},
	}
	recorder := &fakeRecorder{}

	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel(storedObjects()...)).Once()
	client.On("RemoveObject", mock.Anything, testBucket, "bls_data/old.txt", mock.Anything).Return(nil).Once()
	client.On("PutObject", mock.Anything, testBucket, "bls_data/new.txt", mock.Anything, int64(3),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.UserMetadata[reconcile.MetaSourceSize] == "3" &&
				o.UserMetadata[reconcile.MetaSourceLastModified] == "2024-02-01T13:00:00"
		})).Return(minio.UploadInfo{}, nil).Once()

	svc := newTestService(client, src, testConfig())
	svc.SetRecorder(recorder)

	run, err := svc.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.False(t, run.DryRun)
	assert.Equal(t, 1, run.Plan.Summary.Withdrawn)
	assert.Equal(t, 1, run.Plan.Summary.New)
	assert.Equal(t, 1, run.Plan.Summary.Unchanged)
	assert.True(t, run.Converged())
	assert.Nil(t, run.Index)

	require.Len(t, recorder.runs, 1)
	assert.Equal(t, run.ID, recorder.runs[0].ID)

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "RemoveObject", mock.Anything, testBucket, "bls_data/index.html", mock.Anything)
}

func TestService_Plan(t *testing.T) {
	client := new(mocks.Client)
	src := &fakeSource{entries: sourceEntries()}

	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel(storedObjects()...)).Once()

	svc := newTestService(client, src, testConfig())
	run, err := svc.Plan(context.Background())
	require.NoError(t, err)

	assert.True(t, run.DryRun)
	assert.Nil(t, run.Report)
	assert.False(t, run.Converged())
	assert.Len(t, run.Plan.Actions, 2)

	client.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestService_TeardownGuard tests that an empty listing only empties the mirror when allowed.
func TestService_TeardownGuard(t *testing.T) {
	objects := []minio.ObjectInfo{{Key: "bls_data/a.txt", Size: 1, UserMetadata: map[string]string{}}}

	t.Run("Refused", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel(objects...)).Once()

		svc := newTestService(client, &fakeSource{}, testConfig())
		run, err := svc.Sync(context.Background(), SyncOptions{})

		assert.ErrorIs(t, err, ErrTeardownRefused)
		require.NotNil(t, run)
		assert.Equal(t, 1, run.Plan.Summary.DeleteActions)
		client.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Allowed", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel(objects...)).Once()
		client.On("RemoveObject", mock.Anything, testBucket, "bls_data/a.txt", mock.Anything).Return(nil).Once()

		svc := newTestService(client, &fakeSource{}, testConfig())
		run, err := svc.Sync(context.Background(), SyncOptions{AllowTeardown: true})

		require.NoError(t, err)
		assert.True(t, run.Converged())
		client.AssertExpectations(t)
	})
}

func TestService_SyncErrors(t *testing.T) {
	t.Run("ListingFails", func(t *testing.T) {
		client := new(mocks.Client)
		svc := newTestService(client, &fakeSource{err: errors.New("403 forbidden")}, testConfig())

		_, err := svc.Sync(context.Background(), SyncOptions{})
		assert.ErrorContains(t, err, "403 forbidden")
	})

	t.Run("UnusableListing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel()).Once()

		svc := newTestService(client, &fakeSource{entries: []reconcile.RawEntry{{}}}, testConfig())
		_, err := svc.Sync(context.Background(), SyncOptions{})
		assert.ErrorIs(t, err, reconcile.ErrInvalidInput)
	})

	t.Run("InventoryFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, testBucket, mock.Anything).
			Return(mocks.ObjectChannel(minio.ObjectInfo{Err: errors.New("access denied")})).Once()

		svc := newTestService(client, &fakeSource{entries: sourceEntries()}, testConfig())
		_, err := svc.Sync(context.Background(), SyncOptions{})
		assert.ErrorContains(t, err, "access denied")
	})
}

// TestService_SyncPartialFailure tests that a failed upload is reported without failing the run.
func TestService_SyncPartialFailure(t *testing.T) {
	client := new(mocks.Client)
	src := &fakeSource{entries: sourceEntries(), bodies: map[string][]byte{}}

	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel(storedObjects()...)).Once()
	client.On("RemoveObject", mock.Anything, testBucket, "bls_data/old.txt", mock.Anything).Return(nil).Once()

	svc := newTestService(client, src, testConfig())
	run, err := svc.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)

	assert.False(t, run.Converged())
	require.Len(t, run.Report.Failures(), 1)
	assert.Equal(t, "bls_data/new.txt", run.Report.Failures()[0].Key)
	assert.Equal(t, reconcile.StageFetch, run.Report.Failures()[0].Stage)
}

// TestService_SyncCoalesces tests that overlapping syncs share one pass.
func TestService_SyncCoalesces(t *testing.T) {
	client := new(mocks.Client)
	src := &fakeSource{block: make(chan struct{})}
	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel()).Once()

	svc := newTestService(client, src, testConfig())

	var wg sync.WaitGroup
	runs := make([]*Run, 2)
	for i := range runs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runs[i], _ = svc.Sync(context.Background(), SyncOptions{})
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	close(src.block)
	wg.Wait()

	assert.Equal(t, int32(1), src.listings.Load())
	require.NotNil(t, runs[0])
	assert.Same(t, runs[0], runs[1])
}

// TestService_SyncOutlivesFirstCaller tests that a joined caller still gets a
// complete pass after the caller that started it goes away.
func TestService_SyncOutlivesFirstCaller(t *testing.T) {
	client := new(mocks.Client)
	src := &fakeSource{
		entries: sourceEntries(),
		bodies: map[string][]byte{
			"/pub/same.txt": []byte("same"),
			"/pub/new.txt":  []byte("new"),
		},
		block: make(chan struct{}),
	}
	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel()).Once()
	client.On("PutObject", mock.Anything, testBucket, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	svc := newTestService(client, src, testConfig())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Sync(firstCtx, SyncOptions{})
		firstErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	joined := make(chan *Run, 1)
	go func() {
		run, _ := svc.Sync(context.Background(), SyncOptions{})
		joined <- run
	}()

	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.block)
	run := <-joined

	require.NotNil(t, run)
	assert.Equal(t, int32(1), src.listings.Load())
	require.NotNil(t, run.Report)
	for _, item := range run.Report.Items {
		assert.Equal(t, reconcile.OutcomeSuccess, item.Outcome, item.Key)
	}
	assert.True(t, run.Converged())
}

func TestService_RebuildIndex(t *testing.T) {
	client := new(mocks.Client)
	cfg := testConfig()

	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel(storedObjects()...)).Once()
	for _, key := range []string{"bls_data/old.txt", "bls_data/same.txt"} {
		u, _ := url.Parse("https://minio.local/test-bucket/" + key + "?X-Amz-Signature=abc")
		client.On("PresignedGetObject", mock.Anything, testBucket, key, time.Hour, url.Values(nil)).Return(u, nil).Once()
	}

	var page []byte
	client.On("PutObject", mock.Anything, testBucket, "bls_data/index.html", mock.Anything, mock.Anything,
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "text/html; charset=utf-8" })).
		Run(func(args mock.Arguments) {
			page, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil).Once()

	svc := newTestService(client, &fakeSource{}, cfg)
	result, err := svc.RebuildIndex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "bls_data/index.html", result.Key)
	assert.Equal(t, 2, result.Objects)
	assert.Equal(t, len(page), result.Bytes)

	html := string(page)
	assert.Contains(t, html, `href="https://minio.local/test-bucket/bls_data/same.txt?X-Amz-Signature=abc"`)
	assert.Contains(t, html, ">same.txt<")
	assert.Contains(t, html, "2024-01-05T08:30:00")
	assert.Contains(t, html, "unknown")
	assert.NotContains(t, html, ">index.html<")

	client.AssertExpectations(t)
}

func TestService_RebuildIndexPresignFails(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(mocks.ObjectChannel(storedObjects()...)).Once()
	client.On("PresignedGetObject", mock.Anything, testBucket, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("no credentials"))

	svc := newTestService(client, &fakeSource{}, testConfig())
	_, err := svc.RebuildIndex(context.Background())
	assert.ErrorContains(t, err, "no credentials")
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", contentTypeFor("bls_data/pr.data.0.Current"))
	assert.Equal(t, "text/html; charset=utf-8", contentTypeFor("bls_data/index.html"))
}
