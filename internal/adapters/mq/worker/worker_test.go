package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/tackline/internal/adapters/mq/queue"
	"github.com/okian/tackline/internal/adapters/mq/worker"
	"github.com/okian/tackline/internal/domain/model"
	logging "github.com/okian/tackline/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 128)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

func (mq *mockQueue) add(id string, n int) {
	mq.jobs <- queue.Job{SessionID: id, Samples: make([]model.Sample, n), EnqueuedAt: time.Now()}
}

// mockAnalyzer reports the sample count and fails on empty logs.
type mockAnalyzer struct{}

func (mockAnalyzer) Analyze(ctx context.Context, samples []model.Sample) (model.Analysis, error) {
	if len(samples) == 0 {
		return model.Analysis{}, errors.New("empty log")
	}
	return model.Analysis{Samples: len(samples)}, nil
}

type mockRecorder struct {
	mu        sync.Mutex
	completed map[string]model.Analysis
	failed    map[string]string
	err       error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{completed: map[string]model.Analysis{}, failed: map[string]string{}}
}

func (r *mockRecorder) Complete(ctx context.Context, id string, a model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.completed[id] = a
	return nil
}

func (r *mockRecorder) Fail(ctx context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[id] = reason
	return nil
}

func (r *mockRecorder) outcome(id string) (model.Analysis, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, done := r.completed[id]
	reason, failed := r.failed[id]
	return a, reason, done || failed
}

func waitFor(r *mockRecorder, id string) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, _, ok := r.outcome(id); ok {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		rec := newMockRecorder()
		w := worker.NewInMemoryWorker(q, mockAnalyzer{}, rec, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a valid job arrives", func() {
			q.add("s1", 3)

			convey.Convey("Then the session is completed with the analysis", func() {
				convey.So(waitFor(rec, "s1"), convey.ShouldBeTrue)
				a, _, _ := rec.outcome("s1")
				convey.So(a.Samples, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the analysis fails", func() {
			q.add("s2", 0)

			convey.Convey("Then the session is failed with the reason", func() {
				convey.So(waitFor(rec, "s2"), convey.ShouldBeTrue)
				_, reason, _ := rec.outcome("s2")
				convey.So(reason, convey.ShouldEqual, "empty log")
			})
		})

		convey.Convey("When the recorder rejects the result", func() {
			rec.mu.Lock()
			rec.err = errors.New("store down")
			rec.mu.Unlock()
			q.add("s3", 2)
			q.add("s4", 0)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(rec, "s4"), convey.ShouldBeTrue)
				_, _, done := rec.outcome("s3")
				convey.So(done, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		rec := newMockRecorder()
		pool := worker.NewPool(4, q, mockAnalyzer{}, rec)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many jobs are queued concurrently", func() {
			var wg sync.WaitGroup
			for p := 0; p < 4; p++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for n := 0; n < 25; n++ {
						q.add(fmt.Sprintf("s%d-%d", p, n), n+1)
					}
				}(p)
			}
			wg.Wait()

			convey.Convey("Then shutdown drains every job", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()
				convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)

				rec.mu.Lock()
				defer rec.mu.Unlock()
				convey.So(len(rec.completed), convey.ShouldEqual, 100)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive worker count", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), mockAnalyzer{}, newMockRecorder())

		convey.Convey("Then it falls back to one worker per CPU", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
