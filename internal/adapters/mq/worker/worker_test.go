package worker_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/crease-io/crease/internal/adapters/mq/queue"
	"github.com/crease-io/crease/internal/adapters/mq/worker"
	"github.com/crease-io/crease/internal/domain/model"
	"github.com/crease-io/crease/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// collector records every processed record id, optionally failing some.
type collector struct {
	mu     sync.Mutex
	ids    []string
	failOn map[string]error
}

func (c *collector) ProcessRecord(_ context.Context, r worker.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, r.RecordID)
	if err, ok := c.failOn[r.RecordID]; ok {
		return err
	}
	return nil
}

func (c *collector) seen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

func record(id string) worker.Record {
	return model.RawPerformance{
		RecordID:  id,
		RawName:   "Jan de Vries",
		Club:      "VCC",
		GradeName: "Topklasse",
	}
}

func waitFor(deadline time.Duration, cond func() bool) bool {
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestQueueWorker(t *testing.T) {
	convey.Convey("Given a worker draining the ingest queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		defer q.Close()
		proc := &collector{}

		convey.Convey("When records are enqueued ahead of the worker", func() {
			for _, id := range []string{"rec_1", "rec_2", "rec_3"} {
				convey.So(q.Enqueue(ctx, record(id)), convey.ShouldBeTrue)
			}

			w := worker.NewQueueWorker(q, proc)
			go w.Run(ctx)

			convey.Convey("Then every record reaches the processor", func() {
				convey.So(waitFor(2*time.Second, func() bool {
					return len(proc.seen()) == 3
				}), convey.ShouldBeTrue)
				convey.So(proc.seen(), convey.ShouldResemble, []string{"rec_1", "rec_2", "rec_3"})
			})

			convey.Convey("And shutdown returns once the loop exits", func() {
				shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 2*time.Second)
				defer cancelShutdown()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the processor fails on one record", func() {
			proc.failOn = map[string]error{"rec_2": errors.New("unknown grade")}
			for _, id := range []string{"rec_1", "rec_2", "rec_3"} {
				convey.So(q.Enqueue(ctx, record(id)), convey.ShouldBeTrue)
			}

			w := worker.NewQueueWorker(q, proc)
			go w.Run(ctx)

			convey.Convey("Then the failure does not stop the loop", func() {
				convey.So(waitFor(2*time.Second, func() bool {
					return len(proc.seen()) == 3
				}), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers on one queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		proc := &collector{}
		pool := worker.NewPool(4, q, proc)
		pool.Start(ctx)

		convey.Convey("When a hundred records are enqueued", func() {
			for i := 0; i < 100; i++ {
				convey.So(q.Enqueue(ctx, record(fmt.Sprintf("rec_%03d", i))), convey.ShouldBeTrue)
			}

			convey.Convey("Then the pool processes each exactly once", func() {
				convey.So(waitFor(5*time.Second, func() bool {
					return len(proc.seen()) == 100
				}), convey.ShouldBeTrue)

				unique := make(map[string]int)
				for _, id := range proc.seen() {
					unique[id]++
				}
				convey.So(len(unique), convey.ShouldEqual, 100)
				for _, n := range unique {
					convey.So(n, convey.ShouldEqual, 1)
				}
			})

			convey.Convey("And shutdown drains before returning", func() {
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the pool is stopped with the queue still open", func() {
			for i := 0; i < 10; i++ {
				convey.So(q.Enqueue(ctx, record(fmt.Sprintf("rec_%03d", i))), convey.ShouldBeTrue)
			}
			convey.So(waitFor(5*time.Second, func() bool {
				return len(proc.seen()) == 10
			}), convey.ShouldBeTrue)

			start := time.Now()
			pool.Stop()

			convey.Convey("Then every worker exits without waiting out the timeout", func() {
				convey.So(time.Since(start), convey.ShouldBeLessThan, 2*time.Second)
				convey.So(q.IsClosed(), convey.ShouldBeFalse)
			})

			convey.Convey("And stopping again is a no-op", func() {
				convey.So(pool.Stop, convey.ShouldNotPanic)
			})
		})
	})
}
