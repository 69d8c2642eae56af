package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/crease-io/crease/internal/adapters/mq/queue"
	"github.com/crease-io/crease/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func record(id string) queue.Record {
	return model.RawPerformance{
		RecordID:  id,
		RawName:   "Jan de Vries",
		Club:      "VCC",
		GradeName: "Topklasse",
	}
}

func TestEnqueueDequeue(t *testing.T) {
	convey.Convey("Given an in-memory ingest queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		defer q.Close()

		convey.Convey("When a record is enqueued", func() {
			ok := q.Enqueue(ctx, record("rec_1"))

			convey.Convey("Then it is accepted and counted", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(q.Len(ctx), convey.ShouldEqual, 1)
			})

			convey.Convey("And a consumer receives it", func() {
				out := q.Dequeue(ctx)
				select {
				case got := <-out:
					convey.So(got.RecordID, convey.ShouldEqual, "rec_1")
				case <-time.After(time.Second):
					convey.So("timed out waiting for record", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When records are enqueued in order", func() {
			for _, id := range []string{"rec_1", "rec_2", "rec_3"} {
				convey.So(q.Enqueue(ctx, record(id)), convey.ShouldBeTrue)
			}

			convey.Convey("Then they dequeue in FIFO order", func() {
				out := q.Dequeue(ctx)
				for _, want := range []string{"rec_1", "rec_2", "rec_3"} {
					got := <-out
					convey.So(got.RecordID, convey.ShouldEqual, want)
				}
			})
		})
	})
}

func TestBackpressure(t *testing.T) {
	convey.Convey("Given a queue with capacity two", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(
			queue.WithCapacity(2),
			queue.WithBufferSize(2),
		)
		defer q.Close()

		convey.Convey("When the queue is full", func() {
			convey.So(q.Enqueue(ctx, record("rec_1")), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, record("rec_2")), convey.ShouldBeTrue)

			convey.Convey("Then further enqueues are rejected, not blocked", func() {
				convey.So(q.Enqueue(ctx, record("rec_3")), convey.ShouldBeFalse)
				convey.So(q.Len(ctx), convey.ShouldEqual, 2)
			})

			convey.Convey("And draining one record frees a slot", func() {
				out := q.Dequeue(ctx)
				<-out
				convey.So(q.Enqueue(ctx, record("rec_3")), convey.ShouldBeTrue)
			})
		})
	})
}

func TestQueueClose(t *testing.T) {
	convey.Convey("Given a queue being shut down", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()

		convey.So(q.Enqueue(ctx, record("rec_1")), convey.ShouldBeTrue)
		convey.So(q.Close(), convey.ShouldBeNil)

		convey.Convey("When the queue is closed", func() {
			convey.Convey("Then enqueues are rejected", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, record("rec_2")), convey.ShouldBeFalse)
			})

			convey.Convey("And consumers drain the remainder before the channel closes", func() {
				out := q.Dequeue(ctx)
				got, ok := <-out
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got.RecordID, convey.ShouldEqual, "rec_1")

				_, ok = <-out
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("And closing again is a no-op", func() {
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})
	})
}
