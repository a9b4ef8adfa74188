package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/pitwall/internal/domain/advisory"
	. "github.com/smartystreets/goconvey/convey"
)

func item(msg string) Item {
	return advisory.New(advisory.AgentNano, "EDGE_TPU", msg, advisory.PriorityNormal)
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		ctx := context.Background()

		Convey("Then it starts empty", func() {
			So(q.Len(), ShouldEqual, 0)
			So(q.IsClosed(), ShouldBeFalse)
		})

		Convey("When items are enqueued past capacity", func() {
			So(q.Enqueue(ctx, item("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, item("b")), ShouldBeTrue)
			full := q.Enqueue(ctx, item("c"))

			Convey("Then the overflow is dropped and order is kept", func() {
				So(full, ShouldBeFalse)
				So(q.Len(), ShouldEqual, 2)
				So((<-q.Dequeue()).Msg, ShouldEqual, "a")
				So((<-q.Dequeue()).Msg, ShouldEqual, "b")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue refuses", func() {
				So(q.Enqueue(cctx, item("x")), ShouldBeFalse)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, item("kept")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue fails and queued items remain readable", func() {
				So(q.Enqueue(ctx, item("late")), ShouldBeFalse)
				it, ok := <-q.Dequeue()
				So(ok, ShouldBeTrue)
				So(it.Msg, ShouldEqual, "kept")
				_, ok = <-q.Dequeue()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the queue is drained", func() {
			q.Enqueue(ctx, item("a"))
			q.Enqueue(ctx, item("b"))

			Convey("Then every item is discarded", func() {
				So(q.Drain(), ShouldEqual, 2)
				So(q.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	Convey("Given many producers and a closing consumer", t, func() {
		q := NewInMemoryQueue(WithCapacity(1000))
		ctx := context.Background()

		var wg sync.WaitGroup
		for p := 0; p < 10; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					q.Enqueue(ctx, item("m"))
				}
			}()
		}
		wg.Wait()
		So(q.Close(), ShouldBeNil)

		count := 0
		for range q.Dequeue() {
			count++
		}
		So(count, ShouldEqual, 500)
	})
}
