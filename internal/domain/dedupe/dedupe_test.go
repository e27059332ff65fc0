package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/bounty/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a request id is recorded", func() {
			first := d.SeenAndRecord(ctx, "req-1")

			Convey("Then the first sighting is new and the second is not", func() {
				So(first, ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "req-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, int64(1))
			})
		})

		Convey("When an id is unrecorded after a failed operation", func() {
			d.SeenAndRecord(ctx, "req-2")
			d.Unrecord(ctx, "req-2")

			Convey("Then the retry is treated as new", func() {
				So(d.SeenAndRecord(ctx, "req-2"), ShouldBeFalse)
			})
		})

		Convey("When an unknown id is unrecorded", func() {
			Convey("Then nothing breaks", func() {
				So(func() { d.Unrecord(ctx, "never-seen") }, ShouldNotPanic)
				So(d.Size(), ShouldEqual, int64(0))
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When more ids arrive than the bound", func() {
			for i := 0; i < 5; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("req-%d", i))
			}

			Convey("Then the oldest ids were evicted", func() {
				So(d.Size(), ShouldEqual, int64(3))
				So(d.SeenAndRecord(ctx, "req-0"), ShouldBeFalse) // evicted, re-recorded
				So(d.SeenAndRecord(ctx, "req-4"), ShouldBeTrue)  // still remembered
			})
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	ctx := context.Background()

	Convey("Given many goroutines racing on one id", t, func() {
		d := dedupe.NewInMemoryDeduper()

		const racers = 64
		newCount := make(chan bool, racers)
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				newCount <- !d.SeenAndRecord(ctx, "contested")
			}()
		}
		wg.Wait()
		close(newCount)

		Convey("Then exactly one recording wins", func() {
			wins := 0
			for isNew := range newCount {
				if isNew {
					wins++
				}
			}
			So(wins, ShouldEqual, 1)
			So(d.Size(), ShouldEqual, int64(1))
		})
	})
}
