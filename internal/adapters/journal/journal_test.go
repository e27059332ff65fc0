package journal_test

import (
	"context"
	"strconv"
	"testing"

	journal "github.com/okian/bounty/internal/adapters/journal"
	"github.com/okian/bounty/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func change(id int, kind model.ChangeKind) model.Change {
	return model.Change{ChangeID: strconv.Itoa(id), Kind: kind}
}

func TestRingStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty journal", t, func() {
		s := journal.NewRingStore(journal.WithCapacity(3))

		Convey("Then recent history is empty", func() {
			So(s.Recent(ctx, 10), ShouldBeEmpty)
			So(s.Len(ctx), ShouldEqual, 0)
		})

		Convey("When changes are appended", func() {
			So(s.Append(ctx, change(1, model.ChangeEventCreated)), ShouldBeNil)
			So(s.Append(ctx, change(2, model.ChangeIssuesAdded)), ShouldBeNil)

			Convey("Then Recent reports newest first", func() {
				recent := s.Recent(ctx, 10)
				So(recent, ShouldHaveLength, 2)
				So(recent[0].ChangeID, ShouldEqual, "2")
				So(recent[1].ChangeID, ShouldEqual, "1")
			})

			Convey("And appends past capacity evict the oldest", func() {
				So(s.Append(ctx, change(3, model.ChangeIssueResolved)), ShouldBeNil)
				So(s.Append(ctx, change(4, model.ChangeRewardClaimed)), ShouldBeNil)

				So(s.Len(ctx), ShouldEqual, 3)
				recent := s.Recent(ctx, 3)
				So(recent[0].ChangeID, ShouldEqual, "4")
				So(recent[2].ChangeID, ShouldEqual, "2")
			})

			Convey("And lifetime counts survive eviction", func() {
				So(s.Append(ctx, change(3, model.ChangeEventCreated)), ShouldBeNil)
				So(s.Append(ctx, change(4, model.ChangeEventCreated)), ShouldBeNil)
				So(s.Append(ctx, change(5, model.ChangeEventCreated)), ShouldBeNil)

				counts := s.CountByKind(ctx)
				So(counts[model.ChangeEventCreated], ShouldEqual, uint64(4))
				So(counts[model.ChangeIssuesAdded], ShouldEqual, uint64(1))
			})
		})
	})
}
