package rank_test

import (
	"testing"

	"github.com/okian/bounty/internal/domain/model"
	rank "github.com/okian/bounty/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOrder(t *testing.T) {
	Convey("Given leaderboard entries in first-credit order", t, func() {
		entries := []model.Entry{
			{Contributor: "carol", Points: 75},
			{Contributor: "alice", Points: 400},
			{Contributor: "bob", Points: 200},
		}

		Convey("When ordered", func() {
			ranked := rank.Order(entries)

			Convey("Then points descend", func() {
				So(ranked[0].Contributor, ShouldEqual, "alice")
				So(ranked[1].Contributor, ShouldEqual, "bob")
				So(ranked[2].Contributor, ShouldEqual, "carol")
			})

			Convey("And the input is untouched", func() {
				So(entries[0].Contributor, ShouldEqual, "carol")
			})
		})

		Convey("When two contributors are tied", func() {
			tied := []model.Entry{
				{Contributor: "early", Points: 100},
				{Contributor: "late", Points: 100},
				{Contributor: "top", Points: 300},
			}
			ranked := rank.Order(tied)

			Convey("Then the earlier first credit wins the tie", func() {
				So(ranked[0].Contributor, ShouldEqual, "top")
				So(ranked[1].Contributor, ShouldEqual, "early")
				So(ranked[2].Contributor, ShouldEqual, "late")
			})
		})
	})
}

func TestTop3(t *testing.T) {
	Convey("Given points {A:400, B:200, C:75}", t, func() {
		entries := []model.Entry{
			{Contributor: "A", Points: 400},
			{Contributor: "B", Points: 200},
			{Contributor: "C", Points: 75},
		}

		Convey("Then the snapshot is A, B, C", func() {
			w, err := rank.Top3(entries)
			So(err, ShouldBeNil)
			So(w.Winner, ShouldEqual, "A")
			So(w.RunnerUp, ShouldEqual, "B")
			So(w.ThirdPlace, ShouldEqual, "C")
		})
	})

	Convey("Given more than three contributors", t, func() {
		entries := []model.Entry{
			{Contributor: "A", Points: 10},
			{Contributor: "B", Points: 40},
			{Contributor: "C", Points: 30},
			{Contributor: "D", Points: 20},
		}

		Convey("Then only the podium survives", func() {
			w, err := rank.Top3(entries)
			So(err, ShouldBeNil)
			So(w.Winner, ShouldEqual, "B")
			So(w.RunnerUp, ShouldEqual, "C")
			So(w.ThirdPlace, ShouldEqual, "D")
		})
	})

	Convey("Given fewer than three contributors", t, func() {
		entries := []model.Entry{
			{Contributor: "A", Points: 400},
			{Contributor: "B", Points: 200},
		}

		Convey("Then settlement is refused", func() {
			_, err := rank.Top3(entries)
			So(err, ShouldEqual, rank.ErrNotEnoughContributors)
		})
	})
}

func TestTotalPoints(t *testing.T) {
	Convey("Given a mixed leaderboard", t, func() {
		entries := []model.Entry{
			{Contributor: "A", Points: 100},
			{Contributor: "B", Points: 200},
			{Contributor: "C", Points: 300},
		}

		Convey("Then totals sum across entries", func() {
			So(rank.TotalPoints(entries), ShouldEqual, uint64(600))
			So(rank.TotalPoints(nil), ShouldEqual, uint64(0))
		})
	})
}
