package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/bounty/internal/adapters/repository"
	service "github.com/okian/bounty/internal/app"
	"github.com/okian/bounty/internal/domain/model"
	"github.com/okian/bounty/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// startedService builds and starts a service with a funded maintainer.
func startedService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithSeedAccounts(map[string]uint64{"octocat": 10_000_000_000}),
		service.WithSeedAssets(map[string]string{"trophy-1": "octocat"}),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

// endedParams returns creation params for an event whose end time has passed.
func endedParams(id uint64, name string) repository.CreateEventParams {
	return repository.CreateEventParams{
		ID:               id,
		Name:             name,
		StartTime:        time.Now().Add(-2 * time.Hour),
		EndTime:          time.Now().Add(-time.Hour),
		Maintainer:       "octocat",
		SplitPercentages: [3]uint16{50, 30, 20},
		RewardAmount:     2_000_000_000,
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithJournalSize(1_000),
			service.WithDedupeSize(25_000),
			service.WithOpeningBalance(1_000),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When checking a new request ID", func() {
			seen := svc.SeenAndRecord(ctx, "req-123")

			Convey("Then it should not have been seen before", func() {
				So(seen, ShouldBeFalse)
			})

			Convey("And checking it again reports a duplicate", func() {
				So(svc.SeenAndRecord(ctx, "req-123"), ShouldBeTrue)
			})

			Convey("And unrecording it allows a retry", func() {
				svc.Unrecord(ctx, "req-123")
				So(svc.SeenAndRecord(ctx, "req-123"), ShouldBeFalse)
			})
		})
	})
}

func TestService_CampaignFlow(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When running a campaign end to end", func() {
			p := endedParams(1, "sprint")
			p.RewardAssetID = "trophy-1"
			ev, err := svc.CreateEvent(ctx, p)
			So(err, ShouldBeNil)
			key := ev.Key()

			_, err = svc.AddIssues(ctx, "octocat", key, []model.Issue{
				{IssueID: 1, Points: 400},
				{IssueID: 2, Points: 250},
				{IssueID: 3, Points: 100},
			})
			So(err, ShouldBeNil)

			for id, who := range map[uint64]string{1: "alice", 2: "bob", 3: "carol"} {
				_, _, err = svc.ResolveIssue(ctx, "octocat", key, id, who)
				So(err, ShouldBeNil)
			}

			Convey("Then the leaderboard is ranked with a points total", func() {
				entries, total, lerr := svc.Leaderboard(ctx, key)
				So(lerr, ShouldBeNil)
				So(len(entries), ShouldEqual, 3)
				So(entries[0].Contributor, ShouldEqual, "alice")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Contributor, ShouldEqual, "bob")
				So(entries[2].Contributor, ShouldEqual, "carol")
				So(total, ShouldEqual, 750)
			})

			Convey("And settlement plus claims drain the vault", func() {
				winners, ferr := svc.FinishEvent(ctx, "octocat", key)
				So(ferr, ShouldBeNil)
				So(winners.Winner, ShouldEqual, "alice")

				receipt, cerr := svc.ClaimRewards(ctx, "alice", key)
				So(cerr, ShouldBeNil)
				So(receipt.Payout, ShouldEqual, 1_000_000_000)
				So(receipt.AssetID, ShouldEqual, "trophy-1")

				_, cerr = svc.ClaimRewards(ctx, "bob", key)
				So(cerr, ShouldBeNil)
				_, cerr = svc.ClaimRewards(ctx, "carol", key)
				So(cerr, ShouldBeNil)

				vault, verr := svc.Vault(ctx, key)
				So(verr, ShouldBeNil)
				So(vault.Balance, ShouldEqual, 0)
				So(vault.AssetHeld, ShouldBeEmpty)
			})

			Convey("And each committed mutation lands in the journal", func() {
				// Workers drain the queue asynchronously.
				deadline := time.Now().Add(2 * time.Second)
				var counts map[model.ChangeKind]uint64
				for time.Now().Before(deadline) {
					stats := svc.GetStats()
					if c, ok := stats["changesByKind"].(map[model.ChangeKind]uint64); ok {
						counts = c
						if counts[model.ChangeIssueResolved] == 3 {
							break
						}
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(counts[model.ChangeEventCreated], ShouldEqual, 1)
				So(counts[model.ChangeIssuesAdded], ShouldEqual, 1)
				So(counts[model.ChangeIssueResolved], ShouldEqual, 3)
			})

			Convey("And stats expose the directory size", func() {
				stats := svc.GetStats()
				So(stats["totalEvents"], ShouldEqual, 1)
			})
		})

		Convey("When a store rejection occurs", func() {
			p := endedParams(2, "broken")
			p.SplitPercentages = [3]uint16{60, 30, 20}
			_, err := svc.CreateEvent(ctx, p)

			Convey("Then the error carries the store sentinel", func() {
				So(err, ShouldWrap, repository.ErrInvalidRewardSplit)
			})

			Convey("And the event is not registered", func() {
				_, gerr := svc.Event(ctx, model.EventKey{Maintainer: "octocat", ID: 2, Name: "broken"})
				So(gerr, ShouldWrap, repository.ErrEventNotFound)
			})
		})
	})
}

func TestService_Reads(t *testing.T) {
	Convey("Given a started service with one event", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		ev, err := svc.CreateEvent(ctx, endedParams(5, "reads"))
		So(err, ShouldBeNil)
		key := ev.Key()

		Convey("Event returns the immutable record", func() {
			got, gerr := svc.Event(ctx, key)
			So(gerr, ShouldBeNil)
			So(got.TotalRewardAmount, ShouldEqual, 2_000_000_000)
		})

		Convey("Issues returns an empty ledger before any append", func() {
			issues, ierr := svc.Issues(ctx, key)
			So(ierr, ShouldBeNil)
			So(len(issues), ShouldEqual, 0)
		})

		Convey("Winners before settlement reports not settled", func() {
			_, werr := svc.Winners(ctx, key)
			So(werr, ShouldWrap, repository.ErrNotSettled)
		})

		Convey("Vault reflects the escrowed pool", func() {
			vault, verr := svc.Vault(ctx, key)
			So(verr, ShouldBeNil)
			So(vault.Account, ShouldEqual, key.VaultAccount())
			So(vault.Balance, ShouldEqual, 2_000_000_000)
		})
	})
}
