package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/crease-io/crease/internal/adapters/repository"
	"github.com/smartystreets/goconvey/convey"
)

func TestAddPointsAndTotals(t *testing.T) {
	convey.Convey("Given a season standings store", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		defer store.Close()

		convey.Convey("When points accumulate for one player", func() {
			total, err := store.AddPoints(ctx, "p1", 40.5)
			convey.So(err, convey.ShouldBeNil)
			convey.So(total, convey.ShouldEqual, 40.5)

			total, err = store.AddPoints(ctx, "p1", 9.5)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the season total is cumulative", func() {
				convey.So(total, convey.ShouldEqual, 50.0)

				got, ok := store.Total(ctx, "p1")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldEqual, 50.0)
			})
		})

		convey.Convey("When a player has no recorded score", func() {
			_, ok := store.Total(ctx, "ghost")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(store.Count(ctx), convey.ShouldEqual, 0)
		})

		convey.Convey("When fractional points are summed repeatedly", func() {
			for i := 0; i < 10; i++ {
				_, err := store.AddPoints(ctx, "p1", 0.1)
				convey.So(err, convey.ShouldBeNil)
			}

			convey.Convey("Then fixed-point totals avoid float drift", func() {
				got, ok := store.Total(ctx, "p1")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldEqual, 1.0)
			})
		})
	})
}

func TestStandingsOrdering(t *testing.T) {
	convey.Convey("Given players with distinct season totals", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		defer store.Close()

		seed := map[string]float64{"p1": 120, "p2": 300, "p3": 45, "p4": 210}
		for id, pts := range seed {
			_, err := store.AddPoints(ctx, id, pts)
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("When the full standings are read", func() {
			top, err := store.TopN(ctx, 10)

			convey.Convey("Then entries come best first with dense ranks", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(top), convey.ShouldEqual, 4)
				convey.So(top[0].PlayerID, convey.ShouldEqual, "p2")
				convey.So(top[1].PlayerID, convey.ShouldEqual, "p4")
				convey.So(top[2].PlayerID, convey.ShouldEqual, "p1")
				convey.So(top[3].PlayerID, convey.ShouldEqual, "p3")
				for i, e := range top {
					convey.So(e.Rank, convey.ShouldEqual, i+1)
				}
			})
		})

		convey.Convey("When the limit is smaller than the field", func() {
			top, err := store.TopN(ctx, 2)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(top), convey.ShouldEqual, 2)
			convey.So(top[0].PlayerID, convey.ShouldEqual, "p2")
		})

		convey.Convey("When the limit is invalid", func() {
			_, err := store.TopN(ctx, 0)
			convey.So(errors.Is(err, repository.ErrInvalidLimit), convey.ShouldBeTrue)
		})

		convey.Convey("When a player overtakes another", func() {
			_, err := store.AddPoints(ctx, "p3", 400)
			convey.So(err, convey.ShouldBeNil)

			top, err := store.TopN(ctx, 1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(top[0].PlayerID, convey.ShouldEqual, "p3")
		})

		convey.Convey("When asking for a single player's rank", func() {
			entry, err := store.Rank(ctx, "p4")
			convey.So(err, convey.ShouldBeNil)
			convey.So(entry.Rank, convey.ShouldEqual, 2)
			convey.So(entry.Points, convey.ShouldEqual, 210.0)
		})

		convey.Convey("When asking for an unknown player's rank", func() {
			_, err := store.Rank(ctx, "ghost")
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestCompetitionTies(t *testing.T) {
	convey.Convey("Given players tied on the same total", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		defer store.Close()

		for id, pts := range map[string]float64{"p1": 100, "p2": 80, "p3": 80, "p4": 60} {
			_, err := store.AddPoints(ctx, id, pts)
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("When the standings are read", func() {
			top, err := store.TopN(ctx, 10)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then tied players share a rank and the next rank skips", func() {
				convey.So(top[0].Rank, convey.ShouldEqual, 1)
				convey.So(top[1].Rank, convey.ShouldEqual, 2)
				convey.So(top[2].Rank, convey.ShouldEqual, 2)
				convey.So(top[3].Rank, convey.ShouldEqual, 4)
			})

			convey.Convey("And tied players order deterministically by id", func() {
				convey.So(top[1].PlayerID, convey.ShouldEqual, "p2")
				convey.So(top[2].PlayerID, convey.ShouldEqual, "p3")
			})
		})

		convey.Convey("When each tied player queries their own rank", func() {
			for _, id := range []string{"p2", "p3"} {
				entry, err := store.Rank(ctx, id)
				convey.So(err, convey.ShouldBeNil)
				convey.So(entry.Rank, convey.ShouldEqual, 2)
			}
		})
	})
}

func TestSnapshots(t *testing.T) {
	convey.Convey("Given a store with a fast snapshot cycle", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx,
			repository.WithSnapshotInterval(10*time.Millisecond),
			repository.WithTopCacheSize(2),
		)
		defer store.Close()

		for id, pts := range map[string]float64{"p1": 100, "p2": 80, "p3": 60} {
			_, err := store.AddPoints(ctx, id, pts)
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("When a snapshot interval elapses", func() {
			var snap *repository.Snapshot
			for i := 0; i < 100; i++ {
				if snap = store.LatestSnapshot(); snap != nil {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}

			convey.Convey("Then the published snapshot reflects the standings", func() {
				convey.So(snap, convey.ShouldNotBeNil)
				convey.So(snap.RankByPlayer["p1"], convey.ShouldEqual, 1)
				convey.So(snap.RankByPlayer["p3"], convey.ShouldEqual, 3)
				convey.So(snap.PointsByPlayer["p2"], convey.ShouldEqual, 80.0)
				convey.So(len(snap.TopCache), convey.ShouldEqual, 2)
				convey.So(snap.TopCache[0].PlayerID, convey.ShouldEqual, "p1")
			})
		})

		convey.Convey("When the store is closed twice", func() {
			convey.So(store.Close(), convey.ShouldBeNil)
			convey.So(store.Close(), convey.ShouldBeNil)
		})
	})
}

func TestConcurrentUpdates(t *testing.T) {
	convey.Convey("Given concurrent scorers updating the standings", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		defer store.Close()

		convey.Convey("When ten goroutines add points to fifty players", func() {
			var wg sync.WaitGroup
			for g := 0; g < 10; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 50; i++ {
						_, _ = store.AddPoints(ctx, fmt.Sprintf("p%02d", i), 2.0)
					}
				}()
			}
			wg.Wait()

			convey.Convey("Then every total reflects all updates", func() {
				convey.So(store.Count(ctx), convey.ShouldEqual, 50)
				for i := 0; i < 50; i++ {
					got, ok := store.Total(ctx, fmt.Sprintf("p%02d", i))
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(got, convey.ShouldEqual, 20.0)
				}

				top, err := store.TopN(ctx, 50)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(top), convey.ShouldEqual, 50)
				convey.So(top[0].Rank, convey.ShouldEqual, 1)
				convey.So(top[49].Rank, convey.ShouldEqual, 1)
			})
		})
	})
}
