package rank_test

import (
	"context"
	"testing"

	"github.com/IMperiumX/ranker/internal/adapters/repository"
	"github.com/IMperiumX/ranker/internal/domain/policy"
	"github.com/IMperiumX/ranker/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func newEngine() *rank.Engine {
	return rank.NewEngine(repository.NewTreapStore())
}

func TestEngine_HighestWins(t *testing.T) {
	Convey("Given a highest-wins game", t, func() {
		ctx := context.Background()
		e := newEngine()
		game := "arcade"

		So(e.Upsert(ctx, game, "alice", 1500, policy.HighestWins), ShouldBeNil)
		So(e.Upsert(ctx, game, "bob", 3200, policy.HighestWins), ShouldBeNil)
		So(e.Upsert(ctx, game, "carol", 900, policy.HighestWins), ShouldBeNil)

		Convey("Then the window lists the highest raw score first", func() {
			entries, err := e.Window(ctx, game, 0, 2, policy.HighestWins)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 3)
			So(entries[0].UserID, ShouldEqual, "bob")
			So(entries[0].Score, ShouldEqual, 3200)
			So(entries[1].UserID, ShouldEqual, "alice")
			So(entries[2].UserID, ShouldEqual, "carol")
		})

		Convey("Then ranks are 1-indexed", func() {
			entry, err := e.RankOf(ctx, game, "bob", policy.HighestWins)
			So(err, ShouldBeNil)
			So(entry.Rank, ShouldEqual, 1)
			So(entry.Score, ShouldEqual, 3200)

			entry, err = e.RankOf(ctx, game, "carol", policy.HighestWins)
			So(err, ShouldBeNil)
			So(entry.Rank, ShouldEqual, 3)
		})

		Convey("When a player resubmits a lower score", func() {
			So(e.Upsert(ctx, game, "bob", 100, policy.HighestWins), ShouldBeNil)

			Convey("Then the live index takes the newest submission", func() {
				entry, err := e.RankOf(ctx, game, "bob", policy.HighestWins)
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 3)
				So(entry.Score, ShouldEqual, 100)
			})
		})
	})
}

func TestEngine_TimeWins(t *testing.T) {
	Convey("Given a time-wins game with fractional scores", t, func() {
		ctx := context.Background()
		e := newEngine()
		game := "speedrun"

		So(e.Upsert(ctx, game, "alice", 61.07, policy.TimeWins), ShouldBeNil)
		So(e.Upsert(ctx, game, "bob", 58.31, policy.TimeWins), ShouldBeNil)
		So(e.Upsert(ctx, game, "carol", 72.40, policy.TimeWins), ShouldBeNil)

		Convey("Then the fastest time ranks first", func() {
			entries, err := e.Window(ctx, game, 0, 2, policy.TimeWins)
			So(err, ShouldBeNil)
			So(entries[0].UserID, ShouldEqual, "bob")
			So(entries[0].Score, ShouldEqual, 58.31)
			So(entries[1].UserID, ShouldEqual, "alice")
			So(entries[2].UserID, ShouldEqual, "carol")
		})

		Convey("Then fractional scores survive the round trip exactly", func() {
			entry, err := e.RankOf(ctx, game, "carol", policy.TimeWins)
			So(err, ShouldBeNil)
			So(entry.Score, ShouldEqual, 72.40)
		})
	})
}

func TestEngine_WindowEdges(t *testing.T) {
	Convey("Given a game with three players", t, func() {
		ctx := context.Background()
		e := newEngine()
		game := "arcade"

		So(e.Upsert(ctx, game, "alice", 300, policy.HighestWins), ShouldBeNil)
		So(e.Upsert(ctx, game, "bob", 200, policy.HighestWins), ShouldBeNil)
		So(e.Upsert(ctx, game, "carol", 100, policy.HighestWins), ShouldBeNil)

		Convey("Then a window past the end is clamped", func() {
			entries, err := e.Window(ctx, game, 1, 50, policy.HighestWins)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
			So(entries[0].Rank, ShouldEqual, 2)
			So(entries[1].Rank, ShouldEqual, 3)
		})

		Convey("Then a fully out-of-range window is empty", func() {
			entries, err := e.Window(ctx, game, 10, 20, policy.HighestWins)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})

		Convey("Then an unknown game yields an empty window", func() {
			entries, err := e.Window(ctx, "ghost", 0, 9, policy.HighestWins)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})

		Convey("Then an unranked user is reported as not found", func() {
			_, err := e.RankOf(ctx, game, "ghost", policy.HighestWins)
			So(err, ShouldWrap, repository.ErrNotFound)
		})
	})
}

func TestEngine_GlobalIndex(t *testing.T) {
	Convey("Given submissions across games with different policies", t, func() {
		ctx := context.Background()
		e := newEngine()

		// arcade is highest-wins, speedrun is time-wins; the global
		// board accumulates raw scores regardless of policy.
		So(e.Upsert(ctx, "arcade", "alice", 1000, policy.HighestWins), ShouldBeNil)
		So(e.Upsert(ctx, "speedrun", "alice", 58.31, policy.TimeWins), ShouldBeNil)
		So(e.Upsert(ctx, "arcade", "bob", 500, policy.HighestWins), ShouldBeNil)

		Convey("Then the global total is the cumulative raw sum", func() {
			entry, err := e.GlobalRankOf(ctx, "alice")
			So(err, ShouldBeNil)
			So(entry.Rank, ShouldEqual, 1)
			So(entry.Score, ShouldEqual, 1058.31)
		})

		Convey("Then the global window lists the largest total first", func() {
			entries, err := e.GlobalWindow(ctx, 0, 9)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
			So(entries[0].UserID, ShouldEqual, "alice")
			So(entries[1].UserID, ShouldEqual, "bob")
			So(entries[1].Score, ShouldEqual, 500)
		})

		Convey("When a player resubmits to the same game", func() {
			So(e.Upsert(ctx, "arcade", "bob", 700, policy.HighestWins), ShouldBeNil)

			Convey("Then every submission accumulates globally", func() {
				entry, err := e.GlobalRankOf(ctx, "bob")
				So(err, ShouldBeNil)
				So(entry.Score, ShouldEqual, 1200)
			})
		})

		Convey("Then global cardinality counts distinct users", func() {
			n, err := e.GlobalCardinality(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})
	})
}

func TestEngine_Rebuild(t *testing.T) {
	Convey("Given a drifted game index", t, func() {
		ctx := context.Background()
		e := newEngine()
		game := "arcade"

		So(e.Upsert(ctx, game, "alice", 100, policy.HighestWins), ShouldBeNil)
		So(e.Upsert(ctx, game, "stale", 999, policy.HighestWins), ShouldBeNil)

		best := map[string]float64{
			"alice": 1500,
			"bob":   3200,
		}

		Convey("When the index is rebuilt from best scores", func() {
			So(e.Rebuild(ctx, game, policy.HighestWins, best), ShouldBeNil)

			Convey("Then only the rebuilt members remain, policy-best ranked", func() {
				n, err := e.Cardinality(ctx, game)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)

				entry, err := e.RankOf(ctx, game, "alice", policy.HighestWins)
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)
				So(entry.Score, ShouldEqual, 1500)

				_, err = e.RankOf(ctx, game, "stale", policy.HighestWins)
				So(err, ShouldWrap, repository.ErrNotFound)
			})

			Convey("And rebuilding again is idempotent", func() {
				So(e.Rebuild(ctx, game, policy.HighestWins, best), ShouldBeNil)
				n, err := e.Cardinality(ctx, game)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})
	})
}

func TestEngine_Clear(t *testing.T) {
	Convey("Given populated game and global indices", t, func() {
		ctx := context.Background()
		e := newEngine()

		So(e.Upsert(ctx, "arcade", "alice", 100, policy.HighestWins), ShouldBeNil)
		So(e.Upsert(ctx, "puzzle", "alice", 50, policy.HighestWins), ShouldBeNil)

		Convey("When one game is cleared", func() {
			So(e.Clear(ctx, "arcade"), ShouldBeNil)

			Convey("Then the other game and the global board survive", func() {
				n, err := e.Cardinality(ctx, "arcade")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)

				n, err = e.Cardinality(ctx, "puzzle")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)

				n, err = e.GlobalCardinality(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When the global board is cleared", func() {
			So(e.GlobalClear(ctx), ShouldBeNil)

			n, err := e.GlobalCardinality(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})
	})
}
