package ranking_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/clubops/standings/internal/domain/model"
	"github.com/clubops/standings/internal/domain/ranking"
)

func TestContestRanking(t *testing.T) {
	convey.Convey("Given a roster with mixed attendance for one contest", t, func() {
		engine := ranking.New()
		roster := model.Roster{
			member("alice", map[string]model.ContestPerformance{
				"c1": perf(3, 30, 270),
			}),
			member("bob", map[string]model.ContestPerformance{
				"c1": perf(4, 50, 350),
				"c2": perf(1, 5, 95),
			}),
			member("carol", map[string]model.ContestPerformance{
				"c2": perf(2, 10, 190),
			}),
			member("dave", map[string]model.ContestPerformance{
				"c1": perf(3, 20, 270),
			}),
		}

		convey.Convey("When ranking the contest", func() {
			ranks := engine.ContestRanking(roster, "c1")

			convey.Convey("Then only attendees are ranked", func() {
				convey.So(ranks, convey.ShouldHaveLength, 3)
			})

			convey.Convey("And the order is score desc, then penalty asc", func() {
				convey.So(ranks[0].Username, convey.ShouldEqual, "bob")
				convey.So(ranks[0].Rank, convey.ShouldEqual, 1)
				// alice and dave tie on score and solved; dave's lower
				// penalty wins.
				convey.So(ranks[1].Username, convey.ShouldEqual, "dave")
				convey.So(ranks[2].Username, convey.ShouldEqual, "alice")
			})
		})

		convey.Convey("When ranking a contest nobody attended", func() {
			ranks := engine.ContestRanking(roster, "c9")

			convey.Convey("Then the result is empty", func() {
				convey.So(ranks, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given attendees tied on every metric", t, func() {
		engine := ranking.New()
		roster := model.Roster{
			member("zoe", map[string]model.ContestPerformance{
				"c1": perf(2, 10, 190),
			}),
			member("amy", map[string]model.ContestPerformance{
				"c1": perf(2, 10, 190),
			}),
		}

		convey.Convey("When ranking the contest", func() {
			ranks := engine.ContestRanking(roster, "c1")

			convey.Convey("Then the username tiebreak keeps the order total", func() {
				convey.So(ranks[0].Username, convey.ShouldEqual, "amy")
				convey.So(ranks[1].Username, convey.ShouldEqual, "zoe")
			})
		})
	})
}
