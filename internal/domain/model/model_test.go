package model_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/clubops/standings/internal/domain/model"
)

func TestContestPerformance_Attended(t *testing.T) {
	convey.Convey("Given contest performances with varying submission signals", t, func() {
		zero := 0
		three := 3

		convey.Convey("A performance with solves counts as attended", func() {
			p := model.ContestPerformance{Solved: 2, Submissions: &zero}
			convey.So(p.Attended(), convey.ShouldBeTrue)
		})

		convey.Convey("A zero-solve record without a submission signal counts as attended", func() {
			p := model.ContestPerformance{Solved: 0}
			convey.So(p.Attended(), convey.ShouldBeTrue)
		})

		convey.Convey("A zero-solve record with recorded submissions counts as attended", func() {
			p := model.ContestPerformance{Solved: 0, Submissions: &three}
			convey.So(p.Attended(), convey.ShouldBeTrue)
		})

		convey.Convey("A zero-solve record with zero submissions does not count", func() {
			p := model.ContestPerformance{Solved: 0, Submissions: &zero}
			convey.So(p.Attended(), convey.ShouldBeFalse)
		})
	})
}

func TestContestSet_IDs(t *testing.T) {
	convey.Convey("Given a chronological contest set", t, func() {
		cs := model.ContestSet{
			{ID: "c1", Title: "Weekly 1"},
			{ID: "c2", Title: "Weekly 2"},
		}

		convey.Convey("Then IDs preserves the order", func() {
			convey.So(cs.IDs(), convey.ShouldResemble, []string{"c1", "c2"})
		})
	})
}

func TestPhase_Valid(t *testing.T) {
	convey.Convey("Given the known phases", t, func() {
		convey.So(model.PhaseSubmission.Valid(), convey.ShouldBeTrue)
		convey.So(model.PhaseFormation.Valid(), convey.ShouldBeTrue)
		convey.So(model.PhaseLocked.Valid(), convey.ShouldBeTrue)

		convey.Convey("And an unknown phase is invalid", func() {
			convey.So(model.Phase("archived").Valid(), convey.ShouldBeFalse)
			convey.So(model.Phase("").Valid(), convey.ShouldBeFalse)
		})
	})
}
