package scoring_test

import (
	"errors"
	"testing"

	"github.com/crease-io/crease/internal/domain/model"
	"github.com/crease-io/crease/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBasePointsBatting(t *testing.T) {
	Convey("Given the tiered batting formula", t, func() {
		Convey("When a batter scores 50 off 60 balls", func() {
			b := scoring.BasePoints(&model.RawPerformance{
				Runs:       50,
				BallsFaced: 60,
			})

			Convey("Then each run band is priced separately", func() {
				// 30*1.00 + 19*1.25 + 1*1.50
				So(b.RunPoints, ShouldEqual, 55.25)
			})

			Convey("And the strike-rate factor is runs over balls", func() {
				So(b.StrikeRateFactor, ShouldAlmostEqual, 50.0/60.0)
			})

			Convey("And the fifty bonus lands after scaling", func() {
				So(b.MilestoneBonus, ShouldEqual, 8.0)
				So(b.Total, ShouldAlmostEqual, 55.25*(50.0/60.0)+8.0)
			})
		})

		Convey("When a batter scores a century off 80 balls", func() {
			b := scoring.BasePoints(&model.RawPerformance{
				Runs:       100,
				BallsFaced: 80,
			})

			Convey("Then the milestone bonuses are additive", func() {
				So(b.MilestoneBonus, ShouldEqual, 24.0)
			})

			Convey("And the fourth band prices run 100", func() {
				// 30*1.00 + 19*1.25 + 50*1.50 + 1*1.75
				So(b.RunPoints, ShouldEqual, 130.5)
				So(b.Total, ShouldAlmostEqual, 130.5*1.25+24.0)
			})
		})

		Convey("When a batter is dismissed for a duck", func() {
			b := scoring.BasePoints(&model.RawPerformance{
				Runs:       0,
				BallsFaced: 3,
				IsOut:      true,
			})

			Convey("Then the penalty applies but the total floors at zero", func() {
				So(b.DuckPenalty, ShouldEqual, 2.0)
				So(b.Batting, ShouldEqual, -2.0)
				So(b.Total, ShouldEqual, 0.0)
			})
		})

		Convey("When a batter is not out on zero", func() {
			b := scoring.BasePoints(&model.RawPerformance{
				Runs:       0,
				BallsFaced: 3,
			})

			Convey("Then no duck penalty applies", func() {
				So(b.DuckPenalty, ShouldEqual, 0.0)
			})
		})

		Convey("When a batter did not face a ball", func() {
			b := scoring.BasePoints(&model.RawPerformance{Runs: 0})

			Convey("Then the strike-rate factor defaults to one", func() {
				So(b.StrikeRateFactor, ShouldEqual, 1.0)
			})
		})
	})
}

func TestBasePointsBowling(t *testing.T) {
	Convey("Given the tiered bowling formula", t, func() {
		Convey("When a bowler takes a five-wicket haul at economy three", func() {
			b := scoring.BasePoints(&model.RawPerformance{
				Wickets:      5,
				OversBowled:  10,
				RunsConceded: 30,
				Maidens:      2,
			})

			Convey("Then each wicket band is priced separately", func() {
				// 2*15 + 2*20 + 1*30
				So(b.WicketPoints, ShouldEqual, 100.0)
			})

			Convey("And the economy factor doubles the wicket points", func() {
				So(b.EconomyFactor, ShouldEqual, 2.0)
			})

			Convey("And maidens and the haul bonus are unscaled", func() {
				So(b.MaidenBonus, ShouldEqual, 30.0)
				So(b.FiveWicketBonus, ShouldEqual, 8.0)
				So(b.Total, ShouldEqual, 100.0*2.0+30.0+8.0)
			})
		})

		Convey("When a bowler returns three for twenty-two off ten overs", func() {
			b := scoring.BasePoints(&model.RawPerformance{
				Wickets:      3,
				OversBowled:  10,
				RunsConceded: 22,
				Maidens:      5,
			})

			Convey("Then the wicket bands price two plus one", func() {
				So(b.WicketPoints, ShouldEqual, 50.0)
			})

			Convey("And the economy factor rewards the tight spell", func() {
				So(b.EconomyFactor, ShouldAlmostEqual, 6.0/2.2)
				So(b.FiveWicketBonus, ShouldEqual, 0.0)
				So(b.Total, ShouldAlmostEqual, 50.0*(6.0/2.2)+75.0)
			})
		})

		Convey("When a bowler concedes nothing", func() {
			b := scoring.BasePoints(&model.RawPerformance{
				Wickets:      2,
				OversBowled:  4,
				RunsConceded: 0,
			})

			Convey("Then the economy factor stays neutral", func() {
				So(b.EconomyFactor, ShouldEqual, 1.0)
				So(b.Total, ShouldEqual, 30.0)
			})
		})

		Convey("When a fielder takes a wicket without bowling", func() {
			b := scoring.BasePoints(&model.RawPerformance{Wickets: 1})

			Convey("Then zero overs never divide", func() {
				So(b.EconomyFactor, ShouldEqual, 1.0)
				So(b.Total, ShouldEqual, 15.0)
			})
		})
	})
}

func TestBasePointsFielding(t *testing.T) {
	Convey("Given the fielding point table", t, func() {
		Convey("When a non-keeper takes two catches", func() {
			b := scoring.BasePoints(&model.RawPerformance{Catches: 2})

			Convey("Then catches pay the standard rate", func() {
				So(b.Fielding, ShouldEqual, 30.0)
			})
		})

		Convey("When the wicketkeeper takes two catches and a stumping", func() {
			b := scoring.BasePoints(&model.RawPerformance{
				Catches:        2,
				Stumpings:      1,
				IsWicketkeeper: true,
			})

			Convey("Then keeper catches pay double", func() {
				So(b.Fielding, ShouldEqual, 2*30.0+15.0)
			})
		})

		Convey("When a fielder effects a run out", func() {
			b := scoring.BasePoints(&model.RawPerformance{RunOuts: 1})

			So(b.Fielding, ShouldEqual, 6.0)
		})
	})
}

func TestClassifyGrade(t *testing.T) {
	Convey("Given the grade classification table", t, func() {
		cases := []struct {
			grade string
			tier  scoring.Tier
		}{
			{"Topklasse", scoring.Tier1},
			{"Hoofdklasse", scoring.Tier1},
			{"Eerste Klasse", scoring.Tier2},
			{"2e Klasse", scoring.Tier2},
			{"Derde Klasse", scoring.Tier3},
			{"4e Klasse", scoring.Tier3},
			{"Hoofdklasse U15", scoring.Youth},
			{"U13 Oost", scoring.Youth},
			{"ZAMI 2", scoring.Social},
			{"Dames 1", scoring.Ladies},
			{"Women's League", scoring.Ladies},
		}

		Convey("When classifying known grade names", func() {
			for _, c := range cases {
				tier, err := scoring.ClassifyGrade(c.grade)
				So(err, ShouldBeNil)
				So(tier, ShouldEqual, c.tier)
			}
		})

		Convey("When the grade name is unrecognized", func() {
			_, err := scoring.ClassifyGrade("Premier Division")

			Convey("Then classification fails instead of defaulting", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, scoring.ErrUnknownGrade), ShouldBeTrue)

				var unknown *scoring.UnknownGradeError
				So(errors.As(err, &unknown), ShouldBeTrue)
				So(unknown.Grade, ShouldEqual, "Premier Division")
			})
		})

		Convey("When the grade name is empty", func() {
			_, err := scoring.ClassifyGrade("   ")
			So(errors.Is(err, scoring.ErrUnknownGrade), ShouldBeTrue)
		})

		Convey("When reading tier multipliers", func() {
			So(scoring.Tier1.Multiplier(), ShouldEqual, 1.2)
			So(scoring.Tier2.Multiplier(), ShouldEqual, 1.0)
			So(scoring.Tier3.Multiplier(), ShouldEqual, 0.8)
			So(scoring.Youth.Multiplier(), ShouldEqual, 0.6)
			So(scoring.Ladies.Multiplier(), ShouldEqual, 0.9)
			So(scoring.Social.Multiplier(), ShouldEqual, 0.4)
		})
	})
}

func TestValidateStatLine(t *testing.T) {
	Convey("Given stat line validation", t, func() {
		Convey("When the stat line is well formed", func() {
			err := scoring.ValidateStatLine(&model.RawPerformance{
				Runs:       42,
				BallsFaced: 30,
				IsOut:      true,
			})

			So(err, ShouldBeNil)
		})

		Convey("When a counting stat is negative", func() {
			err := scoring.ValidateStatLine(&model.RawPerformance{Runs: -1})

			So(errors.Is(err, scoring.ErrInvalidStatLine), ShouldBeTrue)
		})

		Convey("When a bowler claims more than ten wickets", func() {
			err := scoring.ValidateStatLine(&model.RawPerformance{Wickets: 11})

			Convey("Then the line is rejected with the field named", func() {
				var invalid *scoring.InvalidStatLineError
				So(errors.As(err, &invalid), ShouldBeTrue)
				So(invalid.Field, ShouldEqual, "wickets")
			})
		})

		Convey("When a batter is out with runs but no balls faced", func() {
			err := scoring.ValidateStatLine(&model.RawPerformance{
				Runs:  10,
				IsOut: true,
			})

			So(errors.Is(err, scoring.ErrInvalidStatLine), ShouldBeTrue)
		})

		Convey("When a record claims both captain and vice-captain", func() {
			err := scoring.ValidateStatLine(&model.RawPerformance{
				IsCaptain:     true,
				IsViceCaptain: true,
			})

			So(errors.Is(err, scoring.ErrInvalidStatLine), ShouldBeTrue)
		})
	})
}
