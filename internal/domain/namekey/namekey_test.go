package namekey_test

import (
	"testing"

	"github.com/crease-io/crease/internal/domain/namekey"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw scraped player names", t, func() {
		Convey("When normalizing a plain given-surname form", func() {
			n := namekey.Normalize("Jan de Vries")

			Convey("Then the particles stay glued to the surname", func() {
				So(n.Given, ShouldResemble, []string{"jan"})
				So(n.Surname, ShouldResemble, []string{"de", "vries"})
				So(n.Fingerprint, ShouldEqual, "devriesjan")
			})
		})

		Convey("When normalizing a comma-reversed form", func() {
			n := namekey.Normalize("de Vries, Jan")

			Convey("Then it should produce the same fingerprint as the plain form", func() {
				plain := namekey.Normalize("Jan de Vries")
				So(n.Fingerprint, ShouldEqual, plain.Fingerprint)
			})
		})

		Convey("When normalizing an initial-form name", func() {
			n := namekey.Normalize("J. de Vries")

			Convey("Then the given part is a single initial", func() {
				So(n.GivenIsInitial(), ShouldBeTrue)
				So(n.GivenInitial(), ShouldEqual, byte('j'))
				So(n.SurnameKey(), ShouldEqual, "devries")
			})
		})

		Convey("When normalizing names with case and punctuation noise", func() {
			a := namekey.Normalize("JAN   DE  VRIES")
			b := namekey.Normalize("Jan de Vries")

			Convey("Then the fingerprints agree", func() {
				So(a.Fingerprint, ShouldEqual, b.Fingerprint)
			})
		})

		Convey("When normalizing a multi-particle surname", func() {
			n := namekey.Normalize("Pieter van der Berg")

			Convey("Then both particles belong to the surname", func() {
				So(n.Surname, ShouldResemble, []string{"van", "der", "berg"})
				So(n.SurnameKey(), ShouldEqual, "vanderberg")
			})
		})

		Convey("When normalizing a single-token name", func() {
			n := namekey.Normalize("Tendulkar")

			Convey("Then the token is treated as the surname", func() {
				So(n.Given, ShouldBeEmpty)
				So(n.SurnameKey(), ShouldEqual, "tendulkar")
				So(n.Fingerprint, ShouldEqual, "tendulkar")
			})
		})

		Convey("When normalizing a name with diacritics", func() {
			n := namekey.Normalize("José Duarte")

			Convey("Then unicode letters are kept", func() {
				So(n.Fingerprint, ShouldEqual, "duartejosé")
			})
		})

		Convey("When normalizing an empty string", func() {
			n := namekey.Normalize("   ")

			Convey("Then the fingerprint is empty", func() {
				So(n.Fingerprint, ShouldEqual, "")
			})
		})
	})
}
