package encoding_test

import (
	"errors"
	"testing"

	"github.com/immoeliza/pricer/internal/domain/encoding"
	"github.com/immoeliza/pricer/internal/domain/property"
	. "github.com/smartystreets/goconvey/convey"
)

const prior = 300_000.0

func fitted() map[string]map[string]float64 {
	return map[string]map[string]float64{
		property.TypeOfProperty:   {"1": 340_000, "2": 250_000},
		property.District:         {"Brussels": 420_000, "Liège": 210_000},
		property.PEB:              {"A": 380_000, "C": 290_000},
		property.ConstructionYear: {"1990.0": 280_000},
	}
}

func TestParsePolicy(t *testing.T) {
	Convey("Given policy strings", t, func() {
		p, err := encoding.ParsePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, encoding.UseValue)
		p, err = encoding.ParsePolicy(" Error ")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, encoding.Fail)
		_, err = encoding.ParsePolicy("ignore")
		So(errors.Is(err, encoding.ErrInvalidEncoder), ShouldBeTrue)
	})
}

func TestNewTargetEncoder(t *testing.T) {
	Convey("Given fitted statistics", t, func() {
		Convey("When building an encoder", func() {
			enc, err := encoding.NewTargetEncoder(prior, fitted())
			So(err, ShouldBeNil)

			Convey("Then it exposes prior, policy and sorted columns", func() {
				So(enc.Prior(), ShouldEqual, prior)
				So(enc.Policy(), ShouldEqual, encoding.UseValue)
				So(enc.Columns(), ShouldResemble, []string{
					property.ConstructionYear, property.District, property.PEB, property.TypeOfProperty,
				})
			})
		})

		Convey("When the mapping is empty", func() {
			_, err := encoding.NewTargetEncoder(prior, nil)
			So(errors.Is(err, encoding.ErrInvalidEncoder), ShouldBeTrue)
		})

		Convey("When a column has no categories", func() {
			_, err := encoding.NewTargetEncoder(prior, map[string]map[string]float64{"PEB": {}})
			So(errors.Is(err, encoding.ErrInvalidEncoder), ShouldBeTrue)
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given an encoder", t, func() {
		enc, err := encoding.NewTargetEncoder(prior, fitted())
		So(err, ShouldBeNil)

		Convey("Numeric codes match their text keys", func() {
			v, known := enc.Lookup(property.TypeOfProperty, property.Number(2))
			So(known, ShouldBeTrue)
			So(v, ShouldEqual, 250_000.0)
		})

		Convey("Artifact keys written as floats still match integers", func() {
			v, known := enc.Lookup(property.ConstructionYear, property.Number(1990))
			So(known, ShouldBeTrue)
			So(v, ShouldEqual, 280_000.0)
		})

		Convey("Decomposed accents match the composed key", func() {
			v, known := enc.Lookup(property.District, property.Text("Lie\u0300ge"))
			So(known, ShouldBeTrue)
			So(v, ShouldEqual, 210_000.0)
		})

		Convey("Unknown categories return the prior", func() {
			v, known := enc.Lookup(property.District, property.Text("Atlantis"))
			So(known, ShouldBeFalse)
			So(v, ShouldEqual, prior)
			v, known = enc.Lookup("Nope", property.Text("x"))
			So(known, ShouldBeFalse)
			So(v, ShouldEqual, prior)
		})

		Convey("Padded text is a different category", func() {
			So(encoding.Key(property.Text("  Brussels ")), ShouldEqual, "  Brussels ")
			v, known := enc.Lookup(property.District, property.Text("  Brussels "))
			So(known, ShouldBeFalse)
			So(v, ShouldEqual, prior)
		})
	})
}

func TestTransform(t *testing.T) {
	Convey("Given a normalized record", t, func() {
		rec := property.Record{
			property.TypeOfProperty:   property.Number(1),
			property.District:         property.Text("Brussels"),
			property.PEB:              property.Text("C"),
			property.ConstructionYear: property.Number(1990),
			property.LivingArea:       property.Number(120),
		}

		Convey("When every category is known", func() {
			enc, _ := encoding.NewTargetEncoder(prior, fitted())
			out, unknown, err := enc.Transform(rec)

			Convey("Then encoded columns are replaced and others kept", func() {
				So(err, ShouldBeNil)
				So(unknown, ShouldBeEmpty)
				So(out[property.District], ShouldResemble, property.Number(420_000))
				So(out[property.TypeOfProperty], ShouldResemble, property.Number(340_000))
				So(out[property.LivingArea], ShouldResemble, property.Number(120))
				So(rec[property.District], ShouldResemble, property.Text("Brussels"))
			})
		})

		Convey("When District and PEB are outside the fitted set under the value policy", func() {
			enc, _ := encoding.NewTargetEncoder(prior, fitted())
			rec[property.District] = property.Text("Atlantis")
			rec[property.PEB] = property.Text("Z")
			out, unknown, err := enc.Transform(rec)

			Convey("Then both fall back to the prior", func() {
				So(err, ShouldBeNil)
				So(unknown, ShouldResemble, []string{property.District, property.PEB})
				So(out[property.District], ShouldResemble, property.Number(prior))
				So(out[property.PEB], ShouldResemble, property.Number(prior))
			})
		})

		Convey("When a category is unknown under the error policy", func() {
			enc, _ := encoding.NewTargetEncoder(prior, fitted(), encoding.WithPolicy(encoding.Fail))
			rec[property.PEB] = property.Text("Z")
			_, _, err := enc.Transform(rec)

			Convey("Then Transform fails", func() {
				So(errors.Is(err, encoding.ErrUnknownCategory), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `PEB="Z"`)
			})
		})

		Convey("When a padded district is sent under the error policy", func() {
			enc, _ := encoding.NewTargetEncoder(prior, fitted(), encoding.WithPolicy(encoding.Fail))
			rec[property.District] = property.Text("  Brussels ")
			_, _, err := enc.Transform(rec)

			Convey("Then Transform fails instead of matching Brussels", func() {
				So(errors.Is(err, encoding.ErrUnknownCategory), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `District="  Brussels "`)
			})
		})

		Convey("When an encoded column is missing", func() {
			enc, _ := encoding.NewTargetEncoder(prior, fitted())
			delete(rec, property.PEB)
			_, _, err := enc.Transform(rec)
			So(errors.Is(err, encoding.ErrMissingColumn), ShouldBeTrue)
		})
	})
}
