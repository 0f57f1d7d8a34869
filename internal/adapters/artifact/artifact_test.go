package artifact_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/immoeliza/pricer/internal/adapters/artifact"
	"github.com/immoeliza/pricer/internal/domain/encoding"
	"github.com/immoeliza/pricer/internal/domain/property"
	"github.com/immoeliza/pricer/internal/domain/regression"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadEncoder(t *testing.T) {
	Convey("Given the bundled encoder artifact", t, func() {
		l := artifact.NewLoader()
		enc, err := l.LoadEncoder(filepath.Join("testdata", "encoder.json"))

		Convey("Then it covers every encoded column", func() {
			So(err, ShouldBeNil)
			So(len(enc.Columns()), ShouldEqual, len(property.EncodedColumns()))
			So(enc.Policy(), ShouldEqual, encoding.UseValue)
			So(enc.Prior(), ShouldEqual, 329500.0)
		})

		Convey("Then every enumerated category is fitted", func() {
			for _, c := range property.Schema() {
				if !c.Encoded {
					continue
				}
				for _, opt := range c.Options {
					v := property.NormalizeValue(property.Text(opt))
					_, known := enc.Lookup(c.Name, v)
					So(known, ShouldBeTrue)
				}
			}
		})

		Convey("When the policy is overridden", func() {
			enc, err := artifact.NewLoader(artifact.WithPolicy(encoding.Fail)).LoadEncoder(filepath.Join("testdata", "encoder.json"))
			So(err, ShouldBeNil)
			So(enc.Policy(), ShouldEqual, encoding.Fail)
		})
	})

	Convey("Given malformed encoders", t, func() {
		l := artifact.NewLoader()
		good := artifact.EncoderFile{Kind: "target", Prior: 1, Columns: map[string]map[string]float64{}}
		for _, c := range property.EncodedColumns() {
			good.Columns[c] = map[string]float64{"x": 1}
		}

		Convey("A wrong kind is rejected", func() {
			f := good
			f.Kind = "onehot"
			_, err := l.Encoder(f)
			So(errors.Is(err, artifact.ErrUnknownKind), ShouldBeTrue)
		})

		Convey("A missing categorical column is rejected", func() {
			cols := map[string]map[string]float64{}
			for k, v := range good.Columns {
				if k != property.District {
					cols[k] = v
				}
			}
			f := good
			f.Columns = cols
			_, err := l.Encoder(f)
			So(errors.Is(err, artifact.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, property.District)
		})

		Convey("An unknown policy is rejected", func() {
			f := good
			f.HandleUnknown = "ignore"
			_, err := l.Encoder(f)
			So(errors.Is(err, encoding.ErrInvalidEncoder), ShouldBeTrue)
		})

		Convey("Broken JSON is a decode error", func() {
			path := filepath.Join(t.TempDir(), "enc.json")
			So(os.WriteFile(path, []byte("{"), 0o600), ShouldBeNil)
			_, err := l.LoadEncoder(path)
			So(errors.Is(err, artifact.ErrDecode), ShouldBeTrue)
		})

		Convey("A missing file fails", func() {
			_, err := l.LoadEncoder(filepath.Join(t.TempDir(), "absent.json"))
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}

func TestLoadModel(t *testing.T) {
	Convey("Given the bundled linear model", t, func() {
		m, err := artifact.NewLoader().LoadModel(filepath.Join("testdata", "model.json"))
		So(err, ShouldBeNil)
		So(m.Kind(), ShouldEqual, regression.KindLinear)
		So(m.FeatureNames(), ShouldResemble, property.Names())
	})

	Convey("Given a tree ensemble artifact", t, func() {
		m, err := artifact.NewLoader().LoadModel(filepath.Join("testdata", "model_tree.json"))
		So(err, ShouldBeNil)
		So(m.Kind(), ShouldEqual, regression.KindTreeEnsemble)

		Convey("It evaluates both stumps", func() {
			x := make([]float64, len(property.Names()))
			x[6] = 120     // LivingArea
			x[18] = 468000 // District encoding
			y, err := m.Predict(x)
			So(err, ShouldBeNil)
			So(y, ShouldEqual, 300000+0.5*(80000+60000))
		})
	})

	Convey("Given a cyclic tree artifact", t, func() {
		_, err := artifact.NewLoader().LoadModel(filepath.Join("testdata", "model_cyclic.json"))
		So(errors.Is(err, regression.ErrInvalidModel), ShouldBeTrue)
	})

	Convey("Given malformed models", t, func() {
		l := artifact.NewLoader()

		Convey("Feature names must match the schema", func() {
			f := artifact.ModelFile{Kind: "linear", FeatureNames: []string{"LivingArea"}, Coefficients: []float64{1}}
			_, err := l.Model(f)
			So(errors.Is(err, artifact.ErrSchemaMismatch), ShouldBeTrue)
		})

		Convey("Coefficient count must match", func() {
			f := artifact.ModelFile{Kind: "linear", FeatureNames: property.Names(), Coefficients: []float64{1, 2}}
			_, err := l.Model(f)
			So(errors.Is(err, regression.ErrInvalidModel), ShouldBeTrue)
		})

		Convey("Unknown kinds are rejected", func() {
			f := artifact.ModelFile{Kind: "svm", FeatureNames: property.Names()}
			_, err := l.Model(f)
			So(errors.Is(err, artifact.ErrUnknownKind), ShouldBeTrue)
		})

		Convey("Custom column sets are honored", func() {
			l := artifact.NewLoader(artifact.WithColumns([]string{"a", "b"}, []string{"b"}))
			m, err := l.Model(artifact.ModelFile{Kind: "linear", FeatureNames: []string{"b", "a"}, Coefficients: []float64{1, 2}})
			So(err, ShouldBeNil)
			So(m.FeatureNames(), ShouldResemble, []string{"b", "a"})
		})
	})
}

func TestGzipRoundTrip(t *testing.T) {
	Convey("Given artifacts saved with a .gz suffix", t, func() {
		dir := t.TempDir()
		l := artifact.NewLoader()

		var mf artifact.ModelFile
		mf.Kind = regression.KindLinear
		mf.FeatureNames = property.Names()
		mf.Intercept = 1000
		mf.Coefficients = make([]float64, len(mf.FeatureNames))
		mf.Coefficients[6] = 2

		path := filepath.Join(dir, "nested", "model.json.gz")
		So(writeArtifact(path, mf), ShouldBeNil)

		Convey("Then the file is compressed and loads back", func() {
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(raw[0], ShouldEqual, byte(0x1f))
			So(raw[1], ShouldEqual, byte(0x8b))

			m, err := l.LoadModel(path)
			So(err, ShouldBeNil)
			x := make([]float64, len(mf.FeatureNames))
			x[6] = 100
			y, err := m.Predict(x)
			So(err, ShouldBeNil)
			So(y, ShouldEqual, 1200.0)
		})

		Convey("Then a plain file with a .gz name fails to decode", func() {
			bad := filepath.Join(dir, "plain.json.gz")
			So(os.WriteFile(bad, []byte(`{"kind":"linear"}`), 0o600), ShouldBeNil)
			_, err := l.LoadModel(bad)
			So(errors.Is(err, artifact.ErrDecode), ShouldBeTrue)
		})
	})
}
