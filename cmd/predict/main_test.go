package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/immoeliza/pricer/internal/domain/property"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestReadRecords(t *testing.T) {
	Convey("Given record input", t, func() {
		Convey("A single YAML mapping yields one record", func() {
			recs, err := readRecords(strings.NewReader("LivingArea: 120\nDistrict: Brussels\nFireplace: \"No\"\n"))
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(*recs[0].LivingArea, ShouldEqual, 120.0)
			So(recs[0].District.String(), ShouldEqual, "Brussels")
			So(recs[0].Fireplace.String(), ShouldEqual, "No")
			So(recs[0].PEB, ShouldBeNil)
		})

		Convey("A JSON array yields every record", func() {
			recs, err := readRecords(strings.NewReader(`[{"LivingArea": 80}, {"LivingArea": 95.5}]`))
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 2)
			So(*recs[1].LivingArea, ShouldEqual, 95.5)
		})

		Convey("Empty input is rejected", func() {
			_, err := readRecords(strings.NewReader(""))
			So(err, ShouldEqual, errNoRecords)
			_, err = readRecords(strings.NewReader("[]"))
			So(err, ShouldEqual, errNoRecords)
		})

		Convey("A scalar is not a record", func() {
			_, err := readRecords(strings.NewReader("- 42"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "expected a mapping")
		})

		Convey("A string for a numeric field fails to decode", func() {
			_, err := readRecords(strings.NewReader(`{"LivingArea": "big"}`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a price service", t, func() {
		var (
			mu   sync.Mutex
			seen []map[string]any
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			seen = append(seen, body)
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			if body["District"] == "Atlantis" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"code":"unknown_category","message":"District=\"Atlantis\""}`))
				return
			}
			_, _ = w.Write([]byte(`{"predicted_price":425000.5}`))
		}))
		defer srv.Close()

		Convey("The template round-trips through the reader", func() {
			var out bytes.Buffer
			So(run(context.Background(), []string{"-template"}, nil, &out), ShouldBeNil)

			var m map[string]any
			So(yaml.Unmarshal(out.Bytes(), &m), ShouldBeNil)
			So(m, ShouldHaveLength, len(property.Names()))

			recs, err := readRecords(&out)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
		})

		Convey("A record from stdin prints its price", func() {
			body, _ := json.Marshal(property.Sample())
			var out bytes.Buffer
			err := run(context.Background(), []string{"-url", srv.URL}, bytes.NewReader(body), &out)
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "425000.5\n")
			mu.Lock()
			defer mu.Unlock()
			So(seen, ShouldHaveLength, 1)
			So(seen[0]["District"], ShouldEqual, "Brussels")
		})

		Convey("Records from a file print one price per line", func() {
			path := filepath.Join(t.TempDir(), "records.yaml")
			So(os.WriteFile(path, []byte("- LivingArea: 1\n- LivingArea: 2\n"), 0o600), ShouldBeNil)

			var out bytes.Buffer
			err := run(context.Background(), []string{"-url", srv.URL, "-file", path}, nil, &out)
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "425000.5\n425000.5\n")
		})

		Convey("A rejected record fails with its position", func() {
			var out bytes.Buffer
			err := run(context.Background(), []string{"-url", srv.URL}, strings.NewReader("District: Atlantis\n"), &out)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "record 1")
			So(err.Error(), ShouldContainSubstring, "unknown_category")
		})

		Convey("A missing file is reported", func() {
			err := run(context.Background(), []string{"-url", srv.URL, "-file", "does-not-exist.yaml"}, nil, &bytes.Buffer{})
			So(err, ShouldNotBeNil)
		})

		Convey("A malformed URL is reported", func() {
			err := run(context.Background(), []string{"-url", "::bad"}, strings.NewReader("LivingArea: 1\n"), &bytes.Buffer{})
			So(err, ShouldNotBeNil)
		})
	})
}
