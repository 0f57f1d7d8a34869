package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				l := Get()
				So(l, ShouldNotBeNil)
				So(func() { l.Info(context.Background(), "hello", String("k", "v")) }, ShouldNotPanic)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})

		Convey("When initialized with a rotating file", func() {
			path := filepath.Join(t.TempDir(), "pricer.log")
			So(Init(WithFile(path, 1, 1)), ShouldBeNil)
			Get().Info(context.Background(), "to file")

			Convey("Then Sync succeeds", func() {
				So(Sync(), ShouldBeNil)
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithWriter(&buf)), ShouldBeNil)
		So(SetLevelString("info"), ShouldBeNil)

		Convey("When logging with fields and a request id", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			Named("api").Info(ctx, "served", Int("status", 200), Error(errors.New("boom")))

			Convey("Then the entry carries every field", func() {
				var entry map[string]any
				So(json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "served")
				So(entry["logger"], ShouldEqual, "api")
				So(entry["status"], ShouldEqual, 200.0)
				So(entry["error"], ShouldEqual, "boom")
				So(entry["request_id"], ShouldEqual, "req-1")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(context.Background(), "dropped")

			Convey("Then info entries are dropped", func() {
				So(strings.Contains(buf.String(), "dropped"), ShouldBeFalse)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "warning", "error", " INFO "} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		_ = SetLevelString("info")

		Convey("Every level zap parses is accepted", func() {
			defer func() { _ = SetLevelString("info") }()
			for _, lvl := range []string{"dpanic", "panic", "fatal"} {
				_, err := zapcore.ParseLevel(lvl)
				So(err, ShouldBeNil)
				So(SetLevelString(lvl), ShouldBeNil)
			}
			So(levelVar.Level(), ShouldEqual, zapcore.FatalLevel)
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given contexts with and without a request id", t, func() {
		So(RequestID(context.Background()), ShouldEqual, "")
		So(RequestID(WithRequestID(context.Background(), "abc")), ShouldEqual, "abc")
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		So(func() { l.Named("x").Warn(context.Background(), "ignored") }, ShouldNotPanic)
	})
}
