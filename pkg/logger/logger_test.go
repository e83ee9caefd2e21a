package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("Then Get and Named return usable loggers", func() {
			So(Get(), ShouldNotBeNil)
			named := Named("test")
			So(named, ShouldNotBeNil)
			named.Info(context.Background(), "test message", String("k", "v"))
		})
	})
}

func TestLoggerWriter(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		l := New(&buf, slog.LevelInfo)
		ctx := context.Background()

		Convey("When logging a warning with fields", func() {
			l.Warn(ctx, "percent drift", Float64("sum", 99.8), Strings("names", []string{"crm"}))

			Convey("Then the message, fields and caller are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "level=WARN")
				So(out, ShouldContainSubstring, "percent drift")
				So(out, ShouldContainSubstring, "sum=99.8")
				So(out, ShouldContainSubstring, "source=")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			l.Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When using With", func() {
			l.With(String("run_id", "abc")).Error(ctx, "failed", Error(errors.New("boom")))

			Convey("Then the bound field is included", func() {
				So(buf.String(), ShouldContainSubstring, "run_id=abc")
				So(buf.String(), ShouldContainSubstring, "error=boom")
			})
		})
	})
}

func TestParseLevel(t *testing.T) {
	Convey("Given level names", t, func() {
		cases := map[string]slog.Level{
			"debug":   slog.LevelDebug,
			"":        slog.LevelInfo,
			" INFO ":  slog.LevelInfo,
			"warning": slog.LevelWarn,
			"error":   slog.LevelError,
		}
		for in, want := range cases {
			got, err := ParseLevel(in)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		_, err := ParseLevel("verbose")
		So(err, ShouldNotBeNil)
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Nop never panics", t, func() {
		So(func() { Nop().Error(context.Background(), "ignored") }, ShouldNotPanic)
	})
}
