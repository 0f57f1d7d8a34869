package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/immoeliza/pricer/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, "127.0.0.1:8000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "console")
			convey.So(cfg.ModelPath, convey.ShouldEqual, "artifacts/model.json")
			convey.So(cfg.EncoderPath, convey.ShouldEqual, "artifacts/encoder.json")
			convey.So(cfg.UnknownCategory, convey.ShouldBeEmpty)
			convey.So(cfg.CacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 0.0)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(1<<20))
			convey.So(cfg.UIPredictURL, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = " " },
			"empty model path":    func(c *config.Config) { c.ModelPath = "" },
			"empty encoder path":  func(c *config.Config) { c.EncoderPath = "" },
			"bad log format":      func(c *config.Config) { c.LogFormat = "xml" },
			"bad log level":       func(c *config.Config) { c.LogLevel = "loud" },
			"negative cache":      func(c *config.Config) { c.CacheSize = -1 },
			"negative rps":        func(c *config.Config) { c.RateLimitRPS = -1 },
			"zero burst":          func(c *config.Config) { c.RateLimitRPS = 5; c.RateLimitBurst = 0 },
			"zero body cap":       func(c *config.Config) { c.MaxBodyBytes = 0 },
			"zero client timeout": func(c *config.Config) { c.ClientTimeoutMS = 0 },
			"bad policy":          func(c *config.Config) { c.UnknownCategory = "ignore" },
			"bad ui url":          func(c *config.Config) { c.UIPredictURL = "localhost:8000" },
			"bad rotation":        func(c *config.Config) { c.LogFile = "x.log"; c.LogMaxSizeMB = 0 },
		}
		for name, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			if err == nil {
				t.Errorf("%s: expected an error", name)
			}
		}
	})

	convey.Convey("Given valid optional settings", t, func() {
		cfg := config.New(context.Background())
		cfg.UnknownCategory = "Error"
		cfg.UIPredictURL = "http://127.0.0.1:8000"
		cfg.RateLimitRPS = 2.5
		cfg.LogFile = "pricer.log"
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
