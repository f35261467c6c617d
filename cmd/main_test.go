package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	app "github.com/okian/faceoff/internal/app"
	"github.com/okian/faceoff/internal/catalog"
	"github.com/okian/faceoff/internal/config"
	"github.com/okian/faceoff/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func writeCatalog(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "image.json")
	if err := catalog.Save(path, catalog.Parse("https://a.jpg\nhttps://b.jpg\nhttps://c.jpg")); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a started in-memory service and default config", t, func() {
		dir := t.TempDir()
		items, err := catalog.Load(writeCatalog(t, dir), 0)
		convey.So(err, convey.ShouldBeNil)

		cfg := config.New()
		cfg.StaticDir = dir
		svc := app.New(items, nil, serviceOptions(cfg, logger.Get())...)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(context.Background(), cfg, svc)

		convey.Convey("Then every route family answers", func() {
			for _, path := range []string{"/vote", "/leaderboard", "/stats", "/healthz", "/openapi.yaml", "/api-docs", "/image.json"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then a posted vote shows up on the leaderboard", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/vote",
				strings.NewReader(`{"image1":"img3","image2":"img1","winner":"img3"}`)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
			var entries []map[string]interface{}
			convey.So(json.Unmarshal(w.Body.Bytes(), &entries), convey.ShouldBeNil)
			convey.So(entries, convey.ShouldHaveLength, 2)
			convey.So(entries[0]["id"], convey.ShouldEqual, "img3")
			convey.So(entries[0]["bayesianWinRate"], convey.ShouldEqual, "66.7")
		})
	})
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given a config", t, func() {
		cfg := config.New()

		convey.Convey("When no pair seed is set", func() {
			convey.So(serviceOptions(cfg, logger.Get()), convey.ShouldHaveLength, 6)
		})

		convey.Convey("When a pair seed is set", func() {
			cfg.PairSeed = 42
			convey.So(serviceOptions(cfg, logger.Get()), convey.ShouldHaveLength, 7)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metric updaters", t, func() {
		convey.Convey("Then they return once the context is done", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			svc := app.New(nil, nil)

			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx, 10*time.Millisecond)
				startServiceMetricsUpdater(ctx, svc)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("updaters did not stop")
			}
		})

		convey.Convey("Then single updates do not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(app.New(nil, nil)) }, convey.ShouldNotPanic)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given an environment pointing at temp files", t, func() {
		dir := t.TempDir()
		t.Setenv("FACEOFF_ADDR", "127.0.0.1:0")
		t.Setenv("FACEOFF_STATE_PATH", filepath.Join(dir, "data.json"))

		convey.Convey("When the catalog exists", func() {
			t.Setenv("FACEOFF_CATALOG_PATH", writeCatalog(t, dir))
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			convey.Convey("Then run serves until cancelled and exits cleanly", func() {
				convey.So(run(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the catalog is missing", func() {
			t.Setenv("FACEOFF_CATALOG_PATH", filepath.Join(dir, "missing.json"))

			convey.Convey("Then run fails before serving", func() {
				convey.So(run(context.Background()), convey.ShouldNotBeNil)
				_, err := os.Stat(filepath.Join(dir, "data.json"))
				convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
			})
		})
	})
}
