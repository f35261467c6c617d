package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/faceoff/internal/catalog"
	"github.com/okian/faceoff/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	Convey("Given a raw URL list with escaped newlines and blanks", t, func() {
		dir := t.TempDir()
		in := filepath.Join(dir, "raw.txt")
		out := filepath.Join(dir, "image.json")
		So(os.WriteFile(in, []byte("https://a.jpg\\nhttps://b.jpg\n\n  https://c.jpg  \n"), 0o600), ShouldBeNil)

		Convey("When ingesting", func() {
			err := run(context.Background(), in, out)

			Convey("Then a loadable catalog with sequential ids is written", func() {
				So(err, ShouldBeNil)
				c, err := catalog.Load(out, 0)
				So(err, ShouldBeNil)
				So(c.Len(), ShouldEqual, 3)
				item, ok := c.Get("img3")
				So(ok, ShouldBeTrue)
				So(item.Link, ShouldEqual, "https://c.jpg")
			})
		})

		Convey("When the input is empty", func() {
			So(os.WriteFile(in, []byte("\n\n"), 0o600), ShouldBeNil)

			Convey("Then nothing is written", func() {
				So(run(context.Background(), in, out), ShouldNotBeNil)
				_, err := os.Stat(out)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When the input is missing", func() {
			So(run(context.Background(), filepath.Join(dir, "nope.txt"), out), ShouldNotBeNil)
		})
	})
}
