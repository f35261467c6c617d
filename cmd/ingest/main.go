// Command ingest turns a raw list of image URLs into the catalog JSON the
// server loads.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/okian/faceoff/internal/catalog"
	"github.com/okian/faceoff/pkg/logger"
)

func main() {
	var (
		in  = flag.String("in", "raw.txt", "Raw file with one image URL per line")
		out = flag.String("out", "image.json", "Catalog JSON to write")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()

	if err := run(ctx, *in, *out); err != nil {
		logger.Get().Error(ctx, "ingest failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, in, out string) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	items := catalog.Parse(string(raw))
	if len(items) == 0 {
		return fmt.Errorf("%w: %s has no URLs", catalog.ErrInvalidCatalog, in)
	}
	if _, err := catalog.New(items); err != nil {
		return err
	}
	if err := catalog.Save(out, items); err != nil {
		return err
	}
	info, err := os.Stat(out)
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "catalog written",
		logger.String("in", in),
		logger.String("out", out),
		logger.String("items", humanize.Comma(int64(len(items)))),
		logger.String("size", humanize.Bytes(uint64(info.Size()))))
	return nil
}
