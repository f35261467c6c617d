package repository

import (
	"os"

	"github.com/okian/faceoff/pkg/logger"
)

const defaultFileMode os.FileMode = 0o600

type options struct {
	log      logger.Logger
	fileMode os.FileMode
}

// Option applies a configuration option to a Store implementation.
type Option func(*options)

// WithLogger makes the store log writes at debug level.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithFileMode sets the permissions of files created by the JSON store.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.fileMode = mode
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{fileMode: defaultFileMode}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
