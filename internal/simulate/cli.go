package simulate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/faceoff/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log records to stdout and, when logFile is set, also
// appends them to that file. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func(), error) {
	var w io.Writer = os.Stdout
	closer := func() {}
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = func() { _ = file.Close() }
	}
	if err := logger.InitWithWriter(w); err != nil {
		closer()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closer, nil
}
