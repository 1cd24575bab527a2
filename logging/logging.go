package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu          sync.Mutex
	root_logger *logrus.Logger
)

// GetLogger returns a component scoped logger. All components share
// one root logger so output ordering and level configuration are
// consistent across the process.
func GetLogger(component string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	return getRootLogger().WithField("component", component)
}

// SetLevel adjusts verbosity for the whole process.
func SetLevel(level logrus.Level) {
	mu.Lock()
	defer mu.Unlock()

	getRootLogger().SetLevel(level)
}

func getRootLogger() *logrus.Logger {
	if root_logger == nil {
		root_logger = logrus.New()
		root_logger.Out = os.Stderr
		root_logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return root_logger
}
