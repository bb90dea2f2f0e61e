package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ConsoleHook mirrors every entry to stdout alongside the log file, which
// is what container runtimes scrape.
type ConsoleHook struct{}

func NewConsoleHook() *ConsoleHook {
	return &ConsoleHook{}
}

func (h *ConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, string(line))
	return nil
}

func (h *ConsoleHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
