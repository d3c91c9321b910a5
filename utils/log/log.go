package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/logdna/logdna-go/logger"
	"github.com/sirupsen/logrus"
)

// global accessible logger
var (
	LogV2 *AppLogger
)

// This init function is only for testing cases, where the entry point is
// not main function. Unit test will fail with nil pointer dereference if
// we don't init here.
func init() {
	initLogger()
}

// AppLogger writes structured entries through logrus and, when a LogDNA
// ingestion key is configured, mirrors them to LogDNA.
type AppLogger struct {
	*logrus.Logger
	dna *logger.Logger
}

func (l *AppLogger) Info(params ...interface{}) {
	msg := joinParams(params)
	l.Logger.Info(msg)
	if l.dna != nil {
		l.dna.Info(msg)
	}
}

func (l *AppLogger) Warn(params ...interface{}) {
	msg := joinParams(params)
	l.Logger.Warn(msg)
	if l.dna != nil {
		l.dna.Warn(msg)
	}
}

func (l *AppLogger) Error(params ...interface{}) {
	msg := joinParams(params)
	l.Logger.Error(msg)
	if l.dna != nil {
		l.dna.Error(msg)
	}
}

func (l *AppLogger) Infof(format string, params ...interface{}) {
	l.Info(fmt.Sprintf(format, params...))
}

func (l *AppLogger) Warnf(format string, params ...interface{}) {
	l.Warn(fmt.Sprintf(format, params...))
}

func (l *AppLogger) Errorf(format string, params ...interface{}) {
	l.Error(fmt.Sprintf(format, params...))
}

func joinParams(params []interface{}) string {
	strs := make([]string, len(params))
	for i, param := range params {
		strs[i] = fmt.Sprint(param)
	}
	return strings.Join(strs, ", ")
}

func initLogger() {
	base := logrus.New()
	base.SetFormatter(&logrus.JSONFormatter{})

	env := os.Getenv("MEMEBOARD_ENV")
	if len(env) == 0 {
		env = "unknown"
	}

	l := &AppLogger{Logger: base}

	// LogDNA sink is optional, local and test runs go to stderr only.
	if key := os.Getenv("MEMEBOARD_LOGDNA_KEY"); key != "" {
		options := logger.Options{
			Level:    "debug",
			Hostname: "memeboard-" + env,
			App:      "memeboard-backend",
		}
		dna, err := logger.NewLogger(options, key)
		if err != nil {
			base.Errorf("fail to setup LogDNA sink: %s", err.Error())
		} else {
			l.dna = dna
		}
	}

	LogV2 = l
}
