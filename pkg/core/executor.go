package core

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Executor runs archive operations, logging through Logger.
type Executor struct {
	Logger *log.Logger
}

func (e *Executor) SetLogger(logger *log.Logger) {
	e.Logger = logger
}

func (e *Executor) GetLogger() *log.Logger {
	return e.Logger
}

// runLogger returns an entry tagged with the run id and operation, at the executor's level.
func (e *Executor) runLogger(run uuid.UUID, operation string) *log.Entry {
	if e.Logger == nil {
		e.Logger = log.New()
	}
	logger := e.Logger.WithFields(log.Fields{"run": run.String(), "operation": operation})
	logger.Level = e.Logger.Level
	return logger
}
