package logger

import (
	"github.com/ThreeDotsLabs/watermill"
)

const watermillModule = "EVENT_BUS"

// WatermillAdapter routes watermill's internal logging into an ILogger.
type WatermillAdapter struct {
	logger ILogger
	fields watermill.LogFields
}

func NewWatermillAdapter(logger ILogger) *WatermillAdapter {
	return &WatermillAdapter{logger: logger}
}

func (a *WatermillAdapter) details(fields watermill.LogFields) map[string]interface{} {
	merged := a.fields.Add(fields)
	details := make(map[string]interface{}, len(merged))
	for k, v := range merged {
		details[k] = v
	}
	return details
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	details := a.details(fields)
	if err != nil {
		details["error"] = err.Error()
	}
	a.logger.Error(watermillModule, msg, details)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(watermillModule, msg, a.details(fields))
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(watermillModule, msg, a.details(fields))
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(watermillModule, msg, a.details(fields))
}

func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: a.logger, fields: a.fields.Add(fields)}
}
