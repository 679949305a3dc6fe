package log

// RestyAdapter 适配 resty.Logger 接口到 pkg/log
type RestyAdapter struct{}

// RestyLogger returns an adapter that routes resty's internal messages
// through the global logger.
func RestyLogger() *RestyAdapter {
	return &RestyAdapter{}
}

func (l *RestyAdapter) Errorf(format string, v ...any) {
	current().Errorf(format, v...)
}

func (l *RestyAdapter) Warnf(format string, v ...any) {
	current().Warnf(format, v...)
}

func (l *RestyAdapter) Debugf(format string, v ...any) {
	current().Debugf(format, v...)
}
