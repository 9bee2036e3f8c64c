package config

// NewCacheForTest creates a Cache config for testing purposes
func NewCacheForTest(dir, backend string, disabled, refresh, messages bool) *Cache {
	return &Cache{
		dir:      dir,
		backend:  backend,
		disabled: disabled,
		refresh:  refresh,
		messages: messages,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken string) *Slack {
	return &Slack{botToken: botToken}
}

// Backend exposes the resolved backend for assertions
func (x *Cache) Backend() string {
	return x.backend
}
