package config

// ConfigError is a fatal configuration problem found before any frame is
// processed. Field is the dotted path of the offending setting.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config: " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
