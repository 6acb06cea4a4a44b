package logger

// Options configures New.
type Options struct {
	Level           string          `yaml:"level"`  // debug, info, warn, error
	Format          string          `yaml:"format"` // json or console
	File            string          `yaml:"file"`   // optional rotated JSON log file
	EnableCaller    bool            `yaml:"enable_caller"`
	StacktraceLevel string          `yaml:"stacktrace_level"`
	Rotation        RotationOptions `yaml:"rotation"`
}

// RotationOptions is passed through to lumberjack.
type RotationOptions struct {
	MaxSize    int  `yaml:"max_size"`    // MB
	MaxBackups int  `yaml:"max_backups"` // files
	MaxAge     int  `yaml:"max_age"`     // days
	Compress   bool `yaml:"compress"`
}

type Option func(*Options)

func WithLevel(level string) Option {
	return func(o *Options) {
		if level != "" {
			o.Level = level
		}
	}
}

func WithFormat(format string) Option {
	return func(o *Options) {
		if format != "" {
			o.Format = format
		}
	}
}

// WithFile adds a rotated log file next to stdout.
func WithFile(path string) Option {
	return func(o *Options) {
		o.File = path
	}
}

func WithCaller(enable bool) Option {
	return func(o *Options) {
		o.EnableCaller = enable
	}
}
