package schedule

import "github.com/kingrea/legion/label"

// DefaultStage is the stage created by New unless WithDefaultStage overrides it.
const DefaultStage label.Label = "DefaultStage"

type options struct {
	logger       Logger
	defaultStage label.Label
}

// Option configures a Builder.
type Option func(*options)

// WithLogger sends the build trace to l.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDefaultStage renames the implicit stage AddController and
// AddControllerSet register into. An empty label keeps DefaultStage.
func WithDefaultStage(l label.Label) Option {
	return func(o *options) {
		if !l.IsZero() {
			o.defaultStage = l.Trimmed()
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: nopLogger{}, defaultStage: DefaultStage}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
