package runner

import "os"

// WithSignalSource replaces the OS signal subscription.
func WithSignalSource(src <-chan os.Signal) Option {
	return func(r *Runner) {
		r.notify = func() (<-chan os.Signal, func()) { return src, func() {} }
	}
}
