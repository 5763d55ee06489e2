package dedupe

// Option applies a configuration option to the submission log.
type Option func(*submissionLog)

// WithMaxSize bounds the number of remembered submission ids. Retention is
// generational, so the log holds at most maxSize ids across two generations
// and forgets the oldest generation in one step when the bound is reached.
// A non-positive maxSize keeps every id for the life of the process.
func WithMaxSize(maxSize int) Option {
	return func(d *submissionLog) {
		if maxSize > 0 {
			d.perGen = (maxSize + 1) / 2
		} else {
			d.perGen = 0
		}
	}
}
