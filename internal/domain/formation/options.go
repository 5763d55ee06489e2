package formation

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTeamSize sets the fixed number of members per committed team.
func WithTeamSize(size int) Option {
	return func(e *Engine) {
		if size > 1 {
			e.teamSize = size
		}
	}
}
