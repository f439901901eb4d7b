package tracking

// Config holds the track lifecycle parameters.
type Config struct {
	StableHits int // Consecutive matches before a track is reported stable
	MaxMisses  int // Consecutive misses tolerated before a track is removed
}

// DefaultConfig returns the production lifecycle parameters.
func DefaultConfig() Config {
	return Config{
		StableHits: 3,
		MaxMisses:  5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StableHits <= 0 {
		c.StableHits = d.StableHits
	}
	if c.MaxMisses < 0 {
		c.MaxMisses = d.MaxMisses
	}
	return c
}
