// config/config.go - Runtime configuration loaded from environment
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every externally tunable knob. All values have working
// defaults so the service boots with nothing but DATABASE_URL set.
type Config struct {
	// Fade mechanic
	FadeWindow time.Duration // echoes unplayed longer than this disappear from listings

	// Achievement thresholds
	CreatorTiers       []int         // cumulative echo counts for the creator tier ladder
	ShortEchoSeconds   float64       // recordings shorter than this grant the secrecy achievement
	LongEchoSeconds    float64       // recordings longer than this grant the monologue achievement
	DistanceTiersMeter []float64     // explorer tiers, meters from the newest echo to prior ones
	ListenTiers        []int64       // distinct-listen counts for the listener tier ladder
	FreshnessWindow    time.Duration // listens within this window of creation grant freshness
	RescueWindow       time.Duration // listens after this much silence grant rescue
	PlayMilestone      int64         // play count at which the creator earns the milestone

	// Trigger queue
	TriggerQueueSize int
}

var cfg *Config

// Load reads the environment and caches the resulting Config.
func Load() *Config {
	cfg = &Config{
		FadeWindow:       time.Duration(getEnvInt("FADE_WINDOW_DAYS", 30)) * 24 * time.Hour,
		CreatorTiers:     []int{getEnvInt("CREATOR_TIER_1", 1), getEnvInt("CREATOR_TIER_2", 5), getEnvInt("CREATOR_TIER_3", 25), getEnvInt("CREATOR_TIER_4", 100)},
		ShortEchoSeconds: getEnvFloat("SHORT_ECHO_SECONDS", 3),
		LongEchoSeconds:  getEnvFloat("LONG_ECHO_SECONDS", 55),
		DistanceTiersMeter: []float64{
			getEnvFloat("DISTANCE_TIER_1_METERS", 1000),
			getEnvFloat("DISTANCE_TIER_2_METERS", 100000),
			getEnvFloat("DISTANCE_TIER_3_METERS", 1000000),
		},
		ListenTiers:      []int64{int64(getEnvInt("LISTEN_TIER_1", 25)), int64(getEnvInt("LISTEN_TIER_2", 100))},
		FreshnessWindow:  time.Duration(getEnvInt("FRESHNESS_WINDOW_MINUTES", 60)) * time.Minute,
		RescueWindow:     time.Duration(getEnvInt("RESCUE_WINDOW_DAYS", 15)) * 24 * time.Hour,
		PlayMilestone:    int64(getEnvInt("PLAY_MILESTONE", 100)),
		TriggerQueueSize: getEnvInt("TRIGGER_QUEUE_SIZE", 256),
	}
	return cfg
}

// Get returns the cached Config, loading it on first use.
func Get() *Config {
	if cfg == nil {
		return Load()
	}
	return cfg
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
