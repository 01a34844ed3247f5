// models/achievement_names.go
package models

// Stable achievement names. The evaluation engine addresses the catalog
// by these strings, so renaming one here without migrating the
// achievements table breaks granting for that rule.
const (
	// Creator tiers (total echoes left)
	AchFirstEcho     = "First Echo"
	AchEchoRegular   = "Echo Regular"
	AchEchoDevotee   = "Echo Devotee"
	AchEchoCenturion = "Echo Centurion"

	// Recording duration
	AchWhisper   = "Whisper"
	AchMonologue = "Monologue"

	// Explorer distance tiers
	AchTraveler     = "Traveler"
	AchVoyager      = "Voyager"
	AchGlobetrotter = "Globetrotter"

	// Time of day
	AchNightOwl  = "Night Owl"
	AchEarlyBird = "Early Bird"

	// Listening
	AchEchoChamber     = "Echo Chamber"
	AchFirstContact    = "First Contact"
	AchKeenListener    = "Keen Listener"
	AchDevotedListener = "Devoted Listener"
	AchPioneer         = "Pioneer"
	AchFreshEars       = "Fresh Ears"
	AchRescuer         = "Rescuer"
	AchResonantVoice   = "Resonant Voice"
)
