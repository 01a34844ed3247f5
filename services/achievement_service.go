// services/achievement_service.go - Achievement evaluation engine
package services

import (
	"log"
	"sync"
	"time"

	"echomap/config"
	"echomap/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Action names the two trigger events the engine understands. Anything
// else is silently ignored so new callers can never break evaluation.
type Action string

const (
	ActionLeaveEcho  Action = "LEAVE_ECHO"
	ActionListenEcho Action = "LISTEN_ECHO"
)

// EchoPayload is the echo snapshot a trigger carries. For LISTEN_ECHO,
// PlayCount holds the value after the triggering play was recorded,
// while LastPlayedAt holds the value from before it. The rescue rule
// needs the pre-play timestamp, the discovery and milestone rules the
// post-play count.
type EchoPayload struct {
	EchoID          uint
	OwnerID         *uint
	Latitude        float64
	Longitude       float64
	DurationSeconds float64
	PlayCount       int64
	CreatedAt       time.Time
	LastPlayedAt    time.Time
}

// GrantEvent reports one granted achievement. The recipient is usually
// the acting user, but the play-milestone rule grants to the creator.
type GrantEvent struct {
	UserID      uint   `json:"user_id"`
	Achievement string `json:"achievement"`
}

// AchievementService evaluates the predicate batteries and writes
// grants. It holds no state between runs beyond the name→id catalog
// cache; every fact is re-derived from current data on each call.
type AchievementService struct {
	db  *gorm.DB
	cfg *config.Config

	mu      sync.RWMutex
	catalog map[string]uint
}

func NewAchievementService(db *gorm.DB, cfg *config.Config) *AchievementService {
	return &AchievementService{db: db, cfg: cfg, catalog: map[string]uint{}}
}

// ReloadCatalog rebuilds the name→id cache from the achievements table.
// Called at startup, from the admin reload endpoint, and lazily by
// Evaluate whenever the cache turns up empty.
func (s *AchievementService) ReloadCatalog() error {
	var achievements []models.Achievement
	if err := s.db.Find(&achievements).Error; err != nil {
		return err
	}

	catalog := make(map[string]uint, len(achievements))
	for _, a := range achievements {
		catalog[a.Name] = a.ID
	}

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	return nil
}

// CatalogSize returns the number of cached achievement definitions.
func (s *AchievementService) CatalogSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}

func (s *AchievementService) lookup(name string) (uint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.catalog[name]
	return id, ok
}

// Evaluate runs the battery for the given trigger and returns every
// grant that was newly written. Failures inside the battery are logged
// and never surface to the caller.
func (s *AchievementService) Evaluate(userID uint, action Action, payload EchoPayload) []GrantEvent {
	if s.CatalogSize() == 0 {
		if err := s.ReloadCatalog(); err != nil {
			log.Printf("achievement catalog reload failed: %v", err)
			return nil
		}
	}

	switch action {
	case ActionLeaveEcho:
		return s.evaluateLeaveEcho(userID, payload)
	case ActionListenEcho:
		return s.evaluateListenEcho(userID, payload)
	default:
		// Unknown trigger: fail open, never an error.
		return nil
	}
}

// leaveFacts are the aggregate facts the LEAVE_ECHO predicates read.
type leaveFacts struct {
	EchoCount         int64   // user's total echoes, including the new one
	DurationSeconds   float64 // length of the new recording
	HasPriorEchoes    bool
	MaxDistanceMeters float64 // newest echo vs each prior echo, not all-pairs
	LocalHour         int     // local hour of the creation timestamp
}

type leaveCheck struct {
	name  string
	match func(*config.Config, leaveFacts) bool
}

// leaveEchoChecks is the LEAVE_ECHO battery. Every check runs on every
// trigger; already-held achievements collapse in the grant ledger, so
// re-matching a lower tier is a cheap no-op rather than a bug.
var leaveEchoChecks = []leaveCheck{
	{models.AchFirstEcho, func(c *config.Config, f leaveFacts) bool { return f.EchoCount >= int64(c.CreatorTiers[0]) }},
	{models.AchEchoRegular, func(c *config.Config, f leaveFacts) bool { return f.EchoCount >= int64(c.CreatorTiers[1]) }},
	{models.AchEchoDevotee, func(c *config.Config, f leaveFacts) bool { return f.EchoCount >= int64(c.CreatorTiers[2]) }},
	{models.AchEchoCenturion, func(c *config.Config, f leaveFacts) bool { return f.EchoCount >= int64(c.CreatorTiers[3]) }},

	{models.AchWhisper, func(c *config.Config, f leaveFacts) bool { return f.DurationSeconds < c.ShortEchoSeconds }},
	{models.AchMonologue, func(c *config.Config, f leaveFacts) bool { return f.DurationSeconds > c.LongEchoSeconds }},

	{models.AchTraveler, func(c *config.Config, f leaveFacts) bool {
		return f.HasPriorEchoes && f.MaxDistanceMeters > c.DistanceTiersMeter[0]
	}},
	{models.AchVoyager, func(c *config.Config, f leaveFacts) bool {
		return f.HasPriorEchoes && f.MaxDistanceMeters > c.DistanceTiersMeter[1]
	}},
	{models.AchGlobetrotter, func(c *config.Config, f leaveFacts) bool {
		return f.HasPriorEchoes && f.MaxDistanceMeters > c.DistanceTiersMeter[2]
	}},

	{models.AchNightOwl, func(c *config.Config, f leaveFacts) bool { return f.LocalHour >= 0 && f.LocalHour < 4 }},
	{models.AchEarlyBird, func(c *config.Config, f leaveFacts) bool { return f.LocalHour >= 4 && f.LocalHour < 7 }},
}

func (s *AchievementService) evaluateLeaveEcho(userID uint, p EchoPayload) []GrantEvent {
	facts := s.gatherLeaveFacts(userID, p)

	var granted []GrantEvent
	for _, check := range leaveEchoChecks {
		if check.match(s.cfg, facts) && s.grant(userID, check.name) {
			granted = append(granted, GrantEvent{UserID: userID, Achievement: check.name})
		}
	}
	return granted
}

func (s *AchievementService) gatherLeaveFacts(userID uint, p EchoPayload) leaveFacts {
	facts := leaveFacts{
		DurationSeconds: p.DurationSeconds,
		LocalHour:       p.CreatedAt.Local().Hour(),
	}

	if err := s.db.Model(&models.Echo{}).Where("user_id = ?", userID).Count(&facts.EchoCount).Error; err != nil {
		// Tier checks sit out this round; the next trigger retries.
		log.Printf("LEAVE_ECHO user %d: echo count failed: %v", userID, err)
	}

	// Max distance is measured from the newest echo to each prior echo
	// only. Deliberately not all-pairs: thresholds were tuned against
	// this cheaper definition.
	var prior []models.Echo
	if err := s.db.Select("latitude", "longitude").
		Where("user_id = ? AND id <> ?", userID, p.EchoID).
		Find(&prior).Error; err != nil {
		log.Printf("LEAVE_ECHO user %d: prior echo fetch failed: %v", userID, err)
		return facts
	}

	facts.HasPriorEchoes = len(prior) > 0
	for _, e := range prior {
		if d := HaversineMeters(p.Latitude, p.Longitude, e.Latitude, e.Longitude); d > facts.MaxDistanceMeters {
			facts.MaxDistanceMeters = d
		}
	}
	return facts
}

// listenFacts are the facts the pure LISTEN_ECHO predicates read.
type listenFacts struct {
	PlayCount    int64
	EchoAge      time.Duration // now - created_at
	SilentFor    time.Duration // now - pre-play last_played_at
	DistinctSeen int64         // listener's distinct-listen count after this listen
}

type listenCheck struct {
	name  string
	match func(*config.Config, listenFacts) bool
}

var listenEchoChecks = []listenCheck{
	{models.AchKeenListener, func(c *config.Config, f listenFacts) bool { return f.DistinctSeen >= c.ListenTiers[0] }},
	{models.AchDevotedListener, func(c *config.Config, f listenFacts) bool { return f.DistinctSeen >= c.ListenTiers[1] }},

	// A post-play count of exactly 1 means nobody but the creator had
	// touched this echo before now.
	{models.AchPioneer, func(c *config.Config, f listenFacts) bool { return f.PlayCount == 1 }},

	{models.AchFreshEars, func(c *config.Config, f listenFacts) bool { return f.EchoAge < c.FreshnessWindow }},
	{models.AchRescuer, func(c *config.Config, f listenFacts) bool { return f.SilentFor > c.RescueWindow }},
}

func (s *AchievementService) evaluateListenEcho(listenerID uint, p EchoPayload) []GrantEvent {
	var granted []GrantEvent

	// Listening to your own echo grants exactly one thing and nothing
	// else, no matter what the other rules would match.
	if p.OwnerID != nil && *p.OwnerID == listenerID {
		if s.grant(listenerID, models.AchEchoChamber) {
			granted = append(granted, GrantEvent{UserID: listenerID, Achievement: models.AchEchoChamber})
		}
		return granted
	}

	if s.grant(listenerID, models.AchFirstContact) {
		granted = append(granted, GrantEvent{UserID: listenerID, Achievement: models.AchFirstContact})
	}

	facts := listenFacts{
		PlayCount: p.PlayCount,
		EchoAge:   time.Since(p.CreatedAt),
		SilentFor: time.Since(p.LastPlayedAt),
	}

	// Record the unique listen before counting, so this listen is
	// included in the listener's distinct total. Repeat listens hit the
	// unique index and change nothing.
	listen := models.EchoListen{UserID: listenerID, EchoID: p.EchoID}
	insert := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "echo_id"}},
		DoNothing: true,
	}).Create(&listen)
	if insert.Error != nil {
		log.Printf("LISTEN_ECHO user %d: unique listen insert failed: %v", listenerID, insert.Error)
		// Count would be stale; skip the dependent tier checks.
		facts.DistinctSeen = -1
	} else if err := s.db.Model(&models.EchoListen{}).Where("user_id = ?", listenerID).Count(&facts.DistinctSeen).Error; err != nil {
		log.Printf("LISTEN_ECHO user %d: distinct listen count failed: %v", listenerID, err)
		facts.DistinctSeen = -1
	}

	for _, check := range listenEchoChecks {
		if check.match(s.cfg, facts) && s.grant(listenerID, check.name) {
			granted = append(granted, GrantEvent{UserID: listenerID, Achievement: check.name})
		}
	}

	// Creator-side milestone: the echo itself crossed the play mark.
	if p.OwnerID != nil && p.PlayCount >= s.cfg.PlayMilestone {
		if s.grant(*p.OwnerID, models.AchResonantVoice) {
			granted = append(granted, GrantEvent{UserID: *p.OwnerID, Achievement: models.AchResonantVoice})
		}
	}

	return granted
}

// grant writes one ledger row, insert-or-ignore on the (user,
// achievement) unique index. Returns true only when the row is new.
// Catalog misses and storage errors are logged and swallowed; the
// worst case is a missed grant until the predicate next fires.
func (s *AchievementService) grant(userID uint, name string) bool {
	achievementID, ok := s.lookup(name)
	if !ok {
		log.Printf("CRITICAL: achievement %q not in catalog, grant for user %d skipped", name, userID)
		return false
	}

	grant := models.AchievementGrant{
		UserID:        userID,
		AchievementID: achievementID,
		GrantedAt:     time.Now(),
	}
	insert := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&grant)
	if insert.Error != nil {
		log.Printf("grant %q to user %d failed: %v", name, userID, insert.Error)
		return false
	}

	return insert.RowsAffected == 1
}
