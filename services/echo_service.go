// services/echo_service.go - Echo CRUD, fade visibility, play recorder
package services

import (
	"errors"
	"fmt"
	"time"

	"echomap/config"
	"echomap/models"

	"gorm.io/gorm"
)

var (
	// ErrEchoNotFound is returned when the target echo does not exist
	ErrEchoNotFound = errors.New("echo not found")
	// ErrEchoForbidden is returned when the caller may not delete the echo
	ErrEchoForbidden = errors.New("not allowed to delete this echo")
)

// EchoService owns the echo table: creation, the fade-window listing
// and the atomic play recorder.
type EchoService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewEchoService(db *gorm.DB, cfg *config.Config) *EchoService {
	return &EchoService{db: db, cfg: cfg}
}

// VisibleEcho is a listing row joined with the author's username.
type VisibleEcho struct {
	ID              uint      `json:"id"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	AudioURL        string    `json:"audio_url"`
	DurationSeconds float64   `json:"duration_seconds"`
	PlayCount       int64     `json:"play_count"`
	AuthorName      string    `json:"author_name"`
	CreatedAt       time.Time `json:"created_at"`
	LastPlayedAt    time.Time `json:"last_played_at"`
}

// ListVisible returns every echo played within the fade window, newest
// first. Aliveness is evaluated here and only here; an echo crossing
// the window simply stops showing up, no row is ever written for it.
func (s *EchoService) ListVisible() ([]VisibleEcho, error) {
	cutoff := time.Now().Add(-s.cfg.FadeWindow)

	var rows []VisibleEcho
	err := s.db.Table("echoes").
		Select("echoes.id, echoes.latitude, echoes.longitude, echoes.audio_url, echoes.duration_seconds, echoes.play_count, echoes.created_at, echoes.last_played_at, users.username AS author_name").
		Joins("LEFT JOIN users ON users.id = echoes.user_id").
		Where("echoes.last_played_at > ?", cutoff).
		Order("echoes.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list visible echoes: %w", err)
	}

	for i := range rows {
		if rows[i].AuthorName == "" {
			rows[i].AuthorName = "Anonymous"
		}
	}

	return rows, nil
}

// Create inserts a new echo. LastPlayedAt starts at creation time so a
// fresh echo begins its fade clock immediately.
func (s *EchoService) Create(userID *uint, lat, lng float64, audioURL string, durationSeconds float64) (*models.Echo, error) {
	now := time.Now()
	echo := models.Echo{
		UserID:          userID,
		Latitude:        lat,
		Longitude:       lng,
		AudioURL:        audioURL,
		DurationSeconds: durationSeconds,
		PlayCount:       0,
		LastPlayedAt:    now,
		CreatedAt:       now,
	}

	if err := s.db.Create(&echo).Error; err != nil {
		return nil, fmt.Errorf("create echo: %w", err)
	}
	return &echo, nil
}

// Get fetches an echo by id.
func (s *EchoService) Get(id uint) (*models.Echo, error) {
	var echo models.Echo
	if err := s.db.First(&echo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEchoNotFound
		}
		return nil, fmt.Errorf("get echo: %w", err)
	}
	return &echo, nil
}

// RecordPlay bumps play_count and resets last_played_at in a single
// statement, so concurrent plays of the same echo never lose an
// increment. This is the only operation that can resurrect a faded
// echo. Unknown id returns ErrEchoNotFound.
func (s *EchoService) RecordPlay(id uint) (*models.Echo, error) {
	now := time.Now()
	result := s.db.Model(&models.Echo{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"play_count":     gorm.Expr("play_count + 1"),
			"last_played_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("record play: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrEchoNotFound
	}

	return s.Get(id)
}

// Delete removes an echo. Fading never deletes; this is the explicit
// owner/admin removal path.
func (s *EchoService) Delete(id uint, userID uint, isAdmin bool) error {
	echo, err := s.Get(id)
	if err != nil {
		return err
	}

	if !isAdmin && (echo.UserID == nil || *echo.UserID != userID) {
		return ErrEchoForbidden
	}

	if err := s.db.Delete(&models.Echo{}, id).Error; err != nil {
		return fmt.Errorf("delete echo: %w", err)
	}
	return nil
}
