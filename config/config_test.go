package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.FadeWindow != 30*24*time.Hour {
		t.Fatalf("expected 30 day fade window, got %v", cfg.FadeWindow)
	}
	if len(cfg.CreatorTiers) != 4 || cfg.CreatorTiers[0] != 1 || cfg.CreatorTiers[3] != 100 {
		t.Fatalf("unexpected creator tiers: %v", cfg.CreatorTiers)
	}
	if cfg.ShortEchoSeconds != 3 || cfg.LongEchoSeconds != 55 {
		t.Fatalf("unexpected duration tiers: %v / %v", cfg.ShortEchoSeconds, cfg.LongEchoSeconds)
	}
	if cfg.DistanceTiersMeter[0] != 1000 || cfg.DistanceTiersMeter[2] != 1000000 {
		t.Fatalf("unexpected distance tiers: %v", cfg.DistanceTiersMeter)
	}
	if cfg.FreshnessWindow != time.Hour {
		t.Fatalf("expected 1 hour freshness window, got %v", cfg.FreshnessWindow)
	}
	if cfg.RescueWindow != 15*24*time.Hour {
		t.Fatalf("expected 15 day rescue window, got %v", cfg.RescueWindow)
	}
	if cfg.PlayMilestone != 100 {
		t.Fatalf("expected play milestone 100, got %d", cfg.PlayMilestone)
	}
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("FADE_WINDOW_DAYS", "7")
	t.Setenv("RESCUE_WINDOW_DAYS", "3")
	t.Setenv("LISTEN_TIER_1", "10")

	cfg := Load()

	if cfg.FadeWindow != 7*24*time.Hour {
		t.Fatalf("expected 7 day fade window, got %v", cfg.FadeWindow)
	}
	if cfg.RescueWindow != 3*24*time.Hour {
		t.Fatalf("expected 3 day rescue window, got %v", cfg.RescueWindow)
	}
	if cfg.ListenTiers[0] != 10 {
		t.Fatalf("expected listen tier 10, got %d", cfg.ListenTiers[0])
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("FADE_WINDOW_DAYS", "soon")

	cfg := Load()
	if cfg.FadeWindow != 30*24*time.Hour {
		t.Fatalf("expected default fade window for malformed value, got %v", cfg.FadeWindow)
	}
}
