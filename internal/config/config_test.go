package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MATCH_THRESHOLD", "DEDUP_THRESHOLD", "HISTORY_LIMIT", "TRAINING_STORE", "FALLBACK_MODE", "SIMPLIFY_ANSWERS", "NATS_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.MatchThreshold != 0.3 {
		t.Fatalf("expected default match threshold 0.3, got %v", cfg.MatchThreshold)
	}
	if cfg.DedupThreshold != 0.8 {
		t.Fatalf("expected default dedup threshold 0.8, got %v", cfg.DedupThreshold)
	}
	if cfg.HistoryLimit != 20 {
		t.Fatalf("expected default history limit 20, got %d", cfg.HistoryLimit)
	}
	if cfg.TrainingStore != TrainingStoreFile {
		t.Fatalf("expected file training store, got %q", cfg.TrainingStore)
	}
	if cfg.FallbackMode != FallbackRandom || !cfg.SimplifyAnswers {
		t.Fatalf("unexpected answer defaults: %q %v", cfg.FallbackMode, cfg.SimplifyAnswers)
	}
	if cfg.NATSURL != "" {
		t.Fatalf("expected NATS disabled by default, got %q", cfg.NATSURL)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "0.45")
	t.Setenv("HISTORY_LIMIT", "8")
	t.Setenv("TRAINING_STORE", "Redis")
	t.Setenv("SIMPLIFY_ANSWERS", "false")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")

	cfg := Load()
	if cfg.MatchThreshold != 0.45 {
		t.Fatalf("expected match threshold 0.45, got %v", cfg.MatchThreshold)
	}
	if cfg.HistoryLimit != 8 {
		t.Fatalf("expected history limit 8, got %d", cfg.HistoryLimit)
	}
	if cfg.TrainingStore != TrainingStoreRedis {
		t.Fatalf("expected redis training store, got %q", cfg.TrainingStore)
	}
	if cfg.SimplifyAnswers {
		t.Fatalf("expected simplification disabled")
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "high")
	t.Setenv("HISTORY_LIMIT", "many")
	t.Setenv("SIMPLIFY_ANSWERS", "maybe")

	cfg := Load()
	if cfg.MatchThreshold != 0.3 || cfg.HistoryLimit != 20 || !cfg.SimplifyAnswers {
		t.Fatalf("expected fallbacks for malformed values, got %+v", cfg)
	}
}
