package main

import (
	"testing"

	"tirehub/backend/internal/config"
)

func TestValidateSecurityConfig(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "short"}); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
	if err := validateSecurityConfig(config.Config{AuthSecret: "0123456789012345678901234567890123456789"}); err != nil {
		t.Fatalf("expected long secret to pass, got %v", err)
	}
}
