package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ALLOWED_ORIGIN", "DATABASE_URL", "REDIS_ADDR", "AUTH_SECRET",
		"ACCESS_TOKEN_TTL_MINUTES", "LOW_STOCK_THRESHOLD", "INVOICE_DIR", "SHOP_NAME",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected address :8080, got %s", cfg.Address())
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected default token TTL 480, got %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.LowStockThreshold != 5 {
		t.Fatalf("expected default low stock threshold 5, got %d", cfg.LowStockThreshold)
	}
	if cfg.InvoiceDir != "invoices" {
		t.Fatalf("expected default invoice dir, got %s", cfg.InvoiceDir)
	}
	if cfg.ShopName != "Tire Shop" {
		t.Fatalf("expected default shop name, got %s", cfg.ShopName)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOW_STOCK_THRESHOLD", "12")
	t.Setenv("AUTH_SECRET", "  secret-with-padding  ")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.LowStockThreshold != 12 {
		t.Fatalf("expected threshold 12, got %d", cfg.LowStockThreshold)
	}
	if cfg.AuthSecret != "secret-with-padding" {
		t.Fatalf("expected trimmed secret, got %q", cfg.AuthSecret)
	}
	if cfg.TwilioAccountSID != "AC123" {
		t.Fatalf("expected twilio sid, got %s", cfg.TwilioAccountSID)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "not-a-number")
	t.Setenv("LOW_STOCK_THRESHOLD", "-3")

	cfg := Load()
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected fallback TTL 480, got %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.LowStockThreshold != 5 {
		t.Fatalf("expected fallback threshold 5, got %d", cfg.LowStockThreshold)
	}
}
