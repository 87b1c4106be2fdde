package utils

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-1", "client", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "client" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseClaimsRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-1", "client", time.Minute, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseClaims(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestHaversine(t *testing.T) {
	// Casablanca to Rabat is roughly 87 km as the crow flies.
	d := Haversine(33.5731, -7.5898, 34.0209, -6.8416)
	if d < 80 || d > 95 {
		t.Fatalf("unexpected distance %.1f", d)
	}
	if Haversine(33.5, -7.5, 33.5, -7.5) != 0 {
		t.Fatal("distance to self should be zero")
	}
}

func TestSequentialIDs(t *testing.T) {
	next := SequentialIDs("job")
	if a, b := next(), next(); a != "job-1" || b != "job-2" {
		t.Fatalf("got %s, %s", a, b)
	}
}
