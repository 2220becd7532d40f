package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func validEnv() map[string]string {
	return map[string]string{
		"SESSION_SECRET": "s3cret",
		"HASH_PEPPER_1":  "cGVwcGVyLW9uZQ",
		"HASH_PEPPER_2":  "cGVwcGVyLXR3bw==",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(validEnv()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != EnvDevelopment || cfg.StoreDriver != "postgres" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.TTL != 100*24*time.Hour {
		t.Fatalf("session ttl = %v", cfg.Session.TTL)
	}
	if cfg.Session.CookieMaxAge != 92*24*time.Hour {
		t.Fatalf("cookie max age = %v", cfg.Session.CookieMaxAge)
	}
	if cfg.Registration.TTL != 15*time.Minute {
		t.Fatalf("registration ttl = %v", cfg.Registration.TTL)
	}
	if got := strings.Join(cfg.Registration.AllowedDomains, ","); got != "@sluz.ch,@ksalp.ch" {
		t.Fatalf("allowed domains = %q", got)
	}
	if cfg.Hash.Iterations != 600000 || cfg.Gate.InitialScore != 2 || cfg.Gate.MaxBodyBytes != 2<<20 {
		t.Fatalf("unexpected numeric defaults: %+v %+v", cfg.Hash, cfg.Gate)
	}

	p1, p2, err := cfg.Hash.Peppers()
	if err != nil {
		t.Fatalf("Peppers: %v", err)
	}
	if string(p1) != "pepper-one" || string(p2) != "pepper-two" {
		t.Fatalf("peppers = %q %q", p1, p2)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing secret", map[string]string{"SESSION_SECRET": ""}, "SESSION_SECRET"},
		{"missing pepper", map[string]string{"HASH_PEPPER_2": ""}, "HASH_PEPPER_2"},
		{"bad pepper", map[string]string{"HASH_PEPPER_1": "***"}, "HASH_PEPPER_1"},
		{"unknown store", map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"unknown mail provider", map[string]string{"MAIL_PROVIDER": "fax"}, "MAIL_PROVIDER"},
		{"weak production hashing", map[string]string{"ENV": "production", "HASH_ITERATIONS": "1000"}, "HASH_ITERATIONS"},
		{"inverted delay", map[string]string{"SIGNIN_DELAY_MIN": "1s", "SIGNIN_DELAY_MAX": "10ms"}, "SIGNIN_DELAY_MIN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnv()
			for k, v := range tt.env {
				env[k] = v
			}
			_, err := load(context.Background(), envconfig.MapLookuper(env))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
