package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/api/middleware"
	"github.com/ksalp/portal/internal/core/domain"
)

func TestSettingsHandler_Updates(t *testing.T) {
	tests := []struct {
		name    string
		call    func(h *SettingsHandler) echo.HandlerFunc
		body    string
		message string
		check   func(t *testing.T, up domain.UserUpdate)
	}{
		{
			name:    "theme",
			call:    func(h *SettingsHandler) echo.HandlerFunc { return h.Theme },
			body:    `{"theme":"light"}`,
			message: "Theme updated successfully.",
			check: func(t *testing.T, up domain.UserUpdate) {
				if up.Theme == nil || *up.Theme != "light" {
					t.Fatalf("theme not set: %+v", up)
				}
			},
		},
		{
			name:    "class",
			call:    func(h *SettingsHandler) echo.HandlerFunc { return h.Class },
			body:    `{"class_":"4a  4b"}`,
			message: "Class updated successfully.",
			check: func(t *testing.T, up domain.UserUpdate) {
				if len(up.Classes) != 2 || up.Classes[1] != "4b" {
					t.Fatalf("classes not split: %v", up.Classes)
				}
			},
		},
		{
			name:    "grade",
			call:    func(h *SettingsHandler) echo.HandlerFunc { return h.Grade },
			body:    `{"grade":"5"}`,
			message: "Grade updated successfully.",
			check: func(t *testing.T, up domain.UserUpdate) {
				if up.Grade == nil || *up.Grade != "5" {
					t.Fatalf("grade not set: %+v", up)
				}
			},
		},
		{
			name:    "search",
			call:    func(h *SettingsHandler) echo.HandlerFunc { return h.Search },
			body:    `{"search":"Ecosia"}`,
			message: "Search engine updated successfully.",
			check: func(t *testing.T, up domain.UserUpdate) {
				if up.Search == nil || *up.Search != "Ecosia" {
					t.Fatalf("search not set: %+v", up)
				}
			},
		},
		{
			name:    "iframe off",
			call:    func(h *SettingsHandler) echo.HandlerFunc { return h.IFrame },
			body:    `{"iframe":false}`,
			message: "Iframe settings updated successfully.",
			check: func(t *testing.T, up domain.UserUpdate) {
				if up.IFrame == nil || *up.IFrame {
					t.Fatalf("iframe not disabled: %+v", up)
				}
			},
		},
		{
			name:    "newsletter",
			call:    func(h *SettingsHandler) echo.HandlerFunc { return h.Newsletter },
			body:    `{"newsletter":true}`,
			message: "Newsletter settings updated successfully.",
			check: func(t *testing.T, up domain.UserUpdate) {
				if up.Newsletter == nil || !*up.Newsletter {
					t.Fatalf("newsletter not enabled: %+v", up)
				}
			},
		},
		{
			name:    "favorites",
			call:    func(h *SettingsHandler) echo.HandlerFunc { return h.Favorites },
			body:    `{"favorites":"  https://duden.de/ | Duden  \nnot a favorite\nhttps://deepl.com | DeepL"}`,
			message: "Favorites settings updated successfully.",
			check: func(t *testing.T, up domain.UserUpdate) {
				want := []string{"https://duden.de/ | Duden", "https://deepl.com | DeepL"}
				if len(up.Favorites) != 2 || up.Favorites[0] != want[0] || up.Favorites[1] != want[1] {
					t.Fatalf("unexpected favorites %q", up.Favorites)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			var gotID string
			var got domain.UserUpdate
			accounts := &stubAccounts{
				updateFn: func(_ context.Context, id string, up domain.UserUpdate) (*domain.User, error) {
					gotID, got = id, up
					return &domain.User{ID: id}, nil
				},
			}
			h := NewSettingsHandler(accounts)

			c, rec := jsonContext(e, http.MethodPost, "/api/v1/account/settings/x", tt.body)
			middleware.SetSession(c, &domain.User{ID: "Ab3_xY9-"}, "tok")

			if err := tt.call(h)(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			requireSuccess(t, rec, tt.message)
			if gotID != "Ab3_xY9-" {
				t.Fatalf("updated wrong account %q", gotID)
			}
			tt.check(t, got)
		})
	}
}

func TestSettingsHandler_InvalidValue(t *testing.T) {
	e := newEcho()
	accounts := &stubAccounts{
		updateFn: func(_ context.Context, _ string, up domain.UserUpdate) (*domain.User, error) {
			return nil, domain.ValidateGrade(*up.Grade)
		},
	}
	h := NewSettingsHandler(accounts)

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/account/settings/grade", `{"grade":"9"}`)
	middleware.SetSession(c, &domain.User{ID: "Ab3_xY9-"}, "tok")

	var ve *domain.ValidationError
	if err := h.Grade(c); !errors.As(err, &ve) || ve.Field != "grade" {
		t.Fatalf("expected grade validation error, got %v", err)
	}
}

func TestSettingsHandler_Anonymous(t *testing.T) {
	e := newEcho()
	h := NewSettingsHandler(&stubAccounts{})

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/account/settings/theme", `{"theme":"light"}`)
	if err := h.Theme(c); !errors.Is(err, domain.ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
}

func TestSettingsHandler_Password(t *testing.T) {
	e := newEcho()
	accounts := &stubAccounts{
		passwordFn: func(_ context.Context, id, oldPassword, newPassword string) error {
			if oldPassword != "old" {
				return domain.ErrWrongPassword
			}
			if id != "Ab3_xY9-" || newPassword != "new" {
				t.Fatalf("unexpected args %s %s", id, newPassword)
			}
			return nil
		},
	}
	h := NewSettingsHandler(accounts)

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/account/settings/password", `{"oldPassword":"old","password":"new"}`)
	middleware.SetSession(c, &domain.User{ID: "Ab3_xY9-"}, "tok")
	if err := h.Password(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	requireSuccess(t, rec, "Password updated successfully.")

	c, _ = jsonContext(e, http.MethodPost, "/api/v1/account/settings/password", `{"oldPassword":"bad","password":"new"}`)
	middleware.SetSession(c, &domain.User{ID: "Ab3_xY9-"}, "tok")
	if err := h.Password(c); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestConstants(t *testing.T) {
	e := newEcho()
	c, rec := jsonContext(e, http.MethodGet, "/api/v1/constants", "")
	if err := Constants(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	for _, key := range []string{`"grades":["-","1"`, `"languages":`, `"Startpage":{"url":`, `"themes":{"light":"Hell"}`} {
		if !strings.Contains(rec.Body.String(), key) {
			t.Fatalf("expected %s in %s", key, rec.Body.String())
		}
	}
}
