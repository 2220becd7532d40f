package domain

import (
	"slices"
	"strings"
	"time"
)

// User is the durable account record.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"mail"`
	Salt        []byte    `json:"-"`
	Hash        []byte    `json:"-"`
	Newsletter  bool      `json:"newsletter"`
	CreatedAt   time.Time `json:"created"`
	Theme       string    `json:"theme"`
	IFrame      bool      `json:"iframe"`
	Payment     time.Time `json:"payment"`
	PaymentLite time.Time `json:"payment_lite"`
	Banned      []string  `json:"banned"`
	Search      string    `json:"search"`
	Classes     []string  `json:"classes"`
	Grade       string    `json:"grade"`
	Favorites   []string  `json:"favorites"`
}

// NewUserParams holds the caller-supplied fields of a new account. Empty
// optional fields fall back to the portal defaults.
type NewUserParams struct {
	Name       string
	Email      string
	Salt       []byte
	Hash       []byte
	Newsletter bool
	Theme      string
	IFrame     bool
	Search     string
	Classes    []string
	Grade      string
	Favorites  []string
}

// NewUser builds a validated account with the given identifier.
func NewUser(id string, p NewUserParams, now time.Time) (*User, error) {
	u := &User{
		ID:          id,
		Name:        strings.TrimSpace(p.Name),
		Email:       p.Email,
		Salt:        slices.Clone(p.Salt),
		Hash:        slices.Clone(p.Hash),
		Newsletter:  p.Newsletter,
		CreatedAt:   now.UTC(),
		Theme:       p.Theme,
		IFrame:      p.IFrame,
		Payment:     NeverPaid,
		PaymentLite: NeverPaid,
		Banned:      []string{},
		Search:      p.Search,
		Classes:     slices.Clone(p.Classes),
		Grade:       p.Grade,
		Favorites:   slices.Clone(p.Favorites),
	}
	if u.Theme == "" {
		u.Theme = DefaultTheme
	}
	if u.Search == "" {
		u.Search = DefaultSearchEngine
	}
	if u.Grade == "" {
		u.Grade = DefaultGrade
	}
	if len(u.Classes) == 0 {
		u.Classes = []string{DefaultClass}
	}
	if p.Favorites == nil {
		u.Favorites = slices.Clone(DefaultFavorites)
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks every field invariant of the record.
func (u *User) Validate() error {
	if u.ID == "" {
		return NewValidationError("id", "must not be empty")
	}
	if u.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if u.Email == "" {
		return NewValidationError("email", "must not be empty")
	}
	if len(u.Salt) == 0 || len(u.Hash) == 0 {
		return NewValidationError("password", "must be hashed")
	}
	if err := ValidateTheme(u.Theme); err != nil {
		return err
	}
	if err := ValidateSearchEngine(u.Search); err != nil {
		return err
	}
	if err := ValidateGrade(u.Grade); err != nil {
		return err
	}
	if err := ValidateClasses(u.Classes); err != nil {
		return err
	}
	if err := validateList("banned", u.Banned); err != nil {
		return err
	}
	return ValidateFavorites(u.Favorites)
}

// UserUpdate describes a settings change. Nil fields stay unchanged.
type UserUpdate struct {
	Theme      *string
	Search     *string
	Grade      *string
	Classes    []string
	IFrame     *bool
	Newsletter *bool
	Favorites  []string
}

// Apply returns a copy of u with the update applied, or a validation error.
func (u User) Apply(up UserUpdate) (User, error) {
	next := u
	next.Banned = slices.Clone(u.Banned)
	next.Classes = slices.Clone(u.Classes)
	next.Favorites = slices.Clone(u.Favorites)

	if up.Theme != nil {
		if err := ValidateTheme(*up.Theme); err != nil {
			return User{}, err
		}
		next.Theme = *up.Theme
	}
	if up.Search != nil {
		if err := ValidateSearchEngine(*up.Search); err != nil {
			return User{}, err
		}
		next.Search = *up.Search
	}
	if up.Grade != nil {
		if err := ValidateGrade(*up.Grade); err != nil {
			return User{}, err
		}
		next.Grade = *up.Grade
	}
	if up.Classes != nil {
		if err := ValidateClasses(up.Classes); err != nil {
			return User{}, err
		}
		next.Classes = slices.Clone(up.Classes)
	}
	if up.IFrame != nil {
		next.IFrame = *up.IFrame
	}
	if up.Newsletter != nil {
		next.Newsletter = *up.Newsletter
	}
	if up.Favorites != nil {
		if err := ValidateFavorites(up.Favorites); err != nil {
			return User{}, err
		}
		next.Favorites = slices.Clone(up.Favorites)
	}
	return next, nil
}

// ValidPayment reports whether premium is active at now.
func (u *User) ValidPayment(now time.Time) bool {
	return u.Payment.After(now)
}

// ValidPaymentLite reports whether premium lite is active at now.
func (u *User) ValidPaymentLite(now time.Time) bool {
	return u.PaymentLite.After(now)
}

// HasPremiumLite is satisfied by either premium or premium lite.
func (u *User) HasPremiumLite(now time.Time) bool {
	return u.ValidPayment(now) || u.ValidPaymentLite(now)
}

// IsBanned reports whether any of reasons is among the stored ban reasons.
func (u *User) IsBanned(reasons ...string) bool {
	for _, r := range reasons {
		if slices.Contains(u.Banned, r) {
			return true
		}
	}
	return false
}

func ValidateTheme(v string) error {
	if _, ok := Themes[v]; !ok {
		return NewValidationError("theme", "unknown theme")
	}
	return nil
}

func ValidateSearchEngine(v string) error {
	if _, ok := SearchEngines[v]; !ok {
		return NewValidationError("search", "unknown search engine")
	}
	return nil
}

func ValidateGrade(v string) error {
	if !slices.Contains(Grades, v) {
		return NewValidationError("grade", "unknown grade")
	}
	return nil
}

func ValidateLanguage(v string) error {
	if !slices.Contains(Languages, v) {
		return NewValidationError("language", "unknown language")
	}
	return nil
}

func ValidateClasses(classes []string) error {
	if len(classes) == 0 {
		return NewValidationError("class_", "must not be empty")
	}
	for _, c := range classes {
		if c == "" {
			return NewValidationError("class_", "class names must not be empty")
		}
	}
	return validateList("class_", classes)
}

func ValidateFavorites(favorites []string) error {
	for _, f := range favorites {
		if strings.Contains(f, "\n") {
			return NewValidationError("favorites", "entries must be single lines")
		}
	}
	return nil
}

func validateList(field string, values []string) error {
	for _, v := range values {
		if strings.Contains(v, ListDelimiter) {
			return NewValidationError(field, "entries must not contain \""+ListDelimiter+"\"")
		}
	}
	return nil
}

// SplitClasses parses the space separated class list sent by clients.
func SplitClasses(s string) []string {
	return strings.Fields(s)
}

// ParseFavorites keeps the trimmed lines of text that look like "url | label".
func ParseFavorites(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, FavoriteSeparator) {
			out = append(out, line)
		}
	}
	return out
}
