package domain

// Alphabet selects the symbol set an identifier is drawn from.
type Alphabet int

const (
	// Base64URL is A-Z a-z 0-9 - _.
	Base64URL Alphabet = iota
	// Hex is 0-9 a-f.
	Hex
)

func (a Alphabet) String() string {
	switch a {
	case Hex:
		return "hex"
	default:
		return "base64url"
	}
}

// Identifier lengths per entity.
const (
	UserIDLength        = 8
	MailCheckIDLength   = 12
	MailCheckCodeLength = 16
	SessionTokenLength  = 64
)
