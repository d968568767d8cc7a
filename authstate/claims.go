package authstate

// AuthenticationTypeJWT tags identities derived from a stored JWT.
const AuthenticationTypeJWT = "jwt"

// Claim is a single name/value pair read from a token payload.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Identity is the set of claims describing the current user. Claims keep
// the order they had in the token payload and duplicate names are kept.
type Identity struct {
	AuthenticationType string  `json:"authentication_type,omitempty"`
	Claims             []Claim `json:"claims,omitempty"`
}

// Anonymous returns the identity of a logged out user.
func Anonymous() Identity {
	return Identity{}
}

// IsAuthenticated reports whether the identity was derived from a token.
func (i Identity) IsAuthenticated() bool {
	return i.AuthenticationType != ""
}

// FindFirst returns the first claim named claimType.
func (i Identity) FindFirst(claimType string) (Claim, bool) {
	for _, c := range i.Claims {
		if c.Type == claimType {
			return c, true
		}
	}
	return Claim{}, false
}

// FindAll returns every claim named claimType, in payload order.
func (i Identity) FindAll(claimType string) []Claim {
	var out []Claim
	for _, c := range i.Claims {
		if c.Type == claimType {
			out = append(out, c)
		}
	}
	return out
}

// HasClaim reports whether a claim with the given name and value exists.
func (i Identity) HasClaim(claimType, value string) bool {
	for _, c := range i.Claims {
		if c.Type == claimType && c.Value == value {
			return true
		}
	}
	return false
}

// Value returns the value of the first claim named claimType or "".
func (i Identity) Value(claimType string) string {
	c, _ := i.FindFirst(claimType)
	return c.Value
}

// State is the authentication state handed to callers and observers.
type State struct {
	Identity      Identity `json:"identity"`
	Authorization string   `json:"authorization,omitempty"`
}

// IsAuthenticated reports whether the state carries an authenticated identity.
func (s State) IsAuthenticated() bool {
	return s.Identity.IsAuthenticated()
}
