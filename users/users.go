package users

import (
	"encoding/json"
	"strings"
)

// User is the account record returned by the auth endpoints. Only the fields
// the admin client displays are typed; everything the server sends is kept in
// Attributes so the record can be shown or re-encoded untouched.
type User struct {
	ID         int64          `json:"id"`                 // Server assigned identifier
	Name       string         `json:"name,omitempty"`     // Short name / login
	FullName   string         `json:"fullName,omitempty"` // Display name chosen at registration
	Email      string         `json:"email,omitempty"`    // Login email
	Attributes map[string]any `json:"-"`                  // Every field of the server record
}

// Credentials are posted to the auth endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is posted to the register endpoint.
type Registration struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userFields struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var fields userFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return err
	}
	*u = User{
		ID:         fields.ID,
		Name:       fields.Name,
		FullName:   fields.FullName,
		Email:      fields.Email,
		Attributes: attrs,
	}
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Attributes)+4)
	for k, v := range u.Attributes {
		out[k] = v
	}
	out["id"] = u.ID
	if u.Name != "" {
		out["name"] = u.Name
	}
	if u.FullName != "" {
		out["fullName"] = u.FullName
	}
	if u.Email != "" {
		out["email"] = u.Email
	}
	return json.Marshal(out)
}

// DisplayName picks the friendliest populated name.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	for _, name := range []string{u.FullName, u.Name, u.Email} {
		if n := strings.TrimSpace(name); n != "" {
			return n
		}
	}
	return ""
}
