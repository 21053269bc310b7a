package model

import "fmt"

// UserProfile is a full GitHub user as returned by GET /users/{login}.
// Optional fields are empty strings when GitHub reports them as absent.
type UserProfile struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	AvatarURL   string `json:"avatar_url"`
	Name        string `json:"name,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Blog        string `json:"blog,omitempty"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	HTMLURL     string `json:"html_url"`
	CreatedAt   string `json:"created_at"`
}

// FavoriteID implements the favorites identity.
func (u UserProfile) FavoriteID() int64 {
	return u.ID
}

// DisplayName returns the name when set, otherwise the login.
func (u UserProfile) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// Validate reports the first required key missing from a decoded profile.
func (u *UserProfile) Validate() error {
	return validateUser("", u.ID, u.Login)
}

// SearchUserStub is the partial user returned by the search endpoint.
type SearchUserStub struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Profile pads the stub into a UserProfile shell. Counters are zero and
// optional fields are absent.
func (s SearchUserStub) Profile() UserProfile {
	return UserProfile{
		ID:        s.ID,
		Login:     s.Login,
		AvatarURL: s.AvatarURL,
		HTMLURL:   s.HTMLURL,
	}
}

// UserSearchResponse is the body of GET /search/users.
type UserSearchResponse struct {
	TotalCount        int              `json:"total_count"`
	IncompleteResults bool             `json:"incomplete_results"`
	Items             []SearchUserStub `json:"items"`
}

// Validate checks every stub in the response.
func (r *UserSearchResponse) Validate() error {
	for i, item := range r.Items {
		if err := validateUser(fmt.Sprintf("items[%d]", i), item.ID, item.Login); err != nil {
			return err
		}
	}
	return nil
}

// Profiles converts every stub into a profile shell.
func (r *UserSearchResponse) Profiles() []UserProfile {
	users := make([]UserProfile, 0, len(r.Items))
	for _, item := range r.Items {
		users = append(users, item.Profile())
	}
	return users
}

func validateUser(prefix string, id int64, login string) error {
	if id == 0 {
		return &MissingKeyError{Path: joinPath(prefix, "id")}
	}
	if login == "" {
		return &MissingKeyError{Path: joinPath(prefix, "login")}
	}
	return nil
}
