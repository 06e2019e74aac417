package models

// GuestUserID is the sentinel id for unauthenticated browsing. The guest user
// never exists remotely and is never synced.
const GuestUserID int64 = -1

// User is an account profile mirrored from the backend.
type User struct {
	ID         int64  `db:"id" json:"id"`
	Username   string `db:"username" json:"username"`
	Name       string `db:"name" json:"name"`
	PictureURL string `db:"picture_url" json:"pictureUrl"`
}

// IsGuest reports whether this is the local-only guest account.
func (u User) IsGuest() bool {
	return u.ID == GuestUserID
}

// GuestUser returns the sentinel unauthenticated user.
func GuestUser() User {
	return User{ID: GuestUserID, Username: "guest", Name: "Guest User"}
}

// Favorite marks a station as favorite of a user. Pure membership, no payload.
type Favorite struct {
	StationID int64 `db:"station_id" json:"stationId"`
	UserID    int64 `db:"user_id" json:"userId"`
}
