package models

import "time"

// Review is one user's rating of a station. The (StationID, UserID) pair is
// the primary key: a user reviews a station at most once.
type Review struct {
	StationID int64     `db:"station_id" json:"stationId"`
	UserID    int64     `db:"user_id" json:"userId"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	Date      time.Time `db:"date" json:"-"`
}

// HasComment reports whether the review carries free text.
func (r Review) HasComment() bool {
	return r.Comment != ""
}

// ReviewWithAuthor pairs a review with its cached author for display reads.
type ReviewWithAuthor struct {
	Review Review
	Author User
}
