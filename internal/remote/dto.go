package remote

import (
	"time"

	"chargist/internal/models"
)

// Backend table names.
const (
	TableStations  = "stations"
	TableChargers  = "chargers"
	TableReviews   = "reviews"
	TableFavorites = "favorite_stations"
	TableUsers     = "users"
)

// stationDTO mirrors the stations table row. Set-valued columns travel as
// comma separated strings.
type stationDTO struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	PaymentMethods string  `json:"paymentMethods"`
	NearbyServices string  `json:"nearbyServices"`
	ImageURL       string  `json:"imageUrl"`
	AvgRating      float64 `json:"avgRating"`
}

func (d stationDTO) toModel() models.Station {
	return models.Station{
		ID:             d.ID,
		Name:           d.Name,
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
		ImageURL:       d.ImageURL,
		AvgRating:      d.AvgRating,
		PaymentMethods: models.SplitSet(d.PaymentMethods),
		NearbyServices: models.SplitSet(d.NearbyServices),
	}
}

type chargerDTO struct {
	ID        int64   `json:"id"`
	StationID int64   `json:"stationId"`
	Type      string  `json:"type"`
	Power     string  `json:"power"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
	Issue     string  `json:"issue"`
}

func (d chargerDTO) toModel() models.Charger {
	return models.Charger{
		ID:        d.ID,
		StationID: d.StationID,
		Type:      d.Type,
		Power:     d.Power,
		Price:     d.Price,
		Status:    d.Status,
		Issue:     d.Issue,
	}
}

// reviewDTO carries the review date as unix milliseconds, as stored remotely.
type reviewDTO struct {
	StationID int64  `json:"stationId"`
	UserID    int64  `json:"userId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Date      int64  `json:"date"`
}

func (d reviewDTO) toModel() models.Review {
	return models.Review{
		StationID: d.StationID,
		UserID:    d.UserID,
		Rating:    d.Rating,
		Comment:   d.Comment,
		Date:      time.UnixMilli(d.Date),
	}
}

type userDTO struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	PictureURL string `json:"pictureUrl"`
}

func (d userDTO) toModel() models.User {
	return models.User{
		ID:         d.ID,
		Username:   d.Username,
		Name:       d.Name,
		PictureURL: d.PictureURL,
	}
}

type favoriteDTO struct {
	StationID int64 `json:"stationId"`
	UserID    int64 `json:"userId"`
}

func (d favoriteDTO) toModel() models.Favorite {
	return models.Favorite{StationID: d.StationID, UserID: d.UserID}
}

// FilterRequest is the payload of the server-side stations_filter function.
// Field names follow the remote function signature.
type FilterRequest struct {
	OnlyAvailable  bool     `json:"only_available"`
	ChargerTypes   []string `json:"charger_types"`
	ChargerSpeeds  []string `json:"charger_speeds"`
	MinPrice       float64  `json:"min_price"`
	MaxPrice       float64  `json:"max_price"`
	PaymentMethods []string `json:"payment_methods"`
	NearbyServices []string `json:"nearby_services"`
	AlreadyHave    []int64  `json:"already_have"`
	MaxDistance    float64  `json:"max_distance"`
	UserLatitude   float64  `json:"user_latitude"`
	UserLongitude  float64  `json:"user_longitude"`
}

type filterResponseItem struct {
	Station  stationDTO   `json:"station"`
	Chargers []chargerDTO `json:"chargers"`
}

// FilterMatch is one station with its chargers returned by the filter function.
type FilterMatch struct {
	Station  models.Station
	Chargers []models.Charger
}
