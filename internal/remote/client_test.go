package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"chargist/internal/models"
)

func signedToken(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "tester",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestInspectToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	info, err := InspectToken(signedToken(t, "anon", expiry))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Role != "anon" || info.Subject != "tester" {
		t.Fatalf("unexpected claims: %+v", info)
	}
	if info.Expired(time.Now()) {
		t.Fatalf("token must not be expired yet")
	}
	if !info.Expired(expiry.Add(time.Minute)) {
		t.Fatalf("token must be expired after its exp claim")
	}

	if _, err := InspectToken("not-a-jwt"); err == nil {
		t.Fatalf("expected error for a malformed token")
	}
	if _, err := InspectToken(""); err == nil {
		t.Fatalf("expected error for an empty token")
	}
}

func TestQueryByBoundingBoxRequestShape(t *testing.T) {
	token := signedToken(t, "anon", time.Now().Add(time.Hour))

	var gotAuth, gotColumns, gotMinLat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotColumns = r.URL.Query().Get("columns")
		gotMinLat = r.URL.Query().Get("minLat")
		json.NewEncoder(w).Encode([]stationDTO{
			{ID: 1, Name: "A", Latitude: 38.7, Longitude: -9.1, PaymentMethods: "CASH,VISA"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "ws://unused", token, server.Client(), zap.NewNop())
	box := models.BoundingBox{MinLat: 38.4, MaxLat: 39.0, MinLon: -9.4, MaxLon: -8.8}

	stations, err := client.QueryByBoundingBox(context.Background(), box, true)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if gotAuth != "Bearer "+token {
		t.Fatalf("missing bearer auth, got %q", gotAuth)
	}
	if gotColumns != "id,name,latitude,longitude,avgRating" {
		t.Fatalf("expected reduced projection on metered connections, got %q", gotColumns)
	}
	if gotMinLat == "" {
		t.Fatalf("bounding box params missing")
	}
	if len(stations) != 1 || len(stations[0].PaymentMethods) != 2 {
		t.Fatalf("unexpected stations: %+v", stations)
	}
}

func TestQueryByBoundingBoxFullColumns(t *testing.T) {
	var hasColumns bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasColumns = r.URL.Query().Has("columns")
		json.NewEncoder(w).Encode([]stationDTO{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "ws://unused", signedToken(t, "anon", time.Now().Add(time.Hour)), server.Client(), zap.NewNop())
	if _, err := client.QueryByBoundingBox(context.Background(), models.BoundingBox{}, false); err != nil {
		t.Fatalf("query: %v", err)
	}
	if hasColumns {
		t.Fatalf("unmetered queries must request full columns")
	}
}

func TestCallFilterFunctionPostsPayload(t *testing.T) {
	var gotPath string
	var gotReq FilterRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode([]filterResponseItem{
			{
				Station:  stationDTO{ID: 3, Name: "Match"},
				Chargers: []chargerDTO{{ID: 30, StationID: 3, Type: models.ChargerTypeCCS2}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "ws://unused", signedToken(t, "anon", time.Now().Add(time.Hour)), server.Client(), zap.NewNop())
	req := FilterRequest{
		OnlyAvailable: true,
		ChargerTypes:  []string{models.ChargerTypeCCS2},
		AlreadyHave:   []int64{1, 2},
		MaxDistance:   100,
	}

	matches, err := client.CallFilterFunction(context.Background(), req)
	if err != nil {
		t.Fatalf("call filter: %v", err)
	}
	if gotPath != "/rpc/stations_filter" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !gotReq.OnlyAvailable || len(gotReq.AlreadyHave) != 2 {
		t.Fatalf("payload not round-tripped: %+v", gotReq)
	}
	if len(matches) != 1 || matches[0].Station.ID != 3 || len(matches[0].Chargers) != 1 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestFetchReviewsPageQuery(t *testing.T) {
	var gotPath, gotOffset, gotLimit, gotOrder string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOffset = r.URL.Query().Get("offset")
		gotLimit = r.URL.Query().Get("limit")
		gotOrder = r.URL.Query().Get("order")
		json.NewEncoder(w).Encode([]reviewDTO{
			{StationID: 7, UserID: 1, Rating: 4, Comment: "ok", Date: 1700000000000},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "ws://unused", signedToken(t, "anon", time.Now().Add(time.Hour)), server.Client(), zap.NewNop())
	reviews, err := client.FetchReviewsPage(context.Background(), 7, 3, 3)
	if err != nil {
		t.Fatalf("fetch reviews: %v", err)
	}
	if gotPath != "/stations/7/reviews" || gotOffset != "3" || gotLimit != "3" || gotOrder != "date.asc" {
		t.Fatalf("unexpected request: path=%q offset=%q limit=%q order=%q", gotPath, gotOffset, gotLimit, gotOrder)
	}
	if len(reviews) != 1 || reviews[0].Date.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}
}

func TestDoSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "ws://unused", signedToken(t, "anon", time.Now().Add(time.Hour)), server.Client(), zap.NewNop())
	if _, err := client.FetchUser(context.Background(), 1); err == nil {
		t.Fatalf("expected error on 401")
	}
}
