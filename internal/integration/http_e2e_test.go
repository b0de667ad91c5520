//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/adapters/auth"
	server "staybook/internal/adapters/http_server"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/domain"
	mysqlrepo "staybook/internal/storage/mysql"
	"staybook/internal/testutil/mysqltest"
)

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) call(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestHTTP_EndToEnd_SignUpBookAndList(t *testing.T) {
	db := mysqltest.Start(t)
	mr := miniredis.RunT(t)

	repo := mysqlrepo.New(db)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	ctx := context.Background()
	require.NoError(t, repo.UpsertHotel(ctx, domain.Hotel{ID: "22002", Name: "Hotel E2E", City: "Istanbul",
		Location: "E2E Street, Istanbul", PricePerNight: domain.Cents(15000), Rating: 4.4, Amenities: []string{"wifi"}, TotalRooms: 12}))

	idp, err := auth.New(repo, cache, auth.Options{Secret: "e2e-secret", SessionTTL: time.Hour, BcryptCost: 4})
	require.NoError(t, err)
	hotels := app.NewHotelService(repo, cache, time.Minute, 2*time.Second)
	bookings := app.NewBookingService(repo, hotels, app.BookingOptions{Timeout: 2 * time.Second, Workers: 2})
	identity := app.NewIdentityService(idp, 2*time.Second)

	srv := server.New(10 * time.Second)
	srv.MountHandlers(server.NewHandlers(hotels, bookings, identity),
		server.RouteOptions{Sessions: idp, AuthRPS: 100, AuthBurst: 100})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	c := &client{t: t, base: ts.URL}

	// anonymous browsing
	var list []domain.Hotel
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/v1/hotels?city=istan", nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, domain.Cents(15000), list[0].PricePerNight)

	// booking needs a session
	req := map[string]any{"hotel_id": "22002", "check_in_date": "2026-07-01", "check_out_date": "2026-07-04", "guests": 2}
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodPost, "/v1/bookings", req, nil))

	var sess struct {
		AccessToken string      `json:"access_token"`
		User        domain.User `json:"user"`
	}
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/v1/auth/signup",
		map[string]string{"email": "e2e@example.com", "password": "secret1", "full_name": "E2E User"}, &sess))
	require.NotEmpty(t, sess.AccessToken)
	assert.Equal(t, http.StatusConflict, c.call(http.MethodPost, "/v1/auth/signup",
		map[string]string{"email": "E2E@example.com", "password": "secret1", "full_name": "Again"}, nil))
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodPost, "/v1/auth/signin",
		map[string]string{"email": "e2e@example.com", "password": "wrong-password"}, nil))
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/v1/auth/signin",
		map[string]string{"email": "e2e@example.com", "password": "secret1"}, &sess))
	c.token = sess.AccessToken

	var created struct {
		ID             string `json:"id"`
		CheckIn        string `json:"check_in_date"`
		Status         string `json:"status"`
		FormattedTotal string `json:"formatted_total"`
	}
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/v1/bookings", req, &created))
	assert.Equal(t, "2026-07-01", created.CheckIn)
	assert.Equal(t, "confirmed", created.Status)
	assert.Equal(t, "$450.00", created.FormattedTotal)

	var stays []struct {
		ID     string        `json:"id"`
		Nights int           `json:"nights"`
		Hotel  *domain.Hotel `json:"hotel"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/v1/bookings?include=hotel", nil, &stays))
	require.Len(t, stays, 1)
	assert.Equal(t, created.ID, stays[0].ID)
	assert.Equal(t, 3, stays[0].Nights)
	require.NotNil(t, stays[0].Hotel)
	assert.Equal(t, "Hotel E2E", stays[0].Hotel.Name)

	var conf struct {
		Reference string `json:"reference"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/v1/bookings/"+created.ID+"/confirmation", nil, &conf))
	assert.Len(t, conf.Reference, 8)

	// sign out revokes the token
	assert.Equal(t, http.StatusNoContent, c.call(http.MethodPost, "/v1/auth/signout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodGet, "/v1/bookings", nil, nil))
}
