package integration_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/metinatakli/movie-seat-selection/api"
	"github.com/metinatakli/movie-seat-selection/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	backend        *fakeBackend
	cacheContainer *RedisContainer
	server         *httptest.Server
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	redisContainer, err := getCacheContainer(ctx)
	s.Require().NoError(err, "failed to start container")

	s.cacheContainer = redisContainer
	s.backend = newFakeBackend()

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
		Redis: app.RedisConfig{
			URL:          redisContainer.ConnectionString,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		Backend: app.BackendConfig{
			URL:     s.backend.URL,
			Timeout: 5 * time.Second,
		},
		Selection: app.SelectionConfig{
			PollInterval: time.Hour,
			HoldDuration: 10 * time.Minute,
			MaxSeats:     3,
			DraftTTL:     time.Minute,
		},
	}

	testApp, err := newTestApp(cfg)
	s.Require().NoError(err, "cannot initialize app")

	s.app = testApp
	s.server = httptest.NewServer(testApp.App.Routes())
}

func (s *BaseSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.app != nil {
		s.app.Close()
	}
	if s.backend != nil {
		s.backend.Close()
	}
	if s.cacheContainer != nil {
		err := testcontainers.TerminateContainer(s.cacheContainer.Container)
		s.NoError(err, "failed to terminate container")
	}
}

// SetupTest starts every test from a fresh seat layout and empty Redis.
func (s *BaseSuite) SetupTest() {
	s.app.Screens.Shutdown(context.Background())
	s.backend.reset()
	s.Require().NoError(s.app.Redis.FlushDB(context.Background()).Err())
}

// newClient returns an HTTP client with its own cookie jar, i.e. its own
// session.
func (s *BaseSuite) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)

	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func (s *BaseSuite) url(path string) string {
	return s.server.URL + path
}

func (s *BaseSuite) openSeatMap(client *http.Client) api.SeatMapResponse {
	var seatMap api.SeatMapResponse
	status := do(s.T(), client, http.MethodGet, s.url(seatMapURL), "", &seatMap)
	s.Require().Equal(http.StatusOK, status)

	return seatMap
}

func (s *BaseSuite) toggle(client *http.Client, seatID string) (int, api.ToggleSeatResponse) {
	var resp api.ToggleSeatResponse
	status := do(s.T(), client, http.MethodPost, s.url(toggleURL(seatID)), "", &resp)

	return status, resp
}

type Scenario struct {
	Name             string
	Method           string
	URL              string
	Body             string
	Headers          map[string]string
	ExpectedStatus   int
	ExpectedResponse string
	BeforeTestFunc   func(t testing.TB, app *TestApp)
	AfterTestFunc    func(t testing.TB, app *TestApp, res *http.Response)
}

// Run sends the scenario's request through client, so scenarios that share a
// client share a session.
func (sc Scenario) Run(t *testing.T, s *BaseSuite, client *http.Client) {
	t.Run(sc.Name, func(t *testing.T) {
		if sc.BeforeTestFunc != nil {
			sc.BeforeTestFunc(t, s.app)
		}

		var body io.Reader
		if sc.Body != "" {
			body = strings.NewReader(sc.Body)
		}

		req, err := prepareRequest(sc.Method, s.server.URL+sc.URL, body, sc.Headers)
		require.NoError(t, err)

		res, err := client.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, sc.ExpectedStatus, res.StatusCode)

		if sc.ExpectedResponse != "" {
			compareResponse(t, res.Body, sc.ExpectedResponse)
		}

		if sc.AfterTestFunc != nil {
			sc.AfterTestFunc(t, s.app, res)
		}
	})
}
