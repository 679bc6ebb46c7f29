package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chachabrian/taskmate-backend/internal/bookings"
	"github.com/chachabrian/taskmate-backend/internal/catalog"
	"github.com/chachabrian/taskmate-backend/internal/config"
	"github.com/chachabrian/taskmate-backend/internal/dashboard"
	"github.com/chachabrian/taskmate-backend/internal/handlers"
	"github.com/chachabrian/taskmate-backend/internal/logging"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/chachabrian/taskmate-backend/internal/reviews"
	"github.com/chachabrian/taskmate-backend/internal/services"
	"github.com/chachabrian/taskmate-backend/internal/testutil"
	"github.com/chachabrian/taskmate-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	router  *gin.Engine
	db      *gorm.DB
	redis   *miniredis.Miniredis
	cfg     config.Config
	uploads string
}

func newServer(t *testing.T) *server {
	t.Helper()

	log := logging.Discard()
	db := testutil.NewDB(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := services.NewRedisCache(client, time.Minute)

	uploads := t.TempDir()
	storage, err := services.NewLocalStorage(uploads, "http://localhost:8080")
	require.NoError(t, err)

	enforcer, err := middleware.NewEnforcer("../../config/rbac_model.conf", "../../config/policy.csv")
	require.NoError(t, err)

	cfg := config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, MaxAvatarBytes: 1 << 20}
	hub := services.NewHub(log)
	notifier := services.NewBookingNotifier(db, hub, cache, nil, log)

	r := gin.New()
	handlers.RegisterRoutes(r, handlers.Deps{
		Config:    cfg,
		DB:        db,
		Cache:     cache,
		Storage:   storage,
		Hub:       hub,
		Enforcer:  enforcer,
		Bookings:  bookings.NewService(db, cache, notifier, bookings.DefaultLimits, log),
		Catalog:   catalog.NewService(db, cache, log),
		Dashboard: dashboard.NewService(db, cache, log),
		Reviews:   reviews.NewService(db, cache, log),
		Log:       log,
	})
	return &server{router: r, db: db, redis: mr, cfg: cfg, uploads: uploads}
}

func (s *server) tokenFor(t *testing.T, p *models.Profile) string {
	t.Helper()
	signed, _, err := utils.GenerateToken([]byte(s.cfg.JWTSecret), p, time.Hour)
	require.NoError(t, err)
	return signed
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format("2006-01-02")
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	w := s.do(t, "POST", "/api/auth/signup", "", gin.H{
		"email":    "Carl@Example.com",
		"password": "secret1",
		"fullname": "Carl Customer",
		"role":     "customer",
	})
	require.Equal(t, 201, w.Code, w.Body.String())

	var signup struct {
		Token string         `json:"token"`
		User  models.Profile `json:"user"`
	}
	decode(t, w, &signup)
	assert.Equal(t, "carl@example.com", signup.User.Email)
	assert.Equal(t, "carl", signup.User.Username)

	var prefs int64
	require.NoError(t, s.db.Model(&models.NotificationPreference{}).Where("user_id = ?", signup.User.ID).Count(&prefs).Error)
	assert.EqualValues(t, 1, prefs)

	w = s.do(t, "POST", "/api/auth/signup", "", gin.H{
		"email": "carl@example.com", "password": "secret1", "fullname": "Again", "role": "customer",
	})
	assert.Equal(t, 409, w.Code)

	w = s.do(t, "POST", "/api/auth/signup", "", gin.H{
		"email": "x@example.com", "password": "secret1", "fullname": "X", "role": "admin",
	})
	assert.Equal(t, 400, w.Code)

	assert.Equal(t, 401, s.do(t, "POST", "/api/auth/signin", "", gin.H{"email": "carl@example.com", "password": "wrong"}).Code)

	w = s.do(t, "POST", "/api/auth/signin", "", gin.H{"email": "carl@example.com", "password": "secret1"})
	require.Equal(t, 200, w.Code)
	var signin struct {
		Token string `json:"token"`
	}
	decode(t, w, &signin)

	w = s.do(t, "GET", "/api/users/me", signin.Token, nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Carl Customer")
	assert.NotContains(t, w.Body.String(), "password")

	assert.Equal(t, 400, s.do(t, "PUT", "/api/auth/password", signin.Token, gin.H{"currentPassword": "nope", "newPassword": "secret2"}).Code)
	assert.Equal(t, 200, s.do(t, "PUT", "/api/auth/password", signin.Token, gin.H{"currentPassword": "secret1", "newPassword": "secret2"}).Code)
	assert.Equal(t, 200, s.do(t, "POST", "/api/auth/signin", "", gin.H{"email": "carl@example.com", "password": "secret2"}).Code)

	assert.Equal(t, 200, s.do(t, "POST", "/api/auth/signout", signin.Token, nil).Code)
	assert.Equal(t, 401, s.do(t, "GET", "/api/users/me", signin.Token, nil).Code)
	assert.Equal(t, 200, s.do(t, "GET", "/api/users/me", signup.Token, nil).Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	customer := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")
	provider := testutil.CreateProfile(t, s.db, models.RoleProvider, "Pia Provider")
	stranger := testutil.CreateProfile(t, s.db, models.RoleProvider, "Sam Stranger")
	category := testutil.CreateCategory(t, s.db, "Cleaning")
	service := testutil.CreateService(t, s.db, provider, category, "Deep clean", 500)

	customerToken := s.tokenFor(t, customer)
	providerToken := s.tokenFor(t, provider)

	// Providers cannot book.
	w := s.do(t, "POST", "/api/bookings", providerToken, gin.H{
		"serviceId": service.ID, "providerId": provider.ID, "hours": 3, "totalPrice": 1500, "date": tomorrow(),
	})
	assert.Equal(t, 403, w.Code)

	w = s.do(t, "POST", "/api/bookings", customerToken, gin.H{
		"serviceId": service.ID, "providerId": provider.ID, "hours": 3, "totalPrice": 1400, "date": tomorrow(),
	})
	assert.Equal(t, 400, w.Code)

	w = s.do(t, "POST", "/api/bookings", customerToken, gin.H{
		"serviceId": service.ID, "providerId": provider.ID, "hours": 3, "totalPrice": 1500, "date": tomorrow(),
	})
	require.Equal(t, 201, w.Code, w.Body.String())
	var created struct {
		ID       string               `json:"id"`
		Status   models.BookingStatus `json:"status"`
		Amount   float64              `json:"amount"`
		Duration string               `json:"duration"`
	}
	decode(t, w, &created)
	assert.Equal(t, models.BookingStatusPending, created.Status)
	assert.Equal(t, 1500.0, created.Amount)
	assert.Equal(t, "3 hours", created.Duration)

	w = s.do(t, "GET", "/api/bookings", providerToken, nil)
	require.Equal(t, 200, w.Code)
	var rows []dashboard.BookingRow
	decode(t, w, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Carl Customer", rows[0].CounterpartName)
	assert.Equal(t, []dashboard.Action{{Label: "Accept", Status: models.BookingStatusConfirmed}, {Label: "Reject", Status: models.BookingStatusRejected}}, rows[0].Actions)

	statusPath := "/api/bookings/" + created.ID + "/status"
	assert.Equal(t, 400, s.do(t, "PATCH", statusPath, providerToken, gin.H{"status": "Pending"}).Code)
	assert.Equal(t, 400, s.do(t, "PATCH", statusPath, providerToken, gin.H{"status": "Done"}).Code)
	assert.Equal(t, 404, s.do(t, "PATCH", "/api/bookings/missing/status", providerToken, gin.H{"status": "Confirmed"}).Code)
	assert.Equal(t, 403, s.do(t, "PATCH", statusPath, s.tokenFor(t, stranger), gin.H{"status": "Confirmed"}).Code)
	assert.Equal(t, 403, s.do(t, "PATCH", statusPath, customerToken, gin.H{"status": "Confirmed"}).Code)

	w = s.do(t, "PATCH", statusPath, providerToken, gin.H{"status": "Confirmed"})
	require.Equal(t, 200, w.Code, w.Body.String())
	var row dashboard.BookingRow
	decode(t, w, &row)
	assert.Equal(t, models.BookingStatusConfirmed, row.Status)

	w = s.do(t, "PATCH", statusPath, customerToken, gin.H{"status": "Cancelled"})
	assert.Equal(t, 409, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = s.do(t, "GET", "/api/bookings/"+created.ID, customerToken, nil)
	require.Equal(t, 200, w.Code)
	var detail struct {
		Booking dashboard.BookingRow        `json:"booking"`
		History []models.BookingStatusEvent `json:"history"`
	}
	decode(t, w, &detail)
	assert.Equal(t, models.BookingStatusConfirmed, detail.Booking.Status)
	assert.Empty(t, detail.Booking.Actions)
	assert.Len(t, detail.History, 2)

	assert.Equal(t, 403, s.do(t, "GET", "/api/bookings/"+created.ID, s.tokenFor(t, stranger), nil).Code)
}

func TestProviderServicesAndCatalog(t *testing.T) {
	s := newServer(t)
	provider := testutil.CreateProfile(t, s.db, models.RoleProvider, "Pia Provider")
	customer := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")
	category := testutil.CreateCategory(t, s.db, "Cleaning")
	token := s.tokenFor(t, provider)

	w := s.do(t, "POST", "/api/provider/services", token, gin.H{"title": "Deep clean", "price": 450, "categoryId": category.ID})
	require.Equal(t, 201, w.Code, w.Body.String())
	var created models.Service
	decode(t, w, &created)
	assert.True(t, created.IsPublished)

	assert.Equal(t, 400, s.do(t, "POST", "/api/provider/services", token, gin.H{"title": "Bad", "price": 0, "categoryId": category.ID}).Code)
	assert.Equal(t, 400, s.do(t, "POST", "/api/provider/services", token, gin.H{"title": "Bad", "price": 10, "categoryId": 999}).Code)
	assert.Equal(t, 403, s.do(t, "POST", "/api/provider/services", s.tokenFor(t, customer), gin.H{"title": "Mine", "price": 10, "categoryId": category.ID}).Code)

	w = s.do(t, "GET", "/api/categories", "", nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Cleaning")

	w = s.do(t, "GET", "/api/categories/"+strconv.FormatUint(uint64(category.ID), 10)+"/services", "", nil)
	require.Equal(t, 200, w.Code)
	var listings []catalog.Listing
	decode(t, w, &listings)
	require.Len(t, listings, 1)
	assert.Equal(t, "Pia Provider", listings[0].ProviderName)

	assert.Equal(t, 400, s.do(t, "GET", "/api/categories/abc/services", "", nil).Code)
	assert.Equal(t, 200, s.do(t, "GET", "/api/services/"+created.ID, "", nil).Code)
	assert.Equal(t, 404, s.do(t, "GET", "/api/services/missing", "", nil).Code)

	w = s.do(t, "PUT", "/api/provider/services/"+created.ID, token, gin.H{"title": "Deeper clean", "price": 500, "categoryId": category.ID})
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Deeper clean")

	testutil.CreateBooking(t, s.db, customer, provider, &created, models.BookingStatusPending, time.Now())
	assert.Equal(t, 409, s.do(t, "DELETE", "/api/provider/services/"+created.ID, token, nil).Code)

	other := testutil.CreateService(t, s.db, provider, category, "Window wash", 200)
	assert.Equal(t, 200, s.do(t, "DELETE", "/api/provider/services/"+other.ID, token, nil).Code)

	w = s.do(t, "GET", "/api/provider/services", token, nil)
	require.Equal(t, 200, w.Code)
	var own []models.Service
	decode(t, w, &own)
	assert.Len(t, own, 1)
}

func TestFavoritesAndReviews(t *testing.T) {
	s := newServer(t)
	customer := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")
	provider := testutil.CreateProfile(t, s.db, models.RoleProvider, "Pia Provider")
	category := testutil.CreateCategory(t, s.db, "Cleaning")
	service := testutil.CreateService(t, s.db, provider, category, "Deep clean", 500)
	token := s.tokenFor(t, customer)

	assert.Equal(t, 404, s.do(t, "POST", "/api/favorites", token, gin.H{"providerId": customer.ID}).Code)
	assert.Equal(t, 200, s.do(t, "POST", "/api/favorites", token, gin.H{"providerId": provider.ID}).Code)
	assert.Equal(t, 200, s.do(t, "POST", "/api/favorites", token, gin.H{"providerId": provider.ID}).Code)

	w := s.do(t, "GET", "/api/dashboard/saved", token, nil)
	require.Equal(t, 200, w.Code)
	var saved []dashboard.SavedProvider
	decode(t, w, &saved)
	require.Len(t, saved, 1)

	assert.Equal(t, 200, s.do(t, "DELETE", "/api/favorites/"+provider.ID, token, nil).Code)
	w = s.do(t, "GET", "/api/dashboard/saved", token, nil)
	require.Equal(t, 200, w.Code)
	decode(t, w, &saved)
	assert.Empty(t, saved)

	pending := testutil.CreateBooking(t, s.db, customer, provider, service, models.BookingStatusPending, time.Now())
	assert.Equal(t, 409, s.do(t, "POST", "/api/reviews", token, gin.H{"bookingId": pending.ID, "rating": 5}).Code)

	done := testutil.CreateBooking(t, s.db, customer, provider, service, models.BookingStatusCompleted, time.Now())
	assert.Equal(t, 400, s.do(t, "POST", "/api/reviews", token, gin.H{"bookingId": done.ID, "rating": 9}).Code)
	assert.Equal(t, 201, s.do(t, "POST", "/api/reviews", token, gin.H{"bookingId": done.ID, "rating": 4, "comment": "good"}).Code)
	assert.Equal(t, 409, s.do(t, "POST", "/api/reviews", token, gin.H{"bookingId": done.ID, "rating": 4}).Code)

	w = s.do(t, "GET", "/api/dashboard/ratings", s.tokenFor(t, provider), nil)
	require.Equal(t, 200, w.Code)
	var ratings dashboard.Ratings
	decode(t, w, &ratings)
	assert.Equal(t, 1, ratings.Total)
	assert.Equal(t, 4.0, ratings.Average)
}

func TestDashboardsByRole(t *testing.T) {
	s := newServer(t)
	customer := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")
	provider := testutil.CreateProfile(t, s.db, models.RoleProvider, "Pia Provider")
	category := testutil.CreateCategory(t, s.db, "Cleaning")
	service := testutil.CreateService(t, s.db, provider, category, "Deep clean", 500)
	b := testutil.CreateBooking(t, s.db, customer, provider, service, models.BookingStatusCompleted, time.Now())
	testutil.CreateTransaction(t, s.db, b, models.TransactionStatusPaid, 1000, 900, time.Now())

	customerToken := s.tokenFor(t, customer)
	providerToken := s.tokenFor(t, provider)

	w := s.do(t, "GET", "/api/dashboard/payments", customerToken, nil)
	require.Equal(t, 200, w.Code)
	var payments []dashboard.PaymentRow
	decode(t, w, &payments)
	require.Len(t, payments, 1)
	assert.Equal(t, "Deep clean", payments[0].ServiceTitle)

	w = s.do(t, "GET", "/api/dashboard/earnings", providerToken, nil)
	require.Equal(t, 200, w.Code)
	var earnings dashboard.Earnings
	decode(t, w, &earnings)
	assert.Equal(t, 900.0, earnings.TotalEarning)

	assert.Equal(t, 200, s.do(t, "GET", "/api/dashboard/analytics", providerToken, nil).Code)
	assert.Equal(t, 403, s.do(t, "GET", "/api/dashboard/analytics", customerToken, nil).Code)
	assert.Equal(t, 403, s.do(t, "GET", "/api/dashboard/payments", providerToken, nil).Code)
	assert.True(t, s.redis.Exists("dashboard:"+customer.ID+":payments"))
}

func TestNotificationSettings(t *testing.T) {
	s := newServer(t)
	customer := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")
	token := s.tokenFor(t, customer)

	w := s.do(t, "GET", "/api/notifications/preferences", token, nil)
	require.Equal(t, 200, w.Code)
	var prefs models.NotificationPreference
	decode(t, w, &prefs)
	assert.True(t, prefs.PushEnabled)

	w = s.do(t, "PUT", "/api/notifications/preferences", token, gin.H{"bookingAlerts": false})
	require.Equal(t, 200, w.Code)
	decode(t, w, &prefs)
	assert.False(t, prefs.BookingAlerts)
	assert.True(t, prefs.PushEnabled)

	assert.Equal(t, 400, s.do(t, "POST", "/api/notifications/register-token", token, gin.H{}).Code)
	assert.Equal(t, 200, s.do(t, "POST", "/api/notifications/register-token", token, gin.H{"fcmToken": "device-1"}).Code)

	var stored models.Profile
	require.NoError(t, s.db.First(&stored, "id = ?", customer.ID).Error)
	assert.Equal(t, "device-1", stored.FCMToken)

	assert.Equal(t, 200, s.do(t, "DELETE", "/api/notifications/remove-token", token, nil).Code)
	require.NoError(t, s.db.First(&stored, "id = ?", customer.ID).Error)
	assert.Empty(t, stored.FCMToken)
}

func upload(t *testing.T, s *server, token string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", "/api/users/avatar", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestProfileAndAvatar(t *testing.T) {
	s := newServer(t)
	customer := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")
	token := s.tokenFor(t, customer)

	w := s.do(t, "PUT", "/api/users/profile", token, gin.H{"fullname": "Carl C.", "location": "Manila"})
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Manila")
	assert.Equal(t, 400, s.do(t, "PUT", "/api/users/profile", token, gin.H{"fullname": "  "}).Code)

	assert.Equal(t, 400, upload(t, s, token, []byte("plain text, not an image")).Code)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	w = upload(t, s, token, png)
	require.Equal(t, 200, w.Code, w.Body.String())
	var resp struct {
		AvatarURL string `json:"avatarUrl"`
	}
	decode(t, w, &resp)
	require.True(t, strings.HasPrefix(resp.AvatarURL, "http://localhost:8080/uploads/avatars/"))

	name := strings.TrimPrefix(resp.AvatarURL, "http://localhost:8080/uploads/")
	_, err := os.Stat(filepath.Join(s.uploads, name))
	assert.NoError(t, err)

	w = upload(t, s, token, png)
	require.Equal(t, 200, w.Code)
	_, err = os.Stat(filepath.Join(s.uploads, name))
	assert.True(t, os.IsNotExist(err), "previous avatar should be removed")
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	w := s.do(t, "GET", "/health", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok","redis":"ok"}`, w.Body.String())

	s.redis.Close()
	w = s.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func bookingRows(t *testing.T, s *server, token string) []dashboard.BookingRow {
	t.Helper()
	w := s.do(t, "GET", "/api/bookings", token, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	var rows []dashboard.BookingRow
	decode(t, w, &rows)
	return rows
}

func TestProfileChangesReachCounterpartViews(t *testing.T) {
	s := newServer(t)
	customer := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")
	provider := testutil.CreateProfile(t, s.db, models.RoleProvider, "Pia Provider")
	service := testutil.CreateService(t, s.db, provider, testutil.CreateCategory(t, s.db, "Cleaning"), "Deep clean", 500)
	testutil.CreateBooking(t, s.db, customer, provider, service, models.BookingStatusPending, time.Now())

	customerToken := s.tokenFor(t, customer)
	providerToken := s.tokenFor(t, provider)

	rows := bookingRows(t, s, customerToken)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pia Provider", rows[0].CounterpartName)

	w := s.do(t, "PUT", "/api/users/profile", providerToken, gin.H{"fullname": "Pia Renamed", "location": "Davao"})
	require.Equal(t, 200, w.Code)

	rows = bookingRows(t, s, customerToken)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pia Renamed", rows[0].CounterpartName)
	assert.Equal(t, "Davao", rows[0].Location)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	w = upload(t, s, providerToken, png)
	require.Equal(t, 200, w.Code, w.Body.String())
	var resp struct {
		AvatarURL string `json:"avatarUrl"`
	}
	decode(t, w, &resp)

	rows = bookingRows(t, s, customerToken)
	require.Len(t, rows, 1)
	assert.Equal(t, resp.AvatarURL, rows[0].CounterpartAvatar)
}

func TestConcurrentSignUpsWithOneEmail(t *testing.T) {
	s := newServer(t)
	body := gin.H{"email": "race@example.com", "password": "secret1", "fullname": "Rae Race", "role": "customer"}

	const workers = 6
	codes := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, _ := json.Marshal(body)
			req := httptest.NewRequest("POST", "/api/auth/signup", bytes.NewReader(data))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		switch code {
		case 201:
			created++
		default:
			assert.Equal(t, 409, code)
		}
	}
	assert.Equal(t, 1, created)
}

func TestDuplicateEmailIsTranslated(t *testing.T) {
	s := newServer(t)
	existing := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")

	dup := models.Profile{Email: existing.Email, PasswordHash: "x", Role: models.RoleCustomer}
	assert.ErrorIs(t, s.db.Create(&dup).Error, gorm.ErrDuplicatedKey)
}

func TestOverviewForBothRoles(t *testing.T) {
	s := newServer(t)
	customer := testutil.CreateProfile(t, s.db, models.RoleCustomer, "Carl Customer")
	provider := testutil.CreateProfile(t, s.db, models.RoleProvider, "Pia Provider")
	service := testutil.CreateService(t, s.db, provider, testutil.CreateCategory(t, s.db, "Cleaning"), "Deep clean", 500)
	b := testutil.CreateBooking(t, s.db, customer, provider, service, models.BookingStatusCompleted, time.Now())
	testutil.CreateBooking(t, s.db, customer, provider, service, models.BookingStatusConfirmed, time.Now())
	testutil.CreateTransaction(t, s.db, b, models.TransactionStatusPaid, 1000, 900, time.Now())

	var overview dashboard.Overview
	w := s.do(t, "GET", "/api/dashboard/overview", s.tokenFor(t, customer), nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	decode(t, w, &overview)
	assert.Equal(t, 1, overview.ActiveBookings)
	assert.Equal(t, 1, overview.CompletedBookings)
	assert.Equal(t, "Total Paid", overview.MonetaryLabel)
	assert.Equal(t, 1000.0, overview.MonetaryValue)
	assert.Len(t, overview.RecentBookings, 2)

	w = s.do(t, "GET", "/api/dashboard/overview", s.tokenFor(t, provider), nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	decode(t, w, &overview)
	assert.Equal(t, "Current Income", overview.MonetaryLabel)
	assert.Equal(t, 900.0, overview.MonetaryValue)

	assert.Equal(t, 401, s.do(t, "GET", "/api/dashboard/overview", "", nil).Code)
}
