package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/JonMunkholm/buyerleads/internal/auth"
	"github.com/JonMunkholm/buyerleads/internal/buyer"
	"github.com/JonMunkholm/buyerleads/internal/config"
	"github.com/JonMunkholm/buyerleads/internal/core"
	"github.com/JonMunkholm/buyerleads/internal/core/mocks"
	"github.com/JonMunkholm/buyerleads/internal/metrics"
	"github.com/JonMunkholm/buyerleads/internal/ratelimit"
	"github.com/JonMunkholm/buyerleads/internal/store"
)

// =============================================================================
// HTTP Test Suite
// =============================================================================
// Requests go through the full chi router and a real core.Service. Only the
// store is mocked, so status mapping and middleware ordering are exercised
// end to end.

type fakeUsers struct {
	users map[string]auth.User
	err   error
}

func (f *fakeUsers) UpsertUser(_ context.Context, email, name string) (auth.User, error) {
	if f.err != nil {
		return auth.User{}, f.err
	}
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	u := auth.User{ID: uuid.New(), Email: email, Name: name}
	f.users[email] = u
	return u, nil
}

type HTTPSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockBuyerStore
	users   *fakeUsers
	tokens  *auth.TokenManager
	cfg     *config.Config
	checks  map[string]HealthCheck
	handler http.Handler
	user    auth.User
	token   string
}

func TestHTTPSuite(t *testing.T) {
	suite.Run(t, new(HTTPSuite))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 16},
		Import: config.ImportConfig{MaxFileSize: 1 << 16},
		Rate:   config.RateLimitConfig{Enabled: true},
		Auth:   config.AuthConfig{CookieSecure: true},
		Security: config.SecurityConfig{
			EnableCSP:   true,
			CORSOrigins: []string{"https://app.example.com"},
		},
	}
}

func (s *HTTPSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockBuyerStore(s.ctrl)
	s.users = &fakeUsers{users: map[string]auth.User{}}
	s.tokens = auth.NewTokenManager("test-signing-secret-0123", "buyerleads", time.Hour)
	s.cfg = testConfig()
	s.checks = map[string]HealthCheck{"database": func(context.Context) error { return nil }}
	s.user = auth.User{ID: uuid.New(), Email: "agent@example.com", Name: "agent"}

	token, _, err := s.tokens.Issue(s.user)
	s.Require().NoError(err)
	s.token = token

	s.build(ratelimit.NewMemoryLimiter(2, time.Minute), nil)
}

func (s *HTTPSuite) TearDownTest() {
	s.ctrl.Finish()
}

// build wires a server around the given operation and per-IP limiters.
func (s *HTTPSuite) build(opLimiter core.RateLimiter, ipLimiter ratelimit.Limiter) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg, reg)
	svc := core.NewService(s.store, opLimiter,
		core.WithMetrics(m),
		core.WithImportLimiter(core.NewImportLimiter(1, 20*time.Millisecond)),
	)
	srv := NewServer(Deps{
		Service:   svc,
		Users:     s.users,
		Tokens:    s.tokens,
		Metrics:   m,
		IPLimiter: ipLimiter,
		Checks:    s.checks,
	}, s.cfg)
	s.handler = srv.Router()
}

func (s *HTTPSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *HTTPSuite) authed(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func (s *HTTPSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func upload(field, filename, content string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, _ := mw.CreateFormFile(field, filename)
		_, _ = fw.Write([]byte(content))
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

const validBody = `{
	"fullName": "Ravi Kumar",
	"phone": "9876543210",
	"city": "Mohali",
	"propertyType": "Plot",
	"purpose": "Buy",
	"timeline": "ZeroToThree",
	"source": "Website"
}`

const (
	csvHeader = "fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status"
	goodRow   = "Ravi Kumar,,9876543210,Mohali,Apartment,Two,Buy,5000000,,0-3 months,Walk-in,,hot;vip,Qualified"
)

// echoCreate makes CreateBuyers return its input with ids assigned.
func (s *HTTPSuite) echoCreate(source string) {
	s.store.EXPECT().
		CreateBuyers(gomock.Any(), s.user.ID, gomock.Any(), source).
		DoAndReturn(func(_ context.Context, owner uuid.UUID, in []buyer.Buyer, src string) ([]buyer.Buyer, []buyer.HistoryEntry, error) {
			out := make([]buyer.Buyer, len(in))
			entries := make([]buyer.HistoryEntry, len(in))
			for i, b := range in {
				b.ID, b.OwnerID = uuid.New(), owner
				out[i] = b
				entries[i] = buyer.HistoryEntry{ID: uuid.New(), BuyerID: b.ID, ChangedBy: owner, Diff: buyer.CreatedDiff(src)}
			}
			return out, entries, nil
		})
}

// =============================================================================
// Auth
// =============================================================================

func (s *HTTPSuite) TestRequiresUser() {
	for _, target := range []string{"/api/buyers", "/api/buyers/export", "/auth/me"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, target, nil))
		s.Equal(http.StatusUnauthorized, rec.Code, target)
		s.Contains(rec.Body.String(), `"code":"AUTH001"`)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/buyers", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	s.Equal(http.StatusUnauthorized, s.do(req).Code)
}

func (s *HTTPSuite) TestLoginFlow() {
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email": " Priya.Sharma@Example.com "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	s.decode(rec, &resp)
	s.Equal("priya.sharma@example.com", resp.User.Email)
	s.Equal("Priya Sharma", resp.User.Name)

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	session := cookies[0]
	s.Equal(auth.SessionCookie, session.Name)
	s.True(session.HttpOnly)
	s.True(session.Secure)

	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(session)
	rec = s.do(me)
	s.Require().Equal(http.StatusOK, rec.Code)
	var u auth.User
	s.decode(rec, &u)
	s.Equal(resp.User.ID, u.ID)

	rec = s.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	s.Equal(http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	s.Require().Len(cleared, 1)
	s.Equal(-1, cleared[0].MaxAge)
}

func (s *HTTPSuite) TestLoginRejectsBadEmail() {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email": "nobody"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req)
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	s.decode(rec, &resp)
	s.Require().Len(resp.Details, 1)
	s.Equal("email", resp.Details[0].Field)
}

func (s *HTTPSuite) TestLoginStoreFailure() {
	s.users.err = errors.New("dial tcp: connection refused")
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email": "a@b.co"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "dial tcp")
}

// =============================================================================
// Buyers
// =============================================================================

func (s *HTTPSuite) TestListBuyers() {
	f := buyer.Filter{Search: "ravi", City: buyer.CityMohali}
	s.store.EXPECT().ListBuyers(gomock.Any(), f, 2).
		Return(buyer.NewPage([]buyer.Buyer{{FullName: "Ravi Kumar"}}, 11, 2), nil)

	rec := s.do(s.authed(http.MethodGet, "/api/buyers?search=ravi&city=Mohali&status=BOGUS&page=2", nil))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var page buyer.Page
	s.decode(rec, &page)
	s.Equal(11, page.Total)
	s.Equal(2, page.TotalPages)
	s.Equal(buyer.PageSize, page.PageSize)
	s.Len(page.Buyers, 1)
}

func (s *HTTPSuite) TestCreateBuyer() {
	s.Run("created", func() {
		s.echoCreate("")
		rec := s.do(s.authed(http.MethodPost, "/api/buyers", []byte(validBody)))
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

		var b buyer.Buyer
		s.decode(rec, &b)
		s.Equal(s.user.ID, b.OwnerID)
		s.Equal(buyer.StatusNew, b.Status)
	})

	s.Run("validation details", func() {
		rec := s.do(s.authed(http.MethodPost, "/api/buyers", []byte(`{"fullName": "R"}`)))
		s.Require().Equal(http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		s.decode(rec, &resp)
		s.Equal("VAL002", resp.Code)
		s.NotEmpty(resp.Details)
	})

	s.Run("rate limited", func() {
		rec := s.do(s.authed(http.MethodPost, "/api/buyers", []byte(validBody)))
		s.Equal(http.StatusTooManyRequests, rec.Code)
		s.NotEmpty(rec.Header().Get("Retry-After"))
	})
}

func (s *HTTPSuite) TestMalformedBody() {
	rec := s.do(s.authed(http.MethodPost, "/api/buyers", []byte(`{"fullName":`)))
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	s.decode(rec, &resp)
	s.Equal("VAL001", resp.Code)
}

func (s *HTTPSuite) TestBodyTooLarge() {
	big := `{"notes": "` + strings.Repeat("x", int(s.cfg.Server.MaxBodyBytes)) + `"}`
	rec := s.do(s.authed(http.MethodPost, "/api/buyers", []byte(big)))
	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
}

func (s *HTTPSuite) TestGetBuyer() {
	id := uuid.New()

	s.Run("detail with history", func() {
		s.store.EXPECT().GetBuyer(gomock.Any(), id).Return(buyer.Buyer{ID: id, FullName: "Asha"}, nil)
		s.store.EXPECT().RecentHistory(gomock.Any(), id, core.HistoryLimit).
			Return([]buyer.HistoryEntry{{BuyerID: id, Diff: buyer.CreatedDiff("")}}, nil)

		rec := s.do(s.authed(http.MethodGet, "/api/buyers/"+id.String(), nil))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"Asha"`)
	})

	s.Run("malformed id is not found", func() {
		rec := s.do(s.authed(http.MethodGet, "/api/buyers/not-a-uuid", nil))
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("missing", func() {
		s.store.EXPECT().GetBuyer(gomock.Any(), id).Return(buyer.Buyer{}, &buyer.NotFoundError{ID: id.String()})
		rec := s.do(s.authed(http.MethodGet, "/api/buyers/"+id.String(), nil))
		s.Equal(http.StatusNotFound, rec.Code)
		s.Contains(rec.Body.String(), "BUY001")
	})
}

func updateBody(updatedAt time.Time) []byte {
	body := strings.TrimSuffix(strings.TrimSpace(validBody), "}")
	return []byte(body + `, "updatedAt": "` + updatedAt.Format(time.RFC3339Nano) + `"}`)
}

func (s *HTTPSuite) TestUpdateBuyerStatuses() {
	id := uuid.New()
	readAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.build(ratelimit.NewMemoryLimiter(10, time.Minute), nil)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"conflict", &buyer.ConcurrencyConflictError{BuyerID: id.String(), Client: readAt, Stored: readAt.Add(time.Second)}, http.StatusConflict},
		{"forbidden", &buyer.OwnershipError{BuyerID: id.String(), UserID: s.user.ID.String()}, http.StatusForbidden},
		{"missing", &buyer.NotFoundError{ID: id.String()}, http.StatusNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.store.EXPECT().UpdateBuyer(gomock.Any(), gomock.Any()).Return(buyer.Buyer{}, nil, tt.err)
			rec := s.do(s.authed(http.MethodPut, "/api/buyers/"+id.String(), updateBody(readAt)))
			s.Equal(tt.status, rec.Code, rec.Body.String())
		})
	}

	s.Run("updated", func() {
		s.store.EXPECT().UpdateBuyer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p store.UpdateParams) (buyer.Buyer, *buyer.HistoryEntry, error) {
				s.Equal(s.user.ID, p.ActorID)
				return p.Next, nil, nil
			})
		rec := s.do(s.authed(http.MethodPut, "/api/buyers/"+id.String(), updateBody(readAt)))
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("missing updatedAt", func() {
		rec := s.do(s.authed(http.MethodPut, "/api/buyers/"+id.String(), []byte(validBody)))
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HTTPSuite) TestDeleteBuyer() {
	id := uuid.New()
	s.store.EXPECT().DeleteBuyer(gomock.Any(), id, s.user.ID).Return(nil)

	rec := s.do(s.authed(http.MethodDelete, "/api/buyers/"+id.String(), nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"success": true}`, rec.Body.String())
}

func (s *HTTPSuite) TestHTMXErrorFragment() {
	s.store.EXPECT().DeleteBuyer(gomock.Any(), gomock.Any(), s.user.ID).
		Return(&buyer.OwnershipError{UserID: s.user.ID.String()})

	req := s.authed(http.MethodDelete, "/api/buyers/"+uuid.NewString(), nil)
	req.Header.Set("HX-Request", "true")
	rec := s.do(req)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "text/html")
	s.Contains(rec.Body.String(), `class="alert alert-error"`)
	s.Contains(rec.Body.String(), "BUY002")
}

// =============================================================================
// Import / Export
// =============================================================================

func (s *HTTPSuite) importRequest(target, filename, content string) *http.Request {
	body, contentType := upload("file", filename, content)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", contentType)
	return req
}

func (s *HTTPSuite) TestImport() {
	s.build(ratelimit.NewMemoryLimiter(10, time.Minute), nil)

	s.Run("all rows imported", func() {
		s.echoCreate(buyer.SourceCSVImport)
		rec := s.do(s.importRequest("/api/buyers/import", "leads.csv", csvHeader+"\n"+goodRow+"\n"))
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.JSONEq(`{"success": true, "imported": 1, "totalCount": 1}`, rec.Body.String())
	})

	s.Run("invalid rows reject the batch", func() {
		bad := strings.Replace(goodRow, "9876543210", "12", 1)
		rec := s.do(s.importRequest("/api/buyers/import", "leads.csv", csvHeader+"\n"+goodRow+"\n"+bad))
		s.Require().Equal(http.StatusBadRequest, rec.Code)

		var resp ImportErrorResponse
		s.decode(rec, &resp)
		s.False(resp.Success)
		s.Equal(1, resp.ValidCount)
		s.Equal(2, resp.TotalCount)
		s.Require().Len(resp.Errors, 1)
		s.Equal(3, resp.Errors[0].Row)
	})

	s.Run("no file", func() {
		body, contentType := upload("", "", "")
		req := httptest.NewRequest(http.MethodPost, "/api/buyers/import", body)
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Content-Type", contentType)
		rec := s.do(req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unsupported type", func() {
		rec := s.do(s.importRequest("/api/buyers/import", "leads.pdf", "%PDF"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HTTPSuite) TestCheckImport() {
	bad := strings.Replace(goodRow, "Mohali", "Delhi", 1)
	rec := s.do(s.importRequest("/api/buyers/import/check", "leads.csv", csvHeader+"\n"+bad))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var report core.ImportReport
	s.decode(rec, &report)
	s.Equal(1, report.TotalCount)
	s.Equal(0, report.ValidCount)
	s.Require().Len(report.Errors, 1)
	s.Equal(2, report.Errors[0].Row)
}

func (s *HTTPSuite) TestExportCSV() {
	s.store.EXPECT().StreamBuyers(gomock.Any(), buyer.Filter{Status: buyer.StatusQualified}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ buyer.Filter, fn func(buyer.Buyer) error) error {
			return fn(buyer.Buyer{
				FullName: "Ravi Kumar", Phone: "9876543210", City: buyer.CityMohali,
				PropertyType: buyer.PropertyPlot, Purpose: buyer.PurposeBuy,
				Timeline: buyer.TimelineZeroToThree, Source: buyer.SourceWebsite, Status: buyer.StatusQualified,
			})
		})

	rec := s.do(s.authed(http.MethodGet, "/api/buyers/export?status=QUALIFIED", nil))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Header().Get("Content-Disposition"), `filename="buyers-`)
	s.Contains(rec.Header().Get("Content-Disposition"), `.csv"`)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	s.Require().Len(lines, 2)
	s.Equal(csvHeader, lines[0])
	s.Contains(lines[1], "Ravi Kumar")
}

func (s *HTTPSuite) TestExportFailureBeforeOutput() {
	s.store.EXPECT().StreamBuyers(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	rec := s.do(s.authed(http.MethodGet, "/api/buyers/export?format=xlsx", nil))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Empty(rec.Header().Get("Content-Disposition"))
}

func (s *HTTPSuite) TestExportUnknownFormat() {
	rec := s.do(s.authed(http.MethodGet, "/api/buyers/export?format=pdf", nil))
	s.Equal(http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Operational
// =============================================================================

func (s *HTTPSuite) TestHealth() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"database":"ok"`)
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	s.NotEmpty(rec.Header().Get("Content-Security-Policy"))

	s.checks["redis"] = func(context.Context) error { return errors.New("dial tcp: refused") }
	s.build(ratelimit.NewMemoryLimiter(2, time.Minute), nil)
	rec = s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(rec.Body.String(), `"redis":"unavailable"`)
}

func (s *HTTPSuite) TestMetricsEndpoint() {
	s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `route="/healthz"`)
}

func (s *HTTPSuite) TestIPRateLimit() {
	s.build(ratelimit.NewMemoryLimiter(2, time.Minute), ratelimit.NewMemoryLimiter(1, time.Minute))

	s.Equal(http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal("60", rec.Header().Get("Retry-After"))
}

func (s *HTTPSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/buyers", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := s.do(req)
	s.Equal("https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
