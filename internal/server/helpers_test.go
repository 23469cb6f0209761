package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/config"
	"github.com/hirely/hirely/internal/notify"
	"github.com/hirely/hirely/internal/server/ratelimit"
	"github.com/hirely/hirely/internal/types"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

// fakeCache is a JobListCache backed by a map
type fakeCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.invalidations++
	return nil
}

func (c *fakeCache) Close() error { return nil }

// fakeBlobs is a BlobStore backed by a map
type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *fakeBlobs) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (b *fakeBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

// fakeMailer records sent messages
type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

// -----------------------------------------------------------------------------
// Test environment
// -----------------------------------------------------------------------------

type testEnv struct {
	server *Server
	store  *fakeStore
	cache  *fakeCache
	blobs  *fakeBlobs
	mailer *fakeMailer
}

type envOption func(*Deps)

func withRateLimiter(l *ratelimit.Limiter) envOption {
	return func(d *Deps) { d.RateLimiter = l }
}

func withoutBlobs() envOption {
	return func(d *Deps) { d.Blobs = nil }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	env := &testEnv{
		store:  newFakeStore(),
		cache:  newFakeCache(),
		blobs:  newFakeBlobs(),
		mailer: &fakeMailer{},
	}
	deps := Deps{
		Store:       env.store,
		Cache:       env.cache,
		Blobs:       env.blobs,
		Mailer:      env.mailer,
		RateLimiter: ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
		JWT: &config.JWTConfig{
			Secret:          testJWTSecret,
			Issuer:          config.DefaultJWTIssuer,
			ExpirationHours: 24,
		},
		Password: &config.PasswordConfig{BcryptCost: config.MinBcryptCost},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	s, err := New(Config{
		Port:          0,
		PublicBaseURL: "https://hirely.test",
		CORSOrigin:    "https://app.hirely.test",
		MailFrom:      "noreply@hirely.test",
	}, deps)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)

	env.server = s
	return env
}

// do sends a JSON request through the full middleware chain
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = strings.NewReader(s)
		} else {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req, token)
}

// upload sends a multipart request carrying data in the file field
func (e *testEnv) upload(t *testing.T, path, token, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.send(req, token)
}

func (e *testEnv) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

// register creates an account and returns its ID and token
func (e *testEnv) register(t *testing.T, name, email, role string) (uuid.UUID, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/register", "", types.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "correct-horse-battery",
		Role:     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody[types.LoginResponse](t, w)
	return resp.User.ID, resp.Token
}

// Minimal files that sniff as the allowed types
var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
)

// readyCandidate registers a candidate with a complete profile
func (e *testEnv) readyCandidate(t *testing.T, name, email string) (uuid.UUID, string) {
	t.Helper()
	id, token := e.register(t, name, email, "candidate")

	w := e.do(t, http.MethodPut, "/v1/me/profile", token, types.CandidateProfileRequest{
		Headline: "Backend engineer",
		Location: "Berlin",
		Skills:   []string{"Go", "Postgres"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.upload(t, "/v1/me/resume", token, "cv.pdf", pdfBytes)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return id, token
}

// readyEmployer registers an employer with a company and a complete profile
func (e *testEnv) readyEmployer(t *testing.T, name, email, companyName string) (uuid.UUID, uuid.UUID, string) {
	t.Helper()
	id, token := e.register(t, name, email, "employer")

	w := e.do(t, http.MethodPut, "/v1/me/profile", token, types.EmployerProfileRequest{Position: "Hiring manager"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/v1/companies", token, types.CompanyRequest{
		Name:        companyName,
		Website:     "https://example.com",
		Description: companyName + " builds things.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	company := decodeBody[map[string]any](t, w)
	companyID, err := uuid.Parse(company["id"].(string))
	require.NoError(t, err)
	return id, companyID, token
}

func jobRequest(title string) types.JobRequest {
	lo, hi := 60000, 90000
	return types.JobRequest{
		Title:          title,
		Description:    "<p>Build and run <b>services</b>.</p>",
		Location:       "Berlin",
		EmploymentType: "full-time",
		WorkMode:       "hybrid",
		Skills:         []string{"Go", "Kubernetes"},
		SalaryMin:      &lo,
		SalaryMax:      &hi,
		SalaryCurrency: "EUR",
	}
}

// postJob creates an open job and returns its ID
func (e *testEnv) postJob(t *testing.T, token, title string) uuid.UUID {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/jobs", token, jobRequest(title))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decodeBody[map[string]any](t, w)
	id, err := uuid.Parse(job["id"].(string))
	require.NoError(t, err)
	return id
}
