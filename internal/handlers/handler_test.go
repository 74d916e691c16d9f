// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory stand-ins for the stores and request
// helpers shared by the handler tests. The stand-ins follow the error
// contracts of the real stores, which have their own integration tests.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"qrmenu/internal/middleware"
	"qrmenu/internal/models"
	"qrmenu/internal/session"
	"qrmenu/internal/store"
)

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

type fakeCategories struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Category
	err    error
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{rows: map[int64]*models.Category{}}
}

func (f *fakeCategories) List(_ context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Category{}
	for _, c := range f.rows {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeCategories) FindByID(_ context.Context, id int64) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.rows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) slugTaken(slug string, except int64) bool {
	for id, c := range f.rows {
		if id != except && c.Slug == slug {
			return true
		}
	}
	return false
}

func (f *fakeCategories) Create(_ context.Context, name, slug string, imagePath *string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slugTaken(slug, 0) {
		return nil, fmt.Errorf("%w: category slug %q already exists", store.ErrConflict, slug)
	}
	f.nextID++
	c := &models.Category{ID: f.nextID, Name: name, Slug: slug, ImagePath: imagePath, CreatedAt: time.Now()}
	f.rows[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) Update(_ context.Context, id int64, name, slug string, imagePath *string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slugTaken(slug, id) {
		return nil, fmt.Errorf("%w: category slug %q already exists", store.ErrConflict, slug)
	}
	c, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: category %d", store.ErrNotFound, id)
	}
	c.Name, c.Slug, c.ImagePath = name, slug, imagePath
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("%w: category %d", store.ErrNotFound, id)
	}
	delete(f.rows, id)
	return nil
}

// --------------------------------------------------------------------------
// Products
// --------------------------------------------------------------------------

type fakeProducts struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]*models.Product
	lastSlug string
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{rows: map[int64]*models.Product{}}
}

func (f *fakeProducts) List(_ context.Context, categorySlug string) ([]models.ProductListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSlug = categorySlug
	out := []models.ProductListItem{}
	for _, p := range f.rows {
		out = append(out, models.ProductListItem{Product: *p, ImagePath: p.Images.First()})
	}
	return out, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func checkInput(in store.ProductInput) error {
	switch {
	case in.Name == "", in.Price == nil, in.Category == nil, in.Status == "":
		return fmt.Errorf("%w: name, price, category and status are required", store.ErrValidation)
	case !in.Status.Valid():
		return fmt.Errorf("%w: bad status", store.ErrValidation)
	}
	return nil
}

func (f *fakeProducts) Create(_ context.Context, in store.ProductInput) (*models.Product, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if len(in.Images) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", store.ErrValidation)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := &models.Product{
		ID: f.nextID, Name: in.Name, Description: in.Description, Price: *in.Price,
		Category: in.Category, Images: in.Images, Status: in.Status, CreatedAt: time.Now(),
	}
	f.rows[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, in store.ProductInput) (*models.Product, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", store.ErrNotFound, id)
	}
	p.Name, p.Description, p.Price, p.Category, p.Status = in.Name, in.Description, *in.Price, in.Category, in.Status
	p.Images = in.Images
	if p.Images == nil {
		p.Images = models.ImageList{}
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) RemoveImage(_ context.Context, id int64, path string) (models.ImageList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", store.ErrNotFound, id)
	}
	rest, found := p.Images.Without(path)
	if !found {
		return nil, fmt.Errorf("%w: image %q on product %d", store.ErrNotFound, path, id)
	}
	p.Images = rest
	return rest, nil
}

func (f *fakeProducts) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return fmt.Errorf("%w: product %d", store.ErrNotFound, id)
	}
	delete(f.rows, id)
	return nil
}

// --------------------------------------------------------------------------
// Images
// --------------------------------------------------------------------------

type fakeImages struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func newFakeImages() *fakeImages {
	return &fakeImages{saved: map[string][]byte{}}
}

func (f *fakeImages) Save(_ context.Context, data []byte, originalName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := fmt.Sprintf("/uploads/products/%d-%s", len(f.saved)+1, originalName)
	f.saved[path] = data
	return path, nil
}

// --------------------------------------------------------------------------
// QR configurations
// --------------------------------------------------------------------------

type fakeQR struct {
	rows []models.QRConfig
}

func (f *fakeQR) Latest(_ context.Context) (*models.QRConfig, error) {
	if len(f.rows) == 0 {
		return nil, fmt.Errorf("%w: no qr code configuration", store.ErrNotFound)
	}
	cfg := f.rows[len(f.rows)-1]
	return &cfg, nil
}

func (f *fakeQR) Save(_ context.Context, cfg models.QRConfig) (*models.QRConfig, error) {
	if err := store.ValidateQRConfig(&cfg); err != nil {
		return nil, err
	}
	cfg.ID = int64(len(f.rows) + 1)
	cfg.CreatedAt = time.Now()
	f.rows = append(f.rows, cfg)
	return &cfg, nil
}

// --------------------------------------------------------------------------
// Users and sessions
// --------------------------------------------------------------------------

type fakeUsers struct {
	user     models.User
	password string
}

func (f *fakeUsers) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	if username != f.user.Username || password != f.password {
		return nil, fmt.Errorf("%w: invalid username or password", store.ErrUnauthorized)
	}
	u := f.user
	return &u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	if id != f.user.ID {
		return nil, nil
	}
	u := f.user
	return &u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, username, newPassword string) error {
	if len(newPassword) < store.MinPasswordLength {
		return fmt.Errorf("%w: password too short", store.ErrValidation)
	}
	if username != f.user.Username {
		return fmt.Errorf("%w: unknown user %q", store.ErrValidation, username)
	}
	f.password = newPassword
	return nil
}

func (f *fakeUsers) SetTOTPSecret(_ context.Context, _ int64, secret string) error {
	f.user.TOTPSecret = &secret
	f.user.TOTPEnabled = false
	return nil
}

func (f *fakeUsers) EnableTOTP(_ context.Context, _ int64) error {
	f.user.TOTPEnabled = true
	return nil
}

type fakeSessions struct {
	created   []*session.Data
	destroyed int
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-session", MaxAge: 86400, HttpOnly: true})
	return "test-session", nil
}

func (f *fakeSessions) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	f.destroyed++
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, MaxAge: -1})
	return nil
}

// --------------------------------------------------------------------------
// Request helpers
// --------------------------------------------------------------------------

// jsonRequest builds a request with body encoded as JSON. A string body is
// sent verbatim.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withURLParam adds a chi URL parameter to a request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withSession attaches an admin session the way LoadSession would.
func withSession(r *http.Request) *http.Request {
	data := &session.Data{UserID: 1, Username: "admin", CreatedAt: time.Now()}
	return r.WithContext(middleware.WithSession(r.Context(), data))
}

// serve runs h and returns the recorder.
func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

// decodeBody decodes the recorder body into a fresh T.
func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
