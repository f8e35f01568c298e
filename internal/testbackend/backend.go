// Package testbackend is an in-memory stand-in for the medbook REST backend,
// used by tests of the api, services and cli packages. It follows the
// reference server: same routes, status codes, and message texts.
package testbackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/go-chi/chi/v5"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo123"
	DemoName     = "Демо Пользователь"
)

// Request is what the backend saw of one incoming call.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	ContentType   string
	Body          map[string]any
}

type user struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Password  string  `json:"-"`
	Name      string  `json:"name"`
	BirthDate *string `json:"birth_date"`
	SexType   *string `json:"sex_type"`
}

type override struct {
	status int
	body   any
}

type Backend struct {
	// Token, when set, is returned in auth responses.
	Token string

	mu           sync.Mutex
	nextID       int64
	users        map[string]*user
	analyses     []models.Analysis
	appointments []models.Appointment
	requests     []Request
	overrides    map[string]override
	gate         chan struct{}
}

// New returns a backend seeded with the demo account (id 1).
func New() *Backend {
	b := &Backend{
		nextID:    1,
		users:     map[string]*user{},
		overrides: map[string]override{},
	}
	b.users[DemoEmail] = &user{ID: b.newID(), Email: DemoEmail, Password: DemoPassword, Name: DemoName}
	return b
}

// Start serves b on an httptest server and returns the API base URL.
func Start(t testing.TB) (*Backend, string) {
	t.Helper()
	b := New()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv.URL + "/api"
}

// Handler returns the router with every route under /api.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Use(b.applyOverrides)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.handleLogin)
		r.Post("/auth/register", b.handleRegister)
		r.Get("/analyses", b.handleListAnalyses)
		r.Post("/analyses", b.handleCreateAnalysis)
		r.Get("/appointments", b.handleListAppointments)
		r.Post("/appointments", b.handleCreateAppointment)
		r.Put("/appointments/{id}", b.handleUpdateAppointment)
		r.Delete("/appointments/{id}", b.handleDeleteAppointment)
		r.Get("/dashboard/stats", b.handleStats)
	})
	return r
}

// Override makes every request to method+path (e.g. "POST /api/appointments")
// answer with status and body until cleared with a zero status.
func (b *Backend) Override(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.overrides, key)
		return
	}
	b.overrides[key] = override{status: status, body: body}
}

// Hold blocks every request until the returned release func is called.
func (b *Backend) Hold() (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	gate := make(chan struct{})
	b.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.gate = nil
			b.mu.Unlock()
			close(gate)
		})
	}
}

// Requests returns a copy of everything received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// SeedAnalysis stores a and returns it with its assigned id.
func (b *Backend) SeedAnalysis(a models.Analysis) models.Analysis {
	b.mu.Lock()
	defer b.mu.Unlock()
	a.ID = b.newID()
	b.analyses = append(b.analyses, a)
	return a
}

// SeedAppointment stores a and returns it with its assigned id.
func (b *Backend) SeedAppointment(a models.Appointment) models.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	a.ID = b.newID()
	if a.Status == "" {
		a.Status = models.StatusScheduled
	}
	b.appointments = append(b.appointments, a)
	return a
}

func (b *Backend) Appointments() []models.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Appointment(nil), b.appointments...)
}

func (b *Backend) newID() int64 {
	id := b.nextID
	b.nextID++
	return id
}

// ---- handlers ----

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	u, ok := b.users[req.Email]
	b.mu.Unlock()

	if !ok || u.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Неверный email или пароль"})
		return
	}
	writeJSON(w, http.StatusOK, b.authBody(u, "Вход выполнен"))
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)

	for _, field := range []string{"email", "password", "name"} {
		if _, ok := req[field]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Отсутствует обязательное поле: " + field})
			return
		}
	}

	email, _ := req["email"].(string)
	b.mu.Lock()
	if _, exists := b.users[email]; exists {
		b.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Пользователь с таким email уже существует"})
		return
	}
	u := &user{ID: b.newID(), Email: email}
	u.Password, _ = req["password"].(string)
	u.Name, _ = req["name"].(string)
	if s, ok := req["birth_date"].(string); ok {
		u.BirthDate = &s
	}
	if s, ok := req["sex_type"].(string); ok {
		u.SexType = &s
	}
	b.users[email] = u
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, b.authBody(u, "Регистрация успешна"))
}

func (b *Backend) authBody(u *user, message string) map[string]any {
	body := map[string]any{"success": true, "user": u, "message": message}
	if b.Token != "" {
		body["token"] = b.Token
	}
	return body
}

func (b *Backend) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	uid := userIDParam(r)
	b.mu.Lock()
	out := []models.Analysis{}
	for _, a := range b.analyses {
		if a.UserID == uid {
			out = append(out, a)
		}
	}
	b.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	writeJSON(w, http.StatusOK, map[string]any{"analyses": out})
}

func (b *Backend) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var in models.AnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Type == "" || in.Date == "" || in.Result == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Отсутствуют обязательные поля"})
		return
	}
	a := b.SeedAnalysis(models.Analysis{
		UserID: in.UserID, Type: in.Type, Date: in.Date, Result: in.Result, Unit: in.Unit,
		NormMin: in.NormMin, NormMax: in.NormMax, Doctor: in.Doctor, Notes: in.Notes,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": a.ID, "message": "Анализ сохранен"})
}

func (b *Backend) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	uid := userIDParam(r)
	b.mu.Lock()
	out := []models.Appointment{}
	for _, a := range b.appointments {
		if a.UserID == uid {
			out = append(out, a)
		}
	}
	b.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime > out[j].StartTime })
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "appointments": out, "count": len(out)})
}

func (b *Backend) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeAppointment(w, r)
	if !ok {
		return
	}
	a := b.SeedAppointment(appointmentFrom(in))
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "appointment": a, "message": "Запись к врачу создана"})
}

func (b *Backend) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	in, ok := decodeAppointment(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.appointments {
		if b.appointments[i].ID == id {
			a := appointmentFrom(in)
			a.ID = id
			b.appointments[i] = a
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "appointment": a, "message": "Запись обновлена"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Запись не найдена"})
}

func (b *Backend) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.appointments {
		if b.appointments[i].ID == id {
			b.appointments = append(b.appointments[:i], b.appointments[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Запись удалена"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Запись не найдена"})
}

func (b *Backend) handleStats(w http.ResponseWriter, r *http.Request) {
	uid := userIDParam(r)

	b.mu.Lock()
	var analyses []models.Analysis
	var upcoming []models.Appointment
	total := 0
	for _, a := range b.analyses {
		if a.UserID == uid {
			analyses = append(analyses, a)
		}
	}
	for _, a := range b.appointments {
		if a.UserID != uid {
			continue
		}
		total++
		if a.Status == models.StatusScheduled {
			upcoming = append(upcoming, a)
		}
	}
	b.mu.Unlock()

	sort.SliceStable(analyses, func(i, j int) bool { return analyses[i].Date > analyses[j].Date })
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].StartTime < upcoming[j].StartTime })

	writeJSON(w, http.StatusOK, map[string]any{
		"stats": map[string]int{
			"total_analyses":     len(analyses),
			"total_appointments": total,
		},
		"recent_analyses":       head(analyses, 3),
		"upcoming_appointments": head(upcoming, 3),
	})
}

// ---- helpers ----

func decodeAppointment(w http.ResponseWriter, r *http.Request) (models.AppointmentInput, bool) {
	var raw map[string]json.RawMessage
	body := json.NewDecoder(r.Body)
	if err := body.Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Некорректный JSON"})
		return models.AppointmentInput{}, false
	}
	for _, field := range []string{"title", "start_time", "end_time"} {
		if _, ok := raw[field]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Отсутствует обязательное поле: " + field})
			return models.AppointmentInput{}, false
		}
	}

	b, _ := json.Marshal(raw)
	var in models.AppointmentInput
	_ = json.Unmarshal(b, &in)
	if in.EndTime < in.StartTime {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid time range"})
		return models.AppointmentInput{}, false
	}
	return in, true
}

func appointmentFrom(in models.AppointmentInput) models.Appointment {
	status := in.Status
	if status == "" {
		status = models.StatusScheduled
	}
	return models.Appointment{
		UserID: in.UserID, Title: in.Title, StartTime: in.StartTime, EndTime: in.EndTime,
		Doctor: in.Doctor, Specialty: in.Specialty, Location: in.Location, Status: status, Notes: in.Notes,
	}
}

func userIDParam(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		return 1
	}
	return id
}

func head[T any](s []T, n int) []T {
	if s == nil {
		return []T{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
