// Package testutil содержит in-memory заглушки хранилища и платежного
// процессора для тестов сервисов и хэндлеров.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"donation_backend/internal/models"
	"donation_backend/internal/payments"
	"donation_backend/internal/repositories"

	"gorm.io/gorm"
)

// --- Пожертвования ---

type FakeDonationRepo struct {
	mu        sync.Mutex
	rows      []models.Donation
	nextID    uint
	clock     time.Time
	CreateErr error
	FindErr   error
	// UpdateErr - ошибка UpdateStatus для указанных payment intent id
	UpdateErr   map[string]error
	CreateCalls int
	UpdateCalls int
}

func NewFakeDonationRepo() *FakeDonationRepo {
	return &FakeDonationRepo{
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdateErr: make(map[string]error),
	}
}

// Seed вставляет строки как есть, назначая id и возрастающее время создания.
func (r *FakeDonationRepo) Seed(donations ...models.Donation) {
	for i := range donations {
		_ = r.Create(nil, &donations[i])
	}
	r.mu.Lock()
	r.CreateCalls = 0
	r.mu.Unlock()
}

func (r *FakeDonationRepo) Create(db *gorm.DB, donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreateCalls++
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, d := range r.rows {
		if d.PaymentIntentID == donation.PaymentIntentID {
			return repositories.ErrDuplicatePaymentIntent
		}
	}
	r.nextID++
	r.clock = r.clock.Add(time.Minute)
	donation.ID = r.nextID
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = r.clock
	}
	if donation.Status == "" {
		donation.Status = models.PaymentStatusPending
	}
	r.rows = append(r.rows, *donation)
	return nil
}

func (r *FakeDonationRepo) FindByPaymentIntentID(db *gorm.DB, paymentIntentID string) (*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	for _, d := range r.rows {
		if d.PaymentIntentID == paymentIntentID {
			cp := d
			return &cp, nil
		}
	}
	return nil, repositories.ErrDonationNotFound
}

func (r *FakeDonationRepo) FindAll(db *gorm.DB) ([]models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	out := make([]models.Donation, len(r.rows))
	copy(out, r.rows)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *FakeDonationRepo) UpdateStatus(db *gorm.DB, paymentIntentID string, status models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++
	if err := r.UpdateErr[paymentIntentID]; err != nil {
		return err
	}
	for i := range r.rows {
		if r.rows[i].PaymentIntentID == paymentIntentID {
			r.rows[i].Status = status
			return nil
		}
	}
	return repositories.ErrDonationNotFound
}

// Rows возвращает снимок в порядке вставки.
func (r *FakeDonationRepo) Rows() []models.Donation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Donation, len(r.rows))
	copy(out, r.rows)
	return out
}

// --- Администраторы ---

type FakeAdminUserRepo struct {
	mu       sync.Mutex
	users    []models.AdminUser
	nextID   uint
	CountErr error
}

func NewFakeAdminUserRepo() *FakeAdminUserRepo {
	return &FakeAdminUserRepo{}
}

func (r *FakeAdminUserRepo) Count(db *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CountErr != nil {
		return 0, r.CountErr
	}
	return int64(len(r.users)), nil
}

func (r *FakeAdminUserRepo) Create(db *gorm.DB, user *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return repositories.ErrUsernameTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users = append(r.users, *user)
	return nil
}

func (r *FakeAdminUserRepo) FindByUsername(db *gorm.DB, username string) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, repositories.ErrAdminUserNotFound
}

func (r *FakeAdminUserRepo) FindByID(db *gorm.DB, id uint) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, repositories.ErrAdminUserNotFound
}

func (r *FakeAdminUserRepo) Users() []models.AdminUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AdminUser, len(r.users))
	copy(out, r.users)
	return out
}

// --- Админ-сессии ---

type FakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]models.AdminSession
	DeleteErr error
	// CleanupPanics - сколько следующих вызовов DeleteExpired паникуют
	CleanupPanics int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{sessions: make(map[string]models.AdminSession)}
}

func (r *FakeSessionRepo) Create(db *gorm.DB, session *models.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *FakeSessionRepo) FindByID(db *gorm.DB, id string) (*models.AdminSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return &s, nil
}

func (r *FakeSessionRepo) DeleteByID(db *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	if _, ok := r.sessions[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *FakeSessionRepo) DeleteExpired(db *gorm.DB, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CleanupPanics > 0 {
		r.CleanupPanics--
		panic("fake session repo: cleanup")
	}
	var n int64
	for id, s := range r.sessions {
		if s.IsExpired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// Expire переносит срок сессии в прошлое.
func (r *FakeSessionRepo) Expire(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.ExpiresAt = time.Now().Add(-time.Minute)
		r.sessions[id] = s
	}
}

func (r *FakeSessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// --- Платежный шлюз ---

// FakeGateway хранит intents в памяти. Вебхуки - простой JSON в формате Stripe;
// если задан Signature, заголовок должен с ним совпадать.
type FakeGateway struct {
	mu        sync.Mutex
	intents   map[string]*payments.PaymentIntent
	seq       int
	CreateErr error
	GetErr    map[string]error
	GetPanic  map[string]bool
	Signature string

	CreateCalls int
	GetCalls    int
	LastCreate  payments.CreateIntentParams
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		intents: make(map[string]*payments.PaymentIntent),
		GetErr:   make(map[string]error),
		GetPanic: make(map[string]bool),
	}
}

func (g *FakeGateway) CreateIntent(ctx context.Context, params payments.CreateIntentParams) (*payments.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateCalls++
	g.LastCreate = params
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	g.seq++
	id := fmt.Sprintf("pi_fake_%d", g.seq)
	pi := &payments.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       params.Amount,
		Currency:     params.Currency,
		Status:       models.PaymentStatusRequiresPaymentMethod,
	}
	g.intents[id] = pi
	cp := *pi
	return &cp, nil
}

func (g *FakeGateway) GetIntent(ctx context.Context, intentID string) (*payments.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.GetCalls++
	if g.GetPanic[intentID] {
		panic("fake gateway: lookup of " + intentID)
	}
	if err := g.GetErr[intentID]; err != nil {
		return nil, err
	}
	pi, ok := g.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("no such payment_intent: %s", intentID)
	}
	cp := *pi
	return &cp, nil
}

// SetStatus задает (или создает) intent с указанным статусом у процессора.
func (g *FakeGateway) SetStatus(intentID string, status models.PaymentStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if pi, ok := g.intents[intentID]; ok {
		pi.Status = status
		return
	}
	g.intents[intentID] = &payments.PaymentIntent{ID: intentID, Status: status}
}

func (g *FakeGateway) ParseWebhook(payload []byte, signatureHeader string) (*payments.WebhookEvent, error) {
	if g.Signature != "" && signatureHeader != g.Signature {
		return nil, payments.ErrInvalidSignature
	}

	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID     string `json:"id"`
				Object string `json:"object"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil || raw.Type == "" {
		return nil, payments.ErrInvalidPayload
	}

	event := &payments.WebhookEvent{ID: raw.ID, Type: raw.Type}
	if raw.Data.Object.Object == "payment_intent" {
		event.PaymentIntentID = raw.Data.Object.ID
	}
	return event, nil
}

// WebhookPayload собирает минимальное тело события для ParseWebhook.
func WebhookPayload(eventType, intentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_test","object":"event","type":%q,"data":{"object":{"id":%q,"object":"payment_intent"}}}`,
		eventType, intentID,
	))
}

// --- Квитанции ---

type FakeReceiptSender struct {
	mu   sync.Mutex
	Sent []models.Donation
	Err  error
}

func (s *FakeReceiptSender) SendDonationReceipt(ctx context.Context, donation *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, *donation)
	return nil
}

func (s *FakeReceiptSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

// ErrStore - общая ошибка хранилища для тестов.
var ErrStore = errors.New("store unavailable")

// проверки на этапе компиляции
var (
	_ repositories.DonationRepository     = (*FakeDonationRepo)(nil)
	_ repositories.AdminUserRepository    = (*FakeAdminUserRepo)(nil)
	_ repositories.AdminSessionRepository = (*FakeSessionRepo)(nil)
	_ payments.Gateway                    = (*FakeGateway)(nil)
)
