package openleads

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret-0123456789")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret-0123456789")
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, provider AccountProvider, mailer Mailer) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithAccountProvider(provider).
		WithMailer(mailer).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

// mockAccountProvider is an in-memory AccountProvider.
type mockAccountProvider struct {
	mu      sync.Mutex
	nextID  int
	byID    map[string]Account
	byEmail map[string]string
}

func newMockAccountProvider() *mockAccountProvider {
	return &mockAccountProvider{
		byID:    map[string]Account{},
		byEmail: map[string]string{},
	}
}

func (p *mockAccountProvider) put(a Account) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID[a.ID] = a
	p.byEmail[a.Email] = a.ID
}

func (p *mockAccountProvider) delete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.byID[id]; ok {
		delete(p.byEmail, a.Email)
		delete(p.byID, id)
	}
}

func (p *mockAccountProvider) GetAccountByEmail(_ context.Context, email string) (Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.byEmail[email]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return p.byID[id], nil
}

func (p *mockAccountProvider) GetAccountByID(_ context.Context, id string) (Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.byID[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (p *mockAccountProvider) CreateAccount(_ context.Context, input CreateAccountInput) (Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byEmail[input.Email]; ok {
		return Account{}, ErrAccountExists
	}
	p.nextID++
	a := Account{
		ID:           fmt.Sprintf("acct-%d", p.nextID),
		Name:         input.Name,
		Email:        input.Email,
		Role:         input.Role,
		PasswordHash: input.PasswordHash,
	}
	p.byID[a.ID] = a
	p.byEmail[a.Email] = a.ID
	return a, nil
}

func (p *mockAccountProvider) UpdatePasswordHash(_ context.Context, id, hash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.PasswordHash = hash
	p.byID[id] = a
	return nil
}

type sentMail struct {
	To       string
	Template string
	Data     map[string]string
}

// mockMailer records sends and can be told to fail.
type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (m *mockMailer) Send(_ context.Context, to, templateID string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{To: to, Template: templateID, Data: data})
	return nil
}

func (m *mockMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	code := m.sent[len(m.sent)-1].Data["otp"]
	if code == "" {
		t.Fatal("sent mail carries no otp")
	}
	return code
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
