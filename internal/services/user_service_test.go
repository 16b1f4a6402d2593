package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tamircibul/internal/models"
)

type fakeUserStore struct {
	nextID   int
	users    map[int]models.User
	sessions map[string]models.Session
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[int]models.User), sessions: make(map[string]models.Session)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	for _, u := range f.users {
		if user.Email != "" && u.Email == user.Email {
			return models.User{}, models.ErrDuplicateEmail
		}
		if user.Phone != "" && u.Phone == user.Phone {
			return models.User{}, models.ErrDuplicatePhone
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrUserNotFound
}

func (f *fakeUserStore) GetUserByPhone(_ context.Context, phone string) (models.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return models.User{}, models.ErrUserNotFound
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id int, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Password = hash
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id int, name, email, phone string) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if phone != "" {
		u.Phone = phone
	}
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) SetSession(_ context.Context, s models.Session) error {
	f.sessions[s.RefreshToken] = s
	return nil
}

func (f *fakeUserStore) GetSessionByToken(_ context.Context, token string) (models.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return models.Session{}, models.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeUserStore) DeleteSessions(_ context.Context, userID int) error {
	for token, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, token)
		}
	}
	return nil
}

type fakeProfileStore struct {
	nextID   int
	profiles map[int]models.ProviderProfile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{nextID: 1, profiles: make(map[int]models.ProviderProfile)}
}

func (f *fakeProfileStore) CreateProfile(_ context.Context, p models.ProviderProfile) (models.ProviderProfile, error) {
	p.ID = f.nextID
	f.nextID++
	f.profiles[p.UserID] = p
	return p, nil
}

func (f *fakeProfileStore) GetProviderByUserID(_ context.Context, userID int) (models.ProviderProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return models.ProviderProfile{}, models.ErrProviderNotFound
	}
	return p, nil
}

type fakeResetStore struct {
	tokens map[string]models.PasswordResetToken
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{tokens: make(map[string]models.PasswordResetToken)}
}

func (f *fakeResetStore) ReplaceToken(_ context.Context, email, hash string, expiresAt time.Time) error {
	f.tokens[email] = models.PasswordResetToken{Email: email, TokenHash: hash, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeResetStore) FindValidToken(_ context.Context, email, hash string) (models.PasswordResetToken, error) {
	t, ok := f.tokens[email]
	if !ok || t.TokenHash != hash || time.Now().After(t.ExpiresAt) {
		return models.PasswordResetToken{}, models.ErrResetTokenInvalid
	}
	return t, nil
}

func (f *fakeResetStore) DeleteTokens(_ context.Context, email string) error {
	delete(f.tokens, email)
	return nil
}

type fakeMailer struct {
	to   string
	link string
}

func (f *fakeMailer) SendPasswordReset(to, link string) error {
	f.to, f.link = to, link
	return nil
}

func newUserService() (*UserService, *fakeUserStore, *fakeResetStore, *fakeMailer) {
	store := newFakeUserStore()
	resets := newFakeResetStore()
	mailer := &fakeMailer{}
	svc := &UserService{
		Store:       store,
		Providers:   newFakeProfileStore(),
		ResetTokens: resets,
		Mail:        mailer,
		SigningKey:  []byte("test-signing-key"),
		AccessTTL:   15 * time.Minute,
		RefreshTTL:  30 * 24 * time.Hour,
		FrontendURL: "https://tamircibul.example",
	}
	return svc, store, resets, mailer
}

func TestRegisterCustomerIsActiveImmediately(t *testing.T) {
	svc, _, _, _ := newUserService()

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Ayşe Yılmaz",
		Email:    "Ayse@Example.com",
		Password: "sifre123",
		Role:     models.RoleCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.Equal(t, "ayse@example.com", user.Email, "email should be normalized")
	assert.Empty(t, user.Password)
	assert.Nil(t, user.Provider)
}

func TestRegisterServiceAccountIsPendingWithProfile(t *testing.T) {
	svc, _, _, _ := newUserService()

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:        "Mehmet Usta",
		Email:       "mehmet@example.com",
		Password:    "sifre123",
		Role:        models.RoleService,
		CompanyName: "Mehmet Tesisat",
		ServiceType: models.ServiceTypePlumbing,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusPending, user.Status)
	require.NotNil(t, user.Provider)
	assert.Equal(t, models.ProviderStatusPending, user.Provider.Status)
	assert.Equal(t, "Mehmet Tesisat", user.Provider.CompanyName)

	// Pending accounts cannot log in until an admin approves them.
	_, _, err = svc.Login(context.Background(), models.LoginRequest{Email: "mehmet@example.com", Password: "sifre123"})
	assert.ErrorIs(t, err, models.ErrAccountPending)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newUserService()

	cases := []struct {
		name  string
		in    models.RegisterRequest
		field string
	}{
		{"missing name", models.RegisterRequest{Email: "a@b.c", Password: "sifre123", Role: models.RoleCustomer}, "name"},
		{"missing contact", models.RegisterRequest{Name: "A", Password: "sifre123", Role: models.RoleCustomer}, "email"},
		{"short password", models.RegisterRequest{Name: "A", Email: "a@b.c", Password: "123", Role: models.RoleCustomer}, "password"},
		{"bad role", models.RegisterRequest{Name: "A", Email: "a@b.c", Password: "sifre123", Role: "admin"}, "role"},
		{"service without company", models.RegisterRequest{Name: "A", Email: "a@b.c", Password: "sifre123", Role: models.RoleService, ServiceType: models.ServiceTypePlumbing}, "company_name"},
		{"service with bad category", models.RegisterRequest{Name: "A", Email: "a@b.c", Password: "sifre123", Role: models.RoleService, CompanyName: "X", ServiceType: "nope"}, "service_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			var v *models.ValidationError
			require.ErrorAs(t, err, &v)
			assert.Contains(t, v.Fields, tc.field)
		})
	}
}

func TestLoginByEmailAndPhone(t *testing.T) {
	svc, _, _, _ := newUserService()
	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ayşe", Email: "ayse@example.com", Phone: "+905551112233",
		Password: "sifre123", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	user, tokens, err := svc.Login(context.Background(), models.LoginRequest{Email: "ayse@example.com", Password: "sifre123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Empty(t, user.Password)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Phone: "+905551112233", Password: "sifre123"})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Email: "ayse@example.com", Password: "yanlis"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Email: "yok@example.com", Password: "sifre123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials, "unknown account must look like a bad password")
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc, _, _, _ := newUserService()
	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ayşe", Email: "ayse@example.com", Password: "sifre123", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	user, tokens, err := svc.Login(context.Background(), models.LoginRequest{Email: "ayse@example.com", Password: "sifre123"})
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	_, err = svc.ParseAccessToken(tokens.AccessToken + "x")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, store, _, _ := newUserService()
	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ayşe", Email: "ayse@example.com", Password: "sifre123", Role: models.RoleCustomer,
	})
	require.NoError(t, err)
	_, tokens, err := svc.Login(context.Background(), models.LoginRequest{Email: "ayse@example.com", Password: "sifre123"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old token died with the rotation.
	_, err = svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.Len(t, store.sessions, 1)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, resets, mailer := newUserService()
	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ayşe", Email: "ayse@example.com", Password: "sifre123", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ayse@example.com"))
	require.Equal(t, "ayse@example.com", mailer.to)

	parsed, err := url.Parse(mailer.link)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mailer.link, "https://tamircibul.example/reset-password"))
	token := parsed.Query().Get("token")
	require.Len(t, token, 64, "token is 32 random bytes hex encoded")

	// Only the digest is stored.
	stored := resets.tokens["ayse@example.com"]
	assert.NotEqual(t, token, stored.TokenHash)
	assert.Len(t, stored.TokenHash, 64)

	require.NoError(t, svc.VerifyResetToken(context.Background(), models.VerifyResetTokenRequest{
		Email: "ayse@example.com", Token: token,
	}))

	require.NoError(t, svc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Email: "ayse@example.com", Token: token, Password: "yenisifre",
	}))

	// Consumed tokens die, old password dies, new password works.
	err = svc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Email: "ayse@example.com", Token: token, Password: "birdaha",
	})
	assert.ErrorIs(t, err, models.ErrResetTokenInvalid)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Email: "ayse@example.com", Password: "sifre123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), models.LoginRequest{Email: "ayse@example.com", Password: "yenisifre"})
	assert.NoError(t, err)
}

func TestForgotPasswordHidesUnknownAddresses(t *testing.T) {
	svc, _, _, mailer := newUserService()
	require.NoError(t, svc.ForgotPassword(context.Background(), "kimse@example.com"))
	assert.Empty(t, mailer.to, "no mail should go out for unknown addresses")
}

func TestChangePasswordKillsSessions(t *testing.T) {
	svc, store, _, _ := newUserService()
	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ayşe", Email: "ayse@example.com", Password: "sifre123", Role: models.RoleCustomer,
	})
	require.NoError(t, err)
	_, _, err = svc.Login(context.Background(), models.LoginRequest{Email: "ayse@example.com", Password: "sifre123"})
	require.NoError(t, err)

	actor := models.Actor{ID: user.ID, Role: user.Role}
	err = svc.ChangePassword(context.Background(), actor, "yanlis", "yenisifre")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), actor, "sifre123", "yenisifre"))
	assert.Empty(t, store.sessions)
}
