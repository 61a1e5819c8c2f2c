package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kineayuda/booking-api/config"
	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/pkg/auth"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
)

type fakePractitionerRepo struct {
	byID    map[uuid.UUID]*model.Practitioner
	byEmail map[string]*model.Practitioner
}

func newFakePractitionerRepo() *fakePractitionerRepo {
	return &fakePractitionerRepo{
		byID:    make(map[uuid.UUID]*model.Practitioner),
		byEmail: make(map[string]*model.Practitioner),
	}
}

func (r *fakePractitionerRepo) Create(_ context.Context, p *model.Practitioner) error {
	key := strings.ToLower(p.Email)
	if _, ok := r.byEmail[key]; ok {
		return apperrors.Conflict("a practitioner with this email or rut already exists", nil)
	}
	p.ID = uuid.New()
	r.byID[p.ID] = p
	r.byEmail[key] = p
	return nil
}

func (r *fakePractitionerRepo) Get(_ context.Context, id uuid.UUID) (*model.Practitioner, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("practitioner", nil)
	}
	return p, nil
}

func (r *fakePractitionerRepo) GetByEmail(_ context.Context, email string) (*model.Practitioner, error) {
	p, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.NotFound("practitioner", nil)
	}
	return p, nil
}

func (r *fakePractitionerRepo) Update(context.Context, *model.Practitioner) error {
	return nil
}

func (r *fakePractitionerRepo) ListApproved(context.Context) ([]*model.Practitioner, error) {
	return nil, nil
}

func newTestService() (*Service, *fakePractitionerRepo) {
	repo := newFakePractitionerRepo()
	jwtSvc := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", RefreshSecret: "test-refresh"})
	return NewService(repo, jwtSvc), repo
}

func registerReq() *model.RegisterRequest {
	return &model.RegisterRequest{
		FirstName:     "Ana",
		LastName:      "Rojas",
		Email:         "Ana.Rojas@Example.com",
		Password:      "correct-horse",
		RUT:           "12.345.678-5",
		LicenseNumber: "KIN-1234",
		Specialty:     "kinesiologia",
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates pending practitioner", func(t *testing.T) {
		svc, _ := newTestService()

		p, err := svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		assert.Equal(t, model.VerificationStatusPending, p.VerificationStatus)
		assert.Equal(t, "ana.rojas@example.com", p.Email)
		assert.Equal(t, "12345678-5", p.RUT)
		assert.NotEmpty(t, p.PasswordHash)
		assert.NotEqual(t, "correct-horse", p.PasswordHash)
	})

	t.Run("rejects invalid rut", func(t *testing.T) {
		svc, _ := newTestService()

		req := registerReq()
		req.RUT = "12345678-4"
		_, err := svc.Register(context.Background(), req)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Register(context.Background(), registerReq())
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), registerReq())
		assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
	})
}

func TestLogin(t *testing.T) {
	t.Run("issues token pair", func(t *testing.T) {
		svc, _ := newTestService()
		registered, err := svc.Register(context.Background(), registerReq())
		require.NoError(t, err)

		pair, err := svc.Login(context.Background(), "ana.rojas@example.com", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		claims, err := svc.ValidateToken(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.PractitionerID)
	})

	t.Run("unknown email maps to unauthorized", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(context.Background(), registerReq())
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), "ana.rojas@example.com", "wrong-password")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("exchanges refresh token", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		pair, err := svc.Login(context.Background(), "ana.rojas@example.com", "correct-horse")
		require.NoError(t, err)

		renewed, err := svc.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, renewed.AccessToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		pair, err := svc.Login(context.Background(), "ana.rojas@example.com", "correct-horse")
		require.NoError(t, err)

		_, err = svc.Refresh(context.Background(), pair.AccessToken)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})

	t.Run("deleted practitioner cannot refresh", func(t *testing.T) {
		svc, repo := newTestService()
		registered, err := svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		pair, err := svc.Login(context.Background(), "ana.rojas@example.com", "correct-horse")
		require.NoError(t, err)

		delete(repo.byID, registered.ID)

		_, err = svc.Refresh(context.Background(), pair.RefreshToken)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.ValidateToken(context.Background(), "not-a-jwt")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
	})

	t.Run("repeated validation serves cached claims", func(t *testing.T) {
		svc, _ := newTestService()
		registered, err := svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		pair, err := svc.Login(context.Background(), "ana.rojas@example.com", "correct-horse")
		require.NoError(t, err)

		first, err := svc.ValidateToken(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		second, err := svc.ValidateToken(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, registered.ID, second.PractitionerID)
	})
}
