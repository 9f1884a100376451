package controller

import (
	"context"
	"testing"

	e "github.com/talentops/rfh/internal/requirement/errors"
	"github.com/talentops/rfh/internal/requirement/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockEnumRepository implements EnumRepository for testing.
type MockEnumRepository struct {
	ListEnumValuesFunc  func(ctx context.Context, enumType models.EnumType) ([]*models.EnumValue, error)
	FindEnumValueFunc   func(ctx context.Context, enumType models.EnumType, sanitized string) (*models.EnumValue, error)
	CreateEnumValueFunc func(ctx context.Context, value *models.EnumValue) error
}

func (m *MockEnumRepository) ListEnumValues(ctx context.Context, enumType models.EnumType) ([]*models.EnumValue, error) {
	return m.ListEnumValuesFunc(ctx, enumType)
}

func (m *MockEnumRepository) FindEnumValue(ctx context.Context, enumType models.EnumType, sanitized string) (*models.EnumValue, error) {
	return m.FindEnumValueFunc(ctx, enumType, sanitized)
}

func (m *MockEnumRepository) CreateEnumValue(ctx context.Context, value *models.EnumValue) error {
	return m.CreateEnumValueFunc(ctx, value)
}

// MockSLARepository implements SLARepository for testing.
type MockSLARepository struct {
	ListSLAConfigFunc   func(ctx context.Context) ([]*models.SLAConfig, error)
	UpdateSLAConfigFunc func(ctx context.Context, stepName string, hours, days int, description string) error
	ResetSLAConfigFunc  func(ctx context.Context, entries []*models.SLAConfig) error
}

func (m *MockSLARepository) ListSLAConfig(ctx context.Context) ([]*models.SLAConfig, error) {
	return m.ListSLAConfigFunc(ctx)
}

func (m *MockSLARepository) UpdateSLAConfig(ctx context.Context, stepName string, hours, days int, description string) error {
	return m.UpdateSLAConfigFunc(ctx, stepName, hours, days, description)
}

func (m *MockSLARepository) ResetSLAConfig(ctx context.Context, entries []*models.SLAConfig) error {
	return m.ResetSLAConfigFunc(ctx, entries)
}

var (
	admin     = models.Actor{ID: "adm-1", Role: models.RoleAdmin}
	recruiter = models.Actor{ID: "rec-1", Role: models.RoleRecruiter}
)

func TestRegisterValueSuccess(t *testing.T) {
	var created *models.EnumValue
	repo := &MockEnumRepository{
		FindEnumValueFunc: func(ctx context.Context, enumType models.EnumType, sanitized string) (*models.EnumValue, error) {
			return nil, e.ErrNotFound
		},
		CreateEnumValueFunc: func(ctx context.Context, value *models.EnumValue) error {
			created = value
			return nil
		},
	}
	svc := NewEnumService(repo, zaptest.NewLogger(t))

	value, err := svc.RegisterValue(context.Background(), "company", "  Tata Consultancy  ", admin)
	require.NoError(t, err)
	assert.Equal(t, "Tata Consultancy", value.DisplayValue)
	assert.Equal(t, "tata_consultancy", value.SanitizedValue)
	assert.Equal(t, models.EnumCompany, value.EnumType)
	assert.Equal(t, created, value)
}

func TestRegisterValueAdminOnly(t *testing.T) {
	svc := NewEnumService(&MockEnumRepository{}, zaptest.NewLogger(t))

	_, err := svc.RegisterValue(context.Background(), "company", "TCS", recruiter)
	assert.ErrorIs(t, err, e.ErrForbidden)
}

func TestRegisterValueEmptyInput(t *testing.T) {
	svc := NewEnumService(&MockEnumRepository{}, zaptest.NewLogger(t))

	_, err := svc.RegisterValue(context.Background(), "company", "   ", admin)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestRegisterValueUnknownType(t *testing.T) {
	svc := NewEnumService(&MockEnumRepository{}, zaptest.NewLogger(t))

	_, err := svc.RegisterValue(context.Background(), "color", "blue", admin)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestRegisterValuePredefinedCollision(t *testing.T) {
	repo := &MockEnumRepository{
		FindEnumValueFunc: func(ctx context.Context, enumType models.EnumType, sanitized string) (*models.EnumValue, error) {
			t.Fatal("lookup must not run for predefined collisions")
			return nil, nil
		},
	}
	svc := NewEnumService(repo, zaptest.NewLogger(t))

	_, err := svc.RegisterValue(context.Background(), "priority", "High", admin)
	assert.ErrorIs(t, err, e.ErrDuplicate)
}

func TestRegisterValueIdempotent(t *testing.T) {
	stored := &models.EnumValue{
		EnumType:       models.EnumCompany,
		SanitizedValue: "tcs",
		DisplayValue:   "TCS",
	}
	repo := &MockEnumRepository{
		FindEnumValueFunc: func(ctx context.Context, enumType models.EnumType, sanitized string) (*models.EnumValue, error) {
			return stored, nil
		},
		CreateEnumValueFunc: func(ctx context.Context, value *models.EnumValue) error {
			t.Fatal("re-registering an existing value must not write")
			return nil
		},
	}
	svc := NewEnumService(repo, zaptest.NewLogger(t))

	value, err := svc.RegisterValue(context.Background(), "company", "TCS", admin)
	require.NoError(t, err)
	assert.Equal(t, stored, value)
}

func TestRegisterValueRacingCreate(t *testing.T) {
	stored := &models.EnumValue{
		EnumType:       models.EnumCompany,
		SanitizedValue: "tcs",
		DisplayValue:   "TCS",
	}
	lookups := 0
	repo := &MockEnumRepository{
		FindEnumValueFunc: func(ctx context.Context, enumType models.EnumType, sanitized string) (*models.EnumValue, error) {
			lookups++
			if lookups == 1 {
				return nil, e.ErrNotFound
			}
			return stored, nil
		},
		CreateEnumValueFunc: func(ctx context.Context, value *models.EnumValue) error {
			return e.ErrDuplicate
		},
	}
	svc := NewEnumService(repo, zaptest.NewLogger(t))

	value, err := svc.RegisterValue(context.Background(), "company", "TCS", admin)
	require.NoError(t, err)
	assert.Equal(t, stored, value)
	assert.Equal(t, 2, lookups)
}

func TestListValuesMergesPredefinedAndRegistered(t *testing.T) {
	repo := &MockEnumRepository{
		ListEnumValuesFunc: func(ctx context.Context, enumType models.EnumType) ([]*models.EnumValue, error) {
			return []*models.EnumValue{
				{EnumType: enumType, SanitizedValue: "weekend", DisplayValue: "Weekend"},
			}, nil
		},
	}
	svc := NewEnumService(repo, zaptest.NewLogger(t))

	values, err := svc.ListValues(context.Background(), "shift")
	require.NoError(t, err)
	assert.Equal(t, []string{"day", "night", "rotational", "Weekend"}, values)
}

func TestListValuesUnknownType(t *testing.T) {
	svc := NewEnumService(&MockEnumRepository{}, zaptest.NewLogger(t))

	_, err := svc.ListValues(context.Background(), "color")
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestUpdateStepAdminOnly(t *testing.T) {
	svc := NewSLAService(&MockSLARepository{}, zaptest.NewLogger(t))

	err := svc.UpdateStep(context.Background(), "Open", 24, 1, "", recruiter)
	assert.ErrorIs(t, err, e.ErrForbidden)
}

func TestUpdateStepRejectsNegativeBudget(t *testing.T) {
	svc := NewSLAService(&MockSLARepository{}, zaptest.NewLogger(t))

	err := svc.UpdateStep(context.Background(), "Open", -1, 0, "", admin)
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	err = svc.UpdateStep(context.Background(), "Open", 0, -1, "", admin)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestUpdateStepNotFound(t *testing.T) {
	repo := &MockSLARepository{
		UpdateSLAConfigFunc: func(ctx context.Context, stepName string, hours, days int, description string) error {
			return e.ErrNotFound
		},
	}
	svc := NewSLAService(repo, zaptest.NewLogger(t))

	err := svc.UpdateStep(context.Background(), "Nonexistent", 24, 1, "", admin)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestInitializeDefaults(t *testing.T) {
	var got []*models.SLAConfig
	repo := &MockSLARepository{
		ResetSLAConfigFunc: func(ctx context.Context, entries []*models.SLAConfig) error {
			got = entries
			return nil
		},
	}
	svc := NewSLAService(repo, zaptest.NewLogger(t))

	require.NoError(t, svc.InitializeDefaults(context.Background(), admin))
	assert.Len(t, got, len(models.DefaultSLAConfig()))

	err := svc.InitializeDefaults(context.Background(), recruiter)
	assert.ErrorIs(t, err, e.ErrForbidden)
}
