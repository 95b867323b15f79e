package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/mail"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
)

// emptySettingStore answers every name lookup with no rows.
type emptySettingStore struct {
	recordStoreStub
}

func (emptySettingStore) GetByName(ctx context.Context, name string) (*models.Record, error) {
	return nil, sql.ErrNoRows
}

type mailerMock struct {
	verifyErr error
	verified  bool
}

func (m *mailerMock) Verify(ctx context.Context) error {
	m.verified = true
	return m.verifyErr
}

func (m *mailerMock) Send(ctx context.Context, msg mail.Message) error {
	return nil
}

func settingConfig() entity.Config {
	return entity.Config{
		Name:             "setting",
		Table:            "settings",
		APIPath:          "/settings",
		SearchableFields: []string{"name", "description"},
		DefaultLimit:     20,
		MaxLimit:         100,
	}
}

func newSettingService(store entity.Store, mailer mail.Transport) *SettingService {
	base := entity.NewService(store, settingConfig(), nil, nil)
	return NewSettingService(base, mailer, nil, nil)
}

func TestSettingServiceCreateRejectsDuplicateName(t *testing.T) {
	// the stub store resolves every name, so the pre-check must trip
	svc := newSettingService(recordStoreStub{}, nil)

	_, err := svc.Create(context.Background(), entity.CreateInput{Name: "smtp_relay"}, 9)
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.ErrConflict))
	assert.Equal(t, "setting with this name already exists", appErrors.FromError(err).Message)
}

func TestSettingServiceCreatePassesWhenNameFree(t *testing.T) {
	svc := newSettingService(emptySettingStore{}, nil)

	rec, err := svc.Create(context.Background(), entity.CreateInput{Name: "smtp_relay"}, 9)
	require.NoError(t, err)
	assert.Equal(t, "smtp_relay", rec.Name)
}

func TestSettingServiceGetByNameMissing(t *testing.T) {
	svc := newSettingService(emptySettingStore{}, nil)
	_, err := svc.GetByName(context.Background(), "unknown")
	assert.True(t, appErrors.IsKind(err, appErrors.ErrNotFound))
}

func TestSettingServiceGetByNameRequiresName(t *testing.T) {
	svc := newSettingService(emptySettingStore{}, nil)
	_, err := svc.GetByName(context.Background(), "")
	assert.True(t, appErrors.IsKind(err, appErrors.ErrValidation))
}

func TestSettingServiceVerifySMTPNotConfigured(t *testing.T) {
	svc := newSettingService(emptySettingStore{}, nil)

	result := svc.VerifySMTP(context.Background())
	assert.False(t, result.OK)
	assert.Contains(t, result.Detail, "not configured")
}

func TestSettingServiceVerifySMTP(t *testing.T) {
	mailer := &mailerMock{}
	svc := newSettingService(emptySettingStore{}, mailer)

	result := svc.VerifySMTP(context.Background())
	assert.True(t, result.OK)
	assert.True(t, mailer.verified)

	mailer.verifyErr = errors.New("relay unreachable")
	result = svc.VerifySMTP(context.Background())
	assert.False(t, result.OK)
	assert.Contains(t, result.Detail, "relay unreachable")
}

func TestSettingServicePingSecondaryNotConfigured(t *testing.T) {
	svc := newSettingService(emptySettingStore{}, nil)

	result := svc.PingSecondaryDB(context.Background())
	assert.False(t, result.OK)
	assert.Contains(t, result.Detail, "not configured")
}
