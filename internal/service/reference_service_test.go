package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

func TestReferenceService_LawFirmCRUD(t *testing.T) {
	refs := newMemoryRefs()
	svc := NewReferenceService(refs)
	ctx := context.Background()
	admin := Actor{ID: uuid.New(), Role: valueobject.RoleAdmin}
	code := "abc1"

	f, err := svc.CreateLawFirm(ctx, admin, LawFirmInput{Name: " Smith & Lee ", ReferralCode: &code})
	require.NoError(t, err)
	assert.Equal(t, "Smith & Lee", f.Name)
	require.NotNil(t, f.ReferralCode)
	assert.Equal(t, "ABC1", *f.ReferralCode)

	_, err = svc.CreateLawFirm(ctx, admin, LawFirmInput{Name: "Other", ReferralCode: &code})
	assert.True(t, apperror.IsConflict(err))

	firms, err := svc.ListLawFirms(ctx, "smith")
	require.NoError(t, err)
	assert.Len(t, firms, 1)

	updated, err := svc.UpdateLawFirm(ctx, admin, f.ID, LawFirmInput{Name: "Smith, Lee & Co"})
	require.NoError(t, err)
	assert.Nil(t, updated.ReferralCode)

	require.NoError(t, svc.DeleteLawFirm(ctx, admin, f.ID))
	_, err = svc.GetLawFirm(ctx, f.ID)
	assert.ErrorIs(t, err, apperror.ErrLawFirmNotFound)
}

func TestReferenceService_WritesAreAdminOnly(t *testing.T) {
	svc := NewReferenceService(newMemoryRefs())
	landlord := Actor{ID: uuid.New(), Role: valueobject.RoleLandlord}

	_, err := svc.CreateLawFirm(context.Background(), landlord, LawFirmInput{Name: "Firm"})
	assert.True(t, apperror.IsForbidden(err))
	_, err = svc.SetPrice(context.Background(), landlord, "FTPR", 100)
	assert.True(t, apperror.IsForbidden(err))
}

func TestReferenceService_SetPrice(t *testing.T) {
	refs := newMemoryRefs()
	svc := NewReferenceService(refs)
	admin := Actor{ID: uuid.New(), Role: valueobject.RoleAdmin}

	cp, err := svc.SetPrice(context.Background(), admin, "holdover", 4500)
	require.NoError(t, err)
	assert.Equal(t, valueobject.CaseTypeHoldover, cp.CaseType)
	assert.Equal(t, int64(4500), refs.prices[valueobject.CaseTypeHoldover])
	require.NotNil(t, cp.UpdatedBy)
	assert.Equal(t, admin.ID, *cp.UpdatedBy)

	_, err = svc.SetPrice(context.Background(), admin, "holdover", -1)
	assert.True(t, apperror.IsValidation(err))
	_, err = svc.SetPrice(context.Background(), admin, "nope", 100)
	assert.True(t, apperror.IsValidation(err))
}
