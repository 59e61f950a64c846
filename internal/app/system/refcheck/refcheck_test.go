package refcheck_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/refcheck"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type record struct {
	kind refcheck.Kind
	org  primitive.ObjectID
}

type fakeOwner struct {
	records map[primitive.ObjectID]record
	err     error
}

func (f fakeOwner) OwnerOf(_ context.Context, kind refcheck.Kind, id primitive.ObjectID) (primitive.ObjectID, bool, error) {
	if f.err != nil {
		return primitive.NilObjectID, false, f.err
	}
	rec, ok := f.records[id]
	if !ok || rec.kind != kind {
		return primitive.NilObjectID, false, nil
	}
	return rec.org, true, nil
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	orgA, orgB := primitive.NewObjectID(), primitive.NewObjectID()
	vehA, vehB := primitive.NewObjectID(), primitive.NewObjectID()
	v := refcheck.New(fakeOwner{records: map[primitive.ObjectID]record{
		vehA: {refcheck.Vehiculo, orgA},
		vehB: {refcheck.Vehiculo, orgB},
	}})
	scopeA := tenant.ScopedTo(orgA)

	id, err := v.Check(ctx, scopeA, refcheck.Vehiculo, vehA.Hex())
	require.NoError(t, err)
	assert.Equal(t, vehA, id)

	tests := []struct {
		name string
		kind refcheck.Kind
		raw  string
	}{
		{"malformed", refcheck.Vehiculo, "xyz"},
		{"empty", refcheck.Vehiculo, ""},
		{"missing", refcheck.Vehiculo, primitive.NewObjectID().Hex()},
		{"other organization", refcheck.Vehiculo, vehB.Hex()},
		{"wrong kind", refcheck.Empresa, vehA.Hex()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Check(ctx, scopeA, tt.kind, tt.raw)
			assert.ErrorIs(t, err, refcheck.ErrReference)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}

	// Unscoped callers only need the record to exist.
	_, err = v.Check(ctx, tenant.Unscoped(), refcheck.Vehiculo, vehB.Hex())
	assert.NoError(t, err)
	_, err = v.Check(ctx, tenant.Unscoped(), refcheck.Vehiculo, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, refcheck.ErrReference)
}

func TestCheckOptional(t *testing.T) {
	ctx := context.Background()
	org := primitive.NewObjectID()
	emp := primitive.NewObjectID()
	v := refcheck.New(fakeOwner{records: map[primitive.ObjectID]record{emp: {refcheck.Empresa, org}}})

	got, err := v.CheckOptional(ctx, tenant.ScopedTo(org), refcheck.Empresa, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := "  "
	got, err = v.CheckOptional(ctx, tenant.ScopedTo(org), refcheck.Empresa, &blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	raw := emp.Hex()
	got, err = v.CheckOptional(ctx, tenant.ScopedTo(org), refcheck.Empresa, &raw)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, emp, *got)
}

func TestCheck_LookupFailureIsInternal(t *testing.T) {
	v := refcheck.New(fakeOwner{err: errors.New("boom")})
	_, err := v.Check(context.Background(), tenant.ScopedTo(primitive.NewObjectID()), refcheck.Turno, primitive.NewObjectID().Hex())
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
