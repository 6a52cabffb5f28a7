package wish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
)

func ptr[T any](v T) *T {
	return &v
}

func TestAuthorizeMutation(t *testing.T) {
	w := &Wish{ID: 10, OwnerID: 1}

	assert.NoError(t, AuthorizeMutation(w, 1))

	for _, actor := range []uint{0, 2, 3, 100} {
		err := AuthorizeMutation(w, actor)
		assert.ErrorIs(t, err, apperrors.ErrOwnershipViolation, "actor %d", actor)
	}
}

func TestAuthorizePriceChange(t *testing.T) {
	tests := []struct {
		name    string
		raised  int64
		req     UpdateRequest
		wantErr error
	}{
		{name: "no funding, new price", raised: 0, req: UpdateRequest{Price: ptr(int64(150))}},
		{name: "funding, no price", raised: 50, req: UpdateRequest{Description: ptr("nicer")}},
		{name: "funding, same price", raised: 50, req: UpdateRequest{Price: ptr(int64(100))}},
		{name: "funding, new price", raised: 50, req: UpdateRequest{Price: ptr(int64(200))}, wantErr: apperrors.ErrFundingInProgress},
		{name: "funding, zero price", raised: 1, req: UpdateRequest{Price: ptr(int64(0))}, wantErr: apperrors.ErrFundingInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wish{Price: 100, Raised: tt.raised}
			err := AuthorizePriceChange(w, &tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMergeUpdateIsPartial(t *testing.T) {
	w := &Wish{
		Name:        "Bike",
		Link:        "https://shop.example.com/bike",
		Image:       "https://img.example.com/bike.png",
		Price:       100,
		Description: "red one",
	}

	updates := MergeUpdate(w, &UpdateRequest{Description: ptr("blue one")})

	assert.Equal(t, map[string]interface{}{"description": "blue one"}, updates)
	assert.Equal(t, "Bike", w.Name)
	assert.Equal(t, "https://shop.example.com/bike", w.Link)
	assert.Equal(t, "https://img.example.com/bike.png", w.Image)
	assert.Equal(t, int64(100), w.Price)
	assert.Equal(t, "blue one", w.Description)
}

func TestMergeUpdateSkipsUnchangedValues(t *testing.T) {
	w := &Wish{Name: "Bike", Price: 100}
	updates := MergeUpdate(w, &UpdateRequest{Name: ptr("Bike"), Price: ptr(int64(100))})
	assert.Empty(t, updates)
}

func TestRequestValidation(t *testing.T) {
	valid := CreateRequest{Name: "Книга", Description: "в мягкой обложке", Price: 0}
	assert.NoError(t, valid.validate())

	long := make([]rune, 251)
	for i := range long {
		long[i] = 'я'
	}
	tooLong := valid
	tooLong.Name = string(long)
	assert.ErrorIs(t, tooLong.validate(), apperrors.ErrValidation)

	// 250 cyrillic characters are more than 250 bytes but still fit
	fits := valid
	fits.Name = string(long[:250])
	assert.NoError(t, fits.validate())

	negative := valid
	negative.Price = -1
	assert.ErrorIs(t, negative.validate(), apperrors.ErrValidation)

	assert.ErrorIs(t, (&UpdateRequest{Description: ptr("")}).validate(), apperrors.ErrValidation)
	assert.NoError(t, (&UpdateRequest{}).validate())
}
