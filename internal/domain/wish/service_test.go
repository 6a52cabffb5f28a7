package wish

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/pkg/apperrors"
	"github.com/your-org/kupipodariday-backend/internal/pkg/logger"
)

type memoryRepository struct {
	mu         sync.Mutex
	nextID     uint
	clock      time.Time
	wishes     map[uint]Wish
	collection map[uint][]uint
	finds      int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		clock:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		wishes:     make(map[uint]Wish),
		collection: make(map[uint][]uint),
	}
}

func (r *memoryRepository) Create(_ context.Context, w *Wish) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.clock = r.clock.Add(time.Minute)
	w.ID = r.nextID
	w.CreatedAt = r.clock
	w.UpdatedAt = r.clock
	r.wishes[w.ID] = *w
	r.collection[w.OwnerID] = append(r.collection[w.OwnerID], w.ID)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uint, _ bool) (*Wish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wishes[id]
	if !ok {
		return nil, apperrors.NotFound("wish")
	}
	return &w, nil
}

func (r *memoryRepository) Find(_ context.Context, q Query) ([]Wish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++

	out := make([]Wish, 0, len(r.wishes))
	for _, w := range r.wishes {
		if q.OwnerID != 0 && w.OwnerID != q.OwnerID {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.OrderBy == OrderByCopied && a.Copied != b.Copied {
			return a.Copied > b.Copied
		}
		if q.OrderBy != OrderByCopied && !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *memoryRepository) Updates(_ context.Context, w *Wish, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.wishes[w.ID]
	if !ok {
		return apperrors.NotFound("wish")
	}
	for k, v := range fields {
		switch k {
		case "name":
			stored.Name = v.(string)
		case "link":
			stored.Link = v.(string)
		case "image":
			stored.Image = v.(string)
		case "price":
			stored.Price = v.(int64)
		case "description":
			stored.Description = v.(string)
		}
	}
	r.wishes[w.ID] = stored
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wishes[id]; !ok {
		return apperrors.NotFound("wish")
	}
	delete(r.wishes, id)
	for userID, ids := range r.collection {
		kept := ids[:0]
		for _, wishID := range ids {
			if wishID != id {
				kept = append(kept, wishID)
			}
		}
		r.collection[userID] = kept
	}
	return nil
}

func (r *memoryRepository) IncrementCopied(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wishes[id]
	if !ok {
		return apperrors.NotFound("wish")
	}
	w.Copied++
	r.wishes[id] = w
	return nil
}

func (r *memoryRepository) InCollection(_ context.Context, userID, wishID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.collection[userID] {
		if id == wishID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) AddToCollection(_ context.Context, userID, wishID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collection[userID] = append(r.collection[userID], wishID)
	return nil
}

func (r *memoryRepository) Collection(_ context.Context, userID uint) ([]Wish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.collection[userID]
	out := make([]Wish, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, r.wishes[ids[i]])
	}
	return out, nil
}

// Transaction restores the previous state when fn fails
func (r *memoryRepository) Transaction(_ context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	wishes := make(map[uint]Wish, len(r.wishes))
	for k, v := range r.wishes {
		wishes[k] = v
	}
	collection := make(map[uint][]uint, len(r.collection))
	for k, v := range r.collection {
		collection[k] = append([]uint(nil), v...)
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.wishes = wishes
		r.collection = collection
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memoryRepository) setRaised(id uint, raised int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.wishes[id]
	w.Raised = raised
	r.wishes[id] = w
}

func (r *memoryRepository) setCopied(id uint, copied int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.wishes[id]
	w.Copied = copied
	r.wishes[id] = w
}

type knownUsers map[uint]bool

func (k knownUsers) GetByID(_ context.Context, id uint) (*user.User, error) {
	if !k[id] {
		return nil, apperrors.NotFound("user")
	}
	return &user.User{ID: id}, nil
}

func newTestService(t *testing.T, countFailedCopies bool) (*Service, *memoryRepository) {
	t.Helper()
	cfg := &config.Config{Rules: config.RulesConfig{
		CountFailedCopies: countFailedCopies,
		RankingLimit:      40,
	}}
	repo := newMemoryRepository()
	users := knownUsers{1: true, 2: true, 3: true}
	return NewService(repo, users, nil, cfg, logger.Discard()), repo
}

func createWish(t *testing.T, svc *Service, ownerID uint, price int64) *Wish {
	t.Helper()
	w, err := svc.Create(context.Background(), ownerID, &CreateRequest{
		Name:        "Telescope",
		Link:        "https://shop.example.com/telescope",
		Image:       "https://img.example.com/telescope.png",
		Price:       price,
		Description: "for watching the stars",
	})
	require.NoError(t, err)
	return w
}

func TestCreateStartsUnfundedAndUncopied(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 100)

	assert.Zero(t, w.Raised)
	assert.Zero(t, w.Copied)

	held, err := repo.InCollection(context.Background(), 1, w.ID)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestCreateRequiresKnownOwner(t *testing.T) {
	svc, _ := newTestService(t, false)
	_, err := svc.Create(context.Background(), 99, &CreateRequest{Name: "x", Description: "y"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestScenarioA_ForeignUpdateIsOwnershipViolation(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 100)

	_, err := svc.ApplyUpdate(context.Background(), w.ID, &UpdateRequest{Price: ptr(int64(150))}, 2)
	assert.ErrorIs(t, err, apperrors.ErrOwnershipViolation)

	stored, _ := repo.FindByID(context.Background(), w.ID, false)
	assert.Equal(t, int64(100), stored.Price)
}

func TestApplyUpdateChecksOwnershipFirst(t *testing.T) {
	svc, _ := newTestService(t, false)
	w := createWish(t, svc, 1, 100)

	_, err := svc.ApplyUpdate(context.Background(), w.ID, &UpdateRequest{Price: ptr(int64(-5))}, 2)
	assert.ErrorIs(t, err, apperrors.ErrOwnershipViolation)

	_, err = svc.ApplyUpdate(context.Background(), w.ID, &UpdateRequest{Price: ptr(int64(-5))}, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestScenarioB_OwnerUpdatesPrice(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 100)

	updated, err := svc.ApplyUpdate(context.Background(), w.ID, &UpdateRequest{Price: ptr(int64(150))}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), updated.Price)

	stored, _ := repo.FindByID(context.Background(), w.ID, false)
	assert.Equal(t, int64(150), stored.Price)
}

func TestScenarioC_PriceLockedOnceFunded(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 100)
	repo.setRaised(w.ID, 50)

	_, err := svc.ApplyUpdate(context.Background(), w.ID, &UpdateRequest{Price: ptr(int64(200))}, 1)
	assert.ErrorIs(t, err, apperrors.ErrFundingInProgress)

	// other fields stay editable
	updated, err := svc.ApplyUpdate(context.Background(), w.ID, &UpdateRequest{Description: ptr("a bigger one")}, 1)
	require.NoError(t, err)
	assert.Equal(t, "a bigger one", updated.Description)
	assert.Equal(t, int64(100), updated.Price)
}

func TestApplyUpdateLeavesAbsentFieldsUntouched(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 100)

	_, err := svc.ApplyUpdate(context.Background(), w.ID, &UpdateRequest{Description: ptr("refurbished")}, 1)
	require.NoError(t, err)

	stored, _ := repo.FindByID(context.Background(), w.ID, false)
	assert.Equal(t, "refurbished", stored.Description)
	assert.Equal(t, w.Name, stored.Name)
	assert.Equal(t, w.Link, stored.Link)
	assert.Equal(t, w.Image, stored.Image)
	assert.Equal(t, w.Price, stored.Price)
}

func TestApplyUpdateMissingWish(t *testing.T) {
	svc, _ := newTestService(t, false)
	_, err := svc.ApplyUpdate(context.Background(), 404, &UpdateRequest{}, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveWish(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 100)
	ctx := context.Background()

	_, err := svc.RemoveWish(ctx, w.ID, 2)
	assert.ErrorIs(t, err, apperrors.ErrOwnershipViolation)

	removed, err := svc.RemoveWish(ctx, w.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, w.ID, removed.ID)

	_, err = repo.FindByID(ctx, w.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	collection, err := svc.Collection(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, collection.Wishes)
}

func TestRemoveFundedWishIsRefused(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 1000)
	repo.setRaised(w.ID, 500)
	ctx := context.Background()

	_, err := svc.RemoveWish(ctx, w.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrFundingInProgress)

	stored, err := repo.FindByID(ctx, w.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(500), stored.Raised)

	held, err := repo.InCollection(ctx, 1, w.ID)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestScenarioD_CopyCountingFailedCopies(t *testing.T) {
	svc, repo := newTestService(t, true)
	w := createWish(t, svc, 1, 100)
	ctx := context.Background()

	collection, err := svc.CopyWish(ctx, w.ID, 2)
	require.NoError(t, err)
	require.Len(t, collection.Wishes, 1)
	assert.Equal(t, w.ID, collection.Wishes[0].ID)

	stored, _ := repo.FindByID(ctx, w.ID, false)
	assert.Equal(t, int64(1), stored.Copied)

	_, err = svc.CopyWish(ctx, w.ID, 2)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCopy)

	// the rejected copy still counts under this policy
	stored, _ = repo.FindByID(ctx, w.ID, false)
	assert.Equal(t, int64(2), stored.Copied)

	collection, err = svc.Collection(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, collection.Wishes, 1)
}

func TestScenarioD_CopyIsAtomicByDefault(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 100)
	ctx := context.Background()

	collection, err := svc.CopyWish(ctx, w.ID, 2)
	require.NoError(t, err)
	assert.Len(t, collection.Wishes, 1)

	stored, _ := repo.FindByID(ctx, w.ID, false)
	assert.Equal(t, int64(1), stored.Copied)

	_, err = svc.CopyWish(ctx, w.ID, 2)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCopy)

	stored, _ = repo.FindByID(ctx, w.ID, false)
	assert.Equal(t, int64(1), stored.Copied)

	collection, err = svc.Collection(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, collection.Wishes, 1)
}

func TestCopyKeepsReferenceToSameWish(t *testing.T) {
	svc, _ := newTestService(t, false)
	w := createWish(t, svc, 1, 100)

	collection, err := svc.CopyWish(context.Background(), w.ID, 2)
	require.NoError(t, err)
	require.Len(t, collection.Wishes, 1)
	assert.Equal(t, w.ID, collection.Wishes[0].ID)
	assert.Equal(t, uint(1), collection.Wishes[0].OwnerID)
}

func TestCopyOwnWishIsDuplicate(t *testing.T) {
	svc, repo := newTestService(t, false)
	w := createWish(t, svc, 1, 100)

	_, err := svc.CopyWish(context.Background(), w.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCopy)

	stored, _ := repo.FindByID(context.Background(), w.ID, false)
	assert.Zero(t, stored.Copied)
}

func TestCopyMissingWishOrUser(t *testing.T) {
	for _, countFailed := range []bool{false, true} {
		svc, _ := newTestService(t, countFailed)
		w := createWish(t, svc, 1, 100)

		_, err := svc.CopyWish(context.Background(), 404, 2)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = svc.CopyWish(context.Background(), w.ID, 99)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	}
}

func TestRankTop(t *testing.T) {
	svc, repo := newTestService(t, false)
	ctx := context.Background()
	for i := 0; i < 45; i++ {
		w := createWish(t, svc, 1, 100)
		repo.setCopied(w.ID, int64((i*7)%13))
	}

	ranking := svc.RankTop(0)
	first, err := ranking.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, first, 40)
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Copied, first[i].Copied)
	}

	// restartable and idempotent
	second, err := ranking.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := svc.RankTop(0).Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestRankRecent(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()
	for i := 0; i < 42; i++ {
		createWish(t, svc, 1, 100)
	}

	wishes, err := svc.RankRecent(0).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, wishes, 40)
	assert.Equal(t, uint(42), wishes[0].ID)
	for i := 1; i < len(wishes); i++ {
		assert.True(t, wishes[i-1].CreatedAt.After(wishes[i].CreatedAt))
	}
}

func TestRankingIsLazy(t *testing.T) {
	svc, repo := newTestService(t, false)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		createWish(t, svc, 1, 100)
	}

	ranking := svc.RankRecent(3)
	assert.Zero(t, repo.finds)

	seen := 0
	for _, err := range ranking.All(ctx) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
	assert.Equal(t, 1, repo.finds)

	wishes, err := ranking.Collect(ctx)
	require.NoError(t, err)
	assert.Len(t, wishes, 3)
	assert.Equal(t, 2, repo.finds)
}

func TestRankingLimitIsCapped(t *testing.T) {
	svc, _ := newTestService(t, false)
	assert.Equal(t, 40, svc.rankingLimit(0))
	assert.Equal(t, 40, svc.rankingLimit(1000))
	assert.Equal(t, 10, svc.rankingLimit(10))
}
