package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID     map[int64]*domain.User
	nextID   int64
	findErr  error // if set, FindByUsername returns this error
	lastList ports.ListFilter
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) conflict(u *domain.User) error {
	for _, existing := range r.byID {
		if existing.ID == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return domain.NewConflict("user", "username", u.Username)
		}
		if u.Email != nil && existing.Email != nil && *existing.Email == *u.Email {
			return domain.NewConflict("user", "email", *u.Email)
		}
	}
	return nil
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if err := r.conflict(u); err != nil {
		return nil, err
	}
	r.nextID++
	stored := cloneUser(u)
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFound("user", id)
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.NewNotFound("user", username)
}

func (r *stubUserRepo) List(_ context.Context, f ports.ListFilter) ([]*domain.User, error) {
	r.lastList = f
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*domain.User{}
	for i, id := range ids {
		if i < f.Offset || len(out) >= f.Limit {
			continue
		}
		out = append(out, cloneUser(r.byID[id]))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, ok := r.byID[u.ID]; !ok {
		return nil, domain.NewNotFound("user", u.ID)
	}
	if err := r.conflict(u); err != nil {
		return nil, err
	}
	r.byID[u.ID] = cloneUser(u)
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.NewNotFound("user", id)
	}
	delete(r.byID, id)
	return nil
}

type stubBookRepo struct {
	byID      map[int64]*domain.Book
	nextID    int64
	createErr error
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{byID: make(map[int64]*domain.Book)}
}

func (r *stubBookRepo) Create(_ context.Context, b *domain.Book) (*domain.Book, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *b
	clone.ID = r.nextID
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubBookRepo) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFound("book", id)
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookRepo) List(_ context.Context, f ports.ListFilter) ([]*domain.Book, error) {
	out := []*domain.Book{}
	for id := int64(1); id <= r.nextID; id++ {
		if b, ok := r.byID[id]; ok {
			clone := *b
			out = append(out, &clone)
		}
	}
	if f.Offset >= len(out) {
		return []*domain.Book{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *stubBookRepo) Update(_ context.Context, b *domain.Book) (*domain.Book, error) {
	if _, ok := r.byID[b.ID]; !ok {
		return nil, domain.NewNotFound("book", b.ID)
	}
	clone := *b
	r.byID[b.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubBookRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.NewNotFound("book", id)
	}
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// Security stubs
// ---------------------------------------------------------------------------

// stubHasher produces "salt$plain" digests; each Hash call uses a fresh salt.
type stubHasher struct {
	calls    int
	verifies []string // digests passed to Verify
	hashErr  error
}

func (h *stubHasher) Hash(plain string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	h.calls++
	return fmt.Sprintf("s%d$%s", h.calls, plain), nil
}

func (h *stubHasher) Verify(plain, digest string) bool {
	h.verifies = append(h.verifies, digest)
	_, stored, ok := strings.Cut(digest, "$")
	return ok && stored == plain
}

// stubTokens encodes the subject into the token string.
type stubTokens struct {
	issued   []string
	issueErr error
}

func (s *stubTokens) Issue(subject string, ttl time.Duration) (ports.Token, error) {
	if s.issueErr != nil {
		return ports.Token{}, s.issueErr
	}
	s.issued = append(s.issued, subject)
	return ports.Token{Value: "tok:" + subject, ExpiresAt: time.Unix(1_900_000_000, 0)}, nil
}

func (s *stubTokens) Validate(token string) (string, error) {
	subject, ok := strings.CutPrefix(token, "tok:")
	if !ok {
		return "", fmt.Errorf("%w: bad token", domain.ErrUnauthorized)
	}
	return subject, nil
}

var errStoreDown = errors.New("store unavailable")
