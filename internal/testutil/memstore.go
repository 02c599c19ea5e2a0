package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MemoryStore is an in-process implementation of every repository with the
// same conditional-update semantics as the postgres store. Transactions are
// serialized and rolled back through an undo log.
type MemoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	profiles map[int64]*domain.Profile
	likes    map[[2]int64]*domain.LikeEdge
	matches  map[uuid.UUID]*domain.Match
	pairs    map[[2]int64]uuid.UUID
	passes   map[uuid.UUID]*domain.Pass
	sessions map[uuid.UUID]*domain.ChatSession
	reports  map[uuid.UUID]*domain.Report

	// BeforeConsume, when set, runs at the start of every Consume call
	// outside the store lock. Tests use it to interleave a competing consumer.
	BeforeConsume func(userID int64)
	// ActivePassErr, when set, runs before every ActiveByUser call and a
	// non-nil result is returned as the call's error.
	ActivePassErr func(userID int64) error
	// Err, when set, is returned by every repository call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[int64]*domain.Profile),
		likes:    make(map[[2]int64]*domain.LikeEdge),
		matches:  make(map[uuid.UUID]*domain.Match),
		pairs:    make(map[[2]int64]uuid.UUID),
		passes:   make(map[uuid.UUID]*domain.Pass),
		sessions: make(map[uuid.UUID]*domain.ChatSession),
		reports:  make(map[uuid.UUID]*domain.Report),
	}
}

// Repositories returns repositories backed by the store.
func (m *MemoryStore) Repositories() *repository.Repositories {
	return m.repositories(nil)
}

func (m *MemoryStore) repositories(tx *memTx) *repository.Repositories {
	return &repository.Repositories{
		Profile:     &memProfiles{m: m, tx: tx},
		Like:        &memLikes{m: m, tx: tx},
		Match:       &memMatches{m: m, tx: tx},
		Pass:        &memPasses{m: m, tx: tx},
		ChatSession: &memSessions{m: m, tx: tx},
		Report:      &memReports{m: m, tx: tx},
		Tx:          &memTransactor{m: m, tx: tx},
	}
}

type memTx struct {
	undo []func()
}

// record registers an undo step. Callers hold m.mu.
func (m *MemoryStore) record(tx *memTx, undo func()) {
	if tx != nil {
		tx.undo = append(tx.undo, undo)
	}
}

type memTransactor struct {
	m  *MemoryStore
	tx *memTx
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	if t.tx != nil {
		return fn(t.m.repositories(t.tx))
	}

	t.m.txMu.Lock()
	defer t.m.txMu.Unlock()

	tx := &memTx{}
	if err := fn(t.m.repositories(tx)); err != nil {
		t.m.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		t.m.mu.Unlock()
		return err
	}
	return nil
}

// Passes returns a snapshot of every pass held by userID.
func (m *MemoryStore) Passes(userID int64) []*domain.Pass {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Pass
	for _, p := range m.passes {
		if p.UserID == userID {
			out = append(out, clonePass(p))
		}
	}
	return out
}

// Sessions returns a snapshot of every chat session.
func (m *MemoryStore) Sessions() []*domain.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ChatSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		c := *s
		out = append(out, &c)
	}
	return out
}

// MatchCount returns how many matches exist.
func (m *MemoryStore) MatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matches)
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	return &c
}

func clonePass(p *domain.Pass) *domain.Pass {
	c := *p
	if p.ConsumedAt != nil {
		t := *p.ConsumedAt
		c.ConsumedAt = &t
	}
	return &c
}

// profiles

type memProfiles struct {
	m  *MemoryStore
	tx *memTx
}

func (r *memProfiles) Create(ctx context.Context, profile *domain.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	if _, ok := r.m.profiles[profile.UserID]; ok {
		return domain.ErrConflict
	}
	r.m.profiles[profile.UserID] = cloneProfile(profile)
	id := profile.UserID
	r.m.record(r.tx, func() { delete(r.m.profiles, id) })
	return nil
}

func (r *memProfiles) Upsert(ctx context.Context, profile *domain.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	existing, ok := r.m.profiles[profile.UserID]
	if !ok {
		r.m.profiles[profile.UserID] = cloneProfile(profile)
		id := profile.UserID
		r.m.record(r.tx, func() { delete(r.m.profiles, id) })
		return nil
	}
	prev := cloneProfile(existing)
	existing.Username = profile.Username
	existing.Name = profile.Name
	existing.Age = profile.Age
	existing.Location = profile.Location
	existing.University = profile.University
	existing.Bio = profile.Bio
	existing.Gender = profile.Gender
	existing.UpdatedAt = profile.UpdatedAt
	r.m.record(r.tx, func() { r.m.profiles[prev.UserID] = prev })
	return nil
}

func (r *memProfiles) GetByID(ctx context.Context, userID int64) (*domain.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	p, ok := r.m.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *memProfiles) GetByIDs(ctx context.Context, userIDs []int64) ([]*domain.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	out := []*domain.Profile{}
	for _, id := range userIDs {
		if p, ok := r.m.profiles[id]; ok {
			out = append(out, cloneProfile(p))
		}
	}
	return out, nil
}

func (r *memProfiles) Update(ctx context.Context, profile *domain.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	if prev, ok := r.m.profiles[profile.UserID]; ok {
		r.m.record(r.tx, func() { r.m.profiles[prev.UserID] = prev })
	}
	r.m.profiles[profile.UserID] = cloneProfile(profile)
	return nil
}

func (r *memProfiles) mutate(userID int64, fn func(p *domain.Profile)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	p, ok := r.m.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	prev := cloneProfile(p)
	fn(p)
	r.m.record(r.tx, func() { r.m.profiles[userID] = prev })
	return nil
}

func (r *memProfiles) UpdatePreferences(ctx context.Context, userID int64, filters domain.Filters) error {
	return r.mutate(userID, func(p *domain.Profile) {
		p.Preferences = datatypes.NewJSONType(filters)
	})
}

func (r *memProfiles) SetBanned(ctx context.Context, userID int64, banned bool) error {
	return r.mutate(userID, func(p *domain.Profile) {
		p.Banned = banned
	})
}

func (r *memProfiles) MarkVerified(ctx context.Context, userID int64, at time.Time) error {
	return r.mutate(userID, func(p *domain.Profile) {
		p.Verified = true
		p.VerifiedAt = &at
	})
}

func (r *memProfiles) ListCandidates(ctx context.Context, q repository.CandidateQuery) ([]*domain.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	excluded := make(map[int64]bool, len(q.Exclude))
	for _, id := range q.Exclude {
		excluded[id] = true
	}

	var out []*domain.Profile
	for _, p := range r.m.profiles {
		switch {
		case p.UserID == q.ViewerID,
			p.Banned,
			!p.IsComplete(),
			p.Age < q.Filters.MinAge || p.Age > q.Filters.MaxAge,
			excluded[p.UserID],
			q.Filters.Location != "" && p.Location != q.Filters.Location,
			q.Filters.VerifiedOnly && !p.Verified,
			q.Filters.Gender != "" && p.Gender != q.Filters.Gender:
			continue
		}
		if _, liked := r.m.likes[[2]int64{q.ViewerID, p.UserID}]; liked {
			continue
		}
		out = append(out, cloneProfile(p))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// likes

type memLikes struct {
	m  *MemoryStore
	tx *memTx
}

func (r *memLikes) Create(ctx context.Context, edge *domain.LikeEdge) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return false, r.m.Err
	}
	key := [2]int64{edge.FromUserID, edge.ToUserID}
	if _, ok := r.m.likes[key]; ok {
		return false, nil
	}
	c := *edge
	r.m.likes[key] = &c
	r.m.record(r.tx, func() { delete(r.m.likes, key) })
	return true, nil
}

func (r *memLikes) Exists(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return false, r.m.Err
	}
	_, ok := r.m.likes[[2]int64{fromUserID, toUserID}]
	return ok, nil
}

func (r *memLikes) LikedIDs(ctx context.Context, fromUserID int64) ([]int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var ids []int64
	for key := range r.m.likes {
		if key[0] == fromUserID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

// matches

type memMatches struct {
	m  *MemoryStore
	tx *memTx
}

func (r *memMatches) Create(ctx context.Context, match *domain.Match) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return false, r.m.Err
	}
	key := [2]int64{match.UserAID, match.UserBID}
	if _, ok := r.m.pairs[key]; ok {
		return false, nil
	}
	c := *match
	r.m.matches[match.ID] = &c
	r.m.pairs[key] = match.ID
	id := match.ID
	r.m.record(r.tx, func() {
		delete(r.m.matches, id)
		delete(r.m.pairs, key)
	})
	return true, nil
}

func (r *memMatches) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	match, ok := r.m.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	c := *match
	return &c, nil
}

func (r *memMatches) GetByPair(ctx context.Context, userID, otherID int64) (*domain.Match, error) {
	a, b := domain.CanonicalPair(userID, otherID)
	r.m.mu.Lock()
	id, ok := r.m.pairs[[2]int64{a, b}]
	r.m.mu.Unlock()
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memMatches) ListByUser(ctx context.Context, userID int64) ([]*domain.Match, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var out []*domain.Match
	for _, match := range r.m.matches {
		if match.Includes(userID) {
			c := *match
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memMatches) UpdateState(ctx context.Context, id uuid.UUID, from, to domain.MatchState) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return false, r.m.Err
	}
	match, ok := r.m.matches[id]
	if !ok {
		return false, domain.ErrMatchNotFound
	}
	if match.State != from {
		return false, nil
	}
	match.State = to
	r.m.record(r.tx, func() { match.State = from })
	return true, nil
}

// passes

type memPasses struct {
	m  *MemoryStore
	tx *memTx
}

func (r *memPasses) Create(ctx context.Context, pass *domain.Pass) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	r.m.passes[pass.ID] = clonePass(pass)
	id := pass.ID
	r.m.record(r.tx, func() { delete(r.m.passes, id) })
	return nil
}

func (r *memPasses) FindByReference(ctx context.Context, referenceID string) (*domain.Pass, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var found *domain.Pass
	for _, p := range r.m.passes {
		if p.ReferenceID == referenceID && (found == nil || p.PurchasedAt.Before(found.PurchasedAt)) {
			found = p
		}
	}
	if found == nil {
		return nil, nil
	}
	return clonePass(found), nil
}

// oldestActive returns the stored pass pointer. Callers hold m.mu.
func (r *memPasses) oldestActive(userID int64, now time.Time) *domain.Pass {
	var oldest *domain.Pass
	for _, p := range r.m.passes {
		if p.UserID != userID || !p.IsActive(now) {
			continue
		}
		if oldest == nil || p.PurchasedAt.Before(oldest.PurchasedAt) {
			oldest = p
		}
	}
	return oldest
}

func (r *memPasses) ActiveByUser(ctx context.Context, userID int64, now time.Time) (*domain.Pass, error) {
	if hook := r.m.ActivePassErr; hook != nil {
		if err := hook(userID); err != nil {
			return nil, err
		}
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if p := r.oldestActive(userID, now); p != nil {
		return clonePass(p), nil
	}
	return nil, nil
}

func (r *memPasses) Consume(ctx context.Context, userID int64, now time.Time) (*domain.Pass, error) {
	if hook := r.m.BeforeConsume; hook != nil {
		hook(userID)
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	p := r.oldestActive(userID, now)
	if p == nil {
		return nil, nil
	}
	consumedAt := now
	p.ConsumedAt = &consumedAt
	r.m.record(r.tx, func() { p.ConsumedAt = nil })
	return clonePass(p), nil
}

func (r *memPasses) ListByUser(ctx context.Context, userID int64) ([]*domain.Pass, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	out := []*domain.Pass{}
	for _, p := range r.m.passes {
		if p.UserID == userID {
			out = append(out, clonePass(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PurchasedAt.After(out[j].PurchasedAt)
	})
	return out, nil
}

// chat sessions

type memSessions struct {
	m  *MemoryStore
	tx *memTx
}

func (r *memSessions) Create(ctx context.Context, session *domain.ChatSession) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	for _, s := range r.m.sessions {
		if s.MatchID == session.MatchID || s.PassID == session.PassID {
			return domain.ErrConflict
		}
	}
	c := *session
	r.m.sessions[session.ID] = &c
	id := session.ID
	r.m.record(r.tx, func() { delete(r.m.sessions, id) })
	return nil
}

func (r *memSessions) FindByMatchID(ctx context.Context, matchID uuid.UUID) (*domain.ChatSession, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	for _, s := range r.m.sessions {
		if s.MatchID == matchID {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memSessions) FindByMatchIDs(ctx context.Context, matchIDs []uuid.UUID) ([]*domain.ChatSession, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	wanted := make(map[uuid.UUID]bool, len(matchIDs))
	for _, id := range matchIDs {
		wanted[id] = true
	}
	out := []*domain.ChatSession{}
	for _, s := range r.m.sessions {
		if wanted[s.MatchID] {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memSessions) ActiveByUser(ctx context.Context, userID int64, now time.Time) (*domain.ChatSession, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var best *domain.ChatSession
	for _, s := range r.m.sessions {
		if (s.UserAID != userID && s.UserBID != userID) || s.IsExpired(now) {
			continue
		}
		if best == nil || s.ExpiresAt.After(best.ExpiresAt) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	c := *best
	return &c, nil
}

func (r *memSessions) ListExpiredUnnotified(ctx context.Context, now time.Time, limit int) ([]*domain.ChatSession, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	var out []*domain.ChatSession
	for _, s := range r.m.sessions {
		if !s.Notified && s.IsExpired(now) {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memSessions) ClaimNotification(ctx context.Context, id uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return false, r.m.Err
	}
	s, ok := r.m.sessions[id]
	if !ok || s.Notified {
		return false, nil
	}
	s.Notified = true
	r.m.record(r.tx, func() { s.Notified = false })
	return true, nil
}

// reports

type memReports struct {
	m  *MemoryStore
	tx *memTx
}

func (r *memReports) Create(ctx context.Context, report *domain.Report) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	c := *report
	r.m.reports[report.ID] = &c
	id := report.ID
	r.m.record(r.tx, func() { delete(r.m.reports, id) })
	return nil
}

func (r *memReports) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	report, ok := r.m.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	c := *report
	return &c, nil
}

func (r *memReports) List(ctx context.Context, status *domain.ReportStatus, limit int) ([]*domain.Report, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	out := []*domain.Report{}
	for _, report := range r.m.reports {
		if status != nil && report.Status != *status {
			continue
		}
		c := *report
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memReports) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	report, ok := r.m.reports[id]
	if !ok {
		return domain.ErrReportNotFound
	}
	prev := report.Status
	report.Status = status
	r.m.record(r.tx, func() { report.Status = prev })
	return nil
}
