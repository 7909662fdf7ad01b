package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
)

// In-memory implementations of the repository interfaces for tests. They
// mirror the Postgres semantics the services rely on: uniqueness surfaces as
// ErrDuplicate, guarded writes as ErrAlreadyPaired/ErrNotFound, lists come
// back newest first.

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	nextID int64
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]models.User), nextID: 1}
}

func (r *MemoryUserRepository) Create(ctx context.Context, telegramID int64, name string, username *string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.TelegramID == telegramID {
			return models.User{}, ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u := models.User{
		ID:         r.nextID,
		TelegramID: telegramID,
		Name:       name,
		Username:   username,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.users[u.ID] = u
	r.nextID++
	return u, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, telegramID int64, name, username *string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if u.TelegramID == telegramID {
			if name != nil {
				u.Name = *name
			}
			if username != nil {
				u.Username = username
			}
			u.UpdatedAt = time.Now().UTC()
			r.users[id] = u
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *MemoryUserRepository) Delete(ctx context.Context, telegramID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if u.TelegramID == telegramID {
			delete(r.users, id)
			return nil
		}
	}
	return ErrNotFound
}

// MemoryPairRepository is an in-memory PairRepository.
type MemoryPairRepository struct {
	mu     sync.RWMutex
	pairs  map[int64]models.Pair
	nextID int64
}

// NewMemoryPairRepository creates an empty in-memory pair repository.
func NewMemoryPairRepository() *MemoryPairRepository {
	return &MemoryPairRepository{pairs: make(map[int64]models.Pair), nextID: 1}
}

func (r *MemoryPairRepository) Create(ctx context.Context, userID int64, inviteCode string) (models.Pair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.pairs {
		if p.InviteCode == inviteCode {
			return models.Pair{}, ErrDuplicate
		}
	}
	for _, p := range r.pairs {
		if p.User1ID == userID || (p.User2ID != nil && *p.User2ID == userID) {
			return models.Pair{}, ErrAlreadyPaired
		}
	}
	now := time.Now().UTC()
	p := models.Pair{
		ID:         r.nextID,
		InviteCode: inviteCode,
		User1ID:    userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.pairs[p.ID] = p
	r.nextID++
	return p, nil
}

func (r *MemoryPairRepository) GetByID(ctx context.Context, id int64) (models.Pair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pairs[id]
	if !ok {
		return models.Pair{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryPairRepository) GetByCode(ctx context.Context, inviteCode string) (models.Pair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pairs {
		if p.InviteCode == inviteCode {
			return p, nil
		}
	}
	return models.Pair{}, ErrNotFound
}

func (r *MemoryPairRepository) GetByUserID(ctx context.Context, userID int64) (models.Pair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pairs {
		if p.User1ID == userID || (p.User2ID != nil && *p.User2ID == userID) {
			return p, nil
		}
	}
	return models.Pair{}, ErrNotFound
}

func (r *MemoryPairRepository) UserHasPair(ctx context.Context, userID int64) (bool, error) {
	_, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *MemoryPairRepository) Complete(ctx context.Context, pairID, userID int64) (models.Pair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pairs[pairID]
	if !ok || p.User2ID != nil || p.User1ID == userID {
		return models.Pair{}, ErrNotFound
	}
	for _, existing := range r.pairs {
		if existing.User1ID == userID || (existing.User2ID != nil && *existing.User2ID == userID) {
			return models.Pair{}, ErrAlreadyPaired
		}
	}
	p.User2ID = &userID
	p.IsComplete = true
	p.UpdatedAt = time.Now().UTC()
	r.pairs[pairID] = p
	return p, nil
}

// MemoryIdeaRepository is an in-memory IdeaRepository.
type MemoryIdeaRepository struct {
	mu     sync.RWMutex
	ideas  map[int64]models.Idea
	nextID int64
}

// NewMemoryIdeaRepository creates an empty in-memory idea repository.
func NewMemoryIdeaRepository() *MemoryIdeaRepository {
	return &MemoryIdeaRepository{ideas: make(map[int64]models.Idea), nextID: 1}
}

func (r *MemoryIdeaRepository) Create(ctx context.Context, idea models.Idea) (models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	idea.ID = r.nextID
	idea.CreatedAt = now
	idea.UpdatedAt = now
	r.ideas[idea.ID] = idea
	r.nextID++
	return idea, nil
}

func (r *MemoryIdeaRepository) GetByID(ctx context.Context, id int64) (models.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.ideas[id]
	if !ok {
		return models.Idea{}, ErrNotFound
	}
	return i, nil
}

func (r *MemoryIdeaRepository) matches(i models.Idea, category models.IdeaCategory, costLevel models.CostLevel, activeOnly bool) bool {
	if activeOnly && !i.IsActive {
		return false
	}
	if category != "" && i.Category != category {
		return false
	}
	if costLevel != "" && i.CostLevel != costLevel {
		return false
	}
	return true
}

func (r *MemoryIdeaRepository) List(ctx context.Context, filter IdeaFilter) ([]models.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ideas []models.Idea
	for _, i := range r.ideas {
		if r.matches(i, filter.Category, filter.CostLevel, filter.ActiveOnly) {
			ideas = append(ideas, i)
		}
	}
	sort.Slice(ideas, func(i, j int) bool { return ideas[i].ID > ideas[j].ID })
	if filter.Limit > 0 && len(ideas) > filter.Limit {
		ideas = ideas[:filter.Limit]
	}
	return ideas, nil
}

func (r *MemoryIdeaRepository) Update(ctx context.Context, id int64, upd IdeaUpdate) (models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.ideas[id]
	if !ok {
		return models.Idea{}, ErrNotFound
	}
	if upd.Title != nil {
		i.Title = *upd.Title
	}
	if upd.Description != nil {
		i.Description = upd.Description
	}
	if upd.Category != nil {
		i.Category = *upd.Category
	}
	if upd.CostLevel != nil {
		i.CostLevel = *upd.CostLevel
	}
	if upd.Duration != nil {
		i.Duration = upd.Duration
	}
	if upd.IsActive != nil {
		i.IsActive = *upd.IsActive
	}
	i.UpdatedAt = time.Now().UTC()
	r.ideas[id] = i
	return i, nil
}

func (r *MemoryIdeaRepository) SoftDelete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.ideas[id]
	if !ok || !i.IsActive {
		return ErrNotFound
	}
	i.IsActive = false
	i.UpdatedAt = time.Now().UTC()
	r.ideas[id] = i
	return nil
}

func (r *MemoryIdeaRepository) Random(ctx context.Context, category models.IdeaCategory, costLevel models.CostLevel) (models.Idea, error) {
	matches, err := r.List(ctx, IdeaFilter{Category: category, CostLevel: costLevel, ActiveOnly: true, Limit: 0})
	if err != nil {
		return models.Idea{}, err
	}
	if len(matches) == 0 {
		return models.Idea{}, ErrNotFound
	}
	return matches[int(time.Now().UnixNano())%len(matches)], nil
}

// MemoryProposalRepository is an in-memory ProposalRepository. It reads from
// the user and idea repositories to build the history enrichment.
type MemoryProposalRepository struct {
	mu        sync.RWMutex
	proposals map[int64]models.Proposal
	nextID    int64
	users     *MemoryUserRepository
	ideas     *MemoryIdeaRepository
}

// NewMemoryProposalRepository creates an empty in-memory proposal repository.
func NewMemoryProposalRepository(users *MemoryUserRepository, ideas *MemoryIdeaRepository) *MemoryProposalRepository {
	return &MemoryProposalRepository{
		proposals: make(map[int64]models.Proposal),
		nextID:    1,
		users:     users,
		ideas:     ideas,
	}
}

func (r *MemoryProposalRepository) Create(ctx context.Context, p models.Proposal) (models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextID
	p.Status = models.ProposalPending
	p.CreatedAt = time.Now().UTC()
	r.proposals[p.ID] = p
	r.nextID++
	return p, nil
}

func (r *MemoryProposalRepository) GetByID(ctx context.Context, id int64) (models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.proposals[id]
	if !ok {
		return models.Proposal{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryProposalRepository) Respond(ctx context.Context, id int64, status models.ProposalStatus, responderID int64, note *string) (models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok || p.Status != models.ProposalPending {
		return models.Proposal{}, ErrNotFound
	}
	now := time.Now().UTC()
	p.Status = status
	p.ResponderID = &responderID
	p.ResponseNote = note
	p.RespondedAt = &now
	r.proposals[id] = p
	return p, nil
}

func (r *MemoryProposalRepository) ListByPair(ctx context.Context, pairID int64, status models.ProposalStatus, limit int) ([]models.ProposalDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.ProposalDetails
	for _, p := range r.proposals {
		if p.PairID != pairID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		d := models.ProposalDetails{Proposal: p}
		if u, err := r.users.GetByID(ctx, p.ProposerID); err == nil {
			d.ProposerName = u.Name
		}
		if p.IdeaID != nil {
			if i, err := r.ideas.GetByID(ctx, *p.IdeaID); err == nil {
				d.IdeaTitle = &i.Title
				d.IdeaDescription = i.Description
			}
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemoryProposalRepository) CountByStatus(ctx context.Context, pairID int64) (models.ProposalCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var c models.ProposalCounts
	for _, p := range r.proposals {
		if p.PairID != pairID {
			continue
		}
		c.Total++
		switch p.Status {
		case models.ProposalAccepted:
			c.Accepted++
		case models.ProposalRejected:
			c.Rejected++
		case models.ProposalPending:
			c.Pending++
		}
	}
	return c, nil
}
