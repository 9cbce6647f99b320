package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tsumo-app/tsumo-server/models"
)

// MemoryStore is the in-memory backend. It implements every repository
// interface behind one mutex and is selected by configuration instead of
// Postgres — useful for local development and as the test double.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]models.User
	groups  map[string]models.Group
	games   map[string]models.Game
	members []models.GroupMember
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]models.User),
		groups: make(map[string]models.Group),
		games:  make(map[string]models.Game),
	}
}

// UserRepo exposes the store as a UserRepository.
func (s *MemoryStore) UserRepo() UserRepository { return (*memoryUsers)(s) }

// GroupRepo exposes the store as a GroupRepository.
func (s *MemoryStore) GroupRepo() GroupRepository { return (*memoryGroups)(s) }

// MemberRepo exposes the store as a GroupMemberRepository.
func (s *MemoryStore) MemberRepo() GroupMemberRepository { return (*memoryMembers)(s) }

// GameRepo exposes the store as a GameRepository.
func (s *MemoryStore) GameRepo() GameRepository { return (*memoryGames)(s) }

// --- UserRepository ---

type memoryUsers MemoryStore

func (m *memoryUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.Email != nil {
		for _, u := range m.users {
			if u.Email != nil && *u.Email == *user.Email {
				return ErrUserEmailConflict
			}
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUsers) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// --- GroupRepository ---

type memoryGroups MemoryStore

func (m *memoryGroups) Create(ctx context.Context, group *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now
	m.groups[group.ID] = *group
	return nil
}

func (m *memoryGroups) GetByID(ctx context.Context, id string) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return &g, nil
}

func (m *memoryGroups) GetByInviteToken(ctx context.Context, token string) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.groups {
		if g.InviteToken != nil && *g.InviteToken == token {
			group := g
			return &group, nil
		}
	}
	return nil, ErrGroupNotFound
}

func (m *memoryGroups) ListByUserID(ctx context.Context, userID string) ([]models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	groups := make([]models.Group, 0)
	for _, member := range m.members {
		if member.UserID != userID {
			continue
		}
		if g, ok := m.groups[member.GroupID]; ok {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CreatedAt.Before(groups[j].CreatedAt) })
	return groups, nil
}

func (m *memoryGroups) Update(ctx context.Context, group *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[group.ID]; !ok {
		return ErrGroupNotFound
	}
	group.UpdatedAt = time.Now()
	m.groups[group.ID] = *group
	return nil
}

func (m *memoryGroups) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return ErrGroupNotFound
	}
	delete(m.groups, id)
	kept := m.members[:0]
	for _, member := range m.members {
		if member.GroupID != id {
			kept = append(kept, member)
		}
	}
	m.members = kept
	return nil
}

// --- GroupMemberRepository ---

type memoryMembers MemoryStore

func (m *memoryMembers) Add(ctx context.Context, member *models.GroupMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.members {
		if existing.GroupID == member.GroupID && existing.UserID == member.UserID {
			return ErrMemberConflict
		}
	}
	member.JoinedAt = time.Now()
	m.members = append(m.members, *member)
	return nil
}

func (m *memoryMembers) ListByGroupID(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make([]models.GroupMember, 0)
	for _, member := range m.members {
		if member.GroupID == groupID {
			members = append(members, member)
		}
	}
	return members, nil
}

func (m *memoryMembers) ListByUserID(ctx context.Context, userID string) ([]models.GroupMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make([]models.GroupMember, 0)
	for _, member := range m.members {
		if member.UserID == userID {
			members = append(members, member)
		}
	}
	return members, nil
}

func (m *memoryMembers) UpdateRole(ctx context.Context, groupID, userID string, role models.MemberRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.members {
		if m.members[i].GroupID == groupID && m.members[i].UserID == userID {
			m.members[i].Role = role
			return nil
		}
	}
	return ErrMemberNotFound
}

func (m *memoryMembers) Remove(ctx context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.members {
		if m.members[i].GroupID == groupID && m.members[i].UserID == userID {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return nil
		}
	}
	return ErrMemberNotFound
}

// --- GameRepository ---

type memoryGames MemoryStore

func (m *memoryGames) Create(ctx context.Context, game *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	game.CreatedAt = now
	game.UpdatedAt = now
	m.games[game.ID] = *game
	return nil
}

func (m *memoryGames) GetByID(ctx context.Context, id string) (*models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return &g, nil
}

func (m *memoryGames) ListByUserID(ctx context.Context, userID string, groupID *string) ([]models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	games := make([]models.Game, 0)
	for _, g := range m.games {
		if _, ok := g.PlayerResult(userID); !ok {
			continue
		}
		if groupID != nil && (g.GroupID == nil || *g.GroupID != *groupID) {
			continue
		}
		games = append(games, g)
	}
	sortGamesByDateDesc(games)
	return games, nil
}

func (m *memoryGames) ListByGroupID(ctx context.Context, groupID string) ([]models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	games := make([]models.Game, 0)
	for _, g := range m.games {
		if g.GroupID != nil && *g.GroupID == groupID {
			games = append(games, g)
		}
	}
	sortGamesByDateDesc(games)
	return games, nil
}

func (m *memoryGames) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

func sortGamesByDateDesc(games []models.Game) {
	sort.SliceStable(games, func(i, j int) bool { return games[i].Date.After(games[j].Date) })
}
