package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/pkg/audit"
	"github.com/casetrail/casetrail/pkg/domain"
)

// In-memory store fakes mirroring the repository contracts, including the
// unique (workspace, user) guard and pending-invite supersede.

type fakeMemberStore struct {
	mu      sync.Mutex
	members map[uuid.UUID]*domain.Member

	// pairErr, when set, is returned by GetByWorkspaceAndUser to
	// simulate a failing store.
	pairErr error
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{members: make(map[uuid.UUID]*domain.Member)}
}

func (s *fakeMemberStore) Create(ctx context.Context, member *domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.WorkspaceID == member.WorkspaceID && m.UserID == member.UserID {
			return domain.ErrMemberConflict
		}
	}
	cp := *member
	s.members[member.ID] = &cp
	return nil
}

func (s *fakeMemberStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeMemberStore) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pairErr != nil {
		return nil, s.pairErr
	}
	for _, m := range s.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (s *fakeMemberStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Member
	for _, m := range s.members {
		if m.WorkspaceID == workspaceID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeMemberStore) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	return nil
}

func (s *fakeMemberStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return domain.ErrMemberNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *fakeMemberStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

type fakeInviteStore struct {
	mu      sync.Mutex
	invites map[uuid.UUID]*domain.Invite
}

func newFakeInviteStore() *fakeInviteStore {
	return &fakeInviteStore{invites: make(map[uuid.UUID]*domain.Invite)}
}

func (s *fakeInviteStore) Create(ctx context.Context, invite *domain.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, inv := range s.invites {
		if inv.WorkspaceID == invite.WorkspaceID && inv.Email == invite.Email &&
			inv.AcceptedAt == nil && now.Before(inv.ExpiresAt) {
			inv.ExpiresAt = now
		}
	}
	cp := *invite
	s.invites[invite.ID] = &cp
	return nil
}

func (s *fakeInviteStore) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invites {
		if inv.TokenHash == tokenHash {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

func (s *fakeInviteStore) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return domain.ErrInviteNotFound
	}
	if inv.AcceptedAt == nil {
		now := time.Now()
		inv.AcceptedAt = &now
	}
	return nil
}

func (s *fakeInviteStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Invite
	for _, inv := range s.invites {
		if inv.WorkspaceID == workspaceID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if NormalizeEmail(u.Email) == NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type fakeWorkspaceStore struct {
	workspaces map[uuid.UUID]*domain.Workspace
}

func newFakeWorkspaceStore(workspaces ...*domain.Workspace) *fakeWorkspaceStore {
	s := &fakeWorkspaceStore{workspaces: make(map[uuid.UUID]*domain.Workspace)}
	for _, ws := range workspaces {
		s.workspaces[ws.ID] = ws
	}
	return s
}

func (s *fakeWorkspaceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return ws, nil
}

type fakeNotifier struct {
	err  error
	sent chan InviteEmail
}

func newFakeNotifier(err error) *fakeNotifier {
	return &fakeNotifier{err: err, sent: make(chan InviteEmail, 4)}
}

func (n *fakeNotifier) SendInviteEmail(email InviteEmail) error {
	n.sent <- email
	return n.err
}

var errRecorderBroken = errors.New("audit sink unavailable")

// failRecorder simulates an unreachable audit sink.
type failRecorder struct{}

func (failRecorder) Record(ctx context.Context, entry audit.Entry) error {
	return errRecorderBroken
}
