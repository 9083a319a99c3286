package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/casetrail/pkg/access"
	"github.com/casetrail/casetrail/pkg/audit"
	"github.com/casetrail/casetrail/pkg/domain"
)

const inviteTokenLen = 32

// DefaultInviteTTL is how long an invite stays pending when no TTL is
// configured.
const DefaultInviteTTL = 7 * 24 * time.Hour

// InvitationConfig holds invitation service configuration.
type InvitationConfig struct {
	// TTL is the invite validity window (default: DefaultInviteTTL).
	TTL time.Duration

	// AppBaseURL is the public base URL used to build accept links.
	AppBaseURL string
}

// InvitationService issues, validates, and consumes invite tokens.
// Expiry is evaluated lazily at read time; nothing sweeps invites.
type InvitationService struct {
	config     InvitationConfig
	invites    InviteStore
	members    MemberStore
	users      UserStore
	workspaces WorkspaceStore
	notifier   InviteNotifier
	recorder   audit.Recorder
	logger     *slog.Logger
}

// NewInvitationService creates a new invitation service. notifier may be
// nil, in which case no emails are sent.
func NewInvitationService(
	config InvitationConfig,
	invites InviteStore,
	members MemberStore,
	users UserStore,
	workspaces WorkspaceStore,
	notifier InviteNotifier,
	recorder audit.Recorder,
	logger *slog.Logger,
) *InvitationService {
	if config.TTL == 0 {
		config.TTL = DefaultInviteTTL
	}
	return &InvitationService{
		config:     config,
		invites:    invites,
		members:    members,
		users:      users,
		workspaces: workspaces,
		notifier:   notifier,
		recorder:   recorder,
		logger:     logger,
	}
}

// Create issues an invite for an email with no existing account and
// returns the invite plus the raw token for link building. Emails of
// registered users fail with ErrUserAlreadyRegistered; callers add those
// users directly via MembershipService.Add instead. A prior pending
// invite for the same workspace and email is superseded by the store.
func (s *InvitationService) Create(ctx context.Context, actor Actor, workspaceID uuid.UUID, email string, role domain.Role) (*domain.Invite, string, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidEmail, err)
	}

	if !access.HasPermission(actor.Role, domain.PermMemberInvite) {
		return nil, "", domain.ErrPermissionDenied
	}
	if !access.CanManageRole(actor.Role, role) {
		return nil, "", domain.ErrPermissionDenied
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrUserAlreadyRegistered
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}

	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, "", err
	}

	rawToken, err := GenerateToken(inviteTokenLen)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	invite := &domain.Invite{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Email:       email,
		Role:        role,
		TokenHash:   HashToken(rawToken),
		InvitedBy:   actor.ID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.config.TTL),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, "", fmt.Errorf("failed to create invite: %w", err)
	}

	s.record(ctx, audit.Entry{
		ActorID:     actor.ID,
		Action:      audit.ActionCreate,
		EntityType:  "member",
		EntityID:    invite.ID,
		EntityName:  email,
		WorkspaceID: workspaceID,
		Details:     map[string]string{"role": string(role), "expires_at": invite.ExpiresAt.Format(time.RFC3339)},
	})

	s.dispatchEmail(ctx, actor, invite, ws, rawToken)

	return invite, rawToken, nil
}

// dispatchEmail fires the notification collaborator in the background.
// Delivery failure is logged as a warning and never fails the invite.
func (s *InvitationService) dispatchEmail(ctx context.Context, actor Actor, invite *domain.Invite, ws *domain.Workspace, rawToken string) {
	if s.notifier == nil {
		return
	}

	inviterName := ""
	if inviter, err := s.users.GetByID(ctx, actor.ID); err == nil {
		inviterName = inviter.Email
		if inviter.Name != nil && *inviter.Name != "" {
			inviterName = *inviter.Name
		}
	}

	msg := InviteEmail{
		InviteID:      invite.ID,
		Email:         invite.Email,
		WorkspaceName: ws.Name,
		InviterName:   inviterName,
		Role:          invite.Role,
		AcceptURL:     s.AcceptURL(rawToken),
	}

	go func() {
		if err := s.notifier.SendInviteEmail(msg); err != nil {
			s.logger.Warn("invite created but email delivery failed",
				"error", err,
				"invite_id", invite.ID,
				"workspace_id", invite.WorkspaceID,
			)
			return
		}
		s.logger.Info("invite email sent", "invite_id", invite.ID)
	}()
}

// AcceptURL builds the invite link carrying the raw token.
func (s *InvitationService) AcceptURL(rawToken string) string {
	return fmt.Sprintf("%s/invites/accept?token=%s", s.config.AppBaseURL, url.QueryEscape(rawToken))
}

// Validate resolves a raw token to its invite. The invite's computed
// status decides the outcome: expired and already-accepted invites are
// terminal failures, pending invites are returned.
func (s *InvitationService) Validate(ctx context.Context, rawToken string) (*domain.Invite, error) {
	if rawToken == "" {
		return nil, domain.ErrInvalidToken
	}

	invite, err := s.invites.GetByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		return nil, err
	}

	switch invite.Status(time.Now()) {
	case domain.InviteStatusExpired:
		return nil, domain.ErrInviteExpired
	case domain.InviteStatusAccepted:
		return nil, domain.ErrInviteAlreadyAccepted
	default:
		return invite, nil
	}
}

// Accept consumes an invite for the authenticated user and materializes
// the membership. The user's email must match the invite's
// (case-insensitive). Accept is idempotent: a racing duplicate insert or
// a retry of an already-consumed invite by the same user reports success
// with the surviving member row.
func (s *InvitationService) Accept(ctx context.Context, rawToken string, user *domain.User) (*domain.Member, error) {
	if rawToken == "" {
		return nil, domain.ErrInvalidToken
	}

	invite, err := s.invites.GetByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	emailMatches := NormalizeEmail(user.Email) == NormalizeEmail(invite.Email)

	switch invite.Status(now) {
	case domain.InviteStatusExpired:
		// Expiry wins regardless of who presents the token.
		return nil, domain.ErrInviteExpired
	case domain.InviteStatusAccepted:
		// Retry by the rightful recipient is a no-op success. Only a
		// confirmed missing row falls through to the conflict; store
		// failures must surface as failures.
		if emailMatches {
			member, err := s.members.GetByWorkspaceAndUser(ctx, invite.WorkspaceID, user.ID)
			switch {
			case err == nil:
				return member, nil
			case !errors.Is(err, domain.ErrMemberNotFound):
				return nil, err
			}
		}
		return nil, domain.ErrInviteAlreadyAccepted
	}

	if !emailMatches {
		return nil, domain.ErrEmailMismatch
	}

	member := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: invite.WorkspaceID,
		UserID:      user.ID,
		Role:        invite.Role,
		InvitedBy:   invite.InvitedBy,
		InvitedAt:   invite.CreatedAt,
		AcceptedAt:  &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.members.Create(ctx, member)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMemberConflict):
		// Benign duplicate: a concurrent accept or a separate direct add
		// won the insert. Keep the surviving row and report success.
		existing, getErr := s.members.GetByWorkspaceAndUser(ctx, invite.WorkspaceID, user.ID)
		if getErr != nil {
			return nil, getErr
		}
		s.logger.Info("invite accept resolved to existing membership",
			"invite_id", invite.ID,
			"member_id", existing.ID,
		)
		member = existing
	default:
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	if err := s.invites.MarkAccepted(ctx, invite.ID); err != nil {
		return nil, fmt.Errorf("failed to mark invite accepted: %w", err)
	}

	s.record(ctx, audit.Entry{
		ActorID:     user.ID,
		Action:      audit.ActionCreate,
		EntityType:  "member",
		EntityID:    member.ID,
		EntityName:  invite.Email,
		WorkspaceID: invite.WorkspaceID,
		Details:     map[string]string{"role": string(member.Role), "invite_id": invite.ID.String()},
	})

	return member, nil
}

// ListByWorkspace returns a workspace's invites for actors allowed to
// manage members.
func (s *InvitationService) ListByWorkspace(ctx context.Context, actor Actor, workspaceID uuid.UUID) ([]*domain.Invite, error) {
	if !access.HasPermission(actor.Role, domain.PermMemberInvite) {
		return nil, domain.ErrPermissionDenied
	}
	return s.invites.ListByWorkspace(ctx, workspaceID)
}

func (s *InvitationService) record(ctx context.Context, entry audit.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit entry",
			"error", err,
			"action", fmt.Sprintf("%s %s", entry.Action, entry.EntityType),
			"workspace_id", entry.WorkspaceID,
		)
	}
}
