package domain

import (
	"testing"
	"time"
)

func TestInvite_Status(t *testing.T) {
	now := time.Now()
	accepted := now.Add(-time.Hour)

	tests := []struct {
		name   string
		invite Invite
		want   InviteStatus
	}{
		{
			name:   "pending before expiry",
			invite: Invite{ExpiresAt: now.Add(time.Hour)},
			want:   InviteStatusPending,
		},
		{
			name:   "expired one second past",
			invite: Invite{ExpiresAt: now.Add(-time.Second)},
			want:   InviteStatusExpired,
		},
		{
			name:   "expired exactly at deadline",
			invite: Invite{ExpiresAt: now},
			want:   InviteStatusExpired,
		},
		{
			name:   "accepted is terminal",
			invite: Invite{ExpiresAt: now.Add(time.Hour), AcceptedAt: &accepted},
			want:   InviteStatusAccepted,
		},
		{
			name:   "accepted stays accepted past expiry",
			invite: Invite{ExpiresAt: now.Add(-time.Hour), AcceptedAt: &accepted},
			want:   InviteStatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.invite.Status(now); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}
