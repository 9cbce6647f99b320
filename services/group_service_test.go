package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tsumo-app/tsumo-server/models"
	"github.com/tsumo-app/tsumo-server/repositories"
)

func newGroupService(store *repositories.MemoryStore) GroupService {
	return NewGroupService(store.GroupRepo(), store.MemberRepo(), store.UserRepo(), nil)
}

func TestCreateGroupOwnerBecomesMember(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "u1", "Akira")
	svc := newGroupService(store)

	group, err := svc.CreateGroup(context.Background(), "Friday League", "u1")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if group.OwnerID != "u1" {
		t.Errorf("OwnerID = %q, want u1", group.OwnerID)
	}
	if len(group.Members) != 1 {
		t.Fatalf("members = %d, want 1", len(group.Members))
	}
	if group.Members[0].Role != models.RoleOwner {
		t.Errorf("creator role = %q, want %q", group.Members[0].Role, models.RoleOwner)
	}

	if _, err := svc.CreateGroup(context.Background(), "", "u1"); !errors.Is(err, ErrGroupNameRequired) {
		t.Errorf("empty name: error = %v, want %v", err, ErrGroupNameRequired)
	}
}

func TestInviteTokenLifecycle(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "owner", "Owner")
	seedUser(t, store, "guest", "Guest")
	svc := newGroupService(store)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "Parlor", "owner")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	// Only the owner may issue tokens.
	if _, err := svc.GenerateInviteToken(ctx, group.ID, "guest"); !errors.Is(err, ErrOwnerActionForbidden) {
		t.Errorf("non-owner token: error = %v, want %v", err, ErrOwnerActionForbidden)
	}

	withToken, err := svc.GenerateInviteToken(ctx, group.ID, "owner")
	if err != nil {
		t.Fatalf("GenerateInviteToken: %v", err)
	}
	if withToken.InviteToken == nil || *withToken.InviteToken == "" {
		t.Fatal("expected a token")
	}
	if withToken.InviteTokenExpiresAt == nil || !withToken.InviteTokenExpiresAt.After(time.Now()) {
		t.Fatal("expected a future expiry")
	}

	joined, err := svc.JoinByInviteToken(ctx, *withToken.InviteToken, "guest")
	if err != nil {
		t.Fatalf("JoinByInviteToken: %v", err)
	}
	if joined.ID != group.ID {
		t.Errorf("joined group = %q, want %q", joined.ID, group.ID)
	}

	if _, err := svc.JoinByInviteToken(ctx, *withToken.InviteToken, "guest"); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("rejoin: error = %v, want %v", err, ErrAlreadyMember)
	}

	if err := svc.InvalidateInviteToken(ctx, group.ID, "owner"); err != nil {
		t.Fatalf("InvalidateInviteToken: %v", err)
	}
	if _, err := svc.JoinByInviteToken(ctx, *withToken.InviteToken, "third"); !errors.Is(err, ErrInviteExpired) {
		t.Errorf("join after invalidation: error = %v, want %v", err, ErrInviteExpired)
	}
}

func TestJoinExpiredInviteToken(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()

	token := "stale-token"
	past := time.Now().Add(-time.Hour)
	group := &models.Group{
		ID:                   "g1",
		Name:                 "Old Parlor",
		OwnerID:              "owner",
		InviteToken:          &token,
		InviteTokenExpiresAt: &past,
	}
	if err := store.GroupRepo().Create(ctx, group); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	svc := newGroupService(store)
	if _, err := svc.JoinByInviteToken(ctx, token, "guest"); !errors.Is(err, ErrInviteExpired) {
		t.Errorf("expired token: error = %v, want %v", err, ErrInviteExpired)
	}
}

func TestLeaveGroupOwnerRules(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "owner", "Owner")
	seedUser(t, store, "member", "Member")
	seedGroup(t, store, "g1", "owner", "member")
	svc := newGroupService(store)
	ctx := context.Background()

	if err := svc.LeaveGroup(ctx, "g1", "owner"); !errors.Is(err, ErrOwnerCannotLeave) {
		t.Errorf("owner leave with members: error = %v, want %v", err, ErrOwnerCannotLeave)
	}

	if err := svc.LeaveGroup(ctx, "g1", "member"); err != nil {
		t.Fatalf("member leave: %v", err)
	}

	// Alone, the owner may leave; the group goes with them.
	if err := svc.LeaveGroup(ctx, "g1", "owner"); err != nil {
		t.Fatalf("owner leave alone: %v", err)
	}
	if _, err := svc.GetGroup(ctx, "g1"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("group after owner leave: error = %v, want %v", err, ErrGroupNotFound)
	}
}

func TestTransferOwnership(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "owner", "Owner")
	seedUser(t, store, "member", "Member")
	seedGroup(t, store, "g1", "owner", "member")
	svc := newGroupService(store)
	ctx := context.Background()

	if err := svc.TransferOwnership(ctx, "g1", "owner", "nobody"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("transfer to non-member: error = %v, want %v", err, ErrMemberNotFound)
	}

	if err := svc.TransferOwnership(ctx, "g1", "owner", "member"); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}

	group, err := svc.GetGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if group.OwnerID != "member" {
		t.Errorf("OwnerID = %q, want member", group.OwnerID)
	}
	for _, m := range group.Members {
		want := models.RoleMember
		if m.UserID == "member" {
			want = models.RoleOwner
		}
		if m.Role != want {
			t.Errorf("member %s role = %q, want %q", m.UserID, m.Role, want)
		}
	}

	// The former owner no longer holds owner privileges.
	if _, err := svc.RenameGroup(ctx, "g1", "owner", "New Name"); !errors.Is(err, ErrOwnerActionForbidden) {
		t.Errorf("rename by former owner: error = %v, want %v", err, ErrOwnerActionForbidden)
	}
}

func TestRemoveMember(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedUser(t, store, "owner", "Owner")
	seedUser(t, store, "member", "Member")
	seedGroup(t, store, "g1", "owner", "member")
	svc := newGroupService(store)
	ctx := context.Background()

	if err := svc.RemoveMember(ctx, "g1", "member", "owner"); !errors.Is(err, ErrOwnerActionForbidden) {
		t.Errorf("remove by non-owner: error = %v, want %v", err, ErrOwnerActionForbidden)
	}
	if err := svc.RemoveMember(ctx, "g1", "owner", "owner"); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("owner self-removal: error = %v, want %v", err, ErrForbiddenOperation)
	}
	if err := svc.RemoveMember(ctx, "g1", "owner", "member"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	group, err := svc.GetGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if len(group.Members) != 1 {
		t.Errorf("members = %d, want 1", len(group.Members))
	}
}
