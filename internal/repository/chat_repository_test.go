package repository_test

import (
	"testing"
	"time"

	"tienda-api/internal/model"
	"tienda-api/internal/repository"
	"tienda-api/internal/testutil"
)

func TestTouchByTokenIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewChatSessionRepository(db)

	first, err := repo.TouchByToken("tok-1", nil, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("first touch err: %v", err)
	}
	second, err := repo.TouchByToken("tok-1", nil, time.Now())
	if err != nil {
		t.Fatalf("second touch err: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same session, got %d and %d", first.ID, second.ID)
	}
	if !second.LastActivityAt.After(first.LastActivityAt) {
		t.Fatalf("expected last activity to advance: %v -> %v", first.LastActivityAt, second.LastActivityAt)
	}
	var count int64
	db.Model(&model.ChatSession{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}
}

func TestTouchByTokenBackfillsUserOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewChatSessionRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	guest, err := repo.TouchByToken("tok-guest", nil, time.Now())
	if err != nil {
		t.Fatalf("guest touch err: %v", err)
	}
	if guest.UserID != nil {
		t.Fatalf("guest session should have no user")
	}

	owned, err := repo.TouchByToken("tok-guest", &alice.ID, time.Now())
	if err != nil {
		t.Fatalf("owned touch err: %v", err)
	}
	if owned.UserID == nil || *owned.UserID != alice.ID {
		t.Fatalf("expected backfilled user %d, got %v", alice.ID, owned.UserID)
	}

	again, err := repo.TouchByToken("tok-guest", &bob.ID, time.Now())
	if err != nil {
		t.Fatalf("third touch err: %v", err)
	}
	if again.UserID == nil || *again.UserID != alice.ID {
		t.Fatalf("owner must not be overwritten, got %v", again.UserID)
	}

	anonymous, err := repo.TouchByToken("tok-guest", nil, time.Now())
	if err != nil {
		t.Fatalf("anonymous touch err: %v", err)
	}
	if anonymous.UserID == nil || *anonymous.UserID != alice.ID {
		t.Fatalf("owner must not be cleared, got %v", anonymous.UserID)
	}
}

func TestLatestByUserID(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewChatSessionRepository(db)
	user := testutil.CreateUser(t, db, "carla")

	if s, err := repo.LatestByUserID(user.ID); err != nil || s != nil {
		t.Fatalf("expected no session, got %v %v", s, err)
	}
	base := time.Now()
	if _, err := repo.TouchByToken("old", &user.ID, base.Add(-time.Hour)); err != nil {
		t.Fatalf("touch old: %v", err)
	}
	if _, err := repo.TouchByToken("new", &user.ID, base); err != nil {
		t.Fatalf("touch new: %v", err)
	}
	latest, err := repo.LatestByUserID(user.ID)
	if err != nil {
		t.Fatalf("LatestByUserID err: %v", err)
	}
	if latest == nil || latest.Token != "new" {
		t.Fatalf("expected newest session, got %+v", latest)
	}
}

func TestListRecentBySessionIDReturnsChronologicalWindow(t *testing.T) {
	db := testutil.NewDB(t)
	sessions := repository.NewChatSessionRepository(db)
	messages := repository.NewChatMessageRepository(db)

	session, err := sessions.TouchByToken("tok", nil, time.Now())
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 8; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msg := &model.ChatMessage{
			ChatSessionID: session.ID,
			Role:          role,
			Content:       string(rune('a' + i)),
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}
		if err := messages.Create(msg); err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
	}

	recent, err := messages.ListRecentBySessionID(session.ID, 6)
	if err != nil {
		t.Fatalf("ListRecentBySessionID err: %v", err)
	}
	if len(recent) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(recent))
	}
	if recent[0].Content != "c" || recent[5].Content != "h" {
		t.Fatalf("unexpected window: first=%s last=%s", recent[0].Content, recent[5].Content)
	}
}
