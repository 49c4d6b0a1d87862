package auth

import (
	"context"
	"errors"
	"testing"
)

func TestWithUserID_UserIDFromCtx(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-42")

	got, err := UserIDFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "user-42" {
		t.Fatalf("expected user-42, got %q", got)
	}
}

func TestUserIDFromCtx_EmptyContext(t *testing.T) {
	_, err := UserIDFromCtx(context.Background())
	if !errors.Is(err, ErrUserIDNotFound) {
		t.Fatalf("expected ErrUserIDNotFound, got %v", err)
	}
}

func TestUserIDFromCtx_EmptyString(t *testing.T) {
	ctx := WithUserID(context.Background(), "")
	_, err := UserIDFromCtx(ctx)
	if !errors.Is(err, ErrUserIDNotFound) {
		t.Fatalf("expected ErrUserIDNotFound for empty id, got %v", err)
	}
}

func TestUserIDFromCtx_Isolation(t *testing.T) {
	ctx1 := WithUserID(context.Background(), "alice")
	ctx2 := WithUserID(context.Background(), "bob")

	got1, _ := UserIDFromCtx(ctx1)
	got2, _ := UserIDFromCtx(ctx2)

	if got1 != "alice" || got2 != "bob" {
		t.Fatalf("expected isolated users, got %q and %q", got1, got2)
	}
}
