package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/screenpick/screenpick-backend/internal/logger"
	"github.com/screenpick/screenpick-backend/internal/repos"
	"github.com/screenpick/screenpick-backend/internal/requestdata"
	"github.com/screenpick/screenpick-backend/internal/types"
)

func newAuthService(t *testing.T) (AuthService, repos.UserTokenRepo) {
	t.Helper()

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.UserToken{}, &types.Preference{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	userRepo := repos.NewUserRepo(db, log)
	userTokenRepo := repos.NewUserTokenRepo(db, log)
	svc := NewAuthService(db, log, userRepo, userTokenRepo, "test-secret", time.Hour, 24*time.Hour)
	return svc, userTokenRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user := &types.User{Email: "Neo@Example.COM", Password: "whiterabbit", FirstName: "Thomas"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "neo@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "whiterabbit" {
		t.Fatal("password stored in plain text")
	}

	// Duplicate email is rejected.
	dup := &types.User{Email: "neo@example.com", Password: "other"}
	if err := svc.RegisterUser(ctx, dup); err == nil {
		t.Fatal("register accepted a duplicate email")
	}

	access, refresh, err := svc.LoginUser(ctx, "NEO@example.com", "whiterabbit")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("login returned empty tokens")
	}

	if _, _, err := svc.LoginUser(ctx, "neo@example.com", "wrongpassword"); err == nil {
		t.Fatal("login accepted a wrong password")
	}
	if _, _, err := svc.LoginUser(ctx, "nobody@example.com", "whiterabbit"); err == nil {
		t.Fatal("login accepted an unknown email")
	}
}

func TestLoginReplacesExistingTokens(t *testing.T) {
	svc, tokenRepo := newAuthService(t)
	ctx := context.Background()

	user := &types.User{Email: "trinity@example.com", Password: "dodgethis"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.LoginUser(ctx, user.Email, "dodgethis"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	access2, _, err := svc.LoginUser(ctx, user.Email, "dodgethis")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	tokens, err := tokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{user.ID})
	if err != nil {
		t.Fatalf("get tokens: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("got %d token rows after relogin, want 1", len(tokens))
	}
	if tokens[0].AccessToken != access2 {
		t.Fatal("stored token is not from the latest login")
	}
}

func TestSetContextFromToken(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user := &types.User{Email: "morpheus@example.com", Password: "redpill1"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	access, refresh, err := svc.LoginUser(ctx, user.Email, "redpill1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	withRD, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	rd := requestdata.GetRequestData(withRD)
	if rd == nil {
		t.Fatal("no request data set on context")
	}
	if rd.UserID != user.ID {
		t.Fatalf("context user id %s, want %s", rd.UserID, user.ID)
	}
	if rd.RefreshToken != refresh {
		t.Fatal("refresh token not resolved from the token store")
	}

	if _, err := svc.SetContextFromToken(ctx, "not.a.jwt"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, tokenRepo := newAuthService(t)
	ctx := context.Background()

	user := &types.User{Email: "oracle@example.com", Password: "cookies1"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	access, refresh, err := svc.LoginUser(ctx, user.Email, "cookies1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rdCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
	})
	newAccess, newRefresh, err := svc.RefreshUser(rdCtx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if newRefresh == refresh {
		t.Fatal("refresh token was not rotated")
	}
	if newAccess == "" {
		t.Fatal("refresh returned empty access token")
	}

	// The old refresh token is gone; replaying it fails.
	if _, _, err := svc.RefreshUser(rdCtx); err == nil {
		t.Fatal("old refresh token accepted after rotation")
	}

	tokens, err := tokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{user.ID})
	if err != nil {
		t.Fatalf("get tokens: %v", err)
	}
	if len(tokens) != 1 || tokens[0].RefreshToken != newRefresh {
		t.Fatalf("token store not rotated cleanly: %+v", tokens)
	}
}

func TestLogoutDeletesToken(t *testing.T) {
	svc, tokenRepo := newAuthService(t)
	ctx := context.Background()

	user := &types.User{Email: "smith@example.com", Password: "inevitable"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	access, refresh, err := svc.LoginUser(ctx, user.Email, "inevitable")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rdCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
	})
	if err := svc.LogoutUser(rdCtx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	tokens, err := tokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{user.ID})
	if err != nil {
		t.Fatalf("get tokens: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("got %d token rows after logout, want 0", len(tokens))
	}

	// Logging out twice is harmless.
	if err := svc.LogoutUser(rdCtx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}
