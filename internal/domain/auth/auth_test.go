package auth

import (
	"testing"
	"time"
)

func TestHasPermission(t *testing.T) {
	if !HasPermission(RoleHRManager, HRWriteRoles) {
		t.Fatal("hr manager should have HR write access")
	}
	if HasPermission(RoleStaff, HRWriteRoles) {
		t.Fatal("staff must not have HR write access")
	}
	if !HasPermission(RoleStaff, HRReadRoles) {
		t.Fatal("staff should have HR read access")
	}
	if HasPermission("", HRReadRoles) {
		t.Fatal("empty role must be denied")
	}
	if HasPermission(RoleAdmin, nil) {
		t.Fatal("empty allow list must deny everyone")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range Roles {
		if !ValidRole(role) {
			t.Fatalf("role %q should be valid", role)
		}
	}
	if ValidRole("WIZARD") {
		t.Fatal("unknown role should be invalid")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "secret" {
		t.Fatal("password must not be stored in the clear")
	}
	if err := CheckPassword(hash, "secret"); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password must not verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{Username: "alice", EmployeeCode: "EMP01", Name: "Alice", Role: RoleHRManager}

	token, err := GenerateToken("secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	parsed, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.Username != "alice" || parsed.EmployeeCode != "EMP01" || parsed.Role != RoleHRManager {
		t.Fatalf("claims mangled: %+v", parsed)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("token must not verify under a different secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("secret", Claims{Username: "alice", Role: RoleStaff}, -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}
