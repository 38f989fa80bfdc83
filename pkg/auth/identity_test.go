package auth

import "testing"

func TestIdentityAdminClaim(t *testing.T) {
	cases := []struct {
		name   string
		claims map[string]any
		want   bool
	}{
		{name: "nil claims", claims: nil, want: false},
		{name: "admin bool", claims: map[string]any{"admin": true}, want: true},
		{name: "admin false", claims: map[string]any{"admin": false}, want: false},
		{name: "role admin", claims: map[string]any{"role": "Admin"}, want: true},
		{name: "role user", claims: map[string]any{"role": "user"}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := &Identity{SubjectID: "u1", Claims: tc.claims}
			if got := id.AdminClaim(); got != tc.want {
				t.Fatalf("AdminClaim() = %v, want %v", got, tc.want)
			}
		})
	}

	var nilID *Identity
	if nilID.AdminClaim() {
		t.Fatal("nil identity must not be admin")
	}
}

func TestVerifiedTokenAccessors(t *testing.T) {
	tok := &VerifiedToken{
		SubjectID: "uid-1",
		Claims: map[string]any{
			"email":    "a@example.com",
			"name":     "Ada",
			"picture":  "https://img.example.com/a.png",
			"firebase": map[string]any{"sign_in_provider": "google.com"},
		},
	}
	if tok.Email() != "a@example.com" || tok.Name() != "Ada" || tok.Picture() == "" {
		t.Fatalf("unexpected accessor values: %q %q %q", tok.Email(), tok.Name(), tok.Picture())
	}
	if tok.SignInProvider() != "google.com" {
		t.Fatalf("unexpected provider %q", tok.SignInProvider())
	}
}
