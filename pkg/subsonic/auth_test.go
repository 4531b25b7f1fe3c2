package subsonic

import (
	"net/url"
	"strings"
	"testing"
)

func TestSignPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		salt     string
		want     string
	}{
		{
			// md5("sesame" + "c19b2d") from the protocol documentation.
			name:     "documentation example",
			password: "sesame",
			salt:     "c19b2d",
			want:     "26719a1196d2a940705a59634eb18eab",
		},
		{
			name:     "empty password",
			password: "",
			salt:     "abcdef",
			want:     "e80b5017098950fc58aad83c8c14978e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := signPassword(tt.password, tt.salt)
			if got != tt.want {
				t.Errorf("signPassword(%q, %q) = %q, want %q", tt.password, tt.salt, got, tt.want)
			}
		})
	}
}

func TestSignPassword_Deterministic(t *testing.T) {
	first := signPassword("hunter2", "somesalt1234")
	for i := 0; i < 10; i++ {
		if got := signPassword("hunter2", "somesalt1234"); got != first {
			t.Fatalf("signPassword not deterministic: %q != %q", got, first)
		}
	}
}

func TestNewSalt(t *testing.T) {
	t.Run("length and alphabet", func(t *testing.T) {
		salt, err := newSalt()
		if err != nil {
			t.Fatalf("newSalt() error: %v", err)
		}
		if len(salt) != saltLength {
			t.Errorf("salt length = %d, want %d", len(salt), saltLength)
		}
		for _, r := range salt {
			if !strings.ContainsRune(saltAlphabet, r) {
				t.Errorf("salt contains %q outside the alphanumeric alphabet", r)
			}
		}
	})

	t.Run("consecutive salts differ", func(t *testing.T) {
		a, err := newSalt()
		if err != nil {
			t.Fatalf("newSalt() error: %v", err)
		}
		b, err := newSalt()
		if err != nil {
			t.Fatalf("newSalt() error: %v", err)
		}
		if a == b {
			t.Errorf("two consecutive salts are identical: %q", a)
		}
	})
}

func TestCredentialsApply(t *testing.T) {
	t.Run("token mode", func(t *testing.T) {
		creds := &credentials{username: "alice", password: "secret"}
		v := url.Values{}
		if err := creds.apply(v); err != nil {
			t.Fatalf("apply() error: %v", err)
		}

		if got := v.Get("u"); got != "alice" {
			t.Errorf("u = %q, want alice", got)
		}
		if v.Get("p") != "" {
			t.Error("plaintext password present in token mode")
		}
		salt := v.Get("s")
		if len(salt) < 6 {
			t.Errorf("salt %q too short", salt)
		}
		if got, want := v.Get("t"), signPassword("secret", salt); got != want {
			t.Errorf("token = %q, want md5(password+salt) = %q", got, want)
		}
	})

	t.Run("fresh nonce per attempt", func(t *testing.T) {
		creds := &credentials{username: "alice", password: "secret"}
		a, b := url.Values{}, url.Values{}
		if err := creds.apply(a); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if err := creds.apply(b); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if a.Get("s") == b.Get("s") {
			t.Errorf("two attempts reused salt %q", a.Get("s"))
		}
		if a.Get("t") == b.Get("t") {
			t.Error("two attempts reused the same token")
		}
	})

	t.Run("legacy mode after fallback", func(t *testing.T) {
		creds := &credentials{username: "alice", password: "secret"}
		if !creds.fallback() {
			t.Fatal("first fallback() = false, want true")
		}
		if creds.fallback() {
			t.Error("second fallback() = true, want false")
		}

		v := url.Values{}
		if err := creds.apply(v); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if got := v.Get("p"); got != "secret" {
			t.Errorf("p = %q, want raw password in legacy mode", got)
		}
		if v.Get("t") != "" || v.Get("s") != "" {
			t.Error("token parameters present in legacy mode")
		}
	})
}
