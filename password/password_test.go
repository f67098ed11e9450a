package password

import "testing"

func TestHashAndIsValid(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	ok, err := IsValid(encoded, "correct horse battery staple")
	if err != nil {
		t.Fatalf("IsValid: %v", err)
	}
	if !ok {
		t.Fatalf("expected the original plaintext to validate")
	}
}

func TestIsValid_WrongPassword(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	ok, err := IsValid(encoded, "wrong password")
	if err != nil {
		t.Fatalf("IsValid: %v", err)
	}
	if ok {
		t.Fatalf("expected the wrong plaintext to fail validation")
	}
}

func TestHash_UniqueSaltPerCall(t *testing.T) {
	a, err := Hash("same")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := Hash("same")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct encoded hashes from distinct salts")
	}
}

func TestIsValid_MalformedEncoded(t *testing.T) {
	if _, err := IsValid("not-a-valid-encoding", "x"); err == nil {
		t.Fatalf("expected an error for a malformed encoded hash")
	}
}
