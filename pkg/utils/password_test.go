package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "hunter2" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("hunter2", h) {
		t.Error("expected password to match")
	}
	if CheckPassword("hunter3", h) {
		t.Error("expected wrong password to fail")
	}
}

func TestNewIDUnique(t *testing.T) {
	if NewID() == NewID() {
		t.Error("expected distinct ids")
	}
}
