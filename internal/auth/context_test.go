package auth

import (
	"context"
	"errors"
	"testing"
)

func TestRequire(t *testing.T) {
	if _, err := Require(context.Background()); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("empty ctx: err = %v", err)
	}
	if _, err := Require(WithUser(context.Background(), 0)); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("zero id accepted")
	}
	id, err := Require(WithUser(context.Background(), 42))
	if err != nil || id != 42 {
		t.Fatalf("got %d, %v", id, err)
	}
}
