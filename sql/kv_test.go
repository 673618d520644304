package sql_test

import (
	"context"
	"testing"
)

func TestKV(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GetValue(ctx, "max_retries")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("unset key must report absence")
	}

	if err := store.SetValue(ctx, "max_retries", "5"); err != nil {
		t.Fatal(err)
	}
	value, ok, err := store.GetValue(ctx, "max_retries")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != "5" {
		t.Fatalf("expected 5, got %q (%v)", value, ok)
	}

	if err := store.SetValue(ctx, "max_retries", "7"); err != nil {
		t.Fatal(err)
	}
	value, _, err = store.GetValue(ctx, "max_retries")
	if err != nil {
		t.Fatal(err)
	}
	if value != "7" {
		t.Fatalf("expected overwrite to 7, got %q", value)
	}
}
