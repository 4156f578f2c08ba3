package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

func TestCategoryCreate_TrimsAndPersists(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)

	category, err := svc.Create(context.Background(), "  Indian  ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if category.Name != "Indian" {
		t.Errorf("expected trimmed name Indian, got %q", category.Name)
	}
	if category.ID == "" {
		t.Error("expected generated id")
	}
}

func TestCategoryCreate_Duplicate(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Indian"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(ctx, "Indian")
	if !errors.Is(err, domain.ErrCategoryExists) {
		t.Errorf("expected ErrCategoryExists, got %v", err)
	}
}

func TestCategoryCreate_Validation(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	for _, name := range []string{"", "   ", strings.Repeat("x", 31)} {
		_, err := svc.Create(ctx, name)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("name %q: expected validation error, got %v", name, err)
		}
	}

	// 30 chars exactly is allowed
	if _, err := svc.Create(ctx, strings.Repeat("y", 30)); err != nil {
		t.Errorf("30-char name rejected: %v", err)
	}
}

func TestCategoryList(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	for _, name := range []string{"Indian", "Bengali", "Dry Fruits"} {
		if _, err := svc.Create(ctx, name); err != nil {
			t.Fatalf("create %q failed: %v", name, err)
		}
	}

	categories, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(categories) != 3 {
		t.Errorf("expected 3 categories, got %d", len(categories))
	}
}
