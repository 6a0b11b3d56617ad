package overridescmd

import (
	"context"
	"errors"
	"slices"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-localization/internal/logging"
)

type stubService struct {
	cleared  [][]string
	clearErr error
	warmed   []string
	known    []string
	warmErr  map[string]error
}

func (s *stubService) ClearCache(_ context.Context, locales ...string) error {
	s.cleared = append(s.cleared, locales)
	return s.clearErr
}

func (s *stubService) Locales(context.Context) ([]string, error) {
	return s.known, nil
}

func (s *stubService) LocaleOverrides(_ context.Context, locale string) (map[string]string, error) {
	if err := s.warmErr[locale]; err != nil {
		return nil, err
	}
	s.warmed = append(s.warmed, locale)
	return map[string]string{}, nil
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestInvalidateHandlerClearsRequestedLocales(t *testing.T) {
	svc := &stubService{}
	handler := NewInvalidateOverrideCacheHandler(svc, logging.NoOp())

	if err := handler.Execute(context.Background(), InvalidateOverrideCacheCommand{Locales: []string{" fr ", "de"}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := handler.Execute(context.Background(), InvalidateOverrideCacheCommand{}); err != nil {
		t.Fatalf("execute all: %v", err)
	}
	if len(svc.cleared) != 2 {
		t.Fatalf("expected two clear calls, got %v", svc.cleared)
	}
	if !slices.Equal(svc.cleared[0], []string{"fr", "de"}) {
		t.Fatalf("expected trimmed locales, got %v", svc.cleared[0])
	}
	if len(svc.cleared[1]) != 0 {
		t.Fatalf("expected no locales for clear all, got %v", svc.cleared[1])
	}
}

func TestInvalidateHandlerRejectsBlankLocale(t *testing.T) {
	svc := &stubService{}
	handler := NewInvalidateOverrideCacheHandler(svc, logging.NoOp())

	err := handler.Execute(context.Background(), InvalidateOverrideCacheCommand{Locales: []string{"fr", ""}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(svc.cleared) != 0 {
		t.Fatal("expected cache untouched")
	}
}

func TestInvalidateHandlerWrapsClearError(t *testing.T) {
	svc := &stubService{clearErr: errors.New("redis down")}
	handler := NewInvalidateOverrideCacheHandler(svc, logging.NoOp())

	err := handler.Execute(context.Background(), InvalidateOverrideCacheCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) || !errors.Is(err, svc.clearErr) {
		t.Fatalf("expected wrapped command error, got %v", err)
	}
}

func TestWarmHandlerLoadsEveryKnownLocale(t *testing.T) {
	failure := errors.New("query failed")
	svc := &stubService{known: []string{"en", "fr", "ku"}, warmErr: map[string]error{"ku": failure}}
	handler := NewWarmOverrideCacheHandler(svc, logging.NoOp())

	err := handler.Execute(context.Background(), WarmOverrideCacheCommand{})
	if !errors.Is(err, failure) {
		t.Fatalf("expected ku failure to surface, got %v", err)
	}
	if !slices.Equal(svc.warmed, []string{"en", "fr"}) {
		t.Fatalf("expected remaining locales warmed, got %v", svc.warmed)
	}
}

func TestRegisterOverrideCommands(t *testing.T) {
	reg := &recordingRegistry{}
	set, err := RegisterOverrideCommands(reg, &stubService{}, nil, 0)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.Invalidate == nil || set.Warm == nil || len(reg.handlers) != 2 {
		t.Fatalf("unexpected registration %+v %v", set, reg.handlers)
	}
	if got := set.Invalidate.CLIOptions().Path; !slices.Equal(got, []string{"cache", "clear"}) {
		t.Fatalf("unexpected cli path %v", got)
	}

	if _, err := RegisterOverrideCommands(reg, nil, nil, 0); err == nil {
		t.Fatal("expected error for nil service")
	}
}
