package testutil

import (
	"context"
	"sync"

	"github.com/Sternrassler/steam-catalog-api/pkg/catalog"
)

// StubSource is an in-process catalog.Source that records every call.
// A nil func returns an empty record.
type StubSource struct {
	AppInfoFunc      func(ctx context.Context, appID int) (catalog.Record, error)
	TagInfoFunc      func(ctx context.Context, tagIDs []string) (catalog.Record, error)
	CategoryInfoFunc func(ctx context.Context, categoryIDs []string) (catalog.Record, error)

	mu            sync.Mutex
	appCalls      []int
	tagCalls      [][]string
	categoryCalls [][]string
}

var _ catalog.Source = (*StubSource)(nil)

// AppInfo implements catalog.Source.
func (s *StubSource) AppInfo(ctx context.Context, appID int) (catalog.Record, error) {
	s.mu.Lock()
	s.appCalls = append(s.appCalls, appID)
	s.mu.Unlock()

	if s.AppInfoFunc == nil {
		return catalog.Record{}, nil
	}
	return s.AppInfoFunc(ctx, appID)
}

// TagInfo implements catalog.Source.
func (s *StubSource) TagInfo(ctx context.Context, tagIDs []string) (catalog.Record, error) {
	s.mu.Lock()
	s.tagCalls = append(s.tagCalls, append([]string(nil), tagIDs...))
	s.mu.Unlock()

	if s.TagInfoFunc == nil {
		return catalog.Record{}, nil
	}
	return s.TagInfoFunc(ctx, tagIDs)
}

// CategoryInfo implements catalog.Source.
func (s *StubSource) CategoryInfo(ctx context.Context, categoryIDs []string) (catalog.Record, error) {
	s.mu.Lock()
	s.categoryCalls = append(s.categoryCalls, append([]string(nil), categoryIDs...))
	s.mu.Unlock()

	if s.CategoryInfoFunc == nil {
		return catalog.Record{}, nil
	}
	return s.CategoryInfoFunc(ctx, categoryIDs)
}

// AppCalls returns the app ids passed to AppInfo, in call order.
func (s *StubSource) AppCalls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.appCalls...)
}

// TagCalls returns the id lists passed to TagInfo, in call order.
func (s *StubSource) TagCalls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.tagCalls...)
}

// CategoryCalls returns the id lists passed to CategoryInfo, in call order.
func (s *StubSource) CategoryCalls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.categoryCalls...)
}
