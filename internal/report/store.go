// Package report persists the ledger's auxiliary keyed data: saved
// filter presets, monthly and yearly memos, and the last-used UI state.
// Each collection lives under its own snapshot key.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/storage"
)

var yearMonthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

var (
	ErrNameRequired     = errors.New("report name is required")
	ErrInvalidYearMonth = errors.New("invalid year-month")
)

// Store holds saved reports, memos and UI state.
type Store struct {
	mu        sync.Mutex
	snapshots storage.Store

	reports []core.Report
	monthly map[string]core.MonthlyMemo
	yearly  map[string]string
	uiState map[string]string
}

func NewStore(ctx context.Context, snapshots storage.Store) (*Store, error) {
	s := &Store{
		snapshots: snapshots,
		monthly:   make(map[string]core.MonthlyMemo),
		yearly:    make(map[string]string),
		uiState:   make(map[string]string),
	}

	if err := loadKey(ctx, snapshots, storage.KeySavedReports, &s.reports); err != nil {
		return nil, err
	}
	if err := loadKey(ctx, snapshots, storage.KeyMonthlyMemos, &s.monthly); err != nil {
		return nil, err
	}
	if err := loadKey(ctx, snapshots, storage.KeyYearlyMemos, &s.yearly); err != nil {
		return nil, err
	}
	if err := loadKey(ctx, snapshots, storage.KeyUIState, &s.uiState); err != nil {
		return nil, err
	}
	if s.monthly == nil {
		s.monthly = make(map[string]core.MonthlyMemo)
	}
	if s.yearly == nil {
		s.yearly = make(map[string]string)
	}
	if s.uiState == nil {
		s.uiState = make(map[string]string)
	}
	return s, nil
}

func loadKey(ctx context.Context, snapshots storage.Store, key string, out any) error {
	raw, err := snapshots.Get(ctx, key)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			return nil
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SaveReport stores a filter preset under a fresh id.
func (s *Store) SaveReport(ctx context.Context, r core.Report) (core.Report, error) {
	if r.Name == "" {
		return core.Report{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	s.reports = append(s.reports, r)

	if err := s.persist(ctx, storage.KeySavedReports, s.reports); err != nil {
		return core.Report{}, err
	}
	return r, nil
}

// Reports returns the saved presets in creation order.
func (s *Store) Reports() []core.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// DeleteReport removes a preset, reporting false for an unknown id.
func (s *Store) DeleteReport(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.reports {
		if r.ID == id {
			s.reports = append(s.reports[:i], s.reports[i+1:]...)
			if err := s.persist(ctx, storage.KeySavedReports, s.reports); err != nil {
				return true, err
			}
			return true, nil
		}
	}
	return false, nil
}

// SetMonthlyMemo stores the memo for a YYYY-MM month. An empty memo
// removes the month's entry.
func (s *Store) SetMonthlyMemo(ctx context.Context, yearMonth string, memo core.MonthlyMemo) error {
	if !yearMonthRe.MatchString(yearMonth) {
		return fmt.Errorf("%w: %q", ErrInvalidYearMonth, yearMonth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if memo.Events == "" && memo.Plans == "" {
		delete(s.monthly, yearMonth)
	} else {
		s.monthly[yearMonth] = memo
	}
	return s.persist(ctx, storage.KeyMonthlyMemos, s.monthly)
}

// MonthlyMemo returns the memo for a month.
func (s *Store) MonthlyMemo(yearMonth string) (core.MonthlyMemo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.monthly[yearMonth]
	return m, ok
}

// SetYearlyMemo stores the free-text memo for a year.
func (s *Store) SetYearlyMemo(ctx context.Context, year, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text == "" {
		delete(s.yearly, year)
	} else {
		s.yearly[year] = text
	}
	return s.persist(ctx, storage.KeyYearlyMemos, s.yearly)
}

// YearlyMemo returns the memo for a year.
func (s *Store) YearlyMemo(year string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.yearly[year]
	return m, ok
}

// SaveUIState stores the last-used values of named UI fields.
func (s *Store) SaveUIState(ctx context.Context, state map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range state {
		if v == "" {
			delete(s.uiState, k)
		} else {
			s.uiState[k] = v
		}
	}
	return s.persist(ctx, storage.KeyUIState, s.uiState)
}

// UIState returns a copy of the stored UI field values.
func (s *Store) UIState() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.uiState))
	for k, v := range s.uiState {
		out[k] = v
	}
	return out
}

func (s *Store) persist(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.snapshots.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
