package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/insightlab/insight-reader/internal/core/domain"
	"github.com/insightlab/insight-reader/internal/core/ports"
)

// Navigation strategies, reported for observability.
const (
	StrategyKeyword   = "keyword"
	StrategyNumeric   = "numeric"
	StrategyExtracted = "extracted"
	StrategyNone      = "unrecognized"
)

type navAction int

const (
	actionNext navAction = iota
	actionPrevious
	actionFirst
	actionLast
)

// Exact-match bilingual keyword sets. Matched before any numeric or
// backend-assisted interpretation, so a token here can never be
// shadowed by another strategy.
var navigationKeywords = map[string]navAction{
	"next":    actionNext,
	"التالي":  actionNext,
	"التالية": actionNext,

	"previous": actionPrevious,
	"prev":     actionPrevious,
	"السابق":   actionPrevious,
	"السابقة":  actionPrevious,

	"first":   actionFirst,
	"الأول":   actionFirst,
	"البداية": actionFirst,

	"last":    actionLast,
	"الأخير":  actionLast,
	"النهاية": actionLast,
}

// NavigateUseCase is the per-session navigation state machine. The
// cursor is committed through the session store only on success; every
// failure path resolves to Success=false with a localized message and
// an unchanged cursor.
type NavigateUseCase struct {
	store    ports.SessionStore
	analyzer ports.DocumentAnalyzer
	logger   *slog.Logger
}

func NewNavigateUseCase(store ports.SessionStore, analyzer ports.DocumentAnalyzer, logger *slog.Logger) *NavigateUseCase {
	return &NavigateUseCase{
		store:    store,
		analyzer: analyzer,
		logger:   logger,
	}
}

func (uc *NavigateUseCase) Navigate(ctx context.Context, sessionID, command string) (domain.NavigationResult, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return domain.NavigationResult{}, domain.WrapError(domain.ErrInvalidInput, "navigate", errors.New("empty command"))
	}

	sess, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return domain.NavigationResult{}, err
	}

	current := sess.CurrentPage
	total := sess.Document.TotalPages
	locale := sess.Language

	// 1. Exact bilingual keyword. Relative moves resolve against the
	// live cursor inside the store lock so two concurrent commands on
	// one session cannot both read the same starting page.
	if action, ok := navigationKeywords[strings.ToLower(trimmed)]; ok {
		var message string
		var success bool
		page, err := uc.store.MoveCursor(ctx, sessionID, func(current, total int) (int, bool) {
			target, msg, ok := applyKeyword(action, current, total, locale)
			message, success = msg, ok
			return target, ok
		})
		if err != nil {
			return domain.NavigationResult{}, err
		}
		return domain.NavigationResult{
			Success:     success,
			CurrentPage: page,
			TotalPages:  total,
			Message:     message,
			Strategy:    StrategyKeyword,
		}, nil
	}

	target, strategy, message, success := uc.interpret(ctx, trimmed, current, total, locale)
	result := domain.NavigationResult{
		Success:     success,
		CurrentPage: current,
		TotalPages:  total,
		Message:     message,
		Strategy:    strategy,
	}
	if !success {
		return result, nil
	}

	// Absolute targets do not depend on the cursor they replace; a
	// plain write is already linearizable.
	if err := uc.store.UpdateCursor(ctx, sessionID, target); err != nil {
		return domain.NavigationResult{}, err
	}
	result.CurrentPage = target
	return result, nil
}

// interpret handles the non-keyword strategies. Keyword commands are
// resolved and committed atomically in Navigate before it is called.
func (uc *NavigateUseCase) interpret(ctx context.Context, command string, current, total int, locale domain.Locale) (target int, strategy, message string, success bool) {
	lower := strings.ToLower(command)

	// 2. Literal page number.
	if page, err := strconv.Atoi(lower); err == nil {
		if page >= 1 && page <= total {
			return page, StrategyNumeric, locale.Messagef(domain.TmplMovedToPage, page), true
		}
		return 0, StrategyNumeric, locale.Messagef(domain.TmplInvalidPage, total), false
	}

	// 3. Backend-assisted extraction over free-form phrasing.
	if page, ok := uc.analyzer.ExtractPageReference(ctx, command, current, total); ok {
		if page >= 1 && page <= total {
			return page, StrategyExtracted, locale.Messagef(domain.TmplMovedToPage, page), true
		}
		return 0, StrategyExtracted, locale.Messagef(domain.TmplInvalidPage, total), false
	}

	return 0, StrategyNone, locale.Messagef(domain.TmplUnknownCommand, command), false
}

func applyKeyword(action navAction, current, total int, locale domain.Locale) (int, string, bool) {
	switch action {
	case actionNext:
		if current >= total {
			return 0, locale.Message(domain.MsgAtLastPage), false
		}
		return current + 1, locale.Messagef(domain.TmplMovedToPage, current+1), true
	case actionPrevious:
		if current <= 1 {
			return 0, locale.Message(domain.MsgAtFirstPage), false
		}
		return current - 1, locale.Messagef(domain.TmplMovedToPage, current-1), true
	case actionFirst:
		return 1, locale.Message(domain.MsgMovedFirst), true
	case actionLast:
		return total, locale.Message(domain.MsgMovedLast), true
	}
	return 0, "", false
}
