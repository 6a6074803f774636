package app

import (
	"context"
	"fmt"

	"flashdeck-service/internal/domain"
)

// Anti-cheat thresholds. Detection is post-hoc and advisory: a report never
// penalizes an account by itself.
const (
	accuracyMinCards     = 100
	accuracyThreshold    = 0.995
	verificationMinTotal = 10
	verificationPassMin  = 0.5
	speedWindow          = 50
	speedMinEvents       = 20
	speedMeanSeconds     = 1.0
)

// Analyzer scans persisted user stats and the recent event log for
// suspicious scoring patterns.
type Analyzer struct {
	users  UserStore
	events EventStore
}

func NewAnalyzer(users UserStore, events EventStore) *Analyzer {
	return &Analyzer{users: users, events: events}
}

// Scan inspects every account and returns advisory findings. An account can
// trip more than one rule and appear more than once.
func (a *Analyzer) Scan(ctx context.Context) ([]domain.SuspicionReport, error) {
	users, err := a.users.All(ctx)
	if err != nil {
		return nil, err
	}

	var reports []domain.SuspicionReport
	for _, user := range users {
		if r, ok := perfectAccuracy(user); ok {
			reports = append(reports, r)
		}
		if r, ok := verificationFailure(user); ok {
			reports = append(reports, r)
		}

		events, err := a.events.RecentByUser(ctx, user.Username, speedWindow)
		if err != nil {
			return nil, err
		}
		if r, ok := impossibleSpeed(user.Username, events); ok {
			reports = append(reports, r)
		}
	}
	return reports, nil
}

// perfectAccuracy flags near-perfect accuracy over a large sample.
func perfectAccuracy(user domain.UserRecord) (domain.SuspicionReport, bool) {
	if user.CardsStudied < accuracyMinCards {
		return domain.SuspicionReport{}, false
	}
	accuracy := float64(user.CorrectAnswers) / float64(user.CardsStudied)
	if accuracy < accuracyThreshold {
		return domain.SuspicionReport{}, false
	}
	return domain.SuspicionReport{
		Username: user.Username,
		Reason:   fmt.Sprintf("suspiciously perfect accuracy: %.1f%% over %d cards", accuracy*100, user.CardsStudied),
		Severity: domain.SeverityMedium,
	}, true
}

// verificationFailure flags low pass rates on verification-sampled cards,
// the strongest signal of honor-system abuse.
func verificationFailure(user domain.UserRecord) (domain.SuspicionReport, bool) {
	total := user.VerificationPassed + user.VerificationFailed
	if total < verificationMinTotal {
		return domain.SuspicionReport{}, false
	}
	passRate := float64(user.VerificationPassed) / float64(total)
	if passRate >= verificationPassMin {
		return domain.SuspicionReport{}, false
	}
	return domain.SuspicionReport{
		Username: user.Username,
		Reason:   fmt.Sprintf("low verification accuracy: %.1f%% (likely answering without knowing)", passRate*100),
		Severity: domain.SeverityHigh,
	}, true
}

// impossibleSpeed flags mean response times no human reaches.
func impossibleSpeed(username string, events []domain.StudyEvent) (domain.SuspicionReport, bool) {
	if len(events) < speedMinEvents {
		return domain.SuspicionReport{}, false
	}
	var total float64
	for _, e := range events {
		total += e.ResponseTime
	}
	mean := total / float64(len(events))
	if mean >= speedMeanSeconds {
		return domain.SuspicionReport{}, false
	}
	return domain.SuspicionReport{
		Username: username,
		Reason:   fmt.Sprintf("impossibly fast responses: %.1fs average", mean),
		Severity: domain.SeverityHigh,
	}, true
}
