package usecase

import "context"

// EventNotifier publishes domain notifications to interested outside
// systems. Publishing is best-effort: callers treat failures as warnings.
type EventNotifier interface {
	Publish(ctx context.Context, event string, payload any) error
}
