package store

import (
	"context"
	"fmt"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Mutation is one named, independently retried document write inside a
// multi-document change. An optional undo reverts it if a later mutation
// of the same unit fails.
type Mutation struct {
	Name  string
	apply func(ctx context.Context, s Store) error
	undo  func(ctx context.Context, s Store) error
}

func UserMutation(name string, id primitive.ObjectID, fn func(*models.User) error) Mutation {
	return Step(name, func(ctx context.Context, s Store) error {
		_, err := s.UpdateUser(ctx, id, fn)
		return err
	})
}

func TweetMutation(name string, id primitive.ObjectID, fn func(*models.Tweet) error) Mutation {
	return Step(name, func(ctx context.Context, s Store) error {
		_, err := s.UpdateTweet(ctx, id, fn)
		return err
	})
}

// Step wraps an arbitrary store call as a mutation.
func Step(name string, fn func(ctx context.Context, s Store) error) Mutation {
	return Mutation{Name: name, apply: fn}
}

// WithUndo attaches the compensating write run on rollback.
func (m Mutation) WithUndo(undo Mutation) Mutation {
	m.undo = undo.apply
	return m
}

// StepError reports which mutation of a unit of work failed, which ones
// had been written before it and whether they were rolled back.
type StepError struct {
	Step       string
	Applied    []string
	RolledBack bool
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("store: step %q failed after %v (rolled back: %t): %v", e.Step, e.Applied, e.RolledBack, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Apply runs the mutations in order. On the first failure it runs the undo
// of every applied mutation in reverse order and returns a *StepError.
func Apply(ctx context.Context, s Store, mutations ...Mutation) error {
	applied := make([]Mutation, 0, len(mutations))
	for _, m := range mutations {
		err := ctx.Err()
		if err == nil {
			err = m.apply(ctx, s)
		}
		if err != nil {
			return &StepError{
				Step:       m.Name,
				Applied:    names(applied),
				RolledBack: rollback(context.WithoutCancel(ctx), s, applied),
				Err:        err,
			}
		}
		applied = append(applied, m)
	}
	return nil
}

func rollback(ctx context.Context, s Store, applied []Mutation) bool {
	ok := true
	for i := len(applied) - 1; i >= 0; i-- {
		m := applied[i]
		if m.undo == nil {
			continue
		}
		if err := m.undo(ctx, s); err != nil {
			ok = false
			lib.Log.Warn("rollback step failed", zap.String("step", m.Name), zap.Error(err))
		}
	}
	return ok
}

func names(ms []Mutation) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}
