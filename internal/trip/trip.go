// Package trip opens a trip directory and wires its stores, history and
// activity log together for the CLI.
package trip

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/splitkit-dev/splitkit/internal/activity"
	"github.com/splitkit-dev/splitkit/internal/balance"
	"github.com/splitkit-dev/splitkit/internal/config"
	"github.com/splitkit-dev/splitkit/internal/expenses"
	"github.com/splitkit-dev/splitkit/internal/gitops"
	"github.com/splitkit-dev/splitkit/internal/id"
	"github.com/splitkit-dev/splitkit/internal/members"
	"github.com/splitkit-dev/splitkit/internal/model"
	"github.com/splitkit-dev/splitkit/internal/settle"
)

// ErrExists is returned by Create when the directory already holds a trip.
var ErrExists = errors.New("trip already exists")

// Trip is an opened trip directory.
type Trip struct {
	Dir      string
	Config   *config.Config
	Members  *members.Service
	Expenses *expenses.Service
	Activity *activity.Log

	repo   *gitops.Repo
	logger *zap.Logger
}

// Create lays out a new trip in dir with the given members, initializes
// git and records the creation. dir may exist but must not hold a trip.
func Create(dir, name string, memberNames []string, logger *zap.Logger) (*Trip, error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return nil, fmt.Errorf("%w in %s", ErrExists, dir)
	}

	ms, err := members.FromNames(memberNames)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, errors.New("a trip needs at least one member")
	}

	code, err := id.NewTripCode()
	if err != nil {
		return nil, fmt.Errorf("generating trip code: %w", err)
	}
	cfg := config.Default(name, code)

	for _, d := range []string{"logs", "inbox"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	if err := members.NewService(ms).Save(dir); err != nil {
		return nil, fmt.Errorf("writing members: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("exports/\n.env\n"), 0o644); err != nil {
		return nil, fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "inbox", ".gitkeep"), nil, 0o644); err != nil {
		return nil, fmt.Errorf("writing .gitkeep: %w", err)
	}

	t, err := Open(dir, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Git.AutoCommit {
		if err := t.repo.Init(); err != nil {
			return nil, err
		}
	}
	if _, err := t.Record(activity.TripCreated, code, "create trip "+name); err != nil {
		return nil, err
	}
	return t, nil
}

// Open loads the trip in dir.
func Open(dir string, logger *zap.Logger) (*Trip, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading trip in %s: %w", dir, err)
	}

	ms, err := members.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}

	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	return &Trip{
		Dir:      dir,
		Config:   cfg,
		Members:  ms,
		Expenses: expenses.NewService(dir, ms, cfg.Policy(), logger),
		Activity: activity.Open(dir, cfg.Git.AuthorName),
		repo:     gitops.Open(dir, author),
		logger:   logger,
	}, nil
}

// Snapshot is the ledger as the core sees it.
type Snapshot struct {
	Members  []model.Member
	Expenses []model.Expense
	Payments []model.Payment
}

// Snapshot reads the current members, expenses and payments.
func (t *Trip) Snapshot() (Snapshot, error) {
	exps, err := t.Expenses.All()
	if err != nil {
		return Snapshot{}, err
	}
	pays, err := t.Expenses.Payments()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Members: t.Members.All(), Expenses: exps, Payments: pays}, nil
}

// Position is a snapshot with its balances and the plan that settles them.
type Position struct {
	Snapshot
	Summaries []balance.Summary
	Balances  model.Balances
	Transfers []model.Transfer
}

// Position computes balances, per-member totals and a settlement plan.
func (t *Trip) Position() (Position, error) {
	snap, err := t.Snapshot()
	if err != nil {
		return Position{}, err
	}

	opts := []balance.Option{
		balance.WithLogger(t.logger),
		balance.WithUnknownMembers(t.Config.UnknownMembers()),
		balance.WithPayments(snap.Payments),
	}
	summaries, err := balance.Summarize(snap.Members, snap.Expenses, opts...)
	if err != nil {
		return Position{}, fmt.Errorf("computing balances: %w", err)
	}
	balances, err := balance.Compute(snap.Members, snap.Expenses, opts...)
	if err != nil {
		return Position{}, fmt.Errorf("computing balances: %w", err)
	}
	if total := balances.Total(); total != 0 {
		t.logger.Warn("balances do not sum to zero", zap.Int64("total", total))
	}

	transfers := settle.Plan(balances, settle.WithTolerance(t.Config.Split.Tolerance))
	return Position{Snapshot: snap, Summaries: summaries, Balances: balances, Transfers: transfers}, nil
}

// Record commits the working tree when auto-commit is on, appends an
// activity entry tagged with that commit and commits the entry on its own,
// leaving the tree clean. Returns the hash of the change commit, empty when
// nothing was committed.
func (t *Trip) Record(action activity.Action, ref, summary string) (string, error) {
	committing := t.Config.Git.AutoCommit && gitops.IsRepo(t.Dir)

	var hash string
	if committing {
		h, err := t.commit(fmt.Sprintf("%s: %s", action, summary))
		if err != nil {
			return "", fmt.Errorf("committing %s: %w", action, err)
		}
		hash = h
	}

	if err := t.Activity.Record(action, ref, summary, hash); err != nil {
		return hash, fmt.Errorf("writing activity log: %w", err)
	}

	if committing {
		msg := strings.TrimSpace(fmt.Sprintf("activity: %s %s", action, ref))
		if _, err := t.commit(msg); err != nil {
			return hash, fmt.Errorf("committing activity log: %w", err)
		}
	}

	t.logger.Debug("recorded activity",
		zap.String("action", string(action)),
		zap.String("ref", ref),
		zap.String("commit", hash))
	return hash, nil
}

// commit is Repo.Commit with a clean tree reported as an empty hash.
func (t *Trip) commit(message string) (string, error) {
	h, err := t.repo.Commit(message)
	if errors.Is(err, gitops.ErrNoChanges) {
		return "", nil
	}
	return h, err
}
