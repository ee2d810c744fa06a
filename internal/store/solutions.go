package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/valuecalc/internal/solution"
	"go.uber.org/zap"
)

// ListClientSolutions returns every solution owned by clientID, ordered by
// name.
func (s *Store) ListClientSolutions(ctx context.Context, clientID string) ([]solution.Solution, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT body FROM solutions WHERE clientId = ? ORDER BY name, id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("store: list solutions: %w", err)
	}
	defer rows.Close()

	solutions := []solution.Solution{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("store: scan solution: %w", err)
		}
		sol, err := decodeSolution(body)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, sol)
	}
	return solutions, rows.Err()
}

// GetSolution returns the solution with the given id.
func (s *Store) GetSolution(ctx context.Context, id string) (*solution.Solution, error) {
	var body string
	err := s.conn.QueryRowContext(ctx, `SELECT body FROM solutions WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get solution %s: %w", id, err)
	}
	sol, err := decodeSolution(body)
	if err != nil {
		return nil, err
	}
	return &sol, nil
}

// SaveSolution stores sol as a draft, assigning an id when it has none.
// Submitted solutions cannot be overwritten.
func (s *Store) SaveSolution(ctx context.Context, sol solution.Solution) (solution.Solution, error) {
	if sol.ID == "" {
		sol.ID = uuid.NewString()
	} else {
		existing, err := s.GetSolution(ctx, sol.ID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return solution.Solution{}, err
		case existing.Status == solution.LifecycleSubmitted:
			return solution.Solution{}, ErrSubmitted
		}
	}
	sol.Status = solution.LifecycleDraft

	if err := s.write(ctx, sol); err != nil {
		return solution.Solution{}, err
	}

	s.logger.Debug("solution saved",
		zap.String("op", "store.SaveSolution"),
		zap.String("id", sol.ID),
		zap.String("client", sol.ClientID),
	)
	return sol, nil
}

// SubmitSolution validates the stored solution and marks it submitted.
func (s *Store) SubmitSolution(ctx context.Context, id string) (solution.Solution, error) {
	sol, err := s.GetSolution(ctx, id)
	if err != nil {
		return solution.Solution{}, err
	}
	if sol.Status == solution.LifecycleSubmitted {
		return *sol, nil
	}
	if err := sol.Validate(); err != nil {
		return solution.Solution{}, fmt.Errorf("store: solution %s is not valid: %w", id, err)
	}

	sol.Status = solution.LifecycleSubmitted
	if err := s.write(ctx, *sol); err != nil {
		return solution.Solution{}, err
	}

	s.logger.Info("solution submitted",
		zap.String("op", "store.SubmitSolution"),
		zap.String("id", id),
	)
	return *sol, nil
}

// DeleteSolution removes the solution with the given id.
func (s *Store) DeleteSolution(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM solutions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete solution %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete solution %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) write(ctx context.Context, sol solution.Solution) error {
	body, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("store: encode solution: %w", err)
	}
	_, err = s.conn.ExecContext(ctx, `
INSERT INTO solutions(id, clientId, name, status, body)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  clientId = excluded.clientId,
  name = excluded.name,
  status = excluded.status,
  body = excluded.body,
  updatedAt = CURRENT_TIMESTAMP
`, sol.ID, sol.ClientID, sol.Name, string(sol.Status), string(body))
	if err != nil {
		return fmt.Errorf("store: write solution %s: %w", sol.ID, err)
	}
	return nil
}

func decodeSolution(body string) (solution.Solution, error) {
	var sol solution.Solution
	if err := json.Unmarshal([]byte(body), &sol); err != nil {
		return solution.Solution{}, fmt.Errorf("store: decode solution: %w", err)
	}
	return sol, nil
}
