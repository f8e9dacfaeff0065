package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rent-backend/internal/models"
)

type MissionRepository struct {
	DB *pgxpool.Pool
}

func NewMissionRepository(db *pgxpool.Pool) *MissionRepository {
	return &MissionRepository{DB: db}
}

// GetActiveByProperty returns the agent mission attached to a property,
// if one is in a state that earns commission. Returns nil, nil when the
// property is managed without an agent.
func (r *MissionRepository) GetActiveByProperty(ctx context.Context, propertyID int) (*models.Mission, error) {
	query := `
		SELECT id, property_id, agent_id, status, created_at
		FROM missions
		WHERE property_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	mission := &models.Mission{}
	err := r.DB.QueryRow(ctx, query, propertyID,
		models.MissionStatusAccepted, models.MissionStatusCompleted,
	).Scan(
		&mission.ID, &mission.PropertyID, &mission.AgentID,
		&mission.Status, &mission.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return mission, nil
}
