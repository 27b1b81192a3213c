package histpostgres

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/skinsight/DetectService/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

// Create - запись истории и ее болезней в одной транзакции;
// сгенерированный history_id возвращаем внутри entry
func (p PostgresRepo) Create(ctx context.Context, entry *model.HistoryEntry) error {
	tx, err := p.DB.Master.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Failed to rollback history-create tx: %v", err)
		}
	}()

	histQuery := `INSERT INTO histories (user_id, image_url, created_at)
	VALUES ($1, $2, $3)
	RETURNING history_id`
	if err := tx.QueryRowContext(ctx, histQuery, entry.UserID, entry.ImageURL, entry.CreatedAt).Scan(&entry.ID); err != nil {
		return err
	}

	diseaseQuery := `INSERT INTO diseases (history_id, disease, percentage)
	VALUES ($1, $2, $3)`
	for _, d := range entry.Diseases {
		if _, err := tx.ExecContext(ctx, diseaseQuery, entry.ID, d.Disease, d.Percentage); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByUser - записи юзера вместе с болезнями одним запросом, группировка в Go
func (p PostgresRepo) ListByUser(ctx context.Context, userID int64) ([]model.HistoryEntry, error) {
	query := `SELECT h.history_id, h.user_id, h.image_url, h.created_at, d.disease, d.percentage
	FROM histories h
	LEFT JOIN diseases d ON d.history_id = h.history_id
	WHERE h.user_id = $1
	ORDER BY h.history_id, d.percentage DESC, d.id`

	rows, err := p.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	entries := make([]model.HistoryEntry, 0)
	var current *model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var disease sql.NullString
		var percentage sql.NullInt64

		if err := rows.Scan(&entry.ID,
			&entry.UserID,
			&entry.ImageURL,
			&entry.CreatedAt,
			&disease,
			&percentage); err != nil {
			return nil, err
		}

		if current == nil || current.ID != entry.ID {
			entries = append(entries, entry)
			current = &entries[len(entries)-1]
			current.Diseases = []model.DiseaseScore{}
		}

		// LEFT JOIN: у записи может не быть ни одной болезни
		if disease.Valid {
			current.Diseases = append(current.Diseases, model.DiseaseScore{
				Disease:    disease.String,
				Percentage: int(percentage.Int64),
			})
		}
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return entries, nil
}

// GetByIDForUser - фильтр сразу по id и владельцу: чужая запись неотличима от несуществующей
func (p PostgresRepo) GetByIDForUser(ctx context.Context, id, userID int64) (*model.HistoryEntry, error) {
	histQuery := `SELECT history_id, user_id, image_url, created_at
	FROM histories
	WHERE history_id = $1 AND user_id = $2`
	var entry model.HistoryEntry

	err := p.DB.QueryRowContext(ctx, histQuery, id, userID).Scan(&entry.ID,
		&entry.UserID,
		&entry.ImageURL,
		&entry.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrHistoryNotFound
		default:
			return nil, err // 500
		}
	}

	diseaseQuery := `SELECT disease, percentage
	FROM diseases
	WHERE history_id = $1
	ORDER BY percentage DESC, id`

	rows, err := p.DB.QueryContext(ctx, diseaseQuery, id)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	entry.Diseases = []model.DiseaseScore{}
	for rows.Next() {
		var d model.DiseaseScore
		if err := rows.Scan(&d.Disease, &d.Percentage); err != nil {
			return nil, err
		}
		entry.Diseases = append(entry.Diseases, d)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return &entry, nil
}

// DeleteByIDForUser - болезни уходят каскадом по FK
func (p PostgresRepo) DeleteByIDForUser(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM histories
	WHERE history_id = $1 AND user_id = $2`

	res, err := p.DB.Master.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err // 500
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrHistoryNotFound // 404
	}
	return nil
}

func (p PostgresRepo) InsertAuditEvent(ctx context.Context, event *model.DetectionEvent) error {
	query := `INSERT INTO audit_events (event, history_id, user_id, detail)
	VALUES ($1, $2, $3, $4)`

	_, err := p.DB.Master.ExecContext(ctx, query, event.Event, event.HistoryID, event.UserID, event.Detail)
	return err
}
