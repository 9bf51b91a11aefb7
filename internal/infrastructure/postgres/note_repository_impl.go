package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
	"github.com/oksasatya/go-ddd-notes/internal/domain/repository"
)

const noteColumns = `id, user_id, title, content, tags, created_at, updated_at`

type NoteRepository struct {
	db DBTX
}

func NewNoteRepository(db DBTX) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]entity.Note, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Note, 0)
	for rows.Next() {
		var n entity.Note
		if err := scanNote(rows, &n); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return out, nil
}

// Create relies on the column defaults, so created_at and updated_at come from
// the same now() and are equal.
func (r *NoteRepository) Create(ctx context.Context, n *entity.Note) error {
	n.Tags = entity.NormalizeTags(n.Tags)
	row := r.db.QueryRow(ctx, `
		INSERT INTO notes (user_id, title, content, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING `+noteColumns,
		n.UserID, n.Title, n.Content, n.Tags)
	if err := scanNote(row, n); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *NoteRepository) Update(ctx context.Context, userID, id string, patch entity.NotePatch) (*entity.Note, error) {
	var tags any
	if patch.Tags != nil {
		tags = entity.NormalizeTags(*patch.Tags)
	}
	row := r.db.QueryRow(ctx, `
		UPDATE notes
		SET
			title = COALESCE($1, title),
			content = COALESCE($2, content),
			tags = COALESCE($3::text[], tags),
			updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING `+noteColumns,
		patch.Title, patch.Content, tags, id, userID)

	n := &entity.Note{}
	if err := scanNote(row, n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

func (r *NoteRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func scanNote(row pgx.Row, n *entity.Note) error {
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Tags, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return err
	}
	n.Tags = entity.NormalizeTags(n.Tags)
	return nil
}

var _ repository.NoteRepository = (*NoteRepository)(nil)
