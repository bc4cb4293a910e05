package db

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/ad/go-telegram-blog/internal/models"
)

// DraftRepository is the conversation state store: one row per user,
// absent row means the user is idle.
type DraftRepository struct {
	queue *DBQueue
}

func NewDraftRepository(queue *DBQueue) *DraftRepository {
	return &DraftRepository{queue: queue}
}

// Save upserts the whole draft row.
func (r *DraftRepository) Save(draft *models.Draft) error {
	metaTags, err := json.Marshal(draft.MetaTags)
	if err != nil {
		return err
	}

	_, err = r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO drafts (user_id, step, title, body, description, photo_file_id, category_slug, selected_tags, meta_tags, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO UPDATE SET
				step = excluded.step,
				title = excluded.title,
				body = excluded.body,
				description = excluded.description,
				photo_file_id = excluded.photo_file_id,
				category_slug = excluded.category_slug,
				selected_tags = excluded.selected_tags,
				meta_tags = excluded.meta_tags,
				updated_at = CURRENT_TIMESTAMP
		`, draft.UserID, draft.Step, draft.Title, draft.Body, draft.Description,
			draft.PhotoFileID, draft.CategorySlug, strings.Join(draft.SelectedTags, ","), string(metaTags))
		return nil, err
	})
	return err
}

// Get returns the user's draft, or (nil, nil) when the user is idle.
func (r *DraftRepository) Get(userID int64) (*models.Draft, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT user_id, step, title, body, description, photo_file_id, category_slug, selected_tags, meta_tags
			FROM drafts WHERE user_id = ?
		`, userID)

		var draft models.Draft
		var selectedTags, metaTags string
		err := row.Scan(&draft.UserID, &draft.Step, &draft.Title, &draft.Body, &draft.Description,
			&draft.PhotoFileID, &draft.CategorySlug, &selectedTags, &metaTags)
		if err == sql.ErrNoRows {
			// An absent row is the idle state, not a failure: report
			// success so the queue doesn't burn retries on it.
			return (*models.Draft)(nil), nil
		}
		if err != nil {
			return nil, err
		}
		if selectedTags != "" {
			draft.SelectedTags = strings.Split(selectedTags, ",")
		}
		if err := json.Unmarshal([]byte(metaTags), &draft.MetaTags); err != nil {
			return nil, err
		}
		return &draft, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Draft), nil
}

// Clear discards the user's draft, returning them to idle.
func (r *DraftRepository) Clear(userID int64) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`DELETE FROM drafts WHERE user_id = ?`, userID)
		return nil, err
	})
	return err
}

// Count returns the number of drafts currently in progress.
func (r *DraftRepository) Count() (int, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var count int
		err := db.QueryRow(`SELECT COUNT(*) FROM drafts`).Scan(&count)
		return count, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}
