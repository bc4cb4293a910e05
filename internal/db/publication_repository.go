package db

import (
	"database/sql"

	"github.com/ad/go-telegram-blog/internal/models"
)

// PublicationRepository keeps a log of successfully published posts.
type PublicationRepository struct {
	queue *DBQueue
}

func NewPublicationRepository(queue *DBQueue) *PublicationRepository {
	return &PublicationRepository{queue: queue}
}

func (r *PublicationRepository) Add(userID int64, title, url string) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO publications (user_id, title, url) VALUES (?, ?, ?)
		`, userID, title, url)
		return nil, err
	})
	return err
}

func (r *PublicationRepository) CountByUser(userID int64) (int, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var count int
		err := db.QueryRow(`SELECT COUNT(*) FROM publications WHERE user_id = ?`, userID).Scan(&count)
		return count, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// ListByUser returns the user's publications, newest first.
func (r *PublicationRepository) ListByUser(userID int64, limit int) ([]*models.Publication, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, user_id, title, url, created_at
			FROM publications WHERE user_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		`, userID, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var pubs []*models.Publication
		for rows.Next() {
			var p models.Publication
			if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.URL, &p.CreatedAt); err != nil {
				return nil, err
			}
			pubs = append(pubs, &p)
		}
		return pubs, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Publication), nil
}
