// Package staticdata loads the YaMDb CSV fixtures into the store.
package staticdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Files that must exist in the import directory, in load order.
var requiredFiles = []string{"category.csv", "genre.csv", "titles.csv", "genre_title.csv"}

// Stats counts the rows written per table.
type Stats struct {
	Categories  int
	Genres      int
	Titles      int
	TitleGenres int
	Users       int
	Reviews     int
	Comments    int
}

type Importer struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewImporter(db *gorm.DB, logger *logrus.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

type step struct {
	file     string
	optional bool
	load     func(tx *gorm.DB, rows []row) (int, error)
	count    *int
}

// row is one CSV record addressed by header name.
type row map[string]string

func (r row) int64(col string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(r[col]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return v, nil
}

func (r row) optionalInt64(col string) (*int64, error) {
	if strings.TrimSpace(r[col]) == "" {
		return nil, nil
	}
	v, err := r.int64(col)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r row) time(col string) (time.Time, error) {
	raw := strings.TrimSpace(r[col])
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	return t, nil
}

// Import loads every fixture file from dir in a single transaction. Rows are
// upserted by id so running the import twice is harmless. users.csv,
// review.csv and comments.csv are optional.
func (im *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	for _, name := range requiredFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("missing %s: %w", name, err)
		}
	}

	stats := &Stats{}
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := map[int64]string{}
		steps := []step{
			{"category.csv", false, loadCategories, &stats.Categories},
			{"genre.csv", false, loadGenres, &stats.Genres},
			{"titles.csv", false, loadTitles, &stats.Titles},
			{"genre_title.csv", false, loadTitleGenres, &stats.TitleGenres},
			{"users.csv", true, func(tx *gorm.DB, rows []row) (int, error) { return loadUsers(tx, rows, users) }, &stats.Users},
			{"review.csv", true, func(tx *gorm.DB, rows []row) (int, error) { return loadReviews(tx, rows, users) }, &stats.Reviews},
			{"comments.csv", true, func(tx *gorm.DB, rows []row) (int, error) { return loadComments(tx, rows, users) }, &stats.Comments},
		}

		for _, st := range steps {
			rows, err := readCSV(filepath.Join(dir, st.file))
			if errors.Is(err, os.ErrNotExist) && st.optional {
				continue
			}
			if err != nil {
				return fmt.Errorf("%s: %w", st.file, err)
			}
			n, err := st.load(tx, rows)
			if err != nil {
				return fmt.Errorf("%s: %w", st.file, err)
			}
			*st.count = n
			im.logger.WithFields(logrus.Fields{"file": st.file, "rows": n}).Info("Imported fixture file")
		}

		return resetSequences(tx)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func readCSV(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rw := make(row, len(header))
		for i, col := range header {
			rw[col] = record[i]
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

func upsert(tx *gorm.DB, value any) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

func loadCategories(tx *gorm.DB, rows []row) (int, error) {
	for i, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		if err := upsert(tx, &models.Category{ID: id, Name: r["name"], Slug: r["slug"]}); err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

func loadGenres(tx *gorm.DB, rows []row) (int, error) {
	for i, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		if err := upsert(tx, &models.Genre{ID: id, Name: r["name"], Slug: r["slug"]}); err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

func loadTitles(tx *gorm.DB, rows []row) (int, error) {
	for i, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		year, err := r.int64("year")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		category, err := r.optionalInt64("category")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		title := &models.Title{ID: id, Name: r["name"], Year: int(year), CategoryID: category}
		if desc := r["description"]; desc != "" {
			title.Description = &desc
		}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(title).Error; err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

func loadTitleGenres(tx *gorm.DB, rows []row) (int, error) {
	for i, r := range rows {
		titleID, err := r.int64("title_id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		genreID, err := r.int64("genre_id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		link := map[string]any{"title_id": titleID, "genre_id": genreID}
		if err := tx.Table("title_genres").Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error; err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

// loadUsers records the fixture id of every user so reviews and comments can
// resolve their author column.
func loadUsers(tx *gorm.DB, rows []row, ids map[int64]string) (int, error) {
	for i, r := range rows {
		csvID, err := r.int64("id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		role := access.RoleUser
		if raw := strings.TrimSpace(r["role"]); raw != "" {
			if role, err = access.ParseRole(raw); err != nil {
				return i, fmt.Errorf("line %d: %w", i+2, err)
			}
		}

		username := strings.TrimSpace(r["username"])
		email := strings.TrimSpace(r["email"])
		if username == "" || email == "" {
			return i, fmt.Errorf("line %d: username and email are required", i+2)
		}
		if strings.EqualFold(username, "me") {
			return i, fmt.Errorf("line %d: username %q is reserved", i+2, username)
		}

		var user models.User
		err = tx.Where(models.User{Username: username}).
			Attrs(models.User{
				Email:     email,
				FirstName: r["first_name"],
				LastName:  r["last_name"],
				Bio:       r["bio"],
				Role:      role,
			}).
			FirstOrCreate(&user).Error
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		ids[csvID] = user.ID
	}
	return len(rows), nil
}

func author(r row, users map[int64]string) (string, error) {
	csvID, err := r.int64("author")
	if err != nil {
		return "", err
	}
	id, ok := users[csvID]
	if !ok {
		return "", fmt.Errorf("unknown author %d", csvID)
	}
	return id, nil
}

func loadReviews(tx *gorm.DB, rows []row, users map[int64]string) (int, error) {
	for i, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		titleID, err := r.int64("title_id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		score, err := r.int64("score")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		authorID, err := author(r, users)
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		pub, err := r.time("pub_date")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		review := &models.Review{ID: id, TitleID: titleID, AuthorID: authorID, Text: r["text"], Score: int(score), PubDate: pub}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(review).Error; err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

func loadComments(tx *gorm.DB, rows []row, users map[int64]string) (int, error) {
	for i, r := range rows {
		id, err := r.int64("id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		reviewID, err := r.int64("review_id")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		authorID, err := author(r, users)
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		pub, err := r.time("pub_date")
		if err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
		comment := &models.Comment{ID: id, ReviewID: reviewID, AuthorID: authorID, Text: r["text"], PubDate: pub}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(comment).Error; err != nil {
			return i, fmt.Errorf("line %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

// resetSequences moves postgres serial counters past the imported ids.
func resetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"categories", "genres", "titles", "reviews", "comments"} {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1)) FROM %[1]s", table)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}
