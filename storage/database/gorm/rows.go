package gormrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rm-a0/flippit-sub000/core"
)

// timestamps are set by the services
type userRow struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string
	PhotoURL     *string
	Role         string
	Username     *string
	PasswordHash string
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (userRow) TableName() string { return "users" }

type collectionRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	CreatorID uuid.UUID `gorm:"type:uuid"`
	StartTime time.Time
	EndTime   time.Time
}

func (collectionRow) TableName() string { return "collections" }

type cardRow struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	QuestionType string
	AnswerType   string
	Question     string
	Answer       string
	Description  *string
	CreatorID    uuid.UUID `gorm:"type:uuid"`
	CollectionID uuid.UUID `gorm:"type:uuid"`
}

func (cardRow) TableName() string { return "cards" }

type lessonRow struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	AnswersJSON    string    `gorm:"column:answers_json"`
	StatisticsJSON string    `gorm:"column:statistics_json"`
	UserID         uuid.UUID `gorm:"type:uuid"`
	CollectionID   uuid.UUID `gorm:"type:uuid"`
}

func (lessonRow) TableName() string { return "completed_lessons" }

// likePattern builds a LIKE operand matching val anywhere, to be compared against a LOWER()ed column.
func likePattern(val string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(val)) + "%"
}

// containsAny adds a case-insensitive substring match of val on any of the given column expressions.
func containsAny(tx *gorm.DB, val string, columns ...string) *gorm.DB {
	if val == "" || len(columns) == 0 {
		return tx
	}
	pattern := likePattern(val)
	conds := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}
	return tx.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// applyListOptions orders and pages tx. columns maps API field names to column expressions;
// fallback is used when no ordering is requested. Ties are always broken by id so paging is stable.
func applyListOptions(tx *gorm.DB, opts core.ListOptions, columns map[string]string, fallback []core.Ordering) *gorm.DB {
	ordering := opts.Ordering
	if len(ordering) == 0 {
		ordering = fallback
	}
	for _, ord := range ordering {
		col, ok := columns[ord.Field]
		if !ok {
			continue
		}
		tx = tx.Order(core.Ordering{Field: col, Ascending: ord.Ascending}.String())
	}
	tx = tx.Order("id ASC")
	if opts.Offset > 0 {
		tx = tx.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	return tx
}

// dbClosedMsg is the text of database/sql's unexported errDBClosed.
const dbClosedMsg = "sql: database is closed"

// wrapErr annotates err with msg.
// A database that is gone for good is reported as a shutdown error so the server stops.
func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), dbClosedMsg) {
		return errors.Wrap(core.NewShutdownError(err.Error()), msg)
	}
	return errors.Wrap(err, msg)
}

// trapNotFound maps gorm's "record not found" to notFound.
func trapNotFound(err error, notFound error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return wrapErr(err, msg)
}

func exists(tx *gorm.DB, model interface{}, id uuid.UUID) (bool, error) {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// checkIDFree fails with a duplicate id error when a record with id exists in model's table.
func checkIDFree(tx *gorm.DB, model interface{}, id uuid.UUID) error {
	found, err := exists(tx, model, id)
	if err != nil {
		return wrapErr(err, "checking id availability")
	}
	if found {
		return core.NewDuplicateIDError()
	}
	return nil
}
