package reservations

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
)

// ListQuery は検証・正規化済みの一覧条件
type ListQuery struct {
	StudentID string // 空なら全学生
	Roll      *int
	Status    *Status
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// Finder は JOIN 済みビューの読み取り
type Finder interface {
	List(ctx context.Context, q ListQuery) ([]View, int64, error)
	Get(ctx context.Context, id string) (*View, error)
	GetBySecret(ctx context.Context, secret string) (*View, error)
}

var dialect = goqu.Dialect("mysql")

var sortColumns = map[string]string{
	SortCreatedAt: "r.created_at",
	SortUpdatedAt: "r.updated_at",
	SortStatus:    "r.status",
}

var viewColumns = []any{
	goqu.I("r.reservation_id"),
	goqu.I("r.book_id"),
	goqu.I("r.copy_id"),
	goqu.I("r.student_id"),
	goqu.I("r.request_id"),
	goqu.I("r.secret"),
	goqu.I("r.status"),
	goqu.I("r.idx"),
	goqu.I("r.created_at"),
	goqu.I("r.updated_at"),
	goqu.I("s.name").As("student_name"),
	goqu.I("s.roll").As("student_roll"),
	goqu.I("b.title").As("book_title"),
	goqu.I("c.status").As("copy_status"),
}

type sqlFinder struct{ db *sqlx.DB }

func NewSQLFinder(conn *sql.DB) Finder { return &sqlFinder{db: sqlx.NewDb(conn, "mysql")} }

func joined() *goqu.SelectDataset {
	return dialect.From(goqu.T("reservations").As("r")).
		Join(goqu.T("students").As("s"), goqu.On(goqu.I("s.student_id").Eq(goqu.I("r.student_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.book_id").Eq(goqu.I("r.book_id")))).
		Join(goqu.T("book_copies").As("c"), goqu.On(goqu.I("c.copy_id").Eq(goqu.I("r.copy_id")))).
		Prepared(true)
}

func (f *sqlFinder) List(ctx context.Context, q ListQuery) ([]View, int64, error) {
	var where []exp.Expression
	if q.StudentID != "" {
		where = append(where, goqu.I("r.student_id").Eq(q.StudentID))
	}
	if q.Roll != nil {
		where = append(where, goqu.I("s.roll").Eq(*q.Roll))
	}
	if q.Status != nil {
		where = append(where, goqu.I("r.status").Eq(string(*q.Status)))
	}
	ds := joined().Where(where...)

	countSQL, countArgs, err := ds.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := f.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []View{}, 0, nil
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = sortColumns[DefaultSort]
	}
	order := goqu.I(col).Desc()
	if q.SortOrder == "asc" {
		order = goqu.I(col).Asc()
	}

	listSQL, listArgs, err := ds.Select(viewColumns...).
		Order(goqu.I("r.idx").Desc(), order, goqu.I("r.reservation_id").Asc()).
		Limit(uint(q.Limit)).
		Offset(uint(q.Offset)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}
	out := []View{}
	if err := f.db.SelectContext(ctx, &out, listSQL, listArgs...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (f *sqlFinder) Get(ctx context.Context, id string) (*View, error) {
	return f.getOne(ctx, goqu.I("r.reservation_id").Eq(id))
}

func (f *sqlFinder) GetBySecret(ctx context.Context, secret string) (*View, error) {
	return f.getOne(ctx, goqu.I("r.secret").Eq(secret))
}

// getOne は無ければ nil, nil
func (f *sqlFinder) getOne(ctx context.Context, cond exp.Expression) (*View, error) {
	query, args, err := joined().Select(viewColumns...).Where(cond).Limit(1).ToSQL()
	if err != nil {
		return nil, err
	}
	var v View
	err = f.db.GetContext(ctx, &v, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
