package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 各表数据访问的聚合入口
type Repository struct {
	db          *gorm.DB
	Users       UserRepository
	Schedules   ScheduleRepository
	Checkins    CheckinRepository
	Assignments AssignmentRepository
	Submissions SubmissionRepository
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		Users:       &userRepo{db: db},
		Schedules:   &scheduleRepo{db: db},
		Checkins:    &checkinRepo{db: db},
		Assignments: &assignmentRepo{db: db},
		Submissions: &submissionRepo{db: db},
	}
}

// Transaction 在同一事务中执行 fn，fn 内必须使用传入的 tx
// 没有底层连接时（测试中手动组装的 Repository）直接执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Page 分页参数，Limit 为 0 时不分页
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Offset(p.Offset).Limit(p.Limit)
	}
	return db
}

// PageQuery 列表接口的分页参数，page 从 1 开始，page_size 最大 200
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

func (q PageQuery) ToPage() Page {
	size := q.PageSize
	if size <= 0 {
		size = 20
	}
	size = min(size, 200)
	page := max(q.Page, 1)
	return Page{Offset: (page - 1) * size, Limit: size}
}
