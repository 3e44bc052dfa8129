package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrOptimisticLock 条件更新未命中：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
	// ErrStateConflict 状态比较交换失败：当前状态与预期不一致
	ErrStateConflict = errors.New("记录当前状态与预期不一致")
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New("记录已存在")
)

// IsUniqueViolation 判断是否为 PostgreSQL 唯一约束冲突（23505）
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
