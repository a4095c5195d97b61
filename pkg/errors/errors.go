package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrTenantLockBusy 租户排课锁被占用：同一学校存在正在执行的排课写操作
var ErrTenantLockBusy = errors.New("该学校的课表正在被其他操作修改，请稍后重试")
