package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttendanceChecker 开工前的人员可用性检查
type AttendanceChecker interface {
	// CanStart 返回该工人今日是否可开工，不可开工时附原因
	CanStart(ctx context.Context, tenantID, workerID string) (bool, string, error)
}

// 打卡状态
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLeave   = "leave"
)

// RedisAttendance 基于 Redis 打卡记录的考勤检查。
// key: mes:attendance:{tenant}:{worker}:{date}
type RedisAttendance struct {
	rdb *redis.Client
}

func NewRedisAttendance(rdb *redis.Client) *RedisAttendance {
	return &RedisAttendance{rdb: rdb}
}

func attendanceKey(tenantID, workerID string) string {
	return fmt.Sprintf("mes:attendance:%s:%s:%s", tenantID, workerID, time.Now().Format("2006-01-02"))
}

// CheckIn 记录工人当日打卡状态，次日凌晨后自动过期
func (a *RedisAttendance) CheckIn(ctx context.Context, tenantID, workerID, status string) error {
	if status != AttendancePresent && status != AttendanceAbsent && status != AttendanceLeave {
		return fmt.Errorf("%w: 未知打卡状态 %s", ErrValidation, status)
	}
	return a.rdb.Set(ctx, attendanceKey(tenantID, workerID), status, 48*time.Hour).Err()
}

// CanStart 查询工人当日可用性。未打卡视为不可用
func (a *RedisAttendance) CanStart(ctx context.Context, tenantID, workerID string) (bool, string, error) {
	val, err := a.rdb.Get(ctx, attendanceKey(tenantID, workerID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, "今日未打卡", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("查询考勤失败: %w", err)
	}
	switch val {
	case AttendanceAbsent:
		return false, "缺勤", nil
	case AttendanceLeave:
		return false, "请假", nil
	}
	return true, "", nil
}
