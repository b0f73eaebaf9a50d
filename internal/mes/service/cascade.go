package service

import (
	"fmt"

	"go.uber.org/zap"
)

// Cascade 级联步骤记录器。级联不做回滚：步骤按序执行，
// 某步失败时停止并带着已完成步骤清单记日志，方便人工对账后重试。
// 各步骤写法需幂等，重试时已生效的写入不会产生二次效果
type Cascade struct {
	name    string
	applied []string
	logger  *zap.Logger
}

func NewCascade(logger *zap.Logger, name string) *Cascade {
	return &Cascade{name: name, logger: logger}
}

// Step 执行一个级联步骤并记录
func (c *Cascade) Step(step string, fn func() error) error {
	if err := fn(); err != nil {
		c.logger.Error("cascade step failed",
			zap.String("cascade", c.name),
			zap.String("step", step),
			zap.Strings("applied", c.applied),
			zap.Error(err))
		return fmt.Errorf("%s: %w", step, err)
	}
	c.applied = append(c.applied, step)
	return nil
}

// Applied 返回已完成的步骤
func (c *Cascade) Applied() []string {
	return c.applied
}
