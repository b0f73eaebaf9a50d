package service

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

// 级联步骤按序记录，失败步骤不进入已完成清单且错误带步骤名
func TestCascadeStepRecording(t *testing.T) {
	c := NewCascade(zap.NewNop(), "test.cascade")

	if err := c.Step("第一步", func() error { return nil }); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if err := c.Step("第二步", func() error { return nil }); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	boom := errors.New("boom")
	err := c.Step("第三步", func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}
	if err.Error() != fmt.Sprintf("第三步: %v", boom) {
		t.Fatalf("expected step name in error, got %v", err)
	}

	applied := c.Applied()
	if len(applied) != 2 || applied[0] != "第一步" || applied[1] != "第二步" {
		t.Fatalf("expected applied [第一步 第二步], got %v", applied)
	}
}
