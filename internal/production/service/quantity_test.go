package service

import (
	"testing"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
)

func TestPackCountFor(t *testing.T) {
	cases := []struct {
		quantity float64
		packSize float64
		want     int
	}{
		{500, 5, 100},
		{500, 0, 0},
		{500, -1, 0},
		{12.5, 5, 2},
		{4.9, 5, 0},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := PackCountFor(c.quantity, c.packSize); got != c.want {
			t.Errorf("PackCountFor(%v, %v) = %d, want %d", c.quantity, c.packSize, got, c.want)
		}
	}
}

func TestRemainingPacks(t *testing.T) {
	entry := &entity.PackEntry{PackCount: 100}

	allocations := []entity.StorageAllocation{
		{ID: "a1", TotalPacks: 80},
	}
	if got := RemainingPacks(entry, allocations); got != 20 {
		t.Errorf("expected remaining 20, got %d", got)
	}

	// 已分配超过产出包数时下限为0，不出负数
	over := []entity.StorageAllocation{
		{ID: "a1", TotalPacks: 80},
		{ID: "a2", TotalPacks: 40},
	}
	if got := RemainingPacks(entry, over); got != 0 {
		t.Errorf("expected remaining 0 when over-allocated, got %d", got)
	}

	if got := RemainingPacks(entry, nil); got != 100 {
		t.Errorf("expected remaining 100 with no allocations, got %d", got)
	}
}

func TestAllocatedPacksExcluding(t *testing.T) {
	allocations := []entity.StorageAllocation{
		{ID: "a1", TotalPacks: 80},
		{ID: "a2", TotalPacks: 16},
	}

	if got := AllocatedPacks(allocations); got != 96 {
		t.Errorf("expected 96 allocated, got %d", got)
	}
	// 编辑a1时排除自身，剩下的只有a2
	if got := AllocatedPacksExcluding(allocations, "a1"); got != 16 {
		t.Errorf("expected 16 excluding a1, got %d", got)
	}
	if got := AllocatedPacksExcluding(allocations, "missing"); got != 96 {
		t.Errorf("expected 96 excluding unknown id, got %d", got)
	}
}

func TestLatestAttempt(t *testing.T) {
	if got := LatestAttempt(nil); got != nil {
		t.Fatalf("expected nil for empty history, got %+v", got)
	}

	// 有效结论取次序最高的记录，与切片顺序无关
	attempts := []entity.MetalCheckAttempt{
		{ID: "m2", AttemptNo: 2, Status: entity.MetalCheckStatusPass},
		{ID: "m1", AttemptNo: 1, Status: entity.MetalCheckStatusFail},
	}
	latest := LatestAttempt(attempts)
	if latest == nil || latest.ID != "m2" {
		t.Fatalf("expected latest m2, got %+v", latest)
	}
	if latest.Status != entity.MetalCheckStatusPass {
		t.Fatalf("expected PASS, got %s", latest.Status)
	}
}

func TestFailedRejectedMass(t *testing.T) {
	attempts := []entity.MetalCheckAttempt{
		{
			AttemptNo: 1,
			Status:    entity.MetalCheckStatusFail,
			Rejections: []entity.MetalCheckRejection{
				{Weight: 0.5},
				{Weight: 0.3},
			},
		},
		{
			AttemptNo: 2,
			Status:    entity.MetalCheckStatusPass,
			// PASS记录即使带了剔除也不计入
			Rejections: []entity.MetalCheckRejection{{Weight: 9}},
		},
	}
	if got := FailedRejectedMass(attempts); got != 0.8 {
		t.Errorf("expected 0.8, got %v", got)
	}
	if got := FailedRejectedMass(nil); got != 0 {
		t.Errorf("expected 0 for empty history, got %v", got)
	}
}
