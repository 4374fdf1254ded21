package service

import (
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
)

// 数量台账基础函数：全部是对已查出记录的纯计算，不做任何IO。
// 派生数量（剩余包数、剔除总量）每次调用时从原始记录重新计算，
// 不单独缓存，避免与源记录不一致。

// AllocatedPacks 包装条目当前已分配的总包数
func AllocatedPacks(allocations []entity.StorageAllocation) int {
	total := 0
	for _, a := range allocations {
		total += a.TotalPacks
	}
	return total
}

// AllocatedPacksExcluding 排除指定分配后的已分配总包数
// 编辑分配时排除自身再校验，避免原地改量与自己冲突
func AllocatedPacksExcluding(allocations []entity.StorageAllocation, excludeID string) int {
	total := 0
	for _, a := range allocations {
		if a.ID == excludeID {
			continue
		}
		total += a.TotalPacks
	}
	return total
}

// RemainingPacks 包装条目剩余可分配包数，下限为0
func RemainingPacks(entry *entity.PackEntry, allocations []entity.StorageAllocation) int {
	remaining := entry.PackCount - AllocatedPacks(allocations)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PackCountFor 按单包规格折算总质量对应的整包数
func PackCountFor(quantity, packSize float64) int {
	if packSize <= 0 {
		return 0
	}
	return int(quantity / packSize)
}

// LatestAttempt 取检测历史中次序最高的记录；空历史返回nil
// 该记录是"产出能否进入包装"的唯一判断依据
func LatestAttempt(attempts []entity.MetalCheckAttempt) *entity.MetalCheckAttempt {
	var latest *entity.MetalCheckAttempt
	for i := range attempts {
		if latest == nil || attempts[i].AttemptNo > latest.AttemptNo {
			latest = &attempts[i]
		}
	}
	return latest
}

// FailedRejectedMass 汇总全部FAIL检测的剔除质量
// 用于损耗报表，与当前检测结论无关（历史不丢弃）
func FailedRejectedMass(attempts []entity.MetalCheckAttempt) float64 {
	total := 0.0
	for _, attempt := range attempts {
		if attempt.Status != entity.MetalCheckStatusFail {
			continue
		}
		for _, rej := range attempt.Rejections {
			total += rej.Weight
		}
	}
	return total
}
