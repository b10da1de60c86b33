// Package scheduler 提供计划启动排程的纯算法部分：
// 依赖图分波、班次日历窗口解析、资源匹配排序。
// 不依赖存储层，输入输出均为内存结构。
package scheduler

import (
	"errors"
	"sort"
)

// ErrCycleDetected 依赖图存在环，计划结构非法，整体启动中止
var ErrCycleDetected = errors.New("依赖图存在环")

// Edge 前置依赖边：To 依赖 From
type Edge struct {
	From string // 前置节点
	To   string // 后继节点
}

// BuildWaves 用Kahn算法对节点分波。第一波为无前置的节点，
// 每处理完一波，递减后继入度，新入度为零的节点进入下一波。
// 同一波内的节点依赖均已满足，可并行排程。
// 处理完所有零入度节点后仍有剩余节点时返回 ErrCycleDetected。
func BuildWaves(nodeIDs []string, edges []Edge) ([][]string, error) {
	inDegree := make(map[string]int, len(nodeIDs))
	successors := make(map[string][]string)
	for _, id := range nodeIDs {
		inDegree[id] = 0
	}

	for _, e := range edges {
		if _, ok := inDegree[e.From]; !ok {
			continue // 指向图外节点的边忽略
		}
		if _, ok := inDegree[e.To]; !ok {
			continue
		}
		successors[e.From] = append(successors[e.From], e.To)
		inDegree[e.To]++
	}

	var current []string
	for _, id := range nodeIDs {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}

	var waves [][]string
	processed := 0
	for len(current) > 0 {
		sort.Strings(current) // 波内稳定排序，保证排程结果可复现
		wave := make([]string, len(current))
		copy(wave, current)
		waves = append(waves, wave)
		processed += len(wave)

		var next []string
		for _, id := range current {
			for _, succ := range successors[id] {
				inDegree[succ]--
				if inDegree[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		current = next
	}

	if processed != len(inDegree) {
		return nil, ErrCycleDetected
	}
	return waves, nil
}
