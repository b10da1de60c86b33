package scheduler

import (
	"errors"
	"sort"
)

// ErrNoEligibleResource 节点无任何可用 (工人, 工站) 候选。
// 按节点上报为警告，不中止整体启动。
var ErrNoEligibleResource = errors.New("无可用工人工站组合")

// StationOption 节点候选工站，Priority=1 为首选
type StationOption struct {
	StationID string
	Priority  int
}

// CandidateWorker 参与匹配的工人画像
type CandidateWorker struct {
	WorkerID string
	Code     string
	// Operations 资质工序集合
	Operations map[string]bool
	// StationPriority 工人绑定工站及工人侧优先级，未绑定即不在map中
	StationPriority map[string]int
	Efficiency      float64
}

// Pair 排序后的 (工人, 工站) 候选
type Pair struct {
	WorkerID       string
	WorkerCode     string
	StationID      string
	NodePriority   int
	WorkerPriority int
	Efficiency     float64
}

// RankCandidates 为节点构建有序候选列表：先过滤出具备节点工序资质、
// 且绑定了节点候选工站的工人，再按节点工站优先级、工人工站优先级、
// 工人编号排序。默认节点侧优先级优先，工人侧优先级作次级排序。
// 候选为空时返回 ErrNoEligibleResource。
func RankCandidates(operationCode string, options []StationOption, workers []CandidateWorker) ([]Pair, error) {
	var pairs []Pair
	for _, opt := range options {
		for _, w := range workers {
			if !w.Operations[operationCode] {
				continue
			}
			wp, bound := w.StationPriority[opt.StationID]
			if !bound {
				continue
			}
			pairs = append(pairs, Pair{
				WorkerID:       w.WorkerID,
				WorkerCode:     w.Code,
				StationID:      opt.StationID,
				NodePriority:   opt.Priority,
				WorkerPriority: wp,
				Efficiency:     w.Efficiency,
			})
		}
	}
	if len(pairs) == 0 {
		return nil, ErrNoEligibleResource
	}

	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.NodePriority != b.NodePriority {
			return a.NodePriority < b.NodePriority
		}
		if a.WorkerPriority != b.WorkerPriority {
			return a.WorkerPriority < b.WorkerPriority
		}
		if a.WorkerCode != b.WorkerCode {
			return a.WorkerCode < b.WorkerCode
		}
		return a.StationID < b.StationID
	})
	return pairs, nil
}

// SubstationState 子工位占用视图
type SubstationState struct {
	SubstationID string
	Priority     int
	Available    bool
}

// PickSubstation 选择优先级最高（数值最小）的可用子工位。
// 没有可用子工位时返回 false，候选被延后而非丢弃。
func PickSubstation(subs []SubstationState) (string, bool) {
	best := ""
	bestPriority := 0
	for _, s := range subs {
		if !s.Available {
			continue
		}
		if best == "" || s.Priority < bestPriority ||
			(s.Priority == bestPriority && s.SubstationID < best) {
			best = s.SubstationID
			bestPriority = s.Priority
		}
	}
	return best, best != ""
}
