package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"github.com/umuxt/burkol-mes/internal/mes/scheduler"
	"github.com/umuxt/burkol-mes/internal/shared/lock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// 启动警告原因码
const (
	WarnNoEligibleResource = "NO_ELIGIBLE_RESOURCE"
	WarnCalendarExhausted  = "CALENDAR_EXHAUSTED"
	WarnCommitFailed       = "COMMIT_FAILED"
)

// PlanService 计划生命周期与启动排程编排。
// 同一计划的启动/暂停/恢复持计划级互斥锁，不允许并发。
type PlanService struct {
	repos  *repository.Repositories
	db     *gorm.DB
	locker *lock.PlanLocker
	ledger *LedgerService
	logger *zap.Logger
	opts   Options
}

func NewPlanService(repos *repository.Repositories, db *gorm.DB, locker *lock.PlanLocker, ledger *LedgerService, logger *zap.Logger, opts Options) *PlanService {
	return &PlanService{
		repos:  repos,
		db:     db,
		locker: locker,
		ledger: ledger,
		logger: logger,
		opts:   opts,
	}
}

type CreateNodeMaterial struct {
	MaterialCode string  `json:"material_code" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Unit         string  `json:"unit"`
}

type CreateNodeStation struct {
	StationID string `json:"station_id" binding:"required"`
	Priority  int    `json:"priority"`
}

type CreateNodeRequest struct {
	NodeCode           string               `json:"node_code" binding:"required"`
	OperationCode      string               `json:"operation_code" binding:"required"`
	NominalMinutes     float64              `json:"nominal_minutes" binding:"required,gt=0"`
	OutputMaterialCode string               `json:"output_material_code"`
	OutputQty          float64              `json:"output_qty"`
	Materials          []CreateNodeMaterial `json:"materials"`
	Stations           []CreateNodeStation  `json:"stations"`
	Predecessors       []string             `json:"predecessors"` // 前置节点的 node_code
}

type CreatePlanRequest struct {
	Title string              `json:"title"`
	Notes string              `json:"notes"`
	Nodes []CreateNodeRequest `json:"nodes" binding:"required,min=1"`
}

// Create 创建生产计划。依赖图在建计划时即校验无环，
// 含环的计划直接拒绝，不等启动时再失败。
func (s *PlanService) Create(req CreatePlanRequest, userID string) (*entity.ProductionPlan, error) {
	idByCode := make(map[string]string, len(req.Nodes))
	for _, n := range req.Nodes {
		if _, dup := idByCode[n.NodeCode]; dup {
			return nil, fmt.Errorf("节点编号重复: %s", n.NodeCode)
		}
		idByCode[n.NodeCode] = uuid.New().String()
	}

	var nodeIDs []string
	var edges []scheduler.Edge
	for _, n := range req.Nodes {
		nodeIDs = append(nodeIDs, idByCode[n.NodeCode])
		for _, pred := range n.Predecessors {
			predID, ok := idByCode[pred]
			if !ok {
				return nil, fmt.Errorf("节点 %s 的前置 %s 不存在", n.NodeCode, pred)
			}
			edges = append(edges, scheduler.Edge{From: predID, To: idByCode[n.NodeCode]})
		}
	}
	if _, err := scheduler.BuildWaves(nodeIDs, edges); err != nil {
		return nil, fmt.Errorf("计划依赖图非法: %w", err)
	}

	now := time.Now()
	seq, err := s.repos.Counter.Next("plan_code:" + now.Format("20060102"))
	if err != nil {
		return nil, fmt.Errorf("生成计划编号失败: %w", err)
	}
	plan := &entity.ProductionPlan{
		ID:        uuid.New().String(),
		PlanCode:  fmt.Sprintf("PP-%s%04d", now.Format("20060102"), seq),
		Title:     req.Title,
		Status:    entity.PlanStatusDraft,
		Notes:     req.Notes,
		CreatedBy: userID,
	}

	for _, n := range req.Nodes {
		node := entity.PlanNode{
			ID:                 idByCode[n.NodeCode],
			PlanID:             plan.ID,
			NodeCode:           n.NodeCode,
			OperationCode:      n.OperationCode,
			NominalMinutes:     n.NominalMinutes,
			OutputMaterialCode: n.OutputMaterialCode,
			OutputQty:          n.OutputQty,
			Status:             entity.NodeStatusPending,
		}
		for _, m := range n.Materials {
			unit := m.Unit
			if unit == "" {
				unit = "pcs"
			}
			node.Materials = append(node.Materials, entity.NodeMaterial{
				ID:           uuid.New().String(),
				NodeID:       node.ID,
				MaterialCode: m.MaterialCode,
				Quantity:     m.Quantity,
				Unit:         unit,
			})
		}
		for _, st := range n.Stations {
			priority := st.Priority
			if priority <= 0 {
				priority = 1
			}
			node.Stations = append(node.Stations, entity.NodeStation{
				ID:        uuid.New().String(),
				NodeID:    node.ID,
				StationID: st.StationID,
				Priority:  priority,
			})
		}
		for _, pred := range n.Predecessors {
			node.Dependencies = append(node.Dependencies, entity.NodeDependency{
				ID:            uuid.New().String(),
				NodeID:        node.ID,
				PredecessorID: idByCode[pred],
			})
		}
		plan.Nodes = append(plan.Nodes, node)
	}

	if err := s.repos.Plan.Create(plan); err != nil {
		return nil, fmt.Errorf("创建计划失败: %w", err)
	}
	return plan, nil
}

func (s *PlanService) GetByID(id string) (*entity.ProductionPlan, error) {
	return s.repos.Plan.GetByID(id)
}

func (s *PlanService) List(params repository.PlanListParams) ([]entity.ProductionPlan, int64, error) {
	return s.repos.Plan.List(params)
}

// LaunchWarning 未能派工的节点及原因，部分启动语义的一部分
type LaunchWarning struct {
	NodeID   string `json:"node_id"`
	NodeCode string `json:"node_code"`
	Code     string `json:"code"`
	Reason   string `json:"reason"`
}

// LaunchSummary 启动结果摘要
type LaunchSummary struct {
	TotalNodes            int        `json:"total_nodes"`
	AssignedNodes         int        `json:"assigned_nodes"`
	WorkersUsed           int        `json:"workers_used"`
	SubstationsUsed       int        `json:"substations_used"`
	WaveCount             int        `json:"wave_count"`
	ParallelPaths         int        `json:"parallel_paths"` // 最宽一波的节点数
	EstimatedStart        *time.Time `json:"estimated_start"`
	EstimatedEnd          *time.Time `json:"estimated_end"`
	EstimatedTotalMinutes float64    `json:"estimated_total_minutes"`
}

// LaunchResult 启动排程结果。部分失败不报错，
// 未派工节点连同原因进入 Warnings。
type LaunchResult struct {
	Assignments []entity.Assignment `json:"assignments"`
	Warnings    []LaunchWarning     `json:"warnings"`
	Summary     LaunchSummary       `json:"summary"`
}

// workerSlot 单个工人的排程游标。游标只允许在持有 mu 时读写，
// 槽位表在 newLaunchState 之后不再增删，波次并发只触碰槽位内部。
type workerSlot struct {
	mu     sync.Mutex
	cursor time.Time
}

// launchState 单次启动的内存排程状态。
// 游标与子工位占用的写入按 工人锁→工站锁 的固定顺序串行化。
type launchState struct {
	provider  scheduler.Provider
	now       time.Time
	workers   []scheduler.CandidateWorker
	calendars map[string]scheduler.Calendar
	opEff     map[string]float64
	slots     map[string]*workerSlot
	stationMu map[string]*sync.Mutex
	subStates map[string][]scheduler.SubstationState

	mu          sync.Mutex
	assignments []entity.Assignment
	warnings    []LaunchWarning
	deferred    []*entity.PlanNode
	workersUsed map[string]bool
	subsUsed    map[string]bool
}

func (st *launchState) addAssignment(a entity.Assignment) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.assignments = append(st.assignments, a)
	st.workersUsed[a.WorkerID] = true
	st.subsUsed[a.SubstationID] = true
}

func (st *launchState) addWarning(node *entity.PlanNode, code, reason string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.warnings = append(st.warnings, LaunchWarning{
		NodeID:   node.ID,
		NodeCode: node.NodeCode,
		Code:     code,
		Reason:   reason,
	})
}

func (st *launchState) addDeferred(node *entity.PlanNode) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.deferred = append(st.deferred, node)
}

func (st *launchState) takeDeferred() []*entity.PlanNode {
	st.mu.Lock()
	defer st.mu.Unlock()
	nodes := st.deferred
	st.deferred = nil
	return nodes
}

// markSubstationReserved 更新内存占用视图（须持有对应工站锁）
func (st *launchState) markSubstationReserved(stationID, subID string) {
	states := st.subStates[stationID]
	for i := range states {
		if states[i].SubstationID == subID {
			states[i].Available = false
		}
	}
}

// newLaunchState 装载排程所需的工人画像、日历、子工位占用视图，
// 并从各工人现有派工队列重算游标（恢复启动不回放历史）。
func (s *PlanService) newLaunchState(now time.Time) (*launchState, error) {
	st := &launchState{
		provider:    scheduler.NewProvider(s.opts.HorizonDays),
		now:         now,
		calendars:   make(map[string]scheduler.Calendar),
		opEff:       make(map[string]float64),
		slots:       make(map[string]*workerSlot),
		stationMu:   make(map[string]*sync.Mutex),
		subStates:   make(map[string][]scheduler.SubstationState),
		workersUsed: make(map[string]bool),
		subsUsed:    make(map[string]bool),
	}

	ops, err := s.repos.Plan.ListOperations()
	if err != nil {
		return nil, fmt.Errorf("读取工序主数据失败: %w", err)
	}
	for _, op := range ops {
		st.opEff[op.Code] = op.DefaultEfficiency
	}

	workers, err := s.repos.Worker.ListActive()
	if err != nil {
		return nil, fmt.Errorf("读取工人失败: %w", err)
	}

	laneShifts := make(map[string]map[time.Weekday][]scheduler.Block)
	for _, w := range workers {
		shifts, ok := laneShifts[w.Lane]
		if !ok {
			blocks, err := s.repos.Worker.ListShiftBlocks(w.Lane)
			if err != nil {
				return nil, fmt.Errorf("读取通道 %s 班次失败: %w", w.Lane, err)
			}
			shifts = make(map[time.Weekday][]scheduler.Block)
			for _, b := range blocks {
				for _, d := range b.Weekdays {
					if d < '1' || d > '7' {
						continue
					}
					wd := time.Weekday(int(d-'0') % 7) // 7=周日
					shifts[wd] = append(shifts[wd], scheduler.Block{
						StartMinute: b.StartMinute,
						EndMinute:   b.EndMinute,
					})
				}
			}
			laneShifts[w.Lane] = shifts
		}

		cal := scheduler.Calendar{
			Shifts:    shifts,
			Overrides: make(map[string][]scheduler.Block),
		}
		for _, ov := range w.Overrides {
			key := ov.Date.Format("2006-01-02")
			cal.Overrides[key] = append(cal.Overrides[key], scheduler.Block{
				StartMinute: ov.StartMinute,
				EndMinute:   ov.EndMinute,
			})
		}
		for _, ab := range w.Absences {
			cal.Absences = append(cal.Absences, scheduler.DateRange{From: ab.FromDate, To: ab.ToDate})
		}
		st.calendars[w.ID] = cal

		cw := scheduler.CandidateWorker{
			WorkerID:        w.ID,
			Code:            w.Code,
			Operations:      make(map[string]bool),
			StationPriority: make(map[string]int),
			Efficiency:      w.Efficiency,
		}
		for _, op := range w.Operations {
			cw.Operations[op.OperationCode] = true
		}
		for _, ws := range w.Stations {
			cw.StationPriority[ws.StationID] = ws.Priority
		}
		st.workers = append(st.workers, cw)

		cursor := now
		if maxEnd, err := s.repos.Assignment.MaxEstimatedEnd(w.ID); err == nil && maxEnd != nil && maxEnd.After(cursor) {
			cursor = *maxEnd
		}
		st.slots[w.ID] = &workerSlot{cursor: cursor}
	}

	subs, err := s.repos.Station.ListAllSubstations()
	if err != nil {
		return nil, fmt.Errorf("读取子工位失败: %w", err)
	}
	for _, sub := range subs {
		st.subStates[sub.StationID] = append(st.subStates[sub.StationID], scheduler.SubstationState{
			SubstationID: sub.ID,
			Priority:     sub.Priority,
			Available:    sub.Status == entity.SubstationStatusAvailable,
		})
		if _, ok := st.stationMu[sub.StationID]; !ok {
			st.stationMu[sub.StationID] = &sync.Mutex{}
		}
	}

	return st, nil
}

// Launch 启动计划：分波排程、派工、预留WIP物料。
// 依赖图含环时整体中止且零写入；单节点失败只产生警告（部分启动）。
func (s *PlanService) Launch(ctx context.Context, planID, userID string) (*LaunchResult, error) {
	token, err := s.locker.Acquire(ctx, planID)
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, planID, token)

	plan, err := s.repos.Plan.GetByID(planID)
	if err != nil {
		return nil, fmt.Errorf("计划不存在: %w", err)
	}
	if plan.Status != entity.PlanStatusDraft && plan.Status != entity.PlanStatusActive {
		return nil, fmt.Errorf("计划状态不允许启动: %s", plan.Status)
	}

	nodeByID := make(map[string]*entity.PlanNode, len(plan.Nodes))
	var nodeIDs []string
	var edges []scheduler.Edge
	for i := range plan.Nodes {
		node := &plan.Nodes[i]
		nodeByID[node.ID] = node
		nodeIDs = append(nodeIDs, node.ID)
		for _, dep := range node.Dependencies {
			edges = append(edges, scheduler.Edge{From: dep.PredecessorID, To: node.ID})
		}
	}

	// 结构校验先于一切写入：含环即中止，零派工提交
	waves, err := scheduler.BuildWaves(nodeIDs, edges)
	if err != nil {
		return nil, fmt.Errorf("计划 %s 依赖图非法: %w", plan.PlanCode, err)
	}

	now := time.Now()
	st, err := s.newLaunchState(now)
	if err != nil {
		return nil, err
	}

	// 已有派工的节点跳过（恢复启动幂等）
	existing, err := s.repos.Assignment.ListByPlan(planID)
	if err != nil {
		return nil, fmt.Errorf("读取已有派工失败: %w", err)
	}
	alreadyAssigned := make(map[string]bool)
	for _, a := range existing {
		alreadyAssigned[a.NodeID] = true
	}

	for _, wave := range waves {
		// 暂停检查：暂停只停止继续派工，已提交的预留不回滚
		if status, serr := s.repos.Plan.GetStatus(planID); serr == nil && status == entity.PlanStatusPaused {
			s.logger.Info("计划已暂停，停止继续派工",
				zap.String("plan_id", planID),
				zap.String("plan_code", plan.PlanCode))
			break
		}

		g := new(errgroup.Group)
		for _, id := range wave {
			node := nodeByID[id]
			if alreadyAssigned[node.ID] || node.Status == entity.NodeStatusCompleted {
				continue
			}
			g.Go(func() error {
				s.scheduleNode(st, plan, node, userID, false)
				return nil
			})
		}
		g.Wait()

		// 延后的候选重试一次：并行完工可能已释放子工位
		for _, node := range st.takeDeferred() {
			s.scheduleNode(st, plan, node, userID, true)
		}
	}

	if plan.Status == entity.PlanStatusDraft {
		plan.Status = entity.PlanStatusActive
		plan.LaunchedAt = &now
		if err := s.repos.Plan.Update(plan); err != nil {
			return nil, fmt.Errorf("更新计划状态失败: %w", err)
		}
	}

	result := &LaunchResult{
		Assignments: st.assignments,
		Warnings:    st.warnings,
	}
	result.Summary = s.buildSummary(plan, st, len(waves), widestWave(waves), alreadyAssigned)

	s.logger.Info("计划启动完成",
		zap.String("plan_code", plan.PlanCode),
		zap.Int("total_nodes", result.Summary.TotalNodes),
		zap.Int("assigned_nodes", result.Summary.AssignedNodes),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

func widestWave(waves [][]string) int {
	widest := 0
	for _, w := range waves {
		if len(w) > widest {
			widest = len(w)
		}
	}
	return widest
}

func (s *PlanService) buildSummary(plan *entity.ProductionPlan, st *launchState, waveCount, parallel int, alreadyAssigned map[string]bool) LaunchSummary {
	summary := LaunchSummary{
		TotalNodes:      len(plan.Nodes),
		WorkersUsed:     len(st.workersUsed),
		SubstationsUsed: len(st.subsUsed),
		WaveCount:       waveCount,
		ParallelPaths:   parallel,
	}

	assigned := make(map[string]bool, len(alreadyAssigned))
	for id := range alreadyAssigned {
		assigned[id] = true
	}
	for _, a := range st.assignments {
		assigned[a.NodeID] = true
	}
	summary.AssignedNodes = len(assigned)

	for i := range st.assignments {
		a := &st.assignments[i]
		if summary.EstimatedStart == nil || a.EstimatedStart.Before(*summary.EstimatedStart) {
			summary.EstimatedStart = &a.EstimatedStart
		}
		if summary.EstimatedEnd == nil || a.EstimatedEnd.After(*summary.EstimatedEnd) {
			summary.EstimatedEnd = &a.EstimatedEnd
		}
	}
	if summary.EstimatedStart != nil && summary.EstimatedEnd != nil {
		summary.EstimatedTotalMinutes = summary.EstimatedEnd.Sub(*summary.EstimatedStart).Minutes()
	}
	return summary
}

// scheduleNode 为单个节点选定候选、计算时段并提交派工。
// 失败只影响本节点：候选逐个降级，耗尽后记警告。
func (s *PlanService) scheduleNode(st *launchState, plan *entity.ProductionPlan, node *entity.PlanNode, userID string, isRetry bool) {
	options := make([]scheduler.StationOption, 0, len(node.Stations))
	for _, ns := range node.Stations {
		options = append(options, scheduler.StationOption{StationID: ns.StationID, Priority: ns.Priority})
	}

	ranked, err := scheduler.RankCandidates(node.OperationCode, options, st.workers)
	if err != nil {
		st.addWarning(node, WarnNoEligibleResource,
			fmt.Sprintf("工序 %s 无具备资质且绑定候选工站的工人", node.OperationCode))
		return
	}

	sawBusy := false
	probed := 0
	calendarMisses := 0
	for _, pair := range ranked {
		slot := st.slots[pair.WorkerID]
		smu := st.stationMu[pair.StationID]
		if smu == nil {
			continue // 工站无子工位
		}
		slot.mu.Lock()
		smu.Lock()

		subID, found := scheduler.PickSubstation(st.subStates[pair.StationID])
		if !found {
			smu.Unlock()
			slot.mu.Unlock()
			sawBusy = true
			continue
		}
		probed++

		eff := pair.Efficiency
		if eff <= 0 {
			eff = st.opEff[node.OperationCode]
		}
		if eff <= 0 {
			eff = 1
		}
		duration := node.NominalMinutes / eff

		from := slot.cursor
		if from.Before(st.now) {
			from = st.now
		}
		start, end, err := st.provider.PlaceDuration(st.calendars[pair.WorkerID], from, duration)
		if err != nil {
			smu.Unlock()
			slot.mu.Unlock()
			calendarMisses++
			continue
		}

		assignment, err := s.commitAssignment(plan, node, pair, subID, start, end, userID)
		if err != nil {
			smu.Unlock()
			slot.mu.Unlock()
			st.addWarning(node, WarnCommitFailed, err.Error())
			s.logger.Warn("派工提交失败",
				zap.String("node_code", node.NodeCode),
				zap.String("worker_id", pair.WorkerID),
				zap.Error(err))
			return
		}

		st.markSubstationReserved(pair.StationID, subID)
		slot.cursor = end
		smu.Unlock()
		slot.mu.Unlock()

		st.addAssignment(*assignment)
		return
	}

	if sawBusy && !isRetry {
		st.addDeferred(node)
		return
	}
	// 日历耗尽只看真正试过排期的候选，被占用跳过的不计入
	if calendarMisses > 0 && calendarMisses == probed {
		st.addWarning(node, WarnCalendarExhausted,
			fmt.Sprintf("所有候选工人在%d天前瞻范围内无可容纳时段", st.provider.HorizonDays))
		return
	}
	st.addWarning(node, WarnNoEligibleResource, "候选工站子工位均被占用")
}

// commitAssignment 候选确定后的提交步骤：取号、建派工单、预留物料、
// 占用子工位、记状态台账、节点状态镜像，单事务原子完成。
func (s *PlanService) commitAssignment(plan *entity.ProductionPlan, node *entity.PlanNode, pair scheduler.Pair, subID string, start, end time.Time, userID string) (*entity.Assignment, error) {
	var created entity.Assignment
	err := s.ledger.withRetry(func(tx *gorm.DB) error {
		seq, err := s.repos.Counter.NextTx(tx, fmt.Sprintf("assign_seq:%s:%s", plan.ID, pair.WorkerID))
		if err != nil {
			return fmt.Errorf("派工序号取号失败: %w", err)
		}

		a := entity.Assignment{
			ID:             uuid.New().String(),
			PlanID:         plan.ID,
			NodeID:         node.ID,
			WorkerID:       pair.WorkerID,
			SubstationID:   subID,
			SequenceNumber: seq,
			EstimatedStart: start,
			EstimatedEnd:   end,
			Status:         entity.AssignmentStatusQueued,
			CreatedBy:      userID,
		}
		if err := tx.Create(&a).Error; err != nil {
			return fmt.Errorf("创建派工单失败: %w", err)
		}

		if err := s.ledger.reserveIn(tx, a.ID, userID, node.Materials); err != nil {
			return err
		}

		reserved, err := s.repos.Station.ReserveSubstation(tx, subID, a.ID, pair.WorkerID)
		if err != nil {
			return fmt.Errorf("占用子工位失败: %w", err)
		}
		if !reserved {
			return fmt.Errorf("子工位 %s 已被占用", subID)
		}

		if err := s.repos.Assignment.AppendHistory(tx, &entity.AssignmentStatusHistory{
			AssignmentID: a.ID,
			ToStatus:     entity.AssignmentStatusQueued,
			ChangedBy:    userID,
		}); err != nil {
			return fmt.Errorf("写入状态台账失败: %w", err)
		}

		// 节点状态镜像首个派工单
		if node.Status == entity.NodeStatusPending {
			if err := tx.Model(&entity.PlanNode{}).
				Where("id = ?", node.ID).
				Update("status", entity.NodeStatusQueued).Error; err != nil {
				return fmt.Errorf("更新节点状态失败: %w", err)
			}
			node.Status = entity.NodeStatusQueued
		}

		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Pause 暂停计划：停止继续派工，已提交的预留保持不变
func (s *PlanService) Pause(ctx context.Context, planID string) (*entity.ProductionPlan, error) {
	token, err := s.locker.Acquire(ctx, planID)
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, planID, token)

	plan, err := s.repos.Plan.GetByID(planID)
	if err != nil {
		return nil, fmt.Errorf("计划不存在: %w", err)
	}
	if plan.Status != entity.PlanStatusActive {
		return nil, fmt.Errorf("计划状态不允许暂停: %s", plan.Status)
	}
	now := time.Now()
	plan.Status = entity.PlanStatusPaused
	plan.PausedAt = &now
	if err := s.repos.Plan.Update(plan); err != nil {
		return nil, fmt.Errorf("暂停计划失败: %w", err)
	}
	return plan, nil
}

// Resume 恢复计划。只做生命周期流转；
// 排程游标在下次启动时从当前派工状态重算。
func (s *PlanService) Resume(ctx context.Context, planID string) (*entity.ProductionPlan, error) {
	token, err := s.locker.Acquire(ctx, planID)
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, planID, token)

	plan, err := s.repos.Plan.GetByID(planID)
	if err != nil {
		return nil, fmt.Errorf("计划不存在: %w", err)
	}
	if plan.Status != entity.PlanStatusPaused {
		return nil, fmt.Errorf("计划状态不允许恢复: %s", plan.Status)
	}
	now := time.Now()
	plan.Status = entity.PlanStatusActive
	plan.ResumedAt = &now
	if err := s.repos.Plan.Update(plan); err != nil {
		return nil, fmt.Errorf("恢复计划失败: %w", err)
	}
	return plan, nil
}
