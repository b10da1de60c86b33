package service

import (
	"context"
	"testing"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"github.com/umuxt/burkol-mes/internal/mes/testutil"
)

func launchSingleNodePlan(t *testing.T, svcs *Services, stationID string) string {
	t.Helper()
	plan, err := svcs.Plan.Create(CreatePlanRequest{
		Title: "执行流转",
		Nodes: []CreateNodeRequest{
			{
				NodeCode:           "N1",
				OperationCode:      "CUT",
				NominalMinutes:     30,
				OutputMaterialCode: "PLATE",
				OutputQty:          10,
				Materials:          []CreateNodeMaterial{{MaterialCode: "STEEL", Quantity: 10}},
				Stations:           []CreateNodeStation{{StationID: stationID, Priority: 1}},
			},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("Create plan failed: %v", err)
	}
	result, err := svcs.Plan.Launch(context.Background(), plan.ID, "tester")
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if len(result.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(result.Assignments))
	}
	return result.Assignments[0].ID
}

func TestExecutionLifecycle(t *testing.T) {
	repos, svcs, db := setupServices(t)

	testutil.SeedShiftBlock(t, db, "A", 0, 1440)
	testutil.SeedOperation(t, db, "CUT", 1)
	station := testutil.SeedStation(t, db, "ST-A", 1)
	testutil.SeedWorker(t, db, "W001", "A", 1, []string{"CUT"}, station.ID)
	testutil.SeedStock(t, db, "STEEL", 100)

	assignmentID := launchSingleNodePlan(t, svcs, station.ID)

	// 排队中的派工单不允许直接完工
	if _, err := svcs.Execution.Complete(assignmentID, CompleteRequest{ActualQty: 1}, "tester"); err == nil {
		t.Error("expected completing a queued assignment to fail")
	}

	a, err := svcs.Execution.Start(assignmentID, "tester")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if a.Status != entity.AssignmentStatusInProgress || a.StartedAt == nil {
		t.Errorf("after start status = %s, want IN_PROGRESS with timestamp", a.Status)
	}

	// 开工后子工位转使用中
	sub, _ := repos.Station.GetSubstation(a.SubstationID)
	if sub.Status != entity.SubstationStatusInUse {
		t.Errorf("substation status = %s, want IN_USE", sub.Status)
	}

	// 重复开工被拒
	if _, err := svcs.Execution.Start(assignmentID, "tester"); err == nil {
		t.Error("expected double start to fail")
	}

	if _, err := svcs.Execution.Pause(assignmentID, "tester"); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if _, err := svcs.Execution.Resume(assignmentID, "tester"); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}

	a, err = svcs.Execution.Complete(assignmentID, CompleteRequest{ActualQty: 10, DefectQty: 1}, "tester")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if a.Status != entity.AssignmentStatusCompleted || a.CompletedAt == nil {
		t.Errorf("after complete status = %s, want COMPLETED with timestamp", a.Status)
	}

	// 完工释放子工位
	sub, _ = repos.Station.GetSubstation(a.SubstationID)
	if sub.Status != entity.SubstationStatusAvailable {
		t.Errorf("substation status = %s, want AVAILABLE", sub.Status)
	}
	if sub.CurrentAssignmentID != nil {
		t.Error("substation still references completed assignment")
	}

	// 节点与计划级联完工
	node, _ := repos.Plan.GetNode(a.NodeID)
	if node.Status != entity.NodeStatusCompleted {
		t.Errorf("node status = %s, want COMPLETED", node.Status)
	}
	if node.ActualQty != 10 {
		t.Errorf("node actual qty = %v, want 10", node.ActualQty)
	}
	plan, _ := repos.Plan.GetByID(a.PlanID)
	if plan.Status != entity.PlanStatusCompleted {
		t.Errorf("plan status = %s, want COMPLETED", plan.Status)
	}

	// 状态台账完整覆盖全部流转
	history, _ := svcs.Execution.ListHistory(assignmentID)
	wantTransitions := []string{
		entity.AssignmentStatusQueued,
		entity.AssignmentStatusInProgress,
		entity.AssignmentStatusPaused,
		entity.AssignmentStatusInProgress,
		entity.AssignmentStatusCompleted,
	}
	if len(history) != len(wantTransitions) {
		t.Fatalf("history length = %d, want %d", len(history), len(wantTransitions))
	}
	for i, h := range history {
		if h.ToStatus != wantTransitions[i] {
			t.Errorf("history[%d] to = %s, want %s", i, h.ToStatus, wantTransitions[i])
		}
	}
}

func TestReportScrapAccumulatesAndRejectsNegativeTotal(t *testing.T) {
	_, svcs, db := setupServices(t)

	testutil.SeedShiftBlock(t, db, "A", 0, 1440)
	testutil.SeedOperation(t, db, "CUT", 1)
	station := testutil.SeedStation(t, db, "ST-A", 1)
	testutil.SeedWorker(t, db, "W001", "A", 1, []string{"CUT"}, station.ID)
	testutil.SeedStock(t, db, "STEEL", 100)

	assignmentID := launchSingleNodePlan(t, svcs, station.ID)

	// 排队中不允许报废
	if _, err := svcs.Execution.ReportScrap(assignmentID, ScrapRequest{
		Kind: entity.ScrapKindInput, MaterialCode: "STEEL", Delta: 1,
	}, "tester"); err == nil {
		t.Error("expected scrap on queued assignment to fail")
	}

	if _, err := svcs.Execution.Start(assignmentID, "tester"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	scrap, err := svcs.Execution.ReportScrap(assignmentID, ScrapRequest{
		Kind: entity.ScrapKindInput, MaterialCode: "STEEL", Delta: 2,
	}, "tester")
	if err != nil {
		t.Fatalf("ReportScrap failed: %v", err)
	}
	if scrap.Quantity != 2 {
		t.Errorf("scrap total = %v, want 2", scrap.Quantity)
	}

	// 负增量更正
	scrap, err = svcs.Execution.ReportScrap(assignmentID, ScrapRequest{
		Kind: entity.ScrapKindInput, MaterialCode: "STEEL", Delta: -1,
	}, "tester")
	if err != nil {
		t.Fatalf("ReportScrap correction failed: %v", err)
	}
	if scrap.Quantity != 1 {
		t.Errorf("scrap total = %v, want 1", scrap.Quantity)
	}

	// 更正不允许把总量修成负数
	if _, err := svcs.Execution.ReportScrap(assignmentID, ScrapRequest{
		Kind: entity.ScrapKindInput, MaterialCode: "STEEL", Delta: -5,
	}, "tester"); err == nil {
		t.Error("expected negative total to be rejected")
	}

	// 产出报废独立计数
	scrap, err = svcs.Execution.ReportScrap(assignmentID, ScrapRequest{
		Kind: entity.ScrapKindProduction, MaterialCode: "PLATE", Delta: 3,
	}, "tester")
	if err != nil {
		t.Fatalf("ReportScrap production failed: %v", err)
	}
	if scrap.Quantity != 3 {
		t.Errorf("production scrap total = %v, want 3", scrap.Quantity)
	}
}
