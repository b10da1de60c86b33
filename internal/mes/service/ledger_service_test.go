package service

import (
	"context"
	"testing"

	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"github.com/umuxt/burkol-mes/internal/mes/testutil"
)

// 预留10、实耗8的完整闭环：
// 预留 -10，实耗 -8（仅记录），冲销 +2，净效果 -8。
func TestLedgerReserveConsumeAdjust(t *testing.T) {
	repos, svcs, db := setupServices(t)

	testutil.SeedShiftBlock(t, db, "A", 0, 1440)
	testutil.SeedOperation(t, db, "CUT", 1)
	station := testutil.SeedStation(t, db, "ST-A", 1)
	testutil.SeedWorker(t, db, "W001", "A", 1, []string{"CUT"}, station.ID)
	testutil.SeedStock(t, db, "STEEL", 100)

	plan, err := svcs.Plan.Create(CreatePlanRequest{
		Title: "台账闭环",
		Nodes: []CreateNodeRequest{
			{
				NodeCode:           "N1",
				OperationCode:      "CUT",
				NominalMinutes:     30,
				OutputMaterialCode: "PLATE",
				OutputQty:          10,
				Materials:          []CreateNodeMaterial{{MaterialCode: "STEEL", Quantity: 10}},
				Stations:           []CreateNodeStation{{StationID: station.ID, Priority: 1}},
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
	assignmentID := result.Assignments[0].ID

	// 预留后在库 90
	stock, _ := repos.Stock.GetStock("STEEL")
	if stock.OnHand != 90 {
		t.Fatalf("after reservation on hand = %v, want 90", stock.OnHand)
	}

	if _, err := svcs.Execution.Start(assignmentID, "tester"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// 产出8件，按比例实耗8
	if _, err := svcs.Execution.Complete(assignmentID, CompleteRequest{ActualQty: 8}, "tester"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// 净效果：100 - 8 = 92
	stock, _ = repos.Stock.GetStock("STEEL")
	if stock.OnHand != 92 {
		t.Errorf("final on hand = %v, want 92", stock.OnHand)
	}

	movements, err := repos.Stock.ListMovementsByAssignment(assignmentID)
	if err != nil {
		t.Fatalf("ListMovementsByAssignment failed: %v", err)
	}
	bySubtype := make(map[string]entity.StockMovement)
	for _, m := range movements {
		bySubtype[m.Subtype] = m
	}

	if m := bySubtype[entity.MovementWIPReservation]; m.Quantity != -10 {
		t.Errorf("reservation quantity = %v, want -10", m.Quantity)
	}
	consumption, ok := bySubtype[entity.MovementConsumption]
	if !ok {
		t.Fatal("missing consumption movement")
	}
	if consumption.Quantity != -8 {
		t.Errorf("consumption quantity = %v, want -8", consumption.Quantity)
	}
	// 实耗条目不变动在库
	if consumption.StockBefore != consumption.StockAfter {
		t.Errorf("consumption snapshot changed stock: %v -> %v", consumption.StockBefore, consumption.StockAfter)
	}
	adjustment, ok := bySubtype[entity.MovementAdjustment]
	if !ok {
		t.Fatal("missing adjustment movement")
	}
	if adjustment.Quantity != 2 {
		t.Errorf("adjustment quantity = %v, want +2", adjustment.Quantity)
	}

	// 产出入库
	receipt, ok := bySubtype[entity.MovementProductionReceipt]
	if !ok {
		t.Fatal("missing production receipt movement")
	}
	if receipt.MaterialCode != "PLATE" || receipt.Quantity != 8 {
		t.Errorf("production receipt = %s %v, want PLATE +8", receipt.MaterialCode, receipt.Quantity)
	}
	plate, _ := repos.Stock.GetStock("PLATE")
	if plate.OnHand != 8 {
		t.Errorf("PLATE on hand = %v, want 8", plate.OnHand)
	}
}

// 完全一致时记零额冲销，保证每条预留都有配平条目
func TestLedgerZeroAdjustmentRecorded(t *testing.T) {
	repos, svcs, db := setupServices(t)

	testutil.SeedShiftBlock(t, db, "A", 0, 1440)
	testutil.SeedOperation(t, db, "CUT", 1)
	station := testutil.SeedStation(t, db, "ST-A", 1)
	testutil.SeedWorker(t, db, "W001", "A", 1, []string{"CUT"}, station.ID)
	testutil.SeedStock(t, db, "STEEL", 50)

	plan, err := svcs.Plan.Create(CreatePlanRequest{
		Title: "零冲销",
		Nodes: []CreateNodeRequest{
			{
				NodeCode:       "N1",
				OperationCode:  "CUT",
				NominalMinutes: 30,
				OutputQty:      5,
				Materials:      []CreateNodeMaterial{{MaterialCode: "STEEL", Quantity: 5}},
				Stations:       []CreateNodeStation{{StationID: station.ID, Priority: 1}},
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
	assignmentID := result.Assignments[0].ID

	if _, err := svcs.Execution.Start(assignmentID, "tester"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svcs.Execution.Complete(assignmentID, CompleteRequest{ActualQty: 5}, "tester"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	movements, _ := repos.Stock.ListMovementsByAssignment(assignmentID)
	var adjustment *entity.StockMovement
	for i := range movements {
		if movements[i].Subtype == entity.MovementAdjustment {
			adjustment = &movements[i]
		}
	}
	if adjustment == nil {
		t.Fatal("zero adjustment not recorded")
	}
	if adjustment.Quantity != 0 {
		t.Errorf("adjustment quantity = %v, want 0", adjustment.Quantity)
	}

	stock, _ := repos.Stock.GetStock("STEEL")
	if stock.OnHand != 45 {
		t.Errorf("final on hand = %v, want 45", stock.OnHand)
	}
}

// 投入料报废并入实耗：预留10，产出8（实耗8），报废1，冲销 +1
func TestLedgerInputScrapIncludedInConsumption(t *testing.T) {
	repos, svcs, db := setupServices(t)

	testutil.SeedShiftBlock(t, db, "A", 0, 1440)
	testutil.SeedOperation(t, db, "CUT", 1)
	station := testutil.SeedStation(t, db, "ST-A", 1)
	testutil.SeedWorker(t, db, "W001", "A", 1, []string{"CUT"}, station.ID)
	testutil.SeedStock(t, db, "STEEL", 100)

	plan, err := svcs.Plan.Create(CreatePlanRequest{
		Title: "报废并耗",
		Nodes: []CreateNodeRequest{
			{
				NodeCode:       "N1",
				OperationCode:  "CUT",
				NominalMinutes: 30,
				OutputQty:      10,
				Materials:      []CreateNodeMaterial{{MaterialCode: "STEEL", Quantity: 10}},
				Stations:       []CreateNodeStation{{StationID: station.ID, Priority: 1}},
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
	assignmentID := result.Assignments[0].ID

	if _, err := svcs.Execution.Start(assignmentID, "tester"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svcs.Execution.ReportScrap(assignmentID, ScrapRequest{
		Kind: entity.ScrapKindInput, MaterialCode: "STEEL", Delta: 1,
	}, "tester"); err != nil {
		t.Fatalf("ReportScrap failed: %v", err)
	}
	if _, err := svcs.Execution.Complete(assignmentID, CompleteRequest{ActualQty: 8}, "tester"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	movements, _ := repos.Stock.ListMovementsByAssignment(assignmentID)
	for _, m := range movements {
		switch m.Subtype {
		case entity.MovementConsumption:
			if m.Quantity != -9 { // 8比例实耗 + 1报废
				t.Errorf("consumption = %v, want -9", m.Quantity)
			}
		case entity.MovementAdjustment:
			if m.Quantity != 1 {
				t.Errorf("adjustment = %v, want +1", m.Quantity)
			}
		}
	}
	// 净效果 100 - 9 = 91
	stock, _ := repos.Stock.GetStock("STEEL")
	if stock.OnHand != 91 {
		t.Errorf("final on hand = %v, want 91", stock.OnHand)
	}
}

func TestLedgerReceipt(t *testing.T) {
	repos, svcs, _ := setupServices(t)

	if err := svcs.Ledger.Receipt("STEEL", 30, "期初入库", "tester"); err != nil {
		t.Fatalf("Receipt failed: %v", err)
	}
	stock, err := repos.Stock.GetStock("STEEL")
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if stock.OnHand != 30 {
		t.Errorf("on hand = %v, want 30", stock.OnHand)
	}

	if err := svcs.Ledger.Receipt("STEEL", -5, "", "tester"); err == nil {
		t.Error("expected negative receipt to fail")
	}
}
