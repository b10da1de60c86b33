package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"github.com/umuxt/burkol-mes/internal/mes/service"
	"github.com/umuxt/burkol-mes/internal/mes/testutil"
	"github.com/umuxt/burkol-mes/internal/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPlanTest(t *testing.T) (*gin.Engine, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	rdb := testutil.SetupTestRedis(t)
	router := testutil.SetupRouter()
	router.Use(middleware.Operator())

	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos, db, rdb, zap.NewNop(), service.Options{})
	handlers := NewHandlers(svcs, repos)

	api := router.Group("/api/v1")
	api.POST("/plans", handlers.Plan.Create)
	api.GET("/plans/:id", handlers.Plan.Get)
	api.POST("/plans/:id/launch", handlers.Plan.Launch)
	api.POST("/plans/:id/pause", handlers.Plan.Pause)
	api.POST("/stations", handlers.Station.Create)

	return router, repos, db
}

func TestPlanCreateLaunchViaHTTP(t *testing.T) {
	router, _, db := setupPlanTest(t)

	testutil.SeedShiftBlock(t, db, "A", 0, 1440)
	testutil.SeedOperation(t, db, "CUT", 1)
	station := testutil.SeedStation(t, db, "ST-A", 1)
	testutil.SeedWorker(t, db, "W001", "A", 1, []string{"CUT"}, station.ID)
	testutil.SeedStock(t, db, "STEEL", 50)

	w := testutil.DoRequest(router, "POST", "/api/v1/plans", map[string]interface{}{
		"title": "接口联调",
		"nodes": []map[string]interface{}{
			{
				"node_code":       "N1",
				"operation_code":  "CUT",
				"nominal_minutes": 30,
				"output_qty":      5,
				"materials": []map[string]interface{}{
					{"material_code": "STEEL", "quantity": 5},
				},
				"stations": []map[string]interface{}{
					{"station_id": station.ID, "priority": 1},
				},
			},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	planID := data["id"].(string)
	if data["status"] != "DRAFT" {
		t.Errorf("plan status = %v, want DRAFT", data["status"])
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/plans/"+planID+"/launch", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	assignments := data["assignments"].([]interface{})
	if len(assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(assignments))
	}
	summary := data["summary"].(map[string]interface{})
	if summary["assigned_nodes"].(float64) != 1 {
		t.Errorf("assigned_nodes = %v, want 1", summary["assigned_nodes"])
	}

	// 详情应带出节点
	w = testutil.DoRequest(router, "GET", "/api/v1/plans/"+planID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["status"] != "ACTIVE" {
		t.Errorf("plan status = %v, want ACTIVE", data["status"])
	}
	nodes := data["nodes"].([]interface{})
	if len(nodes) != 1 {
		t.Errorf("expected 1 node in detail, got %d", len(nodes))
	}
}

func TestPlanCreateRejectsCycleViaHTTP(t *testing.T) {
	router, _, db := setupPlanTest(t)

	testutil.SeedOperation(t, db, "CUT", 1)
	station := testutil.SeedStation(t, db, "ST-A", 1)

	w := testutil.DoRequest(router, "POST", "/api/v1/plans", map[string]interface{}{
		"title": "环",
		"nodes": []map[string]interface{}{
			{"node_code": "N1", "operation_code": "CUT", "nominal_minutes": 30, "output_qty": 1,
				"stations":     []map[string]interface{}{{"station_id": station.ID}},
				"predecessors": []string{"N2"}},
			{"node_code": "N2", "operation_code": "CUT", "nominal_minutes": 30, "output_qty": 1,
				"stations":     []map[string]interface{}{{"station_id": station.ID}},
				"predecessors": []string{"N1"}},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPlanLaunchNotFoundViaHTTP(t *testing.T) {
	router, _, _ := setupPlanTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/plans/00000000-0000-0000-0000-000000000000/launch", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
