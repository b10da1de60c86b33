package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/umuxt/burkol-mes/internal/mes/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestSchema = "test_mes"

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
// Skips the test when the database is unreachable.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "burkol_mes")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// Create a unique test schema for isolation
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping: database unreachable: %v", err)
	}
	if err := setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName)).Error; err != nil {
		t.Skipf("Skipping: cannot create test schema: %v", err)
	}
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// Cleanup on test completion
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		// Reconnect to drop the schema
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupTestRedis returns a redis client for lock tests.
// Skips the test when redis is unreachable.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	loadEnv()

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "127.0.0.1"), getEnv("REDIS_PORT", "6379")),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       9, // 测试专用DB
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping: redis unreachable: %v", err)
	}
	t.Cleanup(func() {
		rdb.Close()
	})
	return rdb
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "test-user-001")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedOperation creates an operation master record
func SeedOperation(t *testing.T, db *gorm.DB, code string, defaultEfficiency float64) *entity.Operation {
	t.Helper()
	op := &entity.Operation{
		ID:                uuid.New().String(),
		Code:              code,
		Name:              code,
		DefaultEfficiency: defaultEfficiency,
	}
	if err := db.Create(op).Error; err != nil {
		t.Fatalf("Failed to seed operation: %v", err)
	}
	return op
}

// SeedWorker creates a worker with operation qualifications and station bindings
func SeedWorker(t *testing.T, db *gorm.DB, code, lane string, efficiency float64, operations []string, stationIDs ...string) *entity.Worker {
	t.Helper()
	worker := &entity.Worker{
		ID:         uuid.New().String(),
		Code:       code,
		Name:       "工人" + code,
		Lane:       lane,
		Efficiency: efficiency,
		Status:     entity.WorkerStatusActive,
	}
	for _, op := range operations {
		worker.Operations = append(worker.Operations, entity.WorkerOperation{
			ID:            uuid.New().String(),
			WorkerID:      worker.ID,
			OperationCode: op,
		})
	}
	for i, stationID := range stationIDs {
		worker.Stations = append(worker.Stations, entity.WorkerStation{
			ID:        uuid.New().String(),
			WorkerID:  worker.ID,
			StationID: stationID,
			Priority:  i + 1,
		})
	}
	if err := db.Create(worker).Error; err != nil {
		t.Fatalf("Failed to seed worker: %v", err)
	}
	return worker
}

// SeedStation creates a station with the given number of substations
func SeedStation(t *testing.T, db *gorm.DB, code string, substations int) *entity.Station {
	t.Helper()
	station := &entity.Station{
		ID:   uuid.New().String(),
		Code: code,
		Name: "工站" + code,
	}
	for i := 1; i <= substations; i++ {
		station.Substations = append(station.Substations, entity.Substation{
			ID:        uuid.New().String(),
			StationID: station.ID,
			Code:      fmt.Sprintf("%s-%02d", code, i),
			Priority:  i,
			Status:    entity.SubstationStatusAvailable,
		})
	}
	if err := db.Create(station).Error; err != nil {
		t.Fatalf("Failed to seed station: %v", err)
	}
	return station
}

// SeedShiftBlock creates a lane-wide weekday shift block
func SeedShiftBlock(t *testing.T, db *gorm.DB, lane string, startMinute, endMinute int) *entity.ShiftBlock {
	t.Helper()
	block := &entity.ShiftBlock{
		ID:          uuid.New().String(),
		Lane:        lane,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		Weekdays:    "1234567",
	}
	if err := db.Create(block).Error; err != nil {
		t.Fatalf("Failed to seed shift block: %v", err)
	}
	return block
}

// SeedStock creates an on-hand stock record
func SeedStock(t *testing.T, db *gorm.DB, materialCode string, onHand float64) *entity.MaterialStock {
	t.Helper()
	stock := &entity.MaterialStock{
		ID:           uuid.New().String(),
		MaterialCode: materialCode,
		OnHand:       onHand,
		Unit:         "pcs",
	}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("Failed to seed stock: %v", err)
	}
	return stock
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
