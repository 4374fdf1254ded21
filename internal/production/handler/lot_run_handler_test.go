package handler

import (
	"net/http"
	"testing"
	"time"

	inventoryentity "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/entity"
	inventoryrepo "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/repository"
	inventorysvc "github.com/ClementinoKing/Nutaria-Final-sub005/internal/inventory/service"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/testutil"
)

func setupLotRunTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	invRepos := inventoryrepo.NewRepositories(db)
	invSvc := inventorysvc.NewInventoryService(invRepos.SupplyBatch)

	svc := service.NewLotRunService(repos.LotRun, repos.Process, invSvc)
	handler := NewLotRunHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/production")
	api.POST("/lot-runs/ensure", handler.EnsureRun)
	api.GET("/lot-runs/:id", handler.GetRun)
	api.PUT("/lot-runs/:id/steps/:stepId", handler.AdvanceStep)
	api.POST("/lot-runs/:id/complete", handler.CompleteRun)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedLotRunTestData(t *testing.T, env *testutil.TestEnv) (processID, batchID string) {
	t.Helper()

	process := &entity.ProcessDefinition{
		ID:          "proc-cashew-001",
		Code:        "PROC-CASHEW",
		Name:        "腰果标准加工",
		ProductType: "腰果",
		Status:      "active",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := env.DB.Create(process).Error; err != nil {
		t.Fatalf("Failed to seed process: %v", err)
	}

	steps := []entity.ProcessStep{
		{ID: "pstep-001", ProcessID: process.ID, Sequence: 1, Name: "清洗", StepType: entity.StepTypeWashing},
		{ID: "pstep-002", ProcessID: process.ID, Sequence: 2, Name: "分选", StepType: entity.StepTypeSorting},
	}
	for i := range steps {
		if err := env.DB.Create(&steps[i]).Error; err != nil {
			t.Fatalf("Failed to seed process step: %v", err)
		}
	}

	now := time.Now()
	batch := &inventoryentity.SupplyBatch{
		ID:          "batch-001",
		BatchCode:   "SB-2026-001",
		ProductName: "生腰果",
		Quantity:    1000,
		Unit:        "kg",
		Status:      inventoryentity.SupplyBatchStatusReceived,
		ReceivedAt:  &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := env.DB.Create(batch).Error; err != nil {
		t.Fatalf("Failed to seed supply batch: %v", err)
	}

	return process.ID, batch.ID
}

// TestEnsureRunIdempotent 重复调用ensure应返回同一执行记录而不是重建
func TestEnsureRunIdempotent(t *testing.T) {
	env := setupLotRunTest(t)
	token := testutil.DefaultTestToken()
	processID, batchID := seedLotRunTestData(t, env)

	body := map[string]interface{}{
		"supply_batch_id": batchID,
		"process_id":      processID,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/ensure", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	runID := data["id"].(string)
	if data["status"] != entity.LotRunStatusInProgress {
		t.Fatalf("expected status IN_PROGRESS, got %v", data["status"])
	}
	steps := data["steps"].([]interface{})
	if len(steps) != 2 {
		t.Fatalf("expected 2 step runs, got %d", len(steps))
	}

	// 批次应进入processing
	var batch inventoryentity.SupplyBatch
	env.DB.Where("id = ?", batchID).First(&batch)
	if batch.Status != inventoryentity.SupplyBatchStatusProcessing {
		t.Fatalf("expected batch status processing, got %s", batch.Status)
	}

	// 再次ensure，返回同一记录
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/ensure", body, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 on second ensure, got %d: %s", w2.Code, w2.Body.String())
	}
	resp2 := testutil.ParseResponse(w2)
	data2 := resp2["data"].(map[string]interface{})
	if data2["id"].(string) != runID {
		t.Fatalf("expected same run id %s, got %v", runID, data2["id"])
	}

	var count int64
	env.DB.Model(&entity.ProcessLotRun{}).Where("supply_batch_id = ? AND process_id = ?", batchID, processID).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 run record, got %d", count)
	}
}

// TestCompleteRunRequiresAllSteps 步骤未全部完成时不允许结束执行
func TestCompleteRunRequiresAllSteps(t *testing.T) {
	env := setupLotRunTest(t)
	token := testutil.DefaultTestToken()
	processID, batchID := seedLotRunTestData(t, env)

	body := map[string]interface{}{
		"supply_batch_id": batchID,
		"process_id":      processID,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/ensure", body, token)
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	runID := data["id"].(string)
	steps := data["steps"].([]interface{})

	// 所有步骤都还是PENDING，结束应被拒绝
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/"+runID+"/complete", nil, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 completing with pending steps, got %d: %s", w2.Code, w2.Body.String())
	}

	// 逐个完成步骤
	status := entity.StepRunStatusCompleted
	for _, s := range steps {
		stepID := s.(map[string]interface{})["id"].(string)
		w3 := testutil.DoRequest(env.Router, http.MethodPut,
			"/api/v1/production/lot-runs/"+runID+"/steps/"+stepID,
			map[string]interface{}{"status": status}, token)
		if w3.Code != http.StatusOK {
			t.Fatalf("expected 200 advancing step, got %d: %s", w3.Code, w3.Body.String())
		}
		resp3 := testutil.ParseResponse(w3)
		data3 := resp3["data"].(map[string]interface{})
		// 操作人来自token，不来自请求体
		if data3["operator_id"] != "test-operator-001" {
			t.Fatalf("expected operator from token, got %v", data3["operator_id"])
		}
		if data3["ended_at"] == nil {
			t.Fatal("expected ended_at to be stamped on completion")
		}
	}

	// 全部完成后允许结束
	w4 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/"+runID+"/complete", nil, token)
	if w4.Code != http.StatusOK {
		t.Fatalf("expected 200 completing run, got %d: %s", w4.Code, w4.Body.String())
	}
	resp4 := testutil.ParseResponse(w4)
	data4 := resp4["data"].(map[string]interface{})
	if data4["status"] != entity.LotRunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %v", data4["status"])
	}
	if data4["completed_at"] == nil {
		t.Fatal("expected completed_at to be set")
	}

	// 批次翻转为已加工
	var batch inventoryentity.SupplyBatch
	env.DB.Where("id = ?", batchID).First(&batch)
	if batch.Status != inventoryentity.SupplyBatchStatusProcessed {
		t.Fatalf("expected batch status processed, got %s", batch.Status)
	}
	if batch.ProcessedAt == nil {
		t.Fatal("expected batch processed_at to be set")
	}

	// 完成后重复complete幂等
	w5 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/"+runID+"/complete", nil, token)
	if w5.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeated complete, got %d: %s", w5.Code, w5.Body.String())
	}
}

// TestCompleteRunReissuesBatchNotification 库存通知丢失后重复complete补发批次翻转
func TestCompleteRunReissuesBatchNotification(t *testing.T) {
	env := setupLotRunTest(t)
	token := testutil.DefaultTestToken()
	processID, batchID := seedLotRunTestData(t, env)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/ensure",
		map[string]interface{}{"supply_batch_id": batchID, "process_id": processID}, token)
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	runID := data["id"].(string)

	for _, s := range data["steps"].([]interface{}) {
		stepID := s.(map[string]interface{})["id"].(string)
		w2 := testutil.DoRequest(env.Router, http.MethodPut,
			"/api/v1/production/lot-runs/"+runID+"/steps/"+stepID,
			map[string]interface{}{"status": entity.StepRunStatusCompleted}, token)
		if w2.Code != http.StatusOK {
			t.Fatalf("expected 200 advancing step, got %d: %s", w2.Code, w2.Body.String())
		}
	}

	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/"+runID+"/complete", nil, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 completing run, got %d: %s", w3.Code, w3.Body.String())
	}

	// 模拟通知丢失：执行记录已COMPLETED，批次却还停在processing
	if err := env.DB.Model(&inventoryentity.SupplyBatch{}).Where("id = ?", batchID).
		Updates(map[string]interface{}{
			"status":       inventoryentity.SupplyBatchStatusProcessing,
			"processed_at": nil,
		}).Error; err != nil {
		t.Fatalf("Failed to reset batch status: %v", err)
	}

	// 重复complete仍幂等返回200，并补发批次翻转
	w4 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/"+runID+"/complete", nil, token)
	if w4.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeated complete, got %d: %s", w4.Code, w4.Body.String())
	}

	var batch inventoryentity.SupplyBatch
	env.DB.Where("id = ?", batchID).First(&batch)
	if batch.Status != inventoryentity.SupplyBatchStatusProcessed {
		t.Fatalf("expected batch re-marked processed, got %s", batch.Status)
	}
	if batch.ProcessedAt == nil {
		t.Fatal("expected batch processed_at to be restored")
	}
}

// TestEnsureRunReworkLineage 返工执行记录回指原始执行记录
func TestEnsureRunReworkLineage(t *testing.T) {
	env := setupLotRunTest(t)
	token := testutil.DefaultTestToken()
	processID, batchID := seedLotRunTestData(t, env)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/ensure",
		map[string]interface{}{"supply_batch_id": batchID, "process_id": processID}, token)
	resp := testutil.ParseResponse(w)
	originalID := resp["data"].(map[string]interface{})["id"].(string)

	// 返工批次单独入库
	now := time.Now()
	rework := &inventoryentity.SupplyBatch{
		ID:          "batch-rework-001",
		BatchCode:   "SB-2026-001-RW",
		ProductName: "生腰果（返工）",
		Quantity:    50,
		Unit:        "kg",
		Status:      inventoryentity.SupplyBatchStatusReceived,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := env.DB.Create(rework).Error; err != nil {
		t.Fatalf("Failed to seed rework batch: %v", err)
	}

	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/ensure",
		map[string]interface{}{
			"supply_batch_id":             rework.ID,
			"process_id":                  processID,
			"is_rework":                   true,
			"original_process_lot_run_id": originalID,
		}, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	resp2 := testutil.ParseResponse(w2)
	data2 := resp2["data"].(map[string]interface{})
	if data2["is_rework"] != true {
		t.Fatalf("expected is_rework true, got %v", data2["is_rework"])
	}
	if data2["original_process_lot_run_id"] != originalID {
		t.Fatalf("expected lineage to %s, got %v", originalID, data2["original_process_lot_run_id"])
	}

	// 回指不存在的执行记录应拒绝
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/lot-runs/ensure",
		map[string]interface{}{
			"supply_batch_id":             "batch-nonexistent",
			"process_id":                  processID,
			"is_rework":                   true,
			"original_process_lot_run_id": "run-nonexistent",
		}, token)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing original run, got %d: %s", w3.Code, w3.Body.String())
	}
}
