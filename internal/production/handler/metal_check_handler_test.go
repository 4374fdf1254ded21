package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/entity"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/repository"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/service"
	"github.com/ClementinoKing/Nutaria-Final-sub005/internal/production/testutil"
)

func setupMetalCheckTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	metalCheckSvc := service.NewMetalCheckService(repos.MetalCheck, repos.Sorting, repos.Packaging)
	packagingSvc := service.NewPackagingService(repos.Packaging, repos.Sorting, repos.LotRun, metalCheckSvc, nil)

	metalCheckHandler := NewMetalCheckHandler(metalCheckSvc)
	packagingHandler := NewPackagingHandler(packagingSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/production")
	api.POST("/sorting-outputs/:id/metal-checks", metalCheckHandler.RecordAttempt)
	api.GET("/sorting-outputs/:id/metal-checks", metalCheckHandler.History)
	api.POST("/step-runs/:id/packaging", packagingHandler.EnsureRun)
	api.POST("/step-runs/:id/pack-entries", packagingHandler.AddPackEntry)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// seedMetalCheckTestData 准备一条到包装步骤为止的执行链
func seedMetalCheckTestData(t *testing.T, env *testutil.TestEnv) (stepRunID, outputID string) {
	t.Helper()
	now := time.Now()

	run := &entity.ProcessLotRun{
		ID:            "run-mc-001",
		ProcessID:     "proc-mc-001",
		SupplyBatchID: "batch-mc-001",
		Status:        entity.LotRunStatusInProgress,
		StartedAt:     &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := env.DB.Create(run).Error; err != nil {
		t.Fatalf("Failed to seed run: %v", err)
	}

	step := &entity.StepRun{
		ID:              "steprun-mc-001",
		ProcessLotRunID: run.ID,
		ProcessStepID:   "pstep-mc-001",
		Sequence:        1,
		Name:            "包装",
		StepType:        entity.StepTypePackaging,
		Status:          entity.StepRunStatusInProgress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := env.DB.Create(step).Error; err != nil {
		t.Fatalf("Failed to seed step run: %v", err)
	}

	output := &entity.SortingOutput{
		ID:          "sortout-mc-001",
		StepRunID:   step.ID,
		ProductID:   "prod-w240",
		ProductName: "腰果W240",
		Quantity:    500,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := env.DB.Create(output).Error; err != nil {
		t.Fatalf("Failed to seed sorting output: %v", err)
	}

	return step.ID, output.ID
}

func ensurePackagingRun(t *testing.T, env *testutil.TestEnv, stepRunID, token string) string {
	t.Helper()
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/step-runs/"+stepRunID+"/packaging", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 creating packaging run, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

// TestMetalCheckFailRequiresRejections FAIL检测没有剔除记录时整体拒绝，不留半条数据
func TestMetalCheckFailRequiresRejections(t *testing.T) {
	env := setupMetalCheckTest(t)
	token := testutil.DefaultTestToken()
	stepRunID, outputID := seedMetalCheckTestData(t, env)
	packagingRunID := ensurePackagingRun(t, env, stepRunID, token)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/sorting-outputs/"+outputID+"/metal-checks",
		map[string]interface{}{
			"packaging_run_id": packagingRunID,
			"status":           entity.MetalCheckStatusFail,
		}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for FAIL without rejections, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.MetalCheckAttempt{}).Where("sorting_output_id = ?", outputID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no attempt rows written, got %d", count)
	}
}

// TestMetalCheckRequiresExistingTargets 产出或包装记录不存在时拒绝记录检测
func TestMetalCheckRequiresExistingTargets(t *testing.T) {
	env := setupMetalCheckTest(t)
	token := testutil.DefaultTestToken()
	stepRunID, outputID := seedMetalCheckTestData(t, env)
	packagingRunID := ensurePackagingRun(t, env, stepRunID, token)

	// 产出ID不存在
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/sorting-outputs/sortout-nonexistent/metal-checks",
		map[string]interface{}{
			"packaging_run_id": packagingRunID,
			"status":           entity.MetalCheckStatusPass,
		}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing sorting output, got %d: %s", w.Code, w.Body.String())
	}

	// 包装记录ID不存在
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/sorting-outputs/"+outputID+"/metal-checks",
		map[string]interface{}{
			"packaging_run_id": "pkgrun-nonexistent",
			"status":           entity.MetalCheckStatusPass,
		}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing packaging run, got %d: %s", w2.Code, w2.Body.String())
	}

	// 两次拒绝都不应留下检测记录
	var count int64
	env.DB.Model(&entity.MetalCheckAttempt{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no attempt rows written, got %d", count)
	}
}

// TestMetalCheckAttemptSequenceAndGate FAIL后复检PASS，门禁放行并快照检测信息
func TestMetalCheckAttemptSequenceAndGate(t *testing.T) {
	env := setupMetalCheckTest(t)
	token := testutil.DefaultTestToken()
	stepRunID, outputID := seedMetalCheckTestData(t, env)
	packagingRunID := ensurePackagingRun(t, env, stepRunID, token)

	packEntryBody := map[string]interface{}{
		"sorting_output_id": outputID,
		"pack_identifier":   "PKG-W240-01",
		"quantity":          500,
		"pack_size":         5,
	}

	// 没有任何检测时不允许包装
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/step-runs/"+stepRunID+"/pack-entries", packEntryBody, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 packing without metal check, got %d: %s", w.Code, w.Body.String())
	}

	// 第一次检测FAIL
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/sorting-outputs/"+outputID+"/metal-checks",
		map[string]interface{}{
			"packaging_run_id": packagingRunID,
			"status":           entity.MetalCheckStatusFail,
			"rejections": []map[string]interface{}{
				{"object_type": "金属碎屑", "weight": 0.5, "corrective_action": "停机检查上游筛网"},
			},
		}, token)
	if w2.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w2.Code, w2.Body.String())
	}
	resp2 := testutil.ParseResponse(w2)
	data2 := resp2["data"].(map[string]interface{})
	if data2["attempt_no"].(float64) != 1 {
		t.Fatalf("expected attempt_no 1, got %v", data2["attempt_no"])
	}
	rejections := data2["rejections"].([]interface{})
	if len(rejections) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(rejections))
	}

	// FAIL为有效结论期间仍不允许包装
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/step-runs/"+stepRunID+"/pack-entries", packEntryBody, token)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 packing with FAIL result, got %d: %s", w3.Code, w3.Body.String())
	}
	resp3 := testutil.ParseResponse(w3)
	if !strings.Contains(resp3["message"].(string), "金属检测未通过") {
		t.Fatalf("expected gate message, got %v", resp3["message"])
	}

	// 复检PASS，次序递增到2
	w4 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/sorting-outputs/"+outputID+"/metal-checks",
		map[string]interface{}{
			"packaging_run_id": packagingRunID,
			"status":           entity.MetalCheckStatusPass,
		}, token)
	if w4.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w4.Code, w4.Body.String())
	}
	resp4 := testutil.ParseResponse(w4)
	data4 := resp4["data"].(map[string]interface{})
	if data4["attempt_no"].(float64) != 2 {
		t.Fatalf("expected attempt_no 2, got %v", data4["attempt_no"])
	}
	passAttemptID := data4["id"].(string)

	// 历史接口：2条记录、有效结论为第2次PASS、FAIL剔除合计0.5
	w5 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/production/sorting-outputs/"+outputID+"/metal-checks", nil, token)
	if w5.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w5.Code, w5.Body.String())
	}
	resp5 := testutil.ParseResponse(w5)
	data5 := resp5["data"].(map[string]interface{})
	if len(data5["items"].([]interface{})) != 2 {
		t.Fatalf("expected 2 attempts in history, got %d", len(data5["items"].([]interface{})))
	}
	latest := data5["latest"].(map[string]interface{})
	if latest["id"].(string) != passAttemptID || latest["status"] != entity.MetalCheckStatusPass {
		t.Fatalf("expected latest to be the PASS attempt, got %+v", latest)
	}
	if data5["failed_rejected_mass"].(float64) != 0.5 {
		t.Fatalf("expected failed_rejected_mass 0.5, got %v", data5["failed_rejected_mass"])
	}

	// PASS后放行，条目快照第2次检测
	w6 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/step-runs/"+stepRunID+"/pack-entries", packEntryBody, token)
	if w6.Code != http.StatusCreated {
		t.Fatalf("expected 201 packing after PASS, got %d: %s", w6.Code, w6.Body.String())
	}
	resp6 := testutil.ParseResponse(w6)
	data6 := resp6["data"].(map[string]interface{})
	if data6["metal_check_id"].(string) != passAttemptID {
		t.Fatalf("expected snapshot of attempt %s, got %v", passAttemptID, data6["metal_check_id"])
	}
	if data6["metal_check_status"] != entity.MetalCheckStatusPass {
		t.Fatalf("expected snapshot status PASS, got %v", data6["metal_check_status"])
	}
	if data6["metal_check_attempts"].(float64) != 2 {
		t.Fatalf("expected snapshot attempts 2, got %v", data6["metal_check_attempts"])
	}
	// 500kg按5kg规格折算100包
	if data6["pack_count"].(float64) != 100 {
		t.Fatalf("expected pack_count 100, got %v", data6["pack_count"])
	}
	entryID := data6["id"].(string)

	// 包装后再次FAIL检测，已有条目的快照不随检测历史变化
	w7 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/production/sorting-outputs/"+outputID+"/metal-checks",
		map[string]interface{}{
			"packaging_run_id": packagingRunID,
			"status":           entity.MetalCheckStatusFail,
			"rejections": []map[string]interface{}{
				{"object_type": "金属碎屑", "weight": 0.2},
			},
		}, token)
	if w7.Code != http.StatusCreated {
		t.Fatalf("expected 201 for third attempt, got %d: %s", w7.Code, w7.Body.String())
	}

	var entry entity.PackEntry
	if err := env.DB.Where("id = ?", entryID).First(&entry).Error; err != nil {
		t.Fatalf("Failed to reload pack entry: %v", err)
	}
	if entry.MetalCheckID != passAttemptID {
		t.Fatalf("expected snapshot to keep attempt %s, got %s", passAttemptID, entry.MetalCheckID)
	}
	if entry.MetalCheckStatus != entity.MetalCheckStatusPass {
		t.Fatalf("expected snapshot status to stay PASS, got %s", entry.MetalCheckStatus)
	}
	if entry.MetalCheckAttempts != 2 {
		t.Fatalf("expected snapshot attempts to stay 2, got %d", entry.MetalCheckAttempts)
	}
}
