package handlers

import (
	"net/http"
	"strconv"

	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/types"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// EmployeeList GET /api/v1/employees 的响应数据
type EmployeeList struct {
	Employees []types.EmployeeRecord `json:"employees"`
	Count     int                    `json:"count"`
}

// EmployeeHandler 已提交员工记录的只读接口
type EmployeeHandler struct {
	store  store.RecordStore
	logger *zap.Logger
}

// NewEmployeeHandler 创建处理器
func NewEmployeeHandler(st store.RecordStore, logger *zap.Logger) *EmployeeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeHandler{store: st, logger: logger.With(zap.String("component", "employee_handler"))}
}

// Register 挂载路由
func (h *EmployeeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/employees", h.HandleList)
}

// HandleList 按写入顺序返回最近 limit 条记录（最新的在最后）
func (h *EmployeeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrInvalidRequest,
				"limit must be an integer between 1 and "+strconv.Itoa(maxListLimit), h.logger)
			return
		}
		limit = n
	}

	recs, err := h.store.List(r.Context(), limit)
	if err != nil {
		WriteError(w, r, ToAPIError(err), h.logger)
		return
	}
	if recs == nil {
		recs = []types.EmployeeRecord{}
	}
	WriteSuccess(w, r, EmployeeList{Employees: recs, Count: len(recs)})
}
