package http

import (
	"net/http"

	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/logger"
)

type SyncHandler struct {
	syncUC   usecase.SyncUC
	statusUC usecase.StatusUC
	logger   logger.Logger
}

func NewSyncHandler(syncUC usecase.SyncUC, statusUC usecase.StatusUC, logger logger.Logger) *SyncHandler {
	return &SyncHandler{syncUC: syncUC, statusUC: statusUC, logger: logger}
}

// triggerSync
//
//	@Summary		Запуск синхронизации
//	@Description	Синхронизирует один магазин или все сразу. force снимает зависший running-проход
//	@Tags			sync
//	@Produce		json
//	@Param			shop	query		string	false	"TLD магазина; пусто = все магазины"
//	@Param			force	query		bool	false	"Снять зависший running-проход"
//	@Success		200		{object}	SyncRunResponse
//	@Failure		404		{object}	ErrorResponse	"Неизвестный магазин"
//	@Failure		409		{object}	ErrorResponse	"Синхронизация уже идёт"
//	@Router			/sync [post]
func (s *SyncHandler) triggerSync(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	force := q.Get("force") == "true"

	if shopTLD := q.Get("shop"); shopTLD != "" {
		run, err := s.syncUC.SyncShop(r.Context(), shopTLD, force)
		if err != nil {
			s.logger.Warnf("%s", err.Error())
			WriteError(w, err)
			return
		}

		WriteSuccess(w, http.StatusOK, NewSyncRunResponse(*run))
		return
	}

	reports := s.syncUC.SyncAll(r.Context(), force)
	out := make([]SyncReportResponse, 0, len(reports))
	for _, report := range reports {
		item := SyncReportResponse{ShopTLD: report.ShopTLD, RunID: report.RunID}
		if report.Err != nil {
			item.Error = report.Err.Error()
		}
		out = append(out, item)
	}

	WriteSuccess(w, http.StatusOK, out)
}

// lastRuns
//
//	@Summary	Последний проход синхронизации каждого магазина
//	@Tags		sync
//	@Produce	json
//	@Success	200	{array}	SyncRunResponse
//	@Router		/sync/runs/last [get]
func (s *SyncHandler) lastRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.syncUC.LastRuns(r.Context())
	if err != nil {
		s.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	out := make([]SyncRunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, NewSyncRunResponse(run))
	}

	WriteSuccess(w, http.StatusOK, out)
}

// getKPIs
//
//	@Summary	Агрегаты дашборда по магазинам
//	@Tags		kpis
//	@Produce	json
//	@Success	200	{array}	KpiResponse
//	@Router		/kpis [get]
func (s *SyncHandler) getKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := s.statusUC.GetKPIs(r.Context())
	if err != nil {
		s.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	out := make([]KpiResponse, 0, len(kpis))
	for _, kpi := range kpis {
		out = append(out, NewKpiResponse(kpi))
	}

	WriteSuccess(w, http.StatusOK, out)
}
