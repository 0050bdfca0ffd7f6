package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/nazim1903/Businesstracker/internal/infra"
	"github.com/nazim1903/Businesstracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Dashboard godoc
// @Summary  Cash-flow totals, active deposits and pending customer balances
// @Tags     reports
// @Produce  json
// @Success  200 {object} dto.DashboardReport
// @Router   /v1/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) CashFlowPDF(c *gin.Context) {
	report, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.WriteCashFlowPDF(&buf, report); err != nil {
		_ = c.Error(err)
		return
	}
	sendPDF(c, fmt.Sprintf("cash_flow_%s.pdf", time.Now().Format("20060102")), buf.Bytes())
}

func (h *ReportsHandler) CustomerReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.CustomerReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) CustomerStatementPDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	report, err := h.svc.CustomerReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.WriteStatementPDF(&buf, report); err != nil {
		_ = c.Error(err)
		return
	}
	sendPDF(c, "statement_"+id.String()+".pdf", buf.Bytes())
}

// OrderReport godoc
// @Summary  One order with its customer, payments and outstanding balance
// @Tags     reports
// @Produce  json
// @Param    id  path string true "Order ID"
// @Success  200 {object} dto.OrderReport
// @Failure  404 {object} apierror.APIError
// @Router   /v1/orders/{id}/report [get]
func (h *ReportsHandler) OrderReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.OrderReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) OrderStatementPDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	report, err := h.svc.OrderReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.WriteOrderStatementPDF(&buf, report); err != nil {
		_ = c.Error(err)
		return
	}
	sendPDF(c, "order_"+id.String()+".pdf", buf.Bytes())
}

func sendPDF(c *gin.Context, name string, body []byte) {
	log.Debug().Str("file", name).Int("bytes", len(body)).Msg("pdf rendered")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
