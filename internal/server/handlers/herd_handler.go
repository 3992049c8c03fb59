package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/filter"
	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
	"github.com/mamadbah2/piggery/internal/service/herd"
)

var breedingStatus = map[string]filter.Constraints{
	"":         {},
	"open":     {"open": true},
	"farrowed": {"farrowed": true},
	"aborted":  {"aborted": true},
}

// HerdHandler exposes record CRUD for sows, boars, breedings, litters and treatments.
type HerdHandler struct {
	svc    *herd.Service
	logger *zap.Logger
	now    func() time.Time
}

// NewHerdHandler constructs the handler. now supplies the farm-local clock.
func NewHerdHandler(svc *herd.Service, now func() time.Time, logger *zap.Logger) *HerdHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &HerdHandler{svc: svc, logger: logger, now: now}
}

// Register mounts the herd routes on g.
func (h *HerdHandler) Register(g *gin.RouterGroup) {
	g.GET("/sows", h.ListSows)
	g.POST("/sows", h.CreateSow)
	g.PATCH("/sows/:id", h.UpdateSow)
	g.GET("/boars", h.ListBoars)
	g.POST("/boars", h.CreateBoar)
	g.PATCH("/boars/:id", h.UpdateBoar)
	g.GET("/breedings", h.ListBreedings)
	g.POST("/breedings", h.CreateBreeding)
	g.POST("/breedings/:id/farrow", h.Farrow)
	g.POST("/breedings/:id/abort", h.Abort)
	g.DELETE("/breedings/:id", h.DeleteBreeding)
	g.GET("/litters", h.ListLitters)
	g.PATCH("/litters/:id", h.UpdateLitter)
	g.POST("/litters/:id/fattening", h.StartFattening)
	g.POST("/litters/:id/sold", h.MarkSold)
	g.GET("/medical", h.ListMedical)
	g.POST("/medical", h.CreateMedical)
	g.PATCH("/medical/:id", h.UpdateMedical)
}

// ListSows filters sows by ?q= and ?preset=.
func (h *HerdHandler) ListSows(c *gin.Context) {
	snapshot, err := h.svc.Snapshot(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sows, err := filter.Sows(snapshot.Sows, c.Query("q"), c.Query("preset"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sows": sows, "stats": filter.SowStats(sows)})
}

func (h *HerdHandler) CreateSow(c *gin.Context) {
	var in herd.SowInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	sow, err := h.svc.RegisterSow(c.Request.Context(), userID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sow)
}

func (h *HerdHandler) UpdateSow(c *gin.Context) {
	var patch models.SowPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	sow, err := h.svc.UpdateSow(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sow)
}

func (h *HerdHandler) ListBoars(c *gin.Context) {
	snapshot, err := h.svc.Snapshot(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boars": snapshot.Boars})
}

func (h *HerdHandler) CreateBoar(c *gin.Context) {
	var in herd.BoarInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	boar, err := h.svc.RegisterBoar(c.Request.Context(), userID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, boar)
}

func (h *HerdHandler) UpdateBoar(c *gin.Context) {
	var patch models.BoarPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	boar, err := h.svc.UpdateBoar(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, boar)
}

// ListBreedings filters by ?q= (sow name, boar breed) and ?status=open|farrowed|aborted.
func (h *HerdHandler) ListBreedings(c *gin.Context) {
	constraints, ok := breedingStatus[c.Query("status")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown status %q", c.Query("status"))})
		return
	}
	snapshot, err := h.svc.Snapshot(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	breedings := filter.Match(filter.Search(snapshot.Breedings, c.Query("q"), filter.BreedingSearchFields), constraints)
	c.JSON(http.StatusOK, gin.H{
		"breedings":       breedings,
		"avg_litter_size": filter.AverageLitterSize(breedings),
	})
}

type breedingRequest struct {
	SowID     string  `json:"sow_id" binding:"required"`
	BoarID    *string `json:"boar_id"`
	BreedDate string  `json:"breed_date" binding:"required"`
}

func (h *HerdHandler) CreateBreeding(c *gin.Context) {
	var req breedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	bred, err := lifecycle.ParseDate(req.BreedDate)
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("breed_date: %w", err))
		return
	}
	in := herd.BreedingInput{SowID: req.SowID, BoarID: req.BoarID, BreedDate: bred}
	breeding, err := h.svc.RecordBreeding(c.Request.Context(), userID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, breeding)
}

type farrowRequest struct {
	Date        string `json:"date" binding:"required"`
	MaleAlive   int    `json:"male_alive"`
	FemaleAlive int    `json:"female_alive"`
	Dead        int    `json:"dead"`
}

func (h *HerdHandler) Farrow(c *gin.Context) {
	var req farrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	date, err := lifecycle.ParseDate(req.Date)
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("date: %w", err))
		return
	}
	in := herd.FarrowInput{Date: date, MaleAlive: req.MaleAlive, FemaleAlive: req.FemaleAlive, Dead: req.Dead}
	breeding, litter, err := h.svc.RecordFarrowing(c.Request.Context(), userID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"breeding": breeding, "litter": litter})
}

func (h *HerdHandler) Abort(c *gin.Context) {
	breeding, err := h.svc.AbortBreeding(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, breeding)
}

func (h *HerdHandler) DeleteBreeding(c *gin.Context) {
	if err := h.svc.DeleteBreeding(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListLitters filters by ?q= and ?stage=born|fattening|saleable|sold.
func (h *HerdHandler) ListLitters(c *gin.Context) {
	stage := models.LitterStage(c.Query("stage"))
	switch stage {
	case "", models.StageBorn, models.StageFattening, models.StageSaleable, models.StageSold:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown stage %q", stage)})
		return
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	litters := filter.Search(snapshot.Litters, c.Query("q"), filter.LitterSearchFields)
	if stage != "" {
		litters = filter.ByStage(litters, stage, h.now())
	}
	c.JSON(http.StatusOK, gin.H{
		"litters":         litters,
		"piglets_on_hand": filter.TotalPiglets(litters),
		"avg_sale_weight": filter.AverageSaleWeight(litters),
	})
}

func (h *HerdHandler) UpdateLitter(c *gin.Context) {
	var patch models.LitterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	litter, err := h.svc.UpdateLitter(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, litter)
}

type litterDateRequest struct {
	Date      string   `json:"date" binding:"required"`
	AvgWeight *float64 `json:"avg_weight"`
}

func (h *HerdHandler) bindLitterDate(c *gin.Context) (litterDateRequest, time.Time, bool) {
	var req litterDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return req, time.Time{}, false
	}
	date, err := lifecycle.ParseDate(req.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return req, time.Time{}, false
	}
	return req, date, true
}

func (h *HerdHandler) StartFattening(c *gin.Context) {
	_, date, ok := h.bindLitterDate(c)
	if !ok {
		return
	}
	litter, err := h.svc.StartFattening(c.Request.Context(), userID(c), c.Param("id"), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, litter)
}

func (h *HerdHandler) MarkSold(c *gin.Context) {
	req, date, ok := h.bindLitterDate(c)
	if !ok {
		return
	}
	litter, err := h.svc.MarkLitterSold(c.Request.Context(), userID(c), c.Param("id"), date, req.AvgWeight)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, litter)
}

func (h *HerdHandler) ListMedical(c *gin.Context) {
	snapshot, err := h.svc.Snapshot(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"medical": filter.Search(snapshot.Medical, c.Query("q"), filter.MedicalSearchFields)})
}

type medicalRequest struct {
	SowID    string `json:"sow_id" binding:"required"`
	Symptoms string `json:"symptoms"`
	Medicine string `json:"medicine"`
	UsedAt   string `json:"used_at"`
	Notes    string `json:"notes"`
}

func (h *HerdHandler) CreateMedical(c *gin.Context) {
	var req medicalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	in := herd.MedicalInput{SowID: req.SowID, Symptoms: req.Symptoms, Medicine: req.Medicine, Notes: req.Notes}
	if req.UsedAt != "" {
		used, err := lifecycle.ParseDate(req.UsedAt)
		if err != nil {
			respondError(c, h.logger, fmt.Errorf("used_at: %w", err))
			return
		}
		in.UsedAt = used
	}
	record, err := h.svc.RecordMedical(c.Request.Context(), userID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *HerdHandler) UpdateMedical(c *gin.Context) {
	var patch models.MedicalRecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	record, err := h.svc.UpdateMedical(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
