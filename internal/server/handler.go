package server

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/ai"
	"github.com/spigell/mockwise/internal/answers"
	"github.com/spigell/mockwise/internal/interview"
	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/notify"
	"github.com/spigell/mockwise/internal/recorder"
	"github.com/spigell/mockwise/internal/storage"
)

// InterviewHandler serves interviews, scoring, answer saving and feedback.
type InterviewHandler struct {
	interviews *interview.Service
	scorer     *ai.Scorer
	guard      *answers.Guard
	answers    storage.AnswerStore
	logger     *zap.Logger
}

func NewInterviewHandler(interviews *interview.Service, scorer *ai.Scorer, guard *answers.Guard, store storage.AnswerStore, logger *zap.Logger) *InterviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewHandler{
		interviews: interviews,
		scorer:     scorer,
		guard:      guard,
		answers:    store,
		logger:     logger,
	}
}

func (h *InterviewHandler) PrivateRoutes(r gin.IRouter) {
	r.POST("/interviews", h.Create)
	r.GET("/interviews", h.List)
	r.GET("/interviews/:id", h.Get)
	r.PUT("/interviews/:id", h.Update)
	r.DELETE("/interviews/:id", h.Delete)
	r.POST("/interviews/:id/score", h.Score)
	r.POST("/interviews/:id/answers", h.SaveAnswer)
	r.GET("/interviews/:id/feedback", h.Feedback)
}

type ScoreReq struct {
	Question   string `json:"question" binding:"required"`
	Answer     string `json:"answer"`
	UserAnswer string `json:"user_answer"`
}

type SaveAnswerReq struct {
	Question   string  `json:"question" binding:"required"`
	CorrectAns string  `json:"correct_ans"`
	UserAns    string  `json:"user_ans"`
	Feedback   string  `json:"feedback"`
	Rating     float64 `json:"rating"`
}

func userID(ctx *gin.Context) string {
	return ctx.GetString(userKey)
}

// owned loads interview id and hides interviews of other users.
func (h *InterviewHandler) owned(ctx *gin.Context) (model.Interview, bool) {
	in, err := h.interviews.Get(ctx.Request.Context(), ctx.Param("id"))
	if err == nil && in.UserID != userID(ctx) {
		err = storage.ErrNotFound
	}
	if err != nil {
		h.storeError(ctx, err, nil)
		return model.Interview{}, false
	}
	return in, true
}

func (h *InterviewHandler) storeError(ctx *gin.Context, err error, collector *notify.Collector) {
	body := gin.H{"error": err.Error()}
	if collector != nil {
		body["notices"] = collector.Notices()
	}
	if errors.Is(err, storage.ErrNotFound) {
		body["error"] = "interview not found"
		ctx.AbortWithStatusJSON(http.StatusNotFound, body)
		return
	}
	h.logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

func (h *InterviewHandler) profileError(ctx *gin.Context, err error, collector *notify.Collector) bool {
	if !errors.Is(err, interview.ErrInvalidProfile) {
		return false
	}
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   interview.ErrInvalidProfile.Error(),
		"fields":  interview.FieldErrors(err),
		"notices": collector.Notices(),
	})
	return true
}

func (h *InterviewHandler) Create(ctx *gin.Context) {
	var req model.JobProfile
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collector := &notify.Collector{}
	created, err := h.interviews.WithNotifier(collector).Create(ctx.Request.Context(), userID(ctx), req)
	if err != nil {
		if !h.profileError(ctx, err, collector) {
			h.storeError(ctx, err, collector)
		}
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"interview": created, "notices": collector.Notices()})
}

func (h *InterviewHandler) List(ctx *gin.Context) {
	list, err := h.interviews.List(ctx.Request.Context(), userID(ctx))
	if err != nil {
		h.storeError(ctx, err, nil)
		return
	}
	if list == nil {
		list = []model.Interview{}
	}
	ctx.JSON(http.StatusOK, gin.H{"interviews": list})
}

func (h *InterviewHandler) Get(ctx *gin.Context) {
	in, ok := h.owned(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"interview": in})
}

func (h *InterviewHandler) Update(ctx *gin.Context) {
	in, ok := h.owned(ctx)
	if !ok {
		return
	}

	var req model.JobProfile
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collector := &notify.Collector{}
	updated, err := h.interviews.WithNotifier(collector).Update(ctx.Request.Context(), in.ID, req)
	if err != nil {
		if !h.profileError(ctx, err, collector) {
			h.storeError(ctx, err, collector)
		}
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"interview": updated, "notices": collector.Notices()})
}

func (h *InterviewHandler) Delete(ctx *gin.Context) {
	in, ok := h.owned(ctx)
	if !ok {
		return
	}

	collector := &notify.Collector{}
	if err := h.interviews.WithNotifier(collector).Delete(ctx.Request.Context(), in.ID); err != nil {
		h.storeError(ctx, err, collector)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"notices": collector.Notices()})
}

// Score grades an answer. It applies the same length gate as the recorder
// and otherwise always answers 200 with a result, degraded or not.
func (h *InterviewHandler) Score(ctx *gin.Context) {
	if _, ok := h.owned(ctx); !ok {
		return
	}

	var req ScoreReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if utf8.RuneCountInString(req.UserAnswer) < recorder.MinAnswerLength {
		ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": recorder.ErrAnswerTooShort.Error(),
			"notices": []notify.Notice{
				notify.Error("Error", "Your answer should be more than 30 characters"),
			},
		})
		return
	}

	collector := &notify.Collector{}
	result := h.scorer.WithNotifier(collector).Score(ctx.Request.Context(), req.Question, req.Answer, req.UserAnswer)
	ctx.JSON(http.StatusOK, gin.H{"result": result, "notices": collector.Notices()})
}

func (h *InterviewHandler) SaveAnswer(ctx *gin.Context) {
	in, ok := h.owned(ctx)
	if !ok {
		return
	}

	var req SaveAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collector := &notify.Collector{}
	res, err := h.guard.WithNotifier(collector).TrySave(ctx.Request.Context(), userID(ctx), req.Question, model.AnswerRecord{
		MockIDRef:  in.ID,
		CorrectAns: req.CorrectAns,
		UserAns:    req.UserAns,
		Feedback:   req.Feedback,
		Rating:     req.Rating,
	})
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   answers.ErrPersistence.Error(),
			"notices": collector.Notices(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"saved": res.Saved, "notices": collector.Notices()})
}

func (h *InterviewHandler) Feedback(ctx *gin.Context) {
	in, ok := h.owned(ctx)
	if !ok {
		return
	}

	report, err := answers.Feedback(ctx.Request.Context(), h.answers, userID(ctx), in.ID)
	if err != nil {
		h.storeError(ctx, err, nil)
		return
	}
	if report.Answers == nil {
		report.Answers = []model.AnswerRecord{}
	}
	ctx.JSON(http.StatusOK, report)
}
