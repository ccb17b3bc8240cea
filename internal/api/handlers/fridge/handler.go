package fridge

import (
	"errors"
	"net/http"
	"strconv"

	"fridge-recommender/internal/core/recommend"
	"fridge-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 冰箱比對與食譜查詢
type Handler struct {
	svc   *recommend.Service
	debug bool
}

// NewHandler 建立處理程序，debug 時錯誤回應會附上原始錯誤
func NewHandler(svc *recommend.Service, debug bool) *Handler {
	return &Handler{svc: svc, debug: debug}
}

// partialResponse 生成失敗時仍回傳已完成的部分
type partialResponse struct {
	common.ErrorResponse
	Result *recommend.Response `json:"result"`
}

// HandleMatch POST /api/v1/fridge/match
func (h *Handler) HandleMatch(c *gin.Context) {
	var req recommend.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("Invalid match request",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		h.writeError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	resp, err := h.svc.Recommend(c.Request.Context(), req)
	if err != nil {
		if resp != nil {
			ce := common.AsCustomError(err)
			c.JSON(ce.Status, partialResponse{ErrorResponse: ce.Response(h.debug), Result: resp})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleRecipeDetail GET /api/v1/fridge/recipe/:id
func (h *Handler) HandleRecipeDetail(c *gin.Context) {
	servings, err := queryInt(c, "servings")
	if err != nil {
		h.writeError(c, err)
		return
	}
	servingSize, err := queryInt(c, "serving_size")
	if err != nil {
		h.writeError(c, err)
		return
	}

	detail, err := h.svc.GetRecipeDetail(c.Request.Context(), c.Param("id"), servings, servingSize)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// HandleListRecipes GET /api/v1/recipes?cuisine=&diet=
// 未指定 cuisine 時回傳可用的菜系
func (h *Handler) HandleListRecipes(c *gin.Context) {
	cuisine := c.Query("cuisine")
	if cuisine == "" {
		cuisines, err := h.svc.Cuisines()
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cuisines": cuisines})
		return
	}

	cards, err := h.svc.ListByCuisine(cuisine, c.Query("diet"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cuisine": cuisine, "recipes": cards})
}

// HandleFitness GET /api/v1/recipes/fitness?goal=&diet=
func (h *Handler) HandleFitness(c *gin.Context) {
	list, err := h.svc.ListByFitnessGoal(c.Query("goal"), c.Query("diet"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// HandleDaily GET /api/v1/recipes/daily
func (h *Handler) HandleDaily(c *gin.Context) {
	pick, err := h.svc.RecipeOfTheDay()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pick)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("Request failed",
			zap.String("code", ce.Code),
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(ce.Status, ce.Response(h.debug))
}

// queryInt 讀取非負整數查詢參數，缺少時為 0
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.ErrInvalidRequest.Wrap(err)
	}
	if v < 0 {
		return 0, common.ErrInvalidRequest.Wrap(errors.New(key + " must not be negative"))
	}
	return v, nil
}
