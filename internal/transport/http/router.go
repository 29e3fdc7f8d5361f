package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assist-by/shark/internal/agent"
	"github.com/assist-by/shark/internal/autotrader"
	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/trading"
)

// AgentFactory는 설정된 모델로 의사결정 에이전트를 만듭니다
type AgentFactory func(model string) agent.DecisionAgent

// Router는 자동매매 제어와 도구 호출 API를 제공합니다
type Router struct {
	trader     *autotrader.AutoTrader
	dispatcher *trading.Dispatcher
	newAgent   AgentFactory
	baseCtx    context.Context // Start로 시작한 루프의 수명
}

// NewRouter는 새로운 Router를 생성합니다
func NewRouter(ctx context.Context, trader *autotrader.AutoTrader, d *trading.Dispatcher, newAgent AgentFactory) *Router {
	return &Router{trader: trader, dispatcher: d, newAgent: newAgent, baseCtx: ctx}
}

// Register는 /api 하위 라우트를 등록합니다
func (r *Router) Register(group *gin.RouterGroup) {
	at := group.Group("/autotrader")
	at.GET("/status", r.handleStatus)
	at.GET("/history", r.handleHistory)
	at.POST("/start", r.handleStart)
	at.POST("/stop", r.handleStop)
	at.PUT("/config", r.handleUpdateConfig)

	group.GET("/tools", r.handleListTools)
	group.POST("/tools/:name", r.handleCallTool)
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		State:  r.trader.Status(),
		Config: newConfigPayload(r.trader.Config()),
	})
}

func (r *Router) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"trades": r.trader.History()})
}

func (r *Router) handleStart(c *gin.Context) {
	started, err := r.trader.Start(r.baseCtx, r.newAgent(r.trader.Config().Model))
	if err != nil {
		c.JSON(statusForKind(domain.KindOf(err)), gin.H{"started": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"started": started, "state": r.trader.Status()})
}

func (r *Router) handleStop(c *gin.Context) {
	stopped := r.trader.Stop()
	c.JSON(http.StatusOK, gin.H{"stopped": stopped, "state": r.trader.Status()})
}

func (r *Router) handleUpdateConfig(c *gin.Context) {
	var payload ConfigPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.trader.UpdateConfig(payload.toConfig()); err != nil {
		c.JSON(statusForKind(domain.KindOf(err)), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newConfigPayload(r.trader.Config()))
}

func (r *Router) handleListTools(c *gin.Context) {
	specs := r.dispatcher.Specs()
	out := make([]gin.H, 0, len(specs))
	for _, s := range specs {
		out = append(out, gin.H{"name": s.Name, "description": s.Description, "parameters": s.Parameters})
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

// handleCallTool은 요청 본문을 그대로 도구 인자로 넘깁니다.
// 자동매매 주기 밖의 호출이므로 일일 한도는 적용되지 않습니다.
func (r *Router) handleCallTool(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d := r.dispatcher.Scoped(r.trader.Config().RiskLevel, nil)
	res := d.Call(c.Request.Context(), c.Param("name"), body)
	if res.Success {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(statusForKind(res.ErrorKind), res)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case domain.KindState:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

var errNoHandler = errors.New("자동매매 API에는 AutoTrader와 Dispatcher가 필요합니다")
