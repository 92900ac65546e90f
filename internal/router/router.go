// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/unclebandit/charity-backend/internal/auth"
	"github.com/unclebandit/charity-backend/internal/controller"
	"github.com/unclebandit/charity-backend/internal/handler"
	"github.com/unclebandit/charity-backend/internal/service"
)

// Services is everything the HTTP surface needs.
type Services struct {
	Charities *service.CharityService
	Campaigns *service.CampaignService
	Analytics *service.AnalyticsService
	Posts     *service.PostService
	Auth      auth.Verifier
}

func New(s Services) http.Handler {
	charityController := &controller.CharityController{CharityService: s.Charities, Auth: s.Auth}
	campaignController := &controller.CampaignController{CampaignService: s.Campaigns, Auth: s.Auth}
	analyticsController := &controller.AnalyticsController{AnalyticsService: s.Analytics, Auth: s.Auth}
	postController := &controller.PostController{PostService: s.Posts, Auth: s.Auth}
	paymentHandler := handler.NewPaymentHandler(s.Campaigns)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// Charity routes
	r.Post("/createCharity", charityController.CreateCharity)
	r.Post("/updateCharity", charityController.UpdateCharity)
	r.Delete("/deleteCharity", charityController.DeleteCharity)

	// Campaign and payment routes
	r.Post("/createCampaignAndPayment", campaignController.CreateCampaignAndPayment)
	r.Post("/updatePayment/{campaignID}", paymentHandler.UpdatePaymentHandler)

	r.Get("/getCharityAnalytics", analyticsController.GetCharityAnalytics)
	r.Get("/getCampaignAnalytics", analyticsController.GetCampaignAnalytics)

	r.Post("/campaigns/{campaignID}/posts", postController.CreatePost)
	r.Post("/campaigns/{campaignID}/posts/{postID}/comments", postController.CreateComment)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
