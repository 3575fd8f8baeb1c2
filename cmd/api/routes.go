package main

import (
	"essay-hub/internal/config"
	"essay-hub/internal/handler"
	"essay-hub/internal/metrics"
	"essay-hub/internal/middleware"
	"essay-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

type routeHandlers struct {
	auth         *handler.AuthHandler
	user         *handler.UserHandler
	essay        *handler.EssayHandler
	friend       *handler.FriendHandler
	post         *handler.PostHandler
	notification *handler.NotificationHandler
	search       *handler.SearchHandler
	health       *handler.HealthHandler
}

func setupRoutes(app *fiber.App, h routeHandlers, tokens middleware.TokenValidator, validator *validation.Validator, rateLimit config.RateLimitConfig) {
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", metrics.MetricsHandler())

	ids := middleware.NewValidationMiddleware(validator)
	protected := middleware.Protected(tokens)
	api := app.Group("/api")
	api.Get("/health", h.health.Health)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", h.auth.Register)
	auth.Post("/login", h.auth.Login)
	auth.Get("/google/login", h.auth.GoogleLogin)
	auth.Get("/google/callback", h.auth.GoogleCallback)
	auth.Post("/refresh", h.auth.RefreshToken)

	// Users
	users := api.Group("/users", protected)
	users.Get("/me", h.user.GetMyProfile)
	users.Put("/me", h.user.UpdateMyProfile)
	users.Post("/me/password", h.auth.ChangePassword)
	users.Get("/:id", ids.ValidateIDParams("id"), h.user.GetUser)
	users.Get("/:id/posts", ids.ValidateIDParams("id"), h.post.ListUserPosts)

	// Essays
	evaluations := middleware.EvaluationLimiter(rateLimit.EvaluationsPerMinute)
	essays := api.Group("/essays", protected)
	essays.Post("/", evaluations, h.essay.UploadEssay)
	essays.Get("/", h.essay.ListMyEssays)
	essays.Get("/:id", ids.ValidateIDParams("id"), h.essay.GetEssay)
	essays.Delete("/:id", ids.ValidateIDParams("id"), h.essay.DeleteEssay)
	essays.Post("/:id/evaluate", ids.ValidateIDParams("id"), evaluations, h.essay.ReevaluateEssay)
	essays.Get("/:id/statements", ids.ValidateIDParams("id"), h.essay.GetStatements)
	essays.Post("/:id/statements/regenerate", ids.ValidateIDParams("id"), evaluations, h.essay.RegenerateStatements)

	// Friends
	friends := api.Group("/friends", protected)
	friends.Get("/", h.friend.ListFriends)
	friends.Get("/suggestions", h.friend.Suggestions)
	friends.Get("/status/:userId", ids.ValidateIDParams("userId"), h.friend.GetStatus)
	friends.Post("/requests", h.friend.SendRequest)
	friends.Get("/requests/pending", h.friend.ListPendingRequests)
	friends.Get("/requests/sent", h.friend.ListSentRequests)
	friends.Post("/requests/:id/accept", ids.ValidateIDParams("id"), h.friend.AcceptRequest)
	friends.Post("/requests/:id/reject", ids.ValidateIDParams("id"), h.friend.RejectRequest)
	friends.Post("/requests/:id/cancel", ids.ValidateIDParams("id"), h.friend.CancelRequest)
	friends.Delete("/:id", ids.ValidateIDParams("id"), h.friend.RemoveFriend)

	// Posts
	posts := api.Group("/posts", protected)
	posts.Get("/", h.post.Feed)
	posts.Post("/", h.post.CreatePost)
	posts.Get("/:id", ids.ValidateIDParams("id"), h.post.GetPost)
	posts.Delete("/:id", ids.ValidateIDParams("id"), h.post.DeletePost)
	posts.Post("/:id/like", ids.ValidateIDParams("id"), h.post.LikePost)
	posts.Delete("/:id/like", ids.ValidateIDParams("id"), h.post.UnlikePost)
	posts.Post("/:id/share", ids.ValidateIDParams("id"), h.post.SharePost)
	posts.Get("/:id/comments", ids.ValidateIDParams("id"), h.post.ListComments)
	posts.Post("/:id/comments", ids.ValidateIDParams("id"), h.post.AddComment)
	posts.Delete("/:id/comments/:commentId", ids.ValidateIDParams("id", "commentId"), h.post.DeleteComment)

	// Notifications
	notifications := api.Group("/notifications", protected)
	notifications.Get("/", h.notification.ListNotifications)
	notifications.Get("/unread-count", h.notification.UnreadCount)
	notifications.Post("/read-all", h.notification.MarkAllRead)
	notifications.Post("/:id/read", ids.ValidateIDParams("id"), h.notification.MarkRead)
	notifications.Delete("/:id", ids.ValidateIDParams("id"), h.notification.DeleteNotification)

	// Search is public; a valid token personalises visibility.
	api.Get("/search", middleware.OptionalAuth(tokens), h.search.Search)

	// Browsers cannot set headers on a websocket handshake, so the token rides in ?token=.
	api.Get("/ws/notifications", handler.RequireUpgrade(), middleware.ProtectedQuery(tokens), websocket.New(h.notification.Stream))
}
